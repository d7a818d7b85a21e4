package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"quiz-engine/internal/config"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/infra/file"
	pgstore "quiz-engine/internal/infra/postgres"
)

// NewSeedCmd copies a YAML catalog into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var catalogPath string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a YAML question catalog into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, catalogPath)
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "YAML catalog file or directory (defaults to bank.path, then the built-in catalog)")
	return cmd
}

func runSeed(ctx context.Context, configPath, catalogPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	setupLogger(cfg, os.Stdout)
	if catalogPath == "" {
		catalogPath = cfg.Bank.Path
	}

	categories, err := file.NewCategoryLoader(catalogPath).LoadCategories(ctx)
	if err != nil {
		return err
	}
	// validate before touching the database
	bank, err := domain.NewQuestionBank(categories)
	if err != nil {
		return err
	}

	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}
	db, err := openBunDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := pgstore.SeedCategories(ctx, db, bank.Export())
	if err != nil {
		return err
	}
	slog.Info("catalog seeded", "categories", n)
	return nil
}
