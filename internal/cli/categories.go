package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"quiz-engine/internal/config"
	"quiz-engine/internal/domain"
)

// NewCategoriesCmd prints the categories of the configured question bank.
func NewCategoriesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List quiz categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCategories(cmd.Context(), *configPath, cmd.OutOrStdout())
		},
	}
}

func runCategories(ctx context.Context, configPath string, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	setupLogger(cfg, os.Stderr)

	b, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.close()

	bank, err := b.bankRepository(cfg).GetBank(ctx)
	if err != nil {
		return err
	}
	return printCategories(out, bank)
}

func printCategories(out io.Writer, bank *domain.QuestionBank) error {
	for _, name := range bank.Categories() {
		questions, err := bank.QuestionsFor(name)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(out, "%s\t%d questions\n", name, len(questions)); err != nil {
			return err
		}
	}
	return nil
}
