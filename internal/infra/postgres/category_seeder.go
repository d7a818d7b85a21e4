package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"quiz-engine/internal/domain"
)

type categoryRow struct {
	bun.BaseModel `bun:"table:categories"`

	Name      string            `bun:"name,pk"`
	Position  int               `bun:"position,notnull"`
	Questions []domain.Question `bun:"questions,type:jsonb,notnull"`
}

// SeedCategories upserts categories so the table mirrors the given catalog.
func SeedCategories(ctx context.Context, db *bun.DB, categories []domain.Category) (int, error) {
	if len(categories) == 0 {
		return 0, nil
	}
	rows := make([]categoryRow, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, categoryRow{Name: c.Name, Position: c.Position, Questions: c.Questions})
	}

	_, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (name) DO UPDATE").
		Set("position = EXCLUDED.position").
		Set("questions = EXCLUDED.questions").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed categories: %w", err)
	}
	return len(rows), nil
}
