package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"quiz-engine/internal/domain"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	categories, err := NewCategoryLoader("").LoadCategories(context.Background())
	if err != nil {
		t.Fatalf("load default catalog: %v", err)
	}
	bank, err := domain.NewQuestionBank(categories)
	if err != nil {
		t.Fatalf("default catalog is invalid: %v", err)
	}
	if names := bank.Categories(); len(names) != 4 || names[0] != "General Knowledge" {
		t.Fatalf("unexpected categories %v", names)
	}
}

func TestLoadDirectoryKeepsFileOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.yaml"), `
categories:
  - name: Second
    questions:
      - prompt: Q2?
        options: [a, b, c, d]
        answer: b
`)
	writeFile(t, filepath.Join(dir, "a.yml"), `
categories:
  - name: First
    questions:
      - prompt: Q1?
        options: [a, b, c, d]
        answer: a
`)
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	categories, err := NewCategoryLoader(dir).LoadCategories(context.Background())
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
	if categories[0].Name != "First" || categories[0].Position != 0 || categories[1].Position != 1 {
		t.Fatalf("unexpected ordering %+v", categories)
	}
	if categories[1].Questions[0].CorrectOption != "b" {
		t.Fatalf("answer not decoded: %+v", categories[1].Questions[0])
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	writeFile(t, path, "categories: [")

	if _, err := NewCategoryLoader(path).LoadCategories(context.Background()); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := NewCategoryLoader(filepath.Join(dir, "missing.yaml")).LoadCategories(context.Background()); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
