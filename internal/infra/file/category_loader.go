package file

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"quiz-engine/internal/domain"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

type catalogFile struct {
	Categories []domain.Category `yaml:"categories"`
}

// CategoryLoader reads categories from a YAML file or a directory of YAML files.
// An empty path serves the catalog compiled into the binary.
type CategoryLoader struct {
	path string
}

func NewCategoryLoader(path string) *CategoryLoader {
	return &CategoryLoader{path: path}
}

func (l *CategoryLoader) LoadCategories(_ context.Context) ([]domain.Category, error) {
	if l.path == "" {
		return Parse(defaultCatalog)
	}

	info, err := os.Stat(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat catalog: %w", err)
	}
	if !info.IsDir() {
		return loadFile(l.path)
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(l.path, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	var categories []domain.Category
	for _, path := range files {
		loaded, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		for _, c := range loaded {
			c.Position = len(categories)
			categories = append(categories, c)
		}
	}
	slog.Info("catalog loaded", "dir", l.path, "files", len(files), "categories", len(categories))
	return categories, nil
}

func loadFile(path string) ([]domain.Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	categories, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return categories, nil
}

// Parse decodes a YAML catalog; categories are positioned in document order.
func Parse(data []byte) ([]domain.Category, error) {
	var catalog catalogFile
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	for i := range catalog.Categories {
		catalog.Categories[i].Position = i
	}
	return catalog.Categories, nil
}
