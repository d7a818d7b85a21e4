package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/infra/memory"
)

func TestBankRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{CategoryLoader: memory.NewStaticCategoryLoader(sampleCategories())}
	repo := NewBankRepository(client, loader, time.Minute)

	bank, err := repo.GetBank(context.Background())
	if err != nil {
		t.Fatalf("get bank: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists(categoriesKey) {
		t.Fatalf("expected catalog cached in redis")
	}
	if ttl := mr.TTL(categoriesKey); ttl <= 0 {
		t.Fatalf("expected cached catalog to expire, ttl=%v", ttl)
	}

	// Second call should hit cache, loader not incremented.
	cached, err := repo.GetBank(context.Background())
	if err != nil {
		t.Fatalf("get cached bank: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	want, got := bank.Categories(), cached.Categories()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("cached bank lost category order: %v vs %v", got, want)
	}
	questions, err := cached.QuestionsFor("Science")
	if err != nil || questions[0].CorrectOption != "H2O" {
		t.Fatalf("cached question mismatch: %+v (%v)", questions, err)
	}
}

func TestBankRepositoryReloadsCorruptCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	mr.HSet(categoriesKey, "Science", "{not json")
	loader := &countingLoader{CategoryLoader: memory.NewStaticCategoryLoader(sampleCategories())}
	repo := NewBankRepository(newClient(mr), loader, 0)

	bank, err := repo.GetBank(context.Background())
	if err != nil {
		t.Fatalf("get bank: %v", err)
	}
	if loader.calls != 1 || len(bank.Categories()) != 2 {
		t.Fatalf("expected reload from loader, calls=%d categories=%v", loader.calls, bank.Categories())
	}
}

type countingLoader struct {
	memory.CategoryLoader
	calls int
}

func (l *countingLoader) LoadCategories(ctx context.Context) ([]domain.Category, error) {
	l.calls++
	return l.CategoryLoader.LoadCategories(ctx)
}

func sampleCategories() []domain.Category {
	return []domain.Category{
		{
			Name:     "Science",
			Position: 1,
			Questions: []domain.Question{
				{Prompt: "Chemical symbol for water?", Options: []string{"H2O", "CO2", "O2", "NaCl"}, CorrectOption: "H2O"},
			},
		},
		{
			Name:     "Math",
			Position: 0,
			Questions: []domain.Question{
				{Prompt: "What is 2 + 2?", Options: []string{"3", "4", "5", "6"}, CorrectOption: "4"},
			},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
