package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-engine/internal/domain"
)

// CategoryLoader fetches catalog content from a backing store (YAML file, Postgres, ...).
type CategoryLoader interface {
	LoadCategories(ctx context.Context) ([]domain.Category, error)
}

// BankRepository caches the catalog in Redis and falls back to a loader on cache miss.
// Categories are stored as: HSET quiz:bank:categories {name} {category JSON}
type BankRepository struct {
	client *redis.Client
	loader CategoryLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewBankRepository(client *redis.Client, loader CategoryLoader, ttl time.Duration) *BankRepository {
	return &BankRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *BankRepository) GetBank(ctx context.Context) (*domain.QuestionBank, error) {
	if bank, ok := r.fromCache(ctx); ok {
		return bank, nil
	}

	result, err, _ := r.sf.Do(categoriesKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if bank, ok := r.fromCache(ctx); ok {
			return bank, nil
		}

		categories, err := r.loader.LoadCategories(ctx)
		if err != nil {
			return nil, err
		}
		bank, err := domain.NewQuestionBank(categories)
		if err != nil {
			return nil, err
		}

		// best-effort: a failed write only costs another load later
		_ = r.store(ctx, bank)
		return bank, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.QuestionBank), nil
}

const categoriesKey = "quiz:bank:categories"

func (r *BankRepository) fromCache(ctx context.Context) (*domain.QuestionBank, bool) {
	raw, err := r.client.HGetAll(ctx, categoriesKey).Result()
	if err != nil || len(raw) == 0 {
		return nil, false
	}
	bank, err := buildBankFromCache(raw)
	if err != nil {
		// corrupt entry, drop it so the next call reloads
		_ = r.client.Del(ctx, categoriesKey).Err()
		return nil, false
	}
	return bank, true
}

func (r *BankRepository) store(ctx context.Context, bank *domain.QuestionBank) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, categoriesKey)
	for _, category := range bank.Export() {
		data, err := json.Marshal(category)
		if err != nil {
			return fmt.Errorf("marshal category %q: %w", category.Name, err)
		}
		pipe.HSet(ctx, categoriesKey, category.Name, data)
	}
	if ttl := r.ttlWithJitter(); ttl > 0 {
		pipe.Expire(ctx, categoriesKey, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func buildBankFromCache(raw map[string]string) (*domain.QuestionBank, error) {
	categories := make([]domain.Category, 0, len(raw))
	for name, data := range raw {
		var category domain.Category
		if err := json.Unmarshal([]byte(data), &category); err != nil {
			return nil, fmt.Errorf("unmarshal category %q: %w", name, err)
		}
		category.Name = name
		categories = append(categories, category)
	}
	return domain.NewQuestionBank(categories)
}

func (r *BankRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
