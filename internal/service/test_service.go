package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/anooppatell7/education-pixel-backend/internal/config"
	"github.com/anooppatell7/education-pixel-backend/internal/model"
	"github.com/anooppatell7/education-pixel-backend/internal/repository"
)

const (
	paperCacheTTL   = 30 * time.Minute
	catalogCacheTTL = 5 * time.Minute
)

// TestService serves the public test catalog and candidate-facing papers.
// Papers are cached in Redis with correct answers already stripped, so a
// cache hit never touches answer data at all.
type TestService struct {
	repo *repository.TestRepository
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewTestService creates a new TestService.
func NewTestService(repo *repository.TestRepository, rdb *redis.Client, log zerolog.Logger) *TestService {
	return &TestService{
		repo: repo,
		rdb:  rdb,
		log:  log.With().Str("component", "test_service").Logger(),
	}
}

// ListPublished returns catalog summaries of all published tests.
func (s *TestService) ListPublished(ctx context.Context) ([]model.TestSummary, error) {
	cacheKey := config.CacheKey.CatalogKey()
	if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
		var summaries []model.TestSummary
		if err := json.Unmarshal([]byte(cached), &summaries); err == nil {
			return summaries, nil
		}
	}

	summaries, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("list published tests: %w", err)
	}

	if data, err := json.Marshal(summaries); err == nil {
		if err := s.rdb.Set(ctx, cacheKey, data, catalogCacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Catalog cache write failed")
		}
	}
	return summaries, nil
}

// GetPaper returns the candidate-facing paper for a published test:
// questions in order, options included, correct answers and explanations
// absent.
func (s *TestService) GetPaper(ctx context.Context, testID uuid.UUID) (*model.TestPaper, error) {
	cacheKey := config.CacheKey.TestPaperKey(testID.String())
	if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
		var paper model.TestPaper
		if err := json.Unmarshal([]byte(cached), &paper); err == nil {
			return &paper, nil
		}
	}

	test, err := s.repo.GetByID(ctx, testID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTestNotAvailable
		}
		return nil, fmt.Errorf("get test: %w", err)
	}
	if !test.IsPublished {
		return nil, ErrTestNotAvailable
	}

	paper := test.Paper()
	if err := s.warmPaper(ctx, paper); err != nil {
		s.log.Warn().Err(err).Str("test_id", testID.String()).Msg("Paper cache write failed")
	}
	return paper, nil
}

func (s *TestService) warmPaper(ctx context.Context, paper *model.TestPaper) error {
	data, err := json.Marshal(paper)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, config.CacheKey.TestPaperKey(paper.TestID.String()), data, paperCacheTTL).Err()
}

// WarmTestCache refreshes the cached paper for one test. Call after
// editing a test so candidates see the change immediately.
func (s *TestService) WarmTestCache(ctx context.Context, testID uuid.UUID) error {
	test, err := s.repo.GetByID(ctx, testID)
	if err != nil {
		return fmt.Errorf("get test: %w", err)
	}
	if !test.IsPublished {
		return s.rdb.Del(ctx, config.CacheKey.TestPaperKey(testID.String())).Err()
	}
	return s.warmPaper(ctx, test.Paper())
}

// PrewarmAllCaches loads every published test's paper into Redis at
// startup so first requests hit warm caches.
func (s *TestService) PrewarmAllCaches(ctx context.Context) error {
	tests, err := s.repo.ListPublishedFull(ctx)
	if err != nil {
		return fmt.Errorf("list tests for prewarm: %w", err)
	}

	warmed := 0
	for i := range tests {
		if err := s.warmPaper(ctx, tests[i].Paper()); err != nil {
			s.log.Warn().Err(err).Str("test_id", tests[i].ID.String()).Msg("Prewarm failed for test")
			continue
		}
		warmed++
	}
	s.log.Info().Int("count", warmed).Msg("Test paper caches prewarmed")
	return nil
}
