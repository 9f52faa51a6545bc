package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/hifzhub/tahfiz-enrollment-api/pkg/errors"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// Cache key builders. Program views are cached per caller because the
// payload is role-shaped (students see their enrolled flag, teachers see
// rosters). Invalidation therefore wildcards the caller segment.
func programListKey(callerID string) string {
	return "programs:list:" + callerID
}

func programDetailKey(programID, callerID string) string {
	return "programs:detail:" + programID + ":" + callerID
}

func dashboardKey(callerID string) string {
	return "dashboard:" + callerID
}

const defaultCacheTTL = 5 * time.Minute

// CacheService is the cache-aside layer over the repository. A nil or
// disabled service degrades every operation to a no-op, so callers never
// branch on cache availability.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = defaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get loads a cached entry into dest and reports whether it was a hit.
// Store failures are surfaced but recorded as misses, so a broken cache
// degrades reads instead of failing them.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}

	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	hit := err == nil
	s.metrics.RecordCacheOperation(hit, time.Since(start))

	switch {
	case hit:
		return true, nil
	case errors.Is(err, appErrors.ErrCacheMiss):
		return false, nil
	default:
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
}

// Set stores the value under key; a non-positive ttl means the default.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Invalidate removes cached values for the provided pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	return nil
}

// InvalidateProgramViews drops every cached read that the given program or
// the given caller's enrollment state could have shaped. Called after
// enroll, withdraw and program creation so a follow-up read reflects the
// write immediately.
func (s *CacheService) InvalidateProgramViews(ctx context.Context, programID, callerID string) {
	if !s.Enabled() {
		return
	}
	patterns := []string{"programs:list:*"}
	if programID != "" {
		patterns = append(patterns, fmt.Sprintf("programs:detail:%s:*", programID))
	}
	if callerID != "" {
		patterns = append(patterns, dashboardKey(callerID))
	}
	for _, pattern := range patterns {
		_ = s.Invalidate(ctx, pattern)
	}
}

// InvalidateCallerViews drops every cached view shaped for the given user:
// their program list, their per-program details and their dashboard. Called
// after a role change so the old role's payloads cannot outlive it.
func (s *CacheService) InvalidateCallerViews(ctx context.Context, callerID string) {
	if !s.Enabled() || callerID == "" {
		return
	}
	for _, pattern := range []string{
		programListKey(callerID),
		"programs:detail:*:" + callerID,
		dashboardKey(callerID),
	} {
		_ = s.Invalidate(ctx, pattern)
	}
}
