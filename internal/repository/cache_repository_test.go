package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/hifzhub/tahfiz-enrollment-api/pkg/errors"
)

func newCacheRepo(t *testing.T) (*CacheRepository, *miniredis.Miniredis) {
	srv, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCacheRepository(client, zap.NewNop()), srv
}

func TestCacheRepositorySetGet(t *testing.T) {
	repo, _ := newCacheRepo(t)
	ctx := context.Background()

	payload := map[string]string{"name": "Juz Amma"}
	require.NoError(t, repo.Set(ctx, "programs:detail:p1:u1", payload, time.Minute))

	var got map[string]string
	require.NoError(t, repo.Get(ctx, "programs:detail:p1:u1", &got))
	require.Equal(t, "Juz Amma", got["name"])
}

func TestCacheRepositoryGetMiss(t *testing.T) {
	repo, _ := newCacheRepo(t)

	var dest map[string]string
	err := repo.Get(context.Background(), "programs:list:nobody", &dest)
	require.True(t, errors.Is(err, appErrors.ErrCacheMiss))
}

func TestCacheRepositoryDeleteByPattern(t *testing.T) {
	repo, srv := newCacheRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "programs:list:u1", "a", time.Minute))
	require.NoError(t, repo.Set(ctx, "programs:list:u2", "b", time.Minute))
	require.NoError(t, repo.Set(ctx, "dashboard:u1", "c", time.Minute))

	require.NoError(t, repo.DeleteByPattern(ctx, "programs:list:*"))

	require.False(t, srv.Exists("programs:list:u1"))
	require.False(t, srv.Exists("programs:list:u2"))
	require.True(t, srv.Exists("dashboard:u1"))
}
