package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaastore/storefront/internal/domain"
	apperrors "github.com/zaastore/storefront/pkg/errors"
)

func setupRepo(t *testing.T) (*SnapshotRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewSnapshotRepository(client, 24*time.Hour), mr
}

func TestSnapshotRepository_SaveAndGet(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	snap := &domain.CartSnapshot{
		Entries: []domain.CartEntry{
			{ID: 1, Title: "Alpha", Price: 10.004, Thumbnail: "a.jpg"},
			{ID: 1, Title: "Alpha", Price: 10.004, Thumbnail: "a.jpg"}, // duplicate entry preserved
		},
		Notification: "Berhasil menambah Alpha...",
	}

	require.NoError(t, repo.Save(ctx, "cart-1", snap))

	got, err := repo.Get(ctx, "cart-1")
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}

func TestSnapshotRepository_Get_NotFound(t *testing.T) {
	repo, _ := setupRepo(t)

	_, err := repo.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSnapshotRepository_Save_Overwrites(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "cart-1", &domain.CartSnapshot{
		Entries: []domain.CartEntry{{ID: 1, Title: "Old", Price: 1}},
	}))
	require.NoError(t, repo.Save(ctx, "cart-1", &domain.CartSnapshot{
		Entries: []domain.CartEntry{{ID: 2, Title: "New", Price: 2}},
	}))

	got, err := repo.Get(ctx, "cart-1")
	require.NoError(t, err)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, "New", got.Entries[0].Title)
}

func TestSnapshotRepository_Delete(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "cart-1", &domain.CartSnapshot{}))
	require.NoError(t, repo.Delete(ctx, "cart-1"))

	_, err := repo.Get(ctx, "cart-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSnapshotRepository_KeyUsesStoragePrefix(t *testing.T) {
	repo, mr := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "cart-9", &domain.CartSnapshot{}))
	assert.True(t, mr.Exists("zaastore-storage:cart-9"))
}

func TestSnapshotRepository_TTLApplied(t *testing.T) {
	repo, mr := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "cart-1", &domain.CartSnapshot{}))

	mr.FastForward(25 * time.Hour)

	_, err := repo.Get(ctx, "cart-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
