package dedupe_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang-market-alert/internal/dedupe"
	"golang-market-alert/internal/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "sent.json")
	store := dedupe.NewFileStore(path)

	records, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(ctx, entity.SentRecord{DedupeKey: "a", SentAt: base}, base.Add(-time.Hour)))
	require.NoError(t, store.Append(ctx, entity.SentRecord{DedupeKey: "b", SentAt: base.Add(2 * time.Hour)}, base.Add(time.Hour)))

	records, err = store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "b", records[0].DedupeKey)
	assert.True(t, base.Add(2*time.Hour).Equal(records[0].SentAt))
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sent.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := dedupe.NewFileStore(path).Load(context.Background())
	require.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := dedupe.NewRedisStore(client, "market-alert:sent", 24*time.Hour)

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(ctx, entity.SentRecord{DedupeKey: "a", SentAt: base}, base.Add(-time.Hour)))
	require.NoError(t, store.Append(ctx, entity.SentRecord{DedupeKey: "b", SentAt: base.Add(time.Minute)}, base.Add(-time.Hour)))
	require.NoError(t, store.Append(ctx, entity.SentRecord{DedupeKey: "c", SentAt: base.Add(3 * time.Hour)}, base.Add(30*time.Second)))

	records, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[0].DedupeKey)
	assert.Equal(t, "c", records[1].DedupeKey)

	assert.Equal(t, 24*time.Hour, mr.TTL("market-alert:sent"))
}

func TestRedisStoreBacksGate(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	g, err := dedupe.NewGate(dedupe.NewRedisStore(client, "sent", time.Hour*24), dedupe.DefaultConfig())
	require.NoError(t, err)

	d, err := g.Admit(ctx, "headline")
	require.NoError(t, err)
	assert.Equal(t, dedupe.Accepted, d)

	reloaded, err := dedupe.NewGate(dedupe.NewRedisStore(client, "sent", time.Hour*24), dedupe.DefaultConfig())
	require.NoError(t, err)
	d, err = reloaded.Admit(ctx, "headline")
	require.NoError(t, err)
	assert.Equal(t, dedupe.SuppressedDuplicate, d)

	d, err = reloaded.Admit(ctx, "second")
	require.NoError(t, err)
	require.Equal(t, dedupe.Accepted, d)
	d, err = g.Admit(ctx, "second")
	require.NoError(t, err)
	assert.Equal(t, dedupe.SuppressedDuplicate, d)
	assert.False(t, mr.Exists("sent:lock"))
}

func TestRedisStoreLock(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := dedupe.NewRedisStore(client, "sent", time.Hour)
	unlock, err := store.Lock(ctx)
	require.NoError(t, err)
	assert.True(t, mr.Exists("sent:lock"))

	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = dedupe.NewRedisStore(client, "sent", time.Hour).Lock(waitCtx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	assert.False(t, mr.Exists("sent:lock"))

	unlock, err = store.Lock(ctx)
	require.NoError(t, err)
	unlock()
}
