package settings

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	s, err := NewRedisStore(context.Background(), &redis.Options{Addr: mr.Addr()}, "koraki-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStore_Keys(t *testing.T) {
	t.Parallel()

	s := newRedisStore(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), "")
	t.Cleanup(func() { _ = s.Close() })

	assert.Equal(t, "koraki:koraki_settings", s.settingsKey())
	assert.Equal(t, "koraki:post_meta:_koraki_post_field", s.metaKey())
}

func TestNewRedisStore_UnreachableServer(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore(context.Background(), &redis.Options{Addr: addr, MaxRetries: -1}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connecting to redis")
}

func TestRedisStore_Load_EmptyReturnsZeroRecord(t *testing.T) {
	t.Parallel()
	s, _ := newTestRedisStore(t)

	r, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Record{}, r)
	assert.False(t, r.Linked())
}

func TestRedisStore_SaveAndLoad(t *testing.T) {
	t.Parallel()
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	want := Record{ClientID: "cid", ClientSecret: "sec", ID: "3", Success: true}
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.True(t, mr.Exists("koraki-test:koraki_settings"))
}

func TestRedisStore_Save_Overwrites(t *testing.T) {
	t.Parallel()
	s, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, Record{ClientID: "old", ClientSecret: "old"}))
	require.NoError(t, s.Save(ctx, Record{ClientID: "new", ClientSecret: "new", ID: "9", Success: true}))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", got.ClientID)
	assert.Equal(t, "9", got.ID)
}

func TestRedisStore_Load_CorruptValue(t *testing.T) {
	t.Parallel()
	s, mr := newTestRedisStore(t)

	require.NoError(t, mr.Set("koraki-test:koraki_settings", "{not json"))

	_, err := s.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding settings")
}

func TestRedisStore_Clear(t *testing.T) {
	t.Parallel()
	s, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, Record{ClientID: "cid", ClientSecret: "sec", ID: "3", Success: true}))
	require.NoError(t, s.SetOptIn(ctx, 5, "true"))
	require.NoError(t, s.Clear(ctx))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Record{}, got)

	// Opt-in flags are post meta and survive an unlink.
	v, err := s.OptIn(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "true", v)

	require.NoError(t, s.Clear(ctx), "clearing twice is harmless")
}

func TestRedisStore_OptIn(t *testing.T) {
	t.Parallel()
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	v, err := s.OptIn(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.SetOptIn(ctx, 7, "true"))
	require.NoError(t, s.SetOptIn(ctx, 8, "false"))
	require.NoError(t, s.SetOptIn(ctx, 7, "false"))

	v, err = s.OptIn(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "false", v)

	v, err = s.OptIn(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, "false", v)

	assert.Equal(t, "false", mr.HGet("koraki-test:post_meta:_koraki_post_field", "7"))
}

func TestRedisStore_ServerGone_ReturnsErrors(t *testing.T) {
	t.Parallel()
	s, mr := newTestRedisStore(t)
	ctx := context.Background()
	mr.Close()

	_, err := s.Load(ctx)
	assert.Error(t, err)
	_, err = s.OptIn(ctx, 1)
	assert.Error(t, err)
	assert.Error(t, s.Save(ctx, Record{ClientID: "cid"}))
	assert.Error(t, s.SetOptIn(ctx, 1, "true"))
}
