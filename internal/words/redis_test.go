package words

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisSource(t *testing.T) (*RedisSource, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisSourceFromClient(rdb), mr
}

func TestRedisSourceSeedAndDraw(t *testing.T) {
	s, _ := newTestRedisSource(t)
	ctx := context.Background()

	c, err := ParseCatalog([]byte(testCatalog))
	require.NoError(t, err)
	require.NoError(t, s.Seed(ctx, c))

	cats, err := s.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Category{{Name: "fruit", Count: 3}, {Name: "single", Count: 1}}, cats)

	got, err := s.Draw(ctx, "fruit", 3)
	require.NoError(t, err)
	assert.ElementsMatch(t, c.Words("fruit"), got)

	got, err = s.Draw(ctx, "fruit", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.NotEqual(t, got[0], got[1])
}

func TestRedisSourceShortPool(t *testing.T) {
	s, _ := newTestRedisSource(t)
	ctx := context.Background()

	c, err := ParseCatalog([]byte(testCatalog))
	require.NoError(t, err)
	require.NoError(t, s.Seed(ctx, c))

	got, err := s.Draw(ctx, "single", 2)
	require.NoError(t, err)
	assert.Equal(t, []Word{{Text: "lonely"}}, got)

	got, err = s.Draw(ctx, "missing", 2)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisSourceReseedReplaces(t *testing.T) {
	s, _ := newTestRedisSource(t)
	ctx := context.Background()

	first, err := ParseCatalog([]byte("fruit:\n  - apple\n  - pear\n"))
	require.NoError(t, err)
	require.NoError(t, s.Seed(ctx, first))

	second, err := ParseCatalog([]byte("fruit:\n  - kiwi\n"))
	require.NoError(t, err)
	require.NoError(t, s.Seed(ctx, second))

	got, err := s.Draw(ctx, "fruit", 5)
	require.NoError(t, err)
	assert.Equal(t, []Word{{Text: "kiwi"}}, got)
}

func TestNewRedisSourceURL(t *testing.T) {
	_, mr := newTestRedisSource(t)

	s, err := NewRedisSource("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	defer s.Close()

	_, err = NewRedisSource("")
	assert.Error(t, err)
}
