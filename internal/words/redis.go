package words

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyCategories     = "words:categories"
	keyCategoryPrefix = "words:category:"
)

// RedisSource keeps each category as a Redis set of JSON-encoded words and
// draws with SRANDMEMBER, which returns distinct members for a positive count.
type RedisSource struct {
	rdb *redis.Client
}

// NewRedisSource connects to the Redis server at url (redis://host:port/db).
func NewRedisSource(url string) (*RedisSource, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisSource{rdb: rdb}, nil
}

// NewRedisSourceFromClient wraps an existing client.
func NewRedisSourceFromClient(rdb *redis.Client) *RedisSource {
	return &RedisSource{rdb: rdb}
}

func keyCategory(name string) string { return keyCategoryPrefix + cleanCategory(name) }

// Categories lists categories sorted by name.
func (s *RedisSource) Categories(ctx context.Context) ([]Category, error) {
	names, err := s.rdb.SMembers(ctx, keyCategories).Result()
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	sort.Strings(names)

	pipe := s.rdb.Pipeline()
	counts := make([]*redis.IntCmd, len(names))
	for i, name := range names {
		counts[i] = pipe.SCard(ctx, keyCategory(name))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}

	out := make([]Category, 0, len(names))
	for i, name := range names {
		out = append(out, Category{Name: name, Count: int(counts[i].Val())})
	}
	return out, nil
}

// Draw picks up to n distinct words from category.
func (s *RedisSource) Draw(ctx context.Context, category string, n int) ([]Word, error) {
	if n <= 0 {
		return []Word{}, nil
	}
	members, err := s.rdb.SRandMemberN(ctx, keyCategory(category), int64(n)).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("draw words: %w", err)
	}

	out := make([]Word, 0, len(members))
	for _, raw := range members {
		var w Word
		if err := json.Unmarshal([]byte(raw), &w); err != nil {
			return nil, fmt.Errorf("decode word %q: %w", raw, err)
		}
		out = append(out, w)
	}
	return out, nil
}

// Seed replaces the stored categories present in c with c's words.
func (s *RedisSource) Seed(ctx context.Context, c *Catalog) error {
	pipe := s.rdb.TxPipeline()
	for _, name := range c.Names() {
		list := c.Words(name)
		members := make([]interface{}, 0, len(list))
		for _, w := range list {
			raw, err := json.Marshal(w)
			if err != nil {
				return err
			}
			members = append(members, string(raw))
		}

		pipe.Del(ctx, keyCategory(name))
		if len(members) > 0 {
			pipe.SAdd(ctx, keyCategory(name), members...)
			pipe.SAdd(ctx, keyCategories, name)
		} else {
			pipe.SRem(ctx, keyCategories, name)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("seed words: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *RedisSource) Close() error {
	return s.rdb.Close()
}
