package target

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pagesKey          = "livingroom_pages"
	storeWriteTimeout = 3 * time.Second
)

// RedisStore keeps one hash per page: field = container ID, value = HTML.
type RedisStore struct {
	Client *redis.Client
	// TTL is refreshed on every write; zero means one day.
	TTL time.Duration
}

func KeyForPage(page string) string {
	// {...} keeps each page on a stable Redis Cluster hash slot.
	return fmt.Sprintf("livingroom_fragments:{%s}", page)
}

func (s *RedisStore) ttl() time.Duration {
	if s.TTL <= 0 {
		return 24 * time.Hour
	}
	return s.TTL
}

func (s *RedisStore) Publish(ctx context.Context, page string, fragments map[string]string) error {
	if s == nil || s.Client == nil {
		return fmt.Errorf("nil redis client")
	}
	key := KeyForPage(page)

	existing, err := s.Client.HKeys(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis HKEYS %s: %w", key, err)
	}

	pipe := s.Client.Pipeline()
	for container, html := range fragments {
		pipe.HSet(ctx, key, container, html)
	}

	var stale []string
	for _, field := range existing {
		if _, ok := fragments[field]; !ok {
			stale = append(stale, field)
		}
	}
	if len(stale) > 0 {
		pipe.HDel(ctx, key, stale...)
	}
	pipe.Expire(ctx, key, s.ttl())
	pipe.SAdd(ctx, pagesKey, page)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline exec %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) SetFragment(ctx context.Context, page, container, content string) error {
	if s == nil || s.Client == nil {
		return fmt.Errorf("nil redis client")
	}
	key := KeyForPage(page)
	pipe := s.Client.Pipeline()
	pipe.HSet(ctx, key, container, content)
	pipe.Expire(ctx, key, s.ttl())
	pipe.SAdd(ctx, pagesKey, page)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set fragment %s/%s: %w", key, container, err)
	}
	return nil
}

func (s *RedisStore) Fragments(ctx context.Context, page string) (map[string]string, error) {
	if s == nil || s.Client == nil {
		return nil, fmt.Errorf("nil redis client")
	}
	key := KeyForPage(page)
	out, err := s.Client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis HGETALL %s: %w", key, err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func (s *RedisStore) Pages(ctx context.Context) ([]string, error) {
	if s == nil || s.Client == nil {
		return nil, fmt.Errorf("nil redis client")
	}
	pages, err := s.Client.SMembers(ctx, pagesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis SMEMBERS %s: %w", pagesKey, err)
	}
	sort.Strings(pages)
	return pages, nil
}

// NewRedisClient parses REDIS_URL, applies an optional password and pings.
func NewRedisClient(redisURL, redisPassword string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	if redisPassword != "" {
		opt.Password = redisPassword
	}
	rdb := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}
