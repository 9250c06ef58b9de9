package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/microblog-app/microblog-back/internal/logs"
)

// FeedTTL bounds how stale a cached feed page can get.
const FeedTTL = 5 * time.Minute

const feedVersionKey = "feed:version"

var RedisClient *redis.Client

func InitRedis(addr, password string) error {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("connexion Redis: %w", err)
	}

	RedisClient = client
	return nil
}

func Enabled() bool {
	return RedisClient != nil
}

func Close() {
	if RedisClient != nil {
		_ = RedisClient.Close()
		RedisClient = nil
	}
}

// Every feed key embeds the current version, so bumping it drops all pages at once.
func feedKey(ctx context.Context, sort string, page, size int) (string, error) {
	version, err := RedisClient.Get(ctx, feedVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("feed:%d:%s:%d:%d", version, sort, size, page), nil
}

// GetFeedPage returns the cached bytes of a feed page, if any, along with the
// key a miss must be stored under. The key pins the version read here, so rows
// loaded after a concurrent invalidation land on the retired version.
func GetFeedPage(ctx context.Context, sort string, page, size int) ([]byte, string, bool) {
	if RedisClient == nil {
		return nil, "", false
	}
	key, err := feedKey(ctx, sort, page, size)
	if err != nil {
		logCacheError("Feed cache version read failed", err)
		return nil, "", false
	}
	data, err := RedisClient.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logCacheError("Feed cache read failed", err)
		}
		return nil, key, false
	}
	return data, key, true
}

// SetFeedPage stores a page under a key obtained from GetFeedPage. An entry
// already present is kept.
func SetFeedPage(ctx context.Context, key string, data []byte) {
	if RedisClient == nil || key == "" {
		return
	}
	if err := RedisClient.SetNX(ctx, key, data, FeedTTL).Err(); err != nil {
		logCacheError("Feed cache write failed", err)
	}
}

// InvalidateFeed is called after every committed change to posts, likes or
// author names.
func InvalidateFeed(ctx context.Context) {
	if RedisClient == nil {
		return
	}
	if err := RedisClient.Incr(ctx, feedVersionKey).Err(); err != nil {
		logCacheError("Feed cache invalidation failed", err)
	}
}

func logCacheError(message string, err error) {
	logs.LogJSON("WARN", message, map[string]interface{}{
		"error": err.Error(),
	})
}
