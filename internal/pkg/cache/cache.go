package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/bewear-pt/storefront/internal/pkg/env"
)

// CatalogPrefix namespaces the cached storefront listings.
const CatalogPrefix = "catalog:"

var (
	client *redis.Client
	ctx    = context.Background()
)

// SetupCache connects to Redis database 0 using CACHE_HOST, CACHE_PORT and
// CACHE_PASSWORD. A failed ping is logged; callers fall back to the database.
func SetupCache() {
	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", env.GetEnv("CACHE_HOST", "localhost"), env.GetEnv("CACHE_PORT", "6379")),
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		DB:       0,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warnf("[Cache] Redis unreachable, catalog pages will not be cached: %v", err)
		return
	}
	log.Infof("[Cache] Connected to Redis at %s", client.Options().Addr)
}

// SetClient replaces the shared client. Used by tests and the CLI.
func SetClient(c *redis.Client) {
	client = c
}

func GetClient() *redis.Client {
	if client == nil {
		SetupCache()
	}
	return client
}

// CatalogKey builds the cache key of a catalog listing, e.g. CatalogKey("category", "camisolas").
func CatalogKey(parts ...string) string {
	key := CatalogPrefix
	for i, p := range parts {
		if i > 0 {
			key += ":"
		}
		key += p
	}
	return key
}

// Remember returns the JSON value cached under key, or calls load, caches its
// result for ttl and returns it. Cache failures fall through to load.
func Remember[T any](key string, ttl time.Duration, load func() (T, error)) (T, error) {
	c := GetClient()
	if raw, err := c.Get(ctx, key).Bytes(); err == nil {
		var cached T
		if uerr := json.Unmarshal(raw, &cached); uerr == nil {
			return cached, nil
		}
		log.Warnf("[Cache] Dropping undecodable entry %s", key)
	} else if !errors.Is(err, redis.Nil) {
		log.Debugf("[Cache] Get %s failed: %v", key, err)
	}

	value, err := load()
	if err != nil {
		return value, err
	}
	if data, merr := json.Marshal(value); merr == nil {
		if serr := c.Set(ctx, key, data, ttl).Err(); serr != nil {
			log.Debugf("[Cache] Set %s failed: %v", key, serr)
		}
	}
	return value, nil
}

// ForgetCatalog drops every cached catalog listing and returns how many keys
// were removed. Run after the catalog changes.
func ForgetCatalog(c *redis.Client) (int, error) {
	iter := c.Scan(ctx, 0, CatalogPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("scan catalog keys: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := c.Del(ctx, keys...).Err(); err != nil {
		return 0, fmt.Errorf("delete catalog keys: %w", err)
	}
	return len(keys), nil
}
