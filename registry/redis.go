package registry

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// keyPrefix namespaces the registry's Redis keys so ClearAll can't touch
// anything else sharing the instance.
const keyPrefix = "mc-dedup|"

// RedisRegistry keeps the dedup sets in Redis so that a restart does not
// re-emit notifications that were already sent. Optional: the engine's
// guarantees only assume the in-memory store.
type RedisRegistry struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisRegistry initialises a redis client using the settings from the
// engine config.
func NewRedisRegistry(addr, password string, db int) *RedisRegistry {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password, // default is no password
		DB:       db,       // default DB is 0
	})
	return &RedisRegistry{client: rdb, ctx: context.Background()}
}

func (r *RedisRegistry) Has(key Key) bool {
	ok, err := r.client.SIsMember(r.ctx, keyPrefix+key.Cache, key.Member).Result()
	if err != nil {
		// fail open: a missed dedup is a duplicate alert, a false positive
		// is a silently dropped one
		return false
	}
	return ok
}

func (r *RedisRegistry) Add(key Key) error {
	return r.client.SAdd(r.ctx, keyPrefix+key.Cache, key.Member).Err()
}

func (r *RedisRegistry) Clear(cache string) error {
	return r.client.Del(r.ctx, keyPrefix+cache).Err()
}

func (r *RedisRegistry) ClearAll() error {
	keys, err := r.client.Keys(r.ctx, keyPrefix+"*").Result()
	if err != nil {
		return err
	}
	for _, k := range keys {
		err = r.client.Del(r.ctx, k).Err()
	}
	return err
}

func (r *RedisRegistry) Ping() error {
	return r.client.Ping(r.ctx).Err()
}
