package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

var ctx = context.Background()

var ErrPendingCheckoutNotFound = errors.New("no pending checkout for intent")

type RedisCache struct {
	Client redis.UniversalClient
}

func NewRedisCache(url string) (*RedisCache, error) {
	client := redis.NewClient(
		&redis.Options{
			Addr:     url,
			Password: "",
			DB:       0,
		},
	)
	redisCache := &RedisCache{Client: client}

	return redisCache, nil
}

func (r *RedisCache) Set(key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key, data, expiration).Err()
}

func (r *RedisCache) Get(key string, dest any) (found bool, err error) {
	data, err := r.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, json.Unmarshal(data, dest)
}

func (r *RedisCache) Del(keys ...string) error {
	return r.Client.Del(ctx, keys...).Err()
}

/*
* catalog cache
 */

const catalogTTL = 5 * time.Minute

func (r *RedisCache) SetEventCatalog(eventID uint, view any) error {
	return r.Set(MakeEventCatalogKey(eventID), view, catalogTTL)
}

func (r *RedisCache) GetEventCatalog(eventID uint, dest any) (bool, error) {
	return r.Get(MakeEventCatalogKey(eventID), dest)
}

func (r *RedisCache) SetEventSlug(slug string, eventID uint) error {
	return r.Set(MakeEventSlugKey(slug), eventID, catalogTTL)
}

func (r *RedisCache) GetEventSlug(slug string) (uint, bool, error) {
	var eventID uint
	found, err := r.Get(MakeEventSlugKey(slug), &eventID)
	return eventID, found, err
}

// InvalidateEvent drops the cached catalog view after an organizer write.
func (r *RedisCache) InvalidateEvent(eventID uint, slug string) error {
	return r.Del(MakeEventCatalogKey(eventID), MakeEventSlugKey(slug))
}

/*
* pending checkouts (sandbox/live payment modes)
 */

// SetPendingCheckout stashes a serialized issue request until the
// provider confirms payment. The TTL bounds how long an unpaid intent
// can linger; no inventory is held while it waits.
func (r *RedisCache) SetPendingCheckout(intentID string, payload any, ttl time.Duration) error {
	return r.Set(MakePendingCheckoutKey(intentID), payload, ttl)
}

// TakePendingCheckout atomically fetches and deletes the stash so a
// replayed confirmation cannot issue the order twice.
func (r *RedisCache) TakePendingCheckout(intentID string, dest any) error {
	data, err := r.Client.GetDel(ctx, MakePendingCheckoutKey(intentID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrPendingCheckoutNotFound
		}
		return err
	}
	return json.Unmarshal(data, dest)
}
