package ratesvc

import (
	"time"

	"github.com/go-redis/redis/v7"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// Cache keeps the last fetched rates of a base currency.
type Cache interface {
	Get(base string) (map[string]float64, error)
	Set(base string, rates map[string]float64) error
}

var errCacheMiss = errors.New("rates cache miss")

// RedisCache stores msgpack-encoded rates under "rates:<base>".
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ Cache = (*RedisCache)(nil)

func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func cacheKey(base string) string { return "rates:" + base }

type cachedRates struct {
	Rates     map[string]float64 `msgpack:"rates"`
	FetchedAt time.Time          `msgpack:"fetched_at"`
}

func (c *RedisCache) Get(base string) (map[string]float64, error) {
	data, err := c.client.Get(cacheKey(base)).Bytes()
	if err == redis.Nil {
		return nil, errCacheMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading rates cache")
	}
	return decodeRates(data)
}

func (c *RedisCache) Set(base string, rates map[string]float64) error {
	data, err := encodeRates(rates, time.Now().UTC())
	if err != nil {
		return err
	}
	return errors.Wrap(c.client.Set(cacheKey(base), data, c.ttl).Err(), "writing rates cache")
}

func encodeRates(rates map[string]float64, at time.Time) ([]byte, error) {
	data, err := msgpack.Marshal(cachedRates{Rates: rates, FetchedAt: at})
	return data, errors.Wrap(err, "encoding rates")
}

func decodeRates(data []byte) (map[string]float64, error) {
	var cr cachedRates
	if err := msgpack.Unmarshal(data, &cr); err != nil {
		return nil, errors.Wrap(err, "decoding rates")
	}
	if len(cr.Rates) == 0 {
		return nil, errCacheMiss
	}
	return cr.Rates, nil
}
