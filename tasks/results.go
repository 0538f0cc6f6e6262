package tasks

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"segmenta.io/wbs/redis"
	"segmenta.io/wbs/utils"
)

const ResultsDB redis.DB = 3

type ResultCacheConfig struct {
	TTLHours int `envconfig:"WBS_RESULT_CACHE_TTL_HOURS" default:"24"`
}

// ResultCache keeps finished segmentation responses keyed by dictionary
// contents and text, so re-submitted chunks skip the pipeline entirely. A
// prefix index only depends on its dictionary, which makes the pair a
// complete cache key.
type ResultCache struct {
	client redis.Client
	ttl    time.Duration
}

func NewResultCache() (ResultCache, error) {
	var cfg ResultCacheConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return ResultCache{}, err
	}
	client, err := redis.NewClient(ResultsDB)
	if err != nil {
		return ResultCache{}, err
	}
	return ResultCache{
		client: client,
		ttl:    time.Duration(cfg.TTLHours) * time.Hour,
	}, nil
}

// Key derives the cache key for one dictionary + text pair.
func Key(dictionaryID string, text string) string {
	hash := utils.HashBytes([]byte(dictionaryID), []byte(text))
	return fmt.Sprintf("result:%x", hash)
}

// Get returns the cached response and whether it was present.
func (cache ResultCache) Get(key string) (string, bool, error) {
	raw, err := cache.client.GetBytes(key)
	if err != nil {
		if redis.IsNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(raw), true, nil
}

func (cache ResultCache) Put(key string, response string) error {
	return cache.client.SetBytes(key, []byte(response), cache.ttl)
}
