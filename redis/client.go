package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	jsonpatch "github.com/evanphx/json-patch"
	"github.com/go-redis/redis/v8"
	"github.com/kelseyhightower/envconfig"
)

type DB int
type ReleaseLock func() error

type Client struct {
	client         redis.UniversalClient
	lockExpiration time.Duration
}

var ctx = context.Background()

type Config struct {
	LockExpirationSeconds   int     `envconfig:"SEG_COMN_REDIS_LOCK_EXPIRATION" default:"3"`
	Host                    string  `envconfig:"SEG_COMN_REDIS_HOST" required:"true"`
	Port                    string  `envconfig:"SEG_COMN_REDIS_PORT" required:"true"`
	HASentinelPort          string  `envconfig:"SEG_COMN_REDIS_HA_SENTINEL_PORT" default:"26379"`
	HASentinelMasterName    string  `envconfig:"SEG_COMN_REDIS_HA_MASTER_NAME" default:"mymaster"`
	Password                string  `envconfig:"SEG_COMN_REDIS_AUTH_PASSWORD" default:"0"`
	AuthRequired            bool    `envconfig:"SEG_COMN_REDIS_AUTH_REQUIRED" default:"false"`
	HAMode                  bool    `envconfig:"SEG_COMN_REDIS_HA_MODE" default:"false"`
	HASentinelSocketTimeout float32 `envconfig:"SEG_COMN_REDIS_SOCKET_TIMEOUT" default:"0.5"`
}

func NewClient(db DB) (Client, error) {
	cfg, err := readEnvironment()
	if err != nil {
		return Client{}, err
	}
	var client redis.UniversalClient
	if cfg.HAMode {
		client = CreateClusterClient(cfg, db)
	} else {
		client = CreateClient(cfg, db)
	}
	return Client{
		client:         client,
		lockExpiration: time.Duration(cfg.LockExpirationSeconds) * time.Second,
	}, nil
}

func CreateClusterClient(cfg *Config, db DB) *redis.ClusterClient {
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.HASentinelPort)
	timeout := time.Duration(cfg.HASentinelSocketTimeout) * time.Second
	options := redis.FailoverOptions{
		SentinelAddrs: []string{addr},
		ReadTimeout:   timeout,
		WriteTimeout:  timeout,
		MaxRetries:    6,
		DB:            int(db),
		MasterName:    cfg.HASentinelMasterName,
	}
	if cfg.AuthRequired {
		options.Password = cfg.Password
	}
	return redis.NewFailoverClusterClient(&options)
}

func CreateClient(cfg *Config, db DB) *redis.Client {
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	options := redis.Options{
		Addr:       addr,
		MaxRetries: 6,
		DB:         int(db),
	}
	if cfg.AuthRequired {
		options.Password = cfg.Password
	}
	return redis.NewClient(&options)
}

// IsNotFound reports whether err means the key does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}

func (client *Client) GetDocument(redisKey string, doc interface{}) error {
	raw, err := client.GetBytes(redisKey)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, doc)
}

func (client *Client) GetBytes(redisKey string) ([]byte, error) {
	response := client.client.Get(ctx, redisKey)
	if response.Err() != nil {
		return nil, response.Err()
	}
	return response.Bytes()
}

func (client *Client) SetBytes(redisKey string, value []byte, expiration time.Duration) error {
	return client.client.Set(ctx, redisKey, value, expiration).Err()
}

// UpdateDocument applies an in-place update to the stored JSON document under
// a lock. The updated struct is merged back into the stored bytes as an RFC
// 7386 merge patch, so fields other services keep on the same document
// survive even though this service does not model them.
func (client *Client) UpdateDocument(redisKey string, doc interface{}, apply func()) (err error) {
	releaseLock, err := client.Lock(redisKey)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := releaseLock(); err == nil {
			err = releaseErr
		}
	}()
	raw, err := client.GetBytes(redisKey)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(raw, doc); err != nil {
		return err
	}
	apply()
	patch, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	merged, err := jsonpatch.MergePatch(raw, patch)
	if err != nil {
		return err
	}
	return client.SetBytes(redisKey, merged, 0)
}

func (client *Client) Lock(redisKey string) (ReleaseLock, error) {
	lockCl := redislock.New(client.client)
	str := redislock.LimitRetry(redislock.LinearBackoff(time.Second), 20)
	lockKey := fmt.Sprintf("lock:%s", redisKey)
	lock, err := lockCl.Obtain(ctx, lockKey, client.lockExpiration, &redislock.Options{RetryStrategy: str})
	if err != nil {
		return nil, err
	}
	return func() error {
		return lock.Release(ctx)
	}, nil
}

func (client *Client) SaveDoc(redisKey string, document interface{}) error {
	b, err := json.Marshal(document)
	if err != nil {
		return err
	}
	return client.SetBytes(redisKey, b, 0)
}

func (client *Client) Close() error {
	return client.client.Close()
}

func readEnvironment() (*Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
