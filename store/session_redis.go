package store

import (
	"context"
	"encoding/json"
	"fmt"
	models "storefront/model"
	"strings"
	"time"

	"github.com/pkg/errors"
	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisOptions selects between a single node and a sentinel-managed master.
type RedisOptions struct {
	Addr          string
	DB            int
	SentinelAddrs string // comma separated; enables failover mode when set
	MasterName    string
	MaxRetries    int
}

// NewRedisClient connects and pings with exponential backoff (capped at 30s).
func NewRedisClient(ctx context.Context, opts RedisOptions, log logrus.FieldLogger) (*redis.Client, error) {
	var rdb *redis.Client
	if opts.SentinelAddrs != "" {
		master := opts.MasterName
		if master == "" {
			master = "mymaster"
		}
		log.Infof("initializing redis in sentinel mode. master: %s, db: %d", master, opts.DB)
		rdb = redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:    master,
			SentinelAddrs: strings.Split(opts.SentinelAddrs, ","),
			DB:            opts.DB,
		})
	} else {
		log.Infof("initializing redis in single node mode. addr: %s, db: %d", opts.Addr, opts.DB)
		rdb = redis.NewClient(&redis.Options{Addr: opts.Addr, DB: opts.DB})
	}

	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}
	for i := 0; i < maxRetries; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			log.Info("connected to redis")
			return rdb, nil
		}
		if i == maxRetries-1 {
			_ = rdb.Close()
			return nil, errors.Wrapf(err, "failed to connect to redis after %d retries", maxRetries)
		}
		backoff := time.Duration(1<<i) * time.Second
		if backoff > 30*time.Second {
			backoff = 30 * time.Second
		}
		log.Warnf("redis not ready, retry in %v... (%d/%d)", backoff, i+1, maxRetries)
		select {
		case <-ctx.Done():
			_ = rdb.Close()
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
	return rdb, nil
}

// RedisSessionStore keeps each session as a JSON string under session:<id>
// with a TTL that is refreshed on every Load and Save.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func sessionKey(id string) string { return fmt.Sprintf("session:%s", id) }

func (r *RedisSessionStore) Load(ctx context.Context, id string) (models.Session, error) {
	data, err := r.rdb.GetEx(ctx, sessionKey(id), r.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.NewSession(id), nil
	}
	if err != nil {
		return models.Session{}, errors.Wrapf(err, "load session %s", id)
	}
	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return models.Session{}, errors.Wrapf(err, "decode session %s", id)
	}
	s.ID = id
	if s.Cart.Items == nil {
		s.Cart.Items = []models.CartItem{}
	}
	return s, nil
}

func (r *RedisSessionStore) Save(ctx context.Context, s models.Session) error {
	if s.ID == "" {
		return errors.New("session id required")
	}
	s.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	if err := r.rdb.Set(ctx, sessionKey(s.ID), data, r.ttl).Err(); err != nil {
		return errors.Wrapf(err, "save session %s", s.ID)
	}
	return nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, sessionKey(id)).Err()
}
