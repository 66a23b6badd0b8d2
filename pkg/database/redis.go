package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"quest_reward_backend/internal/config"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

const redisPingTimeout = 3 * time.Second

// RedisOptions maps the redis section onto client options. The leaderboard
// issues one short command per award, so a small pool with tight timeouts
// is enough.
func RedisOptions(cfg *config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     20,
		MinIdleConns: 2,
		DialTimeout:  redisPingTimeout,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}
}

// InitRedis returns a nil client when redis is disabled; callers fall back
// to the database.
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		log.Println("Redis disabled, leaderboard served from database")
		return nil, nil
	}

	opts := RedisOptions(cfg)
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, errors.Wrapf(err, "ping redis at %s", opts.Addr)
	}

	log.Printf("Redis connection established (%s db=%d)", opts.Addr, opts.DB)
	return rdb, nil
}
