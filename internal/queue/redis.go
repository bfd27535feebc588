package queue

import (
	"context"
	"fmt"
	"time"

	"property-ingest/internal/config"

	"github.com/go-redis/redis/v8"
)

// RedisClient wraps the connection shared by the producer and the consumer.
type RedisClient struct {
	client *redis.Client
	cfg    *config.Config
}

func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &RedisClient{
		client: rdb,
		cfg:    cfg,
	}, nil
}

// DeadLetterQueue names the list that failed messages from queueName are
// moved to.
func (r *RedisClient) DeadLetterQueue(queueName string) string {
	return queueName + r.cfg.Redis.DLQSuffix
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

func (r *RedisClient) Client() *redis.Client {
	return r.client
}
