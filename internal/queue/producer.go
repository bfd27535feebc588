package queue

import (
	"context"

	"property-ingest/internal/config"
	"property-ingest/internal/model"

	"github.com/go-redis/redis/v8"
)

type Producer struct {
	redis  *RedisClient
	client *redis.Client
	cfg    *config.Config
}

func NewProducer(redisClient *RedisClient, cfg *config.Config) *Producer {
	return &Producer{
		redis:  redisClient,
		client: redisClient.Client(),
		cfg:    cfg,
	}
}

func (p *Producer) EnqueueIngestionJob(ctx context.Context, job model.IngestionJob) error {
	data, err := EncodeJob(job)
	if err != nil {
		return err
	}

	return p.client.LPush(ctx, p.cfg.Redis.IngestionQueue, data).Err()
}

// Depth returns the number of jobs waiting and dead-lettered.
func (p *Producer) Depth(ctx context.Context) (pending, dead int64, err error) {
	pending, err = p.client.LLen(ctx, p.cfg.Redis.IngestionQueue).Result()
	if err != nil {
		return 0, 0, err
	}
	dead, err = p.client.LLen(ctx, p.redis.DeadLetterQueue(p.cfg.Redis.IngestionQueue)).Result()
	if err != nil {
		return 0, 0, err
	}
	return pending, dead, nil
}
