package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisTimeout = 3 * time.Second

type Redis struct {
	Client        *redis.Client
	Logger        *zap.SugaredLogger
	UpdateChannel string
}

func New(host, password, updateChannel string, logger *zap.SugaredLogger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        host,
		Password:    password,
		DialTimeout: redisTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	_, err := client.Ping(ctx).Result()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Redis{
		Client:        client,
		Logger:        logger,
		UpdateChannel: updateChannel,
	}, nil
}

func (r *Redis) Produce(data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("redis: marshal: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	err = r.Client.Publish(ctx, r.UpdateChannel, jsonData).Err()
	if err != nil {
		return fmt.Errorf("redis: publish[%s]: %w", r.UpdateChannel, err)
	}

	r.Logger.Debugw("redis: Produce", "channel", r.UpdateChannel, "data", data)

	return nil
}

func (r *Redis) Close() error {
	return r.Client.Close()
}
