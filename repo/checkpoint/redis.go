package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/HildaM/logs/slog"
	"github.com/go-redis/redis/v8"

	"github.com/hildam/indus-flow-go/entity/conf"
)

// redisStore redis 存储，记录按 TTL 过期
type redisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStore 连接 redis 并创建存储
func NewRedisStore(ctx context.Context, cfg conf.CheckpointConfig) (Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Error("NewRedisStore failed, ping redis fail, addr = %s, err = %v", cfg.Addr, err)
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStoreWithClient(client, cfg.KeyPrefix, cfg.TTL), nil
}

// NewRedisStoreWithClient 使用已有客户端创建存储，ttl 为 0 时不过期
func NewRedisStoreWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) Store {
	return &redisStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (s *redisStore) key(id string) string {
	return s.keyPrefix + id
}

func (s *redisStore) Get(ctx context.Context, checkPointID string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key(checkPointID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get checkpoint %s: %w", checkPointID, err)
	}
	return data, true, nil
}

func (s *redisStore) Set(ctx context.Context, checkPointID string, checkPoint []byte) error {
	if err := s.client.Set(ctx, s.key(checkPointID), checkPoint, s.ttl).Err(); err != nil {
		return fmt.Errorf("set checkpoint %s: %w", checkPointID, err)
	}
	return nil
}
