package checkpoint

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/compose"

	"github.com/hildam/indus-flow-go/entity/conf"
)

// Store 查询运行记录存储，用 runID 进行索引
// 接口与 eino 的 CheckPointStore 一致，可以直接交给 compose 使用
type Store = compose.CheckPointStore

// memoryStore 进程内存储，重启后丢失
type memoryStore struct {
	mu  sync.RWMutex
	buf map[string][]byte // map映射存储
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() Store {
	return &memoryStore{buf: make(map[string][]byte)}
}

func (c *memoryStore) Get(ctx context.Context, checkPointID string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.buf[checkPointID]
	return data, ok, nil
}

func (c *memoryStore) Set(ctx context.Context, checkPointID string, checkPoint []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf[checkPointID] = append([]byte(nil), checkPoint...)
	return nil
}

// New 根据配置创建存储，provider 为空或 none 时返回 nil
func New(ctx context.Context, cfg conf.CheckpointConfig) (Store, error) {
	switch cfg.Provider {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported checkpoint provider %q", cfg.Provider)
	}
}
