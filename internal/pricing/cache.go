package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ninja0404/trade-journal/pkg/logger"
)

// CacheConfig redis价格缓存配置
type CacheConfig struct {
	Addr     string `json:"addr" yaml:"addr" toml:"addr"`
	Password string `json:"password" yaml:"password" toml:"password"`
	DB       int    `json:"db" yaml:"db" toml:"db"`
	TTL      int    `json:"ttl" yaml:"ttl" toml:"ttl"` // 单位秒
}

// Cache redis价格缓存，nil接收者等价于未启用缓存
// 减少对DexScreener限频接口的请求量
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(cfg CacheConfig) *Cache {
	if cfg.Addr == "" {
		return nil
	}

	ttl := 30 * time.Second
	if cfg.TTL > 0 {
		ttl = time.Duration(cfg.TTL) * time.Second
	}

	return &Cache{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		ttl: ttl,
	}
}

func cacheKey(address string, chain string) string {
	return fmt.Sprintf("price:%s:%s", chain, address)
}

func (c *Cache) Get(ctx context.Context, address string, chain string) (*PriceInfo, bool) {
	if c == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, cacheKey(address, chain)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("价格缓存读取失败", logger.FieldErr(err))
		}
		return nil, false
	}

	var info PriceInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, false
	}

	return &info, true
}

func (c *Cache) Set(ctx context.Context, address string, chain string, info *PriceInfo) {
	if c == nil || info == nil {
		return
	}

	data, err := json.Marshal(info)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, cacheKey(address, chain), data, c.ttl).Err(); err != nil {
		logger.Warn("价格缓存写入失败", logger.FieldErr(err))
	}
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
