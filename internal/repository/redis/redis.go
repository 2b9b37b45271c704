package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options 连接参数，Addr 为空表示不启用
type Options struct {
	Addr     string
	Password string
	DB       int
}

func (o Options) Enabled() bool { return o.Addr != "" }

// Open 建立连接并 Ping 一次，失败时关闭客户端
func Open(opts Options) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("unable to reach redis at %s: %w", opts.Addr, err)
	}
	return rdb, nil
}
