package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	BlockedSetTTL       = 5 * time.Minute
	BlockedSetKeyPrefix = "block:ids:member" // 某个成员双向屏蔽的成员 id 列表
)

// BlockCacheRepository 缓存成员的屏蔽集合。
// 屏蔽/解除屏蔽后由调用方删除双方的 key，读侧惰性回填。
type BlockCacheRepository struct {
	RDB *redis.Client
	ttl time.Duration
}

func NewBlockCacheRepository(rdb *redis.Client) *BlockCacheRepository {
	return &BlockCacheRepository{RDB: rdb, ttl: BlockedSetTTL}
}

func (r *BlockCacheRepository) key(memberID uint64) string {
	return fmt.Sprintf("%s:%d", BlockedSetKeyPrefix, memberID)
}

// GetBlocked 第二个返回值表示是否命中缓存
func (r *BlockCacheRepository) GetBlocked(ctx context.Context, memberID uint64) ([]uint64, bool, error) {
	raw, err := r.RDB.Get(ctx, r.key(memberID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var ids []uint64
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, false, err
	}
	return ids, true, nil
}

// SetBlocked 回填屏蔽集合，空集合也会写入避免反复回源
func (r *BlockCacheRepository) SetBlocked(ctx context.Context, memberID uint64, ids []uint64) error {
	if ids == nil {
		ids = []uint64{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return r.RDB.Set(ctx, r.key(memberID), raw, r.ttl).Err()
}

// Invalidate 删除若干成员的缓存
func (r *BlockCacheRepository) Invalidate(ctx context.Context, memberIDs ...uint64) error {
	if len(memberIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(memberIDs))
	for _, id := range memberIDs {
		keys = append(keys, r.key(id))
	}
	if err := r.RDB.Del(ctx, keys...).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}
