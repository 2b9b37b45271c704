package service

import (
	"context"

	"Community_Graph/internal/model"
	"Community_Graph/internal/repository/mysql"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// BlockCache 屏蔽集合缓存，redis 未启用时为 nil
type BlockCache interface {
	GetBlocked(ctx context.Context, memberID uint64) ([]uint64, bool, error)
	SetBlocked(ctx context.Context, memberID uint64, ids []uint64) error
	Invalidate(ctx context.Context, memberIDs ...uint64) error
}

// VisibilityPolicy 根据屏蔽和私密状态判断成员资料、内容是否可见
type VisibilityPolicy struct {
	db    *gorm.DB
	cache BlockCache
}

func NewVisibilityPolicy(db *gorm.DB, cache BlockCache) *VisibilityPolicy {
	return &VisibilityPolicy{db: db, cache: cache}
}

// CanViewProfile 本人 > 被对方屏蔽 > 公开 > 已接受的关注者
func (p *VisibilityPolicy) CanViewProfile(ctx context.Context, viewer, target *model.Member) (bool, error) {
	if viewer.ID == target.ID {
		return true, nil
	}
	var n int64
	if err := p.db.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ? AND following_id = ? AND status = ?", target.ID, viewer.ID, model.FollowBlocked).
		Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if !target.IsPrivate {
		return true, nil
	}
	repo := &mysql.FollowRepository{DB: p.db.WithContext(ctx)}
	return repo.IsFollowing(viewer.ID, target.ID)
}

// BlockedIDs 与 memberID 之间存在任意方向屏蔽关系的成员 id
func (p *VisibilityPolicy) BlockedIDs(ctx context.Context, memberID uint64) ([]uint64, error) {
	if p.cache != nil {
		if ids, ok, err := p.cache.GetBlocked(ctx, memberID); err == nil && ok {
			return ids, nil
		} else if err != nil {
			log.Warn().Err(err).Uint64("member", memberID).Msg("block cache read failed")
		}
	}
	ids, err := blockedIDs(p.db.WithContext(ctx), memberID)
	if err != nil {
		return nil, err
	}
	if p.cache != nil {
		if err := p.cache.SetBlocked(ctx, memberID, ids); err != nil {
			log.Warn().Err(err).Uint64("member", memberID).Msg("block cache fill failed")
		}
	}
	return ids, nil
}

// invalidate 屏蔽关系变化后删除相关成员的缓存
func (p *VisibilityPolicy) invalidate(ctx context.Context, memberIDs ...uint64) {
	if p.cache == nil || len(memberIDs) == 0 {
		return
	}
	if err := p.cache.Invalidate(ctx, memberIDs...); err != nil {
		log.Warn().Err(err).Msg("block cache invalidate failed")
	}
}

// blockedIDs 直接查库，事务内使用 tx
func blockedIDs(db *gorm.DB, memberID uint64) ([]uint64, error) {
	repo := &mysql.FollowRepository{DB: db}
	blocking, blockedBy, err := repo.BlockedEdges(memberID)
	if err != nil {
		return nil, err
	}
	return lo.Without(lo.Uniq(append(blocking, blockedBy...)), memberID), nil
}

// FilterVisible 去掉作者在屏蔽集合中的内容
func FilterVisible[T model.Authored](items []T, blocked []uint64) []T {
	if len(blocked) == 0 {
		return items
	}
	set := lo.SliceToMap(blocked, func(id uint64) (uint64, struct{}) { return id, struct{}{} })
	return lo.Filter(items, func(item T, _ int) bool {
		_, hidden := set[item.AuthorMemberID()]
		return !hidden
	})
}
