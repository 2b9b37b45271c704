package service

import (
	"context"

	"Community_Graph/internal/pkg"
	"Community_Graph/internal/repository/mysql"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const defaultReconcileBatch = 500

// FollowCountReconciler 成员关注数/粉丝数对账，按 ACCEPTED 边重新计数修正漂移。
// 每个计数的重算和写入是一条语句，与关注事务的相对增量互不覆盖
type FollowCountReconciler struct {
	repo      *mysql.FollowCountReconcilerRepo
	batchSize int
}

func NewFollowCountReconciler(db *gorm.DB, batchSize int) *FollowCountReconciler {
	if batchSize <= 0 {
		batchSize = defaultReconcileBatch
	}
	return &FollowCountReconciler{
		repo:      &mysql.FollowCountReconcilerRepo{DB: db},
		batchSize: batchSize,
	}
}

// ReconcileOnce 全量扫描一轮，返回修正的计数个数
func (r *FollowCountReconciler) ReconcileOnce(ctx context.Context) int {
	var lastID uint64
	fixed := 0
	for {
		ids, next, err := r.repo.ReconcileList(ctx, r.batchSize, lastID)
		if err != nil {
			log.Error().Err(err).Msg("reconcile list failed")
			break
		}
		if len(ids) == 0 {
			break
		}
		lastID = next

		for _, id := range ids {
			fixed += r.recount(ctx, id, "following", r.repo.RecountFollowings)
			fixed += r.recount(ctx, id, "followers", r.repo.RecountFollowers)
		}
	}
	if fixed > 0 {
		pkg.ReconcileCorrections.Add(float64(fixed))
		log.Warn().Int("fixed", fixed).Msg("follow counters drifted and were corrected")
	}
	return fixed
}

func (r *FollowCountReconciler) recount(ctx context.Context, memberID uint64, column string, fn func(context.Context, uint64) (bool, error)) int {
	changed, err := fn(ctx, memberID)
	if err != nil {
		log.Warn().Err(err).Uint64("member", memberID).Str("column", column).Msg("recount failed")
		return 0
	}
	if changed {
		return 1
	}
	return 0
}
