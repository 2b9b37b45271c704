package mysql

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"Community_Graph/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository 关系边的读写原语，状态机规则在 service 层。
// 写方法需要传入事务内的 tx 作为 DB。
type FollowRepository struct {
	DB *gorm.DB
}

type OutboxRepository struct {
	DB *gorm.DB
}

type FollowCountReconcilerRepo struct {
	DB *gorm.DB
}

// FindForUpdate select for update 读取 follower -> following 这条边，不存在返回 nil
func (r *FollowRepository) FindForUpdate(followerID, followingID uint64) (*model.Follow, error) {
	var rel model.Follow
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&rel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

func (r *FollowRepository) Create(rel *model.Follow) error {
	return r.DB.Create(rel).Error
}

// SetStatus 只在当前状态等于 from 时更新，返回是否真的更新了
func (r *FollowRepository) SetStatus(id uint64, from, to model.FollowStatus) (bool, error) {
	res := r.DB.Model(&model.Follow{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected > 0, res.Error
}

func (r *FollowRepository) Delete(id uint64) error {
	return r.DB.Delete(&model.Follow{}, id).Error
}

// AdjustCounts ACCEPTED 边出现/消失时调整双方的关注数和粉丝数
func (r *FollowRepository) AdjustCounts(followerID, followingID uint64, delta int) error {
	if err := bump(r.DB, &model.Member{}, followerID, delta, "following_count"); err != nil {
		return err
	}
	return bump(r.DB, &model.Member{}, followingID, delta, "follower_count")
}

// InsertOutbox 写outbox事件表
func (r *FollowRepository) InsertOutbox(event string, followerID, followingID uint64) error {
	payload, _ := json.Marshal(map[string]any{
		"event":        event,
		"event_time":   time.Now().UTC().Format(time.RFC3339Nano),
		"follower_id":  followerID,
		"following_id": followingID,
	})
	ob := &model.SocialOutbox{
		EventType:   event,
		FollowerID:  followerID,
		FollowingID: followingID,
		Payload:     string(payload),
		Status:      model.OutboxPending,
	}
	return r.DB.Create(ob).Error
}

// IsFollowing 判断是否已关注（ACCEPTED）
func (r *FollowRepository) IsFollowing(followerID, followingID uint64) (bool, error) {
	var n int64
	if err := r.DB.Model(&model.Follow{}).
		Where("follower_id = ? AND following_id = ? AND status = ?", followerID, followingID, model.FollowAccepted).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// FollowingSet followerID 已关注的目标集合（限定在 targetIDs 内）
func (r *FollowRepository) FollowingSet(followerID uint64, targetIDs []uint64) (map[uint64]bool, error) {
	out := make(map[uint64]bool, len(targetIDs))
	if len(targetIDs) == 0 {
		return out, nil
	}
	var ids []uint64
	if err := r.DB.Model(&model.Follow{}).
		Where("follower_id = ? AND following_id IN ? AND status = ?", followerID, targetIDs, model.FollowAccepted).
		Pluck("following_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// ListFollowers 粉丝列表：following_id = memberID
func (r *FollowRepository) ListFollowers(memberID uint64, statuses []model.FollowStatus, cursor uint64, limit int) ([]model.Follow, uint64, error) {
	q := r.DB.Model(&model.Follow{}).Where("following_id = ? AND status IN ?", memberID, statuses)
	return pageByID(q, cursor, limit, followID)
}

// ListFollowings 关注列表：follower_id = memberID
func (r *FollowRepository) ListFollowings(memberID uint64, statuses []model.FollowStatus, cursor uint64, limit int) ([]model.Follow, uint64, error) {
	q := r.DB.Model(&model.Follow{}).Where("follower_id = ? AND status IN ?", memberID, statuses)
	return pageByID(q, cursor, limit, followID)
}

// BlockedEdges 返回 memberID 屏蔽的人 和 屏蔽了 memberID 的人
func (r *FollowRepository) BlockedEdges(memberID uint64) (blocking []uint64, blockedBy []uint64, err error) {
	if err = r.DB.Model(&model.Follow{}).
		Where("follower_id = ? AND status = ?", memberID, model.FollowBlocked).
		Pluck("following_id", &blocking).Error; err != nil {
		return nil, nil, err
	}
	if err = r.DB.Model(&model.Follow{}).
		Where("following_id = ? AND status = ?", memberID, model.FollowBlocked).
		Pluck("follower_id", &blockedBy).Error; err != nil {
		return nil, nil, err
	}
	return blocking, blockedBy, nil
}

// ListTouching 成员作为任意一端的所有边，退出社区时清理用
func (r *FollowRepository) ListTouching(memberID uint64) ([]model.Follow, error) {
	var rows []model.Follow
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("follower_id = ? OR following_id = ?", memberID, memberID).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func followID(f *model.Follow) uint64 { return f.ID }

// List outbox查询：待发送或失败但未超过重试次数的记录
func (r *OutboxRepository) List(ctx context.Context, batchSize, maxRetry int) ([]model.SocialOutbox, error) {
	var list []model.SocialOutbox
	if err := r.DB.WithContext(ctx).
		Where("status = ? OR (status = ? AND retry < ?)", model.OutboxPending, model.OutboxFailed, maxRetry).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// RetryUpdate outbox记录消息失败重试
func (r *OutboxRepository) RetryUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.SocialOutbox{}).Where("id = ?", id).
		Updates(map[string]any{"status": model.OutboxFailed, "retry": gorm.Expr("retry + 1")}).Error
}

// SuccessUpdate outbox成功记录消息更新
func (r *OutboxRepository) SuccessUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.SocialOutbox{}).Where("id = ?", id).
		Update("status", model.OutboxSent).Error
}

// ReconcileList 异步对账成员批量查询，按 id 升序返回一批成员 id
func (r *FollowCountReconcilerRepo) ReconcileList(ctx context.Context, batchSize int, lastID uint64) ([]uint64, uint64, error) {
	var ids []uint64
	if err := r.DB.WithContext(ctx).Model(&model.Member{}).
		Where("id > ?", lastID).
		Order("id ASC").
		Limit(batchSize).
		Pluck("id", &ids).Error; err != nil {
		return nil, lastID, err
	}
	if len(ids) == 0 {
		return nil, lastID, nil
	}
	return ids, ids[len(ids)-1], nil
}

// RecountFollowings 用一条 UPDATE 按 ACCEPTED 边重算关注数，只有漂移时才写入。
// 计数和写入在同一语句里，不会覆盖并发事务刚提交的增量
func (r *FollowCountReconcilerRepo) RecountFollowings(ctx context.Context, memberID uint64) (bool, error) {
	return r.recount(ctx, memberID, "following_count", "follower_id")
}

// RecountFollowers 同 RecountFollowings，修正粉丝数
func (r *FollowCountReconcilerRepo) RecountFollowers(ctx context.Context, memberID uint64) (bool, error) {
	return r.recount(ctx, memberID, "follower_count", "following_id")
}

func (r *FollowCountReconcilerRepo) recount(ctx context.Context, memberID uint64, column, edgeColumn string) (bool, error) {
	db := r.DB.WithContext(ctx)
	accepted := func() *gorm.DB {
		return db.Model(&model.Follow{}).Select("COUNT(*)").
			Where(edgeColumn+" = ? AND status = ?", memberID, model.FollowAccepted)
	}
	res := db.Model(&model.Member{}).
		Where("id = ?", memberID).
		Where(column+" <> (?)", accepted()).
		UpdateColumn(column, accepted())
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
