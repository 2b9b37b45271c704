package mysql

import (
	"errors"

	"Community_Graph/internal/model"

	"gorm.io/gorm"
)

// PairRepository 点赞/收藏/关注分类等 (目标, 成员) 关系行的增删，行变化与计数在同一事务内完成。
// DB 应当是调用方事务里的 tx。
type PairRepository struct {
	DB *gorm.DB
}

// Add 幂等插入：已存在返回 false
func (r *PairRepository) Add(row model.Pair) (bool, error) {
	var n int64
	if err := r.DB.Model(row).Where(row.PairKey()).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if err := r.DB.Create(row).Error; err != nil {
		// 并发下另一个请求抢先插入，同样视为幂等命中
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}
	return true, ApplyDelta(r.DB, row, +1)
}

// Remove 幂等删除：不存在返回 false
func (r *PairRepository) Remove(row model.Pair) (bool, error) {
	res := r.DB.Where(row.PairKey()).Delete(row)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, ApplyDelta(r.DB, row, -1)
}

// Exists 判断关系行是否存在
func (r *PairRepository) Exists(row model.Pair) (bool, error) {
	var n int64
	err := r.DB.Model(row).Where(row.PairKey()).Count(&n).Error
	return n > 0, err
}

// MemberPairs 查询某成员对一批目标是否存在关系，返回目标 id 集合
func (r *PairRepository) MemberPairs(table any, targetColumn string, memberID uint64, targetIDs []uint64) (map[uint64]bool, error) {
	out := make(map[uint64]bool, len(targetIDs))
	if len(targetIDs) == 0 {
		return out, nil
	}
	var ids []uint64
	if err := r.DB.Model(table).
		Where("member_id = ? AND "+targetColumn+" IN ?", memberID, targetIDs).
		Pluck(targetColumn, &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
