package mysql

import "gorm.io/gorm"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NormalizeLimit 非法或过大的 limit 回落到默认值
func NormalizeLimit(limit int) int {
	if limit <= 0 || limit > MaxPageSize {
		return DefaultPageSize
	}
	return limit
}

// pageByID 按 id 倒序的游标分页，这里 limit+1 是为了判断是否还有下一页
func pageByID[T any](q *gorm.DB, cursor uint64, limit int, idOf func(*T) uint64) ([]T, uint64, error) {
	limit = NormalizeLimit(limit)
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}
	var rows []T
	if err := q.Order("id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	var next uint64
	if len(rows) > limit {
		rows = rows[:limit]
		next = idOf(&rows[limit-1])
	}
	return rows, next, nil
}
