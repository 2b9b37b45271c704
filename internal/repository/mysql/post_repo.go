package mysql

import (
	"Community_Graph/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostRepository struct {
	DB *gorm.DB
}

func (r *PostRepository) Create(post *model.Post) error {
	return r.DB.Create(post).Error
}

func (r *PostRepository) FindByID(id uint64) (*model.Post, error) {
	var post model.Post
	err := r.DB.First(&post, "id = ? AND is_active = ?", id, true).Error
	return &post, err
}

func (r *PostRepository) FindForUpdate(id uint64) (*model.Post, error) {
	var post model.Post
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, "id = ? AND is_active = ?", id, true).Error
	return &post, err
}

// ListByCategory 分类下的帖子，屏蔽作者在 SQL 中排除
func (r *PostRepository) ListByCategory(categoryID uint64, excludeAuthors []uint64, cursor uint64, limit int) ([]model.Post, uint64, error) {
	q := r.DB.Model(&model.Post{}).Where("category_id = ? AND is_active = ?", categoryID, true)
	if len(excludeAuthors) > 0 {
		q = q.Where("author_id NOT IN ?", excludeAuthors)
	}
	return pageByID(q, cursor, limit, func(p *model.Post) uint64 { return p.ID })
}

// ListScrapped 成员收藏的帖子
func (r *PostRepository) ListScrapped(memberID uint64, excludeAuthors []uint64, cursor uint64, limit int) ([]model.Post, uint64, error) {
	q := r.DB.Model(&model.Post{}).
		Where("is_active = ? AND id IN (?)", true,
			r.DB.Model(&model.PostScrap{}).Select("post_id").Where("member_id = ?", memberID))
	if len(excludeAuthors) > 0 {
		q = q.Where("author_id NOT IN ?", excludeAuthors)
	}
	return pageByID(q, cursor, limit, func(p *model.Post) uint64 { return p.ID })
}

// IncrAccess 访问计数，不计入账本
func (r *PostRepository) IncrAccess(id uint64) error {
	return r.DB.Model(&model.Post{}).Where("id = ?", id).
		UpdateColumn("access_count", gorm.Expr("access_count + 1")).Error
}
