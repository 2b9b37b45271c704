package mysql

import (
	"Community_Graph/internal/model"

	"gorm.io/gorm"
)

type CategoryRepository struct {
	DB *gorm.DB
}

func (r *CategoryRepository) Create(c *model.PostCategory) error {
	return r.DB.Create(c).Error
}

func (r *CategoryRepository) FindActive(id uint64) (*model.PostCategory, error) {
	var c model.PostCategory
	err := r.DB.Where("id = ? AND is_active = ?", id, true).First(&c).Error
	return &c, err
}

// ListByCommunity 顶级分类在前，同级按 id 排序
func (r *CategoryRepository) ListByCommunity(communityID uint64) ([]model.PostCategory, error) {
	var list []model.PostCategory
	err := r.DB.Where("community_id = ? AND is_active = ?", communityID, true).
		Order("parent_id IS NOT NULL, parent_id, id").
		Find(&list).Error
	return list, err
}
