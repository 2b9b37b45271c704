package mysql

import (
	"Community_Graph/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommunityRepository struct {
	DB *gorm.DB
}

func (r *CommunityRepository) Create(c *model.Community) error {
	return r.DB.Create(c).Error
}

// FindActive 只返回未下线的社区
func (r *CommunityRepository) FindActive(id uint64) (*model.Community, error) {
	var community model.Community
	err := r.DB.Where("id = ? AND is_active = ?", id, true).First(&community).Error
	return &community, err
}

// FindForUpdate 加行锁读取社区（sqlite 下锁子句会被忽略）
func (r *CommunityRepository) FindForUpdate(id uint64) (*model.Community, error) {
	var community model.Community
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).First(&community, id).Error
	return &community, err
}

func (r *CommunityRepository) List(offset, limit int) ([]model.Community, error) {
	var list []model.Community
	err := r.DB.Where("is_active = ?", true).Order("id desc").Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}

// ListFavorites 某用户（跨社区的所有成员身份）收藏的社区
func (r *CommunityRepository) ListFavorites(memberIDs []uint64) ([]model.Community, error) {
	var list []model.Community
	if len(memberIDs) == 0 {
		return list, nil
	}
	err := r.DB.
		Joins("JOIN community_favorites f ON f.community_id = communities.id").
		Where("f.member_id IN ? AND communities.is_active = ?", memberIDs, true).
		Order("f.id desc").
		Find(&list).Error
	return list, err
}
