package mysql

import (
	"Community_Graph/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MemberRepository struct {
	DB *gorm.DB
}

func (r *MemberRepository) Create(m *model.Member) error {
	return r.DB.Create(m).Error
}

func (r *MemberRepository) FindByID(id uint64) (*model.Member, error) {
	var m model.Member
	err := r.DB.First(&m, id).Error
	return &m, err
}

// FindForUpdate select for update，避免并发修改同一成员
func (r *MemberRepository) FindForUpdate(id uint64) (*model.Member, error) {
	var m model.Member
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, id).Error
	return &m, err
}

// FindByUserCommunity 用户在某社区的成员身份
func (r *MemberRepository) FindByUserCommunity(userID, communityID uint64) (*model.Member, error) {
	var m model.Member
	err := r.DB.Where("user_id = ? AND community_id = ?", userID, communityID).First(&m).Error
	return &m, err
}

// NicknameTaken 社区内昵称是否被占用（exceptID 为自己时排除）
func (r *MemberRepository) NicknameTaken(communityID uint64, nickname string, exceptID uint64) (bool, error) {
	var n int64
	q := r.DB.Model(&model.Member{}).Where("community_id = ? AND nickname = ?", communityID, nickname)
	if exceptID > 0 {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

// NicknameUsedAnywhere 自动生成的昵称要求在所有社区都未被使用
func (r *MemberRepository) NicknameUsedAnywhere(nickname string) (bool, error) {
	var n int64
	err := r.DB.Model(&model.Member{}).Where("nickname = ?", nickname).Count(&n).Error
	return n > 0, err
}

func (r *MemberRepository) UpdateProfile(id uint64, fields map[string]any) error {
	return r.DB.Model(&model.Member{}).Where("id = ?", id).Updates(fields).Error
}

func (r *MemberRepository) Touch(id uint64, at any) error {
	return r.DB.Model(&model.Member{}).Where("id = ?", id).UpdateColumn("last_access", at).Error
}

// ListByCommunity 社区成员列表（游标分页，排除 excludeIDs）
func (r *MemberRepository) ListByCommunity(communityID uint64, excludeIDs []uint64, cursor uint64, limit int) ([]model.Member, uint64, error) {
	q := r.DB.Model(&model.Member{}).Where("community_id = ? AND is_active = ?", communityID, true)
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}
	return pageByID(q, cursor, limit, func(m *model.Member) uint64 { return m.ID })
}

// ListByUser 用户加入的所有社区身份
func (r *MemberRepository) ListByUser(userID uint64) ([]model.Member, error) {
	var rows []model.Member
	err := r.DB.Where("user_id = ?", userID).Order("id desc").Find(&rows).Error
	return rows, err
}

// FindByIDs 批量读取（作者信息）
func (r *MemberRepository) FindByIDs(ids []uint64) (map[uint64]model.Member, error) {
	out := make(map[uint64]model.Member, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []model.Member
	if err := r.DB.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, m := range rows {
		out[m.ID] = m
	}
	return out, nil
}
