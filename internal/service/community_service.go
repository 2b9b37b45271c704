package service

import (
	"context"
	"errors"
	"strings"

	"Community_Graph/internal/model"
	"Community_Graph/internal/repository/mysql"

	"gorm.io/gorm"
)

type CommunityService struct {
	db *gorm.DB
}

func NewCommunityService(db *gorm.DB) *CommunityService {
	return &CommunityService{db: db}
}

type CommunityInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=2000"`
	Image       string `json:"image" validate:"omitempty,max=255"`
}

// CreateCommunity 只有运营账号可以创建社区
func (s *CommunityService) CreateCommunity(ctx context.Context, userID uint64, in CommunityInput) (*model.Community, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	users := &mysql.UserRepository{DB: s.db.WithContext(ctx)}
	user, err := users.FindByID(userID)
	if err != nil {
		return nil, orNotFound(err, ErrUserNotFound)
	}
	if !user.IsStaff && !user.IsAdmin {
		return nil, ErrNotManager
	}

	community := &model.Community{
		Name:        in.Name,
		Description: in.Description,
		Image:       in.Image,
	}
	repo := &mysql.CommunityRepository{DB: s.db.WithContext(ctx)}
	if err := repo.Create(community); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newError(ErrConflict, "community name already in use")
		}
		return nil, err
	}
	return community, nil
}

func (s *CommunityService) GetCommunity(ctx context.Context, id uint64) (*model.Community, error) {
	repo := &mysql.CommunityRepository{DB: s.db.WithContext(ctx)}
	c, err := repo.FindActive(id)
	if err != nil {
		return nil, orNotFound(err, ErrCommunityNotFound)
	}
	return c, nil
}

func (s *CommunityService) ListCommunities(ctx context.Context, page, size int) ([]model.Community, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}
	repo := &mysql.CommunityRepository{DB: s.db.WithContext(ctx)}
	return repo.List((page-1)*size, size)
}

// FavoriteCommunity 收藏社区，需要先加入。返回是否新增
func (s *CommunityService) FavoriteCommunity(ctx context.Context, userID, communityID uint64) (bool, error) {
	return s.toggleFavorite(ctx, userID, communityID, true)
}

// UnfavoriteCommunity 取消收藏，返回是否真的删除了
func (s *CommunityService) UnfavoriteCommunity(ctx context.Context, userID, communityID uint64) (bool, error) {
	return s.toggleFavorite(ctx, userID, communityID, false)
}

func (s *CommunityService) toggleFavorite(ctx context.Context, userID, communityID uint64, add bool) (bool, error) {
	var changed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := (&mysql.CommunityRepository{DB: tx}).FindActive(communityID); err != nil {
			return orNotFound(err, ErrCommunityNotFound)
		}
		member, err := memberOf(tx, userID, communityID)
		if err != nil {
			return err
		}
		pairs := &mysql.PairRepository{DB: tx}
		row := &model.CommunityFavorite{CommunityID: communityID, MemberID: member.ID}
		if add {
			changed, err = pairs.Add(row)
		} else {
			changed, err = pairs.Remove(row)
		}
		return err
	})
	return changed, err
}

// IsFavorite 当前用户是否收藏了该社区
func (s *CommunityService) IsFavorite(ctx context.Context, userID, communityID uint64) (bool, error) {
	db := s.db.WithContext(ctx)
	member, err := memberOf(db, userID, communityID)
	if err != nil {
		if errors.Is(err, ErrNotMember) {
			return false, nil
		}
		return false, err
	}
	return (&mysql.PairRepository{DB: db}).Exists(&model.CommunityFavorite{CommunityID: communityID, MemberID: member.ID})
}

// ListFavoriteCommunities 用户所有成员身份收藏的社区
func (s *CommunityService) ListFavoriteCommunities(ctx context.Context, userID uint64) ([]model.Community, error) {
	db := s.db.WithContext(ctx)
	members, err := (&mysql.MemberRepository{DB: db}).ListByUser(userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	return (&mysql.CommunityRepository{DB: db}).ListFavorites(ids)
}

// memberOf 用户在社区内的成员身份，不存在视为无权限
func memberOf(db *gorm.DB, userID, communityID uint64) (*model.Member, error) {
	m, err := (&mysql.MemberRepository{DB: db}).FindByUserCommunity(userID, communityID)
	if err != nil {
		return nil, orNotFound(err, ErrNotMember)
	}
	return m, nil
}
