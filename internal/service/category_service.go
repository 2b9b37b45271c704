package service

import (
	"context"
	"errors"
	"strings"

	"Community_Graph/internal/model"
	"Community_Graph/internal/repository/mysql"

	"gorm.io/gorm"
)

type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

type CategoryInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description string  `json:"description" validate:"max=2000"`
	Image       string  `json:"image" validate:"omitempty,max=255"`
	ParentID    *uint64 `json:"parent_id"`
}

// CreateCategory 社区运营成员创建分类，父分类必须是本社区的顶级分类
func (s *CategoryService) CreateCategory(ctx context.Context, userID, communityID uint64, in CategoryInput) (*model.PostCategory, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	category := &model.PostCategory{
		CommunityID: communityID,
		ParentID:    in.ParentID,
		Name:        in.Name,
		Description: in.Description,
		Image:       in.Image,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := (&mysql.CommunityRepository{DB: tx}).FindActive(communityID); err != nil {
			return orNotFound(err, ErrCommunityNotFound)
		}
		member, err := memberOf(tx, userID, communityID)
		if err != nil {
			return err
		}
		if !member.IsManager() {
			return ErrNotManager
		}

		repo := &mysql.CategoryRepository{DB: tx}
		if in.ParentID != nil {
			parent, err := repo.FindActive(*in.ParentID)
			if err != nil {
				return orNotFound(err, ErrCategoryNotFound)
			}
			if parent.CommunityID != communityID || parent.ParentID != nil {
				return &Error{Kind: ErrValidation, Msg: "parent must be a top-level category of the same community",
					Fields: map[string]string{"parent_id": "invalid parent"}}
			}
		}
		return repo.Create(category)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrCategoryExists
	}
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) ListCategories(ctx context.Context, communityID uint64) ([]model.PostCategory, error) {
	db := s.db.WithContext(ctx)
	if _, err := (&mysql.CommunityRepository{DB: db}).FindActive(communityID); err != nil {
		return nil, orNotFound(err, ErrCommunityNotFound)
	}
	return (&mysql.CategoryRepository{DB: db}).ListByCommunity(communityID)
}

func (s *CategoryService) FavoriteCategory(ctx context.Context, userID, categoryID uint64) (bool, error) {
	return s.toggleFavorite(ctx, userID, categoryID, true)
}

func (s *CategoryService) UnfavoriteCategory(ctx context.Context, userID, categoryID uint64) (bool, error) {
	return s.toggleFavorite(ctx, userID, categoryID, false)
}

func (s *CategoryService) toggleFavorite(ctx context.Context, userID, categoryID uint64, add bool) (bool, error) {
	var changed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := (&mysql.CategoryRepository{DB: tx}).FindActive(categoryID)
		if err != nil {
			return orNotFound(err, ErrCategoryNotFound)
		}
		member, err := memberOf(tx, userID, category.CommunityID)
		if err != nil {
			return err
		}
		pairs := &mysql.PairRepository{DB: tx}
		row := &model.PostCategoryFavorite{CategoryID: categoryID, MemberID: member.ID}
		if add {
			changed, err = pairs.Add(row)
		} else {
			changed, err = pairs.Remove(row)
		}
		return err
	})
	return changed, err
}
