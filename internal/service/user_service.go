package service

import (
	"context"
	"errors"
	"strings"

	"Community_Graph/internal/model"
	"Community_Graph/internal/pkg"
	"Community_Graph/internal/repository/mysql"
	"Community_Graph/internal/repository/redis"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	db     *gorm.DB
	tokens *redis.TokenRepository
}

// NewUserService tokens 为 nil 时不做单点登录校验
func NewUserService(db *gorm.DB, tokens *redis.TokenRepository) *UserService {
	return &UserService{db: db, tokens: tokens}
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Email    string `json:"email" validate:"required,email,max=64"`
}

type PasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: in.Username,
		Password: string(hash),
		Email:    in.Email,
	}
	if err := (&mysql.UserRepository{DB: s.db.WithContext(ctx)}).Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) Login(ctx context.Context, username, password string) (*pkg.Pair, error) {
	user, err := (&mysql.UserRepository{DB: s.db.WithContext(ctx)}).FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWrongCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrWrongCredentials
	}

	token, err := pkg.GeneratePair(user.ID)
	if err != nil {
		return nil, err
	}
	// 将token写入redis
	if s.tokens != nil {
		if err := s.tokens.AddUserToken(ctx, user.ID, token.AccessToken); err != nil {
			return nil, err
		}
	}
	return token, nil
}

func (s *UserService) Logout(ctx context.Context, userID uint64) error {
	if s.tokens == nil {
		return nil
	}
	return s.tokens.DeleteUserToken(ctx, userID)
}

// Refresh 刷新后新 access token 同样写入 redis，旧的随之失效
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*pkg.Pair, error) {
	pair, err := pkg.Refresh(refreshToken)
	if err != nil {
		return nil, err
	}
	if s.tokens != nil {
		claims, err := pkg.ParseAccess(pair.AccessToken)
		if err != nil {
			return nil, err
		}
		if err := s.tokens.AddUserToken(ctx, claims.UserID, pair.AccessToken); err != nil {
			return nil, err
		}
	}
	return pair, nil
}

// ChangePassword 登录态修改密码，成功后需重新登录
func (s *UserService) ChangePassword(ctx context.Context, userID uint64, in PasswordInput) error {
	if err := validateInput(&in); err != nil {
		return err
	}
	repo := &mysql.UserRepository{DB: s.db.WithContext(ctx)}
	user, err := repo.FindByID(userID)
	if err != nil {
		return orNotFound(err, ErrUserNotFound)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.OldPassword)) != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := repo.UpdatePassword(user, string(hash)); err != nil {
		return err
	}
	return s.Logout(ctx, userID)
}

func (s *UserService) Me(ctx context.Context, userID uint64) (*model.User, error) {
	user, err := (&mysql.UserRepository{DB: s.db.WithContext(ctx)}).FindByID(userID)
	if err != nil {
		return nil, orNotFound(err, ErrUserNotFound)
	}
	return user, nil
}
