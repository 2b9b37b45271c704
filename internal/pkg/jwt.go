package pkg

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
	ErrRefreshExpired = errors.New("refresh expired")
	ErrRefreshInvalid = errors.New("refresh invalid")
)

const (
	AccessTTL  = time.Minute * 30
	RefreshTTL = time.Hour * 24

	subjectAccess  = "access"
	subjectRefresh = "refresh"
)

// 默认密钥只用于本地开发，启动时由配置覆盖
var (
	AccessSecret  = []byte("secret-key")
	RefreshSecret = []byte("refresh-key")
)

// SetSecrets 从配置设置签名密钥，空值保持默认
func SetSecrets(access, refresh string) {
	if access != "" {
		AccessSecret = []byte(access)
	}
	if refresh != "" {
		RefreshSecret = []byte(refresh)
	}
}

type Claims struct {
	UserID uint64 `json:"user_id"`
	jwt.RegisteredClaims
}

type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func sign(userID uint64, subject string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   subject,
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(secret)
}

func GeneratePair(userID uint64) (*Pair, error) {
	access, err := sign(userID, subjectAccess, AccessTTL, AccessSecret)
	if err != nil {
		return nil, fmt.Errorf("unable to sign access token: %w", err)
	}
	refresh, err := sign(userID, subjectRefresh, RefreshTTL, RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("unable to sign refresh token: %w", err)
	}
	return &Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// parse 校验签名、过期时间和用途。过期返回 expired，其余失败都归为 invalid
func parse(tokenStr string, secret []byte, subject string, expired, invalid error) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithSubject(subject))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, expired
		}
		return nil, fmt.Errorf("%w: %v", invalid, err)
	}
	if !token.Valid {
		return nil, invalid
	}
	return claims, nil
}

func ParseAccess(tokenStr string) (*Claims, error) {
	return parse(tokenStr, AccessSecret, subjectAccess, ErrTokenExpired, ErrTokenInvalid)
}

// Refresh 用 refresh token 换一对新的 token
func Refresh(refreshToken string) (*Pair, error) {
	claims, err := parse(refreshToken, RefreshSecret, subjectRefresh, ErrRefreshExpired, ErrRefreshInvalid)
	if err != nil {
		return nil, err
	}
	return GeneratePair(claims.UserID)
}
