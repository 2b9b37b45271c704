package model

import "time"

type Community struct {
	ID            uint64    `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	Image         string    `gorm:"size:255" json:"image"`
	MemberCount   int64     `gorm:"not null;default:0" json:"member_count"`
	FavoriteCount int64     `gorm:"not null;default:0" json:"favorite_count"`
	PostCount     int64     `gorm:"not null;default:0" json:"post_count"`
	Score         int64     `gorm:"not null;default:0" json:"score"`
	IsActive      bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Member 用户在某个社区内的身份，每个 (user, community) 至多一条
type Member struct {
	ID             uint64     `gorm:"primaryKey" json:"id"`
	UserID         uint64     `gorm:"not null;index;uniqueIndex:uk_member_user_community" json:"-"`
	CommunityID    uint64     `gorm:"not null;uniqueIndex:uk_member_user_community;uniqueIndex:uk_member_community_nickname" json:"community_id"`
	Nickname       string     `gorm:"size:24;not null;index;uniqueIndex:uk_member_community_nickname" json:"nickname"`
	ProfileImage   string     `gorm:"size:255" json:"profile_image"`
	PostCount      int64      `gorm:"not null;default:0" json:"post_count"`
	CommentCount   int64      `gorm:"not null;default:0" json:"comment_count"`
	ReplyCount     int64      `gorm:"not null;default:0" json:"reply_count"`
	LikeCount      int64      `gorm:"not null;default:0" json:"like_count"`
	ScrapCount     int64      `gorm:"not null;default:0" json:"scrap_count"`
	FollowerCount  int64      `gorm:"not null;default:0" json:"follower_count"`
	FollowingCount int64      `gorm:"not null;default:0" json:"following_count"`
	Score          int64      `gorm:"not null;default:0" json:"score"`
	IsStaff        bool       `gorm:"not null;default:false" json:"is_staff"`
	IsAdmin        bool       `gorm:"not null;default:false" json:"is_admin"`
	IsPrivate      bool       `gorm:"not null;default:false" json:"is_private"`
	IsActive       bool       `gorm:"not null;default:true" json:"is_active"`
	LastAccess     *time.Time `json:"last_access,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsManager 社区运营人员（staff 或 admin）
func (m *Member) IsManager() bool {
	return m.IsStaff || m.IsAdmin
}

type CommunityFavorite struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	CommunityID uint64    `gorm:"not null;uniqueIndex:uk_community_favorite" json:"community_id"`
	MemberID    uint64    `gorm:"not null;index;uniqueIndex:uk_community_favorite" json:"member_id"`
	CreatedAt   time.Time `json:"created_at"`
}
