package model

import "time"

// PostCategory 社区下的帖子分类，最多两级
type PostCategory struct {
	ID            uint64    `gorm:"primaryKey" json:"id"`
	CommunityID   uint64    `gorm:"not null;uniqueIndex:uk_category_community_name" json:"community_id"`
	ParentID      *uint64   `gorm:"index" json:"parent_id"`
	Name          string    `gorm:"size:100;not null;uniqueIndex:uk_category_community_name" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	Image         string    `gorm:"size:255" json:"image"`
	FavoriteCount int64     `gorm:"not null;default:0" json:"favorite_count"`
	PostCount     int64     `gorm:"not null;default:0" json:"post_count"`
	Score         int64     `gorm:"not null;default:0" json:"score"`
	IsActive      bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Post struct {
	ID           uint64    `gorm:"primaryKey;index:idx_post_category_id,priority:2" json:"id"`
	CategoryID   uint64    `gorm:"not null;index:idx_post_category_id,priority:1" json:"category_id"`
	CommunityID  uint64    `gorm:"not null;index" json:"community_id"`
	AuthorID     uint64    `gorm:"not null;index" json:"-"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	Image        string    `gorm:"size:255" json:"image"`
	LikeCount    int64     `gorm:"not null;default:0" json:"like_count"`
	CommentCount int64     `gorm:"not null;default:0" json:"comment_count"`
	ReplyCount   int64     `gorm:"not null;default:0" json:"reply_count"`
	ScrapCount   int64     `gorm:"not null;default:0" json:"scrap_count"`
	AccessCount  int64     `gorm:"not null;default:0" json:"access_count"`
	Score        int64     `gorm:"not null;default:0" json:"score"`
	IsAnonymous  bool      `gorm:"not null;default:false" json:"is_anonymous"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type PostComment struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	PostID      uint64    `gorm:"not null;index" json:"post_id"`
	AuthorID    uint64    `gorm:"not null;index" json:"-"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Image       string    `gorm:"size:255" json:"image"`
	LikeCount   int64     `gorm:"not null;default:0" json:"like_count"`
	ReplyCount  int64     `gorm:"not null;default:0" json:"reply_count"`
	Score       int64     `gorm:"not null;default:0" json:"score"`
	IsAnonymous bool      `gorm:"not null;default:false" json:"is_anonymous"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PostReply struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	CommentID   uint64    `gorm:"not null;index" json:"comment_id"`
	AuthorID    uint64    `gorm:"not null;index" json:"-"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Image       string    `gorm:"size:255" json:"image"`
	LikeCount   int64     `gorm:"not null;default:0" json:"like_count"`
	Score       int64     `gorm:"not null;default:0" json:"score"`
	IsAnonymous bool      `gorm:"not null;default:false" json:"is_anonymous"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Authored 带作者的内容，用于屏蔽过滤
type Authored interface {
	AuthorMemberID() uint64
}

func (p Post) AuthorMemberID() uint64        { return p.AuthorID }
func (c PostComment) AuthorMemberID() uint64 { return c.AuthorID }
func (r PostReply) AuthorMemberID() uint64   { return r.AuthorID }
