package model

import "time"

// 存在即计数的关系表：行的存在与否决定相关计数器

type PostLike struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	PostID    uint64 `gorm:"not null;uniqueIndex:uk_post_like"`
	MemberID  uint64 `gorm:"not null;index;uniqueIndex:uk_post_like"`
	CreatedAt time.Time
}

func (PostLike) TableName() string {
	return "post_likes"
}

type PostScrap struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	PostID    uint64 `gorm:"not null;uniqueIndex:uk_post_scrap"`
	MemberID  uint64 `gorm:"not null;index;uniqueIndex:uk_post_scrap"`
	CreatedAt time.Time
}

type PostCommentLike struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	CommentID uint64 `gorm:"not null;uniqueIndex:uk_comment_like"`
	MemberID  uint64 `gorm:"not null;index;uniqueIndex:uk_comment_like"`
	CreatedAt time.Time
}

type PostReplyLike struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	ReplyID   uint64 `gorm:"not null;uniqueIndex:uk_reply_like"`
	MemberID  uint64 `gorm:"not null;index;uniqueIndex:uk_reply_like"`
	CreatedAt time.Time
}

type PostCategoryFavorite struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement"`
	CategoryID uint64 `gorm:"not null;uniqueIndex:uk_category_favorite"`
	MemberID   uint64 `gorm:"not null;index;uniqueIndex:uk_category_favorite"`
	CreatedAt  time.Time
}

// Pair 以 (目标, 成员) 唯一的关系行
type Pair interface {
	Counted
	PairKey() map[string]any
}

func (l *PostLike) PairKey() map[string]any {
	return map[string]any{"post_id": l.PostID, "member_id": l.MemberID}
}

func (s *PostScrap) PairKey() map[string]any {
	return map[string]any{"post_id": s.PostID, "member_id": s.MemberID}
}

func (l *PostCommentLike) PairKey() map[string]any {
	return map[string]any{"comment_id": l.CommentID, "member_id": l.MemberID}
}

func (l *PostReplyLike) PairKey() map[string]any {
	return map[string]any{"reply_id": l.ReplyID, "member_id": l.MemberID}
}

func (f *PostCategoryFavorite) PairKey() map[string]any {
	return map[string]any{"category_id": f.CategoryID, "member_id": f.MemberID}
}

func (f *CommunityFavorite) PairKey() map[string]any {
	return map[string]any{"community_id": f.CommunityID, "member_id": f.MemberID}
}
