package model

import "time"

type FollowStatus string

const (
	FollowPending  FollowStatus = "PENDING"
	FollowAccepted FollowStatus = "ACCEPTED"
	FollowBlocked  FollowStatus = "BLOCKED"
)

// Follow 有向关系边，(follower_id, following_id) 唯一
type Follow struct {
	ID          uint64       `gorm:"primaryKey" json:"id"`
	FollowerID  uint64       `gorm:"not null;uniqueIndex:uk_follow_pair;index:idx_follower_status,priority:1" json:"follower_id"`
	FollowingID uint64       `gorm:"not null;uniqueIndex:uk_follow_pair;index:idx_following_status,priority:1" json:"following_id"`
	Status      FollowStatus `gorm:"size:10;not null;index:idx_follower_status,priority:2;index:idx_following_status,priority:2" json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TableName sets table name for Follow
func (Follow) TableName() string {
	return "follow"
}

const (
	OutboxPending int8 = 0
	OutboxSent    int8 = 1
	OutboxFailed  int8 = 2
)

// SocialOutbox 关系事件表，和关系变更在同一个事务内写入
type SocialOutbox struct {
	ID          uint64 `gorm:"primaryKey"`
	EventType   string `gorm:"size:24;not null"` // follow_request / follow_accept / unfollow / ...
	FollowerID  uint64 `gorm:"not null"`
	FollowingID uint64 `gorm:"not null"`
	Payload     string `gorm:"type:text;not null"`
	Status      int8   `gorm:"not null;default:0;index"` // 0=pending,1=sent,2=failed
	Retry       int    `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (SocialOutbox) TableName() string { return "social_outbox" }
