package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"Community_Graph/internal/model"
	"Community_Graph/internal/repository/mysql"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	nicknameStemLen     = 10
	nicknameSuffixLen   = 6
	maxNicknameAttempts = 20
)

type MemberService struct {
	db         *gorm.DB
	visibility *VisibilityPolicy
}

func NewMemberService(db *gorm.DB, visibility *VisibilityPolicy) *MemberService {
	return &MemberService{db: db, visibility: visibility}
}

type JoinInput struct {
	Nickname     string `json:"nickname" validate:"omitempty,max=24"`
	ProfileImage string `json:"profile_image" validate:"omitempty,max=255"`
	IsPrivate    bool   `json:"is_private"`
}

type ProfileInput struct {
	Nickname     *string `json:"nickname" validate:"omitempty,min=1,max=24"`
	ProfileImage *string `json:"profile_image" validate:"omitempty,max=255"`
	IsPrivate    *bool   `json:"is_private"`
}

// ProfileView 成员资料以及查看者和对方的关系
type ProfileView struct {
	model.Member
	IsSelf      bool               `json:"is_self"`
	Relation    model.FollowStatus `json:"relation,omitempty"`
	IsFollowing bool               `json:"is_following"`
}

// Join 加入社区。未指定昵称时根据社区名生成
func (s *MemberService) Join(ctx context.Context, userID, communityID uint64, in JoinInput) (*model.Member, error) {
	in.Nickname = strings.TrimSpace(in.Nickname)
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	var member *model.Member
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := (&mysql.UserRepository{DB: tx}).FindByID(userID)
		if err != nil {
			return orNotFound(err, ErrUserNotFound)
		}
		community, err := (&mysql.CommunityRepository{DB: tx}).FindActive(communityID)
		if err != nil {
			return orNotFound(err, ErrCommunityNotFound)
		}

		members := &mysql.MemberRepository{DB: tx}
		if _, err := members.FindByUserCommunity(userID, communityID); err == nil {
			return ErrAlreadyMember
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		nickname := in.Nickname
		if nickname == "" {
			if nickname, err = generateNickname(members, community.Name); err != nil {
				return err
			}
		} else if taken, err := members.NicknameTaken(communityID, nickname, 0); err != nil {
			return err
		} else if taken {
			return ErrNicknameTaken
		}

		member = &model.Member{
			UserID:       userID,
			CommunityID:  communityID,
			Nickname:     nickname,
			ProfileImage: in.ProfileImage,
			IsPrivate:    in.IsPrivate,
			IsStaff:      user.IsStaff,
			IsAdmin:      user.IsAdmin,
		}
		if err := members.Create(member); err != nil {
			return err
		}
		return mysql.ApplyDelta(tx, member, +1)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// 并发加入：区分是重复加入还是昵称冲突
		if _, findErr := (&mysql.MemberRepository{DB: s.db.WithContext(ctx)}).FindByUserCommunity(userID, communityID); findErr == nil {
			return nil, ErrAlreadyMember
		}
		return nil, ErrNicknameTaken
	}
	if err != nil {
		return nil, err
	}
	return member, nil
}

// nicknameStem 去掉所有空白后截取前 10 个字符
func nicknameStem(name string) string {
	stem := strings.Join(strings.Fields(name), "")
	if r := []rune(stem); len(r) > nicknameStemLen {
		stem = string(r[:nicknameStemLen])
	}
	return stem
}

// generateNickname 社区名 + 6 位随机十六进制，直到全局不重复
func generateNickname(members *mysql.MemberRepository, communityName string) (string, error) {
	stem := nicknameStem(communityName)
	for i := 0; i < maxNicknameAttempts; i++ {
		candidate := stem + strings.ReplaceAll(uuid.NewString(), "-", "")[:nicknameSuffixLen]
		used, err := members.NicknameUsedAnywhere(candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("unable to generate a free nickname for %q", communityName)
}

// Leave 退出社区。先通过账本回退所有依赖计数，再删除成员
func (s *MemberService) Leave(ctx context.Context, userID, memberID uint64) error {
	var touched []uint64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member, err := (&mysql.MemberRepository{DB: tx}).FindForUpdate(memberID)
		if err != nil {
			return orNotFound(err, ErrMemberNotFound)
		}
		if member.UserID != userID {
			return ErrNotSelf
		}
		if touched, err = blockedIDs(tx, member.ID); err != nil {
			return err
		}
		return (&mysql.Purger{DB: tx}).Member(member)
	})
	if err != nil {
		return err
	}
	s.visibility.invalidate(ctx, append(touched, memberID)...)
	log.Debug().Uint64("member", memberID).Msg("member left community")
	return nil
}

// GetFor 用户在某社区的成员身份，同时刷新最后访问时间
func (s *MemberService) GetFor(ctx context.Context, userID, communityID uint64) (*model.Member, error) {
	repo := &mysql.MemberRepository{DB: s.db.WithContext(ctx)}
	member, err := repo.FindByUserCommunity(userID, communityID)
	if err != nil {
		return nil, orNotFound(err, ErrMemberNotFound)
	}
	now := time.Now()
	if err := repo.Touch(member.ID, now); err != nil {
		log.Warn().Err(err).Uint64("member", member.ID).Msg("unable to update last access")
	} else {
		member.LastAccess = &now
	}
	return member, nil
}

// GetProfile 查看成员资料，被屏蔽或私密且未关注时拒绝
func (s *MemberService) GetProfile(ctx context.Context, userID, memberID uint64) (*ProfileView, error) {
	db := s.db.WithContext(ctx)
	target, err := (&mysql.MemberRepository{DB: db}).FindByID(memberID)
	if err != nil {
		return nil, orNotFound(err, ErrMemberNotFound)
	}
	viewer, err := memberOf(db, userID, target.CommunityID)
	if err != nil {
		return nil, err
	}
	ok, err := s.visibility.CanViewProfile(ctx, viewer, target)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrProfileHidden
	}

	view := &ProfileView{Member: *target, IsSelf: viewer.ID == target.ID}
	if !view.IsSelf {
		var rel model.Follow
		err := db.Where("follower_id = ? AND following_id = ?", viewer.ID, target.ID).Take(&rel).Error
		switch {
		case err == nil:
			view.Relation = rel.Status
			view.IsFollowing = rel.Status == model.FollowAccepted
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
	}
	return view, nil
}

// UpdateProfile 只能修改自己的资料；公开资料不会自动通过待处理的关注请求
func (s *MemberService) UpdateProfile(ctx context.Context, userID, memberID uint64, in ProfileInput) (*model.Member, error) {
	if in.Nickname != nil {
		trimmed := strings.TrimSpace(*in.Nickname)
		in.Nickname = &trimmed
	}
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	var member *model.Member
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		members := &mysql.MemberRepository{DB: tx}
		m, err := members.FindForUpdate(memberID)
		if err != nil {
			return orNotFound(err, ErrMemberNotFound)
		}
		if m.UserID != userID {
			return ErrNotSelf
		}

		fields := map[string]any{}
		if in.Nickname != nil && *in.Nickname != m.Nickname {
			taken, err := members.NicknameTaken(m.CommunityID, *in.Nickname, m.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrNicknameTaken
			}
			fields["nickname"] = *in.Nickname
		}
		if in.ProfileImage != nil {
			fields["profile_image"] = *in.ProfileImage
		}
		if in.IsPrivate != nil {
			fields["is_private"] = *in.IsPrivate
		}
		if len(fields) > 0 {
			if err := members.UpdateProfile(m.ID, fields); err != nil {
				return err
			}
		}
		member, err = members.FindByID(m.ID)
		return err
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrNicknameTaken
	}
	if err != nil {
		return nil, err
	}
	return member, nil
}

// ListMembers 社区成员列表，排除与查看者存在屏蔽关系的成员
func (s *MemberService) ListMembers(ctx context.Context, userID, communityID, cursor uint64, limit int) ([]model.Member, uint64, error) {
	db := s.db.WithContext(ctx)
	viewer, err := memberOf(db, userID, communityID)
	if err != nil {
		return nil, 0, err
	}
	blocked, err := s.visibility.BlockedIDs(ctx, viewer.ID)
	if err != nil {
		return nil, 0, err
	}
	return (&mysql.MemberRepository{DB: db}).ListByCommunity(communityID, blocked, cursor, limit)
}

// ListMyMemberships 用户加入的所有社区身份
func (s *MemberService) ListMyMemberships(ctx context.Context, userID uint64) ([]model.Member, error) {
	return (&mysql.MemberRepository{DB: s.db.WithContext(ctx)}).ListByUser(userID)
}
