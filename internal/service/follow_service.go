package service

import (
	"context"
	"errors"

	"Community_Graph/internal/model"
	"Community_Graph/internal/pkg"
	"Community_Graph/internal/repository/mysql"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// FollowService 成员之间的关注/屏蔽状态机。
// 每个操作在一个事务里完成：加锁重读关系边 -> 校验状态 -> 改边 -> 调整计数 -> 写 outbox
type FollowService struct {
	db         *gorm.DB
	visibility *VisibilityPolicy
}

func NewFollowService(db *gorm.DB, visibility *VisibilityPolicy) *FollowService {
	return &FollowService{db: db, visibility: visibility}
}

// CancelOutcome 取消关注和撤回关注请求共用一个入口，用结果区分
type CancelOutcome int

const (
	Unfollowed CancelOutcome = iota + 1
	RequestCancelled
)

// MemberSummary 列表中展示的对方成员
type MemberSummary struct {
	ID           uint64 `json:"id"`
	Nickname     string `json:"nickname"`
	ProfileImage string `json:"profile_image"`
	IsPrivate    bool   `json:"is_private"`
}

type FollowView struct {
	model.Follow
	Member *MemberSummary `json:"member"`
}

// outbox 事件类型
const (
	eventFollow         = "follow"
	eventFollowRequest  = "follow_request"
	eventFollowAccept   = "follow_accept"
	eventRemoveFollower = "remove_follower"
	eventUnfollow       = "unfollow"
	eventCancelRequest  = "cancel_request"
	eventBlock          = "block"
	eventUnblock        = "unblock"
)

// RequestFollow actor 关注 target。对方私密时生成待处理请求，否则直接关注并计数
func (s *FollowService) RequestFollow(ctx context.Context, userID, actorID, targetID uint64) (*model.Follow, error) {
	var rel *model.Follow
	err := s.transact(ctx, func(tx *gorm.DB) error {
		actor, err := selfMember(tx, userID, actorID)
		if err != nil {
			return err
		}
		if actorID == targetID {
			return ErrSelfFollow
		}
		target, err := peerMember(tx, actor, targetID)
		if err != nil {
			return err
		}

		repo := &mysql.FollowRepository{DB: tx}
		fwd, rev, err := lockEdges(repo, actor.ID, target.ID)
		if err != nil {
			return err
		}
		if fwd != nil {
			switch fwd.Status {
			case model.FollowPending:
				return ErrFollowRequestExists
			case model.FollowBlocked:
				return ErrTargetBlocked
			default:
				return ErrAlreadyFollowing
			}
		}
		if rev != nil && rev.Status == model.FollowBlocked {
			return ErrBlockedByTarget
		}

		rel = &model.Follow{FollowerID: actor.ID, FollowingID: target.ID, Status: model.FollowAccepted}
		event := eventFollow
		if target.IsPrivate {
			rel.Status = model.FollowPending
			event = eventFollowRequest
		}
		if err := repo.Create(rel); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrFollowRequestExists
			}
			return err
		}
		if rel.Status == model.FollowAccepted {
			if err := repo.AdjustCounts(actor.ID, target.ID, +1); err != nil {
				return err
			}
		}
		return repo.InsertOutbox(event, actor.ID, target.ID)
	})
	observe("request_follow", err)
	if err != nil {
		return nil, err
	}
	return rel, nil
}

// AcceptRequest actor 通过 followerID 发来的待处理请求
func (s *FollowService) AcceptRequest(ctx context.Context, userID, actorID, followerID uint64) (*model.Follow, error) {
	var rel *model.Follow
	err := s.transact(ctx, func(tx *gorm.DB) error {
		actor, err := selfMember(tx, userID, actorID)
		if err != nil {
			return err
		}
		repo := &mysql.FollowRepository{DB: tx}
		// 重读当前状态，被并发屏蔽或撤回的请求在这里失败
		rel, err = repo.FindForUpdate(followerID, actor.ID)
		if err != nil {
			return err
		}
		if rel == nil || rel.Status != model.FollowPending {
			return ErrNoFollowRequest
		}
		ok, err := repo.SetStatus(rel.ID, model.FollowPending, model.FollowAccepted)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNoFollowRequest
		}
		rel.Status = model.FollowAccepted
		if err := repo.AdjustCounts(followerID, actor.ID, +1); err != nil {
			return err
		}
		return repo.InsertOutbox(eventFollowAccept, followerID, actor.ID)
	})
	observe("accept", err)
	if err != nil {
		return nil, err
	}
	return rel, nil
}

// DeleteFollower actor 移除 followerID 指向自己的边：拒绝请求、移除粉丝，或清掉对方的屏蔽记录。
// 只有 ACCEPTED 边回退计数。没有这条边时视为成功，返回 false
func (s *FollowService) DeleteFollower(ctx context.Context, userID, actorID, followerID uint64) (bool, error) {
	var removed *model.Follow
	err := s.transact(ctx, func(tx *gorm.DB) error {
		removed = nil
		actor, err := selfMember(tx, userID, actorID)
		if err != nil {
			return err
		}
		repo := &mysql.FollowRepository{DB: tx}
		rel, err := repo.FindForUpdate(followerID, actor.ID)
		if err != nil || rel == nil {
			return err
		}
		if err := repo.Delete(rel.ID); err != nil {
			return err
		}
		event := eventRemoveFollower
		switch rel.Status {
		case model.FollowAccepted:
			if err := repo.AdjustCounts(followerID, actor.ID, -1); err != nil {
				return err
			}
		case model.FollowBlocked:
			event = eventUnblock
		}
		removed = rel
		return repo.InsertOutbox(event, followerID, actor.ID)
	})
	observe("delete_follower", err)
	if err != nil {
		return false, err
	}
	if removed != nil && removed.Status == model.FollowBlocked {
		s.visibility.invalidate(ctx, actorID, followerID)
	}
	return removed != nil, nil
}

// Cancel actor 删除自己指向 targetID 的边。ACCEPTED 返回 Unfollowed 并回退计数，
// PENDING 或 BLOCKED 返回 RequestCancelled
func (s *FollowService) Cancel(ctx context.Context, userID, actorID, targetID uint64) (CancelOutcome, error) {
	var removed *model.Follow
	err := s.transact(ctx, func(tx *gorm.DB) error {
		removed = nil
		actor, err := selfMember(tx, userID, actorID)
		if err != nil {
			return err
		}
		repo := &mysql.FollowRepository{DB: tx}
		rel, err := repo.FindForUpdate(actor.ID, targetID)
		if err != nil {
			return err
		}
		if rel == nil {
			return ErrNotFollowing
		}
		if err := repo.Delete(rel.ID); err != nil {
			return err
		}
		event := eventCancelRequest
		switch rel.Status {
		case model.FollowAccepted:
			if err := repo.AdjustCounts(actor.ID, targetID, -1); err != nil {
				return err
			}
			event = eventUnfollow
		case model.FollowBlocked:
			event = eventUnblock
		}
		removed = rel
		return repo.InsertOutbox(event, actor.ID, targetID)
	})
	observe("cancel", err)
	if err != nil {
		return 0, err
	}
	switch removed.Status {
	case model.FollowAccepted:
		return Unfollowed, nil
	case model.FollowBlocked:
		s.visibility.invalidate(ctx, actorID, targetID)
	}
	return RequestCancelled, nil
}

// Block actor 屏蔽 targetID：正向边改为 BLOCKED（没有则新建），反向边删除，被移除的 ACCEPTED 边回退计数
func (s *FollowService) Block(ctx context.Context, userID, actorID, targetID uint64) (*model.Follow, error) {
	var rel *model.Follow
	err := s.transact(ctx, func(tx *gorm.DB) error {
		actor, err := selfMember(tx, userID, actorID)
		if err != nil {
			return err
		}
		if actorID == targetID {
			return ErrSelfBlock
		}
		target, err := peerMember(tx, actor, targetID)
		if err != nil {
			return err
		}

		repo := &mysql.FollowRepository{DB: tx}
		fwd, rev, err := lockEdges(repo, actor.ID, target.ID)
		if err != nil {
			return err
		}

		if fwd != nil {
			if fwd.Status == model.FollowAccepted {
				if err := repo.AdjustCounts(actor.ID, target.ID, -1); err != nil {
					return err
				}
			}
			if fwd.Status != model.FollowBlocked {
				if _, err := repo.SetStatus(fwd.ID, fwd.Status, model.FollowBlocked); err != nil {
					return err
				}
				fwd.Status = model.FollowBlocked
			}
			rel = fwd
		} else {
			rel = &model.Follow{FollowerID: actor.ID, FollowingID: target.ID, Status: model.FollowBlocked}
			if err := repo.Create(rel); err != nil {
				return err
			}
		}

		if rev != nil {
			if rev.Status == model.FollowAccepted {
				if err := repo.AdjustCounts(target.ID, actor.ID, -1); err != nil {
					return err
				}
			}
			if err := repo.Delete(rev.ID); err != nil {
				return err
			}
		}
		return repo.InsertOutbox(eventBlock, actor.ID, target.ID)
	})
	observe("block", err)
	if err != nil {
		return nil, err
	}
	s.visibility.invalidate(ctx, actorID, targetID)
	return rel, nil
}

// Unblock 删除 actor 对 targetID 的屏蔽，不恢复之前的关注关系
func (s *FollowService) Unblock(ctx context.Context, userID, actorID, targetID uint64) error {
	err := s.transact(ctx, func(tx *gorm.DB) error {
		actor, err := selfMember(tx, userID, actorID)
		if err != nil {
			return err
		}
		repo := &mysql.FollowRepository{DB: tx}
		rel, err := repo.FindForUpdate(actor.ID, targetID)
		if err != nil {
			return err
		}
		if rel == nil || rel.Status != model.FollowBlocked {
			return ErrNotBlocked
		}
		if err := repo.Delete(rel.ID); err != nil {
			return err
		}
		return repo.InsertOutbox(eventUnblock, actor.ID, targetID)
	})
	observe("unblock", err)
	if err != nil {
		return err
	}
	s.visibility.invalidate(ctx, actorID, targetID)
	return nil
}

// ListFollowers 本人可以看到 ACCEPTED + PENDING，其他人只看到 ACCEPTED 且需要能查看资料
func (s *FollowService) ListFollowers(ctx context.Context, userID, memberID, cursor uint64, limit int) ([]FollowView, uint64, error) {
	viewer, statuses, err := s.listAccess(ctx, userID, memberID)
	if err != nil {
		return nil, 0, err
	}
	repo := &mysql.FollowRepository{DB: s.db.WithContext(ctx)}
	rows, next, err := repo.ListFollowers(memberID, statuses, cursor, limit)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.views(ctx, viewer, rows, func(f model.Follow) uint64 { return f.FollowerID })
	return views, next, err
}

// ListFollowings 与 ListFollowers 对称
func (s *FollowService) ListFollowings(ctx context.Context, userID, memberID, cursor uint64, limit int) ([]FollowView, uint64, error) {
	viewer, statuses, err := s.listAccess(ctx, userID, memberID)
	if err != nil {
		return nil, 0, err
	}
	repo := &mysql.FollowRepository{DB: s.db.WithContext(ctx)}
	rows, next, err := repo.ListFollowings(memberID, statuses, cursor, limit)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.views(ctx, viewer, rows, func(f model.Follow) uint64 { return f.FollowingID })
	return views, next, err
}

// ListBlocks 只有本人可以查看自己的屏蔽列表
func (s *FollowService) ListBlocks(ctx context.Context, userID, memberID, cursor uint64, limit int) ([]FollowView, uint64, error) {
	db := s.db.WithContext(ctx)
	owner, err := selfMember(db, userID, memberID)
	if err != nil {
		return nil, 0, err
	}
	rows, next, err := (&mysql.FollowRepository{DB: db}).ListFollowings(owner.ID, []model.FollowStatus{model.FollowBlocked}, cursor, limit)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.summaries(db, rows, func(f model.Follow) uint64 { return f.FollowingID })
	return views, next, err
}

func (s *FollowService) listAccess(ctx context.Context, userID, memberID uint64) (*model.Member, []model.FollowStatus, error) {
	db := s.db.WithContext(ctx)
	owner, err := (&mysql.MemberRepository{DB: db}).FindByID(memberID)
	if err != nil {
		return nil, nil, orNotFound(err, ErrMemberNotFound)
	}
	if owner.UserID == userID {
		return owner, []model.FollowStatus{model.FollowAccepted, model.FollowPending}, nil
	}
	viewer, err := memberOf(db, userID, owner.CommunityID)
	if err != nil {
		return nil, nil, err
	}
	ok, err := s.visibility.CanViewProfile(ctx, viewer, owner)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrProfileHidden
	}
	return viewer, []model.FollowStatus{model.FollowAccepted}, nil
}

// views 去掉与查看者有屏蔽关系的成员，并附上对方的资料摘要
func (s *FollowService) views(ctx context.Context, viewer *model.Member, rows []model.Follow, other func(model.Follow) uint64) ([]FollowView, error) {
	blocked, err := s.visibility.BlockedIDs(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	rows = lo.Reject(rows, func(f model.Follow, _ int) bool { return lo.Contains(blocked, other(f)) })
	return s.summaries(s.db.WithContext(ctx), rows, other)
}

func (s *FollowService) summaries(db *gorm.DB, rows []model.Follow, other func(model.Follow) uint64) ([]FollowView, error) {
	ids := lo.Map(rows, func(f model.Follow, _ int) uint64 { return other(f) })
	members, err := (&mysql.MemberRepository{DB: db}).FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	views := make([]FollowView, 0, len(rows))
	for _, f := range rows {
		view := FollowView{Follow: f}
		if m, ok := members[other(f)]; ok {
			view.Member = summarize(&m)
		}
		views = append(views, view)
	}
	return views, nil
}

func summarize(m *model.Member) *MemberSummary {
	return &MemberSummary{ID: m.ID, Nickname: m.Nickname, ProfileImage: m.ProfileImage, IsPrivate: m.IsPrivate}
}

// selfMember 读取成员并确认属于当前用户
func selfMember(db *gorm.DB, userID, memberID uint64) (*model.Member, error) {
	m, err := (&mysql.MemberRepository{DB: db}).FindByID(memberID)
	if err != nil {
		return nil, orNotFound(err, ErrMemberNotFound)
	}
	if m.UserID != userID {
		return nil, ErrNotSelf
	}
	return m, nil
}

// peerMember 读取目标成员，必须和 actor 在同一个社区
func peerMember(db *gorm.DB, actor *model.Member, targetID uint64) (*model.Member, error) {
	target, err := (&mysql.MemberRepository{DB: db}).FindByID(targetID)
	if err != nil {
		return nil, orNotFound(err, ErrMemberNotFound)
	}
	if target.CommunityID != actor.CommunityID {
		return nil, ErrOtherCommunity
	}
	return target, nil
}

// transact 执行一次关系边事务。锁冲突（死锁、锁等待超时）或并发插入同一条边导致的唯一索引冲突时重做一次，
// 重做时能读到对方已提交的边，按正常的状态校验返回结果
func (s *FollowService) transact(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := s.db.WithContext(ctx).Transaction(fn)
	if mysql.IsRetryable(err) || errors.Is(err, gorm.ErrDuplicatedKey) {
		log.Debug().Err(err).Msg("follow transaction conflicted, retrying")
		err = s.db.WithContext(ctx).Transaction(fn)
	}
	if mysql.IsRetryable(err) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEdgeChanged
	}
	return err
}

// lockEdges 按成员 id 从小到大的顺序锁住 a->b 和 b->a 两条边，避免交叉加锁死锁
func lockEdges(repo *mysql.FollowRepository, a, b uint64) (fwd, rev *model.Follow, err error) {
	if a < b {
		if fwd, err = repo.FindForUpdate(a, b); err != nil {
			return nil, nil, err
		}
		rev, err = repo.FindForUpdate(b, a)
		return fwd, rev, err
	}
	if rev, err = repo.FindForUpdate(b, a); err != nil {
		return nil, nil, err
	}
	fwd, err = repo.FindForUpdate(a, b)
	return fwd, rev, err
}

// observe 记录关系图操作结果
func observe(op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	case errors.Is(err, ErrForbidden):
		result = "forbidden"
	case errors.Is(err, ErrConflict):
		result = "conflict"
	case errors.Is(err, ErrInvalidState):
		result = "invalid_state"
	default:
		result = "error"
		log.Error().Err(err).Str("op", op).Msg("follow graph operation failed")
	}
	pkg.GraphTransitions.WithLabelValues(op, result).Inc()
}
