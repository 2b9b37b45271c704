package service

import (
	"context"
	"strings"

	"Community_Graph/internal/model"
	"Community_Graph/internal/repository/mysql"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

const deletedCommentContent = "This comment has been deleted."

type CommentService struct {
	db         *gorm.DB
	visibility *VisibilityPolicy
}

func NewCommentService(db *gorm.DB, visibility *VisibilityPolicy) *CommentService {
	return &CommentService{db: db, visibility: visibility}
}

type CommentInput struct {
	Content     string `json:"content" validate:"required,max=2000"`
	Image       string `json:"image" validate:"omitempty,max=255"`
	IsAnonymous bool   `json:"is_anonymous"`
}

type CommentView struct {
	model.PostComment
	Author  *AuthorView `json:"author"`
	IsMine  bool        `json:"is_mine"`
	IsLiked bool        `json:"is_liked"`
}

type ReplyView struct {
	model.PostReply
	Author  *AuthorView `json:"author"`
	IsMine  bool        `json:"is_mine"`
	IsLiked bool        `json:"is_liked"`
}

func (s *CommentService) CreateComment(ctx context.Context, userID, postID uint64, in CommentInput) (*model.PostComment, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	var comment *model.PostComment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := (&mysql.PostRepository{DB: tx}).FindByID(postID)
		if err != nil {
			return orNotFound(err, ErrPostNotFound)
		}
		author, err := memberOf(tx, userID, post.CommunityID)
		if err != nil {
			return err
		}
		if err := refuseBlocked(tx, author.ID, post.AuthorID); err != nil {
			return err
		}
		comment = &model.PostComment{
			PostID:      post.ID,
			AuthorID:    author.ID,
			Content:     in.Content,
			Image:       in.Image,
			IsAnonymous: in.IsAnonymous,
		}
		if err := (&mysql.CommentRepository{DB: tx}).Create(comment); err != nil {
			return err
		}
		return mysql.ApplyDelta(tx, comment, +1)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments 帖子下的评论，已软删除的评论保留位置但不显示作者
func (s *CommentService) ListComments(ctx context.Context, userID, postID uint64) ([]CommentView, error) {
	db := s.db.WithContext(ctx)
	post, err := (&mysql.PostRepository{DB: db}).FindByID(postID)
	if err != nil {
		return nil, orNotFound(err, ErrPostNotFound)
	}
	viewer, err := memberOf(db, userID, post.CommunityID)
	if err != nil {
		return nil, err
	}
	blocked, err := s.visibility.BlockedIDs(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	comments, err := (&mysql.CommentRepository{DB: db}).ListByPost(post.ID)
	if err != nil {
		return nil, err
	}
	comments = FilterVisible(comments, blocked)

	authors, err := (&mysql.MemberRepository{DB: db}).FindByIDs(lo.Uniq(lo.Map(comments, func(c model.PostComment, _ int) uint64 { return c.AuthorID })))
	if err != nil {
		return nil, err
	}
	liked, err := (&mysql.PairRepository{DB: db}).MemberPairs(&model.PostCommentLike{}, "comment_id", viewer.ID,
		lo.Map(comments, func(c model.PostComment, _ int) uint64 { return c.ID }))
	if err != nil {
		return nil, err
	}

	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		view := CommentView{PostComment: c, IsMine: c.AuthorID == viewer.ID, IsLiked: liked[c.ID]}
		if c.IsActive && !c.IsAnonymous {
			view.Author = authorView(authors, c.AuthorID)
		}
		views = append(views, view)
	}
	return views, nil
}

// DeleteComment 有回复时软删除（清空内容，保留计数），否则直接删除。返回是否为软删除
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint64) (bool, error) {
	var soft bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := &mysql.CommentRepository{DB: tx}
		comment, err := repo.FindForUpdate(commentID)
		if err != nil {
			return orNotFound(err, ErrCommentNotFound)
		}
		if !comment.IsActive {
			return ErrCommentNotFound
		}
		post, err := (&mysql.PostRepository{DB: tx}).FindByID(comment.PostID)
		if err != nil {
			return orNotFound(err, ErrPostNotFound)
		}
		actor, err := memberOf(tx, userID, post.CommunityID)
		if err != nil {
			return err
		}
		if comment.AuthorID != actor.ID && !actor.IsManager() {
			return ErrNotAuthor
		}

		replies, err := repo.CountReplies(comment.ID)
		if err != nil {
			return err
		}
		if replies > 0 {
			soft = true
			return repo.SoftDelete(comment.ID, deletedCommentContent)
		}
		return (&mysql.Purger{DB: tx}).Comment(comment)
	})
	return soft, err
}

func (s *CommentService) CreateReply(ctx context.Context, userID, commentID uint64, in CommentInput) (*model.PostReply, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	var reply *model.PostReply
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := &mysql.CommentRepository{DB: tx}
		comment, post, err := commentWithPost(tx, commentID)
		if err != nil {
			return err
		}
		if !comment.IsActive {
			return ErrCommentDeleted
		}
		author, err := memberOf(tx, userID, post.CommunityID)
		if err != nil {
			return err
		}
		if err := refuseBlocked(tx, author.ID, comment.AuthorID); err != nil {
			return err
		}
		reply = &model.PostReply{
			CommentID:   comment.ID,
			AuthorID:    author.ID,
			Content:     in.Content,
			Image:       in.Image,
			IsAnonymous: in.IsAnonymous,
		}
		if err := repo.CreateReply(reply); err != nil {
			return err
		}
		return mysql.ApplyDelta(tx, reply, +1)
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

func (s *CommentService) ListReplies(ctx context.Context, userID, commentID uint64) ([]ReplyView, error) {
	db := s.db.WithContext(ctx)
	_, post, err := commentWithPost(db, commentID)
	if err != nil {
		return nil, err
	}
	viewer, err := memberOf(db, userID, post.CommunityID)
	if err != nil {
		return nil, err
	}
	blocked, err := s.visibility.BlockedIDs(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	replies, err := (&mysql.CommentRepository{DB: db}).ListReplies(commentID)
	if err != nil {
		return nil, err
	}
	replies = FilterVisible(replies, blocked)

	authors, err := (&mysql.MemberRepository{DB: db}).FindByIDs(lo.Uniq(lo.Map(replies, func(r model.PostReply, _ int) uint64 { return r.AuthorID })))
	if err != nil {
		return nil, err
	}
	liked, err := (&mysql.PairRepository{DB: db}).MemberPairs(&model.PostReplyLike{}, "reply_id", viewer.ID,
		lo.Map(replies, func(r model.PostReply, _ int) uint64 { return r.ID }))
	if err != nil {
		return nil, err
	}

	views := make([]ReplyView, 0, len(replies))
	for _, r := range replies {
		view := ReplyView{PostReply: r, IsMine: r.AuthorID == viewer.ID, IsLiked: liked[r.ID]}
		if !r.IsAnonymous {
			view.Author = authorView(authors, r.AuthorID)
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *CommentService) DeleteReply(ctx context.Context, userID, replyID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reply, err := (&mysql.CommentRepository{DB: tx}).FindReplyForUpdate(replyID)
		if err != nil {
			return orNotFound(err, ErrReplyNotFound)
		}
		_, post, err := commentWithPost(tx, reply.CommentID)
		if err != nil {
			return err
		}
		actor, err := memberOf(tx, userID, post.CommunityID)
		if err != nil {
			return err
		}
		if reply.AuthorID != actor.ID && !actor.IsManager() {
			return ErrNotAuthor
		}
		return (&mysql.Purger{DB: tx}).Reply(reply)
	})
}

func (s *CommentService) LikeComment(ctx context.Context, userID, commentID uint64) (bool, error) {
	return s.toggleComment(ctx, userID, commentID, true)
}

func (s *CommentService) UnlikeComment(ctx context.Context, userID, commentID uint64) (bool, error) {
	return s.toggleComment(ctx, userID, commentID, false)
}

func (s *CommentService) toggleComment(ctx context.Context, userID, commentID uint64, add bool) (bool, error) {
	var changed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		comment, post, err := commentWithPost(tx, commentID)
		if err != nil {
			return err
		}
		member, err := memberOf(tx, userID, post.CommunityID)
		if err != nil {
			return err
		}
		row := &model.PostCommentLike{CommentID: comment.ID, MemberID: member.ID}
		pairs := &mysql.PairRepository{DB: tx}
		if !add {
			changed, err = pairs.Remove(row)
			return err
		}
		if !comment.IsActive {
			return ErrCommentDeleted
		}
		if err := refuseBlocked(tx, member.ID, comment.AuthorID); err != nil {
			return err
		}
		changed, err = pairs.Add(row)
		return err
	})
	return changed, err
}

func (s *CommentService) LikeReply(ctx context.Context, userID, replyID uint64) (bool, error) {
	return s.toggleReply(ctx, userID, replyID, true)
}

func (s *CommentService) UnlikeReply(ctx context.Context, userID, replyID uint64) (bool, error) {
	return s.toggleReply(ctx, userID, replyID, false)
}

func (s *CommentService) toggleReply(ctx context.Context, userID, replyID uint64, add bool) (bool, error) {
	var changed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reply, err := (&mysql.CommentRepository{DB: tx}).FindReply(replyID)
		if err != nil {
			return orNotFound(err, ErrReplyNotFound)
		}
		_, post, err := commentWithPost(tx, reply.CommentID)
		if err != nil {
			return err
		}
		member, err := memberOf(tx, userID, post.CommunityID)
		if err != nil {
			return err
		}
		row := &model.PostReplyLike{ReplyID: reply.ID, MemberID: member.ID}
		pairs := &mysql.PairRepository{DB: tx}
		if !add {
			changed, err = pairs.Remove(row)
			return err
		}
		if err := refuseBlocked(tx, member.ID, reply.AuthorID); err != nil {
			return err
		}
		changed, err = pairs.Add(row)
		return err
	})
	return changed, err
}

// commentWithPost 读取评论及其所属的有效帖子
func commentWithPost(db *gorm.DB, commentID uint64) (*model.PostComment, *model.Post, error) {
	comment, err := (&mysql.CommentRepository{DB: db}).FindByID(commentID)
	if err != nil {
		return nil, nil, orNotFound(err, ErrCommentNotFound)
	}
	post, err := (&mysql.PostRepository{DB: db}).FindByID(comment.PostID)
	if err != nil {
		return nil, nil, orNotFound(err, ErrPostNotFound)
	}
	return comment, post, nil
}
