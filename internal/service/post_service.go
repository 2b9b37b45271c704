package service

import (
	"context"
	"strings"

	"Community_Graph/internal/model"
	"Community_Graph/internal/repository/mysql"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type PostService struct {
	db         *gorm.DB
	visibility *VisibilityPolicy
}

func NewPostService(db *gorm.DB, visibility *VisibilityPolicy) *PostService {
	return &PostService{db: db, visibility: visibility}
}

type PostInput struct {
	Title       string `json:"title" validate:"required,max=255"`
	Content     string `json:"content" validate:"required"`
	Image       string `json:"image" validate:"omitempty,max=255"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// AuthorView 匿名内容不返回作者
type AuthorView struct {
	ID           uint64 `json:"id"`
	Nickname     string `json:"nickname"`
	ProfileImage string `json:"profile_image"`
}

type PostView struct {
	model.Post
	Author      *AuthorView `json:"author"`
	IsMine      bool        `json:"is_mine"`
	IsFollowing bool        `json:"is_following"`
	IsLiked     bool        `json:"is_liked"`
	IsScrapped  bool        `json:"is_scrapped"`
}

// CreatePost 在分类下发帖，作者为用户在该社区的成员身份
func (s *PostService) CreatePost(ctx context.Context, userID, categoryID uint64, in PostInput) (*model.Post, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	var post *model.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := (&mysql.CategoryRepository{DB: tx}).FindActive(categoryID)
		if err != nil {
			return orNotFound(err, ErrCategoryNotFound)
		}
		author, err := memberOf(tx, userID, category.CommunityID)
		if err != nil {
			return err
		}
		post = &model.Post{
			CategoryID:  category.ID,
			CommunityID: category.CommunityID,
			AuthorID:    author.ID,
			Title:       in.Title,
			Content:     in.Content,
			Image:       in.Image,
			IsAnonymous: in.IsAnonymous,
		}
		if err := (&mysql.PostRepository{DB: tx}).Create(post); err != nil {
			return err
		}
		return mysql.ApplyDelta(tx, post, +1)
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost 帖子详情，作者与查看者存在屏蔽关系时拒绝
func (s *PostService) GetPost(ctx context.Context, userID, postID uint64) (*PostView, error) {
	db := s.db.WithContext(ctx)
	repo := &mysql.PostRepository{DB: db}
	post, err := repo.FindByID(postID)
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
	if lo.Contains(blocked, post.AuthorID) {
		return nil, ErrBlockedContent
	}
	if err := repo.IncrAccess(post.ID); err != nil {
		log.Warn().Err(err).Uint64("post", post.ID).Msg("unable to count post access")
	} else {
		post.AccessCount++
	}
	views, err := s.annotate(db, viewer, []model.Post{*post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListPosts 分类下的帖子，按 id 倒序游标分页
func (s *PostService) ListPosts(ctx context.Context, userID, categoryID, cursor uint64, limit int) ([]PostView, uint64, error) {
	db := s.db.WithContext(ctx)
	category, err := (&mysql.CategoryRepository{DB: db}).FindActive(categoryID)
	if err != nil {
		return nil, 0, orNotFound(err, ErrCategoryNotFound)
	}
	viewer, err := memberOf(db, userID, category.CommunityID)
	if err != nil {
		return nil, 0, err
	}
	blocked, err := s.visibility.BlockedIDs(ctx, viewer.ID)
	if err != nil {
		return nil, 0, err
	}
	posts, next, err := (&mysql.PostRepository{DB: db}).ListByCategory(categoryID, blocked, cursor, limit)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.annotate(db, viewer, posts)
	return views, next, err
}

// ListScraps 成员自己的收藏帖子
func (s *PostService) ListScraps(ctx context.Context, userID, memberID, cursor uint64, limit int) ([]PostView, uint64, error) {
	db := s.db.WithContext(ctx)
	owner, err := selfMember(db, userID, memberID)
	if err != nil {
		return nil, 0, err
	}
	blocked, err := s.visibility.BlockedIDs(ctx, owner.ID)
	if err != nil {
		return nil, 0, err
	}
	posts, next, err := (&mysql.PostRepository{DB: db}).ListScrapped(owner.ID, blocked, cursor, limit)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.annotate(db, owner, posts)
	return views, next, err
}

// DeletePost 作者或社区运营成员可以删除，连同评论、回复、点赞、收藏一起清理
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := (&mysql.PostRepository{DB: tx}).FindForUpdate(postID)
		if err != nil {
			return orNotFound(err, ErrPostNotFound)
		}
		actor, err := memberOf(tx, userID, post.CommunityID)
		if err != nil {
			return err
		}
		if post.AuthorID != actor.ID && !actor.IsManager() {
			return ErrNotAuthor
		}
		return (&mysql.Purger{DB: tx}).Post(post)
	})
}

func (s *PostService) LikePost(ctx context.Context, userID, postID uint64) (bool, error) {
	return s.toggle(ctx, userID, postID, true, func(postID, memberID uint64) model.Pair {
		return &model.PostLike{PostID: postID, MemberID: memberID}
	})
}

func (s *PostService) UnlikePost(ctx context.Context, userID, postID uint64) (bool, error) {
	return s.toggle(ctx, userID, postID, false, func(postID, memberID uint64) model.Pair {
		return &model.PostLike{PostID: postID, MemberID: memberID}
	})
}

func (s *PostService) ScrapPost(ctx context.Context, userID, postID uint64) (bool, error) {
	return s.toggle(ctx, userID, postID, true, func(postID, memberID uint64) model.Pair {
		return &model.PostScrap{PostID: postID, MemberID: memberID}
	})
}

func (s *PostService) UnscrapPost(ctx context.Context, userID, postID uint64) (bool, error) {
	return s.toggle(ctx, userID, postID, false, func(postID, memberID uint64) model.Pair {
		return &model.PostScrap{PostID: postID, MemberID: memberID}
	})
}

// toggle 点赞/收藏的增删，行变化与计数在同一事务
func (s *PostService) toggle(ctx context.Context, userID, postID uint64, add bool, row func(postID, memberID uint64) model.Pair) (bool, error) {
	var changed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := (&mysql.PostRepository{DB: tx}).FindByID(postID)
		if err != nil {
			return orNotFound(err, ErrPostNotFound)
		}
		member, err := memberOf(tx, userID, post.CommunityID)
		if err != nil {
			return err
		}
		pairs := &mysql.PairRepository{DB: tx}
		if !add {
			changed, err = pairs.Remove(row(post.ID, member.ID))
			return err
		}
		if err := refuseBlocked(tx, member.ID, post.AuthorID); err != nil {
			return err
		}
		changed, err = pairs.Add(row(post.ID, member.ID))
		return err
	})
	return changed, err
}

// annotate 附加作者信息和查看者的关注、点赞、收藏状态
func (s *PostService) annotate(db *gorm.DB, viewer *model.Member, posts []model.Post) ([]PostView, error) {
	postIDs := lo.Map(posts, func(p model.Post, _ int) uint64 { return p.ID })
	authorIDs := lo.Uniq(lo.FilterMap(posts, func(p model.Post, _ int) (uint64, bool) {
		return p.AuthorID, !p.IsAnonymous
	}))

	authors, err := (&mysql.MemberRepository{DB: db}).FindByIDs(authorIDs)
	if err != nil {
		return nil, err
	}
	following, err := (&mysql.FollowRepository{DB: db}).FollowingSet(viewer.ID, authorIDs)
	if err != nil {
		return nil, err
	}
	pairs := &mysql.PairRepository{DB: db}
	liked, err := pairs.MemberPairs(&model.PostLike{}, "post_id", viewer.ID, postIDs)
	if err != nil {
		return nil, err
	}
	scrapped, err := pairs.MemberPairs(&model.PostScrap{}, "post_id", viewer.ID, postIDs)
	if err != nil {
		return nil, err
	}

	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		view := PostView{
			Post:       p,
			IsMine:     p.AuthorID == viewer.ID,
			IsLiked:    liked[p.ID],
			IsScrapped: scrapped[p.ID],
		}
		if !p.IsAnonymous {
			view.Author = authorView(authors, p.AuthorID)
			view.IsFollowing = following[p.AuthorID]
		}
		views = append(views, view)
	}
	return views, nil
}

func authorView(authors map[uint64]model.Member, id uint64) *AuthorView {
	m, ok := authors[id]
	if !ok {
		return nil
	}
	return &AuthorView{ID: m.ID, Nickname: m.Nickname, ProfileImage: m.ProfileImage}
}

// refuseBlocked 与内容作者存在屏蔽关系时不能互动
func refuseBlocked(tx *gorm.DB, memberID, authorID uint64) error {
	blocked, err := blockedIDs(tx, memberID)
	if err != nil {
		return err
	}
	if lo.Contains(blocked, authorID) {
		return ErrBlockedContent
	}
	return nil
}
