package mysql

import (
	"Community_Graph/internal/model"

	"gorm.io/gorm"
)

// Purger 级联删除内容与成员。
// 所有依赖行先通过账本回退计数再删除，最后才删除自身，保证计数与行数一致。DB 必须是事务 tx。
type Purger struct {
	DB *gorm.DB
}

// Reply 删除回复及其点赞
func (p *Purger) Reply(reply *model.PostReply) error {
	var likes []model.PostReplyLike
	if err := p.DB.Where("reply_id = ?", reply.ID).Find(&likes).Error; err != nil {
		return err
	}
	if err := p.unwind(len(likes), func(i int) model.Counted { return &likes[i] }); err != nil {
		return err
	}
	if err := p.DB.Where("reply_id = ?", reply.ID).Delete(&model.PostReplyLike{}).Error; err != nil {
		return err
	}
	if err := ApplyDelta(p.DB, reply, -1); err != nil {
		return err
	}
	return p.DB.Delete(&model.PostReply{}, reply.ID).Error
}

// Comment 删除评论、其下所有回复和点赞
func (p *Purger) Comment(comment *model.PostComment) error {
	var replies []model.PostReply
	if err := p.DB.Where("comment_id = ?", comment.ID).Find(&replies).Error; err != nil {
		return err
	}
	for i := range replies {
		if err := p.Reply(&replies[i]); err != nil {
			return err
		}
	}

	var likes []model.PostCommentLike
	if err := p.DB.Where("comment_id = ?", comment.ID).Find(&likes).Error; err != nil {
		return err
	}
	if err := p.unwind(len(likes), func(i int) model.Counted { return &likes[i] }); err != nil {
		return err
	}
	if err := p.DB.Where("comment_id = ?", comment.ID).Delete(&model.PostCommentLike{}).Error; err != nil {
		return err
	}
	if err := ApplyDelta(p.DB, comment, -1); err != nil {
		return err
	}
	return p.DB.Delete(&model.PostComment{}, comment.ID).Error
}

// Post 删除帖子、评论、回复、点赞和收藏，点赞/收藏者的成员计数同样回退
func (p *Purger) Post(post *model.Post) error {
	var comments []model.PostComment
	if err := p.DB.Where("post_id = ?", post.ID).Find(&comments).Error; err != nil {
		return err
	}
	for i := range comments {
		if err := p.Comment(&comments[i]); err != nil {
			return err
		}
	}

	var likes []model.PostLike
	if err := p.DB.Where("post_id = ?", post.ID).Find(&likes).Error; err != nil {
		return err
	}
	if err := p.unwind(len(likes), func(i int) model.Counted { return &likes[i] }); err != nil {
		return err
	}
	if err := p.DB.Where("post_id = ?", post.ID).Delete(&model.PostLike{}).Error; err != nil {
		return err
	}

	var scraps []model.PostScrap
	if err := p.DB.Where("post_id = ?", post.ID).Find(&scraps).Error; err != nil {
		return err
	}
	if err := p.unwind(len(scraps), func(i int) model.Counted { return &scraps[i] }); err != nil {
		return err
	}
	if err := p.DB.Where("post_id = ?", post.ID).Delete(&model.PostScrap{}).Error; err != nil {
		return err
	}

	if err := ApplyDelta(p.DB, post, -1); err != nil {
		return err
	}
	return p.DB.Delete(&model.Post{}, post.ID).Error
}

// Member 退出社区：依次清理作者内容、互动、收藏和关系边，最后删除成员本身
func (p *Purger) Member(m *model.Member) error {
	var posts []model.Post
	if err := p.DB.Where("author_id = ?", m.ID).Find(&posts).Error; err != nil {
		return err
	}
	for i := range posts {
		if err := p.Post(&posts[i]); err != nil {
			return err
		}
	}

	var comments []model.PostComment
	if err := p.DB.Where("author_id = ?", m.ID).Find(&comments).Error; err != nil {
		return err
	}
	for i := range comments {
		if err := p.Comment(&comments[i]); err != nil {
			return err
		}
	}

	var replies []model.PostReply
	if err := p.DB.Where("author_id = ?", m.ID).Find(&replies).Error; err != nil {
		return err
	}
	for i := range replies {
		if err := p.Reply(&replies[i]); err != nil {
			return err
		}
	}

	if err := p.memberPairs(m.ID); err != nil {
		return err
	}
	if err := p.detachFollows(m.ID); err != nil {
		return err
	}

	if err := ApplyDelta(p.DB, m, -1); err != nil {
		return err
	}
	return p.DB.Delete(&model.Member{}, m.ID).Error
}

// memberPairs 成员做出的点赞、收藏、关注分类
func (p *Purger) memberPairs(memberID uint64) error {
	var postLikes []model.PostLike
	var scraps []model.PostScrap
	var commentLikes []model.PostCommentLike
	var replyLikes []model.PostReplyLike
	var communityFavs []model.CommunityFavorite
	var categoryFavs []model.PostCategoryFavorite

	loads := []struct {
		dest  any
		size  func() int
		event func(i int) model.Counted
		table any
	}{
		{&postLikes, func() int { return len(postLikes) }, func(i int) model.Counted { return &postLikes[i] }, &model.PostLike{}},
		{&scraps, func() int { return len(scraps) }, func(i int) model.Counted { return &scraps[i] }, &model.PostScrap{}},
		{&commentLikes, func() int { return len(commentLikes) }, func(i int) model.Counted { return &commentLikes[i] }, &model.PostCommentLike{}},
		{&replyLikes, func() int { return len(replyLikes) }, func(i int) model.Counted { return &replyLikes[i] }, &model.PostReplyLike{}},
		{&communityFavs, func() int { return len(communityFavs) }, func(i int) model.Counted { return &communityFavs[i] }, &model.CommunityFavorite{}},
		{&categoryFavs, func() int { return len(categoryFavs) }, func(i int) model.Counted { return &categoryFavs[i] }, &model.PostCategoryFavorite{}},
	}
	for _, l := range loads {
		if err := p.DB.Where("member_id = ?", memberID).Find(l.dest).Error; err != nil {
			return err
		}
		if err := p.unwind(l.size(), l.event); err != nil {
			return err
		}
		if err := p.DB.Where("member_id = ?", memberID).Delete(l.table).Error; err != nil {
			return err
		}
	}
	return nil
}

// detachFollows 删除成员两端的所有关系边，ACCEPTED 的边回退双方计数
func (p *Purger) detachFollows(memberID uint64) error {
	repo := &FollowRepository{DB: p.DB}
	rows, err := repo.ListTouching(memberID)
	if err != nil {
		return err
	}
	for _, rel := range rows {
		if rel.Status == model.FollowAccepted {
			if err := repo.AdjustCounts(rel.FollowerID, rel.FollowingID, -1); err != nil {
				return err
			}
		}
		if err := repo.Delete(rel.ID); err != nil {
			return err
		}
	}
	return nil
}

func (p *Purger) unwind(n int, event func(i int) model.Counted) error {
	for i := 0; i < n; i++ {
		if err := ApplyDelta(p.DB, event(i), -1); err != nil {
			return err
		}
	}
	return nil
}
