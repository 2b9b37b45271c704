package mysql

import (
	"errors"
	"fmt"
	"strings"

	"Community_Graph/internal/model"
	"Community_Graph/internal/pkg"

	"gorm.io/gorm"
)

var (
	ErrUnknownCounterEvent  = errors.New("unknown counter event")
	ErrCounterTargetMissing = errors.New("counter target row missing")
	ErrInvalidDelta         = errors.New("counter delta must be +1 or -1")
)

// ApplyDelta 按事件类型把 ±1 扇出到对应的计数列。
// 必须在写入/删除事件行的同一个事务 tx 内调用；任何目标行不存在都会返回错误让事务回滚。
func ApplyDelta(tx *gorm.DB, event model.Counted, delta int) error {
	if delta != 1 && delta != -1 {
		return fmt.Errorf("%w: got %d", ErrInvalidDelta, delta)
	}

	var err error
	switch e := event.(type) {
	case *model.Member:
		err = bump(tx, &model.Community{}, e.CommunityID, delta, "member_count")
	case *model.CommunityFavorite:
		err = bump(tx, &model.Community{}, e.CommunityID, delta, "favorite_count")
	case *model.PostCategoryFavorite:
		err = bump(tx, &model.PostCategory{}, e.CategoryID, delta, "favorite_count")
	case *model.Post:
		err = firstErr(
			func() error { return bump(tx, &model.Member{}, e.AuthorID, delta, "post_count") },
			func() error { return bump(tx, &model.Community{}, e.CommunityID, delta, "post_count") },
			func() error { return bump(tx, &model.PostCategory{}, e.CategoryID, delta, "post_count") },
		)
	case *model.PostLike:
		err = firstErr(
			func() error { return bump(tx, &model.Post{}, e.PostID, delta, "like_count") },
			func() error { return bump(tx, &model.Member{}, e.MemberID, delta, "like_count") },
		)
	case *model.PostScrap:
		err = firstErr(
			func() error { return bump(tx, &model.Post{}, e.PostID, delta, "scrap_count") },
			func() error { return bump(tx, &model.Member{}, e.MemberID, delta, "scrap_count") },
		)
	case *model.PostComment:
		err = firstErr(
			func() error { return bump(tx, &model.Post{}, e.PostID, delta, "comment_count") },
			func() error { return bump(tx, &model.Member{}, e.AuthorID, delta, "comment_count") },
		)
	case *model.PostCommentLike:
		err = bump(tx, &model.PostComment{}, e.CommentID, delta, "like_count")
	case *model.PostReply:
		// 回复只记录了 comment_id，帖子 id 从评论行上取
		var comment model.PostComment
		if err = tx.Select("id", "post_id").Take(&comment, e.CommentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: comment #%d", ErrCounterTargetMissing, e.CommentID)
			}
			return err
		}
		err = firstErr(
			func() error { return bump(tx, &model.Post{}, comment.PostID, delta, "reply_count") },
			func() error { return bump(tx, &model.PostComment{}, e.CommentID, delta, "reply_count") },
			func() error { return bump(tx, &model.Member{}, e.AuthorID, delta, "reply_count") },
		)
	case *model.PostReplyLike:
		err = bump(tx, &model.PostReply{}, e.ReplyID, delta, "like_count")
	default:
		return fmt.Errorf("%w: %T", ErrUnknownCounterEvent, event)
	}
	if err != nil {
		return err
	}

	pkg.CounterUpdates.WithLabelValues(eventName(event), direction(delta)).Inc()
	return nil
}

// bump 原子相对更新：col = col + delta
func bump(tx *gorm.DB, table any, id uint64, delta int, column string) error {
	res := tx.Model(table).Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %T #%d", ErrCounterTargetMissing, table, id)
	}
	return nil
}

func firstErr(steps ...func() error) error {
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func eventName(event model.Counted) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", event), "*model.")
}

func direction(delta int) string {
	if delta > 0 {
		return "inc"
	}
	return "dec"
}
