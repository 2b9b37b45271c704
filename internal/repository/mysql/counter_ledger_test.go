package mysql_test

import (
	"testing"

	"Community_Graph/internal/model"
	"Community_Graph/internal/repository/mysql"
	"Community_Graph/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestApplyDelta_MemberAndFavorites(t *testing.T) {
	db := testutil.OpenTestDB(t)
	w := newWorld(t, db, 1)
	m := w.members[0]

	require.NoError(t, mysql.ApplyDelta(db, m, +1))
	require.NoError(t, mysql.ApplyDelta(db, &model.CommunityFavorite{CommunityID: w.community.ID, MemberID: m.ID}, +1))
	require.NoError(t, mysql.ApplyDelta(db, &model.PostCategoryFavorite{CategoryID: w.category.ID, MemberID: m.ID}, +1))

	c := reload[model.Community](t, db, w.community.ID)
	assert.Equal(t, int64(1), c.MemberCount)
	assert.Equal(t, int64(1), c.FavoriteCount)
	assert.Equal(t, int64(1), reload[model.PostCategory](t, db, w.category.ID).FavoriteCount)

	require.NoError(t, mysql.ApplyDelta(db, m, -1))
	assert.Equal(t, int64(0), reload[model.Community](t, db, w.community.ID).MemberCount)
}

func TestApplyDelta_PostFansOut(t *testing.T) {
	db := testutil.OpenTestDB(t)
	w := newWorld(t, db, 2)
	author, fan := w.members[0], w.members[1]
	p := w.post(t, author)

	require.NoError(t, mysql.ApplyDelta(db, p, +1))
	require.NoError(t, mysql.ApplyDelta(db, &model.PostLike{PostID: p.ID, MemberID: fan.ID}, +1))
	require.NoError(t, mysql.ApplyDelta(db, &model.PostScrap{PostID: p.ID, MemberID: fan.ID}, +1))

	assert.Equal(t, int64(1), reload[model.Member](t, db, author.ID).PostCount)
	assert.Equal(t, int64(1), reload[model.Community](t, db, w.community.ID).PostCount)
	assert.Equal(t, int64(1), reload[model.PostCategory](t, db, w.category.ID).PostCount)

	got := reload[model.Post](t, db, p.ID)
	assert.Equal(t, int64(1), got.LikeCount)
	assert.Equal(t, int64(1), got.ScrapCount)
	gotFan := reload[model.Member](t, db, fan.ID)
	assert.Equal(t, int64(1), gotFan.LikeCount)
	assert.Equal(t, int64(1), gotFan.ScrapCount)
}

func TestApplyDelta_CommentAndReply(t *testing.T) {
	db := testutil.OpenTestDB(t)
	w := newWorld(t, db, 2)
	a, b := w.members[0], w.members[1]
	p := w.post(t, a)
	c := w.comment(t, p, b)
	r := w.reply(t, c, a)

	require.NoError(t, mysql.ApplyDelta(db, c, +1))
	require.NoError(t, mysql.ApplyDelta(db, r, +1))
	require.NoError(t, mysql.ApplyDelta(db, &model.PostCommentLike{CommentID: c.ID, MemberID: a.ID}, +1))
	require.NoError(t, mysql.ApplyDelta(db, &model.PostReplyLike{ReplyID: r.ID, MemberID: b.ID}, +1))

	gotPost := reload[model.Post](t, db, p.ID)
	assert.Equal(t, int64(1), gotPost.CommentCount)
	assert.Equal(t, int64(1), gotPost.ReplyCount)

	gotComment := reload[model.PostComment](t, db, c.ID)
	assert.Equal(t, int64(1), gotComment.ReplyCount)
	assert.Equal(t, int64(1), gotComment.LikeCount)

	assert.Equal(t, int64(1), reload[model.PostReply](t, db, r.ID).LikeCount)
	assert.Equal(t, int64(1), reload[model.Member](t, db, b.ID).CommentCount)
	assert.Equal(t, int64(1), reload[model.Member](t, db, a.ID).ReplyCount)
}

func TestApplyDelta_MissingTargetRollsBack(t *testing.T) {
	db := testutil.OpenTestDB(t)
	w := newWorld(t, db, 1)

	// 分类不存在，前两个计数已更新也要整体回滚
	orphan := &model.Post{AuthorID: w.members[0].ID, CommunityID: w.community.ID, CategoryID: 9999}
	err := db.Transaction(func(tx *gorm.DB) error {
		return mysql.ApplyDelta(tx, orphan, +1)
	})
	require.ErrorIs(t, err, mysql.ErrCounterTargetMissing)

	assert.Equal(t, int64(0), reload[model.Member](t, db, w.members[0].ID).PostCount)
	assert.Equal(t, int64(0), reload[model.Community](t, db, w.community.ID).PostCount)
}

func TestApplyDelta_ReplyWithoutComment(t *testing.T) {
	db := testutil.OpenTestDB(t)
	err := mysql.ApplyDelta(db, &model.PostReply{CommentID: 42, AuthorID: 1}, +1)
	assert.ErrorIs(t, err, mysql.ErrCounterTargetMissing)
}

func TestApplyDelta_InvalidDelta(t *testing.T) {
	db := testutil.OpenTestDB(t)
	w := newWorld(t, db, 1)
	for _, delta := range []int{0, 2, -3} {
		err := mysql.ApplyDelta(db, w.members[0], delta)
		assert.ErrorIs(t, err, mysql.ErrInvalidDelta)
	}
	assert.Equal(t, int64(0), reload[model.Community](t, db, w.community.ID).MemberCount)
}
