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

func count(t *testing.T, db *gorm.DB, table any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(table).Count(&n).Error)
	return n
}

func TestPurger_PostCascade(t *testing.T) {
	db := testutil.OpenTestDB(t)
	w := newWorld(t, db, 2)
	a, b := w.members[0], w.members[1]
	pairs := &mysql.PairRepository{DB: db}

	p := w.post(t, a)
	require.NoError(t, mysql.ApplyDelta(db, p, +1))
	c := w.comment(t, p, b)
	require.NoError(t, mysql.ApplyDelta(db, c, +1))
	r := w.reply(t, c, a)
	require.NoError(t, mysql.ApplyDelta(db, r, +1))
	_, err := pairs.Add(&model.PostLike{PostID: p.ID, MemberID: b.ID})
	require.NoError(t, err)
	_, err = pairs.Add(&model.PostScrap{PostID: p.ID, MemberID: b.ID})
	require.NoError(t, err)
	_, err = pairs.Add(&model.PostCommentLike{CommentID: c.ID, MemberID: a.ID})
	require.NoError(t, err)
	_, err = pairs.Add(&model.PostReplyLike{ReplyID: r.ID, MemberID: b.ID})
	require.NoError(t, err)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return (&mysql.Purger{DB: tx}).Post(p)
	}))

	for _, table := range []any{&model.Post{}, &model.PostComment{}, &model.PostReply{}, &model.PostLike{},
		&model.PostScrap{}, &model.PostCommentLike{}, &model.PostReplyLike{}} {
		assert.Zero(t, count(t, db, table), "%T", table)
	}
	for _, m := range []*model.Member{a, b} {
		got := reload[model.Member](t, db, m.ID)
		assert.Zero(t, got.PostCount)
		assert.Zero(t, got.CommentCount)
		assert.Zero(t, got.ReplyCount)
		assert.Zero(t, got.LikeCount)
		assert.Zero(t, got.ScrapCount)
	}
	assert.Zero(t, reload[model.Community](t, db, w.community.ID).PostCount)
	assert.Zero(t, reload[model.PostCategory](t, db, w.category.ID).PostCount)
}

func TestPurger_MemberDetachesEverything(t *testing.T) {
	db := testutil.OpenTestDB(t)
	w := newWorld(t, db, 3)
	leaver, other, third := w.members[0], w.members[1], w.members[2]
	for _, m := range w.members {
		require.NoError(t, mysql.ApplyDelta(db, m, +1))
	}
	pairs := &mysql.PairRepository{DB: db}
	follows := &mysql.FollowRepository{DB: db}

	// other 的帖子被 leaver 点赞、评论
	p := w.post(t, other)
	require.NoError(t, mysql.ApplyDelta(db, p, +1))
	c := w.comment(t, p, leaver)
	require.NoError(t, mysql.ApplyDelta(db, c, +1))
	_, err := pairs.Add(&model.PostLike{PostID: p.ID, MemberID: leaver.ID})
	require.NoError(t, err)
	_, err = pairs.Add(&model.CommunityFavorite{CommunityID: w.community.ID, MemberID: leaver.ID})
	require.NoError(t, err)

	// leaver -> other 已关注，third -> leaver 已关注，other -> leaver 待处理
	for _, f := range []*model.Follow{
		{FollowerID: leaver.ID, FollowingID: other.ID, Status: model.FollowAccepted},
		{FollowerID: third.ID, FollowingID: leaver.ID, Status: model.FollowAccepted},
		{FollowerID: other.ID, FollowingID: leaver.ID, Status: model.FollowPending},
	} {
		require.NoError(t, follows.Create(f))
		if f.Status == model.FollowAccepted {
			require.NoError(t, follows.AdjustCounts(f.FollowerID, f.FollowingID, +1))
		}
	}

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return (&mysql.Purger{DB: tx}).Member(leaver)
	}))

	assert.Zero(t, count(t, db, &model.Follow{}))
	assert.Zero(t, count(t, db, &model.PostComment{}))
	assert.Zero(t, count(t, db, &model.PostLike{}))
	assert.Zero(t, count(t, db, &model.CommunityFavorite{}))
	assert.Equal(t, int64(1), count(t, db, &model.Post{}))

	gotPost := reload[model.Post](t, db, p.ID)
	assert.Zero(t, gotPost.LikeCount)
	assert.Zero(t, gotPost.CommentCount)

	gotOther := reload[model.Member](t, db, other.ID)
	assert.Zero(t, gotOther.FollowerCount)
	assert.Equal(t, int64(1), gotOther.PostCount)
	assert.Zero(t, reload[model.Member](t, db, third.ID).FollowingCount)

	community := reload[model.Community](t, db, w.community.ID)
	assert.Equal(t, int64(2), community.MemberCount)
	assert.Zero(t, community.FavoriteCount)
}
