package service

import (
	"testing"

	"Community_Graph/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteComment_SoftWhenReplied(t *testing.T) {
	f := newContentFixture(t)
	p := f.post(t, f.alice)
	c, err := f.comments.CreateComment(f.ctx, f.bob.ID, p.ID, CommentInput{Content: "question"})
	require.NoError(t, err)
	_, err = f.comments.CreateReply(f.ctx, f.alice.ID, c.ID, CommentInput{Content: "answer"})
	require.NoError(t, err)

	soft, err := f.comments.DeleteComment(f.ctx, f.bob.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, soft)

	var got model.PostComment
	require.NoError(t, f.db.First(&got, c.ID).Error)
	assert.False(t, got.IsActive)
	assert.Equal(t, deletedCommentContent, got.Content)
	assert.Equal(t, int64(1), got.ReplyCount)

	// 软删除保留计数
	post := f.reloadPost(t, p.ID)
	assert.Equal(t, int64(1), post.CommentCount)
	assert.Equal(t, int64(1), post.ReplyCount)

	_, err = f.comments.DeleteComment(f.ctx, f.bob.ID, c.ID)
	assert.ErrorIs(t, err, ErrCommentNotFound)
	_, err = f.comments.CreateReply(f.ctx, f.alice.ID, c.ID, CommentInput{Content: "late"})
	assert.ErrorIs(t, err, ErrCommentDeleted)

	list, err := f.comments.ListComments(f.ctx, f.alice.ID, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Author)
	assert.False(t, list[0].IsActive)
}

func TestDeleteComment_HardWithoutReplies(t *testing.T) {
	f := newContentFixture(t)
	p := f.post(t, f.alice)
	c, err := f.comments.CreateComment(f.ctx, f.bob.ID, p.ID, CommentInput{Content: "hello"})
	require.NoError(t, err)
	_, err = f.comments.LikeComment(f.ctx, f.alice.ID, c.ID)
	require.NoError(t, err)

	_, err = f.comments.DeleteComment(f.ctx, f.alice.ID, c.ID)
	assert.ErrorIs(t, err, ErrNotAuthor)

	soft, err := f.comments.DeleteComment(f.ctx, f.bob.ID, c.ID)
	require.NoError(t, err)
	assert.False(t, soft)

	var n int64
	require.NoError(t, f.db.Model(&model.PostComment{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, f.db.Model(&model.PostCommentLike{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.Zero(t, f.reloadPost(t, p.ID).CommentCount)
	assert.Zero(t, f.reloadMember(t, f.mBob.ID).CommentCount)
}

func TestReplies_LikesAndDelete(t *testing.T) {
	f := newContentFixture(t)
	p := f.post(t, f.alice)
	c, err := f.comments.CreateComment(f.ctx, f.alice.ID, p.ID, CommentInput{Content: "c"})
	require.NoError(t, err)
	r, err := f.comments.CreateReply(f.ctx, f.bob.ID, c.ID, CommentInput{Content: "r", IsAnonymous: true})
	require.NoError(t, err)

	changed, err := f.comments.LikeReply(f.ctx, f.alice.ID, r.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	replies, err := f.comments.ListReplies(f.ctx, f.alice.ID, c.ID)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.True(t, replies[0].IsLiked)
	assert.Nil(t, replies[0].Author)
	assert.Equal(t, int64(1), replies[0].LikeCount)

	require.NoError(t, f.comments.DeleteReply(f.ctx, f.bob.ID, r.ID))
	assert.Zero(t, f.reloadPost(t, p.ID).ReplyCount)
	assert.Zero(t, f.reloadMember(t, f.mBob.ID).ReplyCount)

	var comment model.PostComment
	require.NoError(t, f.db.First(&comment, c.ID).Error)
	assert.Zero(t, comment.ReplyCount)

	assert.ErrorIs(t, f.comments.DeleteReply(f.ctx, f.bob.ID, r.ID), ErrReplyNotFound)
}

func TestComments_FilterBlockedAuthors(t *testing.T) {
	f := newContentFixture(t)
	carol := f.user(t, "carol")
	f.join(t, carol, f.community)
	p := f.post(t, carol)

	_, err := f.comments.CreateComment(f.ctx, f.alice.ID, p.ID, CommentInput{Content: "from alice"})
	require.NoError(t, err)
	_, err = f.comments.CreateComment(f.ctx, f.bob.ID, p.ID, CommentInput{Content: "from bob"})
	require.NoError(t, err)

	_, err = f.follows.Block(f.ctx, f.bob.ID, f.mBob.ID, f.mAlice.ID)
	require.NoError(t, err)

	list, err := f.comments.ListComments(f.ctx, f.alice.ID, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsMine)

	all, err := f.comments.ListComments(f.ctx, carol.ID, p.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
