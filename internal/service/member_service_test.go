package service

import (
	"regexp"
	"strings"
	"testing"

	"Community_Graph/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoin_GeneratesNickname(t *testing.T) {
	e := newEnv(t)
	c := e.community(t, "Go Lovers Club Seoul")
	u := e.staff(t, "alice")

	m, err := e.members.Join(e.ctx, u.ID, c.ID, JoinInput{})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^GoLoversCl[0-9a-f]{6}$`), m.Nickname)
	assert.True(t, m.IsStaff)

	var got model.Community
	require.NoError(t, e.db.First(&got, c.ID).Error)
	assert.Equal(t, int64(1), got.MemberCount)
}

func TestJoin_Conflicts(t *testing.T) {
	e := newEnv(t)
	c := e.community(t, "Go Lovers")
	alice, bob := e.user(t, "alice"), e.user(t, "bob")

	_, err := e.members.Join(e.ctx, alice.ID, c.ID, JoinInput{Nickname: "gopher"})
	require.NoError(t, err)

	_, err = e.members.Join(e.ctx, alice.ID, c.ID, JoinInput{Nickname: "other"})
	assert.ErrorIs(t, err, ErrAlreadyMember)

	_, err = e.members.Join(e.ctx, bob.ID, c.ID, JoinInput{Nickname: "gopher"})
	assert.ErrorIs(t, err, ErrNicknameTaken)

	_, err = e.members.Join(e.ctx, bob.ID, c.ID, JoinInput{Nickname: strings.Repeat("x", 25)})
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, verr.Fields, "nickname")

	_, err = e.members.Join(e.ctx, bob.ID, 9999, JoinInput{})
	assert.ErrorIs(t, err, ErrCommunityNotFound)

	var got model.Community
	require.NoError(t, e.db.First(&got, c.ID).Error)
	assert.Equal(t, int64(1), got.MemberCount)
}

func TestNicknameStem(t *testing.T) {
	cases := map[string]string{
		"Go Lovers":            "GoLovers",
		"Go Lovers Club Seoul": "GoLoversCl",
		"  한국 개발자 커뮤니티 모임 ": "한국개발자커뮤니티모",
		"":                     "",
	}
	for in, want := range cases {
		assert.Equal(t, want, nicknameStem(in), in)
	}
}

func TestLeave_ReconcilesCounters(t *testing.T) {
	e := newEnv(t)
	c := e.community(t, "Go Lovers")
	cat := e.category(t, c)
	alice, bob := e.user(t, "alice"), e.user(t, "bob")
	mAlice, mBob := e.join(t, alice, c), e.join(t, bob, c)

	// bob 的帖子被 alice 点赞、收藏、评论，alice 也发了自己的帖子
	post, err := e.posts.CreatePost(e.ctx, bob.ID, cat.ID, PostInput{Title: "hi", Content: "there"})
	require.NoError(t, err)
	_, err = e.posts.LikePost(e.ctx, alice.ID, post.ID)
	require.NoError(t, err)
	_, err = e.posts.ScrapPost(e.ctx, alice.ID, post.ID)
	require.NoError(t, err)
	comment, err := e.comments.CreateComment(e.ctx, alice.ID, post.ID, CommentInput{Content: "nice"})
	require.NoError(t, err)
	_, err = e.comments.CreateReply(e.ctx, bob.ID, comment.ID, CommentInput{Content: "thanks"})
	require.NoError(t, err)
	_, err = e.posts.CreatePost(e.ctx, alice.ID, cat.ID, PostInput{Title: "mine", Content: "post"})
	require.NoError(t, err)
	_, err = e.communities.FavoriteCommunity(e.ctx, alice.ID, c.ID)
	require.NoError(t, err)
	_, err = e.follows.RequestFollow(e.ctx, alice.ID, mAlice.ID, mBob.ID)
	require.NoError(t, err)
	_, err = e.follows.RequestFollow(e.ctx, bob.ID, mBob.ID, mAlice.ID)
	require.NoError(t, err)

	require.NoError(t, e.members.Leave(e.ctx, alice.ID, mAlice.ID))

	var community model.Community
	require.NoError(t, e.db.First(&community, c.ID).Error)
	assert.Equal(t, int64(1), community.MemberCount)
	assert.Equal(t, int64(1), community.PostCount)
	assert.Zero(t, community.FavoriteCount)

	var gotPost model.Post
	require.NoError(t, e.db.First(&gotPost, post.ID).Error)
	assert.Zero(t, gotPost.LikeCount)
	assert.Zero(t, gotPost.ScrapCount)
	assert.Zero(t, gotPost.CommentCount)
	assert.Zero(t, gotPost.ReplyCount)

	gotBob := e.reloadMember(t, mBob.ID)
	assert.Zero(t, gotBob.ReplyCount)
	assert.Zero(t, gotBob.FollowerCount)
	assert.Zero(t, gotBob.FollowingCount)
	assert.Equal(t, int64(1), gotBob.PostCount)

	var n int64
	require.NoError(t, e.db.Model(&model.Member{}).Where("id = ?", mAlice.ID).Count(&n).Error)
	assert.Zero(t, n)
	e.assertCountsConsistent(t)
}

func TestLeave_OnlySelf(t *testing.T) {
	e := newEnv(t)
	c := e.community(t, "Go Lovers")
	alice, bob := e.user(t, "alice"), e.user(t, "bob")
	mAlice := e.join(t, alice, c)

	assert.ErrorIs(t, e.members.Leave(e.ctx, bob.ID, mAlice.ID), ErrNotSelf)
	assert.ErrorIs(t, e.members.Leave(e.ctx, alice.ID, 9999), ErrMemberNotFound)
}

func TestUpdateProfile(t *testing.T) {
	e := newEnv(t)
	c := e.community(t, "Go Lovers")
	alice, bob := e.user(t, "alice"), e.user(t, "bob")
	mAlice := e.join(t, alice, c)
	e.join(t, bob, c)

	taken := "bob"
	_, err := e.members.UpdateProfile(e.ctx, alice.ID, mAlice.ID, ProfileInput{Nickname: &taken})
	assert.ErrorIs(t, err, ErrNicknameTaken)

	nick, private := "  gopher ", true
	m, err := e.members.UpdateProfile(e.ctx, alice.ID, mAlice.ID, ProfileInput{Nickname: &nick, IsPrivate: &private})
	require.NoError(t, err)
	assert.Equal(t, "gopher", m.Nickname)
	assert.True(t, m.IsPrivate)

	_, err = e.members.UpdateProfile(e.ctx, bob.ID, mAlice.ID, ProfileInput{IsPrivate: &private})
	assert.ErrorIs(t, err, ErrNotSelf)
}

func TestGetProfile_PrivateNeedsAcceptedFollow(t *testing.T) {
	e := newEnv(t)
	c := e.community(t, "Go Lovers")
	alice, bob := e.user(t, "alice"), e.user(t, "bob")
	mAlice, mBob := e.join(t, alice, c), e.join(t, bob, c)
	e.setPrivate(t, mBob)

	_, err := e.members.GetProfile(e.ctx, alice.ID, mBob.ID)
	assert.ErrorIs(t, err, ErrProfileHidden)

	_, err = e.follows.RequestFollow(e.ctx, alice.ID, mAlice.ID, mBob.ID)
	require.NoError(t, err)
	_, err = e.members.GetProfile(e.ctx, alice.ID, mBob.ID)
	assert.ErrorIs(t, err, ErrProfileHidden)

	_, err = e.follows.AcceptRequest(e.ctx, bob.ID, mBob.ID, mAlice.ID)
	require.NoError(t, err)
	view, err := e.members.GetProfile(e.ctx, alice.ID, mBob.ID)
	require.NoError(t, err)
	assert.True(t, view.IsFollowing)
	assert.Equal(t, model.FollowAccepted, view.Relation)

	self, err := e.members.GetProfile(e.ctx, bob.ID, mBob.ID)
	require.NoError(t, err)
	assert.True(t, self.IsSelf)

	// 公开资料后待处理请求不会自动通过
	outsider := e.user(t, "carol")
	mCarol := e.join(t, outsider, c)
	_, err = e.follows.RequestFollow(e.ctx, outsider.ID, mCarol.ID, mBob.ID)
	require.NoError(t, err)
	public := false
	_, err = e.members.UpdateProfile(e.ctx, bob.ID, mBob.ID, ProfileInput{IsPrivate: &public})
	require.NoError(t, err)
	assert.Equal(t, model.FollowPending, e.edge(t, mCarol.ID, mBob.ID).Status)
}

func TestListMembers_ExcludesBlocked(t *testing.T) {
	e := newEnv(t)
	c := e.community(t, "Go Lovers")
	alice, bob, carol := e.user(t, "alice"), e.user(t, "bob"), e.user(t, "carol")
	mAlice, mBob := e.join(t, alice, c), e.join(t, bob, c)
	e.join(t, carol, c)

	_, err := e.follows.Block(e.ctx, bob.ID, mBob.ID, mAlice.ID)
	require.NoError(t, err)

	list, _, err := e.members.ListMembers(e.ctx, alice.ID, c.ID, 0, 0)
	require.NoError(t, err)
	names := make([]string, 0, len(list))
	for _, m := range list {
		names = append(names, m.Nickname)
	}
	assert.ElementsMatch(t, []string{"alice", "carol"}, names)

	_, _, err = e.members.ListMembers(e.ctx, e.user(t, "dave").ID, c.ID, 0, 0)
	assert.ErrorIs(t, err, ErrNotMember)
}

func TestGetFor_TouchesLastAccess(t *testing.T) {
	e := newEnv(t)
	c := e.community(t, "Go Lovers")
	alice := e.user(t, "alice")
	e.join(t, alice, c)

	m, err := e.members.GetFor(e.ctx, alice.ID, c.ID)
	require.NoError(t, err)
	require.NotNil(t, m.LastAccess)
	assert.NotNil(t, e.reloadMember(t, m.ID).LastAccess)

	_, err = e.members.GetFor(e.ctx, e.user(t, "bob").ID, c.ID)
	assert.ErrorIs(t, err, ErrMemberNotFound)
}
