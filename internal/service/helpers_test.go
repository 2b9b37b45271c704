package service

import (
	"context"
	"fmt"
	"testing"

	"Community_Graph/internal/model"
	"Community_Graph/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type env struct {
	ctx         context.Context
	db          *gorm.DB
	visibility  *VisibilityPolicy
	users       *UserService
	communities *CommunityService
	members     *MemberService
	follows     *FollowService
	categories  *CategoryService
	posts       *PostService
	comments    *CommentService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.OpenTestDB(t)
	vis := NewVisibilityPolicy(db, nil)
	return &env{
		ctx:         context.Background(),
		db:          db,
		visibility:  vis,
		users:       NewUserService(db, nil),
		communities: NewCommunityService(db),
		members:     NewMemberService(db, vis),
		follows:     NewFollowService(db, vis),
		categories:  NewCategoryService(db),
		posts:       NewPostService(db, vis),
		comments:    NewCommentService(db, vis),
	}
}

func (e *env) user(t *testing.T, name string) *model.User {
	t.Helper()
	u := &model.User{Username: name, Email: name + "@example.com", Password: "x"}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *env) staff(t *testing.T, name string) *model.User {
	t.Helper()
	u := &model.User{Username: name, Email: name + "@example.com", Password: "x", IsStaff: true}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *env) community(t *testing.T, name string) *model.Community {
	t.Helper()
	c := &model.Community{Name: name}
	require.NoError(t, e.db.Create(c).Error)
	return c
}

func (e *env) join(t *testing.T, u *model.User, c *model.Community) *model.Member {
	t.Helper()
	m, err := e.members.Join(e.ctx, u.ID, c.ID, JoinInput{Nickname: u.Username})
	require.NoError(t, err)
	return m
}

func (e *env) category(t *testing.T, c *model.Community) *model.PostCategory {
	t.Helper()
	cat := &model.PostCategory{CommunityID: c.ID, Name: fmt.Sprintf("cat-%d", c.ID)}
	require.NoError(t, e.db.Create(cat).Error)
	return cat
}

func (e *env) setPrivate(t *testing.T, m *model.Member) {
	t.Helper()
	require.NoError(t, e.db.Model(&model.Member{}).Where("id = ?", m.ID).Update("is_private", true).Error)
	m.IsPrivate = true
}

func (e *env) reloadMember(t *testing.T, id uint64) *model.Member {
	t.Helper()
	var m model.Member
	require.NoError(t, e.db.First(&m, id).Error)
	return &m
}

func (e *env) edge(t *testing.T, from, to uint64) *model.Follow {
	t.Helper()
	var rows []model.Follow
	require.NoError(t, e.db.Where("follower_id = ? AND following_id = ?", from, to).Find(&rows).Error)
	if len(rows) == 0 {
		return nil
	}
	return &rows[0]
}

// assertCountsConsistent 成员的关注计数必须等于 ACCEPTED 边的数量
func (e *env) assertCountsConsistent(t *testing.T) {
	t.Helper()
	var members []model.Member
	require.NoError(t, e.db.Find(&members).Error)
	for _, m := range members {
		var following, followers int64
		require.NoError(t, e.db.Model(&model.Follow{}).Where("follower_id = ? AND status = ?", m.ID, model.FollowAccepted).Count(&following).Error)
		require.NoError(t, e.db.Model(&model.Follow{}).Where("following_id = ? AND status = ?", m.ID, model.FollowAccepted).Count(&followers).Error)
		require.Equal(t, following, m.FollowingCount, "following_count of member %d", m.ID)
		require.Equal(t, followers, m.FollowerCount, "follower_count of member %d", m.ID)
	}
}
