package mysql_test

import (
	"fmt"
	"testing"

	"Community_Graph/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// world 一个社区、一个分类和若干成员
type world struct {
	db        *gorm.DB
	community *model.Community
	category  *model.PostCategory
	members   []*model.Member
}

func newWorld(t *testing.T, db *gorm.DB, members int) *world {
	t.Helper()
	w := &world{db: db}
	w.community = &model.Community{Name: "Go Lovers"}
	require.NoError(t, db.Create(w.community).Error)
	w.category = &model.PostCategory{CommunityID: w.community.ID, Name: "general"}
	require.NoError(t, db.Create(w.category).Error)
	for i := 0; i < members; i++ {
		user := &model.User{Username: fmt.Sprintf("user%d", i), Email: fmt.Sprintf("user%d@example.com", i), Password: "x"}
		require.NoError(t, db.Create(user).Error)
		m := &model.Member{UserID: user.ID, CommunityID: w.community.ID, Nickname: fmt.Sprintf("nick%d", i)}
		require.NoError(t, db.Create(m).Error)
		w.members = append(w.members, m)
	}
	return w
}

func (w *world) post(t *testing.T, author *model.Member) *model.Post {
	t.Helper()
	p := &model.Post{CategoryID: w.category.ID, CommunityID: w.community.ID, AuthorID: author.ID, Title: "hello", Content: "world"}
	require.NoError(t, w.db.Create(p).Error)
	return p
}

func (w *world) comment(t *testing.T, post *model.Post, author *model.Member) *model.PostComment {
	t.Helper()
	c := &model.PostComment{PostID: post.ID, AuthorID: author.ID, Content: "nice"}
	require.NoError(t, w.db.Create(c).Error)
	return c
}

func (w *world) reply(t *testing.T, comment *model.PostComment, author *model.Member) *model.PostReply {
	t.Helper()
	r := &model.PostReply{CommentID: comment.ID, AuthorID: author.ID, Content: "thanks"}
	require.NoError(t, w.db.Create(r).Error)
	return r
}

func reload[T any](t *testing.T, db *gorm.DB, id uint64) *T {
	t.Helper()
	var out T
	require.NoError(t, db.First(&out, id).Error)
	return &out
}
