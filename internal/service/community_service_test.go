package service

import (
	"testing"

	"Community_Graph/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCommunity_StaffOnly(t *testing.T) {
	e := newEnv(t)
	alice, root := e.user(t, "alice"), e.staff(t, "root")

	_, err := e.communities.CreateCommunity(e.ctx, alice.ID, CommunityInput{Name: "Go Lovers"})
	assert.ErrorIs(t, err, ErrNotManager)

	c, err := e.communities.CreateCommunity(e.ctx, root.ID, CommunityInput{Name: " Go Lovers "})
	require.NoError(t, err)
	assert.Equal(t, "Go Lovers", c.Name)
	assert.True(t, c.IsActive)

	_, err = e.communities.CreateCommunity(e.ctx, root.ID, CommunityInput{Name: "Go Lovers"})
	assert.ErrorIs(t, err, ErrConflict)

	got, err := e.communities.GetCommunity(e.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	list, err := e.communities.ListCommunities(e.ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGetCommunity_InactiveHidden(t *testing.T) {
	e := newEnv(t)
	c := e.community(t, "Closed")
	require.NoError(t, e.db.Model(&model.Community{}).Where("id = ?", c.ID).Update("is_active", false).Error)

	_, err := e.communities.GetCommunity(e.ctx, c.ID)
	assert.ErrorIs(t, err, ErrCommunityNotFound)
	_, err = e.members.Join(e.ctx, e.user(t, "alice").ID, c.ID, JoinInput{})
	assert.ErrorIs(t, err, ErrCommunityNotFound)
}

func TestFavoriteCommunity(t *testing.T) {
	e := newEnv(t)
	c := e.community(t, "Go Lovers")
	alice := e.user(t, "alice")

	_, err := e.communities.FavoriteCommunity(e.ctx, alice.ID, c.ID)
	assert.ErrorIs(t, err, ErrNotMember)

	e.join(t, alice, c)
	changed, err := e.communities.FavoriteCommunity(e.ctx, alice.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = e.communities.FavoriteCommunity(e.ctx, alice.ID, c.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	fav, err := e.communities.IsFavorite(e.ctx, alice.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, fav)

	list, err := e.communities.ListFavoriteCommunities(e.ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].FavoriteCount)

	changed, err = e.communities.UnfavoriteCommunity(e.ctx, alice.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	var got model.Community
	require.NoError(t, e.db.First(&got, c.ID).Error)
	assert.Zero(t, got.FavoriteCount)
}

func TestCreateCategory_Rules(t *testing.T) {
	e := newEnv(t)
	c, other := e.community(t, "Go Lovers"), e.community(t, "Rustaceans")
	root, alice := e.staff(t, "root"), e.user(t, "alice")
	e.join(t, root, c)
	e.join(t, root, other)
	e.join(t, alice, c)

	_, err := e.categories.CreateCategory(e.ctx, alice.ID, c.ID, CategoryInput{Name: "news"})
	assert.ErrorIs(t, err, ErrNotManager)

	top, err := e.categories.CreateCategory(e.ctx, root.ID, c.ID, CategoryInput{Name: "news"})
	require.NoError(t, err)
	child, err := e.categories.CreateCategory(e.ctx, root.ID, c.ID, CategoryInput{Name: "releases", ParentID: &top.ID})
	require.NoError(t, err)

	_, err = e.categories.CreateCategory(e.ctx, root.ID, c.ID, CategoryInput{Name: "news"})
	assert.ErrorIs(t, err, ErrCategoryExists)

	// 不允许三级分类
	_, err = e.categories.CreateCategory(e.ctx, root.ID, c.ID, CategoryInput{Name: "patch", ParentID: &child.ID})
	assert.ErrorIs(t, err, ErrValidation)

	// 父分类必须在同一社区
	_, err = e.categories.CreateCategory(e.ctx, root.ID, other.ID, CategoryInput{Name: "news", ParentID: &top.ID})
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "parent_id")

	list, err := e.categories.ListCategories(e.ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Nil(t, list[0].ParentID)

	changed, err := e.categories.FavoriteCategory(e.ctx, alice.ID, top.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	var got model.PostCategory
	require.NoError(t, e.db.First(&got, top.ID).Error)
	assert.Equal(t, int64(1), got.FavoriteCount)

	changed, err = e.categories.UnfavoriteCategory(e.ctx, alice.ID, top.ID)
	require.NoError(t, err)
	assert.True(t, changed)
}
