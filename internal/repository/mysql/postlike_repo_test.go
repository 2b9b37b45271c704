package mysql_test

import (
	"testing"

	"Community_Graph/internal/model"
	"Community_Graph/internal/repository/mysql"
	"Community_Graph/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairRepository_AddRemoveIdempotent(t *testing.T) {
	db := testutil.OpenTestDB(t)
	w := newWorld(t, db, 2)
	p := w.post(t, w.members[0])
	repo := &mysql.PairRepository{DB: db}
	like := func() *model.PostLike { return &model.PostLike{PostID: p.ID, MemberID: w.members[1].ID} }

	added, err := repo.Add(like())
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.Add(like())
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, int64(1), reload[model.Post](t, db, p.ID).LikeCount)

	exists, err := repo.Exists(like())
	require.NoError(t, err)
	assert.True(t, exists)

	removed, err := repo.Remove(like())
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Remove(like())
	require.NoError(t, err)
	assert.False(t, removed)

	assert.Equal(t, int64(0), reload[model.Post](t, db, p.ID).LikeCount)
	assert.Equal(t, int64(0), reload[model.Member](t, db, w.members[1].ID).LikeCount)
}

func TestPairRepository_MemberPairs(t *testing.T) {
	db := testutil.OpenTestDB(t)
	w := newWorld(t, db, 2)
	p1, p2, p3 := w.post(t, w.members[0]), w.post(t, w.members[0]), w.post(t, w.members[0])
	repo := &mysql.PairRepository{DB: db}

	_, err := repo.Add(&model.PostScrap{PostID: p1.ID, MemberID: w.members[1].ID})
	require.NoError(t, err)
	_, err = repo.Add(&model.PostScrap{PostID: p3.ID, MemberID: w.members[1].ID})
	require.NoError(t, err)

	got, err := repo.MemberPairs(&model.PostScrap{}, "post_id", w.members[1].ID, []uint64{p1.ID, p2.ID, p3.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint64]bool{p1.ID: true, p3.ID: true}, got)

	empty, err := repo.MemberPairs(&model.PostScrap{}, "post_id", w.members[1].ID, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
