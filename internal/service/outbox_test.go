package service

import (
	"context"
	"errors"
	"testing"

	"Community_Graph/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxRelayer_DrainOnce(t *testing.T) {
	f := newFollowFixture(t)
	_, err := f.follows.RequestFollow(f.ctx, f.alice.ID, f.mAlice.ID, f.mBob.ID)
	require.NoError(t, err)
	_, err = f.follows.Block(f.ctx, f.bob.ID, f.mBob.ID, f.mAlice.ID)
	require.NoError(t, err)

	var got []string
	relayer := NewOutboxRelayer(f.db, 10, func(_ context.Context, ob *model.SocialOutbox) error {
		got = append(got, ob.EventType)
		return nil
	})
	assert.Equal(t, 2, relayer.DrainOnce(f.ctx))
	assert.Equal(t, []string{"follow", "block"}, got)

	// 已发送的不会重复投递
	assert.Zero(t, relayer.DrainOnce(f.ctx))
	assert.Len(t, got, 2)
}

func TestOutboxRelayer_RetriesThenGivesUp(t *testing.T) {
	f := newFollowFixture(t)
	_, err := f.follows.RequestFollow(f.ctx, f.alice.ID, f.mAlice.ID, f.mBob.ID)
	require.NoError(t, err)

	calls := 0
	relayer := NewOutboxRelayer(f.db, 0, func(context.Context, *model.SocialOutbox) error {
		calls++
		return errors.New("broker down")
	})
	for i := 0; i < maxOutboxRetry+2; i++ {
		assert.Zero(t, relayer.DrainOnce(f.ctx))
	}
	assert.Equal(t, maxOutboxRetry, calls)

	var ob model.SocialOutbox
	require.NoError(t, f.db.First(&ob).Error)
	assert.Equal(t, model.OutboxFailed, ob.Status)
	assert.Equal(t, maxOutboxRetry, ob.Retry)
}

func TestFollowCountReconciler_FixesDrift(t *testing.T) {
	f := newFollowFixture(t)
	_, err := f.follows.RequestFollow(f.ctx, f.alice.ID, f.mAlice.ID, f.mBob.ID)
	require.NoError(t, err)

	reconciler := NewFollowCountReconciler(f.db, 1)
	assert.Zero(t, reconciler.ReconcileOnce(f.ctx))

	require.NoError(t, f.db.Model(&model.Member{}).Where("id = ?", f.mBob.ID).UpdateColumn("follower_count", 7).Error)
	require.NoError(t, f.db.Model(&model.Member{}).Where("id = ?", f.mAlice.ID).UpdateColumn("following_count", 0).Error)

	assert.Equal(t, 2, reconciler.ReconcileOnce(f.ctx))
	f.assertCountsConsistent(t)
}
