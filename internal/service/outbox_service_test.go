package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/internal/model"
	"yatube/internal/testutil"
)

func TestRelayOnceMarksDeliveries(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "leo")
	reader := testutil.CreateUser(t, db, "mia")
	follows := NewFollowService(db)
	_, _, err := follows.Follow(ctx, actorOf(reader), "leo")
	require.NoError(t, err)
	_, _, err = follows.Unfollow(ctx, actorOf(reader), "leo")
	require.NoError(t, err)

	var seen []string
	sender := func(_ context.Context, ob *model.Outbox) error {
		seen = append(seen, ob.EventType)
		if ob.EventType == model.EventUnfollow {
			return errors.New("broker down")
		}
		assert.Equal(t, author.ID, ob.AggregateID)
		return nil
	}
	r := NewOutboxRelayer(db, sender, 10, time.Hour)

	sent, failed, err := r.RelayOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, failed)
	assert.Equal(t, []string{model.EventFollow, model.EventUnfollow}, seen)

	var rows []model.Outbox
	require.NoError(t, db.Order("id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, model.OutboxSent, rows[0].Status)
	assert.Equal(t, model.OutboxFailed, rows[1].Status)
	assert.EqualValues(t, 1, rows[1].Retry)

	sent, failed, err = r.RelayOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Equal(t, 1, failed)
}

func TestPurgeDropsOldSentEvents(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	testutil.CreateUser(t, db, "leo")
	reader := testutil.CreateUser(t, db, "mia")
	_, _, err := NewFollowService(db).Follow(ctx, actorOf(reader), "leo")
	require.NoError(t, err)

	r := NewOutboxRelayer(db, LogSender, 10, time.Minute)
	_, _, err = r.RelayOnce(ctx)
	require.NoError(t, err)

	n, err := r.Purge(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	r.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	n, err = r.Purge(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Zero(t, testutil.CountRows(t, db, &model.Outbox{}))
}
