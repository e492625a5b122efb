package back

import (
	"context"
	"sync"
	"testing"

	"scrim/internal/matchmaking"
	"scrim/internal/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinQueueFormsMatch(t *testing.T) {
	back := createFixturedTestBack(t)
	ctx := context.Background()

	_, err := back.JoinQueue(ctx, testDiscordID(0), "1v1")
	require.NoError(t, err)
	assert.Empty(t, drainNotifications(back))

	status, err := back.GetPlayerStatus(ctx, testDiscordID(0))
	require.NoError(t, err)
	assert.Nil(t, status.ActiveMatch)
	require.Len(t, status.Queues, 1)
	assert.Equal(t, "1v1", status.Queues[0].ShortCode)

	_, err = back.JoinQueue(ctx, testDiscordID(1), "1v1")
	require.NoError(t, err)

	// No announce channel is set so only the players are notified.
	notifs := drainNotifications(back)
	require.Len(t, notifs, 2)
	for _, v := range notifs {
		assert.Equal(t, NotificationTypeMatchFormed, v.Type)
		assert.Equal(t, NotificationRecipientTypeDiscordUser, v.RecipientType)
	}

	queue, err := back.GetQueue(ctx, "1v1")
	require.NoError(t, err)
	assert.Empty(t, queue.Entries)

	for _, k := range []int{0, 1} {
		status, err := back.GetPlayerStatus(ctx, testDiscordID(k))
		require.NoError(t, err)
		require.NotNil(t, status.ActiveMatch)
		assert.Equal(t, MatchStatusOngoing, status.ActiveMatch.Status)
		assert.Empty(t, status.Queues)
	}
}

func TestJoinQueueFIFOTeams(t *testing.T) {
	back := createFixturedTestBack(t)
	ctx := context.Background()

	for k := 0; k < 5; k++ {
		_, err := back.JoinQueue(ctx, testDiscordID(k), "2v2")
		require.NoError(t, err)
	}

	status, err := back.GetPlayerStatus(ctx, testDiscordID(0))
	require.NoError(t, err)
	require.NotNil(t, status.ActiveMatch)
	match := status.ActiveMatch

	ids := func(ks ...int) []util.UUIDAsBlob {
		ret := make([]util.UUIDAsBlob, 0, len(ks))
		for _, k := range ks {
			ret = append(ret, mustGetPlayer(t, back, k).ID)
		}
		return ret
	}

	assert.Equal(t, ids(0, 1), match.TeamPlayerIDs(1))
	assert.Equal(t, ids(2, 3), match.TeamPlayerIDs(2))

	// The fifth player keeps waiting.
	queue, err := back.GetQueue(ctx, "2v2")
	require.NoError(t, err)
	require.Len(t, queue.Players, 1)
	assert.Equal(t, testPlayerNames[4], queue.Players[0].Name)
}

func TestJoinQueueErrors(t *testing.T) {
	back := createFixturedTestBack(t)
	ctx := context.Background()

	_, err := back.JoinQueue(ctx, "42", "1v1")
	assert.True(t, util.IsPublic(err), "unregistered: %v", err)

	_, err = back.JoinQueue(ctx, testDiscordID(0), "nope")
	assert.True(t, util.IsPublic(err), "unknown mode: %v", err)

	_, err = back.JoinQueue(ctx, testDiscordID(0), "2v2")
	require.NoError(t, err)
	_, err = back.JoinQueue(ctx, testDiscordID(0), "2v2")
	assert.True(t, util.IsPublic(err), "already queued: %v", err)

	_, err = back.JoinQueue(ctx, testDiscordID(1), "1v1")
	require.NoError(t, err)
	_, err = back.JoinQueue(ctx, testDiscordID(2), "1v1")
	require.NoError(t, err)
	_, err = back.JoinQueue(ctx, testDiscordID(1), "2v2")
	assert.True(t, util.IsPublic(err), "in a match: %v", err)
}

func TestMatchedPlayersLeaveAllQueues(t *testing.T) {
	back := createFixturedTestBack(t)
	ctx := context.Background()

	_, err := back.JoinQueue(ctx, testDiscordID(0), "2v2")
	require.NoError(t, err)
	_, err = back.JoinQueue(ctx, testDiscordID(0), "1v1")
	require.NoError(t, err)
	_, err = back.JoinQueue(ctx, testDiscordID(1), "1v1")
	require.NoError(t, err)

	queue, err := back.GetQueue(ctx, "2v2")
	require.NoError(t, err)
	assert.Empty(t, queue.Entries)
}

func TestLeaveQueue(t *testing.T) {
	back := createFixturedTestBack(t)
	ctx := context.Background()

	err := back.LeaveQueue(ctx, testDiscordID(0), "1v1")
	assert.True(t, util.IsPublic(err))

	_, err = back.JoinQueue(ctx, testDiscordID(0), "1v1")
	require.NoError(t, err)
	_, err = back.JoinQueue(ctx, testDiscordID(0), "2v2")
	require.NoError(t, err)

	require.NoError(t, back.LeaveQueue(ctx, testDiscordID(0), "1v1"))
	status, err := back.GetPlayerStatus(ctx, testDiscordID(0))
	require.NoError(t, err)
	require.Len(t, status.Queues, 1)
	assert.Equal(t, "2v2", status.Queues[0].ShortCode)

	require.NoError(t, back.LeaveQueue(ctx, testDiscordID(0), ""))
	status, err = back.GetPlayerStatus(ctx, testDiscordID(0))
	require.NoError(t, err)
	assert.Empty(t, status.Queues)

	err = back.LeaveQueue(ctx, testDiscordID(0), "")
	assert.True(t, util.IsPublic(err))
}

func TestStoreConcurrentFormation(t *testing.T) {
	back := createFixturedTestBack(t)
	ctx := context.Background()

	mode, err := back.GetModeByShortCode(ctx, "1v1")
	require.NoError(t, err)

	for k := range testPlayerNames {
		player := mustGetPlayer(t, back, k)
		require.NoError(t, back.Enqueue(ctx, player.ID.UUID(), mode.ID.UUID()))
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		matches []matchmaking.Match
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			formed, err := matchmaking.FormMatches(ctx, back, mode.ID.UUID(), mode.TeamSize)
			assert.NoError(t, err)

			mu.Lock()
			matches = append(matches, formed...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, matches, len(testPlayerNames)/2)
	seen := map[uuid.UUID]struct{}{}
	for _, match := range matches {
		for _, v := range match.Entries() {
			_, dup := seen[v.PlayerID]
			assert.False(t, dup, "player %s picked twice", v.PlayerID)
			seen[v.PlayerID] = struct{}{}
		}
	}

	queue, err := back.ListQueue(ctx, mode.ID.UUID())
	require.NoError(t, err)
	assert.Empty(t, queue)
}

func TestStoreDequeue(t *testing.T) {
	back := createFixturedTestBack(t)
	ctx := context.Background()

	mode, err := back.GetModeByShortCode(ctx, "2v2")
	require.NoError(t, err)
	player := mustGetPlayer(t, back, 0)

	require.NoError(t, back.Enqueue(ctx, player.ID.UUID(), mode.ID.UUID()))
	queue, err := back.ListQueue(ctx, mode.ID.UUID())
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, player.ID.UUID(), queue[0].PlayerID)

	require.NoError(t, back.Dequeue(ctx, player.ID.UUID(), mode.ID.UUID()))
	assert.Error(t, back.Dequeue(ctx, player.ID.UUID(), mode.ID.UUID()))

	match, err := back.CreateMatch(ctx, mode.ID.UUID(), mode.TeamSize)
	require.NoError(t, err)
	assert.Nil(t, match)
}
