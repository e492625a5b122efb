package back

import (
	"context"
	"testing"

	"scrim/internal/elo"
	"scrim/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startDuel has the two first fixture players play a 1v1.
func startDuel(t *testing.T, back *Back) Match {
	ctx := context.Background()
	_, err := back.JoinQueue(ctx, testDiscordID(0), "1v1")
	require.NoError(t, err)
	_, err = back.JoinQueue(ctx, testDiscordID(1), "1v1")
	require.NoError(t, err)
	drainNotifications(back)

	status, err := back.GetPlayerStatus(ctx, testDiscordID(0))
	require.NoError(t, err)
	require.NotNil(t, status.ActiveMatch)

	return *status.ActiveMatch
}

func TestReportAndApprove(t *testing.T) {
	back := createFixturedTestBack(t)
	ctx := context.Background()
	match := startDuel(t, back)

	_, err := back.ApproveMatch(ctx, match.ID.String())
	assert.True(t, util.IsPublic(err), "approving an unreported match: %v", err)

	reported, err := back.ReportActiveMatch(ctx, testDiscordID(0), elo.OutcomeWin)
	require.NoError(t, err)
	assert.Equal(t, MatchStatusReported, reported.Status)
	assert.Equal(t, elo.OutcomeWin, reported.Outcome)
	assert.Len(t, drainNotifications(back), 0) // no announce channel

	approved, err := back.ApproveMatch(ctx, match.ID.Short())
	require.NoError(t, err)
	assert.Equal(t, MatchStatusApproved, approved.Status)
	assert.True(t, approved.DecidedAt.Valid)
	assert.Len(t, drainNotifications(back), 2)

	winner := mustGetRating(t, back, 0, "1v1")
	loser := mustGetRating(t, back, 1, "1v1")
	assert.Equal(t, 1216.0, winner.Rating)
	assert.Equal(t, 1, winner.Wins)
	assert.Equal(t, 1184.0, loser.Rating)
	assert.Equal(t, 1, loser.Losses)

	_, err = back.ApproveMatch(ctx, match.ID.String())
	assert.True(t, util.IsPublic(err), "approving twice: %v", err)

	// Replaying the rating application changes nothing.
	require.NoError(t, back.RecordRatingChange(ctx, match.ID.UUID(), winner.PlayerID.UUID(), match.ModeID.UUID(), 9000))
	assert.Equal(t, 1216.0, mustGetRating(t, back, 0, "1v1").Rating)

	require.NoError(t, back.transaction(ctx, func(tx *sqlx.Tx) error {
		changes, err := getRatingChangesForMatch(tx, match.ID)
		if err != nil {
			return err
		}

		assert.Len(t, changes, 2)
		for _, v := range changes {
			assert.Equal(t, 1200.0, v.RatingBefore)
			assert.Equal(t, v.RatingAfter-v.RatingBefore, v.Delta)
		}

		return nil
	}))

	// Players are free to queue again.
	_, err = back.JoinQueue(ctx, testDiscordID(0), "1v1")
	assert.NoError(t, err)
}

func TestReportFromSecondTeam(t *testing.T) {
	back := createFixturedTestBack(t)
	ctx := context.Background()
	startDuel(t, back)

	reported, err := back.ReportActiveMatch(ctx, testDiscordID(1), elo.OutcomeWin)
	require.NoError(t, err)
	assert.Equal(t, elo.OutcomeLoss, reported.Outcome, "stored from team 1 point of view")
	assert.Equal(t, mustGetPlayer(t, back, 1).ID, reported.ReportedBy.UUID)

	// Last report wins.
	reported, err = back.ReportActiveMatch(ctx, testDiscordID(0), elo.OutcomeDraw)
	require.NoError(t, err)
	assert.Equal(t, elo.OutcomeDraw, reported.Outcome)

	_, err = back.ApproveMatch(ctx, reported.ID.String())
	require.NoError(t, err)

	for _, k := range []int{0, 1} {
		rating := mustGetRating(t, back, k, "1v1")
		assert.Equal(t, 1200.0, rating.Rating)
		assert.Equal(t, 1, rating.Draws)
	}
}

func TestReportErrors(t *testing.T) {
	back := createFixturedTestBack(t)
	ctx := context.Background()

	_, err := back.ReportActiveMatch(ctx, testDiscordID(0), elo.OutcomeWin)
	assert.True(t, util.IsPublic(err), "no match: %v", err)

	startDuel(t, back)
	_, err = back.ReportActiveMatch(ctx, testDiscordID(0), elo.Outcome(3))
	assert.True(t, util.IsPublic(err), "bad outcome: %v", err)
}

func TestRejectMatch(t *testing.T) {
	back := createFixturedTestBack(t)
	ctx := context.Background()
	match := startDuel(t, back)

	_, err := back.ReportActiveMatch(ctx, testDiscordID(0), elo.OutcomeWin)
	require.NoError(t, err)

	rejected, err := back.RejectMatch(ctx, match.ID.String())
	require.NoError(t, err)
	assert.Equal(t, MatchStatusRejected, rejected.Status)
	assert.Len(t, drainNotifications(back), 2)

	for _, k := range []int{0, 1} {
		rating := mustGetRating(t, back, k, "1v1")
		assert.Equal(t, elo.InitialRating, rating.Rating)
		assert.Equal(t, 0, rating.Played())
	}

	_, err = back.RejectMatch(ctx, match.ID.String())
	assert.True(t, util.IsPublic(err))
	_, err = back.ApproveMatch(ctx, match.ID.String())
	assert.True(t, util.IsPublic(err))

	_, err = back.JoinQueue(ctx, testDiscordID(1), "1v1")
	assert.NoError(t, err)
}

func TestApplyMatchRatingsTeams(t *testing.T) {
	back := createFixturedTestBack(t)
	ctx := context.Background()

	for k := 0; k < 4; k++ {
		_, err := back.JoinQueue(ctx, testDiscordID(k), "2v2")
		require.NoError(t, err)
	}

	_, err := back.ReportActiveMatch(ctx, testDiscordID(3), elo.OutcomeLoss)
	require.NoError(t, err)

	status, err := back.GetPlayerStatus(ctx, testDiscordID(0))
	require.NoError(t, err)
	_, err = back.ApproveMatch(ctx, status.ActiveMatch.ID.String())
	require.NoError(t, err)

	for _, k := range []int{0, 1} {
		assert.Equal(t, 1216.0, mustGetRating(t, back, k, "2v2").Rating)
	}
	for _, k := range []int{2, 3} {
		assert.Equal(t, 1184.0, mustGetRating(t, back, k, "2v2").Rating)
	}

	// Other modes are untouched.
	assert.Equal(t, elo.InitialRating, mustGetRating(t, back, 0, "1v1").Rating)
}
