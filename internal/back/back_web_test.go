package back

import (
	"context"
	"testing"

	"scrim/internal/elo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2"
)

func TestLeaderboardAndMatchDetails(t *testing.T) {
	back := createFixturedTestBack(t)
	ctx := context.Background()
	match := startDuel(t, back)

	leaderboard, err := back.GetLeaderboardForShortcode(ctx, "1v1")
	require.NoError(t, err)
	assert.Empty(t, leaderboard)

	_, err = back.ReportActiveMatch(ctx, testDiscordID(1), elo.OutcomeWin)
	require.NoError(t, err)
	_, err = back.ApproveMatch(ctx, match.ID.String())
	require.NoError(t, err)

	leaderboard, err = back.GetLeaderboardForShortcode(ctx, "1v1")
	require.NoError(t, err)
	require.Len(t, leaderboard, 2)
	assert.Equal(t, LeaderboardEntry{PlayerName: testPlayerNames[1], Rating: 1216, Wins: 1}, leaderboard[0])
	assert.Equal(t, LeaderboardEntry{PlayerName: testPlayerNames[0], Rating: 1184, Losses: 1}, leaderboard[1])

	details, err := back.GetMatch(ctx, match.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "1v1", details.Mode.ShortCode)
	require.Len(t, details.Team1, 1)
	assert.Equal(t, testPlayerNames[0], details.Team1[0].Name)
	assert.Len(t, details.Changes, 2)

	svg, err := back.GetRatingsDistributionGraph(ctx, "1v1")
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
}

func TestRatingsHistogram(t *testing.T) {
	bars, maxValue := ratingsHistogram(nil, chart.Style{})
	assert.Empty(t, bars)
	assert.Equal(t, 0.0, maxValue)

	bars, maxValue = ratingsHistogram([]PlayerRating{
		{Rating: 1184}, {Rating: 1216}, {Rating: 1390},
	}, chart.Style{})
	require.Len(t, bars, 3)
	assert.Equal(t, "1200", bars[0].Label)
	assert.InDelta(t, 2.0/3, bars[0].Value, 1e-9)
	assert.Equal(t, 0.0, bars[1].Value)
	assert.Equal(t, "1400", bars[2].Label)
	assert.InDelta(t, 2.0/3, maxValue, 1e-9)
}

func TestCreateMode(t *testing.T) {
	back := createFixturedTestBack(t)
	ctx := context.Background()

	_, err := back.CreateMode(ctx, "Odd", "odd", 2.5)
	assert.Error(t, err)

	_, err = back.CreateMode(ctx, "Dupe", "1v1", 1)
	assert.Error(t, err)

	mode, err := back.CreateMode(ctx, "Trios", "3v3", 3)
	require.NoError(t, err)
	assert.Equal(t, 6, mode.PlayersPerMatch())

	require.NoError(t, back.SetModeAnnounceChannel(ctx, "3v3", "1337"))
	mode, err = back.GetModeByShortCode(ctx, "3v3")
	require.NoError(t, err)
	assert.Equal(t, "1337", mode.AnnounceDiscordChannelID.String)
}
