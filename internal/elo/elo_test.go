package elo_test

import (
	"math"
	"testing"

	"scrim/internal/elo"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeUpdateVectors(t *testing.T) {
	cases := []struct {
		player, opponent float64
		outcome          elo.Outcome
		k                float64
		expected         elo.Update
	}{
		{1200, 1200, elo.OutcomeWin, 32, elo.Update{NewRating: 1216, Delta: 16}},
		{1200, 1200, elo.OutcomeLoss, 32, elo.Update{NewRating: 1184, Delta: -16}},
		{1200, 1200, elo.OutcomeDraw, 32, elo.Update{NewRating: 1200, Delta: 0}},
		{1200, 1400, elo.OutcomeWin, 32, elo.Update{NewRating: 1224, Delta: 24}},
		{1400, 1200, elo.OutcomeLoss, 32, elo.Update{NewRating: 1376, Delta: -24}},
		{1200, 1000, elo.OutcomeWin, 32, elo.Update{NewRating: 1208, Delta: 8}},

		// Exact halves are rounded away from zero.
		{1200, 1200, elo.OutcomeWin, 33, elo.Update{NewRating: 1217, Delta: 17}},
		{1200, 1200, elo.OutcomeLoss, 33, elo.Update{NewRating: 1184, Delta: -16}},
		{-100, -100, elo.OutcomeLoss, 33, elo.Update{NewRating: -117, Delta: -17}},

		// Not clamped.
		{0, 0, elo.OutcomeLoss, 32, elo.Update{NewRating: -16, Delta: -16}},
	}

	for k, v := range cases {
		actual, err := elo.ComputeUpdate(v.player, v.opponent, v.outcome, v.k)
		require.NoError(t, err, "case #%d", k)
		assert.Equal(t, v.expected, actual, "case #%d", k)
	}
}

func TestComputeUpdateDirection(t *testing.T) {
	for _, player := range []float64{-300, 0, 800, 1200, 2400} {
		for _, opponent := range []float64{-300, 0, 800, 1200, 2400} {
			win, err := elo.ComputeUpdate(player, opponent, elo.OutcomeWin, elo.DefaultKFactor)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, win.Delta, 0.0)

			loss, err := elo.ComputeUpdate(player, opponent, elo.OutcomeLoss, elo.DefaultKFactor)
			require.NoError(t, err)
			assert.LessOrEqual(t, loss.Delta, 0.0)
		}

		draw, err := elo.ComputeUpdate(player, player, elo.OutcomeDraw, elo.DefaultKFactor)
		require.NoError(t, err)
		assert.Equal(t, 0.0, draw.Delta)
	}
}

func TestComputeUpdateMonotonic(t *testing.T) {
	previous := math.Inf(-1)
	for opponent := 800.0; opponent <= 1600; opponent += 100 {
		update, err := elo.ComputeUpdate(1200, opponent, elo.OutcomeWin, elo.DefaultKFactor)
		require.NoError(t, err)
		assert.Greater(t, update.Delta, previous, "opponent %v", opponent)
		previous = update.Delta
	}
}

func TestComputeUpdateDeterministic(t *testing.T) {
	a, err := elo.ComputeUpdate(1337, 1421, elo.OutcomeDraw, 24)
	require.NoError(t, err)
	b, err := elo.ComputeUpdate(1337, 1421, elo.OutcomeDraw, 24)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestComputeUpdateInvalidArgument(t *testing.T) {
	cases := []struct {
		player, opponent float64
		outcome          elo.Outcome
		k                float64
	}{
		{1200, 1200, elo.Outcome(2), 32},
		{1200, 1200, elo.Outcome(-7), 32},
		{1200, 1200, elo.OutcomeWin, 0},
		{1200, 1200, elo.OutcomeWin, -32},
		{1200, 1200, elo.OutcomeWin, math.NaN()},
		{1200, 1200, elo.OutcomeWin, math.Inf(1)},
		{math.NaN(), 1200, elo.OutcomeWin, 32},
		{1200, math.Inf(-1), elo.OutcomeWin, 32},
	}

	for k, v := range cases {
		_, err := elo.ComputeUpdate(v.player, v.opponent, v.outcome, v.k)
		assert.True(t, errors.Is(err, elo.ErrInvalidArgument), "case #%d: got %v", k, err)
	}
}

func TestComputeTeamUpdates(t *testing.T) {
	// Opposing average is 1200, so both winners gain as if they had beaten a
	// single 1200 player.
	updates, err := elo.ComputeTeamUpdates(
		[]float64{1200, 1000},
		[]float64{1100, 1300},
		elo.OutcomeWin,
		elo.DefaultKFactor,
	)
	require.NoError(t, err)
	require.Len(t, updates, 2)

	expected0, _ := elo.ComputeUpdate(1200, 1200, elo.OutcomeWin, elo.DefaultKFactor)
	expected1, _ := elo.ComputeUpdate(1000, 1200, elo.OutcomeWin, elo.DefaultKFactor)
	assert.Equal(t, expected0, updates[0])
	assert.Equal(t, expected1, updates[1])

	_, err = elo.ComputeTeamUpdates(nil, []float64{1200}, elo.OutcomeWin, elo.DefaultKFactor)
	assert.True(t, errors.Is(err, elo.ErrInvalidArgument))
}

func TestParseOutcome(t *testing.T) {
	for str, expected := range map[string]elo.Outcome{
		"win": elo.OutcomeWin, "w": elo.OutcomeWin,
		"draw": elo.OutcomeDraw, "loss": elo.OutcomeLoss, "lost": elo.OutcomeLoss,
	} {
		actual, err := elo.ParseOutcome(str)
		require.NoError(t, err)
		assert.Equal(t, expected, actual, str)
	}

	_, err := elo.ParseOutcome("forfeit")
	assert.True(t, errors.Is(err, elo.ErrInvalidArgument))

	assert.Equal(t, elo.OutcomeLoss, elo.OutcomeWin.Reverse())
	assert.Equal(t, elo.OutcomeDraw, elo.OutcomeDraw.Reverse())
}
