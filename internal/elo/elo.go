// Package elo computes logistic Elo rating updates.
//
// Everything here is pure: no state, no I/O. Persisting ratings is the
// caller's job.
package elo

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

const (
	// DefaultKFactor is the K-factor to use when a mode does not override it.
	DefaultKFactor = 32.0

	// InitialRating is the rating given to a player on their first match in
	// a mode. It is a storage convention, ComputeUpdate does not rely on it.
	InitialRating = 1200.0

	// scale is the rating difference at which the stronger player is
	// expected to score ten times as much as the weaker one.
	scale = 400.0
)

// ErrInvalidArgument is returned for out-of-domain inputs, retrying with the
// same input will always fail.
var ErrInvalidArgument = errors.New("invalid argument")

// Outcome is a match result seen from a single player or team.
type Outcome int

const ( // this is stored in DB, don't change values
	OutcomeLoss Outcome = -1
	OutcomeDraw Outcome = 0
	OutcomeWin  Outcome = 1
)

// Score returns the actual score used in the Elo formula.
func (o Outcome) Score() (float64, error) {
	switch o {
	case OutcomeWin:
		return 1.0, nil
	case OutcomeDraw:
		return 0.5, nil
	case OutcomeLoss:
		return 0.0, nil
	default:
		return 0, errors.Wrapf(ErrInvalidArgument, "unknown outcome %d", int(o))
	}
}

// Reverse returns the outcome seen from the other side.
func (o Outcome) Reverse() Outcome {
	return -o
}

func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeDraw:
		return "draw"
	case OutcomeLoss:
		return "loss"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// ParseOutcome reads an outcome as typed by a user.
func ParseOutcome(str string) (Outcome, error) {
	switch str {
	case "win", "w", "won":
		return OutcomeWin, nil
	case "draw", "d", "tie":
		return OutcomeDraw, nil
	case "loss", "l", "lose", "lost":
		return OutcomeLoss, nil
	default:
		return 0, errors.Wrapf(ErrInvalidArgument, "unknown outcome %q", str)
	}
}

// Update is the result of a rating computation.
type Update struct {
	NewRating float64
	Delta     float64
}

// Expected returns the probability of player scoring against opponent.
func Expected(playerRating, opponentRating float64) float64 {
	return 1 / (1 + math.Pow(10, (opponentRating-playerRating)/scale))
}

// ComputeUpdate returns the new rating of a player after a match against an
// opponent of the given rating. The new rating is rounded half away from
// zero to the nearest integer.
func ComputeUpdate(playerRating, opponentRating float64, outcome Outcome, kFactor float64) (Update, error) {
	if !isFinite(playerRating) || !isFinite(opponentRating) {
		return Update{}, errors.Wrap(ErrInvalidArgument, "ratings must be finite numbers")
	}

	if !isFinite(kFactor) || kFactor <= 0 {
		return Update{}, errors.Wrapf(ErrInvalidArgument, "K-factor must be positive, got %v", kFactor)
	}

	score, err := outcome.Score()
	if err != nil {
		return Update{}, err
	}

	// math.Round rounds half away from zero.
	newRating := math.Round(playerRating + kFactor*(score-Expected(playerRating, opponentRating)))

	return Update{
		NewRating: newRating,
		Delta:     newRating - playerRating,
	}, nil
}

// ComputeTeamUpdates rates every member of a team independently against the
// average rating of the opposing team. The returned slice is in the same
// order as team.
func ComputeTeamUpdates(team, opponents []float64, outcome Outcome, kFactor float64) ([]Update, error) {
	if len(team) == 0 || len(opponents) == 0 {
		return nil, errors.Wrap(ErrInvalidArgument, "both teams need at least one player")
	}

	opponentRating := AverageRating(opponents)
	ret := make([]Update, 0, len(team))
	for _, rating := range team {
		update, err := ComputeUpdate(rating, opponentRating, outcome, kFactor)
		if err != nil {
			return nil, err
		}

		ret = append(ret, update)
	}

	return ret, nil
}

// AverageRating returns the arithmetic mean of the given ratings, or 0 for
// an empty team.
func AverageRating(ratings []float64) float64 {
	if len(ratings) == 0 {
		return 0
	}

	var sum float64
	for _, v := range ratings {
		sum += v
	}

	return sum / float64(len(ratings))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
