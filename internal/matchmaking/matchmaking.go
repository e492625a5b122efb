// Package matchmaking decides when a queue can start a match and who plays
// on which team.
//
// The pairing policy is first come, first served: the oldest entries of the
// queue are split positionally into two teams. There is no skill balancing.
package matchmaking

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrInvalidConfiguration means a mode was configured with a team size that
// is not a positive integer.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// A QueueEntry is a player waiting for a match in a given mode.
type QueueEntry struct {
	PlayerID uuid.UUID
	ModeID   uuid.UUID
	JoinedAt time.Time
}

// A Match is an immutable roster of two equally sized teams.
type Match struct {
	ID       uuid.UUID
	ModeID   uuid.UUID
	TeamSize int
	Team1    []QueueEntry
	Team2    []QueueEntry
}

// Entries returns every entry consumed by the match, team 1 first.
func (m *Match) Entries() []QueueEntry {
	ret := make([]QueueEntry, 0, len(m.Team1)+len(m.Team2))
	ret = append(ret, m.Team1...)
	return append(ret, m.Team2...)
}

// TryFormMatch takes the 2*teamSize oldest entries of a queue and splits them
// in two teams. The queue must contain a single mode, be deduplicated, and be
// ordered by join time, oldest first.
// It returns a nil Match without error if there are not enough players yet.
// The queue is never modified, removing the consumed entries is up to the
// caller.
func TryFormMatch(queue []QueueEntry, teamSize int) (*Match, error) {
	if teamSize <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfiguration, "team size must be positive, got %d", teamSize)
	}

	// Compared by halves, teamSize*2 can overflow.
	if len(queue)/2 < teamSize {
		return nil, nil
	}

	team1 := make([]QueueEntry, teamSize)
	team2 := make([]QueueEntry, teamSize)
	copy(team1, queue[:teamSize])
	copy(team2, queue[teamSize:teamSize*2])

	return &Match{
		ID:       uuid.New(),
		ModeID:   queue[0].ModeID,
		TeamSize: teamSize,
		Team1:    team1,
		Team2:    team2,
	}, nil
}

// ParseTeamSize validates a team size read from an untyped source (JSON,
// user input) where non-integer numbers can occur.
func ParseTeamSize(v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, errors.Wrapf(ErrInvalidConfiguration, "team size must be an integer, got %v", v)
	}

	if v <= 0 || v > math.MaxInt32 {
		return 0, errors.Wrapf(ErrInvalidConfiguration, "team size must be positive, got %v", v)
	}

	return int(v), nil
}

// Store persists queues, matches and ratings. Implementations must make
// CreateMatch atomic: reading the queue, inserting the match and removing the
// consumed entries happen as one step so that two concurrent calls can never
// pick the same player.
type Store interface {
	Enqueue(ctx context.Context, playerID, modeID uuid.UUID) error
	Dequeue(ctx context.Context, playerID, modeID uuid.UUID) error
	ListQueue(ctx context.Context, modeID uuid.UUID) ([]QueueEntry, error)

	// CreateMatch runs TryFormMatch on the current queue of the mode and
	// persists its result, if any.
	CreateMatch(ctx context.Context, modeID uuid.UUID, teamSize int) (*Match, error)

	// RecordRatingChange must be idempotent for a given match and player.
	RecordRatingChange(ctx context.Context, matchID, playerID, modeID uuid.UUID, newRating float64) error
}

// FormMatches creates matches for a mode until its queue no longer holds
// enough players.
func FormMatches(ctx context.Context, store Store, modeID uuid.UUID, teamSize int) ([]Match, error) {
	var ret []Match
	for {
		if err := ctx.Err(); err != nil {
			return ret, err
		}

		match, err := store.CreateMatch(ctx, modeID, teamSize)
		if err != nil {
			return ret, err
		}

		if match == nil {
			return ret, nil
		}

		ret = append(ret, *match)
	}
}
