package back

import (
	"context"
	"database/sql"
	"time"

	"scrim/internal/elo"
	"scrim/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// A RatingChange is the rating movement of one player caused by one match.
// There is at most one per (MatchID, PlayerID), which is what prevents a
// match from being applied twice.
type RatingChange struct {
	MatchID      util.UUIDAsBlob
	PlayerID     util.UUIDAsBlob
	ModeID       util.UUIDAsBlob
	CreatedAt    util.TimeAsTimestamp
	RatingBefore float64
	RatingAfter  float64
	Delta        float64
}

func (c *RatingChange) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("RatingChange").SetMap(squirrel.Eq{
		"MatchID":      c.MatchID,
		"PlayerID":     c.PlayerID,
		"ModeID":       c.ModeID,
		"CreatedAt":    c.CreatedAt,
		"RatingBefore": c.RatingBefore,
		"RatingAfter":  c.RatingAfter,
		"Delta":        c.Delta,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func getRatingChange(tx *sqlx.Tx, matchID, playerID util.UUIDAsBlob) (RatingChange, error) {
	var ret RatingChange
	query := `SELECT * FROM RatingChange WHERE MatchID = ? AND PlayerID = ? LIMIT 1`
	if err := tx.Get(&ret, query, matchID, playerID); err != nil {
		return RatingChange{}, err
	}

	return ret, nil
}

func getRatingChangesForMatch(tx *sqlx.Tx, matchID util.UUIDAsBlob) ([]RatingChange, error) {
	var ret []RatingChange
	query := `SELECT * FROM RatingChange WHERE MatchID = ? ORDER BY RatingChange.rowid ASC`
	if err := tx.Select(&ret, query, matchID); err != nil {
		return nil, err
	}

	return ret, nil
}

// recordRatingChange sets the rating of a player as a result of a match.
// It does nothing and returns false if the change was already recorded.
// outcome, when not nil, is counted in the player win/loss/draw totals.
func recordRatingChange(
	tx *sqlx.Tx,
	matchID, playerID, modeID util.UUIDAsBlob,
	newRating float64,
	outcome *elo.Outcome,
) (bool, error) {
	_, err := getRatingChange(tx, matchID, playerID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}

	rating, err := getPlayerRating(tx, playerID, modeID)
	if err != nil {
		return false, err
	}

	change := RatingChange{
		MatchID:      matchID,
		PlayerID:     playerID,
		ModeID:       modeID,
		CreatedAt:    util.NewTimeAsTimestamp(time.Now()),
		RatingBefore: rating.Rating,
		RatingAfter:  newRating,
		Delta:        newRating - rating.Rating,
	}
	if err := change.insert(tx); err != nil {
		return false, errors.Wrap(err, "unable to insert RatingChange")
	}

	rating.Rating = newRating
	if outcome != nil {
		rating.count(*outcome)
	}
	if err := rating.upsert(tx); err != nil {
		return false, errors.Wrap(err, "unable to upsert PlayerRating")
	}

	return true, nil
}

// RecordRatingChange stores a new rating for a player, it is a no-op if the
// match already moved that player's rating.
func (b *Back) RecordRatingChange(ctx context.Context, matchID, playerID, modeID uuid.UUID, newRating float64) error {
	return b.transaction(ctx, func(tx *sqlx.Tx) error {
		_, err := recordRatingChange(
			tx,
			util.UUIDAsBlob(matchID), util.UUIDAsBlob(playerID), util.UUIDAsBlob(modeID),
			newRating, nil,
		)
		return err
	})
}
