package back

import (
	"database/sql"
	"time"

	"scrim/internal/elo"
	"scrim/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// PlayerRating is the current Elo rating of a player in a mode.
type PlayerRating struct {
	PlayerID  util.UUIDAsBlob
	ModeID    util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp
	UpdatedAt util.TimeAsTimestamp

	Rating float64
	Wins   int
	Losses int
	Draws  int
}

// Played returns the number of rated matches.
func (r PlayerRating) Played() int {
	return r.Wins + r.Losses + r.Draws
}

// getPlayerRating get the current rating for a player in a mode or creates
// and returns a default rating on the fly.
func getPlayerRating(tx *sqlx.Tx, playerID, modeID util.UUIDAsBlob) (PlayerRating, error) {
	var ret PlayerRating
	query := `SELECT * FROM PlayerRating WHERE PlayerID = ? AND ModeID = ? LIMIT 1`
	if err := tx.Get(&ret, query, playerID, modeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			now := util.NewTimeAsTimestamp(time.Now())
			return PlayerRating{
				PlayerID:  playerID,
				ModeID:    modeID,
				CreatedAt: now,
				UpdatedAt: now,
				Rating:    elo.InitialRating,
			}, nil
		}
		return PlayerRating{}, err
	}

	return ret, nil
}

func (r *PlayerRating) upsert(tx *sqlx.Tx) error {
	r.UpdatedAt = util.NewTimeAsTimestamp(time.Now())
	query, args, err := squirrel.Insert("PlayerRating").SetMap(squirrel.Eq{
		"PlayerID":  r.PlayerID,
		"ModeID":    r.ModeID,
		"CreatedAt": r.CreatedAt,
		"UpdatedAt": r.UpdatedAt,
		"Rating":    r.Rating,
		"Wins":      r.Wins,
		"Losses":    r.Losses,
		"Draws":     r.Draws,
	}).Suffix(`ON CONFLICT ("PlayerID", "ModeID") DO UPDATE SET
        "UpdatedAt" = excluded."UpdatedAt",
        "Rating" = excluded."Rating",
        "Wins" = excluded."Wins",
        "Losses" = excluded."Losses",
        "Draws" = excluded."Draws"`).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func (r *PlayerRating) count(outcome elo.Outcome) {
	switch outcome {
	case elo.OutcomeWin:
		r.Wins++
	case elo.OutcomeLoss:
		r.Losses++
	case elo.OutcomeDraw:
		r.Draws++
	}
}

func getRatingsForPlayers(tx *sqlx.Tx, modeID util.UUIDAsBlob, ids []util.UUIDAsBlob) ([]float64, error) {
	ret := make([]float64, 0, len(ids))
	for _, id := range ids {
		rating, err := getPlayerRating(tx, id, modeID)
		if err != nil {
			return nil, err
		}
		ret = append(ret, rating.Rating)
	}

	return ret, nil
}
