package back

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"scrim/internal/elo"
	"scrim/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ReportActiveMatch records the outcome of the active match of a player,
// outcome is from the point of view of the reporting player. The result only
// counts once an admin approves it, until then any participant can report
// again and the last report wins.
func (b *Back) ReportActiveMatch(ctx context.Context, discordID string, outcome elo.Outcome) (Match, error) {
	if _, err := outcome.Score(); err != nil {
		return Match{}, util.ErrPublic("the outcome must be one of `win`, `loss`, or `draw`")
	}

	var (
		match Match
		notif Notification
	)

	if err := b.transaction(ctx, func(tx *sqlx.Tx) error {
		player, err := getPlayerByDiscordID(tx, discordID)
		if err != nil {
			return err
		}

		match, err = getActiveMatchForPlayer(tx, player.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return util.ErrPublic("you have no match to report")
			}
			return err
		}

		entry, err := match.getPlayerEntry(player.ID)
		if err != nil {
			return err
		}

		if entry.Team == 2 {
			outcome = outcome.Reverse()
		}

		match.Status = MatchStatusReported
		match.Outcome = outcome
		match.ReportedAt = util.NewNullTimeAsTimestamp(time.Now())
		match.ReportedBy = util.NewNullUUIDAsBlob(player.ID)
		if err := match.update(tx); err != nil {
			return err
		}

		mode, err := getModeByID(tx, match.ModeID)
		if err != nil {
			return err
		}

		notif = matchReportedNotification(mode, match, player)
		return nil
	}); err != nil {
		return Match{}, err
	}

	b.send(notif)
	return match, nil
}

// ApproveMatch makes the reported result of a match final and applies its
// rating changes.
func (b *Back) ApproveMatch(ctx context.Context, matchID string) (Match, error) {
	var (
		match  Match
		notifs []Notification
	)

	if err := b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		match, err = getMatchByShortID(tx, matchID)
		if err != nil {
			return err
		}

		switch match.Status {
		case MatchStatusOngoing:
			return util.ErrPublic("this match has not been reported yet")
		case MatchStatusReported:
		default:
			return util.ErrPublic(fmt.Sprintf("this match is already %s", match.Status))
		}

		changes, err := applyMatchRatings(tx, match, b.config.KFactor)
		if err != nil {
			return errors.Wrap(err, "unable to apply ratings")
		}

		match.Status = MatchStatusApproved
		match.DecidedAt = util.NewNullTimeAsTimestamp(time.Now())
		if err := match.update(tx); err != nil {
			return err
		}

		notifs, err = decidedNotifications(tx, match, changes)
		return err
	}); err != nil {
		return Match{}, err
	}

	log.WithField("match", match.ID.String()).Info("match approved")
	b.send(notifs...)
	return match, nil
}

// RejectMatch cancels a match without changing any rating.
func (b *Back) RejectMatch(ctx context.Context, matchID string) (Match, error) {
	var (
		match  Match
		notifs []Notification
	)

	if err := b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		match, err = getMatchByShortID(tx, matchID)
		if err != nil {
			return err
		}

		if !match.Status.IsActive() {
			return util.ErrPublic(fmt.Sprintf("this match is already %s", match.Status))
		}

		match.Status = MatchStatusRejected
		match.DecidedAt = util.NewNullTimeAsTimestamp(time.Now())
		if err := match.update(tx); err != nil {
			return err
		}

		notifs, err = decidedNotifications(tx, match, nil)
		return err
	}); err != nil {
		return Match{}, err
	}

	log.WithField("match", match.ID.String()).Info("match rejected")
	b.send(notifs...)
	return match, nil
}

func decidedNotifications(tx *sqlx.Tx, match Match, changes []RatingChange) ([]Notification, error) {
	mode, err := getModeByID(tx, match.ModeID)
	if err != nil {
		return nil, err
	}

	players, err := getPlayersByIDs(tx, match.PlayerIDs())
	if err != nil {
		return nil, err
	}

	return matchDecidedNotifications(mode, match, players, changes), nil
}

// applyMatchRatings rates every player of the match against the average
// pre-match rating of the opposing team. All new ratings are computed before
// any is stored so that the order of players does not matter.
// Players whose rating was already moved by this match are skipped.
func applyMatchRatings(tx *sqlx.Tx, match Match, kFactor float64) ([]RatingChange, error) {
	team1, team2 := match.TeamPlayerIDs(1), match.TeamPlayerIDs(2)

	ratings1, err := getRatingsForPlayers(tx, match.ModeID, team1)
	if err != nil {
		return nil, err
	}
	ratings2, err := getRatingsForPlayers(tx, match.ModeID, team2)
	if err != nil {
		return nil, err
	}

	updates1, err := elo.ComputeTeamUpdates(ratings1, ratings2, match.Outcome, kFactor)
	if err != nil {
		return nil, err
	}
	updates2, err := elo.ComputeTeamUpdates(ratings2, ratings1, match.Outcome.Reverse(), kFactor)
	if err != nil {
		return nil, err
	}

	apply := func(ids []util.UUIDAsBlob, updates []elo.Update, outcome elo.Outcome) error {
		for k, id := range ids {
			if _, err := recordRatingChange(tx, match.ID, id, match.ModeID, updates[k].NewRating, &outcome); err != nil {
				return err
			}
		}
		return nil
	}

	if err := apply(team1, updates1, match.Outcome); err != nil {
		return nil, err
	}
	if err := apply(team2, updates2, match.Outcome.Reverse()); err != nil {
		return nil, err
	}

	return getRatingChangesForMatch(tx, match.ID)
}
