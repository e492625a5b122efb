package back

import (
	"context"

	"scrim/internal/matchmaking"
	"scrim/internal/util"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// createMatch forms at most one match from the queue of a mode and persists
// it. Reading the queue, inserting the match and removing its players from
// all queues happen in the same transaction.
func createMatch(tx *sqlx.Tx, modeID util.UUIDAsBlob, teamSize int) (*Match, error) {
	entries, err := getQueue(tx, modeID)
	if err != nil {
		return nil, err
	}

	queue := make([]matchmaking.QueueEntry, len(entries))
	for k := range entries {
		queue[k] = entries[k].toMatchmaking()
	}

	formed, err := matchmaking.TryFormMatch(queue, teamSize)
	if err != nil || formed == nil {
		return nil, err
	}

	match := newMatchFromFormation(formed)
	if err := match.insert(tx); err != nil {
		return nil, errors.Wrap(err, "unable to insert Match")
	}

	if err := removeFromAllQueues(tx, match.PlayerIDs()); err != nil {
		return nil, errors.Wrap(err, "unable to remove players from queues")
	}

	return &match, nil
}

// CreateMatch implements matchmaking.Store. No notification is sent, use
// formMatches for that.
func (b *Back) CreateMatch(ctx context.Context, modeID uuid.UUID, teamSize int) (*matchmaking.Match, error) {
	var match *Match
	if err := b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		match, err = createMatch(tx, util.UUIDAsBlob(modeID), teamSize)
		return err
	}); err != nil {
		return nil, err
	}

	if match == nil {
		return nil, nil
	}

	return match.toMatchmaking(), nil
}

func (m *Match) toMatchmaking() *matchmaking.Match {
	ret := &matchmaking.Match{
		ID:       m.ID.UUID(),
		ModeID:   m.ModeID.UUID(),
		TeamSize: m.TeamSize,
	}

	for _, v := range m.Entries {
		entry := matchmaking.QueueEntry{PlayerID: v.PlayerID.UUID(), ModeID: m.ModeID.UUID()}
		if v.Team == 1 {
			ret.Team1 = append(ret.Team1, entry)
		} else {
			ret.Team2 = append(ret.Team2, entry)
		}
	}

	return ret
}

// formMatches creates as many matches as the queue of the given mode allows
// and notifies the players of each one.
func (b *Back) formMatches(ctx context.Context, mode Mode) ([]matchmaking.Match, error) {
	matches, err := matchmaking.FormMatches(ctx, b, mode.ID.UUID(), mode.TeamSize)
	for _, v := range matches {
		log.WithFields(log.Fields{
			"mode":  mode.ShortCode,
			"match": v.ID.String(),
		}).Info("match formed")

		if err := b.notifyMatchFormed(ctx, mode, v); err != nil {
			log.Errorf("unable to notify match %s: %s", v.ID, err)
		}
	}

	return matches, err
}

func (b *Back) notifyMatchFormed(ctx context.Context, mode Mode, formed matchmaking.Match) error {
	var notifs []Notification
	if err := b.transaction(ctx, func(tx *sqlx.Tx) error {
		match, err := getMatchByID(tx, util.UUIDAsBlob(formed.ID))
		if err != nil {
			return err
		}

		players, err := getPlayersByIDs(tx, match.PlayerIDs())
		if err != nil {
			return err
		}

		notifs = matchFormedNotifications(
			mode, match,
			orderedPlayers(players, match.TeamPlayerIDs(1)),
			orderedPlayers(players, match.TeamPlayerIDs(2)),
		)
		return nil
	}); err != nil {
		return err
	}

	b.send(notifs...)
	return nil
}
