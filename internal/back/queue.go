package back

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"scrim/internal/matchmaking"
	"scrim/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// A QueueEntry is a player waiting for a match in a mode.
type QueueEntry struct {
	PlayerID util.UUIDAsBlob
	ModeID   util.UUIDAsBlob
	JoinedAt util.TimeAsTimestamp
}

func (e QueueEntry) toMatchmaking() matchmaking.QueueEntry {
	return matchmaking.QueueEntry{
		PlayerID: e.PlayerID.UUID(),
		ModeID:   e.ModeID.UUID(),
		JoinedAt: e.JoinedAt.Time(),
	}
}

func (e *QueueEntry) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("QueueEntry").SetMap(squirrel.Eq{
		"PlayerID": e.PlayerID,
		"ModeID":   e.ModeID,
		"JoinedAt": e.JoinedAt,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

// getQueue returns the entries of a mode, oldest first. Ties are broken by
// insertion order.
func getQueue(tx *sqlx.Tx, modeID util.UUIDAsBlob) ([]QueueEntry, error) {
	var ret []QueueEntry
	query := `SELECT * FROM QueueEntry WHERE ModeID = ? ORDER BY JoinedAt ASC, rowid ASC`
	if err := tx.Select(&ret, query, modeID); err != nil {
		return nil, err
	}

	return ret, nil
}

func getQueueEntriesForPlayer(tx *sqlx.Tx, playerID util.UUIDAsBlob) ([]QueueEntry, error) {
	var ret []QueueEntry
	query := `SELECT * FROM QueueEntry WHERE PlayerID = ? ORDER BY JoinedAt ASC`
	if err := tx.Select(&ret, query, playerID); err != nil {
		return nil, err
	}

	return ret, nil
}

func isInQueue(tx *sqlx.Tx, playerID, modeID util.UUIDAsBlob) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM QueueEntry WHERE PlayerID = ? AND ModeID = ?`
	if err := tx.Get(&count, query, playerID, modeID); err != nil {
		return false, err
	}

	return count > 0, nil
}

func enqueue(tx *sqlx.Tx, playerID, modeID util.UUIDAsBlob) error {
	if _, err := getActiveMatchForPlayer(tx, playerID); err == nil {
		return util.ErrPublic("you can't queue while you have a match in progress, use `!report` first")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	queued, err := isInQueue(tx, playerID, modeID)
	if err != nil {
		return err
	}
	if queued {
		return util.ErrPublic("you are already in this queue")
	}

	entry := QueueEntry{
		PlayerID: playerID,
		ModeID:   modeID,
		JoinedAt: util.NewTimeAsTimestamp(time.Now()),
	}

	return entry.insert(tx)
}

func dequeue(tx *sqlx.Tx, playerID, modeID util.UUIDAsBlob) error {
	res, err := tx.Exec(`DELETE FROM QueueEntry WHERE PlayerID = ? AND ModeID = ?`, playerID, modeID)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return util.ErrPublic("you are not in this queue")
	}

	return nil
}

// removeFromAllQueues removes the given players from every queue, used
// when a match starts.
func removeFromAllQueues(tx *sqlx.Tx, playerIDs []util.UUIDAsBlob) error {
	if len(playerIDs) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`DELETE FROM QueueEntry WHERE PlayerID IN (?)`, playerIDs)
	if err != nil {
		return err
	}

	_, err = tx.Exec(tx.Rebind(query), args...)
	return err
}

// Enqueue applies the same ban rules as JoinQueue, players without a
// discord account can't be banned.
func (b *Back) Enqueue(ctx context.Context, playerID, modeID uuid.UUID) error {
	return b.transaction(ctx, func(tx *sqlx.Tx) error {
		player, err := getPlayerByID(tx, util.UUIDAsBlob(playerID))
		if err != nil {
			return err
		}

		if player.DiscordID.Valid {
			if err := b.checkDiscordIDNotBanned(tx, player.DiscordID.String); err != nil {
				return err
			}
		}

		return enqueue(tx, player.ID, util.UUIDAsBlob(modeID))
	})
}

func (b *Back) Dequeue(ctx context.Context, playerID, modeID uuid.UUID) error {
	return b.transaction(ctx, func(tx *sqlx.Tx) error {
		return dequeue(tx, util.UUIDAsBlob(playerID), util.UUIDAsBlob(modeID))
	})
}

func (b *Back) ListQueue(ctx context.Context, modeID uuid.UUID) ([]matchmaking.QueueEntry, error) {
	var entries []QueueEntry
	if err := b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		entries, err = getQueue(tx, util.UUIDAsBlob(modeID))
		return err
	}); err != nil {
		return nil, err
	}

	ret := make([]matchmaking.QueueEntry, len(entries))
	for k := range entries {
		ret[k] = entries[k].toMatchmaking()
	}

	return ret, nil
}

// JoinQueue adds a discord player to the queue of a mode then immediately
// tries to form matches in that mode.
func (b *Back) JoinQueue(ctx context.Context, discordID, shortCode string) (Mode, error) {
	var (
		mode   Mode
		player Player
	)

	if err := b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		if err := b.checkDiscordIDNotBanned(tx, discordID); err != nil {
			return err
		}

		player, err = getPlayerByDiscordID(tx, discordID)
		if err != nil {
			return err
		}

		mode, err = getModeByShortCode(tx, shortCode)
		if err != nil {
			return err
		}

		return enqueue(tx, player.ID, mode.ID)
	}); err != nil {
		return Mode{}, err
	}

	if _, err := b.formMatches(ctx, mode); err != nil {
		return mode, errors.Wrap(err, "unable to form matches")
	}

	return mode, nil
}

// LeaveQueue removes a discord player from the queue of a mode, or from
// every queue if shortCode is empty.
func (b *Back) LeaveQueue(ctx context.Context, discordID, shortCode string) error {
	return b.transaction(ctx, func(tx *sqlx.Tx) error {
		player, err := getPlayerByDiscordID(tx, discordID)
		if err != nil {
			return err
		}

		if shortCode == "" {
			entries, err := getQueueEntriesForPlayer(tx, player.ID)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return util.ErrPublic("you are not in any queue")
			}

			return removeFromAllQueues(tx, []util.UUIDAsBlob{player.ID})
		}

		mode, err := getModeByShortCode(tx, shortCode)
		if err != nil {
			return err
		}

		return dequeue(tx, player.ID, mode.ID)
	})
}

// QueueView is a queue with the names of the waiting players.
type QueueView struct {
	Mode    Mode
	Entries []QueueEntry
	Players []Player
}

func (b *Back) GetQueue(ctx context.Context, shortCode string) (ret QueueView, _ error) {
	return ret, b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		ret.Mode, err = getModeByShortCode(tx, shortCode)
		if err != nil {
			return err
		}

		ret.Entries, err = getQueue(tx, ret.Mode.ID)
		if err != nil {
			return err
		}

		ids := make([]util.UUIDAsBlob, len(ret.Entries))
		for k := range ret.Entries {
			ids[k] = ret.Entries[k].PlayerID
		}

		players, err := getPlayersByIDs(tx, ids)
		if err != nil {
			return err
		}
		ret.Players = orderedPlayers(players, ids)

		return nil
	})
}

// PlayerStatus is what a player is currently doing.
type PlayerStatus struct {
	Player      Player
	Queues      []Mode
	ActiveMatch *Match
}

func (s PlayerStatus) String() string {
	if s.ActiveMatch != nil {
		return fmt.Sprintf("you are playing match `%s` (%s)", s.ActiveMatch.ID.Short(), s.ActiveMatch.Status)
	}

	if len(s.Queues) == 0 {
		return "you are not in any queue"
	}

	ret := "you are queued for"
	for k, v := range s.Queues {
		if k > 0 {
			ret += ","
		}
		ret += fmt.Sprintf(" `%s`", v.ShortCode)
	}

	return ret
}

func (b *Back) GetPlayerStatus(ctx context.Context, discordID string) (ret PlayerStatus, _ error) {
	return ret, b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		ret.Player, err = getPlayerByDiscordID(tx, discordID)
		if err != nil {
			return err
		}

		match, err := getActiveMatchForPlayer(tx, ret.Player.ID)
		if err == nil {
			ret.ActiveMatch = &match
		} else if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		entries, err := getQueueEntriesForPlayer(tx, ret.Player.ID)
		if err != nil {
			return err
		}

		for _, v := range entries {
			mode, err := getModeByID(tx, v.ModeID)
			if err != nil {
				return err
			}
			ret.Queues = append(ret.Queues, mode)
		}

		return nil
	})
}
