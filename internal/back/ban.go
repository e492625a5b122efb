package back

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"scrim/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// A Ban prevents a discord user from queueing. A Ban without ExpiresAt is
// permanent.
type Ban struct {
	DiscordID string
	CreatedAt util.TimeAsTimestamp
	ExpiresAt util.NullTimeAsTimestamp
	Reason    string
}

func (b Ban) IsActive(now time.Time) bool {
	return !b.ExpiresAt.Valid || b.ExpiresAt.Time.Time().After(now)
}

func (b Ban) String() string {
	ret := "banned"
	if b.ExpiresAt.Valid {
		ret += " until " + util.Datetime(b.ExpiresAt.Time)
	} else {
		ret += " permanently"
	}

	if b.Reason != "" {
		ret += fmt.Sprintf(" (%s)", b.Reason)
	}

	return ret
}

func (b *Ban) upsert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("Ban").SetMap(squirrel.Eq{
		"DiscordID": b.DiscordID,
		"CreatedAt": b.CreatedAt,
		"ExpiresAt": b.ExpiresAt,
		"Reason":    b.Reason,
	}).Suffix(`ON CONFLICT ("DiscordID") DO UPDATE SET
        "CreatedAt" = excluded."CreatedAt",
        "ExpiresAt" = excluded."ExpiresAt",
        "Reason" = excluded."Reason"`).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func getBan(tx *sqlx.Tx, discordID string) (Ban, error) {
	var ret Ban
	query := `SELECT * FROM Ban WHERE DiscordID = ? LIMIT 1`
	if err := tx.Get(&ret, query, discordID); err != nil {
		return Ban{}, err
	}

	return ret, nil
}

func (b *Back) checkDiscordIDNotBanned(tx *sqlx.Tx, discordID string) error {
	if b.config.IsDiscordIDBanned(discordID) {
		return util.ErrPublic("you are banned")
	}

	ban, err := getBan(tx, discordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}

	if ban.IsActive(time.Now()) {
		return util.ErrPublic("you are " + ban.String())
	}

	return nil
}

// BanDiscordUser bans a user for the given duration, zero means forever.
// The user is removed from every queue, an ongoing match is left alone.
func (b *Back) BanDiscordUser(ctx context.Context, discordID string, duration time.Duration, reason string) (Ban, error) {
	if duration < 0 {
		return Ban{}, util.ErrPublic("the ban duration can't be negative")
	}

	now := time.Now()
	ban := Ban{
		DiscordID: discordID,
		CreatedAt: util.NewTimeAsTimestamp(now),
		Reason:    reason,
	}
	if duration > 0 {
		ban.ExpiresAt = util.NewNullTimeAsTimestamp(now.Add(duration))
	}

	var notifs []Notification
	if err := b.transaction(ctx, func(tx *sqlx.Tx) error {
		if err := ban.upsert(tx); err != nil {
			return err
		}

		player, err := getPlayerByDiscordID(tx, discordID)
		if err != nil {
			if util.IsPublic(err) { // not registered
				return nil
			}
			return err
		}

		entries, err := getQueueEntriesForPlayer(tx, player.ID)
		if err != nil {
			return err
		}

		for _, v := range entries {
			mode, err := getModeByID(tx, v.ModeID)
			if err != nil {
				return err
			}
			notifs = append(notifs, queueKickNotification(player, mode, "you are "+ban.String()))
		}

		return removeFromAllQueues(tx, []util.UUIDAsBlob{player.ID})
	}); err != nil {
		return Ban{}, err
	}

	log.WithFields(log.Fields{"discordID": discordID, "duration": duration}).Info("user banned")
	b.send(notifs...)
	return ban, nil
}

func (b *Back) UnbanDiscordUser(ctx context.Context, discordID string) error {
	return b.transaction(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.Exec(`DELETE FROM Ban WHERE DiscordID = ?`, discordID)
		if err != nil {
			return err
		}

		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return util.ErrPublic("this user is not banned")
		}

		return nil
	})
}

func pruneExpiredBans(tx *sqlx.Tx, now time.Time) (int64, error) {
	res, err := tx.Exec(
		`DELETE FROM Ban WHERE ExpiresAt IS NOT NULL AND ExpiresAt <= ?`,
		util.NewTimeAsTimestamp(now),
	)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// ParseBanDuration reads durations like "30m", "12h" or "7d".
func ParseBanDuration(str string) (time.Duration, error) {
	if str == "" || str == "0" || str == "forever" {
		return 0, nil
	}

	var days int
	if _, err := fmt.Sscanf(str, "%dd", &days); err == nil && fmt.Sprintf("%dd", days) == str {
		return time.Duration(days) * 24 * time.Hour, nil
	}

	ret, err := time.ParseDuration(str)
	if err != nil || ret < 0 {
		return 0, util.ErrPublic(fmt.Sprintf("`%s` is not a valid duration, try `12h` or `7d`", str))
	}

	return ret, nil
}

