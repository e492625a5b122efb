package back

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"scrim/internal/matchmaking"
	"scrim/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"gopkg.in/guregu/null.v4"
)

// A Mode is a ruleset with a fixed team size. Queues, matches and ratings
// are all scoped to a Mode, which announces its matches in a specific
// discord channel.
type Mode struct {
	ID        util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp
	Name      string
	ShortCode string
	TeamSize  int

	AnnounceDiscordChannelID null.String
}

// NewMode validates the team size, which may come from an untyped source.
func NewMode(name string, shortCode string, teamSize float64) (Mode, error) {
	size, err := matchmaking.ParseTeamSize(teamSize)
	if err != nil {
		return Mode{}, err
	}

	return Mode{
		ID:        util.NewUUIDAsBlob(),
		CreatedAt: util.NewTimeAsTimestamp(time.Now()),
		Name:      name,
		ShortCode: shortCode,
		TeamSize:  size,
	}, nil
}

// PlayersPerMatch returns how many queued players a match consumes.
func (m *Mode) PlayersPerMatch() int {
	return m.TeamSize * 2
}

func (m *Mode) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("Mode").SetMap(squirrel.Eq{
		"ID":        m.ID,
		"CreatedAt": m.CreatedAt,
		"Name":      m.Name,
		"ShortCode": m.ShortCode,
		"TeamSize":  m.TeamSize,

		"AnnounceDiscordChannelID": m.AnnounceDiscordChannelID,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func (m *Mode) update(tx *sqlx.Tx) error {
	query, args, err := squirrel.Update("Mode").SetMap(squirrel.Eq{
		"Name":      m.Name,
		"ShortCode": m.ShortCode,
		"TeamSize":  m.TeamSize,

		"AnnounceDiscordChannelID": m.AnnounceDiscordChannelID,
	}).Where("Mode.ID = ?", m.ID).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func getModes(tx *sqlx.Tx) ([]Mode, error) {
	var ret []Mode
	if err := tx.Select(&ret, "SELECT * FROM Mode ORDER BY Mode.TeamSize ASC, Mode.Name ASC"); err != nil {
		return nil, err
	}

	return ret, nil
}

func getModeByShortCode(tx *sqlx.Tx, shortCode string) (Mode, error) {
	if shortCode == "" {
		return Mode{}, util.ErrPublic("you need to give me a mode shortcode, see `!modes` and `!help`")
	}

	var ret Mode
	query := `SELECT * FROM Mode WHERE Mode.ShortCode = ? LIMIT 1`
	if err := tx.Get(&ret, query, shortCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Mode{}, util.ErrPublic(fmt.Sprintf(
				"could not find a mode with shortcode `%s`, try `!modes`", shortCode,
			))
		}
		return Mode{}, err
	}

	return ret, nil
}

func getModeByID(tx *sqlx.Tx, id util.UUIDAsBlob) (Mode, error) {
	var ret Mode
	query := `SELECT * FROM Mode WHERE Mode.ID = ? LIMIT 1`
	if err := tx.Get(&ret, query, id); err != nil {
		return Mode{}, err
	}

	return ret, nil
}

func (b *Back) GetModes(ctx context.Context) (ret []Mode, _ error) {
	return ret, b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		ret, err = getModes(tx)
		return err
	})
}

func (b *Back) GetModeByShortCode(ctx context.Context, shortCode string) (ret Mode, _ error) {
	return ret, b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		ret, err = getModeByShortCode(tx, shortCode)
		return err
	})
}

// CreateMode registers a new mode, the shortcode must be unique.
func (b *Back) CreateMode(ctx context.Context, name, shortCode string, teamSize float64) (Mode, error) {
	mode, err := NewMode(name, shortCode, teamSize)
	if err != nil {
		return Mode{}, err
	}

	if err := b.transaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := getModeByShortCode(tx, shortCode); err == nil {
			return util.ErrPublic(fmt.Sprintf("shortcode `%s` is already taken", shortCode))
		}

		return mode.insert(tx)
	}); err != nil {
		return Mode{}, err
	}

	return mode, nil
}

func (b *Back) SetModeAnnounceChannel(ctx context.Context, shortCode, channelID string) error {
	return b.transaction(ctx, func(tx *sqlx.Tx) error {
		mode, err := getModeByShortCode(tx, shortCode)
		if err != nil {
			return err
		}

		mode.AnnounceDiscordChannelID = null.StringFrom(channelID)
		return mode.update(tx)
	})
}
