package back

import (
	"context"
	"database/sql"
	"fmt"
	"time"
	"unicode/utf8"

	"scrim/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"gopkg.in/guregu/null.v4"
)

// A Player is a competitor identified by its discord account.
type Player struct {
	ID        util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp
	Name      string
	DiscordID null.String
}

func NewPlayer(name string) Player {
	return Player{
		ID:        util.NewUUIDAsBlob(),
		CreatedAt: util.NewTimeAsTimestamp(time.Now()),
		Name:      name,
	}
}

func (p *Player) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("Player").SetMap(squirrel.Eq{
		"ID":        p.ID,
		"CreatedAt": p.CreatedAt,
		"Name":      p.Name,
		"DiscordID": p.DiscordID,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func (p *Player) update(tx *sqlx.Tx) error {
	query, args, err := squirrel.Update("Player").SetMap(squirrel.Eq{
		"Name":      p.Name,
		"DiscordID": p.DiscordID,
	}).Where("Player.ID = ?", p.ID).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func validatePlayerName(name string) error {
	if n := utf8.RuneCountInString(name); n < 3 || n > 32 {
		return util.ErrPublic("your name must be between 3 and 32 characters")
	}

	return nil
}

func getPlayerByName(tx *sqlx.Tx, name string) (Player, error) {
	var ret Player
	query := `SELECT * FROM Player WHERE Player.Name = ? LIMIT 1`
	if err := tx.Get(&ret, query, name); err != nil {
		return Player{}, err
	}

	return ret, nil
}

func getPlayerByID(tx *sqlx.Tx, id util.UUIDAsBlob) (Player, error) {
	var ret Player
	query := `SELECT * FROM Player WHERE Player.ID = ? LIMIT 1`
	if err := tx.Get(&ret, query, id); err != nil {
		return Player{}, err
	}

	return ret, nil
}

func getPlayerByDiscordID(tx *sqlx.Tx, discordID string) (Player, error) {
	var ret Player
	query := `SELECT * FROM Player WHERE Player.DiscordID = ? LIMIT 1`
	if err := tx.Get(&ret, query, discordID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Player{}, util.ErrPublic("you are not registered, use `!register` first")
		}
		return Player{}, err
	}

	return ret, nil
}

func getPlayersByIDs(tx *sqlx.Tx, ids []util.UUIDAsBlob) (map[util.UUIDAsBlob]Player, error) {
	if len(ids) == 0 {
		return map[util.UUIDAsBlob]Player{}, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM Player WHERE ID IN(?)`, ids)
	if err != nil {
		return nil, err
	}
	query = tx.Rebind(query)

	players := make([]Player, 0, len(ids))
	if err := tx.Select(&players, query, args...); err != nil {
		return nil, err
	}

	ret := make(map[util.UUIDAsBlob]Player, len(players))
	for k := range players {
		ret[players[k].ID] = players[k]
	}

	return ret, nil
}

// orderedPlayers returns the players matching ids, in the same order.
func orderedPlayers(players map[util.UUIDAsBlob]Player, ids []util.UUIDAsBlob) []Player {
	ret := make([]Player, 0, len(ids))
	for _, id := range ids {
		ret = append(ret, players[id])
	}

	return ret
}

func (b *Back) GetPlayerByDiscordID(ctx context.Context, discordID string) (ret Player, _ error) {
	return ret, b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		ret, err = getPlayerByDiscordID(tx, discordID)
		return err
	})
}

func (b *Back) RegisterDiscordPlayer(ctx context.Context, discordID, name string) (player Player, _ error) {
	if err := validatePlayerName(name); err != nil {
		return Player{}, err
	}

	if err := b.transaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := getPlayerByDiscordID(tx, discordID); err == nil {
			return util.ErrPublic("you are already registered")
		}

		if _, err := getPlayerByName(tx, name); err == nil {
			return util.ErrPublic(fmt.Sprintf("the name `%s` is taken already, please give me another name", name))
		}

		player = NewPlayer(name)
		player.DiscordID = null.StringFrom(discordID)
		return player.insert(tx)
	}); err != nil {
		return Player{}, err
	}

	return player, nil
}

func (b *Back) UpdateDiscordPlayerName(ctx context.Context, discordID string, name string) error {
	return b.transaction(ctx, func(tx *sqlx.Tx) error {
		player, err := getPlayerByDiscordID(tx, discordID)
		if err != nil {
			return err
		}

		if player.Name == name {
			return util.ErrPublic("that's your name already")
		}

		if err := validatePlayerName(name); err != nil {
			return err
		}

		if _, err := getPlayerByName(tx, name); err == nil {
			return util.ErrPublic("this name is taken already")
		}

		player.Name = name
		return player.update(tx)
	})
}
