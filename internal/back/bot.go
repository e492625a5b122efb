package back

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Put bot-specific oddities here

// ModeSummary is a mode and the number of players waiting in its queue.
type ModeSummary struct {
	Mode      Mode
	QueueSize int
}

func (b *Back) GetModesWithQueueSize(ctx context.Context) ([]ModeSummary, error) {
	var ret []ModeSummary
	if err := b.transaction(ctx, func(tx *sqlx.Tx) error {
		modes, err := getModes(tx)
		if err != nil {
			return err
		}

		ret = make([]ModeSummary, 0, len(modes))
		for _, mode := range modes {
			var count int
			if err := tx.Get(&count, `SELECT COUNT(*) FROM QueueEntry WHERE ModeID = ?`, mode.ID); err != nil {
				return err
			}

			ret = append(ret, ModeSummary{Mode: mode, QueueSize: count})
		}

		return nil
	}); err != nil {
		return nil, err
	}

	return ret, nil
}

// GetPlayerRatingsByDiscordID returns the ratings of a player in every mode
// they played in.
func (b *Back) GetPlayerRatingsByDiscordID(ctx context.Context, discordID string) (Player, []PlayerRating, error) {
	var (
		player  Player
		ratings []PlayerRating
	)

	if err := b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		player, err = getPlayerByDiscordID(tx, discordID)
		if err != nil {
			return err
		}

		return tx.Select(&ratings, `SELECT * FROM PlayerRating WHERE PlayerID = ?`, player.ID)
	}); err != nil {
		return Player{}, nil, err
	}

	return player, ratings, nil
}
