package back

// This file contains functions specific to the web API.
// Please do not call them outside of the webserver.

import (
	"context"

	"scrim/internal/util"

	"github.com/jmoiron/sqlx"
)

type LeaderboardEntry struct {
	PlayerName string
	Rating     float64
	Wins       int
	Losses     int
	Draws      int
}

func (b *Back) GetLeaderboardForShortcode(ctx context.Context, shortcode string) (out []LeaderboardEntry, _ error) {
	return out, b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		out, err = b.getLeaderboardForShortcode(tx, shortcode)
		return err
	})
}

func (b *Back) getLeaderboardForShortcode(tx *sqlx.Tx, shortcode string) ([]LeaderboardEntry, error) {
	mode, err := getModeByShortCode(tx, shortcode)
	if err != nil {
		return nil, err
	}

	bans := b.config.DiscordBannedUserIDs
	if len(bans) == 0 {
		bans = []string{"0"}
	}

	query, args, err := sqlx.In(`
            SELECT
                Player.Name AS PlayerName,
                PlayerRating.Rating AS Rating,
                PlayerRating.Wins AS Wins,
                PlayerRating.Losses AS Losses,
                PlayerRating.Draws AS Draws
            FROM PlayerRating
            INNER JOIN Player ON(PlayerRating.PlayerID = Player.ID)
            WHERE
                PlayerRating.ModeID = ?
                AND (Player.DiscordID NOT IN(?) OR Player.DiscordID IS NULL)
            ORDER BY PlayerRating.Rating DESC, Player.Name ASC
        `,
		mode.ID,
		bans,
	)
	if err != nil {
		return nil, err
	}

	query = tx.Rebind(query)
	var ret []LeaderboardEntry
	if err := tx.Select(&ret, query, args...); err != nil {
		return nil, err
	}

	return ret, nil
}

// GetModesMap returns the list of modes indexed by their ID.
func (b *Back) GetModesMap(ctx context.Context) (map[util.UUIDAsBlob]Mode, error) {
	s, err := b.GetModes(ctx)
	if err != nil {
		return nil, err
	}

	ret := make(map[util.UUIDAsBlob]Mode, len(s))
	for k := range s {
		ret[s[k].ID] = s[k]
	}

	return ret, nil
}

func (b *Back) GetPlayerRatings(ctx context.Context, shortcode string) (ret []PlayerRating, _ error) {
	return ret, b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		mode, err := getModeByShortCode(tx, shortcode)
		if err != nil {
			return err
		}

		return tx.Select(&ret, `SELECT * FROM PlayerRating WHERE ModeID = ?`, mode.ID)
	})
}

// MatchDetails is a match with everything needed to display it.
type MatchDetails struct {
	Match   Match
	Mode    Mode
	Team1   []Player
	Team2   []Player
	Changes []RatingChange
}

// GetMatch accepts a full match ID or the short form shown in discord.
func (b *Back) GetMatch(ctx context.Context, id string) (ret MatchDetails, _ error) {
	return ret, b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		ret.Match, err = getMatchByShortID(tx, id)
		if err != nil {
			return err
		}

		ret.Mode, err = getModeByID(tx, ret.Match.ModeID)
		if err != nil {
			return err
		}

		players, err := getPlayersByIDs(tx, ret.Match.PlayerIDs())
		if err != nil {
			return err
		}
		ret.Team1 = orderedPlayers(players, ret.Match.TeamPlayerIDs(1))
		ret.Team2 = orderedPlayers(players, ret.Match.TeamPlayerIDs(2))

		ret.Changes, err = getRatingChangesForMatch(tx, ret.Match.ID)
		return err
	})
}

// GetReportedMatches lists matches awaiting an admin decision.
func (b *Back) GetReportedMatches(ctx context.Context) (ret []Match, _ error) {
	return ret, b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		ret, err = getMatchesByStatus(tx, MatchStatusReported)
		return err
	})
}
