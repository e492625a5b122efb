package bot

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"scrim/internal/util"

	"github.com/bwmarrin/discordgo"
)

// leaderboardSize is how many players !leaderboard shows.
const leaderboardSize = 20

func (bot *Bot) cmdModes(ctx context.Context, _ *discordgo.Message, _ []string, out io.Writer) error {
	modes, err := bot.back.GetModesWithQueueSize(ctx)
	if err != nil {
		return err
	}

	if len(modes) == 0 {
		fmt.Fprint(out, "There are no modes yet.")
		return nil
	}

	fmt.Fprint(out, "```\n")
	table := tabwriter.NewWriter(out, 0, 0, 1, ' ', 0)
	fmt.Fprintln(table, "shortcode\tname\tteams\tqueued")
	fmt.Fprintln(table, "\t\t\t")
	for _, v := range modes {
		fmt.Fprintf(
			table, "%s\t%s\t%dv%d\t%d/%d\n",
			v.Mode.ShortCode, v.Mode.Name,
			v.Mode.TeamSize, v.Mode.TeamSize,
			v.QueueSize, v.Mode.PlayersPerMatch(),
		)
	}
	table.Flush()
	fmt.Fprint(out, "```")

	return nil
}

func (bot *Bot) cmdLeaderboard(ctx context.Context, _ *discordgo.Message, args []string, out io.Writer) error {
	shortcode := strings.Join(args, " ")
	entries, err := bot.back.GetLeaderboardForShortcode(ctx, shortcode)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintf(out, "Nobody has a rating in `%s` yet.", shortcode)
		return nil
	}

	if len(entries) > leaderboardSize {
		entries = entries[:leaderboardSize]
	}

	fmt.Fprintf(out, "Leaderboard for `%s`:\n```\n", shortcode)
	table := tabwriter.NewWriter(out, 0, 0, 1, ' ', 0)
	for k, v := range entries {
		fmt.Fprintf(
			table, "%d.\t%s\t%s\t%dW %dL %dD\n",
			k+1, v.PlayerName, util.FormatRating(v.Rating, false),
			v.Wins, v.Losses, v.Draws,
		)
	}
	table.Flush()
	fmt.Fprint(out, "```")

	return nil
}
