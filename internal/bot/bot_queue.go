package bot

import (
	"context"
	"fmt"
	"io"
	"strings"

	"scrim/internal/elo"
	"scrim/internal/util"

	"github.com/bwmarrin/discordgo"
)

func (bot *Bot) cmdQueue(ctx context.Context, m *discordgo.Message, args []string, w io.Writer) error {
	shortcode := strings.Join(args, " ")
	mode, err := bot.back.JoinQueue(ctx, m.Author.ID, shortcode)
	if err != nil {
		return err
	}

	status, err := bot.back.GetPlayerStatus(ctx, m.Author.ID)
	if err != nil {
		return err
	}

	if status.ActiveMatch != nil {
		// The match notification has all the details.
		fmt.Fprintf(w, "You joined the `%s` queue and a match was found right away.", mode.ShortCode)
		return nil
	}

	fmt.Fprintf(
		w,
		"You joined the `%s` queue, you will be notified when %d players are waiting.\n"+
			"Use `!leave %s` to leave the queue.",
		mode.ShortCode, mode.PlayersPerMatch(), mode.ShortCode,
	)

	return nil
}

func (bot *Bot) cmdLeave(ctx context.Context, m *discordgo.Message, args []string, w io.Writer) error {
	shortcode := strings.Join(args, " ")
	if err := bot.back.LeaveQueue(ctx, m.Author.ID, shortcode); err != nil {
		return err
	}

	if shortcode == "" {
		fmt.Fprint(w, "You left all queues.")
	} else {
		fmt.Fprintf(w, "You left the `%s` queue.", shortcode)
	}

	return nil
}

func (bot *Bot) cmdReport(ctx context.Context, m *discordgo.Message, args []string, w io.Writer) error {
	if len(args) != 1 {
		return util.ErrPublic("expected exactly one argument: `win`, `loss`, or `draw`")
	}

	outcome, err := elo.ParseOutcome(strings.ToLower(args[0]))
	if err != nil {
		return util.ErrPublic("expected one of `win`, `loss`, or `draw`")
	}

	match, err := bot.back.ReportActiveMatch(ctx, m.Author.ID, outcome)
	if err != nil {
		return err
	}

	fmt.Fprintf(
		w,
		"You reported match `%s` as a %s for your team, an admin will review it shortly.",
		match.ID.Short(), outcome,
	)

	return nil
}
