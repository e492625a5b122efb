package bot

import (
	"context"
	"fmt"
	"io"

	"scrim/internal/util"

	"github.com/bwmarrin/discordgo"
)

func (bot *Bot) cmdRename(ctx context.Context, m *discordgo.Message, args []string, out io.Writer) error {
	if len(args) < 1 {
		return util.ErrPublic("your forgot to tell me your desired name")
	}

	name := argsAsName(args)
	if err := bot.back.UpdateDiscordPlayerName(ctx, m.Author.ID, name); err != nil {
		return err
	}

	fmt.Fprintf(out, "You'll be henceforth known as `%s` on the leaderboards.", name)
	return nil
}

func (bot *Bot) cmdRegister(ctx context.Context, m *discordgo.Message, args []string, out io.Writer) error {
	name := argsAsName(args)
	if name == "" {
		name = m.Author.Username
	}

	if _, err := bot.back.RegisterDiscordPlayer(ctx, m.Author.ID, name); err != nil {
		return err
	}

	fmt.Fprintf(out, "You have been registered as `%s`, see you on the leaderboards.", name)
	return nil
}

func (bot *Bot) cmdStatus(ctx context.Context, m *discordgo.Message, _ []string, out io.Writer) error {
	status, err := bot.back.GetPlayerStatus(ctx, m.Author.ID)
	if err != nil {
		return err
	}

	player, ratings, err := bot.back.GetPlayerRatingsByDiscordID(ctx, m.Author.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Hi `%s`, %s.\n", player.Name, status.String())
	if len(ratings) == 0 {
		fmt.Fprint(out, "You don't have any rating yet.")
		return nil
	}

	modes, err := bot.back.GetModesMap(ctx)
	if err != nil {
		return err
	}

	fmt.Fprint(out, "Your ratings:\n```\n")
	for _, v := range ratings {
		fmt.Fprintf(
			out, "%-8s %5s  %dW %dL %dD\n",
			modes[v.ModeID].ShortCode, util.FormatRating(v.Rating, false),
			v.Wins, v.Losses, v.Draws,
		)
	}
	fmt.Fprint(out, "```")

	return nil
}
