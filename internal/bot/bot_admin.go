package bot

import (
	"context"
	"fmt"
	"io"
	"strings"

	"scrim/internal/back"
	"scrim/internal/util"

	"github.com/bwmarrin/discordgo"
)

func (bot *Bot) cmdApprove(ctx context.Context, _ *discordgo.Message, args []string, w io.Writer) error {
	if len(args) != 1 {
		return util.ErrPublic("expected 1 argument: ID")
	}

	match, err := bot.back.ApproveMatch(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Match `%s` approved, ratings have been updated.", match.ID.Short())
	return nil
}

func (bot *Bot) cmdReject(ctx context.Context, _ *discordgo.Message, args []string, w io.Writer) error {
	if len(args) != 1 {
		return util.ErrPublic("expected 1 argument: ID")
	}

	match, err := bot.back.RejectMatch(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Match `%s` rejected.", match.ID.Short())
	return nil
}

// parseDiscordID accepts a raw ID or a mention.
func parseDiscordID(str string) string {
	str = strings.TrimPrefix(str, "<@")
	str = strings.TrimPrefix(str, "!")
	return strings.TrimSuffix(str, ">")
}

func (bot *Bot) cmdBan(ctx context.Context, _ *discordgo.Message, args []string, w io.Writer) error {
	if len(args) < 1 {
		return util.ErrPublic("expected at least 1 argument: DISCORDID [DURATION] [REASON]")
	}

	discordID := parseDiscordID(args[0])
	var (
		durationStr string
		reason      string
	)
	if len(args) > 1 {
		durationStr = args[1]
	}
	if len(args) > 2 {
		reason = strings.Join(args[2:], " ")
	}

	duration, err := back.ParseBanDuration(durationStr)
	if err != nil {
		return err
	}

	ban, err := bot.back.BanDiscordUser(ctx, discordID, duration, reason)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "<@%s> is now %s.", discordID, ban.String())
	return nil
}

func (bot *Bot) cmdUnban(ctx context.Context, _ *discordgo.Message, args []string, w io.Writer) error {
	if len(args) != 1 {
		return util.ErrPublic("expected 1 argument: DISCORDID")
	}

	discordID := parseDiscordID(args[0])
	if err := bot.back.UnbanDiscordUser(ctx, discordID); err != nil {
		return err
	}

	fmt.Fprintf(w, "<@%s> is no longer banned.", discordID)
	return nil
}
