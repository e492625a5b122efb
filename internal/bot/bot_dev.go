package bot

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"scrim/internal/util"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

// adminLinkValidity is how long a signed admin link can be used.
const adminLinkValidity = 24 * time.Hour

func (bot *Bot) cmdDev(ctx context.Context, m *discordgo.Message, args []string, out io.Writer) error {
	if len(args) < 1 {
		return util.ErrPublic("need a subcommand")
	}

	switch args[0] {
	case "panic":
		panic("an admin asked me to panic")
	case "uptime":
		fmt.Fprintf(out, "The bot has been online for %s", util.FormatDuration(time.Since(bot.startedAt)))
	case "error":
		return util.ErrPublic("here's your error")
	case "url":
		fmt.Fprintf(
			out,
			"https://discord.com/api/oauth2/authorize?client_id=%s&scope=bot&permissions=%d",
			bot.dg.State.User.ID,
			discordgo.PermissionViewChannel|discordgo.PermissionSendMessages|
				discordgo.PermissionEmbedLinks|discordgo.PermissionManageMessages,
		)
	case "setannounce": // SHORTCODE
		shortcode := strings.Join(args[1:], " ")
		if err := bot.back.SetModeAnnounceChannel(ctx, shortcode, m.ChannelID); err != nil {
			return err
		}

		channel := newChannelWriter(bot.dg, m.ChannelID)
		defer channel.Flush()
		fmt.Fprintf(channel, "Matches for mode `%s` will now be announced in this channel.", shortcode)
	case "link": // approve|reject ID
		if len(args) != 3 {
			return util.ErrPublic("expected 2 arguments: approve|reject ID")
		}

		link, err := bot.adminMatchLink(ctx, args[1], args[2])
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "POST to this link within %s:\n<%s>", adminLinkValidity, link)
	default:
		return util.ErrPublic(fmt.Sprintf("unknown subcommand `%s`", args[0]))
	}

	return nil
}

func (bot *Bot) adminMatchLink(ctx context.Context, action, id string) (string, error) {
	if action != "approve" && action != "reject" {
		return "", util.ErrPublic("the action must be `approve` or `reject`")
	}

	details, err := bot.back.GetMatch(ctx, id)
	if err != nil {
		return "", err
	}

	if bot.config.WebToken == "" {
		return "", errors.New("no WebToken configured")
	}

	return bot.config.AdminMatchURL(details.Match.ID.String(), action, adminLinkValidity)
}
