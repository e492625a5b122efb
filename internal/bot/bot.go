package bot

import (
	"context"
	"fmt"
	"io"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"scrim/internal/back"
	"scrim/internal/config"
	"scrim/internal/util"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

type commandHandler func(ctx context.Context, m *discordgo.Message, args []string, w io.Writer) error

// commandTimeout bounds the time spent in the back for a single command.
const commandTimeout = 10 * time.Second

type Bot struct {
	back   *back.Back
	config *config.Config

	startedAt time.Time
	dg        *discordgo.Session
	limiter   *userLimiter

	handlers      map[string]commandHandler
	adminHandlers map[string]commandHandler
}

func New(back *back.Back, conf *config.Config) (*Bot, error) {
	dg, err := discordgo.New("Bot " + conf.DiscordToken)
	if err != nil {
		return nil, err
	}

	dg.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	bot := &Bot{
		back:      back,
		config:    conf,
		dg:        dg,
		startedAt: time.Now(),
		limiter:   newUserLimiter(1, 3),
	}

	dg.AddHandler(bot.handleMessage)

	bot.handlers = map[string]commandHandler{
		"!help":        bot.cmdHelp,
		"!modes":       bot.cmdModes,
		"!register":    bot.cmdRegister,
		"!rename":      bot.cmdRename,
		"!status":      bot.cmdStatus,
		"!leaderboard": bot.cmdLeaderboard,

		"!queue":  bot.cmdQueue,
		"!leave":  bot.cmdLeave,
		"!report": bot.cmdReport,
	}

	bot.adminHandlers = map[string]commandHandler{
		"!approve": bot.cmdApprove,
		"!reject":  bot.cmdReject,
		"!ban":     bot.cmdBan,
		"!unban":   bot.cmdUnban,
		"!dev":     bot.cmdDev,
	}

	return bot, nil
}

func (bot *Bot) Serve(wg *sync.WaitGroup, done <-chan struct{}) {
	log.Info("starting Discord bot")
	wg.Add(1)
	defer wg.Done()
	if err := bot.dg.Open(); err != nil {
		log.Panic(err)
	}

	notifications := bot.back.GetNotificationsChan()
	prune := time.NewTicker(limiterIdleTTL)
	defer prune.Stop()

	for {
		select {
		case now := <-prune.C:
			if n := bot.limiter.prune(now.Add(-limiterIdleTTL)); n > 0 {
				log.Debugf("forgot rate limits of %d idle users", n)
			}
		case notif := <-notifications:
			if err := bot.sendNotification(notif); err != nil {
				log.Errorf("unable to send notification: %s", err)
			}
		case <-done:
			if err := bot.dg.Close(); err != nil {
				log.Errorf("could not close Discord bot: %s", err)
			}
			return
		}
	}
}

func (bot *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore webooks, self, bots, non-commands.
	if m.Author == nil || m.Author.ID == s.State.User.ID ||
		m.Author.Bot || !strings.HasPrefix(m.Content, "!") {
		return
	}

	// PMs are always listened to.
	if m.GuildID != "" && !bot.config.IsListenedChannel(m.ChannelID) {
		return
	}

	logger := log.WithFields(log.Fields{
		"author":  fmt.Sprintf("%s(%s)", m.Author.String(), m.Author.ID),
		"guild":   m.GuildID,
		"channel": m.ChannelID,
	})
	logger.Info(m.Content)

	if bot.config.IsDiscordIDBanned(m.Author.ID) {
		logger.Info("ignoring banned user")
		return
	}

	out, err := newUserChannelWriter(s, m.Author.ID)
	if err != nil {
		logger.Errorf("could not create channel writer: %s", err)
	}
	defer func() {
		if err := out.Flush(); err != nil {
			logger.Errorf("could not send message: %s", err)
		}
	}()

	if !bot.limiter.Allow(m.Author.ID) {
		fmt.Fprint(out, "You are sending commands too fast, please wait a few seconds.")
		return
	}

	defer func() {
		r := recover()
		if r != nil {
			out.Reset()
			fmt.Fprint(out, "Someting went very wrong, please tell an admin.")
			logger.Error("panic: ", r)
			logger.Error(string(debug.Stack()))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := bot.dispatch(ctx, m.Message, out); err != nil {
		out.Reset()
		fmt.Fprintln(out, "There was an error processing your command.")

		if util.IsPublic(err) {
			fmt.Fprintf(out, "```%s\n```\nIf you need help, send `!help`.", err)
		} else {
			fmt.Fprint(out, "An admin will check the logs when they have time.")
		}

		logger.Errorf("failed to process command: %s", err)
	}

	if err := bot.maybeCleanupMessage(s, m.ChannelID, m.Message.ID); err != nil {
		logger.Errorf("unable to cleanup message: %s", err)
	}
}

func (bot *Bot) maybeCleanupMessage(s *discordgo.Session, channelID string, messageID string) error {
	channel, err := s.Channel(channelID)
	if err != nil {
		return err
	}

	if channel.Type != discordgo.ChannelTypeGuildText {
		return nil
	}

	if err := s.ChannelMessageDelete(channelID, messageID); err != nil {
		log.Errorf("unable to delete message: %s", err)
	}

	return nil
}

func parseCommand(cmd string) (string, []string) {
	parts := strings.Fields(cmd)

	switch len(parts) {
	case 0:
		return "", nil
	case 1:
		return strings.ToLower(parts[0]), nil
	default:
		return strings.ToLower(parts[0]), parts[1:]
	}
}

func argsAsName(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func (bot *Bot) dispatch(ctx context.Context, m *discordgo.Message, w io.Writer) error {
	command, args := parseCommand(m.Content)
	if handler, ok := bot.handlers[command]; ok {
		return handler(ctx, m, args, w)
	}

	if handler, ok := bot.adminHandlers[command]; ok {
		if !bot.config.IsDiscordIDAdmin(m.Author.ID) {
			return util.ErrPublic(fmt.Sprintf("`%s` is reserved to admins", command))
		}

		return handler(ctx, m, args, w)
	}

	return util.ErrPublic(fmt.Sprintf("invalid command: %v", m.Content))
}

func (bot *Bot) cmdHelp(_ context.Context, m *discordgo.Message, _ []string, w io.Writer) error {
	fmt.Fprint(w, strings.ReplaceAll(`Available commands:
'''
# Management
!help                  # display this help message
!modes                 # list modes and how many players are waiting
!register [NAME]       # create your account and link it to your Discord account
!rename NAME           # set your display name to NAME
!status                # display your queues, current match, and ratings
!leaderboard SHORTCODE # display the best players of a mode

# Playing
!queue SHORTCODE       # wait for a match in the given mode (see !modes)
!leave [SHORTCODE]     # leave a queue, or all of them
!report win|loss|draw  # report the result of your current match
'''`, "'''", "```"))

	if !bot.config.IsDiscordIDAdmin(m.Author.ID) {
		return nil
	}

	fmt.Fprint(w, strings.ReplaceAll(`
Admin-only commands:
'''
!approve ID                      apply the reported result of a match
!reject ID                       cancel a match without rating changes
!ban DISCORDID [DURATION] [WHY]  ban an user from queueing (eg. 12h, 7d)
!unban DISCORDID                 lift a ban
!dev error                       error out
!dev panic                       panic and abort
!dev uptime                      display for how long the server has been running
!dev url                         display the link to use when adding the bot to a new server
!dev setannounce SHORTCODE       announce matches of a mode in this channel
!dev link approve|reject ID      get a signed web link to decide a match
'''`, "'''", "```"))

	return nil
}
