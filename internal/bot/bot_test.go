package bot

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"scrim/internal/config"
	"scrim/internal/util"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	cmd, args := parseCommand("!Queue  2v2 ")
	assert.Equal(t, "!queue", cmd)
	assert.Equal(t, []string{"2v2"}, args)

	cmd, args = parseCommand("!status")
	assert.Equal(t, "!status", cmd)
	assert.Nil(t, args)

	cmd, args = parseCommand("   ")
	assert.Equal(t, "", cmd)
	assert.Nil(t, args)

	assert.Equal(t, "Our Lord", argsAsName([]string{"Our", "Lord"}))
}

func TestParseDiscordID(t *testing.T) {
	for _, v := range []string{"1234", "<@1234>", "<@!1234>"} {
		assert.Equal(t, "1234", parseDiscordID(v), v)
	}
}

func TestUserLimiter(t *testing.T) {
	limiter := newUserLimiter(0.001, 3)
	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("a"))
	}
	assert.False(t, limiter.Allow("a"))

	// Buckets are per user.
	assert.True(t, limiter.Allow("b"))
}

func TestUserLimiterPrune(t *testing.T) {
	limiter := newUserLimiter(0.001, 1)
	assert.True(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("a"))
	assert.True(t, limiter.Allow("b"))

	assert.Equal(t, 0, limiter.prune(time.Now().Add(-time.Minute)))
	assert.Equal(t, 2, limiter.size())

	assert.Equal(t, 2, limiter.prune(time.Now().Add(time.Second)))
	assert.Equal(t, 0, limiter.size())

	// A forgotten user starts over with a full bucket.
	assert.True(t, limiter.Allow("a"))
	assert.Equal(t, 1, limiter.size())
}

func TestTruncateMessage(t *testing.T) {
	short := "héllo"
	assert.Equal(t, short, truncateMessage(short))

	// Multi-byte characters count as one.
	exact := strings.Repeat("é", discordMessageMaxLen)
	assert.Equal(t, exact, truncateMessage(exact))

	long := strings.Repeat("é", discordMessageMaxLen+1)
	truncated := truncateMessage(long)
	assert.True(t, utf8.ValidString(truncated))
	assert.Equal(t, discordMessageMaxLen, utf8.RuneCountInString(truncated))
	assert.True(t, strings.HasSuffix(truncated, "é..."))
}

func TestDispatch(t *testing.T) {
	var called []string
	handler := func(name string) commandHandler {
		return func(context.Context, *discordgo.Message, []string, io.Writer) error {
			called = append(called, name)
			return nil
		}
	}

	bot := &Bot{
		config:        &config.Config{DiscordAdminUserIDs: []string{"admin"}},
		handlers:      map[string]commandHandler{"!status": handler("status")},
		adminHandlers: map[string]commandHandler{"!ban": handler("ban")},
	}

	message := func(author, content string) *discordgo.Message {
		return &discordgo.Message{Author: &discordgo.User{ID: author}, Content: content}
	}

	ctx := context.Background()
	require.NoError(t, bot.dispatch(ctx, message("user", "!status"), io.Discard))

	err := bot.dispatch(ctx, message("user", "!ban 42"), io.Discard)
	assert.True(t, util.IsPublic(err))

	require.NoError(t, bot.dispatch(ctx, message("admin", "!ban 42"), io.Discard))

	err = bot.dispatch(ctx, message("user", "!nope"), io.Discard)
	assert.True(t, util.IsPublic(err))

	assert.Equal(t, []string{"status", "ban"}, called)
}

func TestNilChannelWriter(t *testing.T) {
	var w *channelWriter
	n, err := w.Write([]byte("lost"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.NoError(t, w.Flush())
}
