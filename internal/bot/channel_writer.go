package bot

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// discordMessageMaxLen is the maximum length of a message content.
const discordMessageMaxLen = 2000

// channelWriter outputs messages to a Discord channel (or private message)
// when flushed, it can be reused right after flushing to send a new message.
type channelWriter struct {
	channelID string
	dg        *discordgo.Session
	buf       bytes.Buffer

	debugInfo string
}

func newUserChannelWriter(dg *discordgo.Session, userID string) (*channelWriter, error) {
	if userID == "" {
		log.Warn("skipping creating writer for empty Discord user ID")
		return nil, nil
	}

	channel, err := dg.UserChannelCreate(userID)
	if err != nil {
		return nil, fmt.Errorf("unable to create user channel: %w", err)
	}

	ret := newChannelWriter(dg, channel.ID)
	ret.debugInfo = fmt.Sprintf("<to user %s (chan %s)>", userID, channel.ID)

	return ret, nil
}

func newChannelWriter(dg *discordgo.Session, channelID string) *channelWriter {
	if channelID == "" {
		log.Warn("skipping creating writer for empty Discord channel ID")
		return nil
	}

	return &channelWriter{
		dg:        dg,
		channelID: channelID,
		debugInfo: fmt.Sprintf("<to chan %s>", channelID),
	}
}

func (w *channelWriter) Write(p []byte) (int, error) {
	if w == nil {
		return len(p), nil
	}

	return w.buf.Write(p)
}

func (w *channelWriter) Reset() {
	if w == nil {
		return
	}

	w.buf.Reset()
}

func (w *channelWriter) Flush() error {
	if w == nil || w.buf.Len() <= 0 {
		return nil
	}

	content := truncateMessage(w.buf.String())

	_, err := w.dg.ChannelMessageSend(w.channelID, content)
	log.Debugf("%s: %s", w.debugInfo, content)

	w.buf.Reset()
	return err
}

// truncateMessage shortens content to fit in a single Discord message, the
// limit is counted in characters.
func truncateMessage(content string) string {
	if utf8.RuneCountInString(content) <= discordMessageMaxLen {
		return content
	}

	return string([]rune(content)[:discordMessageMaxLen-3]) + "..."
}
