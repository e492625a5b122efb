package back

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"scrim/internal/elo"
	"scrim/internal/util"
)

type NotificationRecipientType int

const (
	NotificationRecipientTypeDiscordChannel NotificationRecipientType = 0
	NotificationRecipientTypeDiscordUser    NotificationRecipientType = 1
)

type NotificationType int

const (
	NotificationTypeMatchFormed NotificationType = iota
	NotificationTypeMatchReported
	NotificationTypeMatchDecided
	NotificationTypeQueueKick
)

type Notification struct {
	RecipientType NotificationRecipientType
	Recipient     string
	Type          NotificationType

	body bytes.Buffer
}

func (n *Notification) Printf(str string, args ...interface{}) (int, error) {
	return fmt.Fprintf(&n.body, str, args...)
}

func (n *Notification) Print(args ...interface{}) (int, error) {
	return fmt.Fprint(&n.body, args...)
}

func (n *Notification) Read(p []byte) (int, error) {
	return n.body.Read(p)
}

func NotificationTypeName(typ NotificationType) string {
	switch typ {
	case NotificationTypeMatchFormed:
		return "MatchFormed"
	case NotificationTypeMatchReported:
		return "MatchReported"
	case NotificationTypeMatchDecided:
		return "MatchDecided"
	case NotificationTypeQueueKick:
		return "QueueKick"
	default:
		return "invalid"
	}
}

func NotificationRecipientTypeName(typ NotificationRecipientType) string {
	switch typ {
	case NotificationRecipientTypeDiscordChannel:
		return "DiscordChannel"
	case NotificationRecipientTypeDiscordUser:
		return "DiscordUser"
	default:
		return "invalid"
	}
}

// For debugging purposes only.
func (n *Notification) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(
		&buf,
		"type %s, recipient type %s \"%s\"",
		NotificationTypeName(n.Type),
		NotificationRecipientTypeName(n.RecipientType),
		n.Recipient,
	)

	// HACK: Ensure its on one line (and safe to print)
	content, _ := json.Marshal(n.body.String())
	fmt.Fprintf(&buf, ", contents: %s", string(content))

	return buf.String()
}

func teamNames(players []Player) string {
	names := make([]string, len(players))
	for k := range players {
		names[k] = players[k].Name
	}

	return strings.Join(names, ", ")
}

// matchFormedNotifications announces a match in the mode channel and tells
// each player privately which team they are on.
func matchFormedNotifications(mode Mode, match Match, team1, team2 []Player) []Notification {
	ret := make([]Notification, 0, len(team1)+len(team2)+1)

	announce := Notification{
		RecipientType: NotificationRecipientTypeDiscordChannel,
		Recipient:     mode.AnnounceDiscordChannelID.String,
		Type:          NotificationTypeMatchFormed,
	}
	announce.Printf(
		"A `%s` match is starting (`%s`).\n**Team 1:** %s\n**Team 2:** %s",
		mode.ShortCode, match.ID.Short(), teamNames(team1), teamNames(team2),
	)
	ret = append(ret, announce)

	dm := func(player Player, team int, mates, opponents []Player) {
		notif := Notification{
			RecipientType: NotificationRecipientTypeDiscordUser,
			Recipient:     player.DiscordID.String,
			Type:          NotificationTypeMatchFormed,
		}
		notif.Printf("Your `%s` match `%s` is ready, you are on team %d.\n", mode.ShortCode, match.ID.Short(), team)
		if len(mates) > 1 {
			notif.Printf("Your team: %s\n", teamNames(mates))
		}
		notif.Printf("Your opponents: %s\n", teamNames(opponents))
		notif.Print("Once you are done, use `!report win`, `!report loss`, or `!report draw`.")
		ret = append(ret, notif)
	}

	for _, v := range team1 {
		dm(v, 1, team1, team2)
	}
	for _, v := range team2 {
		dm(v, 2, team2, team1)
	}

	return ret
}

func matchReportedNotification(mode Mode, match Match, reporter Player) Notification {
	notif := Notification{
		RecipientType: NotificationRecipientTypeDiscordChannel,
		Recipient:     mode.AnnounceDiscordChannelID.String,
		Type:          NotificationTypeMatchReported,
	}

	result := "a draw"
	switch match.Outcome {
	case elo.OutcomeWin:
		result = "a win for team 1"
	case elo.OutcomeLoss:
		result = "a win for team 2"
	}

	notif.Printf(
		"%s reported match `%s` as %s, waiting for an admin to approve it.",
		reporter.Name, match.ID.Short(), result,
	)

	return notif
}

func matchDecidedNotifications(mode Mode, match Match, players map[util.UUIDAsBlob]Player, changes []RatingChange) []Notification {
	ret := make([]Notification, 0, len(changes)+1)

	announce := Notification{
		RecipientType: NotificationRecipientTypeDiscordChannel,
		Recipient:     mode.AnnounceDiscordChannelID.String,
		Type:          NotificationTypeMatchDecided,
	}

	if match.Status == MatchStatusRejected {
		announce.Printf("The result of match `%s` was rejected, ratings are unchanged.", match.ID.Short())
		ret = append(ret, announce)

		for _, v := range match.Entries {
			notif := Notification{
				RecipientType: NotificationRecipientTypeDiscordUser,
				Recipient:     players[v.PlayerID].DiscordID.String,
				Type:          NotificationTypeMatchDecided,
			}
			notif.Printf("The result of your match `%s` was rejected by an admin.", match.ID.Short())
			ret = append(ret, notif)
		}

		return ret
	}

	announce.Printf("Match `%s` has been approved:\n", match.ID.Short())
	for _, v := range changes {
		announce.Printf(
			"%s: %s (%s)\n",
			players[v.PlayerID].Name,
			util.FormatRating(v.RatingAfter, false),
			util.FormatRating(v.Delta, true),
		)
	}
	ret = append(ret, announce)

	for _, v := range changes {
		notif := Notification{
			RecipientType: NotificationRecipientTypeDiscordUser,
			Recipient:     players[v.PlayerID].DiscordID.String,
			Type:          NotificationTypeMatchDecided,
		}
		notif.Printf(
			"Your match `%s` has been approved, your `%s` rating is now %s (%s).",
			match.ID.Short(), mode.ShortCode,
			util.FormatRating(v.RatingAfter, false),
			util.FormatRating(v.Delta, true),
		)
		ret = append(ret, notif)
	}

	return ret
}

func queueKickNotification(player Player, mode Mode, reason string) Notification {
	notif := Notification{
		RecipientType: NotificationRecipientTypeDiscordUser,
		Recipient:     player.DiscordID.String,
		Type:          NotificationTypeQueueKick,
	}
	notif.Printf("You have been removed from the `%s` queue: %s", mode.ShortCode, reason)

	return notif
}
