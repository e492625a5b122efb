package back

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"scrim/internal/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

var testPlayerNames = []string{ // nolint:gochecknoglobals
	"Darunia", "Nabooru", "Rauru", "Ruto", "Saria", "Zelda", "Impa",
	"Our Lord and Savior ZFG",
}

// testDiscordID returns the discord ID of the k-th fixture player.
func testDiscordID(k int) string {
	return fmt.Sprintf("10000000000000000%d", k)
}

func createFixturedTestBack(t *testing.T) *Back {
	path := filepath.Join(t.TempDir(), "test.db")

	migrator, err := migrate.New(
		"file://../../resources/migrations",
		"sqlite3://"+path,
	)
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	migrator.Close()

	conf := &config.Config{
		KFactor:              32,
		MatchmakingInterval:  time.Minute,
		DiscordBannedUserIDs: []string{"666"},
	}

	back, err := New("sqlite3", path+"?_foreign_keys=on", conf)
	require.NoError(t, err)
	t.Cleanup(func() {
		back.Close()
		os.Remove(path)
	})

	require.NoError(t, back.transaction(context.Background(), fixtures))

	return back
}

func fixtures(tx *sqlx.Tx) error {
	modes := []struct {
		name, shortCode string
		teamSize        float64
	}{
		{"Duel", "1v1", 1},
		{"Doubles", "2v2", 2},
	}

	for _, v := range modes {
		mode, err := NewMode(v.name, v.shortCode, v.teamSize)
		if err != nil {
			return err
		}
		if err := mode.insert(tx); err != nil {
			return err
		}
	}

	for k, v := range testPlayerNames {
		player := NewPlayer(v)
		player.DiscordID.SetValid(testDiscordID(k))
		if err := player.insert(tx); err != nil {
			return err
		}
	}

	return nil
}

// drainNotifications returns every notification sent so far.
func drainNotifications(back *Back) []Notification {
	var ret []Notification
	for {
		select {
		case notif := <-back.notifications:
			ret = append(ret, notif)
		default:
			return ret
		}
	}
}

func mustGetPlayer(t *testing.T, back *Back, k int) Player {
	player, err := back.GetPlayerByDiscordID(context.Background(), testDiscordID(k))
	require.NoError(t, err)
	return player
}

func mustGetRating(t *testing.T, back *Back, k int, shortCode string) PlayerRating {
	var ret PlayerRating
	require.NoError(t, back.transaction(context.Background(), func(tx *sqlx.Tx) error {
		mode, err := getModeByShortCode(tx, shortCode)
		if err != nil {
			return err
		}

		player, err := getPlayerByDiscordID(tx, testDiscordID(k))
		if err != nil {
			return err
		}

		ret, err = getPlayerRating(tx, player.ID, mode.ID)
		return err
	}))

	return ret
}
