package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	// DiscordListenIDs is a list of channel ID where the bot will listen and
	// accept commands. PMs are always listened to.
	DiscordListenIDs []string

	// Who is allowed to use admin commands (`!approve`, `!ban`, `!dev`…).
	DiscordAdminUserIDs []string

	// Who is not allowed to do anything, in addition to the Ban table.
	DiscordBannedUserIDs []string

	DiscordToken, WebToken string

	DatabasePath string
	HTTPAddr     string

	// KFactor is the Elo K-factor applied when approving matches.
	KFactor float64

	// MatchmakingInterval is the delay between two passes of the periodic
	// match former.
	MatchmakingInterval time.Duration

	Debug bool
}

var envOverrides = map[string]string{ // nolint:gochecknoglobals
	"DiscordToken": "SCRIM_DISCORD_TOKEN",
	"WebToken":     "SCRIM_WEB_TOKEN",
	"DatabasePath": "SCRIM_DATABASE_PATH",
	"HTTPAddr":     "SCRIM_HTTP_ADDR",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DatabasePath", "./scrim.db")
	v.SetDefault("HTTPAddr", "127.0.0.1:3001")
	v.SetDefault("KFactor", 32.0)
	v.SetDefault("MatchmakingInterval", 30*time.Second)
}

// NewFromUserConfigDir loads the configuration from the user config dir,
// see Load.
func NewFromUserConfigDir() (*Config, error) {
	path, err := getOrCreateUserConfigPath()
	if err != nil {
		return nil, err
	}

	return Load(path)
}

// Load reads a JSON configuration file, a missing file yields the default
// configuration. Secrets and paths can be overridden from the environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")
	setDefaults(v)

	for key, env := range envOverrides {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	log.Debugf("reading conf from %s", path)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "unable to read %s", path)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, errors.Wrap(err, "unable to decode config")
	}

	if c.KFactor <= 0 {
		return nil, fmt.Errorf("KFactor must be positive, got %v", c.KFactor)
	}
	if c.MatchmakingInterval <= 0 {
		return nil, fmt.Errorf("MatchmakingInterval must be positive, got %s", c.MatchmakingInterval)
	}

	return c, nil
}

func getOrCreateUserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(configDir, "scrim")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}

	return filepath.Join(dir, "config.json"), nil
}

// Write saves the configuration to path.
func (c *Config) Write(path string) error {
	log.Debugf("writing conf to %s", path)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "    ")
	if err := enc.Encode(c); err != nil {
		if err2 := f.Close(); err2 != nil {
			return fmt.Errorf("unable to close file (%s) after error: %w", err2, err)
		}

		return err
	}

	return f.Close()
}

func (c *Config) IsDiscordIDBanned(id string) bool {
	return contains(c.DiscordBannedUserIDs, id)
}

func (c *Config) IsDiscordIDAdmin(id string) bool {
	return contains(c.DiscordAdminUserIDs, id)
}

// IsListenedChannel tells if the bot should accept commands from a guild
// channel. An empty list means every channel.
func (c *Config) IsListenedChannel(channelID string) bool {
	return len(c.DiscordListenIDs) == 0 || contains(c.DiscordListenIDs, channelID)
}

func contains(haystack []string, needle string) bool {
	if needle == "" {
		return false
	}

	for _, v := range haystack {
		if v == needle {
			return true
		}
	}

	return false
}
