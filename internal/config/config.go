package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/face-compare/internal/apierr"
	"github.com/kozaktomas/face-compare/internal/constants"
)

//go:embed messages.yaml
var messagesYAML []byte

type Config struct {
	API      APIConfig
	Session  SessionConfig
	Poll     PollConfig
	Log      LogConfig
	Messages MessagesConfig
}

type APIConfig struct {
	URL     string        // base address of the comparison service
	Timeout time.Duration // upper bound for every outbound call
	Locale  string        // preferred locale for fixed error messages
}

type SessionConfig struct {
	Store    string // file, memory, redis or sqlite
	Path     string // file or sqlite location (optional, defaults under the user config dir)
	RedisURL string // required for the redis store
}

// ResolvedPath returns Path, or the default location for the configured store.
func (c *SessionConfig) ResolvedPath() string {
	if c.Path != "" {
		return c.Path
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	name := constants.SessionFileName
	if c.Store == constants.SessionStoreSQLite {
		name = constants.SessionDBName
	}
	return filepath.Join(dir, constants.AppName, name)
}

type PollConfig struct {
	Interval    time.Duration
	MaxInterval time.Duration
	MaxErrors   int // consecutive transient errors tolerated while waiting
}

type LogConfig struct {
	Level  string
	Format string
}

type MessagesConfig struct {
	Fallback string                     `yaml:"fallback"`
	Locales  map[string]apierr.Messages `yaml:"locales"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envDuration reads a positive Go duration ("90s", "2m").
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var messages MessagesConfig
	if err := yaml.Unmarshal(messagesYAML, &messages); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded messages.yaml: " + err.Error())
	}

	return &Config{
		API: APIConfig{
			URL:     envString("FACECOMPARE_API_URL", constants.DefaultAPIURL),
			Timeout: envDuration("FACECOMPARE_TIMEOUT", constants.DefaultRequestTimeout),
			Locale:  envString("FACECOMPARE_LOCALE", "en"),
		},
		Session: SessionConfig{
			Store:    envString("FACECOMPARE_SESSION_STORE", constants.SessionStoreFile),
			Path:     os.Getenv("FACECOMPARE_SESSION_PATH"),
			RedisURL: os.Getenv("REDIS_URL"),
		},
		Poll: PollConfig{
			Interval:    envDuration("FACECOMPARE_POLL_INTERVAL", constants.DefaultPollInterval),
			MaxInterval: envDuration("FACECOMPARE_POLL_MAX_INTERVAL", constants.DefaultPollMaxInterval),
			MaxErrors:   envInt("FACECOMPARE_POLL_MAX_ERRORS", constants.DefaultPollMaxErrors),
		},
		Log: LogConfig{
			Level:  envString("LOG_LEVEL", "info"),
			Format: envString("LOG_FORMAT", "text"),
		},
		Messages: messages,
	}
}

// MessagesFor returns the message set best matching locale, falling back to
// the catalog's fallback locale.
func (c *Config) MessagesFor(locale string) apierr.Messages {
	names := make([]string, 0, len(c.Messages.Locales))
	for name := range c.Messages.Locales {
		if name != c.Messages.Fallback {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	// The matcher treats the first supported tag as the default.
	if _, ok := c.Messages.Locales[c.Messages.Fallback]; ok {
		names = append([]string{c.Messages.Fallback}, names...)
	}
	if len(names) == 0 {
		return apierr.DefaultMessages()
	}

	tags := make([]language.Tag, len(names))
	for i, name := range names {
		tags[i] = language.Make(name)
	}
	_, idx, _ := language.NewMatcher(tags).Match(language.Make(locale))
	return c.Messages.Locales[names[idx]]
}
