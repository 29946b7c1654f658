package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "ASONGADAY_CONFIG"
	logLevelEnv     = "LOG_LEVEL"
	logFormatEnv    = "LOG_FORMAT"

	twitterClientIDEnv     = "TWITTER_CLIENT_ID"
	twitterClientSecretEnv = "TWITTER_CLIENT_SECRET"
	twitterUserIDEnv       = "TWITTER_USER_ID"
	spotifyClientIDEnv     = "SPOTIFY_CLIENT_ID"
	spotifyClientSecretEnv = "SPOTIFY_CLIENT_SECRET"
	databaseDSNEnv         = "DATABASE_DSN"
	credentialFileEnv      = "CREDENTIAL_FILE"
	telegramTokenEnv       = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv      = "TELEGRAM_CHAT_ID"
	metricsAddrEnv         = "METRICS_ADDR"
)

// Store kinds for the persisted credential.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
)

// Catalog kinds.
const (
	CatalogSpotify = "spotify"
	CatalogFeed    = "feed"
	CatalogHTML    = "html"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Twitter       TwitterConfig      `yaml:"twitter"`
	History       HistoryConfig      `yaml:"history"`
	Compose       ComposeConfig      `yaml:"compose"`
	Catalog       CatalogConfig      `yaml:"catalog"`
	Credentials   CredentialsConfig  `yaml:"credentials"`
	Notifications NotificationConfig `yaml:"notifications"`
	Metrics       MetricsConfig      `yaml:"metrics"`
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SchedulerConfig defines when the daily run fires.
type SchedulerConfig struct {
	DailyAt  string         `yaml:"dailyAt"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// TwitterConfig identifies the publishing account and OAuth client.
type TwitterConfig struct {
	BaseURL      string `yaml:"baseUrl"`
	UserID       string `yaml:"userId"`
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
	ReplyTo      string `yaml:"replyTo"`
}

// HistoryConfig tunes history pagination and the dedup corpus.
type HistoryConfig struct {
	PageSize      int      `yaml:"pageSize"`
	Separator     string   `yaml:"separator"`
	SeriesMarkers []string `yaml:"seriesMarkers"`
}

// ComposeConfig controls post rendering.
type ComposeConfig struct {
	Epoch  time.Time `yaml:"epoch"`
	Header string    `yaml:"header"`
}

// CatalogConfig chooses and configures the candidate source.
type CatalogConfig struct {
	Kind    string        `yaml:"kind"`
	Spotify SpotifyConfig `yaml:"spotify"`
	Feed    FeedConfig    `yaml:"feed"`
	HTML    HTMLConfig    `yaml:"html"`
}

// SpotifyConfig points at a playlist.
type SpotifyConfig struct {
	AccountsURL  string `yaml:"accountsUrl"`
	APIURL       string `yaml:"apiUrl"`
	PlaylistID   string `yaml:"playlistId"`
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
}

// FeedConfig points at an RSS or Atom feed.
type FeedConfig struct {
	URL string `yaml:"url"`
}

// HTMLConfig describes how to scrape a catalog page.
type HTMLConfig struct {
	URL          string `yaml:"url"`
	Item         string `yaml:"item"`
	Title        string `yaml:"title"`
	Contributors string `yaml:"contributors"`
	Collection   string `yaml:"collection"`
	Link         string `yaml:"link"`
	Timestamp    string `yaml:"timestamp"`
}

// CredentialsConfig selects the credential sink.
type CredentialsConfig struct {
	Store    string         `yaml:"store"`
	File     string         `yaml:"file"`
	Database DatabaseConfig `yaml:"database"`
}

// DatabaseConfig describes Postgres connection details.
type DatabaseConfig struct {
	DSN     string `yaml:"dsn"`
	Table   string `yaml:"table"`
	Account string `yaml:"account"`
}

// NotificationConfig encapsulates outbound operator channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// MetricsConfig exposes Prometheus metrics in schedule mode.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads .env files and YAML configuration (if present) and applies
// environment overrides.
func Load() Config {
	for _, file := range []string{".env", ".env.local"} {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			log.Printf("config: cannot load %s: %v", file, err)
		}
	}

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

// Validate reports settings a run cannot proceed without.
func (c Config) Validate() error {
	var errs []error
	if c.Twitter.ClientID == "" || c.Twitter.ClientSecret == "" {
		errs = append(errs, errors.New("twitter client id and secret are required"))
	}
	if c.Twitter.UserID == "" {
		errs = append(errs, errors.New("twitter user id is required"))
	}

	switch c.Credentials.Store {
	case StoreFile:
		if c.Credentials.File == "" {
			errs = append(errs, errors.New("credential file path is required"))
		}
	case StorePostgres:
		if c.Credentials.Database.DSN == "" {
			errs = append(errs, errors.New("database dsn is required for the postgres credential store"))
		}
	default:
		errs = append(errs, errors.New("unknown credential store "+strconv.Quote(c.Credentials.Store)))
	}

	switch c.Catalog.Kind {
	case CatalogSpotify:
		if c.Catalog.Spotify.PlaylistID == "" || c.Catalog.Spotify.ClientID == "" || c.Catalog.Spotify.ClientSecret == "" {
			errs = append(errs, errors.New("spotify playlist id, client id and client secret are required"))
		}
	case CatalogFeed:
		if c.Catalog.Feed.URL == "" {
			errs = append(errs, errors.New("feed url is required"))
		}
	case CatalogHTML:
		if c.Catalog.HTML.URL == "" || c.Catalog.HTML.Item == "" || c.Catalog.HTML.Title == "" {
			errs = append(errs, errors.New("html catalog needs url, item and title selectors"))
		}
	default:
		errs = append(errs, errors.New("unknown catalog kind "+strconv.Quote(c.Catalog.Kind)))
	}

	return errors.Join(errs...)
}

func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		env    string
		target *string
	}{
		{logLevelEnv, &c.Logging.Level},
		{logFormatEnv, &c.Logging.Format},
		{twitterClientIDEnv, &c.Twitter.ClientID},
		{twitterClientSecretEnv, &c.Twitter.ClientSecret},
		{twitterUserIDEnv, &c.Twitter.UserID},
		{spotifyClientIDEnv, &c.Catalog.Spotify.ClientID},
		{spotifyClientSecretEnv, &c.Catalog.Spotify.ClientSecret},
		{databaseDSNEnv, &c.Credentials.Database.DSN},
		{credentialFileEnv, &c.Credentials.File},
		{telegramTokenEnv, &c.Notifications.Telegram.BotToken},
		{telegramChatIDEnv, &c.Notifications.Telegram.ChatID},
		{metricsAddrEnv, &c.Metrics.Addr},
	}

	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.env)); v != "" {
			*o.target = v
		}
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	setString(&base.Logging.Level, override.Logging.Level)
	setString(&base.Logging.Format, override.Logging.Format)

	setString(&base.Scheduler.DailyAt, override.Scheduler.DailyAt)
	setString(&base.Scheduler.Timezone, override.Scheduler.Timezone)

	setString(&base.Twitter.BaseURL, override.Twitter.BaseURL)
	setString(&base.Twitter.UserID, override.Twitter.UserID)
	setString(&base.Twitter.ClientID, override.Twitter.ClientID)
	setString(&base.Twitter.ClientSecret, override.Twitter.ClientSecret)
	setString(&base.Twitter.ReplyTo, override.Twitter.ReplyTo)

	if override.History.PageSize > 0 {
		base.History.PageSize = override.History.PageSize
	}
	setString(&base.History.Separator, override.History.Separator)
	if len(override.History.SeriesMarkers) > 0 {
		base.History.SeriesMarkers = override.History.SeriesMarkers
	}

	if !override.Compose.Epoch.IsZero() {
		base.Compose.Epoch = override.Compose.Epoch
	}
	setString(&base.Compose.Header, override.Compose.Header)

	setString(&base.Catalog.Kind, override.Catalog.Kind)
	setString(&base.Catalog.Spotify.AccountsURL, override.Catalog.Spotify.AccountsURL)
	setString(&base.Catalog.Spotify.APIURL, override.Catalog.Spotify.APIURL)
	setString(&base.Catalog.Spotify.PlaylistID, override.Catalog.Spotify.PlaylistID)
	setString(&base.Catalog.Spotify.ClientID, override.Catalog.Spotify.ClientID)
	setString(&base.Catalog.Spotify.ClientSecret, override.Catalog.Spotify.ClientSecret)
	setString(&base.Catalog.Feed.URL, override.Catalog.Feed.URL)
	if override.Catalog.HTML.URL != "" {
		base.Catalog.HTML = override.Catalog.HTML
	}

	setString(&base.Credentials.Store, override.Credentials.Store)
	setString(&base.Credentials.File, override.Credentials.File)
	setString(&base.Credentials.Database.DSN, override.Credentials.Database.DSN)
	setString(&base.Credentials.Database.Table, override.Credentials.Database.Table)
	setString(&base.Credentials.Database.Account, override.Credentials.Database.Account)

	setString(&base.Notifications.Telegram.BotToken, override.Notifications.Telegram.BotToken)
	setString(&base.Notifications.Telegram.ChatID, override.Notifications.Telegram.ChatID)

	setString(&base.Metrics.Addr, override.Metrics.Addr)

	return base
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:   LoggingConfig{Level: "info", Format: "text"},
		Scheduler: SchedulerConfig{DailyAt: "12:15", Timezone: defaultTimezone, location: tz},
		Twitter: TwitterConfig{
			BaseURL: "https://api.twitter.com",
			UserID:  "1232195996",
		},
		History: HistoryConfig{PageSize: 100, Separator: " | "},
		Compose: ComposeConfig{
			Epoch:  time.Unix(1673136000, 0).UTC(),
			Header: "a song a day, day {n}",
		},
		Catalog: CatalogConfig{
			Kind: CatalogSpotify,
			Spotify: SpotifyConfig{
				AccountsURL: "https://accounts.spotify.com",
				APIURL:      "https://api.spotify.com",
				PlaylistID:  "4AdQ3isdewnA8odZ1JtfTr",
			},
		},
		Credentials: CredentialsConfig{
			Store: StoreFile,
			File:  "twitter_token.json",
			Database: DatabaseConfig{
				Table:   "credentials",
				Account: "default",
			},
		},
	}
}
