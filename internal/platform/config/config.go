package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AltAPIPlaceholder marks where the query is substituted into MLBB_ALT_API.
const AltAPIPlaceholder = "{}"

// Config captures process level configuration.
type Config struct {
	Server       Server
	Log          Log
	Upstreams    Upstreams
	HTTP         HTTP
	Cache        Cache
	Conversation Conversation
	Redis        RedisConfig
	Database     DatabaseConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr string
}

// Log selects the slog handler.
type Log struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

// Upstreams holds the base URLs of every third-party API the bot reads from.
type Upstreams struct {
	AvatarUsersURL   string
	AvatarFriendsURL string
	AvatarGroupsURL  string
	AvatarBadgesURL  string
	AvatarProfileURL string
	ValuationURL     string
	MLBBURL          string
	// MLBBAltTemplate is an operator supplied URL with exactly one "{}".
	MLBBAltTemplate string
}

// HTTP configures the shared outbound client.
type HTTP struct {
	AvatarTimeout time.Duration
	MLBBTimeout   time.Duration
	MaxRetries    int
	UserAgent     string
}

// Cache configures the lookup result cache. A zero TTL disables it.
type Cache struct {
	TTL  time.Duration
	Size int
}

// Conversation configures how long an awaiting state survives.
type Conversation struct {
	TTL time.Duration
}

// RedisConfig is optional; an empty URL keeps conversation state in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig is optional; an empty URL keeps lookup history in memory.
type DatabaseConfig struct {
	URL          string
	MaxConns     int32
	HistoryLimit int
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var errs []string
	dur := func(key string, def time.Duration) time.Duration {
		v, err := durationEnv(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}
	num := func(key string, def int) int {
		v, err := intEnv(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}

	addr := os.Getenv("LOOKUPBOT_ADDR")
	if addr == "" {
		addr = ":" + envOr("PORT", "5000")
	}

	cfg := Config{
		Server: Server{Addr: addr},
		Log: Log{
			Level:  strings.ToLower(envOr("LOOKUPBOT_LOG_LEVEL", "info")),
			Format: strings.ToLower(envOr("LOOKUPBOT_LOG_FORMAT", "text")),
		},
		Upstreams: Upstreams{
			AvatarUsersURL:   envOr("AVATAR_USERS_URL", "https://users.roblox.com"),
			AvatarFriendsURL: envOr("AVATAR_FRIENDS_URL", "https://friends.roblox.com"),
			AvatarGroupsURL:  envOr("AVATAR_GROUPS_URL", "https://groups.roblox.com"),
			AvatarBadgesURL:  envOr("AVATAR_BADGES_URL", "https://badges.roblox.com"),
			AvatarProfileURL: envOr("AVATAR_PROFILE_URL", "https://www.roblox.com"),
			ValuationURL:     envOr("VALUATION_URL", "https://www.rolimons.com"),
			MLBBURL:          envOr("MLBB_URL", "https://api.merculet.io"),
			MLBBAltTemplate:  os.Getenv("MLBB_ALT_API"),
		},
		HTTP: HTTP{
			AvatarTimeout: dur("LOOKUPBOT_AVATAR_TIMEOUT", 8*time.Second),
			MLBBTimeout:   dur("LOOKUPBOT_MLBB_TIMEOUT", 10*time.Second),
			MaxRetries:    num("LOOKUPBOT_HTTP_RETRIES", 3),
			UserAgent:     envOr("LOOKUPBOT_USER_AGENT", "LookupBot/1.0"),
		},
		Cache: Cache{
			TTL:  dur("LOOKUPBOT_CACHE_TTL", 0),
			Size: num("LOOKUPBOT_CACHE_SIZE", 512),
		},
		Conversation: Conversation{
			TTL: dur("LOOKUPBOT_CONVERSATION_TTL", 10*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     num("REDIS_POOL_SIZE", 10),
			MinIdleConns: num("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  dur("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  dur("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: dur("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxConns:     int32(num("DATABASE_MAX_CONNS", 4)),
			HistoryLimit: num("LOOKUPBOT_HISTORY_LIMIT", 200),
		},
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate enforces cross-field invariants that env parsing cannot.
func (c Config) Validate() error {
	if t := c.Upstreams.MLBBAltTemplate; t != "" {
		if n := strings.Count(t, AltAPIPlaceholder); n != 1 {
			return fmt.Errorf("MLBB_ALT_API must contain exactly one %q placeholder, found %d", AltAPIPlaceholder, n)
		}
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("LOOKUPBOT_HTTP_RETRIES must not be negative")
	}
	if c.HTTP.AvatarTimeout <= 0 || c.HTTP.MLBBTimeout <= 0 {
		return fmt.Errorf("upstream timeouts must be positive")
	}
	if c.Cache.TTL > 0 && c.Cache.Size <= 0 {
		return fmt.Errorf("LOOKUPBOT_CACHE_SIZE must be positive when caching is enabled")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("LOOKUPBOT_LOG_FORMAT must be text or json, got %q", c.Log.Format)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
