// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Discord    DiscordConfig    `mapstructure:"discord"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Roles      RolesConfig      `mapstructure:"roles"`
	Gacha      GachaConfig      `mapstructure:"gacha"`
	Tournament TournamentConfig `mapstructure:"tournament"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// RedisConfig holds Redis connection configuration. Redis backs the rate
// limiter and the OAuth state store.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DiscordConfig holds the Discord OAuth2 application settings. BotToken is
// only needed when GuildID is set, for the guild membership gate.
type DiscordConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
	GuildID      string `mapstructure:"guild_id"`
	BotToken     string `mapstructure:"bot_token"`
}

// AuthConfig holds session token configuration.
type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

// RolesConfig holds the config-driven capability lists. Owner IDs bypass the
// daily draw gate; admin IDs may use the admin endpoints. Owners are implicitly
// admins.
type RolesConfig struct {
	AdminIDs []string `mapstructure:"admin_ids"`
	OwnerIDs []string `mapstructure:"owner_ids"`
}

// GachaConfig holds fortune card draw configuration.
type GachaConfig struct {
	PityThreshold  int     `mapstructure:"pity_threshold"`
	RateUpChance   float64 `mapstructure:"rate_up_chance"`
	CoinDrawCost   int64   `mapstructure:"coin_draw_cost"`
	GuaranteedTier string  `mapstructure:"guaranteed_tier"`
}

// TournamentConfig holds Halloween match generator configuration.
type TournamentConfig struct {
	MaxMatches     int `mapstructure:"max_matches"`
	MinComparisons int `mapstructure:"min_comparisons"`
	TopN           int `mapstructure:"top_n"`
	InferenceDepth int `mapstructure:"inference_depth"`
}

// RateLimitConfig holds per-user request limiting configuration.
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase,
	// e.g. SERVER_PORT, DATABASE_HOST, DISCORD_CLIENT_SECRET.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - we can use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "airona")
	v.SetDefault("database.name", "airona")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	// Redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	// Session defaults
	v.SetDefault("auth.session_ttl", "168h")

	// Gacha defaults
	v.SetDefault("gacha.pity_threshold", 20)
	v.SetDefault("gacha.rate_up_chance", 0.75)
	v.SetDefault("gacha.coin_draw_cost", 1)
	v.SetDefault("gacha.guaranteed_tier", "ultra_rare")

	// Tournament defaults
	v.SetDefault("tournament.max_matches", 30)
	v.SetDefault("tournament.min_comparisons", 3)
	v.SetDefault("tournament.top_n", 5)
	v.SetDefault("tournament.inference_depth", 1)

	// Rate limit defaults
	v.SetDefault("rate_limit.requests", 30)
	v.SetDefault("rate_limit.window", "1m")
}

// IsAdmin checks if a Discord user ID has admin capability.
func (c *Config) IsAdmin(discordID string) bool {
	for _, id := range c.Roles.AdminIDs {
		if id == discordID {
			return true
		}
	}
	return c.IsOwner(discordID)
}

// IsOwner checks if a Discord user ID is a site owner. Owners bypass the
// daily draw gate in addition to holding admin capability.
func (c *Config) IsOwner(discordID string) bool {
	for _, id := range c.Roles.OwnerIDs {
		if id == discordID {
			return true
		}
	}
	return false
}
