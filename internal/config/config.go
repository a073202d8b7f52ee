// /internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// ErrMissingToken is returned by RequireToken when no bot token is set.
var ErrMissingToken = errors.New("DISCORD_TOKEN is not set")

// Config is the process-wide configuration. It is built once at startup and
// passed by reference; nothing reads the environment after New returns.
type Config struct {
	DiscordToken     string   `env:"DISCORD_TOKEN"`
	DiscordTokenFile string   `env:"DISCORD_TOKEN_FILE,file"`
	DeveloperID      string   `env:"DEVELOPER_ID"`
	GuildBlacklist   []string `env:"DISCORD_GUILD_BLACKLIST" envSeparator:","`

	StoragePath  string `env:"STORAGE_PATH" envDefault:"data/datastore.json"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"data/wigglebot.db"`
	PromptsPath  string `env:"PROMPTS_PATH" envDefault:"data/prompts.yaml"`

	AIProvider    string `env:"AI_PROVIDER" envDefault:"openai"`
	AIBaseURL     string `env:"AI_BASE_URL" envDefault:"https://api.deepseek.com"`
	AIKey         string `env:"AI_API_KEY"`
	AIKeyFile     string `env:"AI_API_KEY_FILE,file"`
	AIModel       string `env:"AI_MODEL" envDefault:"deepseek-chat"`
	AISmartModel  string `env:"AI_SMART_MODEL" envDefault:"deepseek-reasoner"`
	AIVisionModel string `env:"AI_VISION_MODEL" envDefault:"gpt-4o"`
	AIMaxTokens   int    `env:"AI_MAX_TOKENS" envDefault:"2048"`

	ImageProvider string `env:"IMAGE_PROVIDER" envDefault:"openai"`
	ImageBaseURL  string `env:"IMAGE_BASE_URL" envDefault:"https://api.openai.com/v1"`
	ImageKey      string `env:"IMAGE_API_KEY"`
	ImageKeyFile  string `env:"IMAGE_API_KEY_FILE,file"`
	ImageModel    string `env:"IMAGE_MODEL" envDefault:"dall-e-3"`

	GiphyKey     string `env:"GIPHY_API_KEY"`
	GiphyKeyFile string `env:"GIPHY_API_KEY_FILE,file"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	PostChunkSize  int `env:"POST_CHUNK_SIZE" envDefault:"2000"`
	ShinyOdds      int `env:"SHINY_ODDS" envDefault:"8191"`
	WorkerPoolSize int `env:"WORKER_POOL_SIZE" envDefault:"4"`
}

// New loads .env (if present) and parses the environment into a Config.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("[CONFIG] No .env file found, falling back to system environment variables")
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.resolveKeyFiles()

	if cfg.PostChunkSize <= 0 {
		return nil, fmt.Errorf("POST_CHUNK_SIZE must be positive, got %d", cfg.PostChunkSize)
	}
	if cfg.ShinyOdds <= 0 {
		return nil, fmt.Errorf("SHINY_ODDS must be positive, got %d", cfg.ShinyOdds)
	}
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = 1
	}

	return &cfg, nil
}

// resolveKeyFiles lets a *_FILE variable stand in for a missing inline secret.
func (c *Config) resolveKeyFiles() {
	pick := func(inline, file string) string {
		if inline != "" {
			return inline
		}
		return strings.TrimSpace(file)
	}
	c.DiscordToken = pick(c.DiscordToken, c.DiscordTokenFile)
	c.AIKey = pick(c.AIKey, c.AIKeyFile)
	c.ImageKey = pick(c.ImageKey, c.ImageKeyFile)
	c.GiphyKey = pick(c.GiphyKey, c.GiphyKeyFile)
}

// RequireToken fails when neither DISCORD_TOKEN nor DISCORD_TOKEN_FILE gave
// a token. Only the gateway front end needs one.
func (c *Config) RequireToken() error {
	if c.DiscordToken == "" {
		return ErrMissingToken
	}
	return nil
}

// IsGuildBlacklisted reports whether the bot should refuse to serve a guild.
func (c *Config) IsGuildBlacklisted(guildID string) bool {
	return slices.Contains(c.GuildBlacklist, guildID)
}

// IsDeveloper reports whether userID belongs to the configured developer.
func (c *Config) IsDeveloper(userID string) bool {
	return c.DeveloperID != "" && c.DeveloperID == userID
}
