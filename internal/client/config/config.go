package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/dmitrijs2005/brightstudy/internal/client/models"
)

// Config holds runtime settings for the sync client, its API and the tutor.
type Config struct {
	ConfigFile string

	RemoteURL string
	RemoteKey string
	Kinds     []string

	DataDir      string
	DatabasePath string

	RequestTimeout time.Duration
	AssetTimeout   time.Duration
	SyncInterval   time.Duration

	ListenAddr string
	APISecret  string
	TokenTTL   time.Duration

	LogLevel  string
	LogFormat string
	LogFile   string

	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string

	AIBaseURL string
	AIKey     string
	AIModel   string
}

var ErrInvalidConfig = errors.New("invalid config")

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Kinds = []string{"concepts", "lessons", "videos"}
	c.DataDir = "./content"
	c.DatabasePath = "./database/progress.db"
	c.RequestTimeout = 10 * time.Second
	c.AssetTimeout = 60 * time.Second
	c.SyncInterval = 0
	c.ListenAddr = "127.0.0.1:8080"
	c.TokenTTL = 24 * time.Hour
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.S3Region = "us-east-1"
	c.AIBaseURL = "https://openrouter.ai/api/v1"
	c.AIModel = "openai/gpt-3.5-turbo"
}

// LoadConfig builds a Config from defaults, the config file, the environment
// and finally the flags in fs that were set on the command line. fs may be nil.
func LoadConfig(fs *pflag.FlagSet, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	cfg.ConfigFile = getenv(envPrefix + "CONFIG")
	if fs != nil && fs.Changed(flagConfig) {
		cfg.ConfigFile, _ = fs.GetString(flagConfig)
	}
	if cfg.ConfigFile != "" {
		if err := parseFile(cfg, cfg.ConfigFile); err != nil {
			return nil, err
		}
	}

	if err := parseEnv(cfg, getenv); err != nil {
		return nil, err
	}
	if fs != nil {
		if err := applyFlags(cfg, fs); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside a sync run.
func (c *Config) Validate() error {
	if _, err := c.ContentKinds(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("%w: data_dir is empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("%w: database_path is empty", ErrInvalidConfig)
	}
	if c.RequestTimeout < 0 || c.AssetTimeout < 0 || c.SyncInterval < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalidConfig)
	}
	return nil
}

// ContentKinds resolves Kinds. Duplicates collapse; order is irrelevant since
// the sync service reconciles in a fixed order anyway.
func (c *Config) ContentKinds() ([]models.Kind, error) {
	seen := make(map[models.Kind]bool, len(c.Kinds))
	kinds := make([]models.Kind, 0, len(c.Kinds))
	for _, s := range c.Kinds {
		if strings.TrimSpace(s) == "" {
			continue
		}
		k, err := models.ParseKind(s)
		if err != nil {
			return nil, err
		}
		if !seen[k] {
			seen[k] = true
			kinds = append(kinds, k)
		}
	}
	return kinds, nil
}

// RemoteConfigured reports whether a remote catalog can be contacted.
func (c *Config) RemoteConfigured() bool {
	return c.RemoteURL != ""
}
