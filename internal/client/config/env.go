package config

import (
	"fmt"
	"strings"
	"time"
)

const envPrefix = "BRIGHTSTUDY_"

type envVar struct {
	names []string
	set   func(*Config, string) error
}

func str(dst func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*dst(c) = v
		return nil
	}
}

func dur(dst func(*Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*dst(c) = d
		return nil
	}
}

// envVars maps settings to environment names. The first non-empty name wins.
var envVars = []envVar{
	{[]string{envPrefix + "REMOTE_URL", "SUPABASE_URL"}, str(func(c *Config) *string { return &c.RemoteURL })},
	{[]string{envPrefix + "REMOTE_KEY", "SUPABASE_KEY"}, str(func(c *Config) *string { return &c.RemoteKey })},
	{[]string{envPrefix + "KINDS"}, func(c *Config, v string) error {
		c.Kinds = splitList(v)
		return nil
	}},
	{[]string{envPrefix + "DATA_DIR"}, str(func(c *Config) *string { return &c.DataDir })},
	{[]string{envPrefix + "DATABASE_PATH"}, str(func(c *Config) *string { return &c.DatabasePath })},
	{[]string{envPrefix + "REQUEST_TIMEOUT"}, dur(func(c *Config) *time.Duration { return &c.RequestTimeout })},
	{[]string{envPrefix + "ASSET_TIMEOUT"}, dur(func(c *Config) *time.Duration { return &c.AssetTimeout })},
	{[]string{envPrefix + "SYNC_INTERVAL"}, dur(func(c *Config) *time.Duration { return &c.SyncInterval })},
	{[]string{envPrefix + "LISTEN_ADDR"}, str(func(c *Config) *string { return &c.ListenAddr })},
	{[]string{envPrefix + "API_SECRET"}, str(func(c *Config) *string { return &c.APISecret })},
	{[]string{envPrefix + "TOKEN_TTL"}, dur(func(c *Config) *time.Duration { return &c.TokenTTL })},
	{[]string{envPrefix + "LOG_LEVEL"}, str(func(c *Config) *string { return &c.LogLevel })},
	{[]string{envPrefix + "LOG_FORMAT"}, str(func(c *Config) *string { return &c.LogFormat })},
	{[]string{envPrefix + "LOG_FILE"}, str(func(c *Config) *string { return &c.LogFile })},
	{[]string{envPrefix + "S3_ENDPOINT"}, str(func(c *Config) *string { return &c.S3Endpoint })},
	{[]string{envPrefix + "S3_REGION"}, str(func(c *Config) *string { return &c.S3Region })},
	{[]string{envPrefix + "S3_ACCESS_KEY"}, str(func(c *Config) *string { return &c.S3AccessKey })},
	{[]string{envPrefix + "S3_SECRET_KEY"}, str(func(c *Config) *string { return &c.S3SecretKey })},
	{[]string{envPrefix + "AI_BASE_URL", "OPENROUTER_API_URL"}, str(func(c *Config) *string { return &c.AIBaseURL })},
	{[]string{envPrefix + "AI_KEY", "OPENROUTER_API_KEY"}, str(func(c *Config) *string { return &c.AIKey })},
	{[]string{envPrefix + "AI_MODEL", "OPENROUTER_MODEL"}, str(func(c *Config) *string { return &c.AIModel })},
}

func parseEnv(cfg *Config, getenv func(string) string) error {
	for _, ev := range envVars {
		for _, name := range ev.names {
			v := strings.TrimSpace(getenv(name))
			if v == "" {
				continue
			}
			if err := ev.set(cfg, v); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
			}
			break
		}
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
