package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/brightstudy/internal/timex"
)

// fileConfig is a DTO used only for decoding config files. Pointers tell an
// absent key from an empty one so the file overlays defaults field by field.
type fileConfig struct {
	RemoteURL      *string         `json:"remote_url" yaml:"remote_url"`
	RemoteKey      *string         `json:"remote_key" yaml:"remote_key"`
	Kinds          []string        `json:"kinds" yaml:"kinds"`
	DataDir        *string         `json:"data_dir" yaml:"data_dir"`
	DatabasePath   *string         `json:"database_path" yaml:"database_path"`
	RequestTimeout *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	AssetTimeout   *timex.Duration `json:"asset_timeout" yaml:"asset_timeout"`
	SyncInterval   *timex.Duration `json:"sync_interval" yaml:"sync_interval"`
	ListenAddr     *string         `json:"listen_addr" yaml:"listen_addr"`
	APISecret      *string         `json:"api_secret" yaml:"api_secret"`
	TokenTTL       *timex.Duration `json:"token_ttl" yaml:"token_ttl"`
	LogLevel       *string         `json:"log_level" yaml:"log_level"`
	LogFormat      *string         `json:"log_format" yaml:"log_format"`
	LogFile        *string         `json:"log_file" yaml:"log_file"`
	S3Endpoint     *string         `json:"s3_endpoint" yaml:"s3_endpoint"`
	S3Region       *string         `json:"s3_region" yaml:"s3_region"`
	S3AccessKey    *string         `json:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey    *string         `json:"s3_secret_key" yaml:"s3_secret_key"`
	AIBaseURL      *string         `json:"ai_base_url" yaml:"ai_base_url"`
	AIKey          *string         `json:"ai_key" yaml:"ai_key"`
	AIModel        *string         `json:"ai_model" yaml:"ai_model"`
}

// parseFile overlays cfg with the values present in the file at path.
func parseFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *fileConfig) apply(cfg *Config) {
	setString(&cfg.RemoteURL, fc.RemoteURL)
	setString(&cfg.RemoteKey, fc.RemoteKey)
	if fc.Kinds != nil {
		cfg.Kinds = fc.Kinds
	}
	setString(&cfg.DataDir, fc.DataDir)
	setString(&cfg.DatabasePath, fc.DatabasePath)
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.AssetTimeout != nil {
		cfg.AssetTimeout = fc.AssetTimeout.Duration
	}
	if fc.SyncInterval != nil {
		cfg.SyncInterval = fc.SyncInterval.Duration
	}
	setString(&cfg.ListenAddr, fc.ListenAddr)
	setString(&cfg.APISecret, fc.APISecret)
	if fc.TokenTTL != nil {
		cfg.TokenTTL = fc.TokenTTL.Duration
	}
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)
	setString(&cfg.LogFile, fc.LogFile)
	setString(&cfg.S3Endpoint, fc.S3Endpoint)
	setString(&cfg.S3Region, fc.S3Region)
	setString(&cfg.S3AccessKey, fc.S3AccessKey)
	setString(&cfg.S3SecretKey, fc.S3SecretKey)
	setString(&cfg.AIBaseURL, fc.AIBaseURL)
	setString(&cfg.AIKey, fc.AIKey)
	setString(&cfg.AIModel, fc.AIModel)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
