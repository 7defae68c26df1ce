package config

import (
	"github.com/spf13/pflag"
)

const flagConfig = "config"

// RegisterFlags adds the configuration flags to fs. Defaults shown in help
// come from LoadDefaults; only flags the user actually sets override the
// file and environment.
func RegisterFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(flagConfig, "c", "", "path to a JSON or YAML config file")
	fs.String("remote-url", d.RemoteURL, "base URL of the remote catalog")
	fs.String("remote-key", d.RemoteKey, "API key for the remote catalog")
	fs.StringSlice("kinds", d.Kinds, "content kinds to sync")
	fs.String("data-dir", d.DataDir, "content directory")
	fs.String("database", d.DatabasePath, "path to the progress database")
	fs.Duration("request-timeout", d.RequestTimeout, "timeout for catalog requests")
	fs.Duration("asset-timeout", d.AssetTimeout, "timeout for a single asset download")
	fs.Duration("sync-interval", d.SyncInterval, "background sync interval for serve (0 disables)")
	fs.String("listen", d.ListenAddr, "address the HTTP API listens on")
	fs.String("log-level", d.LogLevel, "log level: debug, info, warn, error")
	fs.String("log-format", d.LogFormat, "log format: text or json")
	fs.String("log-file", d.LogFile, "write logs to this file (rotated)")
}

// applyFlags copies explicitly set flags into cfg.
func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	var err error
	setStr := func(name string, dst *string) {
		if err == nil && fs.Changed(name) {
			*dst, err = fs.GetString(name)
		}
	}

	setStr("remote-url", &cfg.RemoteURL)
	setStr("remote-key", &cfg.RemoteKey)
	setStr("data-dir", &cfg.DataDir)
	setStr("database", &cfg.DatabasePath)
	setStr("listen", &cfg.ListenAddr)
	setStr("log-level", &cfg.LogLevel)
	setStr("log-format", &cfg.LogFormat)
	setStr("log-file", &cfg.LogFile)
	if err != nil {
		return err
	}

	if fs.Changed("kinds") {
		if cfg.Kinds, err = fs.GetStringSlice("kinds"); err != nil {
			return err
		}
	}
	if fs.Changed("request-timeout") {
		if cfg.RequestTimeout, err = fs.GetDuration("request-timeout"); err != nil {
			return err
		}
	}
	if fs.Changed("asset-timeout") {
		if cfg.AssetTimeout, err = fs.GetDuration("asset-timeout"); err != nil {
			return err
		}
	}
	if fs.Changed("sync-interval") {
		if cfg.SyncInterval, err = fs.GetDuration("sync-interval"); err != nil {
			return err
		}
	}
	return nil
}
