// Package config loads runtime configuration for the brightstudy client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file given by --config or BRIGHTSTUDY_CONFIG. Files
//     ending in .yaml or .yml are read as YAML, everything else as JSON.
//  3. Environment variables (BRIGHTSTUDY_*, plus the OPENROUTER_* names the
//     tutor has always used).
//  4. Command-line flags that were set explicitly.
//
// # File schema
//
// Durations use timex.Duration, so values can be strings like "10s" or
// integer nanoseconds:
//
//	{
//	  "remote_url": "https://project.supabase.co",
//	  "remote_key": "public-anon-key",
//	  "data_dir": "./content",
//	  "request_timeout": "10s",
//	  "sync_interval": "15m"
//	}
package config
