// Package config loads runtime configuration for the EmergQR companion CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
//	{
//	  "api_base_url": "http://127.0.0.1:8000",
//	  "probe_interval": "3s",
//	  "probe_timeout": "3s",
//	  "request_timeout": "15s",
//	  "database_path": "emergqr.db",
//	  "log_level": "info"
//	}
package config
