// Package config provides 12-factor configuration management for the
// pipeline daemon.
//
// Configuration is loaded from environment variables with defaults that
// reproduce the reference timing exactly: a one second time unit, producer
// cadence of 1 unit, supervisor window and cadence of 2 units, consumer alert
// at the 3rd and recovery at the 5th consecutive empty receive, and a 5 unit
// watchdog timeout.
//
// Configuration Sections:
//   - Pipeline: time unit, cadences, record pool capacity
//   - Consumer: receive window and escalation thresholds
//   - Watchdog: liaison timeout, idle slots, panic on expiry
//   - Logging: level, output format and run tag
//   - Server: optional status endpoint
//   - RateLimit: status endpoint rate limiting
//
// An overlay file (YAML or TOML) may be named by PIPELINE_CONFIG. It holds a
// flat table of the same variable names and only fills in what the
// environment does not set:
//
//	PIPELINE_TICK: 250ms
//	LOG_LEVEL: debug
//
// Example Usage:
//
//	cfg, err := config.Load()
//	if err == nil {
//		err = cfg.Validate()
//	}
package config
