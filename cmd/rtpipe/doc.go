// Package main is the entry point for rtpipe, a supervised single-slot
// producer/consumer pipeline.
//
// Architecture:
//
//	Producer → Channel (1 slot) → Consumer
//	    ↓                            ↓
//	    └──────→ Liveness ←──────────┘
//	                ↓
//	           Supervisor       Watchdog ← every task
//
// Configuration:
//   - Environment variables (12-factor)
//   - Optional overlay file via --config or PIPELINE_CONFIG
//   - Defaults matching the reference timing (1s tick)
//
// Usage:
//
//	# Production mode
//	./rtpipe run
//
//	# Development mode (colored logs, debug level), fast ticks
//	PIPELINE_TICK=100ms ./rtpipe run --dev
//
//	# Status server on :9090
//	SERVER_ENABLED=true ./rtpipe run
//
// Exit codes: 0 clean shutdown, 1 runtime error, 2 configuration error,
// 3 startup failure (restart requested).
package main
