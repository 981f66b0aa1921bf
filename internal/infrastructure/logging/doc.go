// Package logging provides structured logging using uber/zap.
//
// This package offers production-ready logging with two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// On top of the plain zap API the Logger carries a run tag and exposes
// Event, the categorized sink the pipeline tasks write to. Each category
// maps to a fixed severity:
//
//	TX, RX, FILA, SUP    info
//	ALERTA, RECUPERAÇÃO  warn
//	FALHA, ERRO          error
//
// Example Usage:
//
//	logger := logging.NewDefault().WithTag("{rtpipe:01J...}")
//	logger.Event(logging.CategoryTX, "record sent", zap.Int("id", 7))
//	logger.Error("Failed to start", zap.Error(err))
package logging
