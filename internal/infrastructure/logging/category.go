package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category classifies a pipeline log line.
type Category string

const (
	CategoryTX       Category = "TX"          // record offered and accepted
	CategoryRX       Category = "RX"          // record received and processed
	CategoryQueue    Category = "FILA"        // drop on full slot, empty receive window
	CategoryAlert    Category = "ALERTA"      // consumer escalation threshold
	CategoryStatus   Category = "SUP"         // supervisor classification
	CategoryFailure  Category = "FALHA"       // no task signaled, watchdog expiry
	CategoryError    Category = "ERRO"        // allocation and startup failures
	CategoryRecovery Category = "RECUPERAÇÃO" // channel reset
)

// Level returns the severity a category is logged at.
func (c Category) Level() zapcore.Level {
	switch c {
	case CategoryAlert, CategoryRecovery:
		return zapcore.WarnLevel
	case CategoryFailure, CategoryError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Event writes one categorized line. The tag and category are always the
// leading fields so lines stay greppable in both encodings.
func (l *Logger) Event(cat Category, msg string, fields ...zap.Field) {
	ce := l.Logger.Check(cat.Level(), msg)
	if ce == nil {
		return
	}

	all := make([]zap.Field, 0, len(fields)+2)
	all = append(all, zap.String("tag", l.tag), zap.String("category", string(cat)))
	all = append(all, fields...)
	ce.Write(all...)
}
