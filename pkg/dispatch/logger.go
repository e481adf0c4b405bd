package dispatch

import (
	"context"

	"github.com/sigbus/sigbus/pkg/logger"
	"github.com/sigbus/sigbus/pkg/sigerr"
	"github.com/sigbus/sigbus/pkg/signal"
)

// LoggerAdapter implements the "logger" tag: format and emit the signal
// via the process's structured log sink at the requested level.
type LoggerAdapter struct {
	log logger.Logger
}

// NewLoggerAdapter builds a LoggerAdapter emitting through log. A nil log
// falls back to the package's global logger.
func NewLoggerAdapter(log logger.Logger) *LoggerAdapter {
	if log == nil {
		log = logger.Global()
	}
	return &LoggerAdapter{log: log}
}

var validLoggerLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

func (a *LoggerAdapter) Validate(options map[string]any) (map[string]any, error) {
	level, _ := options["level"].(string)
	if level == "" {
		level = "info"
	}
	if !validLoggerLevels[level] {
		return nil, sigerr.Routing("logger adapter level must be one of debug/info/warn/error, got %q", level)
	}
	return map[string]any{"level": level}, nil
}

func (a *LoggerAdapter) Deliver(ctx context.Context, sig *signal.Signal, options map[string]any) error {
	switch options["level"].(string) {
	case "debug":
		a.log.DebugContext(ctx, "signal dispatched", "signal", sig.String())
	case "warn":
		a.log.WarnContext(ctx, "signal dispatched", "signal", sig.String())
	case "error":
		a.log.ErrorContext(ctx, "signal dispatched", "signal", sig.String())
	default:
		a.log.InfoContext(ctx, "signal dispatched", "signal", sig.String())
	}
	return nil
}
