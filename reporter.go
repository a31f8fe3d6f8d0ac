package xmlentity

import (
	"context"
	"log/slog"
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	}
	return "unknown"
}

type defaultReporter struct{}

// DefaultErrorReporter logs through the trace logger in the context.
// Warnings are logged and ignored, everything else aborts.
func DefaultErrorReporter() ErrorReporter {
	return defaultReporter{}
}

func (defaultReporter) Report(ctx context.Context, severity Severity, err error) error {
	tlog := getTraceLogFromContext(ctx)
	if severity == SeverityWarning {
		tlog.Warn("entity warning", slog.String("error", err.Error()))
		return nil
	}
	tlog.Error("entity error", slog.String("severity", severity.String()), slog.String("error", err.Error()))
	return err
}
