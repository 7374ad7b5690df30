package log

import (
	"context"
	stdlog "log"
)

// NewStdLogger adapts the context logger for libraries that want a *log.Logger.
func NewStdLogger(ctx context.Context) *stdlog.Logger {
	logger := FromCtx(ctx).With().Str("component", "mcp").Logger()
	return stdlog.New(logger, "", 0)
}
