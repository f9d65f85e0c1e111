package llm

import (
	"context"
	"errors"
	"time"

	"github.com/verte-zerg/typemaster/internal/logger"
)

// LoggingProvider records every request to the application log.
type LoggingProvider struct {
	inner Provider
	log   *logger.Logger
}

// WithLogging wraps a Provider with request logging.
func WithLogging(p Provider, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &LoggingProvider{inner: p, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	l.log.Debug("llm request started", "model", l.inner.ModelID(), "purpose", req.Purpose, "prompt_chars", len(req.Prompt))
	resp, err := l.inner.Generate(ctx, req)

	fields := []any{
		"model", l.inner.ModelID(),
		"purpose", req.Purpose,
		"latency_ms", time.Since(start).Milliseconds(),
	}
	var limited *ErrRateLimit
	switch {
	case errors.As(err, &limited):
		l.log.Warn("llm request rate limited", fields...)
	case err != nil:
		l.log.Warn("llm request failed", append(fields, "error", err)...)
	default:
		l.log.Info("llm request", append(fields,
			"input_tokens", resp.Usage.InputTokens,
			"output_tokens", resp.Usage.OutputTokens,
		)...)
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
