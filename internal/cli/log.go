package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger writing to w at the given level.
//
// Timestamps are kept short ("14:32:01.45") since a render rarely spans
// more than a few seconds and the date is noise on a terminal.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times a command and the named stages it passes through.
//
// Each call to step closes the current stage and logs its duration at
// debug level. done logs the final message at info level with the total
// elapsed time as a structured field, e.g.
//
//	14:32:01.45 INFO Rendered input=tree.toml cached=false elapsed=12ms
type progress struct {
	logger *log.Logger
	start  time.Time
	lap    time.Time
}

func newProgress(l *log.Logger) *progress {
	now := time.Now()
	return &progress{logger: l, start: now, lap: now}
}

// step logs how long the stage that just finished took.
func (p *progress) step(stage string) {
	now := time.Now()
	p.logger.Debug("stage done", "stage", stage, "took", now.Sub(p.lap).Round(time.Microsecond))
	p.lap = now
}

// done logs msg with the key/value pairs kv and the elapsed time, rounded
// to the millisecond.
func (p *progress) done(msg string, kv ...any) {
	kv = append(kv, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, kv...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default() when the command was invoked without one (tests calling
// run functions directly).
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
