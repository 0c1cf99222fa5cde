package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// slowQuery is the duration above which a statement is logged at warn.
const slowQuery = 250 * time.Millisecond

const maxLoggedSQL = 240

// queryLogger adapts GORM's logger to slog. Failed statements log at
// error, slow ones at warn, everything else at debug.
type queryLogger struct {
	logger *slog.Logger
	slow   time.Duration
}

func newQueryLogger(logger *slog.Logger) queryLogger {
	return queryLogger{logger: logger, slow: slowQuery}
}

func (l queryLogger) log() *slog.Logger {
	if l.logger != nil {
		return l.logger
	}
	return slog.Default()
}

// LogMode is ignored; the slog handler level decides what is written.
func (l queryLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface { return l }

func (l queryLogger) Info(ctx context.Context, msg string, args ...any) {
	l.log().InfoContext(ctx, fmt.Sprintf(msg, args...), slog.String("component", "gorm"))
}

func (l queryLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.log().WarnContext(ctx, fmt.Sprintf(msg, args...), slog.String("component", "gorm"))
}

func (l queryLogger) Error(ctx context.Context, msg string, args ...any) {
	l.log().ErrorContext(ctx, fmt.Sprintf(msg, args...), slog.String("component", "gorm"))
}

// Trace runs after every statement. gorm.ErrRecordNotFound is how Get
// misses surface and is not a failure.
func (l queryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	logger := l.log()

	var level slog.Level
	var msg string
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		level, msg = slog.LevelError, "query failed"
	case l.slow > 0 && elapsed > l.slow:
		level, msg = slog.LevelWarn, "slow query"
	default:
		level, msg = slog.LevelDebug, "query"
	}
	if !logger.Enabled(ctx, level) {
		return
	}

	sql, rows := fc()
	attrs := []slog.Attr{
		slog.String("sql", shortenSQL(sql)),
		slog.Int64("rows", rows),
		slog.Duration("duration", elapsed),
	}
	if level == slog.LevelError {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	logger.LogAttrs(ctx, level, msg, attrs...)
}

// shortenSQL keeps the head and tail of long statements, where the
// table and the bound values usually are.
func shortenSQL(sql string) string {
	if len(sql) <= maxLoggedSQL {
		return sql
	}
	keep := (maxLoggedSQL - 3) / 2
	return sql[:keep] + "..." + sql[len(sql)-keep:]
}
