package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger forwards GORM's SQL logging to the global zap logger.
type GormLogger struct {
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// NewGormLogger parses levels "silent", "error", "warn" and "info".
func NewGormLogger(level string) *GormLogger {
	l := gormlogger.Warn
	switch strings.ToLower(level) {
	case "silent":
		l = gormlogger.Silent
	case "error":
		l = gormlogger.Error
	case "info", "debug":
		l = gormlogger.Info
	}
	return &GormLogger{level: l, slowThreshold: 200 * time.Millisecond}
}

func (g *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *g
	cp.level = level
	return &cp
}

func (g *GormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Info {
		L().Info(fmt.Sprintf(msg, args...))
	}
}

func (g *GormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Warn {
		L().Warn(fmt.Sprintf(msg, args...))
	}
}

func (g *GormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Error {
		L().Error(fmt.Sprintf(msg, args...))
	}
}

func (g *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && g.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		L().Error("sql error", String("sql", sql), Int64("rows", rows), Duration("elapsed", elapsed), ErrorField(err))
	case elapsed > g.slowThreshold && g.level >= gormlogger.Warn:
		sql, rows := fc()
		L().Warn("slow sql", String("sql", sql), Int64("rows", rows), Duration("elapsed", elapsed))
	case g.level >= gormlogger.Info:
		sql, rows := fc()
		L().Debug("sql", String("sql", sql), Int64("rows", rows), Duration("elapsed", elapsed))
	}
}
