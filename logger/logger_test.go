package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	gormlogger "gorm.io/gorm/logger"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, ErrorLevel, ParseLevel("error"))
	assert.Equal(t, InfoLevel, ParseLevel("verbose"))
	assert.Equal(t, InfoLevel, ParseLevel(""))
}

func TestLogBeforeInitIsNoop(t *testing.T) {
	assert.NotNil(t, L())
	assert.NotPanics(t, func() {
		Info("not initialised", String("k", "v"))
		Sync()
	})
}

func TestNewGormLogger(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, NewGormLogger("silent").level)
	assert.Equal(t, gormlogger.Info, NewGormLogger("debug").level)
	assert.Equal(t, gormlogger.Warn, NewGormLogger("bogus").level)

	l := NewGormLogger("warn").LogMode(gormlogger.Error).(*GormLogger)
	assert.Equal(t, gormlogger.Error, l.level)
}
