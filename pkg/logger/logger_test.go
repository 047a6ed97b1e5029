package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew(t *testing.T) {
	l, err := New("debug", "console")
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = New("verbose", "json")
	assert.Error(t, err)
}

func TestDebugContextAddsRequestID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{Logger: zap.New(core)}

	ctx := WithRequestID(context.Background(), "req-1")
	l.DebugContext(ctx, "hello", StringField("ticker", "AAPL"))
	l.Error("boom", ErrorField(errors.New("bad")))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "AAPL", entries[0].ContextMap()["ticker"])
	assert.Equal(t, "bad", entries[1].ContextMap()["error"])
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, GormLevel("info"))
	assert.Equal(t, gormlogger.Warn, GormLevel("WARN"))
	assert.Equal(t, gormlogger.Error, GormLevel("error"))
	assert.Equal(t, gormlogger.Silent, GormLevel(""))
	assert.Equal(t, gormlogger.Silent, GormLevel("trace"))
}
