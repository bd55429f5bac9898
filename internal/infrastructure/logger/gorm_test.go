package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/event"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), gormlogger.Info, 50*time.Millisecond)
	ctx := WithRequestID(context.Background(), "req-7")
	sql := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(ctx, time.Now(), sql, nil)
	l.Trace(ctx, time.Now().Add(-time.Second), sql, nil)
	l.Trace(ctx, time.Now(), sql, errors.New("boom"))
	l.Trace(ctx, time.Now(), sql, gormlogger.ErrRecordNotFound)

	assert.Equal(t, 2, logs.FilterMessage("SQL").Len())
	assert.Equal(t, 1, logs.FilterMessage("Slow SQL").Len())
	errs := logs.FilterMessage("SQL error").All()
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "req-7", errs[0].ContextMap()["request_id"])
	}
}

func TestGormLogger_Silent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), gormlogger.Info, 0).LogMode(gormlogger.Silent)

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, errors.New("x"))
	l.Error(context.Background(), "ignored %d", 1)
	assert.Zero(t, logs.Len())
}

func TestMongoMonitor(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	m := NewMongoMonitor(zap.New(core), 100*time.Millisecond)

	finished := func(d time.Duration) event.CommandFinishedEvent {
		return event.CommandFinishedEvent{CommandName: "aggregate", DatabaseName: "shop", Duration: d}
	}
	m.Succeeded(context.Background(), &event.CommandSucceededEvent{CommandFinishedEvent: finished(time.Millisecond)})
	m.Succeeded(context.Background(), &event.CommandSucceededEvent{CommandFinishedEvent: finished(time.Second)})
	m.Failed(context.Background(), &event.CommandFailedEvent{CommandFinishedEvent: finished(time.Millisecond), Failure: "timeout"})

	assert.Equal(t, 1, logs.FilterMessage("Mongo command").Len())
	assert.Equal(t, 1, logs.FilterMessage("Slow Mongo command").Len())
	failed := logs.FilterMessage("Mongo command failed").All()
	if assert.Len(t, failed, 1) {
		assert.Equal(t, "timeout", failed[0].ContextMap()["failure"])
	}
}
