package logger

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/event"
	"go.uber.org/zap"
)

// NewMongoMonitor logs failed MongoDB commands as errors and slow ones as warnings.
// Successful fast commands are logged at debug level.
func NewMongoMonitor(zapLogger *zap.Logger, slowThreshold time.Duration) *event.CommandMonitor {
	l := zapLogger.Named("mongo")
	return &event.CommandMonitor{
		Succeeded: func(ctx context.Context, e *event.CommandSucceededEvent) {
			fields := []zap.Field{
				zap.String("command", e.CommandName),
				zap.String("database", e.DatabaseName),
				zap.Duration("elapsed", e.Duration),
			}
			if id := GetRequestID(ctx); id != "" {
				fields = append(fields, zap.String("request_id", id))
			}
			if slowThreshold > 0 && e.Duration > slowThreshold {
				l.Warn("Slow Mongo command", append(fields, zap.Duration("threshold", slowThreshold))...)
				return
			}
			l.Debug("Mongo command", fields...)
		},
		Failed: func(ctx context.Context, e *event.CommandFailedEvent) {
			l.Error("Mongo command failed",
				zap.String("command", e.CommandName),
				zap.String("database", e.DatabaseName),
				zap.Duration("elapsed", e.Duration),
				zap.String("failure", e.Failure),
				zap.String("request_id", GetRequestID(ctx)),
			)
		},
	}
}
