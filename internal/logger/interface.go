package logger

import "context"

// Logger is a leveled, printf-style logger. The context is accepted so job
// fields attached with WithJob show up on every line.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...interface{})
	Info(ctx context.Context, msg string, args ...interface{})
	Warn(ctx context.Context, msg string, args ...interface{})
	Error(ctx context.Context, msg string, args ...interface{})
	Sync()
}
