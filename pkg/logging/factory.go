package logging

import (
	"context"
	"maps"
	"sync"
)

type LoggerFactory interface {
	CreateLogger(ctx context.Context) Logger
}

// LoggerFactoryFunc adapts a plain function to LoggerFactory.
type LoggerFactoryFunc func(ctx context.Context) Logger

func (f LoggerFactoryFunc) CreateLogger(ctx context.Context) Logger {
	return f(ctx)
}

var (
	loggerFactoryMu sync.RWMutex
	loggerFactory   LoggerFactory
)

// SetLoggerFactory replaces the logrus default. Passing nil restores it.
func SetLoggerFactory(factory LoggerFactory) {
	loggerFactoryMu.Lock()
	defer loggerFactoryMu.Unlock()

	loggerFactory = factory
}

func GetLoggerFactory() LoggerFactory {
	loggerFactoryMu.RLock()
	defer loggerFactoryMu.RUnlock()

	return loggerFactory
}

type fieldsKey struct{}

// WithField returns a context whose loggers carry key=value on every line.
func WithField(ctx context.Context, key string, value any) context.Context {
	fields := make(map[string]any, 1)
	if existing, ok := ctx.Value(fieldsKey{}).(map[string]any); ok {
		maps.Copy(fields, existing)
	}
	fields[key] = value
	return context.WithValue(ctx, fieldsKey{}, fields)
}

// Fields returns the fields attached with WithField.
func Fields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(fieldsKey{}).(map[string]any)
	return fields
}
