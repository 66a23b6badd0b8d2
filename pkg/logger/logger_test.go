package logger

import (
	"context"
	"testing"

	"quest_reward_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLevelFor(t *testing.T) {
	assert.Equal(t, zap.DebugLevel, levelFor(&config.Config{Server: config.ServerConfig{Mode: "debug"}}))
	assert.Equal(t, zap.InfoLevel, levelFor(&config.Config{Server: config.ServerConfig{Mode: "release"}}))
	assert.Equal(t, zap.WarnLevel, levelFor(&config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		Log:    config.LogConfig{Level: "warn"},
	}))
	assert.Equal(t, zap.InfoLevel, levelFor(&config.Config{Log: config.LogConfig{Level: "loud"}}))
}

func TestWithContextAddsTraceID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := Log
	Log = zap.New(core)
	defer func() { Log = prev }()

	WithContext(context.Background()).Info("plain")

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))
	WithContext(ctx).Info("traced")

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Empty(t, entries[0].ContextMap()["trace_id"])
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entries[1].ContextMap()["trace_id"])
	}
}
