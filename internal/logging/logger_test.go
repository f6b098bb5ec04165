package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		level   zapcore.Level
		wantErr bool
	}{
		{name: "defaults", cfg: Config{}, level: zapcore.InfoLevel},
		{name: "debug console", cfg: Config{Level: "debug", Format: "console"}, level: zapcore.DebugLevel},
		{name: "upper case level", cfg: Config{Level: "WARN", Format: "json"}, level: zapcore.WarnLevel},
		{name: "bad level", cfg: Config{Level: "loud"}, wantErr: true},
		{name: "bad format", cfg: Config{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.level))
			if tt.level > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.level-1))
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	t.Run("stored logger wins", func(t *testing.T) {
		stored := base.With(zap.String("scope", "request"))
		ctx := WithLogger(context.Background(), stored)
		assert.Same(t, stored, FromContext(ctx, zap.NewNop()))
	})

	t.Run("fallback gets request id", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-1")
		FromContext(ctx, base).Info("hello")

		entries := observed.FilterMessage("hello").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	})

	t.Run("nil fallback is a nop", func(t *testing.T) {
		assert.NotPanics(t, func() {
			FromContext(context.Background(), nil).Info("dropped")
		})
	})
}

func TestRequestID(t *testing.T) {
	id := NewRequestID()
	assert.Len(t, id, 36)
	assert.NotEqual(t, id, NewRequestID())

	assert.Empty(t, RequestIDFromContext(context.Background()))
	assert.Equal(t, id, RequestIDFromContext(WithRequestID(context.Background(), id)))
}
