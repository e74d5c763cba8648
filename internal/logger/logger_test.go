package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		l, err := NewLogger("debug", "json")
		assert.NoError(t, err)
		assert.NotNil(t, l)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("Console", func(t *testing.T) {
		l, err := NewLogger("warn", "console")
		assert.NoError(t, err)
		assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("InvalidLevel", func(t *testing.T) {
		l, err := NewLogger("loud", "json")
		assert.Error(t, err)
		assert.Nil(t, l)
	})
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))

	l, err := NewLogger("info", "json")
	assert.NoError(t, err)
	assert.Same(t, l, OrNop(l))
}
