package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	for _, env := range []string{"dev", "prod"} {
		t.Run(env, func(t *testing.T) {
			l, err := New(env)
			require.NoError(t, err)
			require.NotNil(t, l)
			if env == "dev" {
				assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
			} else {
				assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
			}
		})
	}
}
