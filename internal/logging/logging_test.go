package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		level string
		json  bool
		want  zapcore.Level
	}{
		{"", false, zapcore.InfoLevel},
		{"debug", false, zapcore.DebugLevel},
		{"warn", true, zapcore.WarnLevel},
	} {
		l, err := New(tc.level, tc.json)
		require.NoError(t, err)
		require.True(t, l.Core().Enabled(tc.want))
		require.False(t, l.Core().Enabled(tc.want-1))
	}

	_, err := New("loud", false)
	require.Error(t, err)
}
