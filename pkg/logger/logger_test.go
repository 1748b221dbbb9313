package logger

import (
	"testing"

	"github.com/limaJavier/classcsp/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     config.Config
		enabled zapcore.Level
		muted   zapcore.Level
	}{
		{"Development debug", config.Config{Env: config.EnvDevelopment, Log: config.LogConfig{Level: "debug", Format: "console"}}, zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"Production warnings", config.Config{Env: config.EnvProduction, Log: config.LogConfig{Level: "warn", Format: "json"}}, zapcore.WarnLevel, zapcore.InfoLevel},
		{"Unknown level falls back to info", config.Config{Env: config.EnvProduction, Log: config.LogConfig{Level: "chatty"}}, zapcore.InfoLevel, zapcore.DebugLevel},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			//** Act
			logger, err := New(&testCase.cfg)

			//** Assert
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(testCase.enabled))
			assert.False(t, logger.Core().Enabled(testCase.muted))
		})
	}
}
