package logger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"taskBoard/internal/logger"
)

func TestInit(t *testing.T) {
	logger.Init(true)
	require.NotNil(t, logger.Logger)
	assert.True(t, logger.Logger.Core().Enabled(zapcore.DebugLevel))

	logger.Init(false)
	require.NotNil(t, logger.Logger)
	assert.False(t, logger.Logger.Core().Enabled(zapcore.DebugLevel))
}
