package logflags_test

import (
	"testing"

	"github.com/arg-debug/argdap/pkg/logflags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogAllEnablesEveryLogger(t *testing.T) {
	any, err := logflags.Setup(true, "", "")
	require.NoError(t, err)
	assert.True(t, any)
	assert.Equal(t, "debug", logflags.DAPLogger().Logger.Level.String())
	assert.Equal(t, "debug", logflags.StepEngineLogger().Logger.Level.String())
	assert.Equal(t, "debug", logflags.OracleLogger().Logger.Level.String())
}

func TestSetupSubsystemListEnablesOnlyNamedSubsystems(t *testing.T) {
	any, err := logflags.Setup(false, "dap,oracle", "")
	require.NoError(t, err)
	assert.True(t, any)
	assert.Equal(t, "debug", logflags.DAPLogger().Logger.Level.String())
	assert.Equal(t, "debug", logflags.OracleLogger().Logger.Level.String())
	assert.NotEqual(t, "debug", logflags.StepEngineLogger().Logger.Level.String())
}

func TestSetupUnknownSubsystemErrors(t *testing.T) {
	_, err := logflags.Setup(false, "bogus", "")
	require.Error(t, err)
}

func TestSetupEmptyDisablesEverything(t *testing.T) {
	any, err := logflags.Setup(false, "", "")
	require.NoError(t, err)
	assert.False(t, any)
}
