package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/depgraph/internal/adapter"
	"github.com/moolen/depgraph/internal/store"
)

func TestParseLogLevelFlags(t *testing.T) {
	level, pkgs, err := parseLogLevelFlags([]string{"debug"})
	require.NoError(t, err)
	assert.Equal(t, "debug", level)
	assert.Empty(t, pkgs)

	level, pkgs, err = parseLogLevelFlags([]string{"default=info", "resolver=debug"})
	require.NoError(t, err)
	assert.Equal(t, "info", level)
	assert.Equal(t, "debug", pkgs["resolver"])

	_, _, err = parseLogLevelFlags([]string{"verbose"})
	assert.Error(t, err)
}

func TestConvertEnvKeyToPackageName(t *testing.T) {
	assert.Equal(t, "adapter.kubernetes", convertEnvKeyToPackageName("LOG_LEVEL_ADAPTER_KUBERNETES"))
	assert.Equal(t, "store", convertEnvKeyToPackageName("LOG_LEVEL_STORE"))
}

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCodeFor(nil))
	assert.Equal(t, ExitCancelled, ExitCodeFor(context.Canceled))
	assert.Equal(t, ExitParseError, ExitCodeFor(adapter.Wrap("router-log", errors.New("bad input"))))
	assert.Equal(t, ExitPersistence, ExitCodeFor(&store.SelfLoopError{FromService: "a", ToService: "a"}))
	assert.Equal(t, ExitFailure, ExitCodeFor(errors.New("anything else")))
}
