package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/herd/internal/config"
	"github.com/zeusync/herd/internal/core/sim"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigCommandPrintsDefaults(t *testing.T) {
	out, err := execute(t, "config")
	require.NoError(t, err)

	cfg, err := config.Decode(bytes.NewBufferString(out))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestConfigCommandReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "herd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation:\n  agents: 12\n"), 0o600))

	out, err := execute(t, "config", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "agents: 12")
}

func TestRunHeadless(t *testing.T) {
	out, err := execute(t, "run", "--ticks", "30", "--agents", "5", "--log-level", "error")
	require.NoError(t, err)

	var snap sim.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, uint64(30), snap.Tick)
	assert.Len(t, snap.Agents, 5)
}

func TestRunRejectsInvalidFlags(t *testing.T) {
	_, err := execute(t, "run", "--ticks", "1", "--agents", "0")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
