package config

import (
	"bytes"
	"log"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	fs := afero.NewMemMapFs()
	var logs bytes.Buffer
	logger := log.New(&logs, "", 0)

	cfg, err := Initialize(fs, "/home/user/.config/mshell", logger)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Contains(t, logs.String(), "wrote default configuration")

	contents, err := afero.ReadFile(fs, "/home/user/.config/mshell/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, defaultConfigData, contents)

	t.Run("existing config is kept", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(fs, "/home/user/.config/mshell/config.yaml", []byte("trace: true\n"), 0644))
		logs.Reset()

		cfg, err := Initialize(fs, "/home/user/.config/mshell", logger)
		require.NoError(t, err)
		assert.True(t, cfg.Trace)
		assert.Contains(t, logs.String(), "already exists")
	})
}
