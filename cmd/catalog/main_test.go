package main

import (
	"os"
	"path/filepath"
	"testing"

	"game_catalog/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	t.Run("prod writes json to the rotating file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "catalog.log")

		log := setupLogger(envProd, config.Log{File: file, MaxSizeMB: 1})
		log.Debug("hidden")
		log.Info("visible", "id", 7)

		data, err := os.ReadFile(file)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"visible"`)
		assert.Contains(t, string(data), `"id":7`)
		assert.NotContains(t, string(data), "hidden")
	})

	t.Run("local logs debug as text", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "catalog.log")

		log := setupLogger(envLocal, config.Log{File: file, MaxSizeMB: 1})
		log.Debug("details")

		data, err := os.ReadFile(file)
		require.NoError(t, err)
		assert.Contains(t, string(data), "level=DEBUG")
		assert.Contains(t, string(data), "msg=details")
	})
}
