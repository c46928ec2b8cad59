//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2026 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "simple-todo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(Flags{ConfigFile: writeConfigFile(t, "")})
	require.NoError(t, err)
	assert.Equal(t, Defaults(), config)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfigFile(t, `
persistence:
  data_path: /data/todo
compaction:
  probability: 0.5
degraded_reads: true
log_level: warning
monitoring:
  enabled: true
  textfile_path: /metrics/todo.prom
retry:
  max_retries: 5
  interval: 200ms
`)

	config, err := LoadConfig(Flags{ConfigFile: path})
	require.NoError(t, err)

	assert.Equal(t, "/data/todo", config.Persistence.DataPath)
	assert.Equal(t, 0.5, config.Compaction.Probability)
	assert.True(t, config.DegradedReads)
	assert.Equal(t, "warning", config.LogLevel)
	assert.Equal(t, DefaultLogFormat, config.LogFormat)
	assert.True(t, config.Monitoring.Enabled)
	assert.Equal(t, "/metrics/todo.prom", config.Monitoring.TextfilePath)
	assert.Equal(t, 5, config.Retry.MaxRetries)
	assert.Equal(t, 200*time.Millisecond, config.Retry.Interval)
}

func TestLoadConfigPrecedence(t *testing.T) {
	path := writeConfigFile(t, `
persistence:
  data_path: /from/file
log_level: warning
log_format: text
`)
	t.Setenv("PERSISTENCE_DATA_PATH", "/from/env")
	t.Setenv("LOG_LEVEL", "debug")

	config, err := LoadConfig(Flags{ConfigFile: path, DataPath: "/from/flag"})
	require.NoError(t, err)

	assert.Equal(t, "/from/flag", config.Persistence.DataPath)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, "text", config.LogFormat)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Run("explicit config file missing", func(t *testing.T) {
		_, err := LoadConfig(Flags{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")})
		require.Error(t, err)
	})

	t.Run("unknown key", func(t *testing.T) {
		path := writeConfigFile(t, "compaction_probability: 0.5\n")
		_, err := LoadConfig(Flags{ConfigFile: path})
		require.Error(t, err)
	})

	t.Run("probability out of range", func(t *testing.T) {
		path := writeConfigFile(t, "compaction:\n  probability: 1.5\n")
		_, err := LoadConfig(Flags{ConfigFile: path})
		require.ErrorContains(t, err, "compaction.probability")
	})

	t.Run("unknown log format", func(t *testing.T) {
		_, err := LoadConfig(Flags{ConfigFile: writeConfigFile(t, ""), LogFormat: "xml"})
		require.ErrorContains(t, err, "log_format")
	})

	t.Run("unknown log level", func(t *testing.T) {
		_, err := LoadConfig(Flags{ConfigFile: writeConfigFile(t, ""), LogLevel: "loud"})
		require.Error(t, err)
	})

	t.Run("empty data path", func(t *testing.T) {
		path := writeConfigFile(t, "persistence:\n  data_path: \"\"\n")
		_, err := LoadConfig(Flags{ConfigFile: path})
		require.ErrorContains(t, err, "persistence.data_path")
	})

	t.Run("monitoring without textfile", func(t *testing.T) {
		path := writeConfigFile(t, "monitoring:\n  enabled: true\n  textfile_path: \"\"\n")
		_, err := LoadConfig(Flags{ConfigFile: path})
		require.ErrorContains(t, err, "monitoring.textfile_path")
	})
}
