package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/black-block-blast/game/engine"
)

const wideHCL = `
name             = "Wide"
description      = "A 14 column well"
cols             = 14
tick_interval_ms = 500
palette          = ["#ffffff", "#000000"]

messages {
  welcome    = "Wide open."
  game_over  = "Topped out."
  line_clear = "%d down"
}
`

func createValidConfig() *engine.GameConfig {
	config := engine.DefaultGameConfig()
	config.Name = "Test Config"
	config.Description = "Test configuration"
	config.Rows = 12
	config.Cols = 8
	return config
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.GameConfig) {
	t.Helper()
	data, err := json.MarshalIndent(config, "", "  ")
	require.NoError(t, err)

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), data, 0644))
}

func writeRawFile(t *testing.T, dir, filename, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644))
}

func TestNewManager(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, err := NewManager(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})

	t.Run("empty directory falls back to built-in", func(t *testing.T) {
		m, err := NewManager(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, "classic", m.GetDefault().Name)
		assert.Equal(t, engine.DefaultRows, m.GetDefault().Rows)
	})

	t.Run("classic file preferred", func(t *testing.T) {
		dir := t.TempDir()
		other := createValidConfig()
		other.Name = "Aaa"
		writeConfigFile(t, dir, "aaa", other)

		classic := createValidConfig()
		classic.Name = "Classic From Disk"
		writeConfigFile(t, dir, "classic", classic)

		m, err := NewManager(dir)
		require.NoError(t, err)
		assert.Equal(t, "Classic From Disk", m.GetDefault().Name)
	})

	t.Run("first valid file without classic", func(t *testing.T) {
		dir := t.TempDir()
		config := createValidConfig()
		config.Name = "Only"
		writeConfigFile(t, dir, "only", config)

		m, err := NewManager(dir)
		require.NoError(t, err)
		assert.Equal(t, "Only", m.GetDefault().Name)
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "valid", createValidConfig())
	writeRawFile(t, dir, "wide.hcl", wideHCL)
	writeRawFile(t, dir, "broken.json", "{not json")
	writeRawFile(t, dir, "broken.hcl", "name = ")
	writeRawFile(t, dir, "partial.json", `{"name":"Partial","description":"defaults","messages":{"welcome":"hi","game_over":"bye"}}`)

	bad := createValidConfig()
	bad.Rows = 2
	writeConfigFile(t, dir, "tiny", bad)

	m, err := NewManager(dir)
	require.NoError(t, err)

	t.Run("json", func(t *testing.T) {
		config, err := m.LoadConfig("valid")
		require.NoError(t, err)
		assert.Equal(t, "Test Config", config.Name)
		assert.Equal(t, 12, config.Rows)
		assert.Equal(t, 8, config.Cols)
	})

	t.Run("json with extension", func(t *testing.T) {
		config, err := m.LoadConfig("valid.json")
		require.NoError(t, err)
		assert.Equal(t, "Test Config", config.Name)
	})

	t.Run("hcl", func(t *testing.T) {
		config, err := m.LoadConfig("wide")
		require.NoError(t, err)
		assert.Equal(t, "Wide", config.Name)
		assert.Equal(t, 14, config.Cols)
		assert.Equal(t, engine.DefaultRows, config.Rows)
		assert.Equal(t, 500, config.TickIntervalMS)
		assert.Equal(t, engine.DefaultLinePoint, config.PointsPerLine)
		assert.Equal(t, []string{"#ffffff", "#000000"}, config.Palette)
		assert.Equal(t, "%d down", config.Messages.LineClear)
	})

	t.Run("defaults applied", func(t *testing.T) {
		config, err := m.LoadConfig("partial")
		require.NoError(t, err)
		assert.Equal(t, engine.DefaultCols, config.Cols)
		assert.Equal(t, engine.DefaultTickMS, config.TickIntervalMS)
		assert.Equal(t, engine.DefaultPalette, config.Palette)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := m.LoadConfig("missing")
		assert.ErrorIs(t, err, ErrConfigNotFound)
	})

	t.Run("path traversal rejected", func(t *testing.T) {
		_, err := m.LoadConfig("../valid")
		assert.ErrorIs(t, err, ErrConfigNotFound)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := m.LoadConfig("broken.json")
		assert.Error(t, err)
	})

	t.Run("malformed hcl", func(t *testing.T) {
		_, err := m.LoadConfig("broken.hcl")
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := m.LoadConfig("tiny")
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestManager_ListConfigs(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "valid", createValidConfig())
	writeRawFile(t, dir, "wide.hcl", wideHCL)
	writeRawFile(t, dir, "broken.json", "{")
	writeRawFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0755))

	m, err := NewManager(dir)
	require.NoError(t, err)

	configs, err := m.ListConfigs()
	require.NoError(t, err)
	require.Len(t, configs, 2)

	assert.Equal(t, "valid", configs[0].ConfigID)
	assert.Equal(t, "valid.json", configs[0].Filename)
	assert.Equal(t, 12, configs[0].Rows)

	assert.Equal(t, "wide", configs[1].ConfigID)
	assert.Equal(t, "wide.hcl", configs[1].Filename)
	assert.Equal(t, 14, configs[1].Cols)
	assert.Equal(t, 500, configs[1].TickIntervalMS)
}

func TestManager_SaveConfig(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	require.NoError(t, err)

	config := createValidConfig()
	config.Name = "Saved"
	require.NoError(t, m.SaveConfig("saved", config))

	_, err = os.Stat(filepath.Join(dir, "saved.json"))
	require.NoError(t, err)

	// A fresh manager reads it back from disk
	other, err := NewManager(dir)
	require.NoError(t, err)
	loaded, err := other.LoadConfig("saved")
	require.NoError(t, err)
	assert.Equal(t, "Saved", loaded.Name)

	invalid := createValidConfig()
	invalid.Messages.GameOver = ""
	assert.ErrorIs(t, m.SaveConfig("invalid", invalid), ErrInvalidConfig)
	assert.ErrorIs(t, m.SaveConfig("../escape", createValidConfig()), ErrInvalidConfig)
}

func TestManager_SetDefaultAndRefresh(t *testing.T) {
	dir := t.TempDir()
	writeRawFile(t, dir, "wide.hcl", wideHCL)

	m, err := NewManager(dir)
	require.NoError(t, err)
	assert.Equal(t, "Wide", m.GetDefault().Name)

	config := createValidConfig()
	config.Name = "Classic Override"
	writeConfigFile(t, dir, "classic", config)

	// The cached default survives until refresh
	assert.Equal(t, "Wide", m.GetDefault().Name)
	require.NoError(t, m.RefreshCache())
	assert.Equal(t, "Classic Override", m.GetDefault().Name)

	require.NoError(t, m.SetDefault("wide"))
	assert.Equal(t, "Wide", m.GetDefault().Name)
	assert.ErrorIs(t, m.SetDefault("missing"), ErrConfigNotFound)
}

func TestManager_CachingBehavior(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "cached", createValidConfig())

	m, err := NewManager(dir)
	require.NoError(t, err)

	first, err := m.LoadConfig("cached")
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "cached.json")))

	second, err := m.LoadConfig("cached")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "valid", createValidConfig())
	writeRawFile(t, dir, "wide.hcl", wideHCL)

	m, err := NewManager(dir)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := "valid"
			if i%2 == 0 {
				name = "wide"
			}
			_, err := m.LoadConfig(name)
			assert.NoError(t, err)
			_, err = m.ListConfigs()
			assert.NoError(t, err)
			_ = m.GetDefault()
		}(i)
	}
	wg.Wait()
}
