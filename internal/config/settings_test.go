package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSettingsDefaults(t *testing.T) {
	s, err := ParseSettings([]byte("{}"), "typecore.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxScopeDepth, s.MaxScopeDepth)
	assert.Equal(t, DefaultLogLevel, s.LogLevel)
	assert.Equal(t, SourceFileExt, s.SourceExt)
	assert.Zero(t, s.SuggestionDistance)
}

func TestParseSettingsValues(t *testing.T) {
	data := []byte(`
max_scope_depth: 32
suggestion_distance: 3
log_level: debug
source_ext: .d.er
`)
	s, err := ParseSettings(data, "typecore.yaml")
	require.NoError(t, err)
	assert.Equal(t, 32, s.MaxScopeDepth)
	assert.Equal(t, 3, s.SuggestionDistance)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, ".d.er", s.SourceExt)
}

func TestParseSettingsErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"negative depth", "max_scope_depth: -1"},
		{"negative distance", "suggestion_distance: -2"},
		{"bad level", "log_level: loud"},
		{"bad ext", "source_ext: er"},
		{"bad yaml", "max_scope_depth: [1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSettings([]byte(tt.data), "typecore.yaml")
			assert.Error(t, err)
		})
	}
}

func TestSuggestionLimit(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, 1, s.SuggestionLimit("z"))
	assert.Equal(t, 1, s.SuggestionLimit("zz"))
	assert.Equal(t, 2, s.SuggestionLimit("name"))

	s.SuggestionDistance = 5
	assert.Equal(t, 5, s.SuggestionLimit("z"))

	var nilSettings *Settings
	assert.Equal(t, 3, nilSettings.SuggestionLimit("abcdef"))
}

func TestFindAndLoadSettings(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	path, err := FindSettings(nested)
	require.NoError(t, err)
	assert.Empty(t, path)

	cfgPath := filepath.Join(root, SettingsFileName)
	require.NoError(t, os.WriteFile(cfgPath, []byte("module_root: src\n"), 0o644))

	path, err = FindSettings(nested)
	require.NoError(t, err)
	assert.Equal(t, cfgPath, path)

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "src"), s.ModuleRoot)
}

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger("info", &buf)
	log.Debug("hidden")
	log.Info("shown", "k", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "k=1")
}
