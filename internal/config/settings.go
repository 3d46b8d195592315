package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Settings represents the typecore.yaml configuration.
type Settings struct {
	// MaxScopeDepth bounds every outward walk over the scope tree.
	// A walk longer than this means the tree has a cycle.
	MaxScopeDepth int `yaml:"max_scope_depth,omitempty"`

	// SuggestionDistance is the largest edit distance accepted for a
	// "did you mean" suggestion. Zero derives it from the name length.
	SuggestionDistance int `yaml:"suggestion_distance,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`

	// ModuleRoot is the directory module paths are resolved against.
	// Relative values are taken relative to the settings file.
	ModuleRoot string `yaml:"module_root,omitempty"`

	// SourceExt is appended to module paths without an extension.
	SourceExt string `yaml:"source_ext,omitempty"`
}

// DefaultSettings returns settings with every default applied.
func DefaultSettings() *Settings {
	s := &Settings{}
	s.setDefaults()
	return s
}

// LoadSettings reads and parses a typecore.yaml file.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}
	s, err := ParseSettings(data, path)
	if err != nil {
		return nil, err
	}
	if s.ModuleRoot != "" && !filepath.IsAbs(s.ModuleRoot) {
		s.ModuleRoot = filepath.Join(filepath.Dir(path), s.ModuleRoot)
	}
	return s, nil
}

// ParseSettings parses typecore.yaml content from bytes.
// The path argument is used only for error messages.
func ParseSettings(data []byte, path string) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	s.setDefaults()
	if err := s.validate(path); err != nil {
		return nil, err
	}
	return &s, nil
}

// FindSettings searches for typecore.yaml starting from dir and walking up
// to parent directories.
// Returns the path to the settings file and nil error if found,
// or empty string and nil error if not found.
func FindSettings(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range []string{SettingsFileName, SettingsFileNameAlt} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Marshal renders the settings back to YAML.
func (s *Settings) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// SuggestionLimit returns the edit distance allowed for a suggestion of name.
func (s *Settings) SuggestionLimit(name string) int {
	if s != nil && s.SuggestionDistance > 0 {
		return s.SuggestionDistance
	}
	limit := len([]rune(name)) / 2
	if limit < 1 {
		limit = 1
	}
	return limit
}

func (s *Settings) setDefaults() {
	if s.MaxScopeDepth == 0 {
		s.MaxScopeDepth = DefaultMaxScopeDepth
	}
	if s.LogLevel == "" {
		s.LogLevel = DefaultLogLevel
	}
	if s.SourceExt == "" {
		s.SourceExt = SourceFileExt
	}
}

// validate checks the settings for semantic errors.
func (s *Settings) validate(path string) error {
	if s.MaxScopeDepth < 1 {
		return fmt.Errorf("%s: max_scope_depth must be positive, got %d", path, s.MaxScopeDepth)
	}
	if s.SuggestionDistance < 0 {
		return fmt.Errorf("%s: suggestion_distance must not be negative, got %d", path, s.SuggestionDistance)
	}
	switch strings.ToLower(s.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%s: unknown log_level %q", path, s.LogLevel)
	}
	if !strings.HasPrefix(s.SourceExt, ".") {
		return fmt.Errorf("%s: source_ext must start with '.', got %q", path, s.SourceExt)
	}
	return nil
}
