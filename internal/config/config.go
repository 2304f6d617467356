package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	apperrors "github.com/dpshade/kubejs-editor/internal/errors"
)

// EnvDir overrides the data directory.
const EnvDir = "KUBEJS_EDITOR_DIR"

// FileName is the config file inside the data directory.
const FileName = "config.yaml"

// Supported widget themes.
var Themes = []string{"vs", "vs-dark", "hc-black"}

// Supported word-wrap modes.
var WordWrapModes = []string{"on", "off", "wordWrapColumn", "bounded"}

// EditorConfig holds editor preferences
type EditorConfig struct {
	Theme           string `yaml:"theme" json:"theme"`
	FontSize        int    `yaml:"fontSize" json:"fontSize"`
	TabSize         int    `yaml:"tabSize" json:"tabSize"`
	AutoSave        bool   `yaml:"autoSave" json:"autoSave"` // accepted but not acted on
	DefaultTemplate string `yaml:"defaultTemplate" json:"defaultTemplate"`
	WordWrap        string `yaml:"wordWrap" json:"wordWrap"`
	Minimap         bool   `yaml:"minimap" json:"minimap"`
	LineNumbers     bool   `yaml:"lineNumbers" json:"lineNumbers"`
}

// Default returns the built-in preferences.
func Default() EditorConfig {
	return EditorConfig{
		Theme:           "vs-dark",
		FontSize:        14,
		TabSize:         2,
		AutoSave:        false,
		DefaultTemplate: "",
		WordWrap:        "on",
		Minimap:         true,
		LineNumbers:     true,
	}
}

// DataDir returns the data directory: $KUBEJS_EDITOR_DIR, else ~/.kubejs-editor.
func DataDir() (string, error) {
	if dir := os.Getenv(EnvDir); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".kubejs-editor"), nil
}

// Load reads dir/config.yaml over the defaults. A missing file yields defaults.
func Load(dir string) (EditorConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, apperrors.StorageError("read config", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), apperrors.Wrap(err, apperrors.ErrCodeInvalidFormat, "Failed to parse config file").
			WithContext("path", filepath.Join(dir, FileName))
	}

	return cfg, cfg.Validate()
}

// Save writes the configuration to dir/config.yaml
func (c EditorConfig) Save(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.StorageError("create config directory", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, FileName), data, 0644); err != nil {
		return apperrors.StorageError("write config", err)
	}
	return nil
}

// Validate checks enumerated values and sizes.
func (c EditorConfig) Validate() error {
	if !contains(Themes, c.Theme) {
		return apperrors.ValidationError(fmt.Sprintf("Unknown theme %q", c.Theme)).
			WithContext("allowed", Themes)
	}
	if !contains(WordWrapModes, c.WordWrap) {
		return apperrors.ValidationError(fmt.Sprintf("Unknown word wrap mode %q", c.WordWrap)).
			WithContext("allowed", WordWrapModes)
	}
	if c.FontSize <= 0 {
		return apperrors.ValidationError("Font size must be positive")
	}
	if c.TabSize <= 0 {
		return apperrors.ValidationError("Tab size must be positive")
	}
	return nil
}

// MonacoOptions renders the options passed when the web editor is created.
func (c EditorConfig) MonacoOptions() map[string]interface{} {
	lineNumbers := "off"
	if c.LineNumbers {
		lineNumbers = "on"
	}
	return map[string]interface{}{
		"theme":           c.Theme,
		"fontSize":        c.FontSize,
		"tabSize":         c.TabSize,
		"wordWrap":        c.WordWrap,
		"minimap":         map[string]bool{"enabled": c.Minimap},
		"lineNumbers":     lineNumbers,
		"automaticLayout": true,
	}
}

// IsDark reports whether the theme has a dark background.
func (c EditorConfig) IsDark() bool {
	return c.Theme != "vs"
}

// ChromaStyle picks the terminal highlight style matching the theme.
func (c EditorConfig) ChromaStyle() string {
	switch c.Theme {
	case "vs":
		return "vs"
	case "hc-black":
		return "native"
	default:
		return "monokai"
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
