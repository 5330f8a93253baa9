package editor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/smallnest/graphdoc/graph"
)

// Config controls editor behavior. Zero values disable features, so build
// configs from DefaultConfig rather than from a struct literal.
type Config struct {
	// Editable permits mutations through the editor: label edits and new
	// connections. A read-only editor still folds and queries.
	Editable bool `yaml:"editable"`

	// FoldingEnabled permits collapsing and expanding groups.
	FoldingEnabled bool `yaml:"folding_enabled"`

	// HTMLLabels renders labels as sanitized HTML instead of one-line
	// plain text.
	HTMLLabels bool `yaml:"html_labels"`

	// CollapsedWidth and CollapsedHeight size a folded cell that carries
	// no alternate geometry.
	CollapsedWidth  float64 `yaml:"collapsed_width"`
	CollapsedHeight float64 `yaml:"collapsed_height"`

	// HistorySize bounds the undo history; zero or negative uses the
	// document default.
	HistorySize int `yaml:"history_size"`

	// LogLevel names the editor log level: debug, info, warn, error or
	// none.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the editing defaults: mutations and folding
// enabled, plain text labels, 80x30 folded bounds and the default history
// size.
func DefaultConfig() Config {
	return Config{
		Editable:        true,
		FoldingEnabled:  true,
		HTMLLabels:      false,
		CollapsedWidth:  80,
		CollapsedHeight: 30,
		HistorySize:     graph.DefaultHistorySize,
		LogLevel:        "info",
	}
}

// LoadConfig reads a YAML file over the defaults, so a partial file only
// overrides the settings it names.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("editor: reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("editor: parsing config: %w", err)
	}
	return config, nil
}
