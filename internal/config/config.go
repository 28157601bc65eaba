// Package config handles aerun configuration.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"

	"github.com/henri123lemoine/aerun/internal/debug"
)

// Config represents aerun configuration.
type Config struct {
	Paths  Paths        `toml:"paths"`
	Render RenderConfig `toml:"render"`
	UI     UIConfig     `toml:"ui"`
	Keys   KeysConfig   `toml:"keys"`
}

// Paths holds the two external tools aerun drives.
type Paths struct {
	// Renderer is the aerender executable.
	Renderer string `toml:"aerender"`

	// Application is the After Effects .app bundle targeted by the scripting bridge.
	Application string `toml:"after_effects"`
}

// Complete reports whether both paths are set.
func (p Paths) Complete() bool {
	return p.Renderer != "" && p.Application != ""
}

// RenderConfig contains settings for render invocations.
type RenderConfig struct {
	// Run aerender under a pseudo-terminal so it line-buffers its output
	UsePTY bool `toml:"use_pty"`

	// Extension appended to output paths that have none
	DefaultExtension string `toml:"default_extension"`

	// Container extensions offered for the output file
	OutputExtensions []string `toml:"output_extensions"`
}

// UIConfig contains UI settings.
type UIConfig struct {
	// Color theme: auto, dark, light
	Theme string `toml:"theme"`

	// Maximum number of log lines kept in the log pane (0 = unlimited)
	LogLimit int `toml:"log_limit"`

	// Directory the project picker starts in (empty = current directory)
	StartDir string `toml:"start_dir"`
}

// KeysConfig contains keybinding settings.
type KeysConfig struct {
	Next     string `toml:"next"`
	Prev     string `toml:"prev"`
	Browse   string `toml:"browse"`
	Render   string `toml:"render"`
	Settings string `toml:"settings"`
	ClearLog string `toml:"clear_log"`
	Help     string `toml:"help"`
	Quit     string `toml:"quit"`
}

// DefaultConfig returns the default configuration.
// Paths are left empty; Resolve fills them.
func DefaultConfig() *Config {
	return &Config{
		Render: RenderConfig{
			UsePTY:           false,
			DefaultExtension: ".mov",
			OutputExtensions: []string{".mov", ".mp4"},
		},
		UI: UIConfig{
			Theme:    "auto",
			LogLimit: 5000,
		},
		Keys: KeysConfig{
			Next:     "tab",
			Prev:     "shift+tab",
			Browse:   "ctrl+o",
			Render:   "ctrl+r",
			Settings: "ctrl+p",
			ClearLog: "ctrl+l",
			Help:     "f1",
			Quit:     "ctrl+c",
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses ~/.config/aerun/config.toml (XDG style) on all Unix systems.
func ConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "aerun", "config.toml")
	}
	home := os.Getenv("HOME")
	if home != "" {
		return filepath.Join(home, ".config", "aerun", "config.toml")
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "aerun", "config.toml")
	}
	return filepath.Join(configDir, "aerun", "config.toml")
}

// Load reads the config at path and never fails. A missing or unparsable
// file yields the defaults with both paths absent; the reason is written to
// the debug log.
func Load(path string) *Config {
	cfg, err := LoadFromPath(path)
	if err != nil {
		debug.Log("config: ignoring %s: %v", path, err)
		return DefaultConfig()
	}
	return cfg
}

// LoadFromPath loads configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	// go-toml/v2 only overwrites fields present in the file, so defaults
	// survive for everything the user left out.
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes cfg to path as indented TOML.
// The write is not atomic; a torn file is recovered by Load's fallback.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	fileLock := flock.New(path + ".lock")
	if err := fileLock.Lock(); err != nil {
		return fmt.Errorf("lock config: %w", err)
	}
	defer fileLock.Unlock()

	return os.WriteFile(path, buf.Bytes(), 0644)
}

// CreateDefaultConfigFile writes a commented config file to path.
// It refuses to overwrite an existing file.
func CreateDefaultConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(generateDefaultConfigContent()), 0644)
}

// generateDefaultConfigContent generates a commented config file.
func generateDefaultConfigContent() string {
	var b strings.Builder
	cfg := DefaultConfig()

	b.WriteString("# aerun configuration\n\n")

	b.WriteString("[paths]\n")
	b.WriteString("# aerender executable (auto-detected under /Applications if not set)\n")
	fmt.Fprintf(&b, "# aerender = %q\n", DefaultRendererPath)
	b.WriteString("# After Effects application bundle used to list compositions\n")
	fmt.Fprintf(&b, "# after_effects = %q\n\n", DefaultApplicationPath)

	b.WriteString("[render]\n")
	b.WriteString("# Run aerender under a pseudo-terminal so output arrives line by line\n")
	fmt.Fprintf(&b, "use_pty = %v\n", cfg.Render.UsePTY)
	b.WriteString("# Extension appended when the output path has none\n")
	fmt.Fprintf(&b, "default_extension = %q\n", cfg.Render.DefaultExtension)
	b.WriteString("# Container extensions offered for output files\n")
	fmt.Fprintf(&b, "output_extensions = [%s]\n\n", quoteList(cfg.Render.OutputExtensions))

	b.WriteString("[ui]\n")
	b.WriteString("# Color theme: \"auto\", \"dark\", or \"light\"\n")
	fmt.Fprintf(&b, "theme = %q\n", cfg.UI.Theme)
	b.WriteString("# Lines kept in the log pane (0 = unlimited)\n")
	fmt.Fprintf(&b, "log_limit = %d\n", cfg.UI.LogLimit)
	b.WriteString("# Directory the project picker opens in\n")
	b.WriteString("# start_dir = \"~/Projects\"\n\n")

	b.WriteString("[keys]\n")
	b.WriteString("# Keybindings (comma-separated for multiple keys)\n")
	fmt.Fprintf(&b, "# next = %q\n", cfg.Keys.Next)
	fmt.Fprintf(&b, "# prev = %q\n", cfg.Keys.Prev)
	fmt.Fprintf(&b, "# browse = %q\n", cfg.Keys.Browse)
	fmt.Fprintf(&b, "# render = %q\n", cfg.Keys.Render)
	fmt.Fprintf(&b, "# settings = %q\n", cfg.Keys.Settings)
	fmt.Fprintf(&b, "# clear_log = %q\n", cfg.Keys.ClearLog)
	fmt.Fprintf(&b, "# help = %q\n", cfg.Keys.Help)
	fmt.Fprintf(&b, "# quit = %q\n", cfg.Keys.Quit)

	return b.String()
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}

// Validate validates the configuration and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	if c.UI.Theme != "" &&
		c.UI.Theme != "auto" &&
		c.UI.Theme != "dark" &&
		c.UI.Theme != "light" {
		warnings = append(warnings, fmt.Sprintf("Invalid value for ui.theme: %s (expected auto, dark, or light)", c.UI.Theme))
	}

	if c.UI.LogLimit < 0 {
		warnings = append(warnings, fmt.Sprintf("Invalid value for ui.log_limit: %d (must be >= 0)", c.UI.LogLimit))
	}

	for _, ext := range c.Render.OutputExtensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			warnings = append(warnings, fmt.Sprintf("Invalid output extension %q (expected a leading dot, e.g. \".mov\")", ext))
		}
	}

	if ext := c.Render.DefaultExtension; ext != "" {
		if !strings.HasPrefix(ext, ".") {
			warnings = append(warnings, fmt.Sprintf("Invalid value for render.default_extension: %s (expected a leading dot)", ext))
		} else if len(c.Render.OutputExtensions) > 0 && !containsFold(c.Render.OutputExtensions, ext) {
			warnings = append(warnings, fmt.Sprintf("render.default_extension %s is not listed in render.output_extensions", ext))
		}
	}

	if c.Paths.Renderer != "" && !filepath.IsAbs(c.Paths.Renderer) {
		warnings = append(warnings, fmt.Sprintf("paths.aerender is relative: %s", c.Paths.Renderer))
	}

	return warnings
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
