package config

import (
	"path/filepath"
	"sort"

	"github.com/henri123lemoine/aerun/internal/debug"
)

// ApplicationPattern matches installed After Effects bundles on macOS.
const ApplicationPattern = "/Applications/Adobe After Effects */Adobe After Effects *.app"

// Fallbacks used when neither the config file nor discovery yields a path.
const (
	DefaultRendererPath    = "/Applications/Adobe After Effects 2024/aerender"
	DefaultApplicationPath = "/Applications/Adobe After Effects 2024/Adobe After Effects 2024.app"
)

// GlobFunc lists paths matching a pattern. filepath.Glob satisfies it.
type GlobFunc func(pattern string) ([]string, error)

// Discover finds the newest installed After Effects.
// The lexicographically greatest bundle path wins, which orders the
// version-numbered install directories by year. The renderer is the
// aerender binary that sits next to the bundle.
func Discover(glob GlobFunc) (Paths, bool) {
	if glob == nil {
		glob = filepath.Glob
	}

	apps, err := glob(ApplicationPattern)
	if err != nil {
		debug.Log("config: discovery glob failed: %v", err)
		return Paths{}, false
	}
	app, ok := Latest(apps)
	if !ok {
		return Paths{}, false
	}

	return Paths{
		Renderer:    filepath.Join(filepath.Dir(app), "aerender"),
		Application: app,
	}, true
}

// Latest returns the lexicographically greatest path.
func Latest(paths []string) (string, bool) {
	if len(paths) == 0 {
		return "", false
	}
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)
	return sorted[len(sorted)-1], true
}

// Resolve fills absent path fields: first from discovery, then from the
// fixed defaults. Each field is filled independently; fields already set
// are never replaced.
func Resolve(cfg *Config, glob GlobFunc) {
	if !cfg.Paths.Complete() {
		if found, ok := Discover(glob); ok {
			if cfg.Paths.Renderer == "" {
				cfg.Paths.Renderer = found.Renderer
			}
			if cfg.Paths.Application == "" {
				cfg.Paths.Application = found.Application
			}
			debug.Log("config: discovered %s", found.Application)
		}
	}

	if cfg.Paths.Renderer == "" {
		cfg.Paths.Renderer = DefaultRendererPath
	}
	if cfg.Paths.Application == "" {
		cfg.Paths.Application = DefaultApplicationPath
	}
}

// LoadResolved loads the config at path and resolves its tool paths.
func LoadResolved(path string, glob GlobFunc) *Config {
	cfg := Load(path)
	Resolve(cfg, glob)
	return cfg
}
