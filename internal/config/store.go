package config

import (
	"errors"
	"slices"
	"sync"
)

// ErrIncompletePaths is returned by Store.Update when a path is empty.
var ErrIncompletePaths = errors.New("both aerender and After Effects paths are required")

// Store holds the configuration in use by the running process.
// Listings and renders read paths from it on every call, so an Update is
// visible to the next operation without a restart.
type Store struct {
	mu   sync.RWMutex
	path string
	cfg  Config
}

// NewStore wraps cfg, persisted at path.
func NewStore(path string, cfg *Config) *Store {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Store{path: path, cfg: cfg.clone()}
}

// Path returns the file the store saves to.
func (s *Store) Path() string {
	return s.path
}

// Config returns a copy of the active configuration.
func (s *Store) Config() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg := s.cfg.clone()
	return &cfg
}

// Paths returns the active tool paths.
func (s *Store) Paths() Paths {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Paths
}

// Renderer returns the active aerender path.
func (s *Store) Renderer() string {
	return s.Paths().Renderer
}

// Application returns the active After Effects bundle path.
func (s *Store) Application() string {
	return s.Paths().Application
}

// Update saves p to disk and, once the save succeeded, makes it active.
func (s *Store) Update(p Paths) error {
	if !p.Complete() {
		return ErrIncompletePaths
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cfg
	next.Paths = p
	if err := Save(s.path, &next); err != nil {
		return err
	}
	s.cfg = next
	return nil
}

// clone copies c without sharing slices.
func (c Config) clone() Config {
	c.Render.OutputExtensions = slices.Clone(c.Render.OutputExtensions)
	return c
}
