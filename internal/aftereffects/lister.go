package aftereffects

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/henri123lemoine/aerun/internal/debug"
)

// Fixed file names inside the temp directory. The script and its output
// live at well-known paths so After Effects can be pointed at them.
const (
	ScriptFileName = "list_comps.jsx"
	OutputFileName = "comps.txt"
	lockFileName   = "aerun-comps.lock"
)

// ApplicationSource reports the After Effects bundle to script.
// config.Store satisfies it.
type ApplicationSource interface {
	Application() string
}

// Lister enumerates the compositions of a project.
type Lister struct {
	bridge  Bridge
	app     ApplicationSource
	tempDir string
}

// NewLister creates a Lister. An empty tempDir means os.TempDir().
func NewLister(bridge Bridge, app ApplicationSource, tempDir string) *Lister {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Lister{bridge: bridge, app: app, tempDir: tempDir}
}

// ScriptPath returns where the generated script is written.
func (l *Lister) ScriptPath() string {
	return filepath.Join(l.tempDir, ScriptFileName)
}

// OutputPath returns where the script writes composition names.
func (l *Lister) OutputPath() string {
	return filepath.Join(l.tempDir, OutputFileName)
}

// List returns the composition names of project in project order.
// Any failure is written to the debug log and yields an empty list.
func (l *Lister) List(ctx context.Context, project string) []string {
	comps, err := l.Compositions(ctx, project)
	if err != nil {
		debug.Log("compositions: %s: %v", project, err)
		return []string{}
	}
	return comps
}

// Compositions is List with the failure reported to the caller.
// A script that ran but wrote no output is not an error.
func (l *Lister) Compositions(ctx context.Context, project string) ([]string, error) {
	defer debug.Timed("list compositions " + project)()

	abs, err := filepath.Abs(project)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(l.tempDir, 0755); err != nil {
		return nil, err
	}

	// The temp paths are shared by every listing on this machine.
	fileLock := flock.New(filepath.Join(l.tempDir, lockFileName))
	if err := fileLock.Lock(); err != nil {
		return nil, fmt.Errorf("lock %s: %w", l.tempDir, err)
	}
	defer fileLock.Unlock()

	// A leftover file from an earlier project must not be mistaken for ours.
	if err := os.Remove(l.OutputPath()); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("remove stale output: %w", err)
	}

	script, err := ListCompsScript(ScriptParams{Project: abs, Output: l.OutputPath()})
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(l.ScriptPath(), []byte(script), 0644); err != nil {
		return nil, fmt.Errorf("write script: %w", err)
	}

	app := l.app.Application()
	debug.Log("compositions: running %s in %s", l.ScriptPath(), app)
	if err := l.bridge.RunScript(ctx, app, l.ScriptPath()); err != nil {
		return nil, fmt.Errorf("run script in %s: %w", app, err)
	}

	data, err := os.ReadFile(l.OutputPath())
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	return ParseNames(data), nil
}

// ParseNames splits the script output into names, one per line.
// Both \n and \r\n line endings are accepted and a final newline is
// optional. Lines have no length limit.
func ParseNames(data []byte) []string {
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return []string{}
	}
	names := strings.Split(text, "\n")
	for i, name := range names {
		names[i] = strings.TrimSuffix(name, "\r")
	}
	return names
}
