// Package exec hands finished renders over to the desktop.
package exec

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
)

// RevealCommand returns the command that shows path in the file manager of
// goos, or nil when the platform has none.
func RevealCommand(goos, path string) []string {
	switch goos {
	case "darwin":
		// Opens Finder with the file selected.
		return []string{"open", "-R", path}
	case "windows":
		return []string{"explorer", "/select," + path}
	case "linux", "freebsd", "openbsd", "netbsd":
		// xdg-open has no "select"; open the containing directory.
		return []string{"xdg-open", filepath.Dir(path)}
	}
	return nil
}

// Reveal shows path in the platform file manager without waiting for it.
func Reveal(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	argv := RevealCommand(runtime.GOOS, abs)
	if argv == nil {
		return fmt.Errorf("reveal is not supported on %s", runtime.GOOS)
	}
	return OpenDetached(argv)
}

// OpenDetached starts argv in a detached process.
// This is useful for commands that should outlive aerun.
func OpenDetached(argv []string) error {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	// Reap the child in the background so it does not linger as a zombie.
	go func() { _ = cmd.Wait() }()
	return nil
}
