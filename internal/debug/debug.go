package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	enabled bool
	sink    io.Writer
	logFile *os.File
	mu      sync.Mutex
)

// DefaultPath returns the log file used by --debug when no path is given.
func DefaultPath() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	return filepath.Join(cacheDir, "aerun", "debug.log")
}

// Enable turns on debug logging to the specified file, truncating it.
func Enable(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	mu.Lock()
	closeLocked()
	logFile = f
	sink = f
	enabled = true
	mu.Unlock()

	Log("Debug logging enabled (pid %d)", os.Getpid())
	return nil
}

// EnableWriter sends debug output to w. The caller keeps ownership of w.
func EnableWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()
	sink = w
	enabled = w != nil
}

// Close stops debug logging and closes the log file if Enable opened one.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
}

func closeLocked() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	sink = nil
	enabled = false
}

// IsEnabled returns whether debug logging is enabled.
func IsEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Log writes a debug message if debugging is enabled.
func Log(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled || sink == nil {
		return
	}

	timestamp := time.Now().Format("15:04:05.000")
	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(sink, "[%s] %s\n", timestamp, msg)
}

// Timed logs the duration of an operation. Usage:
//
//	defer debug.Timed("list compositions")()
func Timed(name string) func() {
	if !IsEnabled() {
		return func() {}
	}

	start := time.Now()
	Log("%s started", name)

	return func() {
		Log("%s completed in %v", name, time.Since(start))
	}
}
