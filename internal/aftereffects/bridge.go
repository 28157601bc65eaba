// Package aftereffects talks to After Effects through its scripting bridge.
package aftereffects

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Bridge runs a script file inside a host application.
type Bridge interface {
	RunScript(ctx context.Context, application, scriptPath string) error
}

// OSAScript runs ExtendScript files through AppleScript's DoScriptFile.
type OSAScript struct {
	// Binary defaults to "osascript".
	Binary string
}

// RunScript blocks until After Effects has executed the script.
func (o OSAScript) RunScript(ctx context.Context, application, scriptPath string) error {
	bin := o.Binary
	if bin == "" {
		bin = "osascript"
	}

	cmd := exec.CommandContext(ctx, bin, "-e", DoScriptFile(application, scriptPath))
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", bin, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// DoScriptFile builds the AppleScript statement that asks application to run
// scriptPath.
func DoScriptFile(application, scriptPath string) string {
	return fmt.Sprintf("tell application %s to DoScriptFile %s",
		appleScriptString(application), appleScriptString(scriptPath))
}

// appleScriptString quotes s as an AppleScript string literal.
func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// BridgeFunc adapts a function to Bridge.
type BridgeFunc func(ctx context.Context, application, scriptPath string) error

// RunScript calls f.
func (f BridgeFunc) RunScript(ctx context.Context, application, scriptPath string) error {
	return f(ctx, application, scriptPath)
}
