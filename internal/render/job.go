// Package render runs aerender and tails its output.
package render

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrMissingField is returned by Job.Validate when a required field is empty.
var ErrMissingField = errors.New("please fill in all fields")

// Job is a single render request.
type Job struct {
	Project string
	Comp    string
	Output  string
}

// Trimmed returns j with surrounding whitespace removed from every field.
func (j Job) Trimmed() Job {
	return Job{
		Project: strings.TrimSpace(j.Project),
		Comp:    strings.TrimSpace(j.Comp),
		Output:  strings.TrimSpace(j.Output),
	}
}

// Validate reports which required fields are empty.
func (j Job) Validate() error {
	var missing []string
	if j.Project == "" {
		missing = append(missing, "project")
	}
	if j.Comp == "" {
		missing = append(missing, "composition")
	}
	if j.Output == "" {
		missing = append(missing, "output")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w (missing %s)", ErrMissingField, strings.Join(missing, ", "))
	}
	return nil
}

// Resolve returns j with absolute project and output paths.
func (j Job) Resolve() (Job, error) {
	project, err := filepath.Abs(j.Project)
	if err != nil {
		return j, fmt.Errorf("resolve project path: %w", err)
	}
	output, err := filepath.Abs(j.Output)
	if err != nil {
		return j, fmt.Errorf("resolve output path: %w", err)
	}
	j.Project = project
	j.Output = output
	return j, nil
}

// Args returns the aerender arguments for j, without the executable.
func (j Job) Args() []string {
	return []string{"-project", j.Project, "-comp", j.Comp, "-output", j.Output}
}

// NormalizeOutput appends defaultExt to path when path has no extension.
func NormalizeOutput(path, defaultExt string) string {
	if path == "" || defaultExt == "" {
		return path
	}
	if filepath.Ext(path) != "" {
		return path
	}
	if !strings.HasPrefix(defaultExt, ".") {
		defaultExt = "." + defaultExt
	}
	return path + defaultExt
}

// HasExtension reports whether path ends in one of exts, ignoring case.
// An empty exts list accepts everything.
func HasExtension(path string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
