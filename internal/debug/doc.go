// Package debug is aerun's diagnostic channel.
//
// Failures that are deliberately not shown to the user (a broken config
// file, a scripting bridge that could not run) are written here. Output is
// discarded unless the --debug flag points it at a file, or a CLI command
// points it at stderr.
package debug
