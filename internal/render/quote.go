package render

import "al.essio.dev/pkg/shellescape"

// FormatCommand renders argv as a line a user could paste into a POSIX
// shell. Plain words are left unquoted.
func FormatCommand(argv []string) string {
	return shellescape.QuoteCommand(argv)
}
