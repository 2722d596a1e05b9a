package stringutils

import (
	"runtime"
	"strings"
)

// Function that normalizes line endings to platform being run on.
// Useful for tests, but possibly useful elsewhere?
func CrossPlatformNormalizeLineEndings(s string) string {
	return crossPlatformNormalizeLineEndings(s, runtime.GOOS)
}

// Internal only function to allow injecting the platform for testing
func crossPlatformNormalizeLineEndings(s string, platform string) string {
	lineEnding := "\n"
	if platform == "windows" {
		lineEnding = "\r\n"
	}

	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")

	// Trim all whitespace from empty lines
	for i, line := range lines {
		if len(strings.TrimSpace(line)) == 0 {
			lines[i] = ""
		}
	}

	return strings.Join(lines, lineEnding)
}
