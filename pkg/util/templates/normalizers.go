package templates

import "strings"

// LongDesc normalizes a command's long description taken from an
// indented Go raw string: common indentation is stripped and the result
// trimmed of surrounding whitespace.
func LongDesc(s string) string {
	if len(s) == 0 {
		return s
	}
	return normalizer{s}.heredoc().trim().string
}

// Examples normalizes a command's example block to a fixed two space
// indent per line.
func Examples(s string) string {
	if len(s) == 0 {
		return s
	}
	return normalizer{s}.trim().indent().string
}

type normalizer struct {
	string
}

// heredoc strips the common leading whitespace shared by every non-empty
// line, so raw strings can be indented to match the surrounding code.
func (s normalizer) heredoc() normalizer {
	lines := strings.Split(s.string, "\n")

	prefix := ""
	prefixSet := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if !prefixSet || len(indent) < len(prefix) {
			prefix = indent
			prefixSet = true
		}
	}

	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, prefix)
	}
	s.string = strings.Join(lines, "\n")
	return s
}

func (s normalizer) trim() normalizer {
	s.string = strings.TrimSpace(s.string)
	return s
}

func (s normalizer) indent() normalizer {
	indentedLines := make([]string, 0, strings.Count(s.string, "\n")+1)
	for _, line := range strings.Split(s.string, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			indentedLines = append(indentedLines, "")
		} else {
			indentedLines = append(indentedLines, "  "+trimmed)
		}
	}
	s.string = strings.Join(indentedLines, "\n")
	return s
}
