package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf16"
)

// InfoLines renders the profile as "- KEY: value" lines for the agent task.
// Structured values are indented JSON with non-ASCII characters escaped.
// When redact is true the LinkedIn password is masked.
func (a *ApplyInfo) InfoLines(redact bool) string {
	src := a
	if redact {
		masked := a.Redacted()
		src = &masked
	}

	lines := make([]string, 0, 32)
	for _, f := range src.Fields() {
		value := f.Text
		if f.Structured != nil {
			value = formatStructured(f.Structured)
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", f.Key, value))
	}
	return strings.Join(lines, "\n")
}

func formatStructured(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return escapeNonASCII(buf.String())
}

// escapeNonASCII rewrites every non-ASCII rune as a \uXXXX escape (surrogate pairs above the BMP).
// Only valid inside JSON text, where non-ASCII can appear in strings alone.
func escapeNonASCII(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		case r < 0x80:
			sb.WriteRune(r)
		case r > 0xFFFF:
			r1, r2 := utf16.EncodeRune(r)
			fmt.Fprintf(&sb, `\u%04x\u%04x`, r1, r2)
		default:
			fmt.Fprintf(&sb, `\u%04x`, r)
		}
	}
	return sb.String()
}
