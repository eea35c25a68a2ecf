// Package protocol implements the line-oriented wire format spoken between
// the browser and the helper: escaping of single lines, collection of
// argument blocks terminated by a sentinel, and reply encoding.
package protocol

import "strings"

const (
	// Sentinel terminates an argument block. It is matched against the raw
	// line, so it can never be produced by an escaped payload.
	Sentinel = `\E`

	// StatusOK is the reply line for a successful command.
	StatusOK = `\1`
	// StatusFailed is the reply line for a failed command.
	StatusFailed = `\0`
)

var (
	decoder = strings.NewReplacer(`\n`, "\n", `\\`, `\`)
	encoder = strings.NewReplacer(`\`, `\\`, "\n", `\n`)
)

// Decode resolves the escape sequences of a raw line. The scan runs once,
// left to right, and never looks at its own output.
func Decode(raw string) string {
	if raw == "" {
		return raw
	}
	return decoder.Replace(raw)
}

// Encode escapes backslashes and newlines so text fits on one line.
func Encode(text string) string {
	if text == "" {
		return text
	}
	return encoder.Replace(text)
}

// Status returns the unescaped status line for ok.
func Status(ok bool) string {
	if ok {
		return StatusOK
	}
	return StatusFailed
}
