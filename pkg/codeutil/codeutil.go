// Package codeutil extracts redemption codes from messy user input,
// such as codes pasted together with a price line or payment note.
package codeutil

import (
	"regexp"
	"strings"
)

var (
	standardCodeRe = regexp.MustCompile(`[A-Za-z0-9]{4}(?:-[A-Za-z0-9]{4}){3}`)
	genericCodeRe  = regexp.MustCompile(`(?i)[A-Z0-9-]{8,32}`)
	letterRe       = regexp.MustCompile(`[A-Za-z]`)
)

// Normalize extracts a code from free-form input.
//
// Accepts inputs like:
//   - "ABCD-EFGH-IJKL-MNOP"
//   - "ABCD-EFGH-IJKL-MNOP\n¥12.5"
//   - "ABCD-EFGH-IJKL-MNOP paid"
//
// It prefers the canonical XXXX-XXXX-XXXX-XXXX shape, then any code-like
// token that contains at least one letter, then the first token of the
// first non-empty line.
func Normalize(value string) string {
	text := strings.TrimSpace(value)
	if text == "" {
		return ""
	}

	if m := standardCodeRe.FindString(text); m != "" {
		return m
	}

	// Generic tokens must contain a letter so prices and order numbers
	// are not mistaken for codes.
	for _, m := range genericCodeRe.FindAllString(text, -1) {
		if letterRe.MatchString(m) {
			return m
		}
	}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		return strings.Fields(line)[0]
	}

	return text
}
