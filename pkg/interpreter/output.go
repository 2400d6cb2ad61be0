package interpreter

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jwoLondon/Rivulet/pkg/runtime"
)

// OutputList is the list printed after a run.
const OutputList = 1

// OutputMode selects how the output list is rendered.
type OutputMode string

const (
	OutputNone    OutputMode = "none"
	OutputNumeric OutputMode = "numeric"
	OutputUnicode OutputMode = "unicode"
)

// ParseOutputMode accepts none, numeric or unicode (case-insensitive).
func ParseOutputMode(s string) (OutputMode, error) {
	switch mode := OutputMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case OutputNone, OutputNumeric, OutputUnicode:
		return mode, nil
	case "":
		return OutputNumeric, nil
	}
	return "", fmt.Errorf("unknown output mode %q (want none, numeric or unicode)", s)
}

// FormatNumeric joins values with single spaces.
func FormatNumeric(values []int64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, " ")
}

// FormatUnicode reads each value as a code point, skipping values that are not
// valid runes.
func FormatUnicode(values []int64) string {
	var b strings.Builder
	for _, v := range values {
		if v < 0 || v > utf8.MaxRune {
			continue
		}
		if r := rune(v); utf8.ValidRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Render formats the output list of state. The second result is false in
// OutputNone mode.
func Render(mode OutputMode, state *runtime.State) (string, bool) {
	values, _ := state.List(OutputList)
	switch mode {
	case OutputNone:
		return "", false
	case OutputUnicode:
		return FormatUnicode(values), true
	}
	return FormatNumeric(values), true
}
