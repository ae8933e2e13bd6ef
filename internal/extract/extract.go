// Package extract pulls the JSON payload out of free-form model output.
//
// Models wrap JSON in prose and markdown fences. Extraction runs an ordered
// chain of strategies and keeps the first result that parses.
package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Want restricts which top-level JSON value a strategy looks for.
type Want int

const (
	Object Want = iota
	Array
)

func (w Want) openers() string {
	switch w {
	case Object:
		return "{"
	case Array:
		return "["
	default:
		return ""
	}
}

func (w Want) closers() string {
	switch w {
	case Object:
		return "}"
	case Array:
		return "]"
	default:
		return ""
	}
}

func (w Want) matches(v any) bool {
	switch w {
	case Object:
		_, ok := v.(map[string]any)
		return ok
	case Array:
		_, ok := v.([]any)
		return ok
	}
	return false
}

// Error means no strategy produced a parseable payload.
type Error struct {
	Sample string
}

func (e *Error) Error() string {
	if e.Sample == "" {
		return "extract: empty response"
	}
	return fmt.Sprintf("extract: no parseable JSON payload in %q", e.Sample)
}

// Strategy attempts to find a payload in text. ok is false when it found nothing usable.
type Strategy func(text string, want Want) (v any, ok bool)

// Strategies is the order Extract tries.
var Strategies = []Strategy{Balanced, Fenced, Stripped}

// Extract returns the decoded payload from raw model output.
func Extract(raw string, want Want) (any, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, &Error{}
	}
	for _, s := range Strategies {
		if v, ok := s(text, want); ok {
			return v, nil
		}
	}
	return nil, &Error{Sample: sample(text)}
}

// Balanced decodes the widest bracket-balanced region that parses as want.
// Regions nested inside an earlier match are skipped.
func Balanced(text string, want Want) (any, bool) {
	var (
		best  any
		width int
	)
	for start := 0; start < len(text); {
		i := strings.IndexAny(text[start:], want.openers())
		if i < 0 {
			break
		}
		i += start
		start = i + 1
		end, ok := matchingClose(text, i)
		if !ok {
			continue
		}
		v, ok := parse(text[i:end+1], want)
		if !ok {
			continue
		}
		if n := end + 1 - i; n > width {
			best, width = v, n
		}
		start = end + 1
	}
	return best, width > 0
}

var fence = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*[ \t]*\r?\n?(.*?)```")

// Fenced runs Balanced on the body of each markdown code fence.
func Fenced(text string, want Want) (any, bool) {
	for _, m := range fence.FindAllStringSubmatch(text, -1) {
		if v, ok := Balanced(strings.TrimSpace(m[1]), want); ok {
			return v, true
		}
	}
	return nil, false
}

// Stripped drops everything before the first opener and after the last closer.
func Stripped(text string, want Want) (any, bool) {
	start := strings.IndexAny(text, want.openers())
	end := strings.LastIndexAny(text, want.closers())
	if start < 0 || end <= start {
		return nil, false
	}
	return parse(text[start:end+1], want)
}

// matchingClose returns the index of the bracket closing the one at open,
// ignoring brackets inside JSON strings.
func matchingClose(text string, open int) (int, bool) {
	depth := 0
	inString := false
	escape := false
	for i := open; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escape:
				escape = false
			case c == '\\':
				escape = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func parse(s string, want Want) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return v, want.matches(v)
}

func sample(s string) string {
	const limit = 120
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
