// Package placeholder merges field values into email templates.
//
// Three syntaxes are recognized for a key k, each tolerating whitespace
// inside the braces: {{k}}, #{k} and {k}. Placeholders whose key is not in
// the field map are left untouched. Substituted values are never scanned
// again, so the result does not depend on the order of the keys.
package placeholder

import (
	"fmt"
	"regexp"
	"strings"
)

// Fields maps placeholder keys to values. A nil value renders as "".
type Fields map[string]any

var pattern = regexp.MustCompile(`\{\{\s*([^{}]*?)\s*\}\}|#\{\s*([^{}]*?)\s*\}|\{\s*([^{}]*?)\s*\}`)

// Render substitutes every known placeholder in tpl.
func Render(tpl string, fields Fields) string {
	if tpl == "" || len(fields) == 0 {
		return tpl
	}

	matches := pattern.FindAllStringSubmatchIndex(tpl, -1)
	if len(matches) == 0 {
		return tpl
	}

	var b strings.Builder
	b.Grow(len(tpl))
	last := 0
	for _, m := range matches {
		key, ok := matchedKey(tpl, m)
		if !ok {
			continue
		}
		val, known := fields[key]
		if !known {
			continue
		}
		b.WriteString(tpl[last:m[0]])
		b.WriteString(stringify(val))
		last = m[1]
	}
	b.WriteString(tpl[last:])
	return b.String()
}

// matchedKey returns the key captured by whichever alternative matched.
func matchedKey(s string, m []int) (string, bool) {
	for g := 1; g <= 3; g++ {
		start, end := m[2*g], m[2*g+1]
		if start >= 0 {
			return s[start:end], true
		}
	}
	return "", false
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// TextToHTML converts plain-text line breaks to <br> tags.
func TextToHTML(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "<br>")
}
