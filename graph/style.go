package graph

import (
	"sort"
	"strings"
)

// Style holds the visual attributes of a cell as key-value pairs, for
// example {"shape": "box", "fill": "#dae8fc"}. Cells adopt a new style only
// through Model.SetStyle so the replacement is recorded and reversible.
type Style map[string]string

// ParseStyle parses the compact "key=value;key2=value2" text form into a
// Style. Empty segments are skipped; a segment without '=' becomes a key
// with an empty value (a boolean-like flag).
func ParseStyle(s string) Style {
	style := Style{}
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			style[key] = ""
			continue
		}
		style[key] = value
	}
	return style
}

// String renders the style in the "key=value;..." text form with keys in
// sorted order, so equal styles always render identically.
func (s Style) String() string {
	if len(s) == 0 {
		return ""
	}
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(k)
		if s[k] != "" {
			b.WriteByte('=')
			b.WriteString(s[k])
		}
	}
	return b.String()
}

// Clone returns a copy of the style. A nil style yields nil.
func (s Style) Clone() Style {
	if s == nil {
		return nil
	}
	clone := make(Style, len(s))
	for k, v := range s {
		clone[k] = v
	}
	return clone
}

// Equal reports whether two styles carry the same attributes. Nil and empty
// styles are considered equal.
func (s Style) Equal(other Style) bool {
	if len(s) != len(other) {
		return false
	}
	for k, v := range s {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}
