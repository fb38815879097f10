package domain

import (
	"encoding/json"
	"strings"
)

// Terms is a multi-valued staging attribute (Medium tags, authors).
// Raw keeps the serialized column text for structural validation. Names is the decoded sequence,
// one entry per array item; items without a usable name decode to "".
type Terms struct {
	Raw   *string
	Names []string
}

// ParseTerms decodes a JSON array whose items are either strings or objects carrying key
// (e.g. {"term": "go"} or {"name": "Jane"}). Undecodable text leaves Names empty; the raw
// value is kept so validation can report it.
func ParseTerms(raw *string, key string) Terms {
	t := Terms{Raw: raw}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return t
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(*raw), &items); err != nil {
		return t
	}

	for _, item := range items {
		t.Names = append(t.Names, termName(item, key))
	}
	return t
}

func termName(item json.RawMessage, key string) string {
	var s string
	if err := json.Unmarshal(item, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj map[string]any
	if err := json.Unmarshal(item, &obj); err != nil {
		return ""
	}
	v, _ := obj[key].(string)
	return strings.TrimSpace(v)
}

// NewTerms builds Terms from names, serializing them as [{key: name}, ...].
func NewTerms(key string, names ...string) Terms {
	items := make([]map[string]string, 0, len(names))
	for _, n := range names {
		items = append(items, map[string]string{key: n})
	}
	raw, _ := json.Marshal(items)
	return Terms{Raw: StringPtr(string(raw)), Names: names}
}

// FirstOf returns element 0 of names, or nil when the list is empty or element 0 is blank.
// Later elements are never consulted.
func FirstOf(names []string) *string {
	if len(names) == 0 || names[0] == "" {
		return nil
	}
	first := names[0]
	return &first
}
