package sync

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode"

	"github.com/tidwall/gjson"
)

// FieldPrefix is prepended to field ids by the form builder.
const FieldPrefix = "form-field-"

// RawField is a submitted field as delivered by the form host.
type RawField struct {
	ID    string
	Value string
}

// FieldMapping maps normalised field keys to sanitised values.
// It is built once per submission and not modified afterwards.
type FieldMapping map[string]string

// Get returns the value for key, or "" when absent.
func (m FieldMapping) Get(key string) string {
	return m[key]
}

// Has reports whether key is present with a non-empty value.
func (m FieldMapping) Has(key string) bool {
	return m[key] != ""
}

// Missing returns the keys that are absent or empty, in the order given.
func (m FieldMapping) Missing(keys []string) []string {
	var result []string
	for _, k := range keys {
		if !m.Has(k) {
			result = append(result, k)
		}
	}
	return result
}

// Source returns a path addressable view over the mapping.
func (m FieldMapping) Source() Source {
	b, err := json.Marshal(map[string]string(m))
	if err != nil {
		return Source{}
	}
	return Source{data: gjson.ParseBytes(b)}
}

// NormalizeFields strips the form builder prefix from each field id and sanitises its value.
// Later duplicates of the same key win.
func NormalizeFields(raw []RawField) FieldMapping {
	result := make(FieldMapping, len(raw))
	for _, f := range raw {
		key := strings.TrimPrefix(f.ID, FieldPrefix)
		if key == "" {
			continue
		}
		result[key] = SanitizeText(f.Value)
	}
	return result
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// SanitizeText reduces a submitted value to a single line of plain text:
// tags are removed, control characters dropped and whitespace runs collapsed.
func SanitizeText(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
