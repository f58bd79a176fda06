package record

import (
	"fmt"
	"strings"
)

// Template is an ordered list of attribute field names.
type Template []string

// ParseTemplate splits an underscore-joined template name.
func ParseTemplate(s string) Template {
	if s == "" {
		return nil
	}
	return Template(strings.Split(s, Separator))
}

// ParseTemplates parses a configured template list, preserving order.
func ParseTemplates(names []string) []Template {
	out := make([]Template, 0, len(names))
	for _, n := range names {
		out = append(out, ParseTemplate(n))
	}
	return out
}

// String returns the underscore-joined template name.
func (t Template) String() string {
	return strings.Join(t, Separator)
}

// CompoundKey is a template plus the values that instantiate it.
// len(Values) always equals len(Template).
type CompoundKey struct {
	Template Template
	Values   []string
}

// ParseCompoundKey decodes "Template:value_value".
func ParseCompoundKey(s string) (CompoundKey, error) {
	name, info, ok := strings.Cut(s, ":")
	if !ok {
		return CompoundKey{}, fmt.Errorf("compound key %q: missing ':'", s)
	}
	tmpl := ParseTemplate(name)
	if len(tmpl) == 0 {
		return CompoundKey{}, fmt.Errorf("compound key %q: empty template", s)
	}
	values := strings.Split(info, Separator)
	if len(values) != len(tmpl) {
		return CompoundKey{}, fmt.Errorf("compound key %q: %d fields but %d values", s, len(tmpl), len(values))
	}
	return CompoundKey{Template: tmpl, Values: values}, nil
}

// String encodes the key as "Template:value_value".
func (k CompoundKey) String() string {
	return k.Template.String() + ":" + strings.Join(k.Values, Separator)
}

// Map returns the key as a field → value map.
func (k CompoundKey) Map() map[string]string {
	m := make(map[string]string, len(k.Template))
	for i, f := range k.Template {
		m[f] = k.Values[i]
	}
	return m
}

// BuildKey picks the longest template whose fields are all present in
// attrs and instantiates it. Ties go to the template declared first, so
// callers must pass templates in a stable, meaningful order.
//
// A field counts as present only when its value is non-empty and does not
// contain the value separator, since such a value could not be decoded
// back into the same fields.
func BuildKey(attrs map[string]string, templates []Template) (CompoundKey, bool) {
	var best Template
	for _, tmpl := range templates {
		if len(tmpl) == 0 || len(tmpl) <= len(best) {
			continue
		}
		if satisfies(attrs, tmpl) {
			best = tmpl
		}
	}
	if best == nil {
		return CompoundKey{}, false
	}

	values := make([]string, len(best))
	for i, f := range best {
		values[i] = attrs[f]
	}
	return CompoundKey{Template: best, Values: values}, true
}

func satisfies(attrs map[string]string, tmpl Template) bool {
	for _, f := range tmpl {
		v, ok := attrs[f]
		if !ok || v == "" || strings.Contains(v, Separator) {
			return false
		}
	}
	return true
}
