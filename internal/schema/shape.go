package schema

import (
	"fmt"
	"strings"
	"time"
)

// Kind is the JSON type a Field accepts.
type Kind int

const (
	String Kind = iota
	Bool
	Date
	Enum
	StringList
	ObjectList
)

func (k Kind) String() string {
	switch k {
	case String, Enum:
		return "string"
	case Bool:
		return "boolean"
	case Date:
		return "date"
	case StringList:
		return "array of strings"
	case ObjectList:
		return "array"
	default:
		return "value"
	}
}

// Field declares one key of an object shape.
//
// Absent and null values take the field's zero value unless Required is set.
// Enum fields fall back to Default when the value is not one of Values.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	NonEmpty bool
	MinItems int
	Values   []string
	Default  string
	Elem     *Shape
}

// Shape is an ordered set of fields. Fields are checked in declaration order,
// so the first reported error is the top-most, left-most one.
type Shape struct {
	Fields []Field
}

// Object is a normalized payload object: every declared field is present with
// a value of the Go type matching its Kind.
type Object map[string]any

func (o Object) str(name string) string { s, _ := o[name].(string); return s }
func (o Object) boolean(name string) bool { b, _ := o[name].(bool); return b }
func (o Object) date(name string) *time.Time { t, _ := o[name].(*time.Time); return t }
func (o Object) stringList(name string) []string { s, _ := o[name].([]string); return s }
func (o Object) objects(name string) []Object { s, _ := o[name].([]Object); return s }

// Walk checks v against s and returns the normalized object.
func (s *Shape) Walk(v any) (Object, error) {
	return walkObject(v, s, "")
}

// WalkList checks that v is an array whose items all match s.
func (s *Shape) WalkList(v any) ([]Object, error) {
	return walkList(v, s, "", 0)
}

func walkObject(v any, s *Shape, path string) (Object, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errAt(path, "expected object")
	}
	out := make(Object, len(s.Fields))
	for _, f := range s.Fields {
		fp := joinPath(path, f.Name)
		raw, present := m[f.Name]
		if !present || raw == nil {
			if f.Required {
				return nil, errAt(fp, "required "+f.Kind.String()+" missing")
			}
			out[f.Name] = f.zero()
			continue
		}
		val, err := f.normalize(raw, fp)
		if err != nil {
			return nil, err
		}
		out[f.Name] = val
	}
	return out, nil
}

func walkList(v any, s *Shape, path string, minItems int) ([]Object, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, errAt(path, "expected array")
	}
	if len(items) < minItems {
		return nil, errAt(path, fmt.Sprintf("at least %d item(s) required", minItems))
	}
	out := make([]Object, 0, len(items))
	for i, item := range items {
		obj, err := walkObject(item, s, indexPath(path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}

func (f Field) zero() any {
	switch f.Kind {
	case Bool:
		return false
	case Date:
		return (*time.Time)(nil)
	case Enum:
		return f.Default
	case StringList:
		return []string{}
	case ObjectList:
		return []Object{}
	default:
		return ""
	}
}

func (f Field) normalize(raw any, path string) (any, error) {
	switch f.Kind {
	case String:
		s, ok := raw.(string)
		if !ok {
			return nil, errAt(path, "expected string")
		}
		s = strings.TrimSpace(s)
		if f.NonEmpty && s == "" {
			return nil, errAt(path, "must not be empty")
		}
		return s, nil
	case Bool:
		b, ok := raw.(bool)
		if !ok {
			return nil, errAt(path, "expected boolean")
		}
		return b, nil
	case Date:
		s, ok := raw.(string)
		if !ok {
			return nil, errAt(path, "expected date string")
		}
		if strings.TrimSpace(s) == "" {
			return (*time.Time)(nil), nil
		}
		t, err := ParseDate(s)
		if err != nil {
			return nil, errAt(path, err.Error())
		}
		return &t, nil
	case Enum:
		s, _ := raw.(string)
		s = strings.ToLower(strings.TrimSpace(s))
		for _, v := range f.Values {
			if s == v {
				return s, nil
			}
		}
		return f.Default, nil
	case StringList:
		items, ok := raw.([]any)
		if !ok {
			return nil, errAt(path, "expected array")
		}
		// Set semantics: blanks dropped, first occurrence kept.
		out := make([]string, 0, len(items))
		seen := make(map[string]bool, len(items))
		for i, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, errAt(indexPath(path, i), "expected string")
			}
			s = strings.TrimSpace(s)
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
		return out, nil
	case ObjectList:
		return walkList(raw, f.Elem, path, f.MinItems)
	}
	return nil, errAt(path, "unsupported field kind")
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate accepts a calendar date or timestamp. Calendar dates resolve to
// midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func indexPath(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}
