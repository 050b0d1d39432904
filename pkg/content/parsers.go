package content

import (
	"fmt"
	"strconv"
)

// Object is one decoded JSON object from the API.
type Object map[string]any

// List is a normalized list response.
type List struct {
	Items []Object
	Total int
}

// Empty reports whether the list has no items.
func (l List) Empty() bool { return len(l.Items) == 0 }

// ParseList normalizes the list shapes the API returns: a bare array, or
// an object holding the array under "items" or "data". Total is the
// numeric "total" field when present, the item count otherwise.
func ParseList(data any) List {
	items := extractItems(data)
	total := len(items)
	if m, ok := data.(map[string]any); ok {
		if n, ok := m["total"].(float64); ok {
			total = int(n)
		}
	}
	return List{Items: items, Total: total}
}

func extractItems(data any) []Object {
	var raw []any
	switch v := data.(type) {
	case []any:
		raw = v
	case map[string]any:
		if arr, ok := v["items"].([]any); ok {
			raw = arr
		} else if arr, ok := v["data"].([]any); ok {
			raw = arr
		}
	}
	out := make([]Object, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Object(m))
		}
	}
	return out
}

// ParseSingle normalizes a single-record response. An object carrying an
// id or slug is the record itself; an array yields its first element; an
// envelope whose first items/data element has an id or slug yields that
// element; any other object is returned as-is. Everything else is nil.
func ParseSingle(data any) Object {
	switch v := data.(type) {
	case map[string]any:
		if hasIdentity(v) {
			return v
		}
		for _, key := range []string{"items", "data"} {
			if arr, ok := v[key].([]any); ok && len(arr) > 0 {
				if first, ok := arr[0].(map[string]any); ok && hasIdentity(first) {
					return first
				}
				break
			}
		}
		return v
	case []any:
		if len(v) == 0 {
			return nil
		}
		if first, ok := v[0].(map[string]any); ok {
			return first
		}
	}
	return nil
}

func hasIdentity(m map[string]any) bool {
	return m["id"] != nil || m["slug"] != nil
}

// String returns field key as a string. Numbers are formatted without a
// trailing ".0"; missing or non-scalar values yield "".
func (o Object) String(key string) string {
	return scalarString(o[key])
}

// Has reports whether key is present and non-null.
func (o Object) Has(key string) bool {
	return o != nil && o[key] != nil
}

// Raw returns the undecoded value for key.
func (o Object) Raw(key string) any {
	if o == nil {
		return nil
	}
	return o[key]
}

// First returns the first non-empty string among keys.
func (o Object) First(keys ...string) string {
	for _, k := range keys {
		if s := o.String(k); s != "" {
			return s
		}
	}
	return ""
}

// Int returns a numeric field, or 0.
func (o Object) Int(key string) int {
	switch v := o[key].(type) {
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

// Bool returns a boolean field, or false.
func (o Object) Bool(key string) bool {
	b, _ := o[key].(bool)
	return b
}

// Object returns a nested object, or nil.
func (o Object) Object(key string) Object {
	if m, ok := o[key].(map[string]any); ok {
		return m
	}
	return nil
}

// Objects returns an array of objects, skipping other elements.
func (o Object) Objects(key string) []Object {
	arr, _ := o[key].([]any)
	out := make([]Object, 0, len(arr))
	for _, v := range arr {
		if m, ok := v.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// Strings returns an array of scalars as strings.
func (o Object) Strings(key string) []string {
	arr, _ := o[key].([]any)
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s := scalarString(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ID returns the record's id, or its slug when it has no id.
func (o Object) ID() string {
	return o.First("id", "slug")
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	case nil:
		return ""
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(s)
	}
}
