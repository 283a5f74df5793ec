package include

import (
	"fmt"
	"sort"
)

// Value is a variable bound in an inclusion frame. It is one of String,
// List or Map.
type Value interface {
	isValue()
}

// String is a scalar value.
type String string

// List is an ordered value, typically the positional arguments of a call.
type List []string

// Map is a keyed value.
type Map map[string]string

func (String) isValue() {}
func (List) isValue()   {}
func (Map) isValue()    {}

// Vars maps variable names to values.
type Vars map[string]Value

// Clone returns a shallow copy of v.
func (v Vars) Clone() Vars {
	out := make(Vars, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Record is one element of a flattened List or Map. Index is an int for
// lists and the key for maps.
type Record struct {
	Name  string
	Index any
	Value string
}

func (r Record) context() map[string]any {
	return map[string]any{
		"name":  r.Name,
		"index": r.Index,
		"value": r.Value,
	}
}

// Flatten writes the template-context entries for one variable into dst.
// A list or map named n also yields "n[i]" / "n[key]" entries, and n itself
// becomes the ordered list of its records.
func Flatten(dst map[string]any, name string, value Value) {
	switch v := value.(type) {
	case String:
		dst[name] = string(v)
	case List:
		records := make([]any, 0, len(v))
		for i, item := range v {
			key := fmt.Sprintf("%s[%d]", name, i)
			dst[key] = item
			records = append(records, Record{Name: key, Index: i, Value: item}.context())
		}
		dst[name] = records
	case Map:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		records := make([]any, 0, len(v))
		for _, k := range keys {
			key := fmt.Sprintf("%s[%s]", name, k)
			dst[key] = v[k]
			records = append(records, Record{Name: key, Index: k, Value: v[k]}.context())
		}
		dst[name] = records
	case nil:
		dst[name] = ""
	}
}
