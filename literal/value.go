// Package literal parses the Python literal syntax that language models
// often answer with when asked for JSON: single-quoted strings, True, False
// and None, tuples, trailing commas and comments.
package literal

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Kind is the type of a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Int
	Float
	String
	List
	Dict
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "None"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "str"
	case List:
		return "list"
	case Dict:
		return "dict"
	default:
		return "unknown"
	}
}

// Value is a parsed literal. Tuples and sets are reported as lists.
type Value struct {
	Kind Kind

	text  string // String content, or the canonical text of a number
	b     bool
	items []Value
	keys  []Value // Dict keys, parallel to items
}

// Bool reports the value of a Bool.
func (v Value) Bool() bool {
	return v.b
}

// Items returns the elements of a List or the values of a Dict.
func (v Value) Items() []Value {
	return v.items
}

// Map returns the entries of a Dict keyed by the text of each key, so the
// integer key 1 and the string key "1" both become "1". Later duplicates
// win. ok is false for any other kind.
func (v Value) Map() (m map[string]Value, ok bool) {
	if v.Kind != Dict {
		return nil, false
	}
	m = make(map[string]Value, len(v.keys))
	for i, k := range v.keys {
		m[k.keyString()] = v.items[i]
	}
	return m, true
}

func (v Value) keyString() string {
	switch v.Kind {
	case Null:
		return "None"
	case Bool:
		if v.b {
			return "True"
		}
		return "False"
	default:
		return v.String()
	}
}

// String renders the value as fill text. See Format.
func (v Value) String() string {
	return Format(v.Interface())
}

// Interface converts the value to the types encoding/json produces with
// UseNumber: nil, bool, json.Number, string, []any and map[string]any.
func (v Value) Interface() any {
	switch v.Kind {
	case Bool:
		return v.b
	case Int, Float:
		return json.Number(v.text)
	case String:
		return v.text
	case List:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	case Dict:
		out := make(map[string]any, len(v.items))
		for i, k := range v.keys {
			out[k.keyString()] = v.items[i].Interface()
		}
		return out
	default:
		return nil
	}
}

// Format renders a decoded value as fill text: strings verbatim, numbers as
// written, booleans as true or false, null as the empty string, lists
// joined with ", " and objects as compact JSON. It accepts the types
// encoding/json produces with UseNumber. This deliberately differs from
// Python's str(): None leaves the cell empty rather than printing "None".
func Format(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = Format(item)
		}
		return strings.Join(parts, ", ")
	default:
		return compactJSON(v)
	}
}

// compactJSON encodes v without HTML escaping so CJK text and markup stay
// readable in the filled cell.
func compactJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
