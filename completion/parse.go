package completion

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/tsawler/formfill/literal"
)

// Status tags the outcome of a completion.
type Status int

const (
	// Unavailable means no usable response was received.
	Unavailable Status = iota
	// Unparseable means the response content was neither JSON nor a
	// Python style literal object.
	Unparseable
	// Parsed means Values holds the model's answer.
	Parsed
)

func (s Status) String() string {
	switch s {
	case Parsed:
		return "parsed"
	case Unparseable:
		return "unparseable"
	default:
		return "unavailable"
	}
}

var (
	// ErrNoChoices is reported when a response holds no completion choice.
	ErrNoChoices = errors.New("completion: response has no choices")
	// ErrUnparseable is reported when the content could not be read as an
	// object by either parser.
	ErrUnparseable = errors.New("completion: content is not an object")
)

// Result is the outcome of a completion. Values maps the keys of the
// model's answer, bare ("1") or bracketed ("{1}"), to fill text. It is
// empty unless Status is Parsed; Err then records why.
type Result struct {
	Status Status
	Values map[string]string
	Err    error
}

// Keys returns the answer keys in sorted order.
func (r Result) Keys() []string {
	keys := make([]string, 0, len(r.Values))
	for k := range r.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// StripFences removes Markdown code fences from the model's answer.
func StripFences(content string) string {
	content = strings.ReplaceAll(content, "```json", "")
	content = strings.ReplaceAll(content, "```", "")
	return strings.TrimSpace(content)
}

// ParseContent reads the model's answer. The fenced content is parsed as
// strict JSON first and as a Python literal second; the top level value
// must be an object.
func ParseContent(content string) Result {
	text := StripFences(content)

	values, jsonErr := parseJSON(text)
	if jsonErr == nil {
		return Result{Status: Parsed, Values: values}
	}
	values, litErr := parseLiteral(text)
	if litErr == nil {
		return Result{Status: Parsed, Values: values}
	}

	return Result{
		Status: Unparseable,
		Err:    fmt.Errorf("%w: json: %v; literal: %v", ErrUnparseable, jsonErr, litErr),
	}
}

func parseJSON(text string) (map[string]string, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON value")
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("top level value is %T, not an object", v)
	}
	values := make(map[string]string, len(obj))
	for k, val := range obj {
		values[k] = literal.Format(val)
	}
	return values, nil
}

func parseLiteral(text string) (map[string]string, error) {
	v, err := literal.Parse(text)
	if err != nil {
		return nil, err
	}
	m, ok := v.Map()
	if !ok {
		return nil, fmt.Errorf("top level value is a %s, not a dict", v.Kind)
	}
	values := make(map[string]string, len(m))
	for k, val := range m {
		values[k] = val.String()
	}
	return values, nil
}

// excerpt returns at most n runes of s.
func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func compact(raw string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(raw)); err != nil {
		return raw
	}
	return buf.String()
}
