// Package jsonpath resolves dotted paths inside decoded JSON alert payloads.
//
// Payloads are whatever encoding/json produces for an untyped target: nil,
// bool, float64 or json.Number, string, []any and map[string]any. Nothing in
// this package returns an error; a path that cannot be followed is absent.
package jsonpath

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
)

var errTrailingData = errors.New("unexpected data after top-level JSON value")

// Lookup follows path through value one dot-separated segment at a time.
// Object segments are keys; a segment made of digits indexes into an array.
// The bool reports whether the path resolved. A present JSON null resolves to
// (nil, true).
func Lookup(value any, path string) (any, bool) {
	if path == "" {
		return value, true
	}

	current := value
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// Present is Lookup that also treats a JSON null as absent.
func Present(value any, path string) (any, bool) {
	v, ok := Lookup(value, path)
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// String coerces a JSON value to its string form. Numbers use the shortest
// decimal representation and composites are rendered as compact JSON.
func String(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// Number coerces a JSON value to float64, returning NaN when the value has no
// numeric reading. Booleans count as 1 and 0.
func Number(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case bool:
		if val {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// Decode parses a request body into a payload, keeping numbers as json.Number
// so large integer identifiers survive string comparison.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailingData
	}
	return payload, nil
}
