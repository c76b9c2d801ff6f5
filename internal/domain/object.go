package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	errNotObject = errors.New("not a JSON object")
	jsonNull     = json.RawMessage("null")
)

// Object is a JSON object that keeps its members in document order and
// their values as raw JSON. A repeated key keeps its first position and its
// last value.
type Object struct {
	keys   []string
	values map[string]json.RawMessage
}

// Keys returns the member names in order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Len returns the number of members.
func (o *Object) Len() int { return len(o.keys) }

// Get returns the raw value of key.
func (o *Object) Get(key string) (json.RawMessage, bool) {
	v, ok := o.values[key]
	return v, ok
}

// GetString returns the value of key when it is a JSON string, and "" otherwise.
func (o *Object) GetString(key string) string {
	raw, ok := o.values[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Set stores a raw value. An existing key keeps its position.
func (o *Object) Set(key string, value json.RawMessage) {
	if o.values == nil {
		o.values = make(map[string]json.RawMessage)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// SetValue marshals v and stores it under key.
func (o *Object) SetValue(key string, v any) error {
	raw, err := marshalJSON(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	o.Set(key, raw)
	return nil
}

// UnmarshalJSON decodes a JSON object, remembering member order.
func (o *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errNotObject
	}

	*o = Object{values: make(map[string]json.RawMessage)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode %q: %w", key, err)
		}
		o.Set(key, raw)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MarshalJSON writes the members in order, with escaped non-ASCII text in
// string values written as UTF-8.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := marshalJSON(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		v := o.values[key]
		if len(v) == 0 {
			v = jsonNull
		}
		v, err = literalStrings(v)
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", key, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Number is a float64 written the way Python prints floats: integral
// values keep a ".0" and very large or small values use an exponent.
type Number float64

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("unsupported number %v", f)
	}
	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return []byte(strconv.FormatFloat(f, 'e', -1, 64)), nil
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return []byte(s), nil
}

// marshalJSON encodes v without escaping HTML characters.
func marshalJSON(v any) ([]byte, error) {
	return encodeJSON(v, "")
}

func encodeJSON(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// literalStrings rewrites every escaped string literal in raw so that it is
// written the way marshalJSON writes it: non-ASCII and HTML characters as
// UTF-8, only quotes, backslashes and control characters escaped.
func literalStrings(raw json.RawMessage) (json.RawMessage, error) {
	if bytes.IndexByte(raw, '\\') < 0 {
		return raw, nil
	}
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); {
		if raw[i] != '"' {
			out = append(out, raw[i])
			i++
			continue
		}
		end, escaped := stringEnd(raw, i)
		if end < 0 {
			return nil, errors.New("unterminated string")
		}
		lit := raw[i:end]
		if escaped {
			var s string
			if err := json.Unmarshal(lit, &s); err != nil {
				return nil, err
			}
			enc, err := marshalJSON(s)
			if err != nil {
				return nil, err
			}
			lit = enc
		}
		out = append(out, lit...)
		i = end
	}
	return out, nil
}

// stringEnd returns the index just past the string literal starting at
// raw[start], and whether the literal contains an escape.
func stringEnd(raw []byte, start int) (int, bool) {
	escaped := false
	for j := start + 1; j < len(raw); j++ {
		switch raw[j] {
		case '\\':
			escaped = true
			j++
		case '"':
			return j + 1, escaped
		}
	}
	return -1, escaped
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), jsonNull)
}
