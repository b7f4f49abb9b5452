package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is one member of an ordered JSON object.
type Field struct {
	Key   string
	Value any
}

// Object is a JSON object that keeps its member order. Decoded values are json.RawMessage.
type Object []Field

func (o *Object) Set(key string, v any) {
	*o = append(*o, Field{Key: key, Value: v})
}

func (o Object) Get(key string) (any, bool) {
	for _, f := range o {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Quantity decodes a member as a Quantity, whether it was built in memory or decoded.
func (o Object) Quantity(key string) (Quantity, bool) {
	v, ok := o.Get(key)
	if !ok {
		return Quantity{}, false
	}
	switch q := v.(type) {
	case Quantity:
		return q, true
	case *Quantity:
		return *q, q != nil
	case json.RawMessage:
		var out Quantity
		if err := json.Unmarshal(q, &out); err != nil {
			return Quantity{}, false
		}
		return out, true
	}
	return Quantity{}, false
}

// Text decodes a member as a string.
func (o Object) Text(key string) (string, bool) {
	v, ok := o.Get(key)
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case json.RawMessage:
		var out string
		if err := json.Unmarshal(s, &out); err != nil {
			return "", false
		}
		return out, true
	}
	return "", false
}

func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("schema: expected a JSON object")
	}
	var out Object
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("schema: expected an object key")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		out = append(out, Field{Key: key, Value: raw})
	}
	*o = out
	return nil
}
