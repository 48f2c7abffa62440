package domain

import (
	"bytes"
	"encoding/json"
)

// Field is one labelled value extracted from a model response.
type Field struct {
	Key   string
	Value string
}

// Artifact holds the structured fields of a generated response together with
// the verbatim text it was parsed from.
type Artifact struct {
	Fields      []Field
	RawResponse string
}

// Get returns the value stored under key, or "".
func (a Artifact) Get(key string) string {
	for _, f := range a.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}

// Set replaces the value under key, appending the field when absent.
func (a *Artifact) Set(key, value string) {
	for i := range a.Fields {
		if a.Fields[i].Key == key {
			a.Fields[i].Value = value
			return
		}
	}
	a.Fields = append(a.Fields, Field{Key: key, Value: value})
}

// MarshalJSON flattens the artifact into a single object keeping field order,
// with raw_response last.
func (a Artifact) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	write := func(key, value string) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := marshalNoEscape(value)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}
	for _, f := range a.Fields {
		if f.Key == "raw_response" {
			continue
		}
		if err := write(f.Key, f.Value); err != nil {
			return nil, err
		}
	}
	if err := write("raw_response", a.RawResponse); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores an artifact written by MarshalJSON. Field order is not
// preserved.
func (a *Artifact) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Fields = a.Fields[:0]
	for k, v := range raw {
		if k == "raw_response" {
			a.RawResponse = v
			continue
		}
		a.Fields = append(a.Fields, Field{Key: k, Value: v})
	}
	return nil
}

func marshalNoEscape(v string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
