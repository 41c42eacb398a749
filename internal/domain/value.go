package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

type ValueKind int

const (
	ValueScalar ValueKind = iota
	ValueObject
)

// Value is a generated field value: either a scalar (string, int64,
// float64, bool) or an ordered object of nested values.
type Value struct {
	kind   ValueKind
	scalar any
	fields []Field
}

type Field struct {
	Name  string
	Value Value
}

func Scalar(v any) Value {
	return Value{kind: ValueScalar, scalar: v}
}

func Object(fields ...Field) Value {
	return Value{kind: ValueObject, fields: fields}
}

// StringField is shorthand for a nested string member of an object.
func StringField(name, v string) Field {
	return Field{Name: name, Value: Scalar(v)}
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsObject() bool { return v.kind == ValueObject }

func (v Value) Raw() any { return v.scalar }

func (v Value) Fields() []Field { return v.fields }

// Member returns the nested value stored under name.
func (v Value) Member(name string) (Value, bool) {
	for _, f := range v.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Interface converts the value to plain Go data: scalars as-is,
// objects as map[string]any.
func (v Value) Interface() any {
	if v.kind == ValueObject {
		m := make(map[string]any, len(v.fields))
		for _, f := range v.fields {
			m[f.Name] = f.Value.Interface()
		}
		return m
	}
	return v.scalar
}

// String renders a scalar as text. Objects render as compact JSON.
func (v Value) String() string {
	if v.kind == ValueObject {
		b, _ := v.MarshalJSON()
		return string(b)
	}
	switch s := v.scalar.(type) {
	case nil:
		return ""
	case string:
		return s
	case int64:
		return strconv.FormatInt(s, 10)
	case int:
		return strconv.Itoa(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		b, err := json.Marshal(s)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == ValueObject {
		return marshalFields(v.fields)
	}
	return json.Marshal(v.scalar)
}

// Record is one generated row; field order follows the schema.
type Record struct {
	fields []Field
}

func NewRecord(fields ...Field) Record {
	return Record{fields: fields}
}

// Set replaces an existing field in place or appends a new one.
func (r *Record) Set(name string, v Value) {
	for i := range r.fields {
		if r.fields[i].Name == name {
			r.fields[i].Value = v
			return
		}
	}
	r.fields = append(r.fields, Field{Name: name, Value: v})
}

func (r Record) Get(name string) (Value, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

func (r Record) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Name
	}
	return keys
}

func (r Record) Fields() []Field { return r.fields }

func (r Record) Len() int { return len(r.fields) }

func (r Record) Map() map[string]any {
	return Object(r.fields...).Interface().(map[string]any)
}

func (r Record) MarshalJSON() ([]byte, error) {
	return marshalFields(r.fields)
}

func marshalFields(fields []Field) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
