package jsonpath

import (
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "null"
	}
}

// Member is a single key/value pair of an object. Objects keep their members
// in insertion order.
type Member struct {
	Key   string
	Value Value
}

// Value is a JSON-shaped value. The zero Value is Null.
type Value struct {
	kind    Kind
	boolean bool
	number  float64
	str     string
	items   []Value
	members []Member
}

// Null returns the null value. It is also the result of any access that does
// not resolve.
func Null() Value { return Value{} }

func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

func Number(n float64) Value { return Value{kind: KindNumber, number: n} }

func String(s string) Value { return Value{kind: KindString, str: s} }

// Array builds an array value from items.
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, items: items}
}

// NewObject builds an object value. Member order is preserved; a repeated
// key replaces the value at its first position, as JSON decoders do.
func NewObject(members ...Member) Value {
	unique := make([]Member, 0, len(members))
	seen := make(map[string]int, len(members))
	for _, m := range members {
		if i, ok := seen[m.Key]; ok {
			unique[i].Value = m.Value
			continue
		}
		seen[m.Key] = len(unique)
		unique = append(unique, m)
	}
	return Value{kind: KindObject, members: unique}
}

// OrNull returns String(s), or Null when s is empty.
func OrNull(s string) Value {
	if s == "" {
		return Null()
	}
	return String(s)
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// IsContainer reports whether v is an array or an object.
func (v Value) IsContainer() bool { return v.kind == KindArray || v.kind == KindObject }

func (v Value) Bool() bool { return v.boolean }

func (v Value) Float() float64 { return v.number }

func (v Value) Str() string { return v.str }

// Len returns the number of items of an array or members of an object.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.items)
	case KindObject:
		return len(v.members)
	default:
		return 0
	}
}

// Items returns the elements of an array value.
func (v Value) Items() []Value { return v.items }

// Members returns the members of an object value in order.
func (v Value) Members() []Member { return v.members }

// Field returns the member named key. Arrays accept canonical decimal keys
// ("0", "12" but not "012") as indices. Anything else yields Null.
func (v Value) Field(key string) Value {
	switch v.kind {
	case KindObject:
		for _, m := range v.members {
			if m.Key == key {
				return m.Value
			}
		}
	case KindArray:
		if i, ok := arrayIndex(key); ok {
			return v.Index(i)
		}
	}
	return Null()
}

// Index returns the i-th element of an array. Anything else yields Null.
func (v Value) Index(i int) Value {
	if v.kind == KindArray && i >= 0 && i < len(v.items) {
		return v.items[i]
	}
	return Null()
}

func arrayIndex(key string) (int, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	for _, r := range key {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	i, err := strconv.Atoi(key)
	if err != nil {
		return 0, false
	}
	return i, true
}
