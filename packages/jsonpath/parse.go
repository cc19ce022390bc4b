package jsonpath

import (
	"errors"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned by Parse when the input is not a JSON document.
var ErrInvalidJSON = errors.New("invalid JSON")

// Parse decodes a JSON document into a Value, keeping object member order.
func Parse(data []byte) (Value, error) {
	if !gjson.ValidBytes(data) {
		return Null(), ErrInvalidJSON
	}
	return fromResult(gjson.ParseBytes(data)), nil
}

// ParseString is Parse for string input.
func ParseString(s string) (Value, error) {
	return Parse([]byte(s))
}

func fromResult(r gjson.Result) Value {
	switch r.Type {
	case gjson.False:
		return Bool(false)
	case gjson.True:
		return Bool(true)
	case gjson.Number:
		return Number(r.Num)
	case gjson.String:
		return String(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			items := make([]Value, 0)
			r.ForEach(func(_, item gjson.Result) bool {
				items = append(items, fromResult(item))
				return true
			})
			return Array(items...)
		}
		members := make([]Member, 0)
		r.ForEach(func(key, item gjson.Result) bool {
			members = append(members, Member{Key: key.Str, Value: fromResult(item)})
			return true
		})
		return NewObject(members...)
	default:
		return Null()
	}
}
