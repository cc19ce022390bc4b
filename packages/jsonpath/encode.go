package jsonpath

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

const hexDigits = "0123456789abcdef"

// MarshalJSON encodes v as compact JSON. Strings are not HTML-escaped.
func (v Value) MarshalJSON() ([]byte, error) {
	return v.appendJSON(nil), nil
}

// JSON returns the compact JSON encoding of v.
func (v Value) JSON() string {
	return string(v.appendJSON(nil))
}

// Text returns the plain-text form of a scalar. Containers render as JSON
// and Null renders as "null".
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.boolean)
	case KindNumber:
		return formatNumber(v.number)
	default:
		return v.JSON()
	}
}

// Render converts an evaluation result into template output: containers as
// compact JSON, scalars as text. Null produces no value.
func Render(v Value) (string, bool) {
	if v.IsNull() {
		return "", false
	}
	if v.IsContainer() {
		return v.JSON(), true
	}
	return v.Text(), true
}

func (v Value) appendJSON(buf []byte) []byte {
	switch v.kind {
	case KindBool:
		return strconv.AppendBool(buf, v.boolean)
	case KindNumber:
		if math.IsNaN(v.number) || math.IsInf(v.number, 0) {
			return append(buf, "null"...)
		}
		return append(buf, formatNumber(v.number)...)
	case KindString:
		return appendString(buf, v.str)
	case KindArray:
		buf = append(buf, '[')
		for i, item := range v.items {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = item.appendJSON(buf)
		}
		return append(buf, ']')
	case KindObject:
		buf = append(buf, '{')
		for i, m := range v.members {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendString(buf, m.Key)
			buf = append(buf, ':')
			buf = m.Value.appendJSON(buf)
		}
		return append(buf, '}')
	default:
		return append(buf, "null"...)
	}
}

// formatNumber follows the shortest round-trip form used by JSON encoders:
// plain decimals between 1e-6 and 1e21, exponent notation outside.
func formatNumber(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	// 1e-07 -> 1e-7
	if i := strings.IndexByte(s, 'e'); i >= 0 && len(s) > i+2 {
		sign, exp := s[i+1], strings.TrimLeft(s[i+2:], "0")
		if exp == "" {
			exp = "0"
		}
		s = s[:i+1] + string(sign) + exp
	}
	return s
}

func appendString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			switch c {
			case '"', '\\':
				buf = append(buf, '\\', c)
			case '\n':
				buf = append(buf, '\\', 'n')
			case '\r':
				buf = append(buf, '\\', 'r')
			case '\t':
				buf = append(buf, '\\', 't')
			case '\b':
				buf = append(buf, '\\', 'b')
			case '\f':
				buf = append(buf, '\\', 'f')
			default:
				if c < 0x20 {
					buf = append(buf, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
				} else {
					buf = append(buf, c)
				}
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			buf = append(buf, "\ufffd"...)
		} else {
			buf = append(buf, s[i:i+size]...)
		}
		i += size
	}
	return append(buf, '"')
}
