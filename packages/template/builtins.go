package template

import (
	"encoding/base64"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// BuiltinFunc is a template function that needs no request data.
type BuiltinFunc func(args []string) string

func defaultBuiltins() map[string]BuiltinFunc {
	return map[string]BuiltinFunc{
		"uuid": func([]string) string {
			return uuid.NewString()
		},
		"now": func([]string) string {
			return time.Now().UTC().Format(time.RFC3339)
		},
		"timestamp": func([]string) string {
			return strconv.FormatInt(time.Now().Unix(), 10)
		},
		"timestampMs": func([]string) string {
			return strconv.FormatInt(time.Now().UnixMilli(), 10)
		},
		"date": func(args []string) string {
			format := "2006-01-02"
			if len(args) > 0 && args[0] != "" {
				format = args[0]
			}
			return time.Now().UTC().Format(format)
		},
		"base64": withFirst(func(s string) string {
			return base64.StdEncoding.EncodeToString([]byte(s))
		}),
		"base64Decode": withFirst(func(s string) string {
			decoded, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return ""
			}
			return string(decoded)
		}),
		"urlEncode": withFirst(url.QueryEscape),
		"urlDecode": withFirst(func(s string) string {
			decoded, err := url.QueryUnescape(s)
			if err != nil {
				return s
			}
			return decoded
		}),
	}
}

func withFirst(fn func(string) string) BuiltinFunc {
	return func(args []string) string {
		if len(args) < 1 {
			return ""
		}
		return fn(args[0])
	}
}
