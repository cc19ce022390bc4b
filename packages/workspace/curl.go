package workspace

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/abdul-hamid-achik/respext/packages/model"
)

var (
	curlPathPattern = regexp.MustCompile(`https?://[^/]+(/[^?#]*)?`)
	curlNamePattern = regexp.MustCompile(`[^a-zA-Z0-9]+`)
)

// FromCurl reads curl commands, one per line with backslash continuations,
// and returns them as a workspace named name. Blank lines and lines starting
// with # are skipped.
func FromCurl(r io.Reader, name string) (*File, error) {
	var (
		commands []string
		current  strings.Builder
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasSuffix(line, "\\") {
			current.WriteString(strings.TrimSuffix(line, "\\"))
			current.WriteString(" ")
			continue
		}
		current.WriteString(line)
		commands = append(commands, current.String())
		current.Reset()
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read curl commands: %w", err)
	}
	if current.Len() > 0 {
		commands = append(commands, current.String())
	}

	f := &File{Workspace: name}
	for i, cmd := range commands {
		req, err := ParseCurl(cmd)
		if err != nil {
			return nil, fmt.Errorf("curl command %d: %w", i+1, err)
		}
		f.Requests = append(f.Requests, req)
	}
	return f, nil
}

// ParseCurl converts a single curl command into a request definition. A
// data flag turns the default GET into POST, and -u becomes basic auth.
func ParseCurl(cmd string) (Request, error) {
	req := Request{Method: "GET"}

	cmd = strings.TrimSpace(cmd)
	if cmd == "curl" {
		return req, fmt.Errorf("no URL specified")
	}
	cmd = strings.TrimPrefix(cmd, "curl ")

	tokens := tokenize(cmd)
	value := func(i int) (string, error) {
		if i+1 >= len(tokens) {
			return "", fmt.Errorf("missing value for %s", tokens[i])
		}
		return tokens[i+1], nil
	}

	for i := 0; i < len(tokens); {
		token := tokens[i]

		switch token {
		case "-X", "--request":
			v, err := value(i)
			if err != nil {
				return req, err
			}
			req.Method = strings.ToUpper(v)
			i += 2

		case "-H", "--header":
			v, err := value(i)
			if err != nil {
				return req, err
			}
			if name, val, ok := strings.Cut(v, ":"); ok {
				req.Headers = append(req.Headers, model.Header{
					Name:  strings.TrimSpace(name),
					Value: strings.TrimSpace(val),
				})
			}
			i += 2

		case "-d", "--data", "--data-raw", "--data-binary":
			v, err := value(i)
			if err != nil {
				return req, err
			}
			req.Body = v
			if req.Method == "GET" {
				req.Method = "POST"
			}
			i += 2

		case "-u", "--user":
			v, err := value(i)
			if err != nil {
				return req, err
			}
			user, pass, _ := strings.Cut(v, ":")
			req.Authentication = &model.Authentication{
				Type:     model.AuthBasic,
				Username: user,
				Password: pass,
			}
			i += 2

		case "-A", "--user-agent", "-e", "--referer", "-b", "--cookie":
			v, err := value(i)
			if err != nil {
				return req, err
			}
			req.Headers = append(req.Headers, model.Header{Name: curlHeaderFor(token), Value: v})
			i += 2

		case "-k", "--insecure", "-L", "--location", "-s", "--silent", "-v", "--verbose", "-i", "--include":
			i++

		default:
			switch {
			case strings.HasPrefix(token, "-"):
				// unknown flag, skip its value if it has one
				if i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "-") && !isURL(tokens[i+1]) {
					i += 2
				} else {
					i++
				}
			default:
				if req.URL == "" && isURL(token) {
					req.URL = token
				}
				i++
			}
		}
	}

	if req.URL == "" {
		return req, fmt.Errorf("no URL found in curl command")
	}
	req.Name = curlRequestName(req.URL, req.Method)
	return req, nil
}

func curlHeaderFor(flag string) string {
	switch flag {
	case "-A", "--user-agent":
		return "User-Agent"
	case "-e", "--referer":
		return "Referer"
	default:
		return "Cookie"
	}
}

// tokenize splits a shell command line into words, honoring quotes and
// backslash escapes.
func tokenize(cmd string) []string {
	var (
		tokens        []string
		current       strings.Builder
		inSingleQuote bool
		inDoubleQuote bool
		escaped       bool
	)

	for _, r := range cmd {
		if escaped {
			current.WriteRune(r)
			escaped = false
			continue
		}

		switch r {
		case '\\':
			if inSingleQuote {
				current.WriteRune(r)
			} else {
				escaped = true
			}
		case '\'':
			if inDoubleQuote {
				current.WriteRune(r)
			} else {
				inSingleQuote = !inSingleQuote
			}
		case '"':
			if inSingleQuote {
				current.WriteRune(r)
			} else {
				inDoubleQuote = !inDoubleQuote
			}
		case ' ', '\t':
			if inSingleQuote || inDoubleQuote {
				current.WriteRune(r)
			} else if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "{{")
}

// curlRequestName derives a name like "get users_42" from the method and
// URL path.
func curlRequestName(url, method string) string {
	path := ""
	if m := curlPathPattern.FindStringSubmatch(url); len(m) > 1 {
		path = m[1]
	}
	path = strings.Trim(curlNamePattern.ReplaceAllString(path, "_"), "_")
	if path == "" {
		path = "root"
	}
	return strings.ToLower(method) + " " + path
}
