package http

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	neturl "net/url"
	"strings"
)

// DigestAuth is the state of one RFC 2617 digest challenge response.
type DigestAuth struct {
	Username string
	Password string
	Realm    string
	Nonce    string
	URI      string
	Qop      string
	Nc       string
	Cnonce   string
	Opaque   string
	Method   string
}

// ParseWWWAuthenticate splits a Digest challenge into its parameters.
func ParseWWWAuthenticate(header string) map[string]string {
	params := make(map[string]string)

	header = strings.TrimSpace(header)
	if len(header) >= 7 && strings.EqualFold(header[:7], "Digest ") {
		header = header[7:]
	}

	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		params[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"`)
	}

	return params
}

// Response computes the digest response hash.
func (d *DigestAuth) Response() string {
	ha1 := md5Hex(d.Username + ":" + d.Realm + ":" + d.Password)
	ha2 := md5Hex(d.Method + ":" + d.URI)

	if d.Qop == "auth" || d.Qop == "auth-int" {
		return md5Hex(strings.Join([]string{ha1, d.Nonce, d.Nc, d.Cnonce, d.Qop, ha2}, ":"))
	}
	return md5Hex(ha1 + ":" + d.Nonce + ":" + ha2)
}

// BuildAuthorizationHeader renders the Authorization header value.
func (d *DigestAuth) BuildAuthorizationHeader() string {
	parts := []string{
		fmt.Sprintf(`username="%s"`, d.Username),
		fmt.Sprintf(`realm="%s"`, d.Realm),
		fmt.Sprintf(`nonce="%s"`, d.Nonce),
		fmt.Sprintf(`uri="%s"`, d.URI),
		fmt.Sprintf(`response="%s"`, d.Response()),
	}

	if d.Qop != "" {
		parts = append(parts, "qop="+d.Qop, "nc="+d.Nc, fmt.Sprintf(`cnonce="%s"`, d.Cnonce))
	}
	if d.Opaque != "" {
		parts = append(parts, fmt.Sprintf(`opaque="%s"`, d.Opaque))
	}

	return "Digest " + strings.Join(parts, ", ")
}

// digestAuthorization answers the challenge for req's digest credentials.
func digestAuthorization(req *Request, challenge string) (string, error) {
	params := ParseWWWAuthenticate(challenge)
	auth := &DigestAuth{
		Username: req.Digest.Username,
		Password: req.Digest.Password,
		Realm:    params["realm"],
		Nonce:    params["nonce"],
		URI:      req.URL,
		Qop:      params["qop"],
		Opaque:   params["opaque"],
		Method:   req.Method,
	}
	if u, err := neturl.Parse(req.URL); err == nil {
		auth.URI = u.RequestURI()
	}

	if auth.Qop != "" {
		cnonce, err := GenerateCnonce()
		if err != nil {
			return "", err
		}
		auth.Nc = "00000001"
		auth.Cnonce = cnonce
		if strings.Contains(auth.Qop, "auth") {
			auth.Qop = "auth"
		}
	}
	return auth.BuildAuthorizationHeader(), nil
}

// GenerateCnonce returns a random client nonce.
func GenerateCnonce() (string, error) {
	b := make([]byte, 8)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
