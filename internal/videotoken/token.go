// Package videotoken encodes upstream video locations into opaque URL-safe
// tokens for providers whose download links cannot be addressed by job id.
// The token is reversible obfuscation, not a capability: decoding must be
// followed by the host allow-list check before any outbound request.
package videotoken

import (
	"encoding/base64"
	"errors"
	"net/url"
	"strings"
)

var (
	// ErrInvalidToken marks a token that is not valid base64url.
	ErrInvalidToken = errors.New("invalid video token")

	// ErrMalformedURL marks a decoded value that is not an absolute http(s) URL.
	ErrMalformedURL = errors.New("malformed video url")

	// ErrUnapprovedHost marks a decoded URL pointing outside the allow-list.
	ErrUnapprovedHost = errors.New("unapproved video host")
)

// Encode wraps an upstream URI in an unpadded base64url token.
func Encode(uri string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(uri))
}

// Decode reverses Encode. Padded tokens are accepted for compatibility with
// clients that re-encode the value.
func Decode(token string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(token, "="))
	if err != nil {
		return "", ErrInvalidToken
	}
	return string(raw), nil
}

// Resolve decodes a token and validates the result against the single
// allow-listed host. It returns the upstream URI only when the token decodes
// to a well-formed absolute http(s) URL on exactly that host.
func Resolve(token, allowedHost string) (string, error) {
	uri, err := Decode(token)
	if err != nil {
		return "", err
	}
	parsed, err := url.Parse(uri)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return "", ErrMalformedURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", ErrMalformedURL
	}
	if parsed.Hostname() != allowedHost {
		return "", ErrUnapprovedHost
	}
	return uri, nil
}
