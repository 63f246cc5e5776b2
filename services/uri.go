package services

import (
	"net/url"
	"path"
	"strings"

	"tonearm/types"
)

// uriPrefix is the 6-character scheme prefix of a canonical library URI.
const uriPrefix = "file:/"

// ToPath converts a library URI or raw path to a normalized, decoded,
// absolute POSIX path. Values without the file: prefix are treated as
// raw paths. Empty input is an invalid-input error.
func ToPath(x string) (string, error) {
	if x == "" {
		return "", types.NewInvalidInput("uri or path must be a non-empty string")
	}

	p := x
	if strings.HasPrefix(x, uriPrefix) {
		// Strip the 5-character scheme, keeping the leading slash.
		decoded, err := url.PathUnescape(x[len("file:"):])
		if err != nil {
			return "", types.NewInvalidInput("malformed percent-encoding in uri")
		}
		p = decoded
	}

	return path.Clean(p), nil
}

// ToURI converts a path to its canonical file: URI, percent-encoding
// the path. Applying ToURI to an already-prefixed value returns it
// unchanged, so the function is idempotent.
func ToURI(x string) (string, error) {
	if x == "" {
		return "", types.NewInvalidInput("uri or path must be a non-empty string")
	}

	if strings.HasPrefix(x, uriPrefix) {
		return x, nil
	}

	u := url.URL{Path: x}
	return "file:" + u.EscapedPath(), nil
}
