// Package routepath normalizes browser paths before they reach the route table.
//
// Two entry points exist. Canonicalize is strict and is used for paths that
// arrive from a client (navigate requests, link clicks): it rejects inputs
// that could smuggle a different route. Normalize never fails and is used by
// route resolution, where an unusable path simply resolves to NotFound.
package routepath

import (
	"errors"
	"net/url"
	"strings"
)

// Result contains the outcome of canonicalization.
type Result struct {
	// Path is the canonical path, without query string.
	Path string

	// Query is the raw query string, without the leading "?".
	Query string

	// Changed reports whether Path differs from the input path.
	Changed bool
}

// Full returns the path with its query string re-attached.
func (r Result) Full() string {
	return JoinPathQuery(r.Path, r.Query)
}

// Canonicalization errors.
var (
	ErrInvalidPath           = errors.New("invalid path")
	ErrBackslashInPath       = errors.New("path contains backslash")
	ErrNullByteInPath        = errors.New("path contains null byte")
	ErrInvalidPercentEscape  = errors.New("invalid percent escape sequence")
	ErrPathEscapesRoot       = errors.New("path escapes root via ..")
	ErrEncodedSlashInSegment = errors.New("encoded slash (%2F) in path segment")
)

// Canonicalize normalizes a path:
//   - a missing leading slash is added
//   - repeated slashes collapse (/blog//post → /blog/post)
//   - "." segments are dropped and ".." segments are resolved
//   - a trailing slash is removed, except for the root "/"
//
// Backslashes, NUL bytes, malformed percent-escapes and ".." above the root
// are rejected. The query string is split off and returned untouched.
func Canonicalize(input string) (Result, error) {
	if input == "" {
		return Result{Path: "/", Changed: true}, nil
	}

	path, query := SplitPathAndQuery(input)

	if strings.Contains(path, "\\") {
		return Result{}, ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return Result{}, ErrNullByteInPath
	}
	if strings.Contains(path, "%") {
		if err := validatePercentEscapes(path); err != nil {
			return Result{}, err
		}
	}

	segments := strings.Split(path, "/")
	kept := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(kept) == 0 {
				return Result{}, ErrPathEscapesRoot
			}
			kept = kept[:len(kept)-1]
		default:
			kept = append(kept, seg)
		}
	}

	canon := "/" + strings.Join(kept, "/")
	return Result{
		Path:    canon,
		Query:   query,
		Changed: canon != path,
	}, nil
}

// Normalize is the lenient form used by route resolution: the query string
// is dropped, a leading slash is ensured and a single trailing slash is
// removed (root stays "/"). Inputs Canonicalize would reject are returned
// with only those cheap fixes applied, so they fail to match any route.
func Normalize(input string) string {
	if res, err := Canonicalize(input); err == nil {
		return res.Path
	}
	path, _ := SplitPathAndQuery(input)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

// ValidateNavPath canonicalizes a navigation target sent by a client.
// Targets must be site-relative: absolute URLs and protocol-relative
// "//host" forms are rejected so a session can never be steered off-site.
func ValidateNavPath(path string) (Result, error) {
	if strings.HasPrefix(path, "http://") ||
		strings.HasPrefix(path, "https://") ||
		strings.HasPrefix(path, "//") {
		return Result{}, ErrInvalidPath
	}
	if !strings.HasPrefix(path, "/") {
		return Result{}, ErrInvalidPath
	}
	return Canonicalize(path)
}

func validatePercentEscapes(path string) error {
	for i := 0; i < len(path); i++ {
		if path[i] != '%' {
			continue
		}
		if i+2 >= len(path) || !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 2
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// DecodeSegment percent-decodes a single literal path segment. A segment
// that decodes to something containing "/" is rejected, so "/sobre%2Fx"
// never matches a two-segment literal pattern.
func DecodeSegment(segment string) (string, error) {
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return "", ErrInvalidPercentEscape
	}
	if strings.Contains(decoded, "/") {
		return "", ErrEncodedSlashInSegment
	}
	return decoded, nil
}

// DecodeParam percent-decodes a route parameter segment. The raw path
// already fixed the segment boundaries, so an encoded slash stays in the
// value: "a%2Fb" decodes to "a/b".
func DecodeParam(segment string) (string, error) {
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return "", ErrInvalidPercentEscape
	}
	return decoded, nil
}

// Split returns the non-empty segments of a path. "/" yields nil.
func Split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// SplitPathAndQuery splits input at the first "?".
// The query is returned without the leading "?".
func SplitPathAndQuery(input string) (path, query string) {
	path, query, _ = strings.Cut(input, "?")
	return path, query
}

// JoinPathQuery is the inverse of SplitPathAndQuery.
func JoinPathQuery(path, query string) string {
	if query == "" {
		return path
	}
	return path + "?" + query
}
