package router

import (
	"strings"

	"github.com/renatoruis/oh-institutional/internal/errors"
	"github.com/renatoruis/oh-institutional/pkg/routepath"
)

// CompiledRoute is the matcher derived from a pattern.
// Compiling is pure: the same pattern always yields an equivalent matcher.
type CompiledRoute struct {
	// Pattern is the source pattern.
	Pattern string

	// ParamNames lists parameter names left to right.
	ParamNames []string

	segments []segment
}

type segment struct {
	literal string
	param   string
}

func (s segment) isParam() bool { return s.param != "" }

// Compile converts a pattern into a matcher.
//
// The pattern must start with "/". Literal segments match exactly (after
// percent-decoding the path segment); ":name" segments match one or more
// characters other than "/". Parameter names are word characters and must
// be unique within the pattern. The root pattern "/" matches only "/".
func Compile(pattern string) (*CompiledRoute, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, errors.New("R001").WithDetailf("pattern %q must start with \"/\"", pattern)
	}
	if len(pattern) > 1 && strings.HasSuffix(pattern, "/") {
		return nil, errors.New("R001").WithDetailf("pattern %q has a trailing slash, which never matches a normalized path", pattern)
	}

	c := &CompiledRoute{Pattern: pattern}
	if pattern == "/" {
		return c, nil
	}

	seen := make(map[string]bool)
	for _, raw := range strings.Split(pattern[1:], "/") {
		if raw == "" {
			return nil, errors.New("R001").WithDetailf("pattern %q has an empty segment", pattern)
		}

		if strings.HasPrefix(raw, ":") {
			name := raw[1:]
			if !isParamName(name) {
				return nil, errors.New("R001").WithDetailf("pattern %q: invalid parameter %q", pattern, raw)
			}
			if seen[name] {
				return nil, errors.New("R003").WithDetailf("pattern %q repeats parameter %q", pattern, name)
			}
			seen[name] = true
			c.ParamNames = append(c.ParamNames, name)
			c.segments = append(c.segments, segment{param: name})
			continue
		}

		if strings.Contains(raw, ":") {
			return nil, errors.New("R001").WithDetailf("pattern %q: \":\" is only allowed at the start of a segment", pattern)
		}
		c.segments = append(c.segments, segment{literal: raw})
	}

	return c, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(pattern string) *CompiledRoute {
	c, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return c
}

// Match matches a normalized path (no query, no trailing slash) against c.
// It returns the decoded parameters in pattern order, or false.
func (c *CompiledRoute) Match(path string) (Params, bool) {
	parts := routepath.Split(path)
	if len(parts) != len(c.segments) {
		return nil, false
	}
	// "/" vs "//" style inputs both split to nothing; only an exact root matches root.
	if len(parts) == 0 && path != "/" {
		return nil, false
	}

	var params Params
	if len(c.ParamNames) > 0 {
		params = make(Params, 0, len(c.ParamNames))
	}

	for i, seg := range c.segments {
		raw := parts[i]
		if raw == "" {
			return nil, false
		}
		if seg.isParam() {
			value, err := routepath.DecodeParam(raw)
			if err != nil {
				return nil, false
			}
			params = append(params, Param{Name: seg.param, Value: value})
			continue
		}
		decoded, err := routepath.DecodeSegment(raw)
		if err != nil {
			return nil, false
		}
		if decoded != seg.literal && raw != seg.literal {
			return nil, false
		}
	}

	if params == nil {
		params = Params{}
	}
	return params, true
}

// Match is the free-function form of CompiledRoute.Match.
func Match(path string, c *CompiledRoute) (Params, bool) {
	return c.Match(path)
}

func isParamName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}
