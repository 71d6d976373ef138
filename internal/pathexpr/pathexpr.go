// Package pathexpr implements the Path Resolver: a single-valued JSON-path
// sublanguage over decoded JSON documents (spec.md §4.1).
//
// Grammar: `$` (`.KEY` | `[INDEX]`)*, where KEY is a non-empty run of
// digits, ASCII letters and `_`, and INDEX is a non-negative decimal
// integer. The leading `$` is required.
package pathexpr

import (
	"strconv"

	"github.com/EpicWink/seddy/internal/errs"
)

// segKind distinguishes a parsed path segment.
type segKind int

const (
	segKey segKind = iota
	segIndex
)

type segment struct {
	kind  segKind
	key   string
	index int
}

// Path is a parsed path expression, ready to be evaluated against any
// number of documents.
type Path struct {
	raw      string
	segments []segment
}

// String returns the original expression text.
func (p *Path) String() string { return p.raw }

// Parse parses a path expression. It never returns anything but an
// *errs.Error of kind KindInvalidPath.
func Parse(expr string) (*Path, error) {
	if len(expr) == 0 || expr[0] != '$' {
		return nil, errs.New(errs.KindInvalidPath, "path must start with '$': %q", expr)
	}
	rest := expr[1:]
	var segs []segment
	for len(rest) > 0 {
		switch rest[0] {
		case '.':
			rest = rest[1:]
			key, tail, err := scanKey(rest)
			if err != nil {
				return nil, err
			}
			if key == "" {
				return nil, errs.New(errs.KindInvalidPath, "empty key in path %q", expr)
			}
			segs = append(segs, segment{kind: segKey, key: key})
			rest = tail
		case '[':
			rest = rest[1:]
			end := indexOfByte(rest, ']')
			if end < 0 {
				return nil, errs.New(errs.KindInvalidPath, "unclosed '[' in path %q", expr)
			}
			digits := rest[:end]
			if digits == "" {
				return nil, errs.New(errs.KindInvalidPath, "empty index in path %q", expr)
			}
			idx, convErr := strconv.Atoi(digits)
			if convErr != nil || idx < 0 || !isAllDigits(digits) {
				return nil, errs.New(errs.KindInvalidPath, "invalid index %q in path %q", digits, expr)
			}
			segs = append(segs, segment{kind: segIndex, index: idx})
			rest = rest[end+1:]
		default:
			return nil, errs.New(errs.KindInvalidPath, "unexpected character %q in path %q", rest[0], expr)
		}
	}
	return &Path{raw: expr, segments: segs}, nil
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func indexOfByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

func isKeyByte(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
}

func scanKey(s string) (key string, rest string, err error) {
	i := 0
	for i < len(s) && isKeyByte(s[i]) {
		i++
	}
	if i < len(s) && s[i] != '.' && s[i] != '[' {
		return "", "", errs.New(errs.KindInvalidPath, "illegal character %q after key %q", s[i], s[:i])
	}
	return s[:i], s[i:], nil
}

// Resolve evaluates p against doc (the result of json.Unmarshal into
// `any`). On a MissingKey failure, if hasDefault is true, def is returned
// instead of an error (spec.md §4.1); InvalidPath is structural and is
// never produced here since p was already parsed, but a MissingKey can
// still surface for a bad index/key at evaluation time.
func (p *Path) Resolve(doc any, hasDefault bool, def any) (any, error) {
	cur := doc
	for _, seg := range p.segments {
		switch seg.kind {
		case segKey:
			obj, ok := cur.(map[string]any)
			if !ok {
				return missing(p, hasDefault, def)
			}
			v, ok := obj[seg.key]
			if !ok {
				return missing(p, hasDefault, def)
			}
			cur = v
		case segIndex:
			arr, ok := cur.([]any)
			if !ok || seg.index >= len(arr) {
				return missing(p, hasDefault, def)
			}
			cur = arr[seg.index]
		}
	}
	return cur, nil
}

func missing(p *Path, hasDefault bool, def any) (any, error) {
	if hasDefault {
		return def, nil
	}
	return nil, errs.New(errs.KindMissingKey, "path %q not found in document", p.raw)
}
