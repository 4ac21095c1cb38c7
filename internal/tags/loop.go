package tags

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2"
)

// targetRegex matches the target list of a for header up to and including
// the `in` keyword.
var targetRegex = regexp.MustCompile(`^\s*(\*|[A-Za-z_][A-Za-z0-9_-]*(?:\s*,\s*[A-Za-z_][A-Za-z0-9_-]*)?)\s+in\s+`)

// withSuffixRegex matches a trailing `with` word.
var withSuffixRegex = regexp.MustCompile(`\s+with\s*$`)

// ParseLoopHeader parses the part of a for directive after the `for` keyword.
// argsRange locates args in the source file; it is used to compute the
// position of the iterable expression.
func ParseLoopHeader(args string, argsRange hcl.Range) (*Loop, error) {
	m := targetRegex.FindStringSubmatchIndex(args)
	if m == nil {
		return nil, fmt.Errorf("invalid for header %q: expected `for <target> in <expression>`", args)
	}

	target := args[m[2]:m[3]]
	iterable := strings.TrimSpace(args[m[1]:])
	if iterable == "" {
		return nil, fmt.Errorf("for header %q has no iterable expression", args)
	}

	loop := &Loop{
		Iterable:      iterable,
		IterableRange: subRange(argsRange, args, m[1]+strings.Index(args[m[1]:], iterable), len(iterable)),
	}
	switch {
	case target == "*":
		loop.Spread = true
	case strings.Contains(target, ","):
		parts := strings.SplitN(target, ",", 2)
		loop.KeyVar = strings.TrimSpace(parts[0])
		loop.ValueVar = strings.TrimSpace(parts[1])
		if loop.KeyVar == loop.ValueVar {
			return nil, fmt.Errorf("for header %q uses %q for both key and value", args, loop.KeyVar)
		}
	default:
		loop.ValueVar = target
	}
	return loop, nil
}

// parseThisFileArgs parses everything after `thisfile`: nothing, `with`,
// `for ... in ...` or `for ... in ... with`.
func parseThisFileArgs(args string, argsRange hcl.Range) (with bool, loop *Loop, err error) {
	if args == "" {
		return false, nil, nil
	}
	if args == "with" {
		return true, nil, nil
	}

	rest, ok := strings.CutPrefix(args, "for")
	if !ok || rest == "" || !isSpace(rest[0]) {
		return false, nil, fmt.Errorf("unexpected %q after thisfile: expected `with` or a for header", args)
	}
	if loc := withSuffixRegex.FindStringIndex(rest); loc != nil {
		with = true
		rest = rest[:loc[0]]
	}
	loop, err = ParseLoopHeader(rest, shiftRange(argsRange, args, len("for")))
	if err != nil {
		return false, nil, err
	}
	return with, loop, nil
}

// subRange returns the range of src[off:off+n] given that src starts at rng.Start.
func subRange(rng hcl.Range, src string, off, n int) hcl.Range {
	start := advance(rng.Start, src[:off])
	return hcl.Range{
		Filename: rng.Filename,
		Start:    start,
		End:      advance(start, src[off:off+n]),
	}
}

// shiftRange returns the range of src[off:].
func shiftRange(rng hcl.Range, src string, off int) hcl.Range {
	return hcl.Range{Filename: rng.Filename, Start: advance(rng.Start, src[:off]), End: rng.End}
}

func advance(pos hcl.Pos, text string) hcl.Pos {
	for i := 0; i < len(text); i++ {
		pos.Byte++
		if text[i] == '\n' {
			pos.Line++
			pos.Column = 1
			continue
		}
		pos.Column++
	}
	return pos
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
