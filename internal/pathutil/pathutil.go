// Package pathutil is a small dotted-path accessor over a jpath.Value tree
// ("a.b.c", "a.0.b"), independent of the full JPath grammar. It exists for
// callers -- such as the jpath CLI's -p/--path mode -- that don't want to
// build and parse a query string for a single fixed lookup.
//
// Adapted from the teacher's internal/utils/tree package (Cursor parsing
// and resolution against a generic tree), rewritten against jpath.Value
// instead of interface{}: the listFind name/key/id convenience lookup tree
// used for list elements is dropped here, since JPath's own array indexing
// is purely positional (spec §4.2) and that heuristic has no equivalent in
// this domain.
package pathutil

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jpath-lang/jpath/pkg/jpath"
)

// Cursor is a parsed dotted/bracketed path, e.g. "a.b[2].c" becomes the
// node sequence ["a", "b", "2", "c"].
type Cursor struct {
	Nodes []string
}

// SyntaxError reports a malformed path string.
type SyntaxError struct {
	Problem  string
	Position int
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("pathutil: syntax error: %s at position %d", e.Problem, e.Position)
}

// NotFoundError reports that Path does not resolve against the given tree.
type NotFoundError struct{ Path []string }

func (e NotFoundError) Error() string {
	return fmt.Sprintf("pathutil: `%s` could not be found", strings.Join(e.Path, "."))
}

// TypeMismatchError reports that a path component expected a container but
// found a scalar, or vice versa.
type TypeMismatchError struct {
	Path   []string
	Wanted string
	Got    string
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("pathutil: %s is %s, not %s", strings.Join(e.Path, "."), e.Got, e.Wanted)
}

// ParseCursor parses a path string into a Cursor. "$" as the leading
// component is accepted and dropped, matching the teacher's own cursor
// parser convention.
func ParseCursor(s string) (*Cursor, error) {
	var nodes []string
	var node strings.Builder
	bracketed := false

	push := func() {
		if node.Len() == 0 {
			return
		}
		text := node.String()
		if len(nodes) == 0 && text == "$" {
			node.Reset()
			return
		}
		nodes = append(nodes, text)
		node.Reset()
	}

	for pos, c := range s {
		switch c {
		case '.':
			if bracketed {
				node.WriteRune(c)
			} else {
				push()
			}
		case '[':
			if bracketed {
				return nil, SyntaxError{Problem: "unexpected '['", Position: pos}
			}
			push()
			bracketed = true
		case ']':
			if !bracketed {
				return nil, SyntaxError{Problem: "unexpected ']'", Position: pos}
			}
			push()
			bracketed = false
		default:
			node.WriteRune(c)
		}
	}
	push()

	return &Cursor{Nodes: nodes}, nil
}

// String renders the cursor back out as a dot-separated path.
func (c *Cursor) String() string { return strings.Join(c.Nodes, ".") }

// Resolve walks tree following the cursor's path components, descending
// into Object values by key and Array values by integer index.
func (c *Cursor) Resolve(tree *jpath.Value) (*jpath.Value, error) {
	var path []string
	cur := tree
	for _, k := range c.Nodes {
		path = append(path, k)
		switch cur.Kind() {
		case jpath.KindObject:
			v, ok := cur.ObjectValue().Get(k)
			if !ok {
				return nil, NotFoundError{Path: path}
			}
			cur = v
		case jpath.KindArray:
			i, err := strconv.Atoi(k)
			if err != nil {
				return nil, TypeMismatchError{Path: path, Wanted: "an integer index", Got: "key " + k}
			}
			arr := cur.Array()
			if i < 0 {
				i += len(arr)
			}
			if i < 0 || i >= len(arr) {
				return nil, NotFoundError{Path: path}
			}
			cur = arr[i]
		default:
			return nil, TypeMismatchError{
				Path:   path[:len(path)-1],
				Wanted: "a map or array",
				Got:    "a scalar",
			}
		}
	}
	return cur, nil
}

// Lookup parses path and resolves it against root in one call.
func Lookup(root *jpath.Value, path string) (*jpath.Value, error) {
	c, err := ParseCursor(path)
	if err != nil {
		return nil, err
	}
	return c.Resolve(root)
}
