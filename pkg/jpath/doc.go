/*
Package jpath implements JPath, a JSONPath-like query language for navigating
dynamic, JSON-shaped data trees: nested objects (string-keyed, order
preserving), ordered arrays, and scalar leaves (string, int, float, bool,
null). A query string evaluated against a root Value yields an ordered
multiset of matching sub-values -- a Selection.

# Quick Start

	doc, err := jpath.FromJSON(jsonBytes)
	if err != nil {
		log.Fatal(err)
	}

	sel, err := jpath.Query(`$.."author"`, doc)
	if err != nil {
		log.Fatal(err)
	}
	for _, v := range sel.Items() {
		fmt.Println(v.Raw())
	}

# Selectors

  - `$` and `@` bind the root and current selection respectively.
  - `."key"` / `.."key"` select a key shallowly or at every nesting depth;
    the key is always a double-quoted string.
  - `.*` / `..*` select every value of every key, shallowly or deep.
  - `.[i]`, `.[i:j:k]`, `.[i,j,k]` pick elements inside each item by index,
    slice or index list.
  - `[i]`, `[i:j:k]`, `[i,j,k]` pick items out of the selection itself.
  - `[*]` expands one level, flattening arrays in place.
  - `[expr]` filters the selection, keeping items for which expr is truthy.
  - `A | B` concatenates two selections.

# Filter Expressions and Functions

Bracketed filters and function arguments share one expression grammar:
arithmetic (`+ - * / %`), comparison (`= != < <= > >=`), logical (`and`/`or`),
and named function calls (`startswith($."b"."a", "ab")`). A function's first
argument is always a Selection; see DefaultFunctions for the full catalogue
(toint/toflt/tostr, isnum/isstr/..., get/len/slice/replace,
count/all/any/has/no/inval/initems/concat, and the string case/trim/predicate
family).

# Errors

Parse and Evaluate return one of LexicalError, SyntaxError, FunctionError or
EvalError, each optionally carrying a Position (1-based line, 0-based
column). Filter predicate failures are swallowed per the selection algebra
(the offending item is simply dropped), matching spec behavior for partial,
best-effort filtering over heterogeneous data.

# Extending

Register additional or overriding functions on a FunctionTable before
evaluating:

	funcs := jpath.DefaultFunctions()
	funcs.Register("double", func(recv *jpath.Selection, args []jpath.Arg) (*jpath.Value, error) {
		return jpath.NewFloat(recv.First().AsFloat() * 2), nil
	})
	sel, err := jpath.QueryWithConfig(`double($."price")`, doc, jpath.Config{
		SelectionOptions: jpath.DefaultSelectionOptions(),
		Functions:        funcs,
	})

See cmd/jpath for a small CLI front end built on this package.
*/
package jpath
