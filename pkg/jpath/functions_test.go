package jpath

import "testing"

func callFn(t *testing.T, name string, recv *Selection, args ...Arg) *Value {
	t.Helper()
	fn, ok := DefaultFunctions().Lookup(name)
	if !ok {
		t.Fatalf("function %q not registered", name)
	}
	v, err := fn(recv, args)
	if err != nil {
		t.Fatalf("%s() error: %v", name, err)
	}
	return v
}

func callFnErr(t *testing.T, name string, recv *Selection, args ...Arg) error {
	t.Helper()
	fn, ok := DefaultFunctions().Lookup(name)
	if !ok {
		t.Fatalf("function %q not registered", name)
	}
	_, err := fn(recv, args)
	return err
}

func scalarArg(v *Value) Arg { return ArgFromValue(v) }

func TestFunctionsCoercion(t *testing.T) {
	if got := callFn(t, "toint", NewSelection(NewFloat(3.9))); got.Int() != 3 {
		t.Fatalf("toint(3.9) = %v, want 3", got)
	}
	if got := callFn(t, "toint", NewSelection(NewString("42"))); got.Int() != 42 {
		t.Fatalf("toint(\"42\") = %v, want 42", got)
	}
	if got := callFn(t, "toflt", NewSelection(NewInt(2))); got.Float() != 2.0 {
		t.Fatalf("toflt(2) = %v, want 2.0", got)
	}
	if got := callFn(t, "tostr", NewSelection(NewInt(7))); got.Raw() != "7" {
		t.Fatalf("tostr(7) = %v, want \"7\"", got)
	}
}

func TestFunctionsRnd(t *testing.T) {
	got := callFn(t, "rnd", NewSelection(NewFloat(3.14159)), scalarArg(NewInt(2)))
	if got.Float() != 3.14 {
		t.Fatalf("rnd(3.14159, 2) = %v, want 3.14", got.Float())
	}
	got0 := callFn(t, "rnd", NewSelection(NewFloat(3.6)))
	if got0.Float() != 4 {
		t.Fatalf("rnd(3.6) = %v, want 4", got0.Float())
	}
}

func TestFunctionsPredicates(t *testing.T) {
	if !callFn(t, "isnum", NewSelection(NewInt(1))).Bool() {
		t.Fatalf("isnum(1) should be true")
	}
	if callFn(t, "isnum", NewSelection(NewBool(true))).Bool() {
		t.Fatalf("isnum(true) should be false")
	}
	if !callFn(t, "isstr", NewSelection(NewString("x"))).Bool() {
		t.Fatalf("isstr(\"x\") should be true")
	}
	if !callFn(t, "isarr", NewSelection(arr())).Bool() {
		t.Fatalf("isarr([]) should be true")
	}
	if !callFn(t, "isobj", NewSelection(obj())).Bool() {
		t.Fatalf("isobj({}) should be true")
	}
}

func TestFunctionsStringStartswithEndswith(t *testing.T) {
	recv := NewSelection(NewString("hello world"))
	if !callFn(t, "startswith", recv, scalarArg(NewString("hello"))).Bool() {
		t.Fatalf("startswith(\"hello world\", \"hello\") should be true")
	}
	if callFn(t, "endswith", recv, scalarArg(NewString("hello"))).Bool() {
		t.Fatalf("endswith(\"hello world\", \"hello\") should be false")
	}
}

// TestFunctionsStartswithNonStringArgIsError mirrors spec §8's worked
// example: startswith($."b"."a", 1) must be a function error, not a silent
// stringification of the integer argument.
func TestFunctionsStartswithNonStringArgIsError(t *testing.T) {
	recv := NewSelection(NewString("abc"))
	err := callFnErr(t, "startswith", recv, scalarArg(NewInt(1)))
	if err == nil {
		t.Fatalf("startswith(s, 1) must error on a non-string argument")
	}
}

func TestFunctionsLenAcrossKinds(t *testing.T) {
	if got := callFn(t, "len", NewSelection(arr(NewInt(1), NewInt(2), NewInt(3)))); got.Int() != 3 {
		t.Fatalf("len([1,2,3]) = %v, want 3", got)
	}
	if got := callFn(t, "len", NewSelection(NewString("abcd"))); got.Int() != 4 {
		t.Fatalf("len(\"abcd\") = %v, want 4", got)
	}
	if got := callFn(t, "len", NewSelection(obj("a", NewInt(1), "b", NewInt(2)))); got.Int() != 2 {
		t.Fatalf("len({a,b}) = %v, want 2", got)
	}
}

// TestFunctionsGetIndexing mirrors jpath_funcs.py's get(selection, idx):
// selection[idx] indexes the Selection's own item list, the same list
// i()/count() walk -- not the first item's contents the way len/slice do.
func TestFunctionsGetIndexing(t *testing.T) {
	recv := NewSelection(NewInt(10), NewInt(20), NewInt(30))
	if got := callFn(t, "get", recv, scalarArg(NewInt(1))); got.Int() != 20 {
		t.Fatalf("get((10,20,30), 1) = %v, want 20", got)
	}
	if got := callFn(t, "get", recv, scalarArg(NewInt(-1))); got.Int() != 30 {
		t.Fatalf("get((10,20,30), -1) = %v, want 30", got)
	}
	if err := callFnErr(t, "get", recv, scalarArg(NewInt(99))); err == nil {
		t.Fatalf("get() out of range must error")
	}
}

// TestFunctionsGetDoesNotIndexFirstItem is the reviewer's exact
// counterexample: a one-item selection wrapping an array must NOT let get
// reach into that array -- get(1) on a single-item selection is out of
// range, the same as i(1) or count() would report only one item.
func TestFunctionsGetDoesNotIndexFirstItem(t *testing.T) {
	recv := NewSelection(arr(NewInt(1), NewInt(2), NewInt(3)))
	if err := callFnErr(t, "get", recv, scalarArg(NewInt(1))); err == nil {
		t.Fatalf("get(([1,2,3],), 1) must error: get indexes the selection, not the first item")
	}
	if got := callFn(t, "get", recv, scalarArg(NewInt(0))); !got.IsArray() {
		t.Fatalf("get(([1,2,3],), 0) = %v, want the whole array as item 0", got)
	}
}

func TestFunctionsSliceOnArrayAndString(t *testing.T) {
	a := callFn(t, "slice", NewSelection(arr(NewInt(1), NewInt(2), NewInt(3), NewInt(4))), scalarArg(NewInt(1)), scalarArg(NewInt(3)))
	if len(a.Array()) != 2 || a.Array()[0].Int() != 2 || a.Array()[1].Int() != 3 {
		t.Fatalf("slice([1,2,3,4],1,3) = %v, want [2,3]", a.Array())
	}
	s := callFn(t, "slice", NewSelection(NewString("abcdef")), scalarArg(NewInt(1)), scalarArg(NewInt(4)))
	if s.Raw() != "bcd" {
		t.Fatalf("slice(\"abcdef\",1,4) = %q, want \"bcd\"", s.Raw())
	}
}

func TestFunctionsCaseTransforms(t *testing.T) {
	if got := callFn(t, "lower", NewSelection(NewString("ABC"))); got.Raw() != "abc" {
		t.Fatalf("lower(ABC) = %q, want abc", got.Raw())
	}
	if got := callFn(t, "upper", NewSelection(NewString("abc"))); got.Raw() != "ABC" {
		t.Fatalf("upper(abc) = %q, want ABC", got.Raw())
	}
	if got := callFn(t, "capitalize", NewSelection(NewString("hELLO"))); got.Raw() != "Hello" {
		t.Fatalf("capitalize(hELLO) = %q, want Hello", got.Raw())
	}
	if got := callFn(t, "title", NewSelection(NewString("hello world"))); got.Raw() != "Hello World" {
		t.Fatalf("title(hello world) = %q, want \"Hello World\"", got.Raw())
	}
}

func TestFunctionsTrim(t *testing.T) {
	if got := callFn(t, "trim", NewSelection(NewString("  hi  "))); got.Raw() != "hi" {
		t.Fatalf("trim = %q, want hi", got.Raw())
	}
	if got := callFn(t, "ltrim", NewSelection(NewString("  hi  "))); got.Raw() != "hi  " {
		t.Fatalf("ltrim = %q, want \"hi  \"", got.Raw())
	}
	if got := callFn(t, "rtrim", NewSelection(NewString("  hi  "))); got.Raw() != "  hi" {
		t.Fatalf("rtrim = %q, want \"  hi\"", got.Raw())
	}
}

func TestFunctionsCharPredicates(t *testing.T) {
	if !callFn(t, "isdigit", NewSelection(NewString("123"))).Bool() {
		t.Fatalf("isdigit(123) should be true")
	}
	if !callFn(t, "isalpha", NewSelection(NewString("abc"))).Bool() {
		t.Fatalf("isalpha(abc) should be true")
	}
	if !callFn(t, "isalnum", NewSelection(NewString("abc123"))).Bool() {
		t.Fatalf("isalnum(abc123) should be true")
	}
	if !callFn(t, "islower", NewSelection(NewString("abc"))).Bool() {
		t.Fatalf("islower(abc) should be true")
	}
	if !callFn(t, "isupper", NewSelection(NewString("ABC"))).Bool() {
		t.Fatalf("isupper(ABC) should be true")
	}
	if !callFn(t, "isspace", NewSelection(NewString("   "))).Bool() {
		t.Fatalf("isspace should be true")
	}
	if !callFn(t, "istitle", NewSelection(NewString("Hello World"))).Bool() {
		t.Fatalf("istitle(Hello World) should be true")
	}
}

func TestFunctionsInstrAndNormalize(t *testing.T) {
	if !callFn(t, "instr", NewSelection(NewString("hello world")), scalarArg(NewString("lo wo"))).Bool() {
		t.Fatalf("instr should find substring")
	}
	if got := callFn(t, "normalize", NewSelection(NewString("  a   b\tc  "))); got.Raw() != "a b c" {
		t.Fatalf("normalize = %q, want \"a b c\"", got.Raw())
	}
}

func TestFunctionsReplace(t *testing.T) {
	got := callFn(t, "replace", NewSelection(NewString("foo bar foo")), scalarArg(NewString("foo")), scalarArg(NewString("baz")))
	if got.Raw() != "baz bar baz" {
		t.Fatalf("replace = %q, want \"baz bar baz\"", got.Raw())
	}
}

func TestFunctionsSelectionLevel(t *testing.T) {
	empty := NewSelection()
	nonEmpty := NewSelection(NewInt(1), NewInt(2))
	truthy := NewSelection(NewInt(1), NewInt(2))
	falsey := NewSelection(NewInt(0), NewBool(false))

	if callFn(t, "count", nonEmpty).Int() != 2 {
		t.Fatalf("count should be 2")
	}
	if !callFn(t, "has", nonEmpty).Bool() || callFn(t, "has", empty).Bool() {
		t.Fatalf("has() semantics wrong")
	}
	if callFn(t, "no", nonEmpty).Bool() || !callFn(t, "no", empty).Bool() {
		t.Fatalf("no() semantics wrong")
	}
	if !callFn(t, "all", truthy).Bool() {
		t.Fatalf("all() of truthy items should be true")
	}
	if callFn(t, "all", falsey).Bool() {
		t.Fatalf("all() of falsey items should be false")
	}
	if callFn(t, "all", empty).Bool() {
		t.Fatalf("all() of empty selection should be false")
	}
	if !callFn(t, "any", falsey.Concat(NewSelection(NewInt(1)))).Bool() {
		t.Fatalf("any() should be true when at least one item is truthy")
	}
}

func TestFunctionsInvalAndInitems(t *testing.T) {
	recv := NewSelection(arr(NewInt(1), NewInt(2), NewInt(3)))
	if !callFn(t, "inval", recv, scalarArg(NewInt(2))).Bool() {
		t.Fatalf("inval([1,2,3], 2) should be true")
	}
	if callFn(t, "inval", recv, scalarArg(NewInt(9))).Bool() {
		t.Fatalf("inval([1,2,3], 9) should be false")
	}

	objRecv := NewSelection(obj("a", NewInt(1)))
	if !callFn(t, "inval", objRecv, scalarArg(NewString("a"))).Bool() {
		t.Fatalf("inval({a:1}, \"a\") should check key presence")
	}

	itemsRecv := NewSelection(NewInt(1), NewInt(2), NewInt(3))
	if !callFn(t, "initems", itemsRecv, scalarArg(NewInt(2))).Bool() {
		t.Fatalf("initems(sel containing 2, 2) should be true")
	}
}

func TestFunctionsConcat(t *testing.T) {
	recv := NewSelection(NewInt(1), NewInt(2))
	other := NewSelection(NewInt(3), NewInt(4))
	got := callFn(t, "concat", recv, ArgFromSelection(other))
	want := []*Value{NewInt(1), NewInt(2), NewInt(3), NewInt(4)}
	if len(got.Array()) != len(want) {
		t.Fatalf("concat length = %d, want %d", len(got.Array()), len(want))
	}
	for i := range want {
		if !got.Array()[i].Equal(want[i]) {
			t.Fatalf("concat()[%d] = %v, want %v", i, got.Array()[i], want[i])
		}
	}
}

func TestFunctionsUnknownFunctionNotRegistered(t *testing.T) {
	if _, ok := DefaultFunctions().Lookup("not_a_real_function"); ok {
		t.Fatalf("unregistered function must not be found")
	}
}
