package jpath

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Arg is one evaluated argument to a function call, kept in whichever shape
// it was actually produced in: a Selection (a jpath sub-expression) or a
// bare scalar Value (a literal or an arithmetic/comparison result). Most
// functions only care about a scalar, so Scalar() applies the "first_of"
// auto-unwrap rule from spec §4.5/§4.6 on demand; a function like concat
// that genuinely needs the whole sequence calls Selection() instead.
type Arg struct {
	sel *Selection
	val *Value
}

// ArgFromSelection wraps a Selection-valued argument.
func ArgFromSelection(s *Selection) Arg { return Arg{sel: s} }

// ArgFromValue wraps a scalar-valued argument.
func ArgFromValue(v *Value) Arg { return Arg{val: v} }

// Scalar returns the argument's first value: the Value itself if it was
// already scalar, or the first item of the Selection (Null if empty). This
// is the "first_of(sel)" auto-unwrap rule every scalar-consuming function
// parameter uses.
func (a Arg) Scalar() *Value {
	if a.val != nil {
		return a.val
	}
	if a.sel != nil {
		if f := a.sel.First(); f != nil {
			return f
		}
	}
	return Null()
}

// Selection returns the argument as a Selection, wrapping a bare scalar
// into a singleton if that's what it was.
func (a Arg) Selection() *Selection {
	if a.sel != nil {
		return a.sel
	}
	return NewSelection(a.val)
}

// Func is a registered function handle: recv is the call's mandatory first
// argument (always a Selection, spec §4.6 invariant), args are every
// argument after it.
type Func func(recv *Selection, args []Arg) (*Value, error)

// FunctionTable maps a query-string function name to its handle. Query
// evaluation consults exactly one FunctionTable, built by the caller via
// DefaultFunctions() and/or Register before Evaluate/Query runs -- spec §9
// "Function table" design note: there is no reflection-based dispatch,
// entries are registered explicitly.
type FunctionTable map[string]Func

// Register adds or replaces the handle for name. Call this before Evaluate
// to extend or override the default catalogue; the function table is not
// safe to mutate concurrently with an in-flight evaluation (spec §5).
func (t FunctionTable) Register(name string, fn Func) { t[name] = fn }

// Lookup returns the handle registered under name, if any.
func (t FunctionTable) Lookup(name string) (Func, bool) {
	fn, ok := t[name]
	return fn, ok
}

// DefaultFunctions returns a fresh FunctionTable pre-populated with every
// function spec §4.6 requires, plus the `rnd` extra SPEC_FULL.md §11.6
// carries forward from the Python original. Callers that want a custom
// catalogue start from this and Register additional/overriding entries.
func DefaultFunctions() FunctionTable {
	t := FunctionTable{}
	registerCoercionFuncs(t)
	registerPredicateFuncs(t)
	registerStringFuncs(t)
	registerSelectionFuncs(t)
	return t
}

func registerCoercionFuncs(t FunctionTable) {
	t["toint"] = func(recv *Selection, args []Arg) (*Value, error) {
		return coerceInt(recv.First())
	}
	t["toflt"] = func(recv *Selection, args []Arg) (*Value, error) {
		return coerceFloat(recv.First())
	}
	t["tostr"] = func(recv *Selection, args []Arg) (*Value, error) {
		return NewString(recv.First().Raw()), nil
	}
	t["rnd"] = func(recv *Selection, args []Arg) (*Value, error) {
		digits := 0
		if len(args) > 0 {
			digits = int(args[0].Scalar().AsFloat())
		}
		f, err := asFloat(recv.First())
		if err != nil {
			return nil, err
		}
		mul := math.Pow(10, float64(digits))
		return NewFloat(math.Round(f*mul) / mul), nil
	}
}

func coerceInt(v *Value) (*Value, error) {
	switch v.Kind() {
	case KindInt:
		return NewInt(v.Int()), nil
	case KindFloat:
		return NewInt(int64(v.Float())), nil
	case KindBool:
		if v.Bool() {
			return NewInt(1), nil
		}
		return NewInt(0), nil
	case KindString:
		i, err := strconv.ParseInt(strings.TrimSpace(v.Raw()), 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(strings.TrimSpace(v.Raw()), 64)
			if ferr != nil {
				return nil, fmt.Errorf("toint: cannot convert %q to int", v.Raw())
			}
			return NewInt(int64(f)), nil
		}
		return NewInt(i), nil
	default:
		return nil, fmt.Errorf("toint: cannot convert %s to int", v.Kind())
	}
}

func coerceFloat(v *Value) (*Value, error) {
	f, err := asFloat(v)
	if err != nil {
		return nil, err
	}
	return NewFloat(f), nil
}

func asFloat(v *Value) (float64, error) {
	switch v.Kind() {
	case KindInt:
		return float64(v.Int()), nil
	case KindFloat:
		return v.Float(), nil
	case KindBool:
		if v.Bool() {
			return 1, nil
		}
		return 0, nil
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Raw()), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to float", v.Raw())
		}
		return f, nil
	default:
		return 0, fmt.Errorf("cannot convert %s to float", v.Kind())
	}
}

func registerPredicateFuncs(t FunctionTable) {
	kindIs := func(k Kind) Func {
		return func(recv *Selection, args []Arg) (*Value, error) {
			return NewBool(recv.First().Kind() == k), nil
		}
	}
	t["isnum"] = func(recv *Selection, args []Arg) (*Value, error) {
		return NewBool(recv.First().IsNumber()), nil
	}
	t["isint"] = kindIs(KindInt)
	t["isflt"] = kindIs(KindFloat)
	t["isbool"] = kindIs(KindBool)
	t["isstr"] = kindIs(KindString)
	t["isnull"] = kindIs(KindNull)
	t["isarr"] = kindIs(KindArray)
	t["isobj"] = kindIs(KindObject)
}

func registerStringFuncs(t FunctionTable) {
	// get indexes the Selection itself -- the i-th item it holds, the same
	// list i()/count() walk -- not the first item's contents. len/slice/
	// replace below are the ones that reach into selection[0].
	t["get"] = func(recv *Selection, args []Arg) (*Value, error) {
		if len(args) < 1 {
			return nil, fmt.Errorf("get: requires an index argument")
		}
		idx := int(args[0].Scalar().AsFloat())
		v, ok := recv.At(idx)
		if !ok {
			return nil, fmt.Errorf("get: index %d out of range", idx)
		}
		return v, nil
	}
	t["len"] = func(recv *Selection, args []Arg) (*Value, error) {
		first := recv.First()
		switch first.Kind() {
		case KindArray:
			return NewInt(int64(len(first.Array()))), nil
		case KindObject:
			return NewInt(int64(first.ObjectValue().Len())), nil
		case KindString:
			return NewInt(int64(len([]rune(first.Raw())))), nil
		default:
			return nil, fmt.Errorf("len: value has no length")
		}
	}
	t["slice"] = func(recv *Selection, args []Arg) (*Value, error) {
		start, stop, step := optIntArg(args, 0), optIntArg(args, 1), optIntArg(args, 2)
		first := recv.First()
		switch first.Kind() {
		case KindArray:
			return NewArray(pySlice(first.Array(), start, stop, step)), nil
		case KindString:
			runes := []rune(first.Raw())
			items := make([]*Value, len(runes))
			for i, r := range runes {
				items[i] = NewString(string(r))
			}
			sliced := pySlice(items, start, stop, step)
			var sb strings.Builder
			for _, v := range sliced {
				sb.WriteString(v.Raw())
			}
			return NewString(sb.String()), nil
		default:
			return nil, fmt.Errorf("slice: value is not sliceable")
		}
	}
	t["replace"] = func(recv *Selection, args []Arg) (*Value, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("replace: requires pattern and replacement arguments")
		}
		s := recv.First().Raw()
		pat := args[0].Scalar().Raw()
		rep := args[1].Scalar().Raw()
		return NewString(strings.ReplaceAll(s, pat, rep)), nil
	}
	strPredicate := func(pred func(string) bool) Func {
		return func(recv *Selection, args []Arg) (*Value, error) {
			return NewBool(pred(recv.First().Raw())), nil
		}
	}
	t["isdigit"] = strPredicate(func(s string) bool { return s != "" && allRunes(s, unicode.IsDigit) })
	t["isalpha"] = strPredicate(func(s string) bool { return s != "" && allRunes(s, unicode.IsLetter) })
	t["isalnum"] = strPredicate(func(s string) bool {
		return s != "" && allRunes(s, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) })
	})
	t["islower"] = strPredicate(func(s string) bool { return s != "" && s == strings.ToLower(s) && strings.ToLower(s) != strings.ToUpper(s) })
	t["isupper"] = strPredicate(func(s string) bool { return s != "" && s == strings.ToUpper(s) && strings.ToLower(s) != strings.ToUpper(s) })
	t["isspace"] = strPredicate(func(s string) bool { return s != "" && allRunes(s, unicode.IsSpace) })
	t["istitle"] = strPredicate(isTitleCase)
	t["lower"] = func(recv *Selection, args []Arg) (*Value, error) {
		return NewString(strings.ToLower(recv.First().Raw())), nil
	}
	t["upper"] = func(recv *Selection, args []Arg) (*Value, error) {
		return NewString(strings.ToUpper(recv.First().Raw())), nil
	}
	t["capitalize"] = func(recv *Selection, args []Arg) (*Value, error) {
		s := recv.First().Raw()
		if s == "" {
			return NewString(s), nil
		}
		r := []rune(strings.ToLower(s))
		r[0] = unicode.ToUpper(r[0])
		return NewString(string(r)), nil
	}
	t["title"] = func(recv *Selection, args []Arg) (*Value, error) {
		return NewString(titleCase(recv.First().Raw())), nil
	}
	t["ltrim"] = func(recv *Selection, args []Arg) (*Value, error) {
		return NewString(strings.TrimLeft(recv.First().Raw(), " \t\r\n\f\v")), nil
	}
	t["rtrim"] = func(recv *Selection, args []Arg) (*Value, error) {
		return NewString(strings.TrimRight(recv.First().Raw(), " \t\r\n\f\v")), nil
	}
	t["trim"] = func(recv *Selection, args []Arg) (*Value, error) {
		return NewString(strings.TrimSpace(recv.First().Raw())), nil
	}
	t["startswith"] = func(recv *Selection, args []Arg) (*Value, error) {
		if len(args) < 1 {
			return nil, fmt.Errorf("startswith: requires a prefix argument")
		}
		prefix, err := stringScalar(args[0])
		if err != nil {
			return nil, err
		}
		return NewBool(strings.HasPrefix(recv.First().Raw(), prefix)), nil
	}
	t["endswith"] = func(recv *Selection, args []Arg) (*Value, error) {
		if len(args) < 1 {
			return nil, fmt.Errorf("endswith: requires a suffix argument")
		}
		suffix, err := stringScalar(args[0])
		if err != nil {
			return nil, err
		}
		return NewBool(strings.HasSuffix(recv.First().Raw(), suffix)), nil
	}
	t["instr"] = func(recv *Selection, args []Arg) (*Value, error) {
		if len(args) < 1 {
			return nil, fmt.Errorf("instr: requires a substring argument")
		}
		sub, err := stringScalar(args[0])
		if err != nil {
			return nil, err
		}
		return NewBool(strings.Contains(recv.First().Raw(), sub)), nil
	}
	t["normalize"] = func(recv *Selection, args []Arg) (*Value, error) {
		fields := strings.Fields(recv.First().Raw())
		return NewString(strings.Join(fields, " ")), nil
	}
}

// stringScalar requires arg to already be (or coerce cleanly to) a string,
// matching the example in spec §8 where startswith($."b"."a", 1) must be a
// function error, not a silent stringification of 1.
func stringScalar(a Arg) (string, error) {
	v := a.Scalar()
	if !v.IsString() {
		return "", fmt.Errorf("expected a string argument, got %s", v.Kind())
	}
	return v.Raw(), nil
}

func optIntArg(args []Arg, i int) *int {
	if i >= len(args) {
		return nil
	}
	v := args[i].Scalar()
	if v.IsNull() {
		return nil
	}
	n := int(v.AsFloat())
	return &n
}

func allRunes(s string, pred func(rune) bool) bool {
	for _, r := range s {
		if !pred(r) {
			return false
		}
	}
	return true
}

// titleCase upper-cases the first letter of every run of letters and
// lower-cases the rest, the same rule Python's str.title() applies -- used
// because the stdlib's own strings.Title is deprecated for exactly this.
func titleCase(s string) string {
	r := []rune(strings.ToLower(s))
	prevLetter := false
	for i, c := range r {
		if unicode.IsLetter(c) {
			if !prevLetter {
				r[i] = unicode.ToUpper(c)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
	}
	return string(r)
}

func isTitleCase(s string) bool {
	if s == "" {
		return false
	}
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				if unicode.IsUpper(r) {
					return false
				}
			} else if !unicode.IsUpper(r) {
				return false
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
	}
	return true
}

func registerSelectionFuncs(t FunctionTable) {
	t["count"] = func(recv *Selection, args []Arg) (*Value, error) {
		return NewInt(int64(recv.Len())), nil
	}
	t["all"] = func(recv *Selection, args []Arg) (*Value, error) {
		if recv.Len() == 0 {
			return NewBool(false), nil
		}
		for _, v := range recv.Items() {
			if !v.Truthy() {
				return NewBool(false), nil
			}
		}
		return NewBool(true), nil
	}
	t["any"] = func(recv *Selection, args []Arg) (*Value, error) {
		for _, v := range recv.Items() {
			if v.Truthy() {
				return NewBool(true), nil
			}
		}
		return NewBool(false), nil
	}
	t["has"] = func(recv *Selection, args []Arg) (*Value, error) {
		return NewBool(recv.Len() > 0), nil
	}
	t["no"] = func(recv *Selection, args []Arg) (*Value, error) {
		return NewBool(recv.Len() == 0), nil
	}
	t["inval"] = func(recv *Selection, args []Arg) (*Value, error) {
		if len(args) < 1 {
			return nil, fmt.Errorf("inval: requires a value argument")
		}
		needle := args[0].Scalar()
		return NewBool(valueContains(recv.First(), needle)), nil
	}
	t["initems"] = func(recv *Selection, args []Arg) (*Value, error) {
		if len(args) < 1 {
			return nil, fmt.Errorf("initems: requires an item argument")
		}
		needle := args[0].Scalar()
		for _, v := range recv.Items() {
			if v.DeepEqual(needle) {
				return NewBool(true), nil
			}
		}
		return NewBool(false), nil
	}
	t["concat"] = func(recv *Selection, args []Arg) (*Value, error) {
		if len(args) < 1 {
			return nil, fmt.Errorf("concat: requires another selection argument")
		}
		merged := recv.Concat(args[0].Selection())
		return NewArray(append([]*Value{}, merged.Items()...)), nil
	}
}

// valueContains implements inval's "v in first_item(sel)" rule: membership
// in an array (by structural equality, DeepEqual), key presence in an object, or substring
// containment in a string.
func valueContains(container, needle *Value) bool {
	switch container.Kind() {
	case KindArray:
		for _, v := range container.Array() {
			if v.DeepEqual(needle) {
				return true
			}
		}
		return false
	case KindObject:
		_, ok := container.ObjectValue().Get(needle.Raw())
		return ok
	case KindString:
		return strings.Contains(container.Raw(), needle.Raw())
	default:
		return false
	}
}
