package jpath

// SelectionOptions carries the four iteration knobs spec §3 attaches to every
// Selection: which Kinds participate in key-descent and index-descent, and
// which are explicitly excluded even if they'd otherwise qualify. The
// default configuration (DefaultSelectionOptions) makes Objects the only
// key-iterable Kind and Arrays the only index-iterable one -- Strings and
// Objects are excluded from index-descent, which is what keeps "abc"[*]"
// and an Object's own entries from being treated as a flat sequence.
type SelectionOptions struct {
	ItersByKey    map[Kind]bool
	ExcludedByKey map[Kind]bool
	ItersByIdx    map[Kind]bool
	ExcludedByIdx map[Kind]bool
}

// DefaultSelectionOptions returns the spec §3 default: key-descent on
// Objects only, index-descent on Arrays only.
func DefaultSelectionOptions() SelectionOptions {
	return SelectionOptions{
		ItersByKey:    map[Kind]bool{KindObject: true},
		ExcludedByKey: map[Kind]bool{},
		ItersByIdx:    map[Kind]bool{KindArray: true, KindObject: true, KindString: true},
		ExcludedByIdx: map[Kind]bool{KindObject: true, KindString: true},
	}
}

func (o SelectionOptions) keyIterable(v *Value) bool {
	k := v.Kind()
	return o.ItersByKey[k] && !o.ExcludedByKey[k]
}

func (o SelectionOptions) idxIterable(v *Value) bool {
	k := v.Kind()
	return o.ItersByIdx[k] && !o.ExcludedByIdx[k]
}

// SelectionOptionsBuilder builds a SelectionOptions value one knob at a
// time, for callers that want something other than the default key/array
// split (spec §9 "Selection metadata" design note: "expose a builder for
// custom type sets").
type SelectionOptionsBuilder struct{ opts SelectionOptions }

// NewSelectionOptionsBuilder starts from DefaultSelectionOptions.
func NewSelectionOptionsBuilder() *SelectionOptionsBuilder {
	return &SelectionOptionsBuilder{opts: DefaultSelectionOptions()}
}

func (b *SelectionOptionsBuilder) IterByKey(k Kind) *SelectionOptionsBuilder {
	b.opts.ItersByKey[k] = true
	return b
}

func (b *SelectionOptionsBuilder) ExcludeByKey(k Kind) *SelectionOptionsBuilder {
	b.opts.ExcludedByKey[k] = true
	return b
}

func (b *SelectionOptionsBuilder) IterByIdx(k Kind) *SelectionOptionsBuilder {
	b.opts.ItersByIdx[k] = true
	return b
}

func (b *SelectionOptionsBuilder) ExcludeByIdx(k Kind) *SelectionOptionsBuilder {
	b.opts.ExcludedByIdx[k] = true
	return b
}

func (b *SelectionOptionsBuilder) Build() SelectionOptions { return b.opts }

// Selection is an ordered, possibly empty multiset of Values, plus a
// pointer back to the selection that started the current query (its
// "root"). Every selector operation -- one key, every key, positional
// pick, expand, filter -- consumes a Selection and produces a new one;
// nothing in this file ever mutates the tree being walked.
type Selection struct {
	items []*Value
	root  *Selection
	opts  SelectionOptions
}

// NewSelection builds a Selection that is its own root, using the default
// key/array iteration rules.
func NewSelection(items ...*Value) *Selection {
	s := &Selection{items: items, opts: DefaultSelectionOptions()}
	s.root = s
	return s
}

// NewSelectionWithOptions builds a Selection that is its own root, using
// opts instead of the defaults.
func NewSelectionWithOptions(opts SelectionOptions, items ...*Value) *Selection {
	s := &Selection{items: items, opts: opts}
	s.root = s
	return s
}

// NewRootSelection is sugar for the common case of seeding a query with a
// single document: the returned Selection holds exactly one item and is its
// own root, ready to be handed to Evaluate as both current and root.
func NewRootSelection(doc *Value) *Selection {
	return NewSelection(doc)
}

func (s *Selection) withItems(items []*Value) *Selection {
	return &Selection{items: items, root: s.root, opts: s.opts}
}

// Items returns the Values held by this Selection, in order. The returned
// slice must not be mutated by callers.
func (s *Selection) Items() []*Value { return s.items }

// Len returns the number of items in the Selection.
func (s *Selection) Len() int { return len(s.items) }

// Root returns the selection that anchors the query this Selection was
// produced from; it is itself for a freshly rooted Selection.
func (s *Selection) Root() *Selection { return s.root }

// SetRoot rebinds what $ resolves to for the remainder of this query chain.
func (s *Selection) SetRoot(root *Selection) { s.root = root }

// Reseat returns a copy of s whose root is itself, i.e. "$" inside any
// further query built on top of the result resolves to s rather than to
// whatever root s previously carried. This is the "reseat as root" call
// spec §3/§6 describes.
func (s *Selection) Reseat() *Selection {
	out := s.withItems(s.items)
	out.root = out
	return out
}

// Options returns the Selection's key/index iteration configuration.
func (s *Selection) Options() SelectionOptions { return s.opts }

// At returns the item at idx, supporting Python-style negative indexing
// (−1 is the last item). ok is false when idx is out of range.
func (s *Selection) At(idx int) (*Value, bool) {
	n := len(s.items)
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx >= n {
		return nil, false
	}
	return s.items[idx], true
}

// First returns the first item, or nil if the Selection is empty. This is
// the ".val()" coercion every scalar-context consumer (arithmetic,
// comparison, literal function args) uses under the hood.
func (s *Selection) First() *Value {
	if len(s.items) == 0 {
		return nil
	}
	return s.items[0]
}

// Concat appends other's items after s's and returns a new Selection
// sharing s's root and options -- the "+"/union operator of spec §4.2.
func (s *Selection) Concat(other *Selection) *Selection {
	out := make([]*Value, 0, len(s.items)+len(other.items))
	out = append(out, s.items...)
	out = append(out, other.items...)
	return s.withItems(out)
}

// Union is an alias for Concat matching the fluent-builder name spec §6
// calls out alongside one/all/el/i/exp/filter/call_for_self/call_for_each.
func (s *Selection) Union(other *Selection) *Selection { return s.Concat(other) }

// isKeyIterable reports whether a Value can be selected into by key, under
// s's configured options.
func (s *Selection) isKeyIterable(v *Value) bool { return s.opts.keyIterable(v) }

// isIdxIterable reports whether a Value can be selected into by index,
// under s's configured options.
func (s *Selection) isIdxIterable(v *Value) bool { return s.opts.idxIterable(v) }

// One selects the value stored under key from every key-iterable item in s.
// With deep=true, it additionally recurses into every nested value (object
// values and array elements, at every depth) looking for more matches;
// matches are ordered depth-first, in document order.
func (s *Selection) One(key string, deep bool) *Selection {
	var out []*Value
	for _, item := range s.items {
		out = append(out, s.selectKey(item, key, deep)...)
	}
	return s.withItems(out)
}

// All selects every value held by every key-iterable item in s, ignoring
// keys entirely. With deep=true it recurses the same way One does.
func (s *Selection) All(deep bool) *Selection {
	var out []*Value
	for _, item := range s.items {
		out = append(out, s.selectAll(item, deep)...)
	}
	return s.withItems(out)
}

func (s *Selection) selectKey(v *Value, key string, deep bool) []*Value {
	var out []*Value
	if s.isKeyIterable(v) {
		obj := v.ObjectValue()
		if m, ok := obj.Get(key); ok {
			out = append(out, m)
		}
		if deep {
			for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
				out = append(out, s.selectKey(pair.Value, key, deep)...)
			}
		}
	} else if s.isIdxIterable(v) && v.IsArray() {
		for _, el := range v.Array() {
			out = append(out, s.selectKey(el, key, deep)...)
		}
	}
	return out
}

func (s *Selection) selectAll(v *Value, deep bool) []*Value {
	var out []*Value
	if s.isKeyIterable(v) {
		obj := v.ObjectValue()
		for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
			out = append(out, pair.Value)
		}
		if deep {
			for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
				out = append(out, s.selectAll(pair.Value, deep)...)
			}
		}
	} else if s.isIdxIterable(v) && v.IsArray() {
		for _, el := range v.Array() {
			out = append(out, s.selectAll(el, deep)...)
		}
	}
	return out
}

// El picks, by index/slice/list, elements out of every item in s that is
// itself idx-iterable (an array by default); items that aren't arrays
// contribute nothing and are silently dropped, and any out-of-range index
// is skipped rather than raising.
func (s *Selection) El(spec IndexSpec) *Selection {
	var out []*Value
	for _, item := range s.items {
		if !item.IsArray() || !s.isIdxIterable(item) {
			continue
		}
		out = append(out, applyIndexSpec(item.Array(), spec)...)
	}
	return s.withItems(out)
}

// I picks, by index/slice/list, items directly out of s itself rather than
// out of each item's contents.
func (s *Selection) I(spec IndexSpec) *Selection {
	return s.withItems(applyIndexSpec(s.items, spec))
}

// Exp expands every idx-iterable item in s into its elements in place;
// items that aren't arrays pass through unchanged (Object/String atomicity,
// spec §8 property 6).
func (s *Selection) Exp() *Selection {
	var out []*Value
	for _, item := range s.items {
		if item.IsArray() && s.isIdxIterable(item) {
			out = append(out, item.Array()...)
		} else {
			out = append(out, item)
		}
	}
	return s.withItems(out)
}

// FilterFunc is the predicate Filter applies to every item of a Selection.
// idx is the item's position in the current selection, cur is a
// single-item Selection wrapping just that item (sharing the same root),
// root is the query's root selection.
type FilterFunc func(idx int, cur *Selection, root *Selection) bool

// Filter keeps only the items for which pred returns true. A predicate that
// panics is treated as false for that item rather than aborting the whole
// filter, mirroring how a filter expression that errors on one element
// (e.g. a type mismatch) must not sink the entire selection (spec §4.2:
// "Predicate errors are swallowed").
func (s *Selection) Filter(pred FilterFunc) *Selection {
	var out []*Value
	for idx, item := range s.items {
		if safeFilter(idx, s.withItems([]*Value{item}), s.root, pred) {
			out = append(out, item)
		}
	}
	return s.withItems(out)
}

func safeFilter(idx int, cur, root *Selection, pred FilterFunc) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return pred(idx, cur, root)
}

// CallForSelf calls fn with the whole Selection as its receiver and returns
// the function's scalar result directly, rather than a Selection -- the
// "call_for_self" operator of spec §4.2, used for Selection-level functions
// like count/all/any/has/no.
func (s *Selection) CallForSelf(fn Func, args ...Arg) (*Value, error) {
	return fn(s, args)
}

// CallForEach maps fn across the items of s one at a time (fn sees a
// singleton Selection per call); per-item errors are swallowed and that
// item is dropped from the result, matching spec §4.2's "call_for_each"
// contract.
func (s *Selection) CallForEach(fn Func, args ...Arg) *Selection {
	var out []*Value
	for _, item := range s.items {
		v, err := safeCall(s.withItems([]*Value{item}), fn, args)
		if err == nil && v != nil {
			out = append(out, v)
		}
	}
	return s.withItems(out)
}

func safeCall(recv *Selection, fn Func, args []Arg) (v *Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, errFromRecover(r)
		}
	}()
	return fn(recv, args)
}

// ByPath parses expr as a full jpath query (spec §4.4 "jpath" start rule)
// and evaluates it with s as both the current and the root selection --
// sugar for Parse+Evaluate, mirroring the Python original's
// JSelection.byjpath convenience (spec SPEC_FULL.md §11.6).
func (s *Selection) ByPath(expr string) (*Selection, error) {
	funcs := DefaultFunctions()
	ast, err := Parse(expr, RuleJPath, funcs)
	if err != nil {
		return nil, err
	}
	result, err := Evaluate(ast, s, s, funcs)
	if err != nil {
		return nil, err
	}
	return asSelection(result, s), nil
}

// applyIndexSpec implements el()/i()'s int/list/slice dispatch.
func applyIndexSpec(items []*Value, spec IndexSpec) []*Value {
	switch spec.Kind {
	case IndexInt:
		if v, ok := pyIndex(items, spec.Int); ok {
			return []*Value{v}
		}
		return nil
	case IndexList:
		var out []*Value
		for _, idx := range spec.List {
			if v, ok := pyIndex(items, idx); ok {
				out = append(out, v)
			}
		}
		return out
	case IndexSlice:
		return pySlice(items, spec.Start, spec.Stop, spec.Step)
	default:
		return nil
	}
}

func pyIndex(items []*Value, idx int) (*Value, bool) {
	n := len(items)
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx >= n {
		return nil, false
	}
	return items[idx], true
}

func pySlice(items []*Value, startP, stopP, stepP *int) []*Value {
	n := len(items)
	step := 1
	if stepP != nil && *stepP != 0 {
		step = *stepP
	}

	var start, stop int
	if step > 0 {
		start = clampForward(startP, 0, n)
		stop = clampForward(stopP, n, n)
	} else {
		start = clampBackward(startP, n-1, n)
		stop = clampBackward(stopP, -1, n)
	}

	var out []*Value
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, items[i])
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, items[i])
		}
	}
	return out
}

func clampForward(p *int, def, n int) int {
	if p == nil {
		return def
	}
	i := *p
	if i < 0 {
		i += n
	}
	if i < 0 {
		i = 0
	}
	if i > n {
		i = n
	}
	return i
}

func clampBackward(p *int, def, n int) int {
	if p == nil {
		return def
	}
	i := *p
	if i < 0 {
		i += n
	}
	if i < -1 {
		i = -1
	}
	if i >= n {
		i = n - 1
	}
	return i
}
