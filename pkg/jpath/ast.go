package jpath

// ExprTag identifies the concrete shape of an Expr node.
type ExprTag int

const (
	ExprRoot ExprTag = iota
	ExprCurrent
	ExprUnion
	ExprKey
	ExprAllKeys
	ExprArrayIndex
	ExprItemIndex
	ExprExpand
	ExprFilter
	ExprLiteral
	ExprUnaryNeg
	ExprBinary
	ExprCall
)

// BinaryOp enumerates the arithmetic/comparison/logical operators a Binary
// node can carry.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNotEq
	OpLt
	OpLte
	OpGt
	OpGte
	OpAnd
	OpOr
)

// IndexKind distinguishes the three shapes a bracketed index/slice can take.
type IndexKind int

const (
	IndexInt IndexKind = iota
	IndexList
	IndexSlice
)

// IndexSpec is the payload of an ArrayIndex/ItemIndex node: either a single
// integer, a comma-separated list of integers, or a start:stop:step slice.
// Nil Start/Stop/Step mean "omitted" (Python-style open slice ends).
type IndexSpec struct {
	Kind  IndexKind
	Int   int
	List  []int
	Start *int
	Stop  *int
	Step  *int
}

// Expr is a single jpath AST node. Every selector chain, filter predicate and
// expression-string parses down to a tree of these; Evaluate walks it
// directly, there is no intermediate generated-code step.
type Expr struct {
	Tag ExprTag
	Pos Position

	// ExprKey / ExprAllKeys
	Deep bool
	Name string // ExprKey

	// ExprArrayIndex / ExprItemIndex
	Index IndexSpec

	// ExprFilter / ExprUnaryNeg
	Operand *Expr

	// ExprUnion / ExprCall (args)
	Items []*Expr

	// ExprLiteral
	Literal *Value

	// ExprBinary
	Op          BinaryOp
	Left, Right *Expr

	// ExprCall
	FuncName string

	// Selector chains are represented as a left-associated sequence: a
	// Key/AllKeys/ArrayIndex/ItemIndex/Expand/Filter node's Base is the
	// selector it is applied on top of (Root, Current or another selector
	// node). Root and Current themselves have a nil Base.
	Base *Expr
}
