package jpath

import (
	"math"

	"github.com/jpath-lang/jpath/internal/log"
)

// Evaluate walks ast carrying (root, current) Selections and a function
// table, per spec §4.5. The result is either a *Selection (for selector
// chains: Root, Current, Key, AllKeys, ArrayIndex, ItemIndex, Expand,
// Filter, Union) or a *Value (for a top-level Literal, UnaryNeg, Binary
// expression, or a bare function call) -- mirroring spec §6's
// `evaluate(ast, ...) → Value | Selection`.
func Evaluate(ast *Expr, current, root *Selection, funcs FunctionTable) (interface{}, error) {
	if funcs == nil {
		funcs = DefaultFunctions()
	}
	return evalNode(ast, current, root, funcs)
}

// evalNode is the recursive AST walker Evaluate and Filter predicates both
// call into.
func evalNode(expr *Expr, current, root *Selection, funcs FunctionTable) (interface{}, error) {
	log.TRACE("evaluating node %d at %d:%d", expr.Tag, expr.Pos.Line, expr.Pos.Col)
	switch expr.Tag {
	case ExprRoot:
		return root, nil
	case ExprCurrent:
		return current, nil
	case ExprUnion:
		leftAny, err := evalNode(expr.Items[0], current, root, funcs)
		if err != nil {
			return nil, err
		}
		rightAny, err := evalNode(expr.Items[1], current, root, funcs)
		if err != nil {
			return nil, err
		}
		return toSelection(leftAny, root).Union(toSelection(rightAny, root)), nil
	case ExprKey:
		base, err := evalBase(expr, current, root, funcs)
		if err != nil {
			return nil, err
		}
		return base.One(expr.Name, expr.Deep), nil
	case ExprAllKeys:
		base, err := evalBase(expr, current, root, funcs)
		if err != nil {
			return nil, err
		}
		return base.All(expr.Deep), nil
	case ExprArrayIndex:
		base, err := evalBase(expr, current, root, funcs)
		if err != nil {
			return nil, err
		}
		return base.El(expr.Index), nil
	case ExprItemIndex:
		base, err := evalBase(expr, current, root, funcs)
		if err != nil {
			return nil, err
		}
		return base.I(expr.Index), nil
	case ExprExpand:
		base, err := evalBase(expr, current, root, funcs)
		if err != nil {
			return nil, err
		}
		return base.Exp(), nil
	case ExprFilter:
		base, err := evalBase(expr, current, root, funcs)
		if err != nil {
			return nil, err
		}
		pred := expr.Operand
		return base.Filter(func(idx int, cur, rootSel *Selection) bool {
			res, err := evalNode(pred, cur, rootSel, funcs)
			if err != nil {
				return false
			}
			return truthyOf(res)
		}), nil
	case ExprLiteral:
		return expr.Literal, nil
	case ExprUnaryNeg:
		operandAny, err := evalNode(expr.Operand, current, root, funcs)
		if err != nil {
			return nil, err
		}
		v, err := coerceScalar(operandAny, expr.Pos)
		if err != nil {
			return nil, err
		}
		return negate(v, expr.Pos)
	case ExprBinary:
		return evalBinaryNode(expr, current, root, funcs)
	case ExprCall:
		return evalCall(expr, current, root, funcs)
	default:
		return nil, NewEvalError("unhandled AST node", expr.Pos)
	}
}

// evalBase evaluates a selector node's Base (the selection the node applies
// on top of), coercing it to a Selection if it somehow produced a scalar.
func evalBase(expr *Expr, current, root *Selection, funcs FunctionTable) (*Selection, error) {
	baseAny, err := evalNode(expr.Base, current, root, funcs)
	if err != nil {
		return nil, err
	}
	return toSelection(baseAny, root), nil
}

// toSelection coerces an evaluated node's result into a Selection: it
// already is one for every selector-chain node, and is wrapped into a
// singleton (sharing root) when it was a bare scalar, e.g. inside "A|B"
// unions whose operand happened to be a literal.
func toSelection(v interface{}, root *Selection) *Selection {
	switch t := v.(type) {
	case *Selection:
		return t
	case *Value:
		return &Selection{items: []*Value{t}, root: root, opts: root.opts}
	default:
		return NewSelection()
	}
}

// asSelection is toSelection under the name other files in the package use
// (ByPath's and QueryWithConfig's result coercion).
func asSelection(v interface{}, root *Selection) *Selection { return toSelection(v, root) }

// coerceScalar implements the ".val()" rule of spec §4.5/§9: an operand
// that's a Selection contributes its first item; an empty Selection is a
// runtime error, matching spec §9's recommendation for the "Ambiguities
// noted, not guessed" case of comparing against an empty Selection.
func coerceScalar(v interface{}, pos Position) (*Value, error) {
	switch t := v.(type) {
	case *Value:
		return t, nil
	case *Selection:
		first := t.First()
		if first == nil {
			return nil, NewEvalError("empty selection in comparison", pos)
		}
		return first, nil
	default:
		return nil, NewEvalError("cannot coerce value", pos)
	}
}

// truthyOf applies spec §4.5's truthiness rule uniformly across both result
// shapes: a Selection is truthy iff non-empty, a scalar Value is truthy per
// Value.Truthy().
func truthyOf(v interface{}) bool {
	switch t := v.(type) {
	case *Selection:
		return t.Len() > 0
	case *Value:
		return t.Truthy()
	default:
		return false
	}
}

func negate(v *Value, pos Position) (*Value, error) {
	switch v.Kind() {
	case KindInt:
		return NewInt(-v.Int()), nil
	case KindFloat:
		return NewFloat(-v.Float()), nil
	default:
		return nil, NewEvalError("cannot negate a "+v.Kind().String(), pos)
	}
}

func evalBinaryNode(expr *Expr, current, root *Selection, funcs FunctionTable) (interface{}, error) {
	if expr.Op == OpAnd || expr.Op == OpOr {
		leftAny, err := evalNode(expr.Left, current, root, funcs)
		if err != nil {
			return nil, err
		}
		leftTruthy := truthyOf(leftAny)
		if expr.Op == OpAnd && !leftTruthy {
			return NewBool(false), nil
		}
		if expr.Op == OpOr && leftTruthy {
			return NewBool(true), nil
		}
		rightAny, err := evalNode(expr.Right, current, root, funcs)
		if err != nil {
			return nil, err
		}
		return NewBool(truthyOf(rightAny)), nil
	}

	leftAny, err := evalNode(expr.Left, current, root, funcs)
	if err != nil {
		return nil, err
	}
	rightAny, err := evalNode(expr.Right, current, root, funcs)
	if err != nil {
		return nil, err
	}
	lv, err := coerceScalar(leftAny, expr.Pos)
	if err != nil {
		return nil, err
	}
	rv, err := coerceScalar(rightAny, expr.Pos)
	if err != nil {
		return nil, err
	}
	return applyBinaryOp(expr.Op, lv, rv, expr.Pos)
}

func applyBinaryOp(op BinaryOp, lv, rv *Value, pos Position) (*Value, error) {
	switch op {
	case OpEq:
		return NewBool(lv.Equal(rv)), nil
	case OpNotEq:
		return NewBool(!lv.Equal(rv)), nil
	case OpLt, OpLte, OpGt, OpGte:
		return compareOrdered(op, lv, rv, pos)
	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		return arithmetic(op, lv, rv, pos)
	default:
		return nil, NewEvalError("unsupported operator", pos)
	}
}

func compareOrdered(op BinaryOp, lv, rv *Value, pos Position) (*Value, error) {
	var cmp int
	switch {
	case lv.IsNumber() && rv.IsNumber():
		lf, rf := lv.AsFloat(), rv.AsFloat()
		switch {
		case lf < rf:
			cmp = -1
		case lf > rf:
			cmp = 1
		default:
			cmp = 0
		}
	case lv.IsString() && rv.IsString():
		switch {
		case lv.Raw() < rv.Raw():
			cmp = -1
		case lv.Raw() > rv.Raw():
			cmp = 1
		default:
			cmp = 0
		}
	default:
		return nil, NewEvalError("cannot order-compare "+lv.Kind().String()+" and "+rv.Kind().String(), pos)
	}
	switch op {
	case OpLt:
		return NewBool(cmp < 0), nil
	case OpLte:
		return NewBool(cmp <= 0), nil
	case OpGt:
		return NewBool(cmp > 0), nil
	default: // OpGte
		return NewBool(cmp >= 0), nil
	}
}

// arithmetic implements +, -, *, /, % on numeric operands: Int op Int stays
// Int, any Float operand promotes the whole expression to Float (spec
// §4.5). Integer division and modulo truncate toward zero, matching Go's
// native operators on signed integers -- the choice spec §9 flags as an
// "ambiguity noted, not guessed" and asks implementers to pick and
// document (DESIGN.md records this decision).
func arithmetic(op BinaryOp, lv, rv *Value, pos Position) (*Value, error) {
	if !lv.IsNumber() || !rv.IsNumber() {
		return nil, NewEvalError("arithmetic requires numeric operands, got "+lv.Kind().String()+" and "+rv.Kind().String(), pos)
	}
	if lv.IsInt() && rv.IsInt() {
		a, b := lv.Int(), rv.Int()
		switch op {
		case OpAdd:
			return NewInt(a + b), nil
		case OpSub:
			return NewInt(a - b), nil
		case OpMul:
			return NewInt(a * b), nil
		case OpDiv:
			if b == 0 {
				return nil, NewEvalError("integer division by zero", pos)
			}
			return NewInt(a / b), nil
		case OpMod:
			if b == 0 {
				return nil, NewEvalError("integer modulo by zero", pos)
			}
			return NewInt(a % b), nil
		}
	}
	a, b := lv.AsFloat(), rv.AsFloat()
	switch op {
	case OpAdd:
		return NewFloat(a + b), nil
	case OpSub:
		return NewFloat(a - b), nil
	case OpMul:
		return NewFloat(a * b), nil
	case OpDiv:
		return NewFloat(a / b), nil
	case OpMod:
		return NewFloat(math.Mod(a, b)), nil
	}
	return nil, NewEvalError("unsupported arithmetic operator", pos)
}

func evalCall(expr *Expr, current, root *Selection, funcs FunctionTable) (v *Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, WrapFunctionError(expr.FuncName, expr.Pos, errFromRecover(r))
		}
	}()

	fn, ok := funcs.Lookup(expr.FuncName)
	if !ok {
		return nil, NewFunctionError("unknown function '"+expr.FuncName+"'", expr.Pos)
	}
	if len(expr.Items) == 0 {
		return nil, NewFunctionError(expr.FuncName+": requires a selection argument", expr.Pos)
	}

	recvAny, err := evalNode(expr.Items[0], current, root, funcs)
	if err != nil {
		return nil, err
	}
	recvSel, ok := recvAny.(*Selection)
	if !ok {
		return nil, NewFunctionError(expr.FuncName+": first argument must be a selection", expr.Pos)
	}

	args := make([]Arg, 0, len(expr.Items)-1)
	for _, argExpr := range expr.Items[1:] {
		argAny, err := evalNode(argExpr, current, root, funcs)
		if err != nil {
			return nil, err
		}
		switch t := argAny.(type) {
		case *Selection:
			args = append(args, ArgFromSelection(t))
		case *Value:
			args = append(args, ArgFromValue(t))
		}
	}

	log.DEBUG("calling function %q with %d extra args", expr.FuncName, len(args))
	result, callErr := fn(recvSel, args)
	if callErr != nil {
		return nil, WrapFunctionError(expr.FuncName, expr.Pos, callErr)
	}
	return result, nil
}
