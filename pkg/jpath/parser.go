package jpath

import "fmt"

// Rule names a grammar entry point. Parse dispatches to the matching
// production rather than always starting from the full query grammar, so
// a filter body or a bare function call can be parsed (and re-parsed, for
// function arguments) without re-deriving it through the jpath production.
type Rule int

const (
	RuleJPath Rule = iota
	RuleExprStr
	RuleFunction
)

// Parse tokenizes and parses expr starting from rule, producing an Expr AST
// ready for Evaluate. There is no intermediate source-generation step: the
// grammar is walked directly into the tree.
//
// funcs is consulted while parsing a Call node: a function name absent from
// funcs is a FunctionError raised at parse time, before any filter predicate
// ever runs -- matching the original's p_function, which checks
// hasattr(jpath_funcs, name) during the grammar reduction itself (parse.py),
// rather than waiting for a filter to swallow the failure (spec §4.2 only
// governs errors a predicate's evaluation produces, not an unresolved
// function name discovered while parsing it). A nil funcs uses
// DefaultFunctions().
func Parse(expr string, rule Rule, funcs FunctionTable) (*Expr, error) {
	if funcs == nil {
		funcs = DefaultFunctions()
	}
	toks, err := tokenizeAll(expr)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, funcs: funcs}

	var result *Expr
	switch rule {
	case RuleFunction:
		result, err = p.parseFunctionCall()
	default:
		result, err = p.parseExprStr()
	}
	if err != nil {
		return nil, err
	}
	if p.peek().Type != TokEOF {
		return nil, p.syntaxErrorHere("unexpected " + tokenDisplay(p.peek()))
	}
	return result, nil
}

type parser struct {
	toks  []Token
	pos   int
	funcs FunctionTable
}

func (p *parser) peek() Token      { return p.toks[p.pos] }
func (p *parser) peekAt(n int) Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) mark() int       { return p.pos }
func (p *parser) reset(mark int)  { p.pos = mark }

func (p *parser) expectTok(tt TokenType) (Token, error) {
	if p.peek().Type != tt {
		return Token{}, p.syntaxErrorHere(fmt.Sprintf("expected %s but found %s", tt, tokenDisplay(p.peek())))
	}
	return p.advance(), nil
}

func (p *parser) syntaxErrorHere(msg string) error {
	tok := p.peek()
	if tok.Type == TokEOF {
		return NewSyntaxError("unexpected end of input", Position{})
	}
	return NewSyntaxError(msg, tok.Pos)
}

func tokenDisplay(t Token) string {
	switch t.Type {
	case TokEOF:
		return "end of input"
	case TokFuncName:
		return "'" + t.Text + "'"
	case TokInt, TokFloat:
		return "'" + t.Text + "'"
	case TokString:
		return "string"
	default:
		return "'" + t.Type.String() + "'"
	}
}

func literal(v *Value) *Expr {
	return &Expr{Tag: ExprLiteral, Literal: v}
}

// parseExprStr implements the exprstr production: expression | jpath. Since
// a bare jpath chain is itself a valid primary of the expression ladder,
// both alternatives fall out of one entry point; this is also the top-level
// entry for a full jpath query, a filter body, and every function argument.
func (p *parser) parseExprStr() (*Expr, error) {
	return p.parseUnion()
}

// parseUnion is the loosest-binding production: A | B | C.
func (p *parser) parseUnion() (*Expr, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == TokPipe {
		pos := p.advance().Pos
		right, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		left = &Expr{Tag: ExprUnion, Items: []*Expr{left, right}, Pos: pos}
	}
	return left, nil
}

func (p *parser) parseOr() (*Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == TokOr {
		pos := p.advance().Pos
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Expr{Tag: ExprBinary, Op: OpOr, Left: left, Right: right, Pos: pos}
	}
	return left, nil
}

func (p *parser) parseAnd() (*Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == TokAnd {
		pos := p.advance().Pos
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &Expr{Tag: ExprBinary, Op: OpAnd, Left: left, Right: right, Pos: pos}
	}
	return left, nil
}

var comparisonOps = map[TokenType]BinaryOp{
	TokEq:    OpEq,
	TokNotEq: OpNotEq,
	TokLt:    OpLt,
	TokLte:   OpLte,
	TokGt:    OpGt,
	TokGte:   OpGte,
}

func (p *parser) parseComparison() (*Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := comparisonOps[p.peek().Type]
		if !ok {
			return left, nil
		}
		pos := p.advance().Pos
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &Expr{Tag: ExprBinary, Op: op, Left: left, Right: right, Pos: pos}
	}
}

func (p *parser) parseAdditive() (*Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch p.peek().Type {
		case TokPlus:
			op = OpAdd
		case TokMinus:
			op = OpSub
		default:
			return left, nil
		}
		pos := p.advance().Pos
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &Expr{Tag: ExprBinary, Op: op, Left: left, Right: right, Pos: pos}
	}
}

func (p *parser) parseMultiplicative() (*Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch p.peek().Type {
		case TokStar:
			op = OpMul
		case TokSlash:
			op = OpDiv
		case TokPercent:
			op = OpMod
		default:
			return left, nil
		}
		pos := p.advance().Pos
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Expr{Tag: ExprBinary, Op: op, Left: left, Right: right, Pos: pos}
	}
}

// parseUnary implements unary minus: right-associative and higher
// precedence than anything below it, the same way `- - x` or `-$."a".[1]`
// must bind tightest of all.
func (p *parser) parseUnary() (*Expr, error) {
	if p.peek().Type == TokMinus {
		pos := p.advance().Pos
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Expr{Tag: ExprUnaryNeg, Operand: operand, Pos: pos}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (*Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case TokRoot, TokAt:
		return p.parseJPathChain()
	case TokInt:
		p.advance()
		return literal(NewInt(tok.Int)), nil
	case TokFloat:
		p.advance()
		return literal(NewFloat(tok.Float)), nil
	case TokTrue:
		p.advance()
		return literal(NewBool(true)), nil
	case TokFalse:
		p.advance()
		return literal(NewBool(false)), nil
	case TokNull:
		p.advance()
		return literal(Null()), nil
	case TokString:
		p.advance()
		return literal(NewString(tok.Str)), nil
	case TokFuncName:
		return p.parseFunctionCall()
	case TokLParen:
		p.advance()
		inner, err := p.parseExprStr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectTok(TokRParen); err != nil {
			return nil, err
		}
		return inner, nil
	default:
		return nil, p.syntaxErrorHere("unexpected " + tokenDisplay(tok))
	}
}

func (p *parser) parseFunctionCall() (*Expr, error) {
	nameTok, err := p.expectTok(TokFuncName)
	if err != nil {
		return nil, err
	}
	if _, ok := p.funcs.Lookup(nameTok.Text); !ok {
		return nil, NewFunctionError("unknown function '"+nameTok.Text+"'", nameTok.Pos)
	}
	if _, err := p.expectTok(TokLParen); err != nil {
		return nil, err
	}
	var args []*Expr
	if p.peek().Type != TokRParen {
		for {
			arg, err := p.parseExprStr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().Type == TokComma {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expectTok(TokRParen); err != nil {
		return nil, err
	}
	return &Expr{Tag: ExprCall, FuncName: nameTok.Text, Items: args, Pos: nameTok.Pos}, nil
}

// parseJPathChain parses ROOT|AT followed by zero or more postfix
// selectors, left-associating them via each node's Base pointer.
func (p *parser) parseJPathChain() (*Expr, error) {
	tok := p.advance()
	var node *Expr
	if tok.Type == TokRoot {
		node = &Expr{Tag: ExprRoot, Pos: tok.Pos}
	} else {
		node = &Expr{Tag: ExprCurrent, Pos: tok.Pos}
	}

	for {
		switch p.peek().Type {
		case TokSimpleSel:
			selPos := p.advance().Pos
			switch p.peek().Type {
			case TokString:
				s := p.advance()
				node = &Expr{Tag: ExprKey, Name: s.Str, Base: node, Pos: selPos}
			case TokStar:
				p.advance()
				node = &Expr{Tag: ExprAllKeys, Base: node, Pos: selPos}
			case TokLSquare:
				el, err := p.parseElBracket()
				if err != nil {
					return nil, err
				}
				el.Base = node
				el.Pos = selPos
				node = el
			default:
				return nil, p.syntaxErrorHere("unexpected " + tokenDisplay(p.peek()))
			}
		case TokDeepSel:
			selPos := p.advance().Pos
			switch p.peek().Type {
			case TokString:
				s := p.advance()
				node = &Expr{Tag: ExprKey, Deep: true, Name: s.Str, Base: node, Pos: selPos}
			case TokStar:
				p.advance()
				node = &Expr{Tag: ExprAllKeys, Deep: true, Base: node, Pos: selPos}
			default:
				return nil, p.syntaxErrorHere("unexpected " + tokenDisplay(p.peek()))
			}
		case TokLSquare:
			br, err := p.parseNoDotBracket()
			if err != nil {
				return nil, err
			}
			br.Base = node
			node = br
		default:
			return node, nil
		}
	}
}

// parseElBracket parses the content of a ".[ ... ]" bracket, which per
// grammar is always an int, an index list or a slice -- never a wildcard or
// a filter expression.
func (p *parser) parseElBracket() (*Expr, error) {
	lsq, err := p.expectTok(TokLSquare)
	if err != nil {
		return nil, err
	}
	spec, ok := p.tryParseIndexSpec()
	if !ok {
		return nil, p.syntaxErrorHere("expected an index, index list or slice inside '.[ ]'")
	}
	if _, err := p.expectTok(TokRSquare); err != nil {
		return nil, err
	}
	return &Expr{Tag: ExprArrayIndex, Index: spec, Pos: lsq.Pos}, nil
}

// parseNoDotBracket parses the content of a bare "[ ... ]" bracket, which
// may be a wildcard, an int/index-list/slice, or a filter expression.
func (p *parser) parseNoDotBracket() (*Expr, error) {
	lsq, err := p.expectTok(TokLSquare)
	if err != nil {
		return nil, err
	}
	if p.peek().Type == TokStar && p.peekAt(1).Type == TokRSquare {
		p.advance()
		p.advance()
		return &Expr{Tag: ExprExpand, Pos: lsq.Pos}, nil
	}
	if spec, ok := p.tryParseIndexSpec(); ok {
		if _, err := p.expectTok(TokRSquare); err != nil {
			return nil, err
		}
		return &Expr{Tag: ExprItemIndex, Index: spec, Pos: lsq.Pos}, nil
	}
	inner, err := p.parseExprStr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectTok(TokRSquare); err != nil {
		return nil, err
	}
	return &Expr{Tag: ExprFilter, Operand: inner, Pos: lsq.Pos}, nil
}

// tryParseIndexSpec attempts to parse an int / index-list / slice at the
// current position, backtracking (and reporting ok=false) if what follows
// doesn't fit any of those three shapes -- in which case the caller falls
// back to parsing a general filter expression instead.
func (p *parser) tryParseIndexSpec() (IndexSpec, bool) {
	mark := p.mark()

	parseSignedInt := func() (int, bool) {
		neg := false
		if p.peek().Type == TokMinus {
			p.advance()
			neg = true
		}
		if p.peek().Type != TokInt {
			return 0, false
		}
		v := int(p.advance().Int)
		if neg {
			v = -v
		}
		return v, true
	}

	if p.peek().Type == TokColon {
		spec, ok := p.parseSliceFrom(nil)
		if !ok {
			p.reset(mark)
		}
		return spec, ok
	}

	first, ok := parseSignedInt()
	if !ok {
		p.reset(mark)
		return IndexSpec{}, false
	}

	switch p.peek().Type {
	case TokColon:
		spec, ok := p.parseSliceFrom(&first)
		if !ok {
			p.reset(mark)
		}
		return spec, ok
	case TokComma:
		list := []int{first}
		for p.peek().Type == TokComma {
			p.advance()
			v, ok := parseSignedInt()
			if !ok {
				p.reset(mark)
				return IndexSpec{}, false
			}
			list = append(list, v)
		}
		if p.peek().Type != TokRSquare {
			p.reset(mark)
			return IndexSpec{}, false
		}
		return IndexSpec{Kind: IndexList, List: list}, true
	case TokRSquare:
		return IndexSpec{Kind: IndexInt, Int: first}, true
	default:
		p.reset(mark)
		return IndexSpec{}, false
	}
}

// parseSliceFrom parses the ":stop[:step]" remainder of a slice, given its
// (possibly nil/omitted) start. p must be positioned at the leading COLON.
func (p *parser) parseSliceFrom(start *int) (IndexSpec, bool) {
	if p.peek().Type != TokColon {
		return IndexSpec{}, false
	}
	p.advance()

	parseOptInt := func() *int {
		mark := p.mark()
		neg := false
		if p.peek().Type == TokMinus {
			p.advance()
			neg = true
		}
		if p.peek().Type != TokInt {
			p.reset(mark)
			return nil
		}
		v := int(p.advance().Int)
		if neg {
			v = -v
		}
		return &v
	}

	stop := parseOptInt()
	var step *int
	if p.peek().Type == TokColon {
		p.advance()
		step = parseOptInt()
	}
	if p.peek().Type != TokRSquare {
		return IndexSpec{}, false
	}
	return IndexSpec{Kind: IndexSlice, Start: start, Stop: stop, Step: step}, true
}
