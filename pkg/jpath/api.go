// Package jpath implements the JPath query language: a JSONPath-like
// language for navigating nested mappings, ordered sequences and scalar
// leaves, with its own grammar, filter sublanguage and built-in function
// library. See doc.go for an overview and cmd/jpath for a CLI front end.
package jpath

// Logger is the hook a host application can set on Config. QueryWithConfig
// reports to it when it starts parsing (Debug), when it starts evaluating
// (Trace) and when parsing or evaluation fails (Error). The DEBUG/TRACE lines
// the evaluator writes through internal/log are not routed to it; they still
// go to stderr when internal/log is switched on.
type Logger interface {
	Debug(format string, args ...interface{})
	Trace(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// Config parameterizes a query: which Selection metadata to seed the root
// Selection with, and which function table to evaluate calls against.
// DefaultConfig is what Query uses when called with no options; advanced
// callers that need a custom type split or an extended function catalogue
// build their own Config and call QueryWithConfig directly.
type Config struct {
	SelectionOptions SelectionOptions
	Functions        FunctionTable
	Logger           Logger
}

// DefaultConfig returns the zero-configuration default: the spec §3
// Object/Array iteration split and DefaultFunctions().
func DefaultConfig() Config {
	return Config{
		SelectionOptions: DefaultSelectionOptions(),
		Functions:        DefaultFunctions(),
	}
}

// Query parses expr as a full jpath query (spec §4.4's "jpath" start rule)
// and evaluates it against doc using DefaultConfig -- the convenience entry
// point spec §6 calls `query(expr, input_value, opts)`.
func Query(expr string, doc *Value) (*Selection, error) {
	return QueryWithConfig(expr, doc, DefaultConfig())
}

// QueryWithConfig is Query with an explicit Config, for callers that need a
// custom SelectionOptions split or an extended/overridden FunctionTable.
func QueryWithConfig(expr string, doc *Value, cfg Config) (*Selection, error) {
	funcs := cfg.Functions
	if funcs == nil {
		funcs = DefaultFunctions()
	}
	if cfg.Logger != nil {
		cfg.Logger.Debug("parsing query %q", expr)
	}
	ast, err := Parse(expr, RuleJPath, funcs)
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Error("parse failure for %q: %v", expr, err)
		}
		return nil, err
	}
	root := NewSelectionWithOptions(cfg.SelectionOptions, doc)
	if cfg.Logger != nil {
		cfg.Logger.Trace("evaluating query %q against root selection", expr)
	}
	result, err := Evaluate(ast, root, root, funcs)
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Error("evaluation failure for %q: %v", expr, err)
		}
		return nil, err
	}
	return asSelection(result, root), nil
}

// MustParse is Parse, panicking on error; intended for package-level table
// construction and tests, never for parsing caller-supplied query text. A
// nil funcs uses DefaultFunctions().
func MustParse(expr string, rule Rule, funcs FunctionTable) *Expr {
	ast, err := Parse(expr, rule, funcs)
	if err != nil {
		panic(err)
	}
	return ast
}

