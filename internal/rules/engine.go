// Package rules evaluates the Datalog rulebase that defines antagonistic
// domain pairs and finite-resource terms. The rulebase is evaluated once at
// startup with Google Mangle; the conflict detector then works from a typed
// snapshot of the derived facts, so the per-query path never touches the
// Datalog engine.
package rules

import (
	"bytes"
	"fmt"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	_ "github.com/google/mangle/packages"
	"github.com/google/mangle/parse"

	"taskrouter/internal/logging"
)

// Fact is one derived or declared fact from the rulebase.
type Fact struct {
	Predicate string
	Args      []interface{}
}

// Engine wraps a Mangle program evaluated against an in-memory fact store.
type Engine struct {
	programInfo    *analysis.ProgramInfo
	store          factstore.FactStore
	predicateIndex map[string]ast.PredicateSym
}

// NewEngine parses, analyzes, and fully evaluates a Mangle program. The
// returned engine is read-only: all derivation happens here, not per query.
func NewEngine(program string) (*Engine, error) {
	unit, err := parse.Unit(bytes.NewReader([]byte(program)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rulebase: %w", err)
	}

	programInfo, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze rulebase: %w", err)
	}

	store := factstore.NewSimpleInMemoryStore()
	if _, err := mengine.EvalProgramWithStats(programInfo, store); err != nil {
		return nil, fmt.Errorf("failed to evaluate rulebase: %w", err)
	}
	logging.Rules("rulebase evaluated: %d facts", store.EstimateFactCount())

	e := &Engine{
		programInfo:    programInfo,
		store:          store,
		predicateIndex: make(map[string]ast.PredicateSym, len(programInfo.Decls)),
	}
	for sym := range programInfo.Decls {
		e.predicateIndex[sym.Symbol] = sym
	}
	return e, nil
}

// Facts returns all facts for a predicate, declared and derived.
func (e *Engine) Facts(predicate string) ([]Fact, error) {
	sym, ok := e.predicateIndex[predicate]
	if !ok {
		return nil, fmt.Errorf("predicate %s is not declared", predicate)
	}

	var results []Fact
	err := e.store.GetFacts(ast.NewQuery(sym), func(atom ast.Atom) error {
		args := make([]interface{}, len(atom.Args))
		for i, arg := range atom.Args {
			args[i] = baseTermToInterface(arg)
		}
		results = append(results, Fact{Predicate: predicate, Args: args})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func baseTermToInterface(term ast.BaseTerm) interface{} {
	switch v := term.(type) {
	case ast.Constant:
		return constantToInterface(v)
	case ast.Variable:
		return v.Symbol
	default:
		return fmt.Sprintf("%v", term)
	}
}

func constantToInterface(constant ast.Constant) interface{} {
	switch constant.Type {
	case ast.StringType:
		return constant.Symbol
	case ast.NameType:
		return constant.Symbol
	case ast.NumberType:
		return constant.NumValue
	default:
		return constant.String()
	}
}
