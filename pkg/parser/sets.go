package parser

import "oolang.dev/compiler/pkg/token"

// kindSet is a small membership set over token kinds, used for the
// parser's recovery boundaries and for the expected-token lists its
// panic reports name (see the follow sets below).
type kindSet map[token.Kind]bool

func setOf(kinds ...token.Kind) kindSet {
	s := make(kindSet, len(kinds))
	for _, k := range kinds {
		s[k] = true
	}
	return s
}

func (s kindSet) has(k token.Kind) bool { return s[k] }

func (s kindSet) union(other kindSet) kindSet {
	out := make(kindSet, len(s)+len(other))
	for k := range s {
		out[k] = true
	}
	for k := range other {
		out[k] = true
	}
	return out
}

func (s kindSet) keys() []token.Kind {
	out := make([]token.Kind, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	return out
}

// The grammar's id-chain (variable/functionCall) production is
// left-factored: after parsing "id [indices]" the chain continues only
// on a '.' lookahead; any other token ends it. The sets below are the
// union, over every statement/expression context a complete chain can
// appear in, of what legally follows it — derived by hand from
// original_source/syn/parser.py's call sites (assignment LHS, read's
// argument, a factor inside arithmetic/relational expressions, an
// expression-statement function call). They do not decide where the
// chain ends; they name the expected tokens when the parser panics
// after a chain. See DESIGN.md for the full derivation.
var (
	chainOperatorTail = setOf(
		token.Mult, token.Div, token.And,
		token.Plus, token.Minus, token.Or,
		token.Eq, token.Neq, token.Lt, token.Gt, token.Lte, token.Gte,
		token.Semi, token.ClosePar, token.Comma, token.CloseSbr,
	)
	followVariable     = chainOperatorTail.union(setOf(token.Assign))
	followFunctionCall = chainOperatorTail
)
