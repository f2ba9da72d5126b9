// Package lexer implements the hand-written multi-DFA scanner described in
// the compiler's lexical design: a dispatcher over a Numerical, a Symbol
// and a Word sub-DFA, plus a shared error trap and whitespace skipping.
//
// Grounded on the original scanner's CallableStateMachine design
// (lex/scanner.py): each sub-DFA is a family of small state functions
// instead of a class hierarchy, matching the "enum of states with a
// single step(char) -> Action" shape favored by the design notes. Go has
// no closures-that-rebind-a-handler idiom as convenient as Python's, so
// each DFA state here is a package-level function value (a stateFn) and
// the "current state" is just whichever function value the driving loop
// holds.
package lexer

import (
	"oolang.dev/compiler/pkg/token"
)

const eof rune = -1

type position struct{ line, col int }

// Scanner turns a source buffer into a lazy sequence of tokens. It is not
// safe for concurrent use; a single compilation uses one Scanner linearly.
type Scanner struct {
	runes []rune
	pos   []position // pos[i] is the line/column of runes[i]; pos[len(runes)] is EOF's position
	idx   int
}

// New creates a Scanner over the given source bytes.
func New(src []byte) *Scanner {
	runes := []rune(string(src))
	positions := make([]position, len(runes)+1)
	line, col := 1, 1
	for i, r := range runes {
		positions[i] = position{line, col}
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	positions[len(runes)] = position{line, col}
	return &Scanner{runes: runes, pos: positions}
}

// next always advances idx, even at end of input, so that a subsequent
// backtrack(1) can symmetrically undo an eof read the same way it undoes
// a real character read.
func (s *Scanner) next() rune {
	if s.idx >= len(s.runes) {
		s.idx++
		return eof
	}
	c := s.runes[s.idx]
	s.idx++
	return c
}

// backtrack pushes n characters (including the one just read) back onto
// the input, so the next Next() call starts a fresh token there.
func (s *Scanner) backtrack(n int) { s.idx -= n }

func (s *Scanner) at() token.Location {
	i := s.idx
	if i > len(s.runes) {
		i = len(s.runes)
	}
	p := s.pos[i]
	return token.Location{Line: p.line, Column: p.col}
}

// stateFn is one DFA state. It receives the next input character and
// returns the state to transition to, or nil once the token is complete.
type stateFn func(*lexRun, rune) stateFn

// lexRun accumulates the lexeme and resolved kind for a single token while
// a DFA runs; it is discarded once the token is emitted.
type lexRun struct {
	sc     *Scanner
	lexeme []rune
	kind   token.Kind
}

// transition appends c to the lexeme and moves to the next state.
func (r *lexRun) transition(c rune, next stateFn) stateFn {
	r.lexeme = append(r.lexeme, c)
	return next
}

// repeat appends c to the lexeme without changing state (used for
// self-loops, e.g. additional digits of an integer).
func (r *lexRun) repeat(c rune) { r.lexeme = append(r.lexeme, c) }

// success finalizes the token at the given kind and ends the DFA. Callers
// that need to push the triggering character back onto the input must
// call sc.backtrack(1) themselves before returning from success.
func (r *lexRun) success(kind token.Kind) stateFn {
	r.kind = kind
	return nil
}

// Next scans and returns the next token, skipping whitespace. Comments are
// returned as tokens (BlockComment/InlineComment) so artifact dumps can
// see them; the parser is responsible for filtering them (and EOF) out of
// its own input stream per the grammar's lexical-feed convention.
func (s *Scanner) Next() token.Token {
	for {
		start := s.at()
		c := s.next()
		if c == eof {
			return token.Token{Kind: token.EOF, Location: start}
		}
		if isWhitespace(c) {
			continue
		}

		run := &lexRun{sc: s}
		var state stateFn
		switch {
		case isDigit(c):
			state = numStart(run, c)
		case isLetter(c) || c == '_':
			state = wordStart(run, c)
		case isSymbol(c):
			state = symStart(run, c)
		default:
			run.kind = token.InvalidCharacter
			run.lexeme = append(run.lexeme, c)
			state = nil
		}

		for state != nil {
			state = state(run, s.next())
		}

		return token.Token{Kind: run.kind, Lexeme: string(run.lexeme), Location: start}
	}
}

// ---------------------------------------------------------------------------
// Numerical DFA
//
// States: start -> {zero | integer} -> [dot lookahead -> valid_float <->
// float -> (exponent -> {signed, digit, e_zero})]. Any character that
// cannot continue the number in its current state but is itself
// alphanumeric is a disallowed continuation: the scanner falls into a
// trap that accumulates the rest of the offending run and reports it as
// invalid_number, upgraded to invalid_identifier the moment a non-'e'
// letter or an underscore shows up in the trapped text.

func numStart(r *lexRun, c rune) stateFn {
	if c == '0' {
		return r.transition(c, numZero)
	}
	return r.transition(c, numInteger)
}

func numZero(r *lexRun, c rune) stateFn {
	switch {
	case c == '.':
		return numDot(r, c)
	case isAlphaNum(c):
		return numTrap(r, c)
	default:
		r.sc.backtrack(1)
		return r.success(token.IntegerLit)
	}
}

func numInteger(r *lexRun, c rune) stateFn {
	switch {
	case c == '.':
		return numDot(r, c)
	case isDigit(c):
		r.repeat(c)
		return numInteger
	case isAlphaNum(c):
		return numTrap(r, c)
	default:
		r.sc.backtrack(1)
		return r.success(token.IntegerLit)
	}
}

// numDot has just consumed '.' without committing it to the lexeme yet,
// since whether the dot belongs to this token depends on what follows it:
//   - a digit continues the literal into a float ("0.5").
//   - a letter or underscore means the dot was never part of a number at
//     all (as in `100.id`, member access on an integer-looking prefix);
//     both the dot and the lookahead are pushed back so they scan as
//     their own tokens.
//   - anything else (whitespace, a symbol, end of input) leaves a
//     dangling decimal point, which is itself a malformed number ("1.").
func numDot(r *lexRun, dot rune) stateFn {
	return func(r2 *lexRun, after rune) stateFn {
		switch {
		case isDigit(after):
			r2.lexeme = append(r2.lexeme, dot)
			r2.kind = token.FloatLit
			return r2.transition(after, numValidFloat)
		case isAlphaNum(after):
			r2.sc.backtrack(2)
			return r2.success(token.IntegerLit)
		default:
			r2.lexeme = append(r2.lexeme, dot)
			return numTrap(r2, after)
		}
	}
}

func numValidFloat(r *lexRun, c rune) stateFn {
	switch {
	case c == 'e':
		return r.transition(c, numExponent)
	case c == '0':
		return r.transition(c, numFloat)
	case isNonZeroDigit(c):
		r.repeat(c)
		return numValidFloat
	case isAlphaNum(c):
		return numTrap(r, c)
	default:
		r.sc.backtrack(1)
		return r.success(token.FloatLit)
	}
}

// numFloat is the "trailing zero" state: a zero digit past the first
// fractional digit (or past another such zero) only recovers into a
// well-formed float if a nonzero digit follows right away. Anything
// else — another zero, an exponent marker, another letter, or simply
// ending the number here — means the literal has an insignificant
// trailing zero, so every other case is handed to the trap (which
// consumes an alphanumeric character and ends the token otherwise).
func numFloat(r *lexRun, c rune) stateFn {
	if isNonZeroDigit(c) {
		return r.transition(c, numValidFloat)
	}
	return numTrap(r, c)
}

func numExponent(r *lexRun, c rune) stateFn {
	switch {
	case c == '+' || c == '-':
		return r.transition(c, numSigned)
	case isNonZeroDigit(c):
		return r.transition(c, numDigit)
	case c == '0':
		return r.transition(c, numEZero)
	default:
		r.sc.backtrack(1)
		return numTrap(r, 0)
	}
}

func numSigned(r *lexRun, c rune) stateFn {
	switch {
	case isNonZeroDigit(c):
		return r.transition(c, numDigit)
	case c == '0':
		return r.transition(c, numEZero)
	default:
		r.sc.backtrack(1)
		return numTrap(r, 0)
	}
}

func numDigit(r *lexRun, c rune) stateFn {
	switch {
	case isDigit(c):
		r.repeat(c)
		return numDigit
	case isAlphaNum(c):
		return numTrap(r, c)
	default:
		r.sc.backtrack(1)
		return r.success(token.FloatLit)
	}
}

// numEZero is the "leading zero in the exponent" state: a bare exponent
// digit of '0' may not be followed by another digit (disallows "1e01").
func numEZero(r *lexRun, c rune) stateFn {
	if isDigit(c) {
		return numTrap(r, c)
	}
	r.sc.backtrack(1)
	return r.success(token.FloatLit)
}

// numTrap accumulates characters until a non-alphanumeric terminator,
// defaulting the diagnosis to invalid_number and upgrading to
// invalid_identifier the moment a letter other than 'e', or an
// underscore, is seen. c == 0 means "re-enter the trap without consuming
// a character", used when the caller already backtracked it.
func numTrap(r *lexRun, c rune) stateFn {
	if r.kind != token.InvalidIdentifier {
		r.kind = token.InvalidNumber
	}
	if c != 0 && isAlphaNum(c) {
		if c == '_' || (isLetter(c) && c != 'e') {
			r.kind = token.InvalidIdentifier
		}
		r.repeat(c)
		return numTrap
	}
	if c != 0 {
		r.sc.backtrack(1)
	}
	return r.success(r.kind)
}

// ---------------------------------------------------------------------------
// Word DFA
//
// Identifier pattern: [A-Za-z][A-Za-z0-9_]*. A leading underscore cannot
// start a valid identifier, so it is routed straight into the shared
// error trap, tagged invalid_identifier from the start.

func wordStart(r *lexRun, c rune) stateFn {
	if isLetter(c) {
		return r.transition(c, wordIdent)
	}
	// c == '_', the only other alphanumeric character dispatched here.
	r.kind = token.InvalidIdentifier
	r.repeat(c)
	return numTrap
}

func wordIdent(r *lexRun, c rune) stateFn {
	if isAlphaNum(c) {
		r.repeat(c)
		return wordIdent
	}
	r.sc.backtrack(1)
	kind, ok := token.Keywords[string(r.lexeme)]
	if !ok {
		kind = token.Ident
	}
	return r.success(kind)
}

// ---------------------------------------------------------------------------
// Symbol DFA
//
// Single-character punctuation resolves immediately. The five dual-lead
// characters ('=','<','>',':','/') look one character ahead: on a match
// they succeed as the two-character operator, otherwise the single-char
// token is emitted and the second character is pushed back. '//' and '/*'
// fork into line/block comment scanning instead of resolving to an
// operator token.

var singleSymbols = map[rune]token.Kind{
	'+': token.Plus, '-': token.Minus, '*': token.Mult,
	';': token.Semi, '.': token.Dot, ',': token.Comma,
	'(': token.OpenPar, ')': token.ClosePar,
	'{': token.OpenCbr, '}': token.CloseCbr,
	'[': token.OpenSbr, ']': token.CloseSbr,
}

func symStart(r *lexRun, c rune) stateFn {
	if kind, ok := singleSymbols[c]; ok {
		r.lexeme = append(r.lexeme, c)
		return r.success(kind)
	}

	r.lexeme = append(r.lexeme, c)
	switch c {
	case '=':
		return symDual(r, '=', token.Eq, token.Assign)
	case '<':
		return symLt
	case '>':
		return symDual(r, '=', token.Gte, token.Gt)
	case ':':
		return symDual(r, ':', token.Dcolon, token.Colon)
	case '/':
		return symSlash
	}
	panic("unreachable: c is guaranteed a dual-lead symbol here")
}

// symDual builds a two-character lookahead state for the common case of
// "one specific second character succeeds as twoCharKind, anything else
// backtracks to oneCharKind".
func symDual(r *lexRun, want rune, twoCharKind, oneCharKind token.Kind) stateFn {
	return func(r2 *lexRun, c rune) stateFn {
		if c == want {
			r2.lexeme = append(r2.lexeme, c)
			return r2.success(twoCharKind)
		}
		r2.sc.backtrack(1)
		return r2.success(oneCharKind)
	}
}

// symLt special-cases '<' since it has two possible two-character matches
// ('<=' and '<>').
func symLt(r *lexRun, c rune) stateFn {
	switch c {
	case '=':
		r.lexeme = append(r.lexeme, c)
		return r.success(token.Lte)
	case '>':
		r.lexeme = append(r.lexeme, c)
		return r.success(token.Neq)
	default:
		r.sc.backtrack(1)
		return r.success(token.Lt)
	}
}

func symSlash(r *lexRun, c rune) stateFn {
	switch c {
	case '/':
		r.lexeme = append(r.lexeme, c)
		return symInlineComment
	case '*':
		r.lexeme = append(r.lexeme, c)
		return symBlockComment
	default:
		r.sc.backtrack(1)
		return r.success(token.Div)
	}
}

func symInlineComment(r *lexRun, c rune) stateFn {
	if c == '\n' || c == eof {
		r.sc.backtrack(1)
		return r.success(token.InlineComment)
	}
	r.repeat(c)
	return symInlineComment
}

func symBlockComment(r *lexRun, c rune) stateFn {
	switch c {
	case eof:
		r.sc.backtrack(1)
		return r.success(token.DanglingBlockComment)
	case '*':
		r.repeat(c)
		return symBlockStar
	default:
		r.repeat(c)
		return symBlockComment
	}
}

func symBlockStar(r *lexRun, c rune) stateFn {
	switch c {
	case '/':
		r.repeat(c)
		return r.success(token.BlockComment)
	case '*':
		r.repeat(c)
		return symBlockStar
	case eof:
		r.sc.backtrack(1)
		return r.success(token.DanglingBlockComment)
	default:
		r.repeat(c)
		return symBlockComment
	}
}
