// Package parser implements a predictive recursive-descent parser with
// panic-mode error recovery, producing a typed ast.Node tree.
//
// Grounded on original_source/syn/parser.py: the same FIRST-set-driven
// dispatch per non-terminal, the same panic/resume recovery primitives,
// and the same left-factored id-chain routine for variable/functionCall
// parsing. Two deliberate departures from a literal translation, both
// documented in DESIGN.md:
//
//   - The textbook grammar's epsilon/right-recursion scaffolding rules
//     (rept-prog0, rightrec-arithExpr, and friends — introduced there
//     only to avoid left recursion in a rule-per-non-terminal table) are
//     flattened into ordinary Go `for` loops. A hand-rolled descent
//     parser doesn't need them: the loop condition IS the FIRST-set
//     check.
//   - Binary-operator associativity is built with a straightforward
//     left-fold as each operator is parsed, rather than the original's
//     build-right-then-rotate-into-place post-processing
//     (insert_commutative/absorb in original_source/syn/ast.py). Both
//     produce the identical left-leaning tree for "a - b - c"; the fold
//     needs no node surgery to get there.
package parser

import (
	"oolang.dev/compiler/pkg/ast"
	"oolang.dev/compiler/pkg/lexer"
	"oolang.dev/compiler/pkg/token"
)

// Parser drives a single top-down parse of one token stream into one
// ast.Node tree. It is not safe for concurrent use, and not meant to be
// reused across source files — construct a fresh Parser per compilation.
type Parser struct {
	sc        *lexer.Scanner
	current   token.Token
	lookahead token.Token

	productions ProductionHandler
	errors      ErrorHandler

	success bool
}

// New returns a Parser reading from sc. Attach a ProductionHandler
// and/or ErrorHandler (e.g. a *Recorder) before calling Parse if the
// derivation trace or syntax-error log artifacts are wanted.
func New(sc *lexer.Scanner) *Parser {
	return &Parser{sc: sc, success: true}
}

// SetProductionHandler attaches the sink for matched-rule callbacks.
func (p *Parser) SetProductionHandler(h ProductionHandler) { p.productions = h }

// SetErrorHandler attaches the sink for panic/resume recovery events.
func (p *Parser) SetErrorHandler(h ErrorHandler) { p.errors = h }

// Parse runs the parser from the start rule. It returns the (possibly
// partial, on failure) AST root and whether the parse completed with no
// recovered errors and lookahead sitting on EOF.
func (p *Parser) Parse() (*ast.Node, bool) {
	p.advance() // prime p.lookahead
	root := p.parseProg()
	ok := p.success && p.lookahead.Kind == token.EOF
	return root, ok
}

// --- token stream plumbing -------------------------------------------------

func (p *Parser) advance() token.Token {
	p.current = p.lookahead
	p.lookahead = p.nextSignificant()
	return p.current
}

func (p *Parser) nextSignificant() token.Token {
	for {
		t := p.sc.Next()
		if t.Kind != token.BlockComment && t.Kind != token.InlineComment {
			return t
		}
	}
}

// match consumes the lookahead if it has kind k, reporting a panic
// event otherwise. On a mismatch the lookahead still advances — except
// for a missing ';', which is forgiven: the error is reported but
// parsing continues without consuming whatever token actually followed,
// per spec §4.2 ("missing semicolons are forgiven").
func (p *Parser) match(k token.Kind) bool {
	ok := p.lookahead.Kind == k
	if !ok {
		p.onPanic(k)
		if k == token.Semi {
			return false
		}
	}
	p.advance()
	return ok
}

func (p *Parser) onPanic(expected ...token.Kind) {
	p.success = false
	if p.errors != nil {
		p.errors.Panic(expected, p.lookahead)
	}
}

// recoverUntil skips tokens until the lookahead lies in recovery,
// reporting the skipped run. EOF always belongs to every recovery set a
// caller builds (see the set constructors below), so this always
// terminates.
func (p *Parser) recoverUntil(recovery kindSet) {
	var skipped []token.Token
	for !recovery.has(p.lookahead.Kind) {
		skipped = append(skipped, p.advance())
	}
	if p.errors != nil {
		p.errors.Resume(skipped, p.lookahead)
	}
}

func (p *Parser) onProduction(lhs string, rhs ...string) {
	if p.productions != nil {
		p.productions.Add(lhs, rhs)
	}
}

// withEOF guarantees a recovery set always contains EOF, so a caller
// skipping tokens in search of it can never loop forever.
func withEOF(ks ...token.Kind) kindSet {
	return setOf(append(ks, token.EOF)...)
}

// --- prog --------------------------------------------------------------
//
// prog -> class_list func_list 'main' func_body

func (p *Parser) parseProg() *ast.Node {
	root := ast.New(ast.Prog, ast.New(ast.ClassList), ast.New(ast.FuncList), ast.New(ast.Main))
	classes, funcs, main := root.Child(0), root.Child(1), root.Child(2)

	for p.lookahead.Kind == token.Class {
		classes.Append(p.parseClassDecl())
	}
	for p.lookahead.Kind == token.Ident {
		funcs.Append(p.parseFuncDef())
	}
	if !p.match(token.Main) {
		p.recoverUntil(withEOF(token.Do, token.Local))
	}
	mainTok := p.current
	main.Token = &mainTok
	p.parseFuncBodyInto(main)

	p.onProduction("prog", "classList", "funcList", "'main'", "funcBody")
	return root
}

// --- classDecl -----------------------------------------------------------
//
// classDecl -> 'class' 'id' ('inherits' 'id' (',' 'id')*)? '{' (visibility memberDecl)* '}' ';'

func (p *Parser) parseClassDecl() *ast.Node {
	p.match(token.Class)
	p.match(token.Ident)
	nameTok := p.current

	inherits := ast.New(ast.InherList)
	if p.lookahead.Kind == token.Inherits {
		p.advance()
		for {
			p.match(token.Ident)
			inherits.Append(ast.NewLeaf(ast.Ident, p.current))
			if p.lookahead.Kind != token.Comma {
				break
			}
			p.advance()
		}
	}

	if !p.match(token.OpenCbr) {
		p.recoverUntil(withEOF(token.Public, token.Private, token.CloseCbr))
	}

	members := ast.New(ast.MemberList)
	for p.lookahead.Kind == token.Public || p.lookahead.Kind == token.Private {
		members.Append(p.parseMemberDecl())
	}

	if !p.match(token.CloseCbr) {
		p.recoverUntil(withEOF(token.Semi, token.Class, token.Ident, token.Main))
	}
	p.match(token.Semi)

	p.onProduction("classDecl", "'class'", "'id'", "opt-classDecl2", "'{'", "rept-classDecl4", "'}'", "';'")
	return ast.New(ast.ClassDecl, ast.NewLeaf(ast.Ident, nameTok), inherits, members)
}

// memberDecl -> visibility (varDecl | funcDecl)

func (p *Parser) parseMemberDecl() *ast.Node {
	visTok := p.current
	if p.lookahead.Kind == token.Public {
		p.advance()
		visTok = p.current
	} else {
		p.match(token.Private)
		visTok = p.current
	}
	visibility := ast.NewLeaf(ast.Visibility, visTok)

	var decl *ast.Node
	switch {
	case p.lookahead.Kind == token.Integer || p.lookahead.Kind == token.Float:
		decl = p.parseVarDecl()
		p.onProduction("memberDecl", "varDecl")
	case p.lookahead.Kind == token.Ident:
		p.advance()
		idTok := p.current
		if p.lookahead.Kind == token.OpenPar {
			decl = p.parseFuncDeclTail(idTok)
			p.onProduction("memberDecl", "funcDecl")
		} else {
			p.match(token.Ident)
			decl = p.parseVarDeclTail(ast.NewLeaf(ast.TypeRef, idTok))
			p.onProduction("memberDecl", "varDecl")
		}
	default:
		p.onPanic(token.Integer, token.Float, token.Ident)
		p.recoverUntil(withEOF(token.Public, token.Private, token.CloseCbr))
		decl = ast.New(ast.Epsilon)
	}

	return ast.New(ast.MemberDecl, visibility, decl)
}

// --- declarations ----------------------------------------------------------

// varDecl -> type 'id' arraySize* ';'

func (p *Parser) parseVarDecl() *ast.Node {
	typ := p.parseType()
	p.match(token.Ident)
	return p.parseVarDeclTail(typ)
}

// parseVarDeclTail continues a var_decl once its type and id have both
// already been consumed (member_decl's class-typed-field branch shares
// this tail after disambiguating against func_decl on the open-paren
// lookahead).
func (p *Parser) parseVarDeclTail(typ *ast.Node) *ast.Node {
	idTok := p.current
	dims := ast.New(ast.DimList)
	for p.lookahead.Kind == token.OpenSbr {
		dims.Append(p.parseArraySize())
	}
	p.match(token.Semi)
	p.onProduction("varDecl", "type", "'id'", "rept-varDecl2", "';'")
	return ast.New(ast.VarDecl, typ, ast.NewLeaf(ast.Ident, idTok), dims)
}

// funcDecl -> 'id' '(' fParams ')' ':' (type | 'void') ';'

func (p *Parser) parseFuncDeclTail(idTok token.Token) *ast.Node {
	p.advance() // '('
	params := ast.New(ast.ParamList)
	p.parseFParams(params)
	p.match(token.ClosePar)
	p.match(token.Colon)

	ret := p.parseReturnType()
	p.match(token.Semi)
	p.onProduction("funcDecl", "'id'", "'('", "fParams", "')'", "':'", "type", "';'")
	return ast.New(ast.FuncDecl, ast.NewLeaf(ast.Ident, idTok), params, ret)
}

func (p *Parser) parseReturnType() *ast.Node {
	if p.lookahead.Kind == token.Void {
		p.advance()
		return ast.NewLeaf(ast.TypeRef, p.current)
	}
	if p.atType() {
		return p.parseType()
	}
	p.onPanic(token.Void, token.Integer, token.Float, token.Ident)
	p.recoverUntil(withEOF(token.Semi, token.Do, token.Local))
	return ast.New(ast.Epsilon)
}

// type -> 'integer' | 'float' | 'id'

func (p *Parser) atType() bool {
	switch p.lookahead.Kind {
	case token.Integer, token.Float, token.Ident:
		return true
	}
	return false
}

func (p *Parser) parseType() *ast.Node {
	switch p.lookahead.Kind {
	case token.Integer:
		p.advance()
		p.onProduction("type", "'integer'")
	case token.Float:
		p.advance()
		p.onProduction("type", "'float'")
	case token.Ident:
		p.advance()
		p.onProduction("type", "'id'")
	default:
		p.onPanic(token.Integer, token.Float, token.Ident)
		return ast.New(ast.Epsilon)
	}
	return ast.NewLeaf(ast.TypeRef, p.current)
}

// arraySize -> '[' integer_literal ']' | '[' ']'

func (p *Parser) parseArraySize() *ast.Node {
	p.advance() // '['
	if p.lookahead.Kind == token.IntegerLit {
		p.advance()
		tok := p.current
		p.match(token.CloseSbr)
		p.onProduction("arraySize", "'['", "intNum", "']'")
		return ast.NewLeaf(ast.IntLit, tok)
	}
	p.match(token.CloseSbr)
	p.onProduction("arraySize", "'['", "']'")
	return ast.New(ast.Epsilon)
}

// fParams -> (type 'id' arraySize* (',' type 'id' arraySize*)*)?

func (p *Parser) parseFParams(params *ast.Node) {
	if !p.atType() {
		p.onProduction("fParams", EpsilonSymbol)
		return
	}
	for {
		typ := p.parseType()
		p.match(token.Ident)
		idTok := p.current
		dims := ast.New(ast.DimList)
		for p.lookahead.Kind == token.OpenSbr {
			dims.Append(p.parseArraySize())
		}
		params.Append(ast.New(ast.FuncParam, typ, ast.NewLeaf(ast.Ident, idTok), dims))
		if p.lookahead.Kind != token.Comma {
			break
		}
		p.advance()
	}
	p.onProduction("fParams", "type", "'id'", "rept-fParams2", "rept-fParams3")
}

// --- funcDef / funcHead / funcBody ------------------------------------------

// funcDef -> funcHead funcBody ';'

func (p *Parser) parseFuncDef() *ast.Node {
	fn := ast.New(ast.FuncDef)
	p.parseFuncHeadInto(fn)
	p.parseFuncBodyInto(fn)
	p.match(token.Semi)
	p.onProduction("funcDef", "funcHead", "funcBody", "';'")
	return fn
}

// funcHead -> 'id' ('::' 'id')? '(' fParams ')' ':' (type | 'void')
//
// Appends, in order: scope_qualifier (leaf, token nil if unscoped), id,
// param_list, type.
func (p *Parser) parseFuncHeadInto(fn *ast.Node) {
	p.match(token.Ident)
	firstID := p.current

	var scopeTok *token.Token
	nameTok := firstID
	if p.lookahead.Kind == token.Dcolon {
		p.advance()
		t := firstID
		scopeTok = &t
		p.match(token.Ident)
		nameTok = p.current
		p.onProduction("opt-funcHead0", "'id'", "'sr'")
	} else {
		p.onProduction("opt-funcHead0", EpsilonSymbol)
	}

	fn.Append(ast.NewOptLeaf(ast.ScopeQualifier, scopeTok))
	fn.Append(ast.NewLeaf(ast.Ident, nameTok))

	if !p.match(token.OpenPar) {
		p.recoverUntil(withEOF(token.ClosePar))
	}
	params := ast.New(ast.ParamList)
	p.parseFParams(params)
	fn.Append(params)
	p.match(token.ClosePar)
	p.match(token.Colon)

	fn.Append(p.parseReturnType())
	p.onProduction("funcHead", "opt-funcHead0", "'id'", "'('", "fParams", "')'", "':'", "type")
}

// funcBody -> ('local' varDecl*)? 'do' statement* 'end'
//
// Appends, in order: local_list, stat_block.
func (p *Parser) parseFuncBodyInto(container *ast.Node) {
	locals := ast.New(ast.LocalList)
	if p.lookahead.Kind == token.Local {
		p.advance()
		for p.atType() {
			locals.Append(p.parseVarDecl())
		}
		p.onProduction("opt-funcBody0", "'local'", "rept-opt-funcBody01")
	} else {
		p.onProduction("opt-funcBody0", EpsilonSymbol)
	}
	container.Append(locals)

	if !p.match(token.Do) {
		p.recoverUntil(withEOF(token.End))
	}
	stats := ast.New(ast.StatBlock)
	for p.atStatement() {
		stats.Append(p.parseStatement())
	}
	container.Append(stats)
	p.match(token.End)
	p.onProduction("funcBody", "opt-funcBody0", "'do'", "rept-funcBody2", "'end'")
}

// --- statements --------------------------------------------------------

func (p *Parser) atStatement() bool {
	switch p.lookahead.Kind {
	case token.Ident, token.If, token.While, token.Read, token.Write, token.Return:
		return true
	}
	return false
}

// statBlock -> statement | 'do' statement* 'end' | epsilon

func (p *Parser) parseStatBlock() *ast.Node {
	if p.atStatement() {
		return ast.New(ast.StatBlock, p.parseStatement())
	}
	if p.lookahead.Kind == token.Do {
		p.advance()
		block := ast.New(ast.StatBlock)
		for p.atStatement() {
			block.Append(p.parseStatement())
		}
		p.match(token.End)
		return block
	}
	return ast.New(ast.StatBlock)
}

func (p *Parser) parseStatement() *ast.Node {
	switch p.lookahead.Kind {
	case token.Ident:
		return p.parseVarOrCallStatement()
	case token.If:
		return p.parseIfStatement()
	case token.While:
		return p.parseWhileStatement()
	case token.Read:
		return p.parseReadStatement()
	case token.Write:
		return p.parseWriteStatement()
	case token.Return:
		return p.parseReturnStatement()
	default:
		p.onPanic(token.Ident, token.If, token.While, token.Read, token.Write, token.Return)
		p.recoverUntil(withEOF(token.Semi, token.End, token.Else))
		return ast.New(ast.Epsilon)
	}
}

// statement -> variable '=' expr ';' | functionCall ';'

func (p *Parser) parseVarOrCallStatement() *ast.Node {
	chain := ast.New(ast.Var)
	ok := p.parseChain(chain, true, true)
	if !ok {
		return ast.New(ast.Epsilon)
	}
	last := chain.Child(len(chain.Children) - 1)

	if last.Kind == ast.DataMember && p.lookahead.Kind == token.Assign {
		assignTok := p.lookahead
		p.advance()
		rhs := p.parseExpr()
		p.match(token.Semi)
		p.onProduction("statement", "assignStat", "';'")
		return ast.New(ast.AssignStat, chain, rhs).WithToken(assignTok)
	}
	if last.Kind == ast.FCall && p.lookahead.Kind == token.Semi {
		p.advance()
		p.onProduction("statement", "functionCall", "';'")
		stat := ast.New(ast.FCallStat, chain.Children...)
		if idLeaf := last.Child(0); idLeaf != nil {
			stat.Token = idLeaf.Token
		}
		return stat
	}

	expected := token.Semi
	if last.Kind == ast.DataMember {
		expected = token.Assign
	}
	p.onPanic(expected)
	p.recoverUntil(withEOF(token.Semi, token.End, token.Else))
	return ast.New(ast.Epsilon)
}

func (p *Parser) parseIfStatement() *ast.Node {
	ifTok := p.lookahead
	p.advance()
	p.match(token.OpenPar)
	rel := p.parseRelExpr()
	p.match(token.ClosePar)
	p.match(token.Then)
	then := p.parseStatBlock()
	p.match(token.Else)
	els := p.parseStatBlock()
	p.match(token.Semi)
	p.onProduction("statement", "'if'", "'('", "relExpr", "')'", "'then'", "statBlock", "'else'", "statBlock", "';'")
	return ast.New(ast.IfStat, rel, then, els).WithToken(ifTok)
}

func (p *Parser) parseWhileStatement() *ast.Node {
	whileTok := p.lookahead
	p.advance()
	p.match(token.OpenPar)
	rel := p.parseRelExpr()
	p.match(token.ClosePar)
	body := p.parseStatBlock()
	p.match(token.Semi)
	p.onProduction("statement", "'while'", "'('", "relExpr", "')'", "statBlock", "';'")
	return ast.New(ast.WhileStat, rel, body).WithToken(whileTok)
}

func (p *Parser) parseReadStatement() *ast.Node {
	readTok := p.lookahead
	p.advance()
	p.match(token.OpenPar)
	chain := ast.New(ast.Var)
	p.parseChain(chain, true, false)
	p.match(token.ClosePar)
	p.match(token.Semi)
	p.onProduction("statement", "'read'", "'('", "variable", "')'", "';'")
	return ast.New(ast.ReadStat, chain).WithToken(readTok)
}

func (p *Parser) parseWriteStatement() *ast.Node {
	writeTok := p.lookahead
	p.advance()
	p.match(token.OpenPar)
	expr := p.parseExpr()
	p.match(token.ClosePar)
	p.match(token.Semi)
	p.onProduction("statement", "'write'", "'('", "expr", "')'", "';'")
	return ast.New(ast.WriteStat, expr).WithToken(writeTok)
}

func (p *Parser) parseReturnStatement() *ast.Node {
	returnTok := p.lookahead
	p.advance()
	p.match(token.OpenPar)
	expr := p.parseExpr()
	p.match(token.ClosePar)
	p.match(token.Semi)
	p.onProduction("statement", "'return'", "'('", "expr", "')'", "';'")
	return ast.New(ast.ReturnStat, expr).WithToken(returnTok)
}

// --- expressions -------------------------------------------------------

// expr -> arithExpr (relOp arithExpr)?
func (p *Parser) parseExpr() *ast.Node {
	left := p.parseArithExpr()
	if op, ok := p.atRelOp(); ok {
		p.advance()
		right := p.parseArithExpr()
		p.onProduction("relExpr", "arithExpr", "relOp", "arithExpr")
		p.onProduction("expr", "relExpr")
		return ast.New(ast.RelExpr, left, right).WithToken(op)
	}
	p.onProduction("expr", "arithExpr")
	return left
}

// relExpr -> arithExpr relOp arithExpr (mandatory operator: if/while predicate)
func (p *Parser) parseRelExpr() *ast.Node {
	left := p.parseArithExpr()
	op, ok := p.atRelOp()
	if !ok {
		p.onPanic(token.Eq, token.Neq, token.Lt, token.Gt, token.Lte, token.Gte)
		p.recoverUntil(withEOF(token.ClosePar))
		return ast.New(ast.RelExpr, left, ast.New(ast.Epsilon))
	}
	p.advance()
	right := p.parseArithExpr()
	p.onProduction("relExpr", "arithExpr", "relOp", "arithExpr")
	return ast.New(ast.RelExpr, left, right).WithToken(op)
}

func (p *Parser) atRelOp() (token.Token, bool) {
	switch p.lookahead.Kind {
	case token.Eq, token.Neq, token.Lt, token.Gt, token.Lte, token.Gte:
		return p.lookahead, true
	}
	return token.Token{}, false
}

// arithExpr -> term ((addOp | 'or') term)*, left-associative.
func (p *Parser) parseArithExpr() *ast.Node {
	left := p.parseTerm()
	for p.atAddOp() {
		op := p.lookahead
		p.advance()
		right := p.parseTerm()
		p.onProduction("addOp", opLabel(op.Kind))
		left = ast.New(ast.AddExpr, left, right).WithToken(op)
	}
	p.onProduction("arithExpr", "term", "rightrec-arithExpr")
	return left
}

func (p *Parser) atAddOp() bool {
	switch p.lookahead.Kind {
	case token.Plus, token.Minus, token.Or:
		return true
	}
	return false
}

// term -> factor ((multOp) factor)*, left-associative.
func (p *Parser) parseTerm() *ast.Node {
	left := p.parseFactor()
	for p.atMultOp() {
		op := p.lookahead
		p.advance()
		right := p.parseFactor()
		p.onProduction("multOp", opLabel(op.Kind))
		left = ast.New(ast.MultExpr, left, right).WithToken(op)
	}
	p.onProduction("term", "factor", "rightrec-term")
	return left
}

func (p *Parser) atMultOp() bool {
	switch p.lookahead.Kind {
	case token.Mult, token.Div, token.And:
		return true
	}
	return false
}

// factor -> variable | functionCall | intNum | floatNum | '(' arithExpr ')'
//         | 'not' factor | sign factor
func (p *Parser) parseFactor() *ast.Node {
	switch p.lookahead.Kind {
	case token.Ident:
		chain := ast.New(ast.Var)
		p.parseChain(chain, true, true)
		last := chain.Child(len(chain.Children) - 1)
		if last != nil && last.Kind == ast.FCall {
			p.onProduction("factor", "functionCall")
		} else {
			p.onProduction("factor", "variable")
		}
		return chain
	case token.IntegerLit:
		p.advance()
		p.onProduction("factor", "'intNum'")
		return ast.NewLeaf(ast.IntLit, p.current)
	case token.FloatLit:
		p.advance()
		p.onProduction("factor", "'floatNum'")
		return ast.NewLeaf(ast.FloatLit, p.current)
	case token.OpenPar:
		p.advance()
		inner := p.parseArithExpr()
		p.match(token.ClosePar)
		p.onProduction("factor", "'('", "arithExpr", "')'")
		return inner
	case token.Not:
		notTok := p.lookahead
		p.advance()
		operand := p.parseFactor()
		p.onProduction("factor", "'not'", "factor")
		return ast.New(ast.Not, operand).WithToken(notTok)
	case token.Plus, token.Minus:
		signTok := p.lookahead
		p.advance()
		operand := p.parseFactor()
		p.onProduction("factor", "sign", "factor")
		return ast.New(ast.Sign, operand).WithToken(signTok)
	default:
		p.onPanic(token.Ident, token.IntegerLit, token.FloatLit, token.OpenPar, token.Not, token.Plus, token.Minus)
		p.recoverUntil(withEOF(token.Semi, token.ClosePar, token.CloseSbr, token.Comma))
		return ast.New(ast.Epsilon)
	}
}

// --- id chains: variable / functionCall -------------------------------------

// parseChain parses the grammar's shared left-factored prefix:
//
//	chain    -> segment ('.' segment)*
//	segment  -> 'id' ( '(' aParams ')' | ('[' arithExpr ']')* )
//
// appending a DataMember or FCall child per segment, in source order, to
// list (a Var-kind node). acceptVar/acceptCall report whether the final
// segment is allowed to be a bare data member or a call respectively;
// the caller (assignment LHS, a read() argument, an expression
// statement, a factor) decides which shapes are legal for it to end on.
// Reports false (and leaves a syntax error recorded) if the chain
// couldn't even start or its final segment doesn't match what the
// caller requires.
func (p *Parser) parseChain(list *ast.Node, acceptVar, acceptCall bool) bool {
	for {
		if !p.match(token.Ident) {
			p.recoverUntil(withEOF(token.Semi, token.ClosePar))
			return false
		}
		idTok := p.current

		if p.lookahead.Kind == token.OpenPar {
			p.advance()
			args := ast.New(ast.ArgList)
			p.parseAParams(args)
			p.match(token.ClosePar)
			call := ast.New(ast.FCall, ast.NewLeaf(ast.Ident, idTok), args)
			list.Append(call)
		} else {
			idx := ast.New(ast.IndexList)
			for p.lookahead.Kind == token.OpenSbr {
				p.advance()
				idx.Append(p.parseArithExpr())
				p.match(token.CloseSbr)
			}
			dm := ast.New(ast.DataMember, ast.NewLeaf(ast.Ident, idTok), idx)
			list.Append(dm)
		}

		if p.lookahead.Kind == token.Dot {
			p.advance()
			continue
		}
		break
	}

	last := list.Child(len(list.Children) - 1)
	switch {
	case last.Kind == ast.DataMember && acceptVar:
		p.onProduction("variable", "rept-idnest", "'id'", "rept-indice")
		return true
	case last.Kind == ast.FCall && acceptCall:
		p.onProduction("functionCall", "rept-idnest", "'id'", "'('", "aParams", "')'")
		return true
	default:
		expect := followFunctionCall
		if acceptVar {
			expect = followVariable
		}
		p.onPanicSet(setOf(token.Dot).union(expect))
		p.recoverUntil(withEOF(token.Semi, token.ClosePar))
		return false
	}
}

// aParams -> (expr (',' expr)*)?
func (p *Parser) parseAParams(args *ast.Node) {
	if !p.atExprStart() {
		p.onProduction("aParams", EpsilonSymbol)
		return
	}
	args.Append(p.parseExpr())
	for p.lookahead.Kind == token.Comma {
		p.advance()
		args.Append(p.parseExpr())
	}
	p.onProduction("aParams", "expr", "rept-aParams1")
}

func (p *Parser) atExprStart() bool {
	switch p.lookahead.Kind {
	case token.Ident, token.IntegerLit, token.FloatLit, token.OpenPar, token.Not, token.Plus, token.Minus:
		return true
	}
	return false
}

func (p *Parser) onPanicSet(expected kindSet) { p.onPanic(expected.keys()...) }

func opLabel(k token.Kind) string {
	switch k {
	case token.Plus:
		return "'+'"
	case token.Minus:
		return "'-'"
	case token.Or:
		return "'or'"
	case token.Mult:
		return "'*'"
	case token.Div:
		return "'/'"
	case token.And:
		return "'and'"
	}
	return k.String()
}
