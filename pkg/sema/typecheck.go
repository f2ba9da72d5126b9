package sema

import (
	"fmt"

	"oolang.dev/compiler/pkg/ast"
	"oolang.dev/compiler/pkg/symtab"
	"oolang.dev/compiler/pkg/token"
)

// typeChecker is Visitor 3 (type check): resolves the type of every
// expression, enforces operand/assignment/return/index/call-argument
// type compatibility, and allocates the temporary records the code
// generator needs to hold an expression's intermediate value. Grounded
// on original_source/sem/vis/type_check.py's TypeExtractor (chain/
// expression type resolution) and TypeCheck (statement-level
// enforcement) visitors, folded into one pass here since Go's
// switch-on-Kind dispatch makes maintaining them as two separate tree
// walks pure overhead.
type typeChecker struct {
	collector
	ctx         *symtab.Context
	tempCounter int
}

// funcCtx is the per-function environment threaded through statement
// and expression checking: the table bodies resolve bare names
// against (for a method, that table inherits the enclosing class, so
// sibling members resolve unqualified) and the function's declared
// return type.
type funcCtx struct {
	table   *symtab.SymbolTable
	retType symtab.SymbolType
}

// CheckTypes runs the type-check pass over every function body in the
// program, including main's.
func CheckTypes(root *ast.Node, ctx *symtab.Context) Diagnostics {
	t := &typeChecker{ctx: ctx}
	funcs, main := root.Child(1), root.Child(2)

	for _, fn := range funcs.Children {
		t.funcDef(fn)
	}

	mainRec := main.Record
	t.block(main.Child(1), funcCtx{table: mainRec.Table, retType: *mainRec.ReturnType})

	return t.diags
}

func (t *typeChecker) funcDef(n *ast.Node) {
	rec := n.Record
	if rec == nil || rec.Table == nil {
		return
	}
	t.block(n.Child(5), funcCtx{table: rec.Table, retType: *rec.ReturnType})
}

func (t *typeChecker) block(block *ast.Node, fc funcCtx) {
	for _, stat := range block.Children {
		t.statement(stat, fc)
	}
}

func (t *typeChecker) statement(n *ast.Node, fc funcCtx) {
	switch n.Kind {
	case ast.AssignStat:
		lhs := t.chainType(n.Child(0), fc)
		rhs := t.exprType(n.Child(1), fc)
		if lhs.Base != nil && rhs.Base != nil && !lhs.Equal(rhs) {
			t.errorf(n.Token.Location, `cannot assign a value of type "%s" to a variable of type "%s"`, typeName(rhs), typeName(lhs))
		}
	case ast.FCallStat:
		t.segments(n.Children, fc)
	case ast.IfStat:
		t.expectBooleanRel(n.Child(0), fc)
		t.block(n.Child(1), fc)
		t.block(n.Child(2), fc)
	case ast.WhileStat:
		t.expectBooleanRel(n.Child(0), fc)
		t.block(n.Child(1), fc)
	case ast.ReadStat:
		t.chainType(n.Child(0), fc)
	case ast.WriteStat:
		t.exprType(n.Child(0), fc)
	case ast.ReturnStat:
		got := t.exprType(n.Child(0), fc)
		if got.Base != nil && fc.retType.Base != nil && !got.Equal(fc.retType) {
			t.errorf(n.Token.Location, `returned type "%s" does not match the function's declared return type "%s"`, typeName(got), typeName(fc.retType))
		}
	}
}

// expectBooleanRel type-checks an if/while predicate, which the
// grammar already constrains to a relExpr (always boolean-typed), so
// this exists only to drive the recursion and keep the call sites
// reading as "check this guard" rather than "compute this type".
func (t *typeChecker) expectBooleanRel(rel *ast.Node, fc funcCtx) {
	t.exprType(rel, fc)
}

// --- expressions ---------------------------------------------------------

func (t *typeChecker) exprType(n *ast.Node, fc funcCtx) symtab.SymbolType {
	switch n.Kind {
	case ast.IntLit:
		return symtab.SymbolType{Base: t.base("integer")}
	case ast.FloatLit:
		return symtab.SymbolType{Base: t.base("float")}
	case ast.Var:
		return t.chainType(n, fc)
	case ast.RelExpr:
		return t.relExprType(n, fc)
	case ast.AddExpr, ast.MultExpr:
		return t.binaryType(n, fc)
	case ast.Not:
		operand := t.exprType(n.Child(0), fc)
		if operand.Base != nil && operand.Base.Name != "boolean" {
			t.errorf(location(n), `"not" requires a boolean operand, found "%s"`, typeName(operand))
		}
		return symtab.SymbolType{Base: t.base("boolean")}
	case ast.Sign:
		operand := t.exprType(n.Child(0), fc)
		t.signTemp(n, operand, fc)
		return operand
	case ast.Epsilon:
		return symtab.SymbolType{}
	default:
		return symtab.SymbolType{}
	}
}

func (t *typeChecker) relExprType(n *ast.Node, fc funcCtx) symtab.SymbolType {
	left := t.exprType(n.Child(0), fc)
	right := t.exprType(n.Child(1), fc)
	if left.Base != nil && right.Base != nil && !left.Equal(right) {
		t.errorf(n.Token.Location, `relational operands have incompatible types "%s" and "%s"`, typeName(left), typeName(right))
	}
	return symtab.SymbolType{Base: t.base("boolean")}
}

func (t *typeChecker) binaryType(n *ast.Node, fc funcCtx) symtab.SymbolType {
	left := t.exprType(n.Child(0), fc)
	right := t.exprType(n.Child(1), fc)
	if left.Base != nil && right.Base != nil && !left.Equal(right) {
		t.errorf(n.Token.Location, `operands of "%s" have incompatible types "%s" and "%s"`, n.Token.Lexeme, typeName(left), typeName(right))
	}

	switch n.Token.Kind {
	case token.Plus, token.Minus, token.Mult, token.Div:
		if left.Base != nil && left.Base.Name == "float" {
			t.errorf(n.Token.Location, "floating point arithmetic is not supported by code generation")
		}
		n.TempRecord = t.newTemp(fc.table, left)
	}
	return left
}

func (t *typeChecker) signTemp(n *ast.Node, st symtab.SymbolType, fc funcCtx) {
	n.TempRecord = t.newTemp(fc.table, st)
}

// --- chains (variable / functionCall) ------------------------------------

func (t *typeChecker) chainType(chain *ast.Node, fc funcCtx) symtab.SymbolType {
	return t.segments(chain.Children, fc)
}

// segments resolves a '.'-joined chain of data-member/call segments,
// the first against the enclosing scope (locals, then the enclosing
// class privately, then globals) and every later one as a public member
// lookup against the previous segment's own class type.
func (t *typeChecker) segments(segs []*ast.Node, fc funcCtx) symtab.SymbolType {
	var curType symtab.SymbolType
	first := true

	for _, seg := range segs {
		idLeaf := seg.Child(0)
		name := idLeaf.Token.Lexeme

		var recs []*symtab.Record
		var ok bool
		if first {
			recs, ok = fc.table.SearchInScope(name, t.ctx.Globals)
			first = false
		} else {
			if curType.Base == nil || curType.Base.Table() == nil {
				t.errorf(idLeaf.Token.Location, `"%s" is not a member of a known type`, name)
				return symtab.SymbolType{}
			}
			recs, ok = curType.Base.Table().SearchMember(name, symtab.Public)
		}
		if !ok || len(recs) == 0 {
			t.errorf(idLeaf.Token.Location, `"%s" has not been declared`, name)
			return symtab.SymbolType{}
		}

		if seg.Kind == ast.FCall {
			rec := t.resolveOverload(recs, seg.Child(1), fc)
			if rec == nil {
				t.errorf(idLeaf.Token.Location, `no matching overload of "%s" for the given arguments`, name)
				return symtab.SymbolType{}
			}
			seg.Record = rec
			curType = *rec.ReturnType
			seg.TempRecord = t.newTemp(fc.table, curType)
		} else {
			rec := recs[0]
			seg.Record = rec
			idx := seg.Child(1)
			curType = t.indexedType(rec.Type, idx, fc)
			if len(idx.Children) > 0 {
				// Array indexing needs a stack slot to hold the
				// run-time-computed displacement; codegen consults
				// this via seg.TempRecord, mirroring the dynamic
				// offset temp allocated for a call's return value.
				seg.TempRecord = t.newTemp(fc.table, symtab.SymbolType{Base: t.base("integer")})
			}
		}
	}
	return curType
}

// resolveOverload picks the candidate whose parameter types exactly
// match the call's argument types, type-checking every argument
// expression as a side effect (so a call's arguments are always
// checked even when no candidate matches).
func (t *typeChecker) resolveOverload(candidates []*symtab.Record, argList *ast.Node, fc funcCtx) *symtab.Record {
	argTypes := make([]symtab.SymbolType, len(argList.Children))
	for i, a := range argList.Children {
		argTypes[i] = t.exprType(a, fc)
	}
	for _, cand := range candidates {
		if cand.Kind != symtab.FunctionRecord || len(cand.Params) != len(argTypes) {
			continue
		}
		match := true
		for i, p := range cand.Params {
			if !p.Type.Equal(argTypes[i]) {
				match = false
				break
			}
		}
		if match {
			return cand
		}
	}
	return nil
}

// indexedType applies idx's subscripts to base, type-checking every
// index expression as integer-typed and peeling one dimension per
// subscript.
func (t *typeChecker) indexedType(base symtab.SymbolType, idx *ast.Node, fc funcCtx) symtab.SymbolType {
	for _, e := range idx.Children {
		it := t.exprType(e, fc)
		if it.Base != nil && it.Base.Name != "integer" {
			t.errorf(location(e), `array index must be of type "integer", found "%s"`, typeName(it))
		}
	}
	n := len(idx.Children)
	if n == 0 || n > len(base.Dims) {
		return base
	}
	return symtab.SymbolType{Base: base.Base, Dims: base.Dims[n:]}
}

// --- helpers ---------------------------------------------------------------

func (t *typeChecker) base(name string) *symtab.BaseType {
	bt, _ := t.ctx.Lookup(name)
	return bt
}

// newTemp allocates a fresh temporary record in table to hold an
// expression node's computed value, skipping void and boolean results:
// a boolean expression only ever drives a branch, so code generation
// never needs to materialize it to a stack slot.
func (t *typeChecker) newTemp(table *symtab.SymbolTable, st symtab.SymbolType) *symtab.Record {
	if st.Base == nil || st.Base.Name == "void" || st.Base.Name == "boolean" {
		return nil
	}
	t.tempCounter++
	rec := &symtab.Record{Name: fmt.Sprintf("_t%d", t.tempCounter), Type: st, Kind: symtab.TempRecord}
	table.Insert(rec)
	return rec
}

func typeName(st symtab.SymbolType) string {
	if st.Base == nil {
		return "unknown"
	}
	name := st.Base.Name
	for range st.Dims {
		name += "[]"
	}
	return name
}

// location finds a usable source location for a node that may not
// itself carry a token (a Var chain's location is whichever segment's
// identifier comes first).
func location(n *ast.Node) token.Location {
	if n.Token != nil {
		return n.Token.Location
	}
	for _, c := range n.Children {
		if c != nil {
			return location(c)
		}
	}
	return token.Location{}
}
