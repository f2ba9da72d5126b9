package sema

import (
	"oolang.dev/compiler/pkg/ast"
	"oolang.dev/compiler/pkg/symtab"
	"oolang.dev/compiler/pkg/token"
)

// builder is Visitor 1 (table builder): a bottom-up, single pass over
// the AST that synthesizes Records and SymbolTables and attaches them
// to the declaration-shaped nodes that own them. Grounded on
// original_source/sem/vis/table_builder.py's _visit_class_decl/
// _visit_func_def/_visit_var_decl/_visit_func_param family.
type builder struct {
	collector
	ctx *symtab.Context
}

// BuildTables walks root (a Prog node) and populates ctx's globals table
// and every class/function's nested table. Class declarations are
// processed in two sweeps — first every class's table and inheritance
// list, then every class's members — so a class_decl that inherits from
// or holds a data member of a class declared later in the same source
// file still resolves (symtab.Context.Intern never requires forward
// declaration order).
func BuildTables(root *ast.Node, ctx *symtab.Context) Diagnostics {
	b := &builder{ctx: ctx}
	b.prog(root)
	return b.diags
}

func (b *builder) prog(n *ast.Node) {
	classes, funcs, main := n.Child(0), n.Child(1), n.Child(2)

	for _, cls := range classes.Children {
		b.declareClassStub(cls)
	}
	for _, cls := range classes.Children {
		b.buildClassMembers(cls)
	}
	for _, fn := range funcs.Children {
		b.funcDef(fn)
	}
	b.main(main)

	b.ctx.Globals.Insert(main.Record)
}

func (b *builder) declareClassStub(n *ast.Node) {
	nameTok := n.Child(0).Token
	name := nameTok.Lexeme

	table := symtab.NewSymbolTable(name)
	for _, p := range n.Child(1).Children {
		table.Inherits = append(table.Inherits, b.ctx.Intern(p.Token.Lexeme))
	}

	bt := b.ctx.Intern(name)
	bt.SetTable(table)

	rec := &symtab.Record{Name: name, Kind: symtab.ClassRecord, Location: nameTok.Location, Table: table}
	n.Record = rec
	b.ctx.Globals.Insert(rec)
}

func (b *builder) buildClassMembers(n *ast.Node) {
	table := n.Record.Table
	for _, m := range n.Child(2).Children {
		if rec := b.memberDecl(m); rec != nil {
			table.Insert(rec)
		}
	}
}

func (b *builder) memberDecl(n *ast.Node) *symtab.Record {
	visTok := n.Child(0).Token
	decl := n.Child(1)

	var rec *symtab.Record
	switch decl.Kind {
	case ast.VarDecl:
		rec = b.varDecl(decl, symtab.DataRecord)
	case ast.FuncDecl:
		rec = b.funcDecl(decl)
	default:
		return nil
	}
	if rec == nil {
		return nil
	}

	rec.Visibility = symtab.Public
	if visTok != nil && visTok.Kind == token.Private {
		rec.Visibility = symtab.Private
	}
	n.Record = rec
	return rec
}

// varDecl builds a Record for a var_decl node (type, id, dim_list),
// tagged with the RecordKind the caller already knows from context —
// data member for a class's member_list, local for a function's
// local_list.
func (b *builder) varDecl(n *ast.Node, kind symtab.RecordKind) *symtab.Record {
	typeTok := n.Child(0).Token
	nameTok := n.Child(1).Token
	rec := &symtab.Record{
		Name:     nameTok.Lexeme,
		Type:     b.symbolType(typeTok, b.dims(n.Child(2))),
		Kind:     kind,
		Location: nameTok.Location,
	}
	n.Record = rec
	return rec
}

func (b *builder) funcParam(n *ast.Node) *symtab.Record {
	typeTok := n.Child(0).Token
	nameTok := n.Child(1).Token
	rec := &symtab.Record{
		Name:     nameTok.Lexeme,
		Type:     b.symbolType(typeTok, b.dims(n.Child(2))),
		Kind:     symtab.ParamRecord,
		Location: nameTok.Location,
	}
	n.Record = rec
	return rec
}

// funcDecl builds a member function's declaration record (func_decl:
// id, param_list, type), not yet bound to a definition table — that
// binding happens when the matching func_def is visited.
func (b *builder) funcDecl(n *ast.Node) *symtab.Record {
	nameTok := n.Child(0).Token
	params := b.params(n.Child(1))
	retType := b.symbolType(n.Child(2).Token, nil)
	rec := &symtab.Record{
		Name:       nameTok.Lexeme,
		Kind:       symtab.FunctionRecord,
		ReturnType: &retType,
		Params:     params,
		Location:   nameTok.Location,
	}
	n.Record = rec
	return rec
}

func (b *builder) params(list *ast.Node) []*symtab.Record {
	out := make([]*symtab.Record, 0, len(list.Children))
	for _, p := range list.Children {
		out = append(out, b.funcParam(p))
	}
	return out
}

func (b *builder) dims(list *ast.Node) []*token.Token {
	out := make([]*token.Token, 0, len(list.Children))
	for _, c := range list.Children {
		if c.Kind == ast.Epsilon {
			out = append(out, nil)
			continue
		}
		out = append(out, c.Token)
	}
	return out
}

func (b *builder) symbolType(typeTok *token.Token, dims []*token.Token) symtab.SymbolType {
	if typeTok == nil {
		return symtab.SymbolType{}
	}
	return symtab.SymbolType{Base: b.ctx.Intern(typeTok.Lexeme), Dims: dims}
}

// funcDef builds a function_def's own table (params then locals) and
// either binds it to the matching class-scoped declaration (scope
// qualifier present) or inserts a fresh free-function record into
// globals.
func (b *builder) funcDef(n *ast.Node) {
	scopeTok := n.Child(0).Token
	nameTok := n.Child(1).Token
	params := b.params(n.Child(2))
	retType := b.symbolType(n.Child(3).Token, nil)

	table := symtab.NewSymbolTable(nameTok.Lexeme)
	for _, p := range params {
		table.Insert(p)
	}
	for _, loc := range n.Child(4).Children {
		table.Insert(b.varDecl(loc, symtab.LocalRecord))
	}

	rec := &symtab.Record{
		Name:       nameTok.Lexeme,
		Kind:       symtab.FunctionRecord,
		ReturnType: &retType,
		Params:     params,
		Table:      table,
		Location:   nameTok.Location,
	}
	n.Record = rec

	if scopeTok == nil {
		b.ctx.Globals.Insert(rec)
		return
	}

	className := scopeTok.Lexeme
	classBT, ok := b.ctx.Lookup(className)
	if !ok || classBT.Table() == nil {
		b.errorf(scopeTok.Location, `Class "%s" has not been declared`, className)
		return
	}
	classTable := classBT.Table()

	candidates, _ := classTable.SearchMember(nameTok.Lexeme, symtab.Private)
	var decl *symtab.Record
	for _, c := range candidates {
		if c.Kind == symtab.FunctionRecord && symtab.ParamTypesEqual(c.Params, params) &&
			c.ReturnType != nil && c.ReturnType.Equal(retType) {
			decl = c
			break
		}
	}
	if decl == nil {
		b.errorf(nameTok.Location, `Member function "%s::%s" is defined but has not been declared`, className, nameTok.Lexeme)
		return
	}

	decl.Table = table
	table.Name = className + "::" + table.Name
	table.Inherits = []*symtab.BaseType{classBT}
	n.Record = decl
}

func (b *builder) main(n *ast.Node) {
	table := symtab.NewSymbolTable("main")
	table.IsMain = true
	for _, loc := range n.Child(0).Children {
		table.Insert(b.varDecl(loc, symtab.LocalRecord))
	}
	voidType := symtab.SymbolType{Base: b.ctx.Intern("void")}
	n.Record = &symtab.Record{Name: "main", Kind: symtab.FunctionRecord, ReturnType: &voidType, Table: table}
}
