package symtab_test

import (
	"strconv"
	"testing"

	"oolang.dev/compiler/pkg/symtab"
	"oolang.dev/compiler/pkg/token"
)

func dimTok(n int) *token.Token {
	return &token.Token{Kind: token.IntegerLit, Lexeme: strconv.Itoa(n)}
}

func TestClassSizeIncludesInheritedFields(t *testing.T) {
	ctx := symtab.NewContext()
	integer := ctx.Intern("integer")

	base := symtab.NewSymbolTable("Base")
	base.Insert(&symtab.Record{Name: "x", Kind: symtab.DataRecord, Type: symtab.SymbolType{Base: integer}})
	baseType := ctx.Intern("Base")
	baseType.SetTable(base)

	derived := symtab.NewSymbolTable("Derived")
	derived.Inherits = []*symtab.BaseType{baseType}
	derived.Insert(&symtab.Record{Name: "y", Kind: symtab.DataRecord, Type: symtab.SymbolType{Base: integer}})

	if got, want := derived.Size(), 8; got != want {
		t.Errorf("Derived.Size() = %d, want %d (4 inherited + 4 own)", got, want)
	}
}

func TestSearchMemberPrefersLocalOverInherited(t *testing.T) {
	ctx := symtab.NewContext()
	integer := ctx.Intern("integer")

	base := symtab.NewSymbolTable("Base")
	base.Insert(&symtab.Record{Name: "x", Kind: symtab.DataRecord, Visibility: symtab.Public, Type: symtab.SymbolType{Base: integer}})
	baseType := ctx.Intern("Base")
	baseType.SetTable(base)

	derived := symtab.NewSymbolTable("Base::m")
	derived.IsFunction = true
	derived.Inherits = []*symtab.BaseType{baseType}
	local := &symtab.Record{Name: "x", Kind: symtab.LocalRecord, Type: symtab.SymbolType{Base: integer}}
	derived.Insert(local)

	recs, ok := derived.SearchMember("x", symtab.Private)
	if !ok || len(recs) != 1 || recs[0] != local {
		t.Fatalf("expected the local declaration to shadow the inherited one, got %v, %v", recs, ok)
	}
}

func TestSearchMemberRespectsVisibility(t *testing.T) {
	ctx := symtab.NewContext()
	integer := ctx.Intern("integer")

	base := symtab.NewSymbolTable("Base")
	base.Insert(&symtab.Record{Name: "secret", Kind: symtab.DataRecord, Visibility: symtab.Private, Type: symtab.SymbolType{Base: integer}})
	baseType := ctx.Intern("Base")
	baseType.SetTable(base)

	outsider := symtab.NewSymbolTable("SomewhereElse")
	outsider.Inherits = []*symtab.BaseType{baseType}

	if _, ok := outsider.SearchMember("secret", symtab.Public); ok {
		t.Errorf("expected private member to be invisible to public access")
	}

	method := symtab.NewSymbolTable("Base::reader")
	method.Inherits = []*symtab.BaseType{baseType}
	if _, ok := method.SearchMember("secret", symtab.Private); !ok {
		t.Errorf("expected a Base method to see Base's private member")
	}
}

func TestSearchInScopeFallsBackToGlobals(t *testing.T) {
	ctx := symtab.NewContext()
	integer := ctx.Intern("integer")
	fn := &symtab.Record{Name: "helper", Kind: symtab.FunctionRecord, Type: symtab.SymbolType{Base: integer}}
	ctx.Globals.Insert(fn)

	scope := symtab.NewSymbolTable("main")
	recs, ok := scope.SearchInScope("helper", ctx.Globals)
	if !ok || len(recs) != 1 || recs[0] != fn {
		t.Fatalf("expected SearchInScope to fall back to globals, got %v, %v", recs, ok)
	}
}

func TestMulForDimRowMajor(t *testing.T) {
	ctx := symtab.NewContext()
	integer := ctx.Intern("integer")

	typ := symtab.SymbolType{Base: integer, Dims: []*token.Token{dimTok(2), dimTok(3)}}
	if got, want := typ.Size(), 24; got != want {
		t.Errorf("Size() = %d, want %d", got, want)
	}
	if got, want := typ.MulForDim(0), 12; got != want {
		t.Errorf("MulForDim(0) = %d, want %d (3 * 4 bytes)", got, want)
	}
}
