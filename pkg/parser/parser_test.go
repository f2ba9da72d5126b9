package parser_test

import (
	"strings"
	"testing"

	"oolang.dev/compiler/pkg/ast"
	"oolang.dev/compiler/pkg/lexer"
	"oolang.dev/compiler/pkg/parser"
)

func parse(t *testing.T, src string) (*ast.Node, bool, *parser.Recorder) {
	t.Helper()
	rec := parser.NewRecorder()
	p := parser.New(lexer.New([]byte(src)))
	p.SetProductionHandler(rec)
	p.SetErrorHandler(rec)
	root, ok := p.Parse()
	return root, ok, rec
}

func TestEmptyProgram(t *testing.T) {
	root, ok, rec := parse(t, "main do end")
	if !ok {
		t.Fatalf("expected success, got errors:\n%s", rec.Errors())
	}
	if root.Kind != ast.Prog {
		t.Fatalf("root.Kind = %v, want Prog", root.Kind)
	}
	main := root.Child(2)
	if main == nil || main.Kind != ast.Main {
		t.Fatalf("expected a Main child, got %v", main)
	}
}

func TestFunctionDefAndCall(t *testing.T) {
	src := `
f(): void
do
	write(1);
end;

main
do
	f();
end
`
	root, ok, rec := parse(t, src)
	if !ok {
		t.Fatalf("expected success, got errors:\n%s", rec.Errors())
	}
	funcs := root.Child(1)
	if len(funcs.Children) != 1 {
		t.Fatalf("expected 1 func_def, got %d", len(funcs.Children))
	}
	fn := funcs.Child(0)
	if fn.Kind != ast.FuncDef {
		t.Fatalf("fn.Kind = %v, want FuncDef", fn.Kind)
	}
	name := fn.Child(1)
	if name.Token == nil || name.Token.Lexeme != "f" {
		t.Fatalf("fn name = %v, want 'f'", name.Token)
	}

	main := root.Child(2)
	stats := main.Child(1)
	if len(stats.Children) != 1 {
		t.Fatalf("expected 1 statement in main, got %d", len(stats.Children))
	}
	call := stats.Child(0)
	if call.Kind != ast.FCallStat {
		t.Fatalf("call.Kind = %v, want FCallStat", call.Kind)
	}
}

func TestClassDeclWithInheritanceAndMembers(t *testing.T) {
	src := `
class Base
{
};

class Derived inherits Base
{
	public integer x;
	private f(): integer;
};

Derived::f(): integer
do
	return(x);
end;

main
do
end
`
	root, ok, rec := parse(t, src)
	if !ok {
		t.Fatalf("expected success, got errors:\n%s", rec.Errors())
	}
	classes := root.Child(0)
	if len(classes.Children) != 2 {
		t.Fatalf("expected 2 class decls, got %d", len(classes.Children))
	}
	derived := classes.Child(1)
	if derived.Kind != ast.ClassDecl {
		t.Fatalf("derived.Kind = %v, want ClassDecl", derived.Kind)
	}
	inherits := derived.Child(1)
	if len(inherits.Children) != 1 || inherits.Child(0).Token.Lexeme != "Base" {
		t.Fatalf("expected inher_list [Base], got %v", inherits)
	}
	members := derived.Child(2)
	if len(members.Children) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members.Children))
	}
	if members.Child(0).Child(1).Kind != ast.VarDecl {
		t.Fatalf("expected first member to be a var_decl")
	}
	if members.Child(1).Child(1).Kind != ast.FuncDecl {
		t.Fatalf("expected second member to be a func_decl")
	}
}

func TestAssignStatementBuildsVariableChain(t *testing.T) {
	src := `
main
do
	a.b[1].c = 2;
end
`
	root, _, rec := parse(t, src)
	if rec.Failed() {
		t.Fatalf("unexpected errors:\n%s", rec.Errors())
	}
	stats := root.Child(2).Child(1)
	assign := stats.Child(0)
	if assign.Kind != ast.AssignStat {
		t.Fatalf("assign.Kind = %v, want AssignStat", assign.Kind)
	}
	chain := assign.Child(0)
	if chain.Kind != ast.Var {
		t.Fatalf("chain.Kind = %v, want Var", chain.Kind)
	}
	if len(chain.Children) != 3 {
		t.Fatalf("expected 3 chained segments (a, b[1], c), got %d", len(chain.Children))
	}
	for i, want := range []ast.Kind{ast.DataMember, ast.DataMember, ast.DataMember} {
		if chain.Child(i).Kind != want {
			t.Errorf("segment %d kind = %v, want %v", i, chain.Child(i).Kind, want)
		}
	}
	if len(chain.Child(1).Child(1).Children) != 1 {
		t.Fatalf("expected b's index_list to hold 1 index expr")
	}
}

func TestCallChainEndingInFunctionCall(t *testing.T) {
	src := `
main
do
	a.b.f(1, 2);
end
`
	root, ok, rec := parse(t, src)
	if !ok {
		t.Fatalf("expected success, got errors:\n%s", rec.Errors())
	}
	stats := root.Child(2).Child(1)
	call := stats.Child(0)
	if call.Kind != ast.FCallStat {
		t.Fatalf("call.Kind = %v, want FCallStat", call.Kind)
	}
	if len(call.Children) != 3 {
		t.Fatalf("expected 3 chained segments (a, b, f(..)), got %d", len(call.Children))
	}
	fcall := call.Child(2)
	if fcall.Kind != ast.FCall {
		t.Fatalf("last segment kind = %v, want FCall", fcall.Kind)
	}
	args := fcall.Child(1)
	if len(args.Children) != 2 {
		t.Fatalf("expected 2 args, got %d", len(args.Children))
	}
}

func TestArithExprIsLeftAssociative(t *testing.T) {
	src := `
main
do
	write(1 - 2 - 3);
end
`
	root, ok, rec := parse(t, src)
	if !ok {
		t.Fatalf("expected success, got errors:\n%s", rec.Errors())
	}
	stats := root.Child(2).Child(1)
	write := stats.Child(0)
	if write.Kind != ast.WriteStat {
		t.Fatalf("write.Kind = %v, want WriteStat", write.Kind)
	}
	top := write.Child(0)
	if top.Kind != ast.AddExpr || top.Token.Lexeme != "-" {
		t.Fatalf("top = %v %q, want AddExpr '-'", top.Kind, top.Token)
	}
	// (1 - 2) - 3: left child is itself an AddExpr, right child is the leaf 3.
	left := top.Child(0)
	right := top.Child(1)
	if left.Kind != ast.AddExpr {
		t.Fatalf("left.Kind = %v, want AddExpr (left-leaning tree)", left.Kind)
	}
	if right.Kind != ast.IntLit || right.Token.Lexeme != "3" {
		t.Fatalf("right = %v %q, want IntLit '3'", right.Kind, right.Token)
	}
	if left.Child(0).Token.Lexeme != "1" || left.Child(1).Token.Lexeme != "2" {
		t.Fatalf("expected (1 - 2) as the left subtree, got %q %q",
			left.Child(0).Token.Lexeme, left.Child(1).Token.Lexeme)
	}
}

func TestMultExprIsLeftAssociative(t *testing.T) {
	root, ok, rec := parse(t, "main do write(2 / 3 * 4); end")
	if !ok {
		t.Fatalf("expected success, got errors:\n%s", rec.Errors())
	}
	top := root.Child(2).Child(1).Child(0).Child(0)
	if top.Kind != ast.MultExpr || top.Token.Lexeme != "*" {
		t.Fatalf("top = %v %q, want MultExpr '*'", top.Kind, top.Token)
	}
	if top.Child(0).Kind != ast.MultExpr {
		t.Fatalf("left child should be the inner '2 / 3' MultExpr, got %v", top.Child(0).Kind)
	}
}

func TestIfStatementWithElse(t *testing.T) {
	src := `
main
do
	if (1 < 2) then do
		write(1);
	end else do
		write(2);
	end;
end
`
	root, ok, rec := parse(t, src)
	if !ok {
		t.Fatalf("expected success, got errors:\n%s", rec.Errors())
	}
	ifStat := root.Child(2).Child(1).Child(0)
	if ifStat.Kind != ast.IfStat {
		t.Fatalf("ifStat.Kind = %v, want IfStat", ifStat.Kind)
	}
	if ifStat.Child(0).Kind != ast.RelExpr {
		t.Fatalf("expected a RelExpr condition")
	}
	if len(ifStat.Child(1).Children) != 1 || len(ifStat.Child(2).Children) != 1 {
		t.Fatalf("expected both branches to hold exactly one statement")
	}
}

func TestMissingSemicolonIsForgiven(t *testing.T) {
	// No ';' after the write statement: the parser reports it but keeps
	// going, so the following statement still parses.
	src := `
main
do
	write(1)
	write(2);
end
`
	root, ok, rec := parse(t, src)
	if ok {
		t.Fatalf("expected overall failure due to the missing ';'")
	}
	if !rec.Failed() {
		t.Fatalf("expected a recorded syntax error")
	}
	stats := root.Child(2).Child(1)
	if len(stats.Children) != 2 {
		t.Fatalf("forgiveness should still let both write statements parse, got %d", len(stats.Children))
	}
}

func TestPanicModeRecoversAtNextStatement(t *testing.T) {
	// "x = ;" is missing its RHS expression: factor() panics on ';',
	// recovers, and the next statement must still be recognized.
	src := `
main
do
	x = ;
	write(1);
end
`
	root, ok, rec := parse(t, src)
	if ok {
		t.Fatalf("expected overall failure")
	}
	if !rec.Failed() {
		t.Fatalf("expected at least one recorded panic")
	}
	stats := root.Child(2).Child(1)
	if len(stats.Children) == 0 {
		t.Fatalf("expected recovery to still find the trailing write statement")
	}
	last := stats.Child(len(stats.Children) - 1)
	if last.Kind != ast.WriteStat {
		t.Fatalf("last statement = %v, want WriteStat after recovery", last.Kind)
	}
}

func TestDerivationTraceOmitsScaffoldingRules(t *testing.T) {
	_, ok, rec := parse(t, "main do end")
	if !ok {
		t.Fatalf("expected success, got errors:\n%s", rec.Errors())
	}
	trace := rec.Derivation()
	if !strings.Contains(trace, "prog ->") {
		t.Fatalf("expected a 'prog ->' production in the trace, got:\n%s", trace)
	}
	for _, scaffold := range []string{"rept-prog0", "rightrec-arithExpr", "rept-funcBody2"} {
		if strings.Contains(trace, scaffold+" ->") {
			t.Errorf("derivation trace should not record the flattened scaffolding rule %q", scaffold)
		}
	}
}

func TestWhileStatementWithNestedBlock(t *testing.T) {
	src := `
main
do
	while (1 < 2) do
		write(1);
		write(2);
	end;
end
`
	root, ok, rec := parse(t, src)
	if !ok {
		t.Fatalf("expected success, got errors:\n%s", rec.Errors())
	}
	loop := root.Child(2).Child(1).Child(0)
	if loop.Kind != ast.WhileStat {
		t.Fatalf("loop.Kind = %v, want WhileStat", loop.Kind)
	}
	body := loop.Child(1)
	if len(body.Children) != 2 {
		t.Fatalf("expected 2 statements in the while body, got %d", len(body.Children))
	}
}

func TestReadStatementRejectsFunctionCall(t *testing.T) {
	// read(...) requires an lvalue; a trailing call is not acceptable there.
	src := `
main
do
	read(a.f());
end
`
	_, ok, rec := parse(t, src)
	if ok {
		t.Fatalf("expected failure: read() argument must be a variable, not a call")
	}
	if !rec.Failed() {
		t.Fatalf("expected a recorded panic")
	}
}
