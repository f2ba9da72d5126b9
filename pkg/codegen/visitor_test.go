package codegen_test

import (
	"strings"
	"testing"

	"oolang.dev/compiler/pkg/codegen"
	"oolang.dev/compiler/pkg/lexer"
	"oolang.dev/compiler/pkg/parser"
	"oolang.dev/compiler/pkg/sema"
)

func compile(t *testing.T, src string) string {
	t.Helper()
	rec := parser.NewRecorder()
	p := parser.New(lexer.New([]byte(src)))
	p.SetProductionHandler(rec)
	p.SetErrorHandler(rec)
	root, ok := p.Parse()
	if !ok {
		t.Fatalf("unexpected syntax errors:\n%s", rec.Errors())
	}

	result := sema.Analyze(root)
	if !result.OK() {
		t.Fatalf("unexpected semantic errors:\n%s", result.Diagnostics.Sorted())
	}

	prog, err := codegen.Generate(root)
	if err != nil {
		t.Fatalf("unexpected codegen error: %s", err)
	}
	return prog.Render()
}

func mustContain(t *testing.T, out string, substrs ...string) {
	t.Helper()
	for _, s := range substrs {
		if !strings.Contains(out, s) {
			t.Errorf("expected generated code to contain %q, got:\n%s", s, out)
		}
	}
}

func TestGenerateAssignmentAndArithmetic(t *testing.T) {
	out := compile(t, `
main
local
	integer a;
	integer b;
do
	a = 2;
	b = a + 3;
end
`)
	mustContain(t, out, "entry", "hlt", "add", "addi")
}

func TestGenerateIfAndWhile(t *testing.T) {
	out := compile(t, `
main
local
	integer a;
do
	a = 0;
	while (a < 5) do
		a = a + 1;
	end;
	if (a == 5) then do
		write(a);
	end else do
		write(0);
	end;
end
`)
	mustContain(t, out, "clt", "ceq", "bz", "nop")
}

func TestGenerateReadAndWrite(t *testing.T) {
	out := compile(t, `
main
local
	integer a;
do
	read(a);
	write(a);
end
`)
	mustContain(t, out, "getstr", "strint", "intstr", "putstr")
}

func TestGenerateFreeFunctionCall(t *testing.T) {
	out := compile(t, `
f(integer n): integer
do
	return(n + 1);
end;

main
local
	integer a;
do
	a = f(2);
end
`)
	mustContain(t, out, "jl", "func")
}

func TestGenerateMethodCallAndMemberAccess(t *testing.T) {
	out := compile(t, `
class C
{
	public integer x;
	public get(): integer;
};

C::get(): integer
do
	return(x);
end;

main
local
	C c;
do
	c.x = 5;
	write(c.get());
end
`)
	mustContain(t, out, "jl", "func")
}

func TestGenerateArrayIndexing(t *testing.T) {
	out := compile(t, `
main
local
	integer a[3];
	integer i;
do
	i = 1;
	a[i] = 5;
	write(a[i]);
end
`)
	mustContain(t, out, "muli", "sub")
}

func TestGenerateRejectsFloatLiterals(t *testing.T) {
	rec := parser.NewRecorder()
	p := parser.New(lexer.New([]byte(`
main
local
	float a;
do
	a = 1.5;
end
`)))
	p.SetProductionHandler(rec)
	p.SetErrorHandler(rec)
	root, ok := p.Parse()
	if !ok {
		t.Fatalf("unexpected syntax errors:\n%s", rec.Errors())
	}

	result := sema.Analyze(root)
	if !result.OK() {
		// float arithmetic is already rejected by the type checker for
		// most shapes; a bare literal assignment still reaches codegen.
		t.Skipf("type check already rejected this program: %s", result.Diagnostics.Sorted())
	}

	if _, err := codegen.Generate(root); err == nil {
		t.Fatalf("expected codegen to reject float code generation")
	}
}
