package compiler_test

import (
	"testing"

	"oolang.dev/compiler/pkg/compiler"
)

func artifactSuffixes(res compiler.Result) map[string]bool {
	out := make(map[string]bool, len(res.Artifacts))
	for _, a := range res.Artifacts {
		out[a.Suffix] = true
	}
	return out
}

func TestCompileCleanProgramReachesGen(t *testing.T) {
	src := []byte(`
main
local
	integer a;
do
	a = 2;
	write(a);
end
`)
	res := compiler.Compile(src, compiler.Gen)
	if !res.OK {
		t.Fatalf("expected success")
	}
	suffixes := artifactSuffixes(res)
	for _, want := range []string{".outlextokens", ".outlexerrors", ".outderivation", ".outast",
		".outsymboltables", ".outsemanticerrors", ".moon"} {
		if !suffixes[want] {
			t.Errorf("expected artifact %s, got %v", want, suffixes)
		}
	}
	if res.MoonText == "" {
		t.Errorf("expected non-empty rendered moon text")
	}
}

func TestCompileLexicalErrorStopsAtSyn(t *testing.T) {
	src := []byte("main do a = $; end")
	res := compiler.Compile(src, compiler.Gen)
	if res.OK {
		t.Fatalf("expected failure")
	}
	suffixes := artifactSuffixes(res)
	if !suffixes[".outlextokens"] || !suffixes[".outlexerrors"] {
		t.Fatalf("expected lex artifacts, got %v", suffixes)
	}
	if suffixes[".outderivation"] {
		t.Fatalf("did not expect syn artifacts once lexing failed, got %v", suffixes)
	}
}

func TestCompileSyntaxErrorStopsAtSem(t *testing.T) {
	src := []byte("main do integer ; end")
	res := compiler.Compile(src, compiler.Gen)
	if res.OK {
		t.Fatalf("expected failure")
	}
	suffixes := artifactSuffixes(res)
	if !suffixes[".outderivation"] || !suffixes[".outsyntaxerrors"] {
		t.Fatalf("expected syn artifacts, got %v", suffixes)
	}
	if suffixes[".outderivation.var"] {
		t.Fatalf("did not expect a derivation-variant artifact once parsing failed, got %v", suffixes)
	}
	if suffixes[".outsymboltables"] {
		t.Fatalf("did not expect sem artifacts once parsing failed, got %v", suffixes)
	}
}

func TestCompileSemanticErrorStopsAtGen(t *testing.T) {
	src := []byte(`
main
local
	integer a;
	float b;
do
	a = b;
end
`)
	res := compiler.Compile(src, compiler.Gen)
	if res.OK {
		t.Fatalf("expected failure")
	}
	suffixes := artifactSuffixes(res)
	if !suffixes[".outsymboltables"] || !suffixes[".outsemanticerrors"] {
		t.Fatalf("expected sem artifacts, got %v", suffixes)
	}
	if suffixes[".moon"] {
		t.Fatalf("did not expect a .moon artifact once semantic analysis failed, got %v", suffixes)
	}
}

func TestCompileStopsAtRequestedPhase(t *testing.T) {
	src := []byte(`
main
local
	integer a;
do
	a = 2;
end
`)
	res := compiler.Compile(src, compiler.Sem)
	if !res.OK {
		t.Fatalf("expected success")
	}
	suffixes := artifactSuffixes(res)
	if suffixes[".moon"] {
		t.Fatalf("did not expect a .moon artifact when only sem was requested, got %v", suffixes)
	}
}

func TestParsePhase(t *testing.T) {
	for _, name := range []string{"lex", "syn", "sem", "gen", "exe"} {
		if _, ok := compiler.ParsePhase(name); !ok {
			t.Errorf("expected %q to parse as a phase", name)
		}
	}
	if _, ok := compiler.ParsePhase("bogus"); ok {
		t.Errorf("expected an unknown phase string to fail")
	}
}
