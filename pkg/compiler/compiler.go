// Package compiler orchestrates the four in-process phases (lex, syn,
// sem, gen) into the single gated pipeline the command line driver
// exposes: an error in an earlier phase suppresses every later one, and
// each phase's artifacts are produced as soon as that phase runs,
// whether or not it is the phase the caller actually asked for.
//
// Grounded on cmd/jack_compiler/main.go's Handler, which performs the
// same "read source, run every applicable pass, write the resulting
// files" sequence for the teacher's own four-stage toolchain; this
// package is the part of that Handler that doesn't touch the
// filesystem or a subprocess, so it can be exercised without either.
package compiler

import (
	"oolang.dev/compiler/pkg/ast"
	"oolang.dev/compiler/pkg/codegen"
	"oolang.dev/compiler/pkg/lexer"
	"oolang.dev/compiler/pkg/parser"
	"oolang.dev/compiler/pkg/sema"
	"oolang.dev/compiler/pkg/symtab"
)

// Phase is one of the five stages the command line driver can stop at.
// Exe is handled entirely by the caller (it needs a real file on disk
// and a subprocess) but is still a named Phase so the CLI's selector
// parses into the same type the pipeline does.
type Phase int

const (
	Lex Phase = iota
	Syn
	Sem
	Gen
	Exe
)

func (p Phase) String() string {
	switch p {
	case Lex:
		return "lex"
	case Syn:
		return "syn"
	case Sem:
		return "sem"
	case Gen:
		return "gen"
	case Exe:
		return "exe"
	default:
		return "unknown"
	}
}

var phaseNames = map[string]Phase{"lex": Lex, "syn": Syn, "sem": Sem, "gen": Gen, "exe": Exe}

// ParsePhase resolves one of the CLI's five phase selector strings.
func ParsePhase(s string) (Phase, bool) {
	p, ok := phaseNames[s]
	return p, ok
}

// Artifact is one rendered output, keyed by the suffix the CLI appends
// to the source path ('.outlextokens', '.moon', and so on).
type Artifact struct {
	Suffix  string
	Content string
}

// Result collects the artifacts every phase that actually ran produced,
// whether the requested phase succeeded, and — when code generation ran
// and succeeded — the rendered assembly text the 'exe' phase hands to
// the simulator.
type Result struct {
	Artifacts []Artifact
	OK        bool
	MoonText  string
}

func (r *Result) emit(suffix, content string) {
	r.Artifacts = append(r.Artifacts, Artifact{Suffix: suffix, Content: content})
}

// Compile runs the pipeline from lexing through whichever of target's
// phases was requested (Exe runs the same in-process work as Gen; the
// simulator invocation itself is the caller's job). Per spec's "an
// error in an earlier phase gates later phases" rule, a lexical error
// stops the pipeline at syn, a parse failure stops it at sem, and a
// semantic error stops it at gen — each short-circuit still reports the
// artifacts already produced up to that point.
func Compile(src []byte, target Phase) Result {
	var res Result

	tokens, lexErrs := lexer.Run(src)
	res.emit(".outlextokens", lexer.FormatTokens(tokens))
	res.emit(".outlexerrors", lexer.FormatErrors(lexErrs))
	if target == Lex {
		res.OK = len(lexErrs) == 0
		return res
	}
	if len(lexErrs) > 0 {
		return res
	}

	sc := lexer.New(src)
	p := parser.New(sc)
	rec := parser.NewRecorder()
	p.SetProductionHandler(rec)
	p.SetErrorHandler(rec)
	root, parseOK := p.Parse()

	res.emit(".outderivation", rec.Derivation())
	res.emit(".outsyntaxerrors", rec.Errors())
	if parseOK {
		res.emit(".outderivation.var", rec.DerivationVariant())
	}
	if root != nil {
		res.emit(".outast", ast.Print(root))
	}
	if target == Syn {
		res.OK = parseOK
		return res
	}
	if !parseOK {
		return res
	}

	analysis := sema.Analyze(root)
	res.emit(".outsymboltables", symtab.PrintTables(analysis.Context.Globals))
	res.emit(".outsemanticerrors", analysis.Diagnostics.Sorted().String())
	if target == Sem {
		res.OK = analysis.OK()
		return res
	}
	if !analysis.OK() {
		return res
	}

	prog, err := codegen.Generate(root)
	if err != nil {
		return res
	}
	res.MoonText = prog.Render()
	res.emit(".moon", res.MoonText)
	res.OK = true
	return res
}
