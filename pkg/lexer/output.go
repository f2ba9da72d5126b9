package lexer

import (
	"strings"

	"oolang.dev/compiler/pkg/token"
)

// Run drains src through a Scanner once and returns every token together
// with a flattened list of its lexical errors, matching the "scan fully,
// report everything found" convention the rest of the pipeline (parser,
// sema) also uses instead of stopping at the first problem.
func Run(src []byte) (tokens []token.Token, errs []token.Token) {
	sc := New(src)
	for {
		tok := sc.Next()
		if tok.Kind == token.EOF {
			break
		}
		tokens = append(tokens, tok)
		if tok.Kind.IsError() {
			errs = append(errs, tok)
		}
	}
	return tokens, errs
}

// FormatTokens renders the '.outlextokens' artifact: every non-error
// token, grouped one source line per output line, comments included
// since the artifact is a record of everything the scanner produced.
func FormatTokens(tokens []token.Token) string {
	var b strings.Builder
	line := 0
	first := true
	for _, tok := range tokens {
		if tok.Kind.IsError() {
			continue
		}
		if tok.Location.Line != line {
			if !first {
				b.WriteString("\n")
			}
			line = tok.Location.Line
			first = false
		}
		b.WriteString(tok.String())
		b.WriteString(" ")
	}
	if !first {
		b.WriteString("\n")
	}
	return b.String()
}

// FormatErrors renders the '.outlexerrors' artifact: one lexical error
// per line, in the order the scanner encountered them.
func FormatErrors(errs []token.Token) string {
	var b strings.Builder
	for _, tok := range errs {
		b.WriteString(tok.String())
		b.WriteString("\n")
	}
	return b.String()
}
