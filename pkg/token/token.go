// Package token defines the lexical vocabulary shared by the scanner and
// the parser: token kinds, the reserved-word table, and the immutable
// Token value itself.
package token

import "fmt"

// Kind identifies the lexical category of a token. Comments and EOF are
// produced by the scanner but filtered out of the parser's input stream.
type Kind int

const (
	// Generic
	Ident Kind = iota
	BlockComment
	InlineComment
	EOF

	// Literals
	IntegerLit
	FloatLit

	// Keywords
	If
	Then
	Else
	While
	Do
	End
	Return
	Integer
	Float
	Class
	Inherits
	Public
	Private
	Local
	Read
	Write
	Main
	Void

	// Operators (including keyword-operators 'and'/'or'/'not')
	Eq
	Neq
	Lt
	Gt
	Lte
	Gte
	Plus
	Minus
	Div
	Mult
	Or
	And
	Not

	// Punctuation
	OpenPar
	ClosePar
	OpenCbr
	CloseCbr
	OpenSbr
	CloseSbr
	Colon
	Dcolon
	Assign
	Dot
	Comma
	Semi

	// Lexical errors
	InvalidNumber
	InvalidCharacter
	InvalidIdentifier
	DanglingBlockComment
)

// names mirrors the kind constants above, lower-cased, matching the
// display convention the original scanner used for its token kinds.
var names = map[Kind]string{
	Ident: "id", BlockComment: "block_cmt", InlineComment: "inline_cmt", EOF: "eof",

	IntegerLit: "integer_literal", FloatLit: "float_literal",

	If: "if", Then: "then", Else: "else", While: "while", Do: "do", End: "end",
	Return: "return", Integer: "integer", Float: "float", Class: "class",
	Inherits: "inherits", Public: "public", Private: "private", Local: "local",
	Read: "read", Write: "write", Main: "main", Void: "void",

	Eq: "eq", Neq: "neq", Lt: "lt", Gt: "gt", Lte: "lte", Gte: "gte",
	Plus: "plus", Minus: "minus", Div: "div", Mult: "mult",
	Or: "or", And: "and", Not: "not",

	OpenPar: "opnpar", ClosePar: "clspar", OpenCbr: "opncbr", CloseCbr: "clscbr",
	OpenSbr: "opnsbr", CloseSbr: "clssbr", Colon: "colon", Dcolon: "dcolon",
	Assign: "assign", Dot: "dot", Comma: "comma", Semi: "semi",

	InvalidNumber:        "invalid_number",
	InvalidCharacter:     "invalid_character",
	InvalidIdentifier:    "invalid_identifier",
	DanglingBlockComment: "dangling_block_comment",
}

func (k Kind) String() string {
	if name, ok := names[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsError reports whether the kind belongs to the lexical error set.
func (k Kind) IsError() bool {
	switch k {
	case InvalidNumber, InvalidCharacter, InvalidIdentifier, DanglingBlockComment:
		return true
	}
	return false
}

// Keywords maps reserved lexemes (keywords and the 3 keyword-operators)
// to their token kind. The scanner's Word DFA consults this table once a
// maximal identifier-shaped lexeme has been matched.
var Keywords = map[string]Kind{
	"if": If, "then": Then, "else": Else, "while": While, "do": Do, "end": End,
	"return": Return, "integer": Integer, "float": Float, "class": Class,
	"inherits": Inherits, "public": Public, "private": Private, "local": Local,
	"read": Read, "write": Write, "main": Main, "void": Void,
	"and": And, "or": Or, "not": Not,
}

// Location is a 1-based line/column source position.
type Location struct {
	Line   int
	Column int
}

func (l Location) String() string { return fmt.Sprintf("%d:%d", l.Line, l.Column) }

// Token is an immutable lexeme classified by the scanner.
type Token struct {
	Kind     Kind
	Lexeme   string
	Location Location
}

var escaper = map[rune]string{'\n': `\n`, '\t': `\t`, '\r': `\r`}

// Escaped returns the lexeme with control characters escaped for display,
// as used by the '.outlextokens' artifact.
func (t Token) Escaped() string {
	out := make([]rune, 0, len(t.Lexeme))
	for _, r := range t.Lexeme {
		if esc, ok := escaper[r]; ok {
			out = append(out, []rune(esc)...)
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

func (t Token) String() string {
	if t.Kind.IsError() {
		return fmt.Sprintf(`Lexical Error: %s: "%s": line %d, column %d.`,
			t.Kind, t.Escaped(), t.Location.Line, t.Location.Column)
	}
	return fmt.Sprintf("[%s, %s, %s]", t.Kind, t.Escaped(), t.Location)
}
