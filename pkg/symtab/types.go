// Package symtab implements the symbol table model: interned base
// types, composite symbol types (base + dimensions), table records, and
// the nested symbol tables themselves (classes, functions, and the
// process-wide globals table).
//
// Grounded on original_source/sem/table.py, translated from Python's
// `__new__`-based interning singleton into an explicit Context that a
// single compilation owns and threads through — per the design notes,
// "make them a CompilationContext threaded explicitly rather than
// ambient", so there is no package-level mutable state here at all.
package symtab

import (
	"strconv"

	"oolang.dev/compiler/pkg/token"
)

// BaseKind distinguishes a primitive base type from a class.
type BaseKind int

const (
	Primitive BaseKind = iota
	Class
)

// BaseType is an interned type name: one of the four primitives, or a
// class whose backing table is attached once the table builder visits
// the corresponding class_decl.
type BaseType struct {
	Name  string
	Kind  BaseKind
	table *SymbolTable // set only for Kind == Class
}

var primitiveSizes = map[string]int{
	"integer": 4,
	"float":   8,
	"void":    0,
	"boolean": 0,
}

// Size returns the base type's byte size: fixed for primitives, or the
// current size of the class's table (its own declared data members plus
// every ancestor's, recursively) for a class type. Class size is
// necessarily a query-time computation since it isn't final until the
// whole class hierarchy has been built.
func (b *BaseType) Size() int {
	if b.Kind == Primitive {
		return primitiveSizes[b.Name]
	}
	if b.table == nil {
		return 0
	}
	return b.table.Size()
}

// Table returns the class's backing table, or nil before it has been
// attached (or for a primitive base type).
func (b *BaseType) Table() *SymbolTable { return b.table }

// SetTable attaches a class's table to its base type. Called once by the
// table builder when it finishes constructing a class_decl's table.
func (b *BaseType) SetTable(t *SymbolTable) { b.table = t }

// SymbolType is a base type plus an ordered list of dimension tokens. A
// nil entry in Dims means an unspecified dimension size, used for array
// parameters whose exact bound isn't declared at the call boundary.
type SymbolType struct {
	Base *BaseType
	Dims []*token.Token
}

// IsComplex reports whether values of this type are passed by reference
// at a call boundary: any array type, or a class-typed value.
func (t SymbolType) IsComplex() bool {
	return len(t.Dims) > 0 || (t.Base != nil && t.Base.Kind == Class)
}

func dimSize(tok *token.Token) int {
	if tok == nil {
		return 1
	}
	n, err := strconv.Atoi(tok.Lexeme)
	if err != nil {
		return 1
	}
	return n
}

// Size is the product of the specified dimensions and the base type's
// size.
func (t SymbolType) Size() int {
	if t.Base == nil {
		return 0
	}
	size := t.Base.Size()
	for _, d := range t.Dims {
		size *= dimSize(d)
	}
	return size
}

// MulForDim is the partial product of every dimension strictly after
// index i, times the base size — the per-step displacement used for
// row-major array indexing (spec §4.4's array indexing formula).
func (t SymbolType) MulForDim(i int) int {
	if t.Base == nil {
		return 0
	}
	size := t.Base.Size()
	for j := i + 1; j < len(t.Dims); j++ {
		size *= dimSize(t.Dims[j])
	}
	return size
}

// Equal reports whether two symbol types have the same base and the
// same number of dimensions (binary operators require equal base and
// equal dimension arity, not identical dimension sizes).
func (t SymbolType) Equal(other SymbolType) bool {
	return t.Base == other.Base && len(t.Dims) == len(other.Dims)
}

// Visibility is the member-access qualifier on a class member.
type Visibility int

const (
	NoVisibility Visibility = iota
	Public
	Private
)
