package symtab

import (
	"strconv"
	"strings"

	"oolang.dev/compiler/pkg/token"
	"oolang.dev/compiler/pkg/utils"
)

// RecordKind distinguishes the role a Record plays: a class or function
// declaration (which carry a nested table of their own) versus a plain
// data slot.
type RecordKind int

const (
	ClassRecord RecordKind = iota
	DataRecord
	FunctionRecord
	ParamRecord
	LocalRecord
	TempRecord
)

// Record is one entry of a symbol table.
type Record struct {
	Name       string
	Type       SymbolType
	Kind       RecordKind
	Location   token.Location
	Params     []*Record   // set for FunctionRecord
	ReturnType *SymbolType // set for FunctionRecord
	Visibility Visibility  // meaningful for class members only
	Table      *SymbolTable // nested table: ClassRecord, FunctionRecord
	Offset     int          // bytes relative to the enclosing frame/record; valid only after offset planning
}

// MemoryLocation renders the moon operand addressing this record's stack
// slot relative to the frame pointer: "0(r14)" for the function's return
// value slot (offset 0), "-N(r14)" for everything below it. Valid only
// once the offset planner has run.
func (r *Record) MemoryLocation() string {
	if r.Offset == 0 {
		return "0(r14)"
	}
	return "-" + strconv.Itoa(r.Offset) + "(r14)"
}

// IsPointer reports whether this record occupies a pointer-sized slot
// rather than its full value size — true exactly for complex-typed
// parameters, which are passed by address.
func (r *Record) IsPointer() bool {
	return r.Kind == ParamRecord && r.Type.IsComplex()
}

// Size is the number of bytes this record occupies in its frame: a
// pointer width for a complex parameter, the type's own size otherwise.
// Class and function records occupy no frame space themselves (they are
// declarations, not values).
func (r *Record) Size() int {
	switch r.Kind {
	case ClassRecord, FunctionRecord:
		return 0
	}
	if r.IsPointer() {
		return 4
	}
	return r.Type.Size()
}

// ParamTypesEqual reports whether two records' parameter-type tuples
// match — used both for overload resolution (type check) and for
// "multiply declared" detection (table check).
func ParamTypesEqual(a, b []*Record) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Type.Equal(b[i].Type) {
			return false
		}
	}
	return true
}

// SymbolTable is a name-keyed, insertion-ordered scope: a class, a
// function (free or method), main's body, or the process-wide globals
// table. Entries are stored as a list per name to accommodate
// overloading; most lookups filter that list down before returning.
type SymbolTable struct {
	Name       string
	Inherits   []*BaseType
	IsFunction bool
	IsMain     bool

	// FrameSize is the total byte width of this table's frame (baseline
	// plus every param/local/temp's size), set once by the offset
	// planner. Used by the code generator to widen the stack before a
	// call made from code running in this frame (spec §4.4's
	// "current_size" / "addi r14,r14,-N" discipline).
	FrameSize int

	isGlobal bool
	entries  utils.OrderedMap[string, []*Record]
}

// NewSymbolTable creates an empty table with the given name.
func NewSymbolTable(name string) *SymbolTable {
	return &SymbolTable{Name: name}
}

// NewGlobals creates the process-wide globals table for one compilation.
func NewGlobals() *SymbolTable {
	t := NewSymbolTable("globals")
	t.isGlobal = true
	return t
}

// Insert adds r to the table, appending to any existing entries under
// the same name (this is how overloads and duplicate declarations both
// end up visible to the table checker).
func (t *SymbolTable) Insert(r *Record) {
	existing, _ := t.entries.Get(r.Name)
	t.entries.Set(r.Name, append(existing, r))
}

// Lookup returns every record declared locally in this table under
// name, without walking parents or globals.
func (t *SymbolTable) Lookup(name string) ([]*Record, bool) {
	return t.entries.Get(name)
}

// AllRecords returns every record in the table, in declaration order,
// flattening the per-name overload lists.
func (t *SymbolTable) AllRecords() []*Record {
	var out []*Record
	for _, recs := range t.entries.Entries() {
		out = append(out, recs...)
	}
	return out
}

// Names returns the distinct entry names, in first-declaration order.
func (t *SymbolTable) Names() []string { return t.entries.Keys() }

// Size is the class's instance size: every ancestor's size plus this
// table's own declared data members, recursively. Meaningless for a
// non-class table (a method's table inherits its class, so it reports
// that class's size; a free function's table reports 0).
func (t *SymbolTable) Size() int {
	total := 0
	for _, parent := range t.Inherits {
		total += parent.Size()
	}
	for _, r := range t.AllRecords() {
		if r.Kind == DataRecord {
			total += r.Size()
		}
	}
	return total
}

// SearchMember looks up name as a class member, filtered by the caller's
// access level: Private access sees both public and private entries,
// Public access sees only public ones. A name declared locally (at any
// visibility) always wins over an inherited one of the same name — this
// is what makes member shadowing well-defined rather than ambiguous.
//
// Whether a lookup through a particular parent is itself private or
// public depends on the table's own name: a class method's table is
// named "Class::method", so a parent P is accessed privately if the
// table's name starts with "P::" (the method belongs to the class
// itself), and publicly otherwise (an external table reaching through
// inheritance some other way, which by construction does not happen for
// ordinary classes but keeps the rule total).
func (t *SymbolTable) SearchMember(name string, access Visibility) ([]*Record, bool) {
	if recs, ok := t.entries.Get(name); ok {
		var visible []*Record
		for _, r := range recs {
			if access == Private || r.Visibility != Private {
				visible = append(visible, r)
			}
		}
		if len(visible) > 0 {
			return visible, true
		}
		return nil, false
	}
	for _, parent := range t.Inherits {
		if parent.table == nil {
			continue
		}
		parentAccess := Public
		if strings.HasPrefix(t.Name, parent.Name+"::") {
			parentAccess = Private
		}
		if recs, ok := parent.table.SearchMember(name, parentAccess); ok {
			return recs, true
		}
	}
	return nil, false
}

// SearchInScope resolves a bare identifier the way code inside this
// table's own function body sees it: class members reachable with
// private access, falling back to the process-wide globals table (free
// functions and, degenerately, anything else declared at the top level).
//
// The globals table's own SearchInScope short-circuits to a plain local
// lookup instead of recursing into itself — the explicit isGlobal flag
// standing in for the original implementation's trick of rebinding
// GLOBALS.search_in_scope to its own non-recursive variant at
// construction time (Go has no attribute-rebinding equivalent).
func (t *SymbolTable) SearchInScope(name string, globals *SymbolTable) ([]*Record, bool) {
	if t.isGlobal {
		return t.Lookup(name)
	}
	if recs, ok := t.SearchMember(name, Private); ok {
		return recs, true
	}
	return globals.Lookup(name)
}
