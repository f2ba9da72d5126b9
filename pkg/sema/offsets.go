package sema

import (
	"oolang.dev/compiler/pkg/ast"
	"oolang.dev/compiler/pkg/symtab"
)

// Frame baselines follow the calling convention's fixed header: a
// function's frame always begins with its return value at offset 0 and
// its return address immediately below it; a method's frame
// additionally reserves a slot for the "this" pointer passed as a
// hidden first argument. Neither the return value nor the return
// address nor "this" is itself a symtab.Record — they are addresses
// the code generator writes to directly — so the first real record
// (the first param, or the first local when there are none) lands at
// the baseline itself.
const (
	mainBaseline     = 0
	freeFuncBaseline = 8  // 0: return value, 4: return address
	methodBaseline   = 12 // + 8: "this" pointer
)

// PlanOffsets assigns every record in the program its stack-frame (or
// class-instance) byte offset, and every table its total frame size,
// once building and checking have both succeeded. Grounded on spec
// §4.4's frame layout description; original_source/sem/table.py
// references an update_offsets/current_size pair that does the
// equivalent job but is absent from the retrieved source, so this
// planner's concrete scheme is an original implementation of that
// description rather than a translation.
func PlanOffsets(root *ast.Node, ctx *symtab.Context) {
	classes, funcs, main := root.Child(0), root.Child(1), root.Child(2)

	for _, cls := range classes.Children {
		planClass(cls.Record.Table)
	}
	for _, fn := range funcs.Children {
		rec := fn.Record
		if rec == nil || rec.Table == nil {
			continue
		}
		baseline := freeFuncBaseline
		if len(rec.Table.Inherits) > 0 {
			baseline = methodBaseline
		}
		planFrame(rec.Table, baseline)
	}
	planFrame(main.Record.Table, mainBaseline)
}

// planClass assigns every inherited class's instance a contiguous
// offset range, so a derived class's own fields start right after its
// parents' combined size — the layout a SearchMember lookup through an
// ancestor table already assumes.
func planClass(t *symtab.SymbolTable) {
	offset := 0
	for _, parent := range t.Inherits {
		offset += parent.Size()
	}
	for _, r := range t.AllRecords() {
		if r.Kind != symtab.DataRecord {
			continue
		}
		r.Offset = offset
		offset += r.Size()
	}
	t.FrameSize = offset
}

// planFrame assigns params, locals, and (type-check-allocated)
// temporaries their offsets in declaration order, starting at baseline
// and growing downward in magnitude.
func planFrame(t *symtab.SymbolTable, baseline int) {
	offset := baseline
	for _, r := range t.AllRecords() {
		switch r.Kind {
		case symtab.ParamRecord, symtab.LocalRecord, symtab.TempRecord:
			r.Offset = offset
			offset += r.Size()
		}
	}
	t.FrameSize = offset
}
