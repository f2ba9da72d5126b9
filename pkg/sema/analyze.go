package sema

import (
	"oolang.dev/compiler/pkg/ast"
	"oolang.dev/compiler/pkg/symtab"
)

// Result bundles the diagnostics and context produced by a complete
// semantic-analysis run, and reports whether code generation may
// proceed.
type Result struct {
	Diagnostics Diagnostics
	Context     *symtab.Context
}

// OK reports whether code generation may safely run over root: no
// fatal diagnostic was raised during any of the three passes.
func (r Result) OK() bool {
	return !r.Diagnostics.HasErrors()
}

// Analyze runs the table builder, table check, and type check passes
// over root in order, then plans every record's frame offset. Table
// check and type check both run against whatever the table builder
// produced even when the builder itself found errors (to surface as
// much as possible in one pass, matching spec §7's "run every phase
// that can still make progress"), but offset planning — which code
// generation depends on unconditionally — only runs when every
// preceding pass was clean, since an offset computed against a broken
// table is worse than no offset at all.
func Analyze(root *ast.Node) Result {
	ctx := symtab.NewContext()

	var diags Diagnostics
	diags = append(diags, BuildTables(root, ctx)...)
	diags = append(diags, CheckTables(root, ctx)...)
	diags = append(diags, CheckTypes(root, ctx)...)

	result := Result{Diagnostics: diags, Context: ctx}
	if result.OK() {
		PlanOffsets(root, ctx)
	}
	return result
}
