// Package sema implements the three semantic-analysis passes described
// in spec §4.3 — table building, table checking, and type checking —
// plus the post-hoc offset planner. Each pass is grounded on its
// original_source/sem/vis/*.py counterpart, translated from Python's
// dynamic-dispatch Visitor (a handler-per-node-kind map built by
// reflection over an enum) into plain Go functions that switch on
// ast.Kind directly — idiomatic-Go dispatch for a closed, already-tagged
// variant, and a more direct fit than rebuilding a method-table by hand.
//
// Unlike the table builder in original_source, which defers a var_decl's
// record kind (data vs. local) to whichever list visits it afterward,
// this package decides a declaration's RecordKind at the point its
// enclosing list is built (member_list builds data records directly,
// local_list builds local records directly) — the "set it later" step
// has no Go equivalent worth keeping once the two call sites are already
// distinguishable by construction.
package sema

import (
	"fmt"
	"sort"

	"oolang.dev/compiler/pkg/token"
)

// Severity distinguishes a fatal semantic error (gates code generation)
// from a non-fatal warning.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "Semantic Warning"
	}
	return "Semantic Error"
}

// Diagnostic is one semantic-analysis finding: a message and the source
// location it applies to.
type Diagnostic struct {
	Severity Severity
	Message  string
	Location token.Location
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: line %d, column %d.", d.Severity, d.Message, d.Location.Line, d.Location.Column)
}

// Diagnostics is a collected, sortable list of findings.
type Diagnostics []Diagnostic

func (ds Diagnostics) Len() int      { return len(ds) }
func (ds Diagnostics) Swap(i, j int) { ds[i], ds[j] = ds[j], ds[i] }
func (ds Diagnostics) Less(i, j int) bool {
	if ds[i].Location.Line != ds[j].Location.Line {
		return ds[i].Location.Line < ds[j].Location.Line
	}
	return ds[i].Location.Column < ds[j].Location.Column
}

// HasErrors reports whether any diagnostic in the list is fatal.
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Sorted returns a location-sorted copy, per spec §7's "errors are
// collected and written to the phase's error file, sorted by source
// location; warnings are interleaved."
func (ds Diagnostics) Sorted() Diagnostics {
	out := append(Diagnostics(nil), ds...)
	sort.Stable(out)
	return out
}

// String renders the '.outsemanticerrors' artifact body: one sorted
// finding per line.
func (ds Diagnostics) String() string {
	out := ""
	for _, d := range ds.Sorted() {
		out += d.String() + "\n"
	}
	return out
}

type collector struct {
	diags Diagnostics
}

func (c *collector) errorf(loc token.Location, format string, args ...any) {
	c.diags = append(c.diags, Diagnostic{Severity: Error, Message: fmt.Sprintf(format, args...), Location: loc})
}

func (c *collector) warnf(loc token.Location, format string, args ...any) {
	c.diags = append(c.diags, Diagnostic{Severity: Warning, Message: fmt.Sprintf(format, args...), Location: loc})
}
