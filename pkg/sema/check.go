package sema

import (
	"sort"
	"strings"

	"oolang.dev/compiler/pkg/ast"
	"oolang.dev/compiler/pkg/symtab"
	"oolang.dev/compiler/pkg/token"
)

// checker is Visitor 2 (table check): validates the shape the table
// builder produced — no duplicate or conflicting declarations, no
// inheritance/aggregation cycles, every declared type actually exists,
// every declared member function has a matching definition, and every
// non-void function returns on every path. Grounded on
// original_source/sem/vis/table_check.py's analogous checks, run here
// as a handful of focused passes rather than one generic node visitor
// since each check needs a different traversal shape (graph search for
// cycles, per-table grouping for duplicates, per-function control flow
// for reachability).
type checker struct {
	collector
	ctx *symtab.Context
}

// CheckTables runs every table-check pass over a tree BuildTables has
// already populated.
func CheckTables(root *ast.Node, ctx *symtab.Context) Diagnostics {
	c := &checker{ctx: ctx}
	classes, funcs, main := root.Child(0), root.Child(1), root.Child(2)

	c.checkCycles(classes)
	for _, cls := range classes.Children {
		c.checkClass(cls)
	}
	for _, fn := range funcs.Children {
		c.checkFuncDef(fn)
	}
	c.checkUndeclaredTypes(main.Record.Table)
	c.checkReturn(main.Record, main.Child(1))
	c.checkUnreachable(main.Child(1))
	c.checkDuplicates(ctx.Globals)

	return c.diags
}

// --- cycle detection ---------------------------------------------------

// checkCycles reports a class whose inheritance or data-member
// aggregation edges reach back to itself, directly or transitively.
// Both edge kinds are folded into one dependency graph since either one
// alone is enough to make a class's size undefined.
func (c *checker) checkCycles(classes *ast.Node) {
	nodeByName := make(map[string]*ast.Node, len(classes.Children))
	for _, cls := range classes.Children {
		nodeByName[cls.Record.Name] = cls
	}

	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(classes.Children))
	reportedCycles := make(map[string]bool)
	var path []string

	var visit func(n *ast.Node)
	visit = func(n *ast.Node) {
		name := n.Record.Name
		if color[name] != white {
			return
		}
		color[name] = gray
		path = append(path, name)
		for _, edge := range dependencyEdges(n.Record.Table) {
			depNode, ok := nodeByName[edge.target.Name]
			if !ok {
				continue
			}
			if color[edge.target.Name] == gray {
				c.reportCycle(n, path, edge.target.Name, reportedCycles)
				edge.sever()
				continue
			}
			visit(depNode)
		}
		path = path[:len(path)-1]
		color[name] = black
	}

	for _, cls := range classes.Children {
		visit(cls)
	}
}

// reportCycle emits one diagnostic for the cycle closed by a back edge
// from the node at the top of path to closesAt, keyed by the cycle's
// node set so the same cycle is never reported twice no matter which
// of its edges is walked last.
func (c *checker) reportCycle(n *ast.Node, path []string, closesAt string, reported map[string]bool) {
	start := 0
	for i, name := range path {
		if name == closesAt {
			start = i
			break
		}
	}
	cycle := append(append([]string{}, path[start:]...), closesAt)

	key := append([]string{}, cycle[:len(cycle)-1]...)
	sort.Strings(key)
	keyStr := strings.Join(key, ",")
	if reported[keyStr] {
		return
	}
	reported[keyStr] = true

	c.errorf(n.Child(0).Token.Location, `Classes are involved in a circular inheritance or aggregation dependency: {%s}`, strings.Join(cycle, "->"))
}

// classEdge is one dependency edge out of a class's symbol table, with
// a sever closure that removes it from the table once it is found to
// close a cycle — breaking the last edge walked keeps the rest of the
// dependency graph usable for sizing.
type classEdge struct {
	target *symtab.BaseType
	sever  func()
}

// dependencyEdges returns the distinct classes t depends on for sizing:
// its direct parents plus the declared type of every data member that
// is itself a class.
func dependencyEdges(t *symtab.SymbolTable) []classEdge {
	seen := make(map[*symtab.BaseType]bool)
	var out []classEdge
	for i, p := range t.Inherits {
		if p == nil || p.Kind != symtab.Class || seen[p] {
			continue
		}
		seen[p] = true
		idx := i
		out = append(out, classEdge{target: p, sever: func() {
			t.Inherits = append(t.Inherits[:idx], t.Inherits[idx+1:]...)
		}})
	}
	for _, r := range t.AllRecords() {
		if r.Kind != symtab.DataRecord || r.Type.Base == nil || r.Type.Base.Kind != symtab.Class || seen[r.Type.Base] {
			continue
		}
		seen[r.Type.Base] = true
		rec := r
		out = append(out, classEdge{target: rec.Type.Base, sever: func() {
			rec.Type.Base = nil
		}})
	}
	return out
}

// --- per-class checks ----------------------------------------------------

func (c *checker) checkClass(n *ast.Node) {
	table := n.Record.Table
	c.checkDuplicates(table)
	c.checkShadowedMembers(n)
	c.checkUndeclaredTypes(table)

	for _, m := range n.Child(2).Children {
		decl := m.Child(1)
		if decl.Record != nil && decl.Record.Kind == symtab.FunctionRecord && decl.Record.Table == nil {
			c.errorf(decl.Record.Location, `Member function "%s::%s" is declared but never defined`, n.Record.Name, decl.Record.Name)
		}
	}
}

// checkShadowedMembers warns when a class redeclares a member name
// already visible from one of its ancestors: unconditionally for a
// data member (any same-named ancestor entry), or for a function only
// when some ancestor function of the same name also has an identical
// parameter-type tuple (an override, not a sibling overload).
func (c *checker) checkShadowedMembers(n *ast.Node) {
	table := n.Record.Table
	for _, name := range table.Names() {
		own, _ := table.Lookup(name)
		for _, parent := range table.Inherits {
			if parent.Table() == nil {
				continue
			}
			ancestors, ok := parent.Table().SearchMember(name, symtab.Private)
			if !ok {
				continue
			}
			if c.shadows(own, ancestors) {
				c.warnf(own[0].Location, `Member "%s" of class "%s" shadows an inherited member`, name, n.Record.Name)
				break
			}
		}
	}
}

func (c *checker) shadows(own, ancestors []*symtab.Record) bool {
	for _, o := range own {
		if o.Kind != symtab.FunctionRecord {
			return true
		}
		for _, a := range ancestors {
			if a.Kind == symtab.FunctionRecord && symtab.ParamTypesEqual(o.Params, a.Params) {
				return true
			}
		}
	}
	return false
}

// --- function checks -----------------------------------------------------

func (c *checker) checkFuncDef(n *ast.Node) {
	rec := n.Record
	if rec.Table == nil {
		return
	}
	c.checkDuplicates(rec.Table)
	c.checkUndeclaredTypes(rec.Table)
	c.checkShadowedLocals(n, rec)
	c.checkReturn(rec, n.Child(5))
	c.checkUnreachable(n.Child(5))
}

// checkShadowedLocals warns when a method's own param or local
// redeclares a name already reachable as a class member of the
// enclosing class.
func (c *checker) checkShadowedLocals(n *ast.Node, rec *symtab.Record) {
	if len(rec.Table.Inherits) == 0 {
		return
	}
	class := rec.Table.Inherits[0]
	if class.Table() == nil {
		return
	}
	for _, r := range rec.Table.AllRecords() {
		if r.Kind != symtab.ParamRecord && r.Kind != symtab.LocalRecord {
			continue
		}
		if _, ok := class.Table().SearchMember(r.Name, symtab.Private); ok {
			c.warnf(r.Location, `"%s" shadows a member of class "%s"`, r.Name, class.Name)
		}
	}
}

// checkDuplicates flags, per distinct name in t, any declaration that
// conflicts with an earlier one under the same name: two non-function
// entries, a function and a non-function, or two functions with
// identical parameter-type tuples (valid overloads differ; identical
// tuples do not).
func (c *checker) checkDuplicates(t *symtab.SymbolTable) {
	for _, name := range t.Names() {
		recs, _ := t.Lookup(name)
		if len(recs) < 2 {
			continue
		}
		for i := 1; i < len(recs); i++ {
			dup := false
			for j := 0; j < i; j++ {
				if recs[i].Kind != symtab.FunctionRecord || recs[j].Kind != symtab.FunctionRecord {
					dup = true
					break
				}
				if symtab.ParamTypesEqual(recs[i].Params, recs[j].Params) {
					dup = true
					break
				}
			}
			if dup {
				c.errorf(recs[i].Location, `"%s" is already declared in this scope`, name)
			}
		}
	}
}

// checkUndeclaredTypes flags every reference, anywhere in t, to a class
// name that was never backed by a class_decl.
func (c *checker) checkUndeclaredTypes(t *symtab.SymbolTable) {
	for _, r := range t.AllRecords() {
		c.checkType(r.Type, r.Location)
		if r.ReturnType != nil {
			c.checkType(*r.ReturnType, r.Location)
		}
		for _, p := range r.Params {
			c.checkType(p.Type, p.Location)
		}
	}
}

func (c *checker) checkType(st symtab.SymbolType, loc token.Location) {
	if st.Base == nil || st.Base.Kind != symtab.Class || st.Base.Table() != nil {
		return
	}
	c.errorf(loc, `Type "%s" has not been declared`, st.Base.Name)
}

// --- return reachability -------------------------------------------------

// checkReturn verifies that a non-void function's body is guaranteed to
// execute a return statement on every control-flow path. A while loop
// never counts (it may run zero times); an if statement counts only
// when both its then and else blocks do.
func (c *checker) checkReturn(rec *symtab.Record, body *ast.Node) {
	if rec.ReturnType == nil || rec.ReturnType.Base == nil || rec.ReturnType.Base.Name == "void" {
		return
	}
	if !blockReturns(body) {
		c.errorf(rec.Location, `Function "%s" does not return a value on every path`, rec.Name)
	}
}

func blockReturns(block *ast.Node) bool {
	for _, stat := range block.Children {
		switch stat.Kind {
		case ast.ReturnStat:
			return true
		case ast.IfStat:
			if blockReturns(stat.Child(1)) && blockReturns(stat.Child(2)) {
				return true
			}
		}
	}
	return false
}

// --- unreachable statements ----------------------------------------------

// checkUnreachable warns once per block, at the first statement
// following a return statement within that block — a return always
// exits immediately, so nothing after it in that block can ever run.
func (c *checker) checkUnreachable(block *ast.Node) {
	seenReturn := false
	for _, stat := range block.Children {
		if seenReturn {
			c.warnf(location(stat), "statement is unreachable: it follows a return statement")
			break
		}
		switch stat.Kind {
		case ast.ReturnStat:
			seenReturn = true
		case ast.IfStat:
			c.checkUnreachable(stat.Child(1))
			c.checkUnreachable(stat.Child(2))
		case ast.WhileStat:
			c.checkUnreachable(stat.Child(1))
		}
	}
}
