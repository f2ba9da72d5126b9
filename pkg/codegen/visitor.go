// Package codegen implements the fourth pipeline stage: a post-order AST
// walk that emits moon assembly using a LIFO register pool and the
// stack-frame discipline fixed by the offset planner. Grounded on
// original_source/gen/vis/code_gen.py's CodeGenerator, translated from a
// Visitor subclass dispatching through a reflection-built handler table
// into a plain recursive-descent Go walk that switches on ast.Kind —
// pkg/sema already established that shape for this same AST, and
// codegen's handler set is the same closed list.
package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"oolang.dev/compiler/pkg/ast"
	"oolang.dev/compiler/pkg/symtab"
	"oolang.dev/compiler/pkg/token"
)

// opToInstruction maps a binary/unary operator's token kind to the moon
// mnemonic that implements it. Grounded on code_gen.py's OP_TO_INSTRUCTION.
var opToInstruction = map[token.Kind]string{
	token.Eq: "ceq", token.Neq: "cne", token.Lt: "clt", token.Gt: "cgt",
	token.Lte: "cle", token.Gte: "cge",
	token.Plus: "add", token.Minus: "sub", token.Div: "div", token.Mult: "mul",
	token.Or: "or", token.And: "and", token.Not: "not",
}

// generator carries the state shared across one compilation unit's code
// generation: the program being assembled, the register pool, the
// mangler, and whichever function's table is presently "in scope" (drives
// current_size/frame-widening math for calls made from that function).
// err is sticky — once non-nil, every further generation step is a no-op,
// matching spec §5's "earlier artifacts must not be mutated... if an
// earlier phase fails, subsequent phases are skipped", applied here at
// statement granularity since code generation can't usefully partially
// continue once an unsupported construct (float arithmetic) is hit.
type generator struct {
	prog    *Program
	pool    *registerPool
	mangler *mangler
	scope   *symtab.SymbolTable
	err     error
}

// Generate walks root (a fully type-checked and offset-planned Prog node)
// and returns the assembled moon program, or the first error encountered
// (currently: an attempt to generate code for a float-typed value or
// operation, per spec §9 Open Question (a) — moon has no floating-point
// instruction subset, so this fails fast rather than emitting integer
// code for a float operand).
func Generate(root *ast.Node) (*Program, error) {
	g := &generator{prog: NewProgram(), pool: newRegisterPool(), mangler: newMangler()}

	funcs, main := root.Child(1), root.Child(2)
	for _, fn := range funcs.Children {
		g.funcDef(fn)
	}
	g.mainFunc(main)

	if g.err != nil {
		return nil, g.err
	}
	return g.prog, nil
}

func (g *generator) fail(format string, args ...any) {
	if g.err == nil {
		g.err = fmt.Errorf(format, args...)
	}
}

func (g *generator) failed() bool { return g.err != nil }

// --- functions and main -----------------------------------------------------

func (g *generator) funcDef(n *ast.Node) {
	if g.failed() {
		return
	}
	rec := n.Record
	if rec == nil || rec.Table == nil {
		return
	}
	g.scope = rec.Table
	name := g.mangler.get(rec.Table.Name, "func")
	fn := &Function{Name: name}

	fn.emit(ast.Line{Label: name, Op: "sw", Args: []string{"-4(r14)", "r15"}})
	g.block(n.Child(5))
	fn.Lines = append(fn.Lines, n.Child(5).AllLines()...)
	fn.emit(ast.Line{Op: "sw", Args: []string{"0(r14)", "r0"}})
	fn.emit(ast.Line{Label: name + "return", Op: "lw", Args: []string{"r15", "-4(r14)"}})
	fn.emit(ast.Line{Op: "jr", Args: []string{"r15"}})

	g.prog.addFunction(fn)
}

func (g *generator) mainFunc(n *ast.Node) {
	if g.failed() {
		return
	}
	rec := n.Record
	if rec == nil || rec.Table == nil {
		return
	}
	g.scope = rec.Table
	fn := &Function{Name: "main"}

	fn.emit(ast.Line{Op: "entry"})
	fn.emit(ast.Line{Op: "addi", Args: []string{"r14", "r0", "topaddr"}, Comment: "Push initial stack pointer"})
	fn.emit(ast.Line{Op: "addi", Args: []string{"r14", "r14", "-4"}, Comment: "Adjust stack pointer offset"})

	g.block(n.Child(1))
	fn.Lines = append(fn.Lines, n.Child(1).AllLines()...)
	fn.emit(ast.Line{Op: "hlt"})

	g.prog.addFunction(fn)
}

// block generates code for every statement in a stat_block, in order; the
// generated lines stay attached to each statement's own node (collected
// by the caller via Node.AllLines once every statement in the block is
// done), exactly mirroring the teacher's "node.code += stat.code" assembly
// loops at every block call site.
func (g *generator) block(n *ast.Node) {
	for _, stat := range n.Children {
		g.statement(stat)
		if g.failed() {
			return
		}
	}
}

// --- statements --------------------------------------------------------------

func (g *generator) statement(n *ast.Node) {
	switch n.Kind {
	case ast.AssignStat:
		g.assignStat(n)
	case ast.IfStat:
		g.ifStat(n)
	case ast.WhileStat:
		g.whileStat(n)
	case ast.ReadStat:
		g.readStat(n)
	case ast.WriteStat:
		g.writeStat(n)
	case ast.ReturnStat:
		g.returnStat(n)
	case ast.FCallStat:
		g.chain(n)
	}
}

func (g *generator) assignStat(n *ast.Node) {
	lhs, rhs := n.Child(0), n.Child(1)
	g.expr(rhs)
	g.expr(lhs)
	if g.failed() {
		return
	}
	n.Lines = append(n.Lines, rhs.Lines...)
	n.Lines = append(n.Lines, lhs.Lines...)

	g.pool.with(func(reg string) {
		g.loadInReg(&n.Lines, rhs, reg)
		g.storeFromReg(&n.Lines, lhs, reg)
	})
}

func (g *generator) ifStat(n *ast.Node) {
	rel, thenBlock, elseBlock := n.Child(0), n.Child(1), n.Child(2)
	g.expr(rel)
	if g.failed() {
		return
	}
	reg := rel.Lines[len(rel.Lines)-1].Args[0]
	ifSym := g.mangler.fresh(g.scope.Name, "if")

	n.Lines = append(n.Lines, rel.Lines...)
	n.Lines = append(n.Lines, ast.Line{Label: ifSym, Op: "bz", Args: []string{reg, ifSym + "else"}})

	g.block(thenBlock)
	if g.failed() {
		return
	}
	n.Lines = append(n.Lines, thenBlock.AllLines()...)
	n.Lines = append(n.Lines, ast.Line{Op: "j", Args: []string{ifSym + "done"}})
	n.Lines = append(n.Lines, ast.Line{Label: ifSym + "else", Op: "nop"})

	g.block(elseBlock)
	if g.failed() {
		return
	}
	n.Lines = append(n.Lines, elseBlock.AllLines()...)
	n.Lines = append(n.Lines, ast.Line{Label: ifSym + "done", Op: "nop"})
}

func (g *generator) whileStat(n *ast.Node) {
	rel, body := n.Child(0), n.Child(1)
	g.expr(rel)
	if g.failed() {
		return
	}
	reg := rel.Lines[len(rel.Lines)-1].Args[0]
	whileSym := g.mangler.fresh(g.scope.Name, "while")

	n.Lines = append(n.Lines, rel.Lines...)
	n.Lines[0].Label = whileSym
	n.Lines = append(n.Lines, ast.Line{Op: "bz", Args: []string{reg, whileSym + "done"}})

	g.block(body)
	if g.failed() {
		return
	}
	n.Lines = append(n.Lines, body.AllLines()...)
	n.Lines = append(n.Lines, ast.Line{Op: "j", Args: []string{whileSym}})
	n.Lines = append(n.Lines, ast.Line{Label: whileSym + "done", Op: "nop"})
}

func (g *generator) readStat(n *ast.Node) {
	g.prog.reserve("buf", 20, "str buffer")

	child := n.Child(0)
	g.expr(child)
	if g.failed() {
		return
	}
	n.Lines = append(n.Lines, child.Lines...)

	g.withFrame(&n.Lines, func() {
		g.pool.with(func(bufReg string) {
			n.Lines = append(n.Lines, ast.Line{Op: "addi", Args: []string{bufReg, "r0", "buf"}})
			n.Lines = append(n.Lines, ast.Line{Op: "sw", Args: []string{"-8(r14)", bufReg}})
		})
		n.Lines = append(n.Lines, ast.Line{Op: "jl", Args: []string{"r15", "getstr"}})
		n.Lines = append(n.Lines, ast.Line{Op: "jl", Args: []string{"r15", "strint"}})
	})
	g.storeFromReg(&n.Lines, child, "r13")
}

func (g *generator) writeStat(n *ast.Node) {
	g.prog.reserve("buf", 20, "str buffer")
	g.prog.storeConstant("nl", `nl = "\r\n\0"`, "13", "10", "0")

	value := n.Child(0)
	g.expr(value)
	if g.failed() {
		return
	}
	n.Lines = append(n.Lines, value.Lines...)

	g.pool.with(func(reg string) {
		g.loadInReg(&n.Lines, value, reg)
		g.withFrame(&n.Lines, func() {
			n.Lines = append(n.Lines, ast.Line{Op: "sw", Args: []string{"-8(r14)", reg}})
			g.pool.with(func(bufReg string) {
				n.Lines = append(n.Lines, ast.Line{Op: "addi", Args: []string{bufReg, "r0", "buf"}})
				n.Lines = append(n.Lines, ast.Line{Op: "sw", Args: []string{"-12(r14)", bufReg}})
			})
			n.Lines = append(n.Lines, ast.Line{Op: "jl", Args: []string{"r15", "intstr"}})
			n.Lines = append(n.Lines, ast.Line{Op: "sw", Args: []string{"-8(r14)", "r13"}})
			n.Lines = append(n.Lines, ast.Line{Op: "jl", Args: []string{"r15", "putstr"}})
			g.pool.with(func(nlReg string) {
				n.Lines = append(n.Lines, ast.Line{Op: "addi", Args: []string{nlReg, "r0", "nl"}})
				n.Lines = append(n.Lines, ast.Line{Op: "sw", Args: []string{"-8(r14)", nlReg}})
			})
			n.Lines = append(n.Lines, ast.Line{Op: "jl", Args: []string{"r15", "putstr"}})
		})
	})
}

func (g *generator) returnStat(n *ast.Node) {
	name := g.mangler.get(g.scope.Name, "func")
	child := n.Child(0)
	g.expr(child)
	if g.failed() {
		return
	}
	n.Lines = append(n.Lines, child.Lines...)

	g.pool.with(func(reg string) {
		g.loadInReg(&n.Lines, child, reg)
		n.Lines = append(n.Lines, ast.Line{Op: "sw", Args: []string{"0(r14)", reg}})
		n.Lines = append(n.Lines, ast.Line{Op: "j", Args: []string{name + "return"}})
	})
}

// --- expressions ---------------------------------------------------------

func (g *generator) expr(n *ast.Node) {
	if g.failed() || n == nil {
		return
	}
	switch n.Kind {
	case ast.IntLit:
		return
	case ast.FloatLit:
		g.fail("floating point code generation is not supported (literal %q)", n.Token.Lexeme)
	case ast.Var:
		g.chain(n)
	case ast.RelExpr:
		g.relExpr(n)
	case ast.AddExpr, ast.MultExpr:
		g.dyadicExpr(n)
	case ast.Not:
		g.notExpr(n)
	case ast.Sign:
		g.signExpr(n)
	}
}

func (g *generator) relExpr(n *ast.Node) {
	lhs, rhs := n.Child(0), n.Child(1)
	g.expr(rhs)
	g.expr(lhs)
	if g.failed() {
		return
	}
	n.Lines = append(n.Lines, rhs.Lines...)
	n.Lines = append(n.Lines, lhs.Lines...)

	g.pool.withN(3, func(regs []string) {
		lhsReg, rhsReg, resReg := regs[0], regs[1], regs[2]
		g.loadInReg(&n.Lines, lhs, lhsReg)
		g.loadInReg(&n.Lines, rhs, rhsReg)
		n.Lines = append(n.Lines, ast.Line{Op: opToInstruction[n.Token.Kind], Args: []string{resReg, lhsReg, rhsReg}})
	})
}

// dyadicExpr generates an add_expr/mult_expr node: evaluate both
// operands, combine them into the result register, then store that
// register into the temporary the type checker seeded for this node.
func (g *generator) dyadicExpr(n *ast.Node) {
	lhs, rhs := n.Child(0), n.Child(1)
	g.expr(rhs)
	g.expr(lhs)
	if g.failed() {
		return
	}
	if n.TempRecord == nil {
		g.fail("internal error: %s node has no result temporary", n.Kind)
		return
	}
	n.Lines = append(n.Lines, rhs.Lines...)
	n.Lines = append(n.Lines, lhs.Lines...)

	g.pool.withN(3, func(regs []string) {
		lhsReg, rhsReg, resReg := regs[0], regs[1], regs[2]
		g.loadInReg(&n.Lines, lhs, lhsReg)
		g.loadInReg(&n.Lines, rhs, rhsReg)
		n.Lines = append(n.Lines, ast.Line{Op: opToInstruction[n.Token.Kind], Args: []string{resReg, lhsReg, rhsReg}})
		n.Lines = append(n.Lines, ast.Line{Op: "sw", Args: []string{n.TempRecord.MemoryLocation(), resReg}})
	})
}

func (g *generator) notExpr(n *ast.Node) {
	child := n.Child(0)
	g.expr(child)
	if g.failed() {
		return
	}
	n.Lines = append(n.Lines, child.Lines...)

	g.pool.withN(2, func(regs []string) {
		resReg, childReg := regs[0], regs[1]
		g.loadInReg(&n.Lines, child, childReg)
		n.Lines = append(n.Lines, ast.Line{Op: opToInstruction[n.Token.Kind], Args: []string{resReg, childReg}})
		if n.TempRecord != nil {
			n.Lines = append(n.Lines, ast.Line{Op: "sw", Args: []string{n.TempRecord.MemoryLocation(), resReg}})
		}
	})
}

func (g *generator) signExpr(n *ast.Node) {
	child := n.Child(0)
	g.expr(child)
	if g.failed() {
		return
	}
	if n.TempRecord == nil {
		g.fail("internal error: sign node has no result temporary")
		return
	}
	n.Lines = append(n.Lines, child.Lines...)

	g.pool.withN(2, func(regs []string) {
		resReg, childReg := regs[0], regs[1]
		g.loadInReg(&n.Lines, child, childReg)
		n.Lines = append(n.Lines, ast.Line{Op: opToInstruction[n.Token.Kind], Args: []string{resReg, "r0", childReg}})
		n.Lines = append(n.Lines, ast.Line{Op: "sw", Args: []string{n.TempRecord.MemoryLocation(), resReg}})
	})
}

// --- variable / call chains -------------------------------------------------

// chain generates a var or f_call_stat node: a '.'-joined sequence of
// data_member/f_call segments. Grounded on code_gen.py's _visit_var,
// which _visit_f_call_stat simply delegates to — both node kinds share
// this one algorithm in the teacher, and do here too.
//
// record tracks the composite declared-record offset accumulated across
// plain (non-indexed) data_member segments; dynTemp tracks whichever
// dynamically-computed address (an indexed field's offset temp, or the
// implicit "this" pointer slot) the next segment's address should be
// read through, mirroring the teacher's dual use of node/child
// "temp_record" fields for both jobs.
func (g *generator) chain(n *ast.Node) {
	segs := n.Children
	if len(segs) == 0 || segs[0].Record == nil {
		return
	}
	first := segs[0].Record
	record := &symtab.Record{Type: first.Type, Kind: symtab.TempRecord, Location: first.Location}

	var dynTemp *symtab.Record
	if first.Kind == symtab.DataRecord {
		dynTemp = &symtab.Record{Type: first.Type, Kind: symtab.TempRecord, Location: first.Location, Offset: 8}
	}

	for _, seg := range segs {
		if g.failed() {
			return
		}
		if seg.Record != nil {
			typ := seg.Record.Type
			if seg.Kind == ast.FCall && seg.Record.ReturnType != nil {
				typ = *seg.Record.ReturnType
			}
			if typ.Base != nil && typ.Base.Name == "float" {
				g.fail("floating point code generation is not supported (%q)", seg.Record.Name)
				return
			}
		}
		if seg.Kind == ast.DataMember {
			g.dataMemberSegment(n, seg, record, &dynTemp)
		} else {
			g.callSegment(n, seg, record)
		}
	}

	n.Record = record
	n.TempRecord = dynTemp
}

func (g *generator) dataMemberSegment(n, seg *ast.Node, record *symtab.Record, dynTemp **symtab.Record) {
	record.Offset += seg.Record.Offset
	indexList := seg.Child(1)
	if len(indexList.Children) == 0 {
		return
	}

	var offsetCode []ast.Line
	g.pool.withN(2, func(regs []string) {
		ofsReg, tmpReg := regs[0], regs[1]

		var op string
		var addr []string
		switch {
		case *dynTemp != nil:
			op, addr = "lw", []string{(*dynTemp).MemoryLocation()}
		case seg.Record.IsPointer():
			op, addr = "lw", []string{seg.Record.MemoryLocation()}
		default:
			op, addr = "addi", []string{"r14", strconv.Itoa(-record.Offset)}
		}
		offsetCode = append(offsetCode, ast.Line{Op: op, Args: append([]string{ofsReg}, addr...)})

		for i, index := range indexList.Children {
			g.expr(index)
			if g.failed() {
				return
			}
			n.Lines = append(n.Lines, index.Lines...)
			g.loadInReg(&offsetCode, index, tmpReg)
			offsetCode = append(offsetCode, ast.Line{Op: "muli", Args: []string{tmpReg, tmpReg, strconv.Itoa(seg.Record.Type.MulForDim(i))}})
			offsetCode = append(offsetCode, ast.Line{Op: "sub", Args: []string{ofsReg, ofsReg, tmpReg}})
		}

		if seg.TempRecord == nil {
			g.fail("internal error: indexed data_member segment has no offset temporary")
			return
		}
		offsetCode = append(offsetCode, ast.Line{Op: "sw", Args: []string{seg.TempRecord.MemoryLocation(), ofsReg}})
	})
	if g.failed() {
		return
	}
	n.Lines = append(n.Lines, offsetCode...)
	record.Offset = 0
	*dynTemp = seg.TempRecord
}

func (g *generator) callSegment(n, seg *ast.Node, record *symtab.Record) {
	if seg.Record == nil || seg.Record.Table == nil {
		g.fail("internal error: call segment missing its resolved function record")
		return
	}
	offset := 8 + g.scope.FrameSize

	if strings.Contains(seg.Record.Table.Name, "::") {
		g.pool.with(func(reg string) {
			if n.TempRecord != nil {
				n.Lines = append(n.Lines, ast.Line{Op: "lw", Args: []string{reg, n.TempRecord.MemoryLocation()}})
				n.Lines = append(n.Lines, ast.Line{Op: "addi", Args: []string{reg, reg, strconv.Itoa(-record.Offset)}})
			} else {
				n.Lines = append(n.Lines, ast.Line{Op: "addi", Args: []string{reg, "r14", strconv.Itoa(-record.Offset)}})
			}
			n.Lines = append(n.Lines, ast.Line{Op: "sw", Args: []string{strconv.Itoa(-offset) + "(r14)", reg}})
		})
		offset += 4
	}

	for _, arg := range seg.Child(1).Children {
		g.expr(arg)
		if g.failed() {
			return
		}
		n.Lines = append(n.Lines, arg.Lines...)
		g.pool.with(func(reg string) {
			if arg.Record != nil && arg.Record.Type.IsComplex() {
				n.Lines = append(n.Lines, ast.Line{Op: "addi", Args: []string{reg, "r14", strconv.Itoa(-arg.Record.Offset)}})
			} else {
				g.loadInReg(&n.Lines, arg, reg)
			}
			n.Lines = append(n.Lines, ast.Line{Op: "sw", Args: []string{strconv.Itoa(-offset) + "(r14)", reg}})
		})
		switch {
		case arg.Record != nil && arg.Record.Type.IsComplex():
			offset += 4
		case arg.Record != nil:
			offset += arg.Record.Type.Size()
		default:
			offset += 4
		}
	}

	g.withFrame(&n.Lines, func() {
		n.Lines = append(n.Lines, ast.Line{Op: "jl", Args: []string{"r15", g.mangler.get(seg.Record.Table.Name, "func")}})
	})

	if seg.TempRecord == nil {
		g.fail("internal error: call segment has no return-value temporary")
		return
	}
	g.pool.with(func(reg string) {
		n.Lines = append(n.Lines, ast.Line{Op: "lw", Args: []string{reg, strconv.Itoa(-g.scope.FrameSize) + "(r14)"}})
		n.Lines = append(n.Lines, ast.Line{Op: "sw", Args: []string{seg.TempRecord.MemoryLocation(), reg}})
	})
	record.Offset = seg.TempRecord.Offset
}

// --- load/store/frame helpers ------------------------------------------------

// withFrame widens the current function's frame by its own declared size,
// runs fn, then narrows it back — the caller-side half of every call's
// stack discipline (spec §4.4).
func (g *generator) withFrame(lines *[]ast.Line, fn func()) {
	*lines = append(*lines, ast.Line{Op: "addi", Args: []string{"r14", "r14", strconv.Itoa(-g.scope.FrameSize)}, Comment: "increment stack frame"})
	fn()
	*lines = append(*lines, ast.Line{Op: "subi", Args: []string{"r14", "r14", strconv.Itoa(-g.scope.FrameSize)}, Comment: "decrement stack frame"})
}

// dereference loads record's own stack slot as an address into a scratch
// register, then loads -offset(scratch) into register — the shared
// "load through a pointer" step used both for pointer parameters and for
// reading through a dynamic offset temp.
func (g *generator) dereference(lines *[]ast.Line, record *symtab.Record, offset int, register string) {
	g.pool.with(func(addrReg string) {
		*lines = append(*lines, ast.Line{Op: "lw", Args: []string{addrReg, record.MemoryLocation()}})
		*lines = append(*lines, ast.Line{Op: "lw", Args: []string{register, strconv.Itoa(-offset) + "(" + addrReg + ")"}})
	})
}

// loadInReg dispatches on what n actually holds: an expression result
// stored in its own temporary (n.TempRecord set, no n.Record), a
// dynamically-addressed value (n.TempRecord holds the address, n.Record
// the displacement from it), a pointer parameter, a plain stack slot, or
// a literal embedded as an addi immediate.
func (g *generator) loadInReg(lines *[]ast.Line, n *ast.Node, register string) {
	switch {
	case n.TempRecord != nil && n.Record == nil:
		*lines = append(*lines, ast.Line{Op: "lw", Args: []string{register, n.TempRecord.MemoryLocation()}})
	case n.TempRecord != nil:
		g.dereference(lines, n.TempRecord, n.Record.Offset, register)
	case n.Record != nil:
		if n.Record.IsPointer() {
			g.dereference(lines, n.Record, 0, register)
		} else {
			*lines = append(*lines, ast.Line{Op: "lw", Args: []string{register, n.Record.MemoryLocation()}})
		}
	case n.Token != nil:
		*lines = append(*lines, ast.Line{Op: "addi", Args: []string{register, "r0", n.Token.Lexeme}})
	default:
		g.fail("internal error: no record, temp, or literal to load for %s node", n.Kind)
	}
}

// storeFromReg mirrors loadInReg for the write direction.
func (g *generator) storeFromReg(lines *[]ast.Line, n *ast.Node, register string) {
	switch {
	case n.TempRecord != nil:
		g.pool.with(func(addrReg string) {
			*lines = append(*lines, ast.Line{Op: "lw", Args: []string{addrReg, n.TempRecord.MemoryLocation()}})
			*lines = append(*lines, ast.Line{Op: "sw", Args: []string{strconv.Itoa(-n.Record.Offset) + "(" + addrReg + ")", register}})
		})
	case n.Record != nil:
		*lines = append(*lines, ast.Line{Op: "sw", Args: []string{n.Record.MemoryLocation(), register}})
	default:
		g.fail("internal error: no record or temp to store into for %s node", n.Kind)
	}
}
