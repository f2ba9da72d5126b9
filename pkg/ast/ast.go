// Package ast defines the compiler's typed syntax tree. Per the design's
// own guidance, node kinds are a single tagged variant with per-variant
// fields rather than a class hierarchy per node kind (the approach the
// teacher's Jack front end takes in pkg/jack/jack.go, where every
// statement and expression gets its own Go type implementing a marker
// interface). That shape fits a language with a handful of statement/
// expression forms; this grammar has three different "shapes" (leaf,
// fixed-arity group, variable-arity list) repeated across ~30 kinds, so
// a single Node struct dispatched on a Kind tag is both the leaner and
// the more idiomatic fit — visitors (pkg/sema, pkg/codegen) switch on
// Kind instead of doing a type switch over 30 concrete struct types.
package ast

import (
	"oolang.dev/compiler/pkg/symtab"
	"oolang.dev/compiler/pkg/token"
)

// Kind tags a Node with its grammar production and its shape family
// (leaf, fixed-arity group, or variable-arity list; see the package doc
// and spec §3 for the authoritative list).
type Kind int

const (
	// Leaves: carry an optional token, no children.
	Ident Kind = iota
	TypeRef
	IntLit
	FloatLit
	Visibility
	ScopeQualifier
	Epsilon

	// Groups: fixed arity per kind.
	Prog
	Main
	ClassDecl
	FuncDecl
	FuncDef
	MemberDecl
	VarDecl
	FuncParam
	DataMember
	FCall
	IfStat
	AssignStat
	WhileStat
	ReadStat
	WriteStat
	ReturnStat
	RelExpr
	AddExpr
	MultExpr
	Not
	Sign

	// Lists: variable arity.
	ClassList
	FuncList
	InherList
	MemberList
	LocalList
	ParamList
	DimList
	StatBlock
	Var
	FCallStat
	IndexList
	ArgList
)

var kindNames = map[Kind]string{
	Ident: "id", TypeRef: "type", IntLit: "integer_literal", FloatLit: "float_literal",
	Visibility: "visibility", ScopeQualifier: "scope_qualifier", Epsilon: "epsilon",

	Prog: "prog", Main: "main", ClassDecl: "class_decl", FuncDecl: "func_decl",
	FuncDef: "func_def", MemberDecl: "member_decl", VarDecl: "var_decl",
	FuncParam: "func_param", DataMember: "data_member", FCall: "f_call",
	IfStat: "if_stat", AssignStat: "assign_stat", WhileStat: "while_stat",
	ReadStat: "read_stat", WriteStat: "write_stat", ReturnStat: "return_stat",
	RelExpr: "rel_expr", AddExpr: "add_expr", MultExpr: "mult_expr",
	Not: "not", Sign: "sign",

	ClassList: "class_list", FuncList: "func_list", InherList: "inher_list",
	MemberList: "member_list", LocalList: "local_list", ParamList: "param_list",
	DimList: "dim_list", StatBlock: "stat_block", Var: "var",
	FCallStat: "f_call_stat", IndexList: "index_list", ArgList: "arg_list",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown_kind"
}

// Line is one emitted assembly instruction, attached to the node whose
// code generation produced it. Kept in pkg/ast (rather than pkg/codegen)
// since it is a Node attribute per spec §3 ("a growing list of emitted
// assembly lines"); pkg/codegen only assembles Lines collected this way
// into its Function/Program containers, it doesn't own the type.
type Line struct {
	Op      string
	Args    []string
	Label   string
	Comment string
}

// Node is the single tagged-variant AST type. Every production in the
// grammar builds a tree of these; which fields are meaningful depends on
// Kind (a Leaf kind uses only Token, a List kind ignores Token and relies
// entirely on Children, a Group kind uses a fixed number of Children in
// a kind-specific order documented where each is constructed).
type Node struct {
	Kind     Kind
	Token    *token.Token // set for leaves and for group nodes keyed by an operator/defining identifier
	Children []*Node
	Parent   *Node

	Record     *symtab.Record // attached by the table builder for declaration-shaped nodes
	TempRecord *symtab.Record // attached by the type checker for expression-shaped nodes needing a temporary

	Lines []Line
}

// New builds a node of the given kind with the given children, wiring up
// parent back-references.
func New(kind Kind, children ...*Node) *Node {
	n := &Node{Kind: kind, Children: children}
	for _, c := range children {
		if c != nil {
			c.Parent = n
		}
	}
	return n
}

// NewLeaf builds a token-carrying leaf node.
func NewLeaf(kind Kind, tok token.Token) *Node {
	return &Node{Kind: kind, Token: &tok}
}

// NewOptLeaf builds a leaf that may or may not carry a token — used for
// fixed-arity Group slots that are grammatically always present as a
// child but whose token is absent for a given parse (e.g. a func_def's
// scope-qualifier slot when the function isn't scoped to a class).
func NewOptLeaf(kind Kind, tok *token.Token) *Node {
	if tok == nil {
		return &Node{Kind: kind}
	}
	return NewLeaf(kind, *tok)
}

// WithToken attaches a defining token (e.g. the operator of a binary
// expression, or the introducing keyword of a statement) to a group node
// built by New, and returns the same node for chaining at the call site.
func (n *Node) WithToken(tok token.Token) *Node {
	n.Token = &tok
	return n
}

// Append adds a child to a list-shaped node, wiring its parent link.
func (n *Node) Append(child *Node) {
	if child == nil {
		return
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Child returns the i-th child, or nil if it doesn't exist (so a caller
// can probe an index, e.g. the last child of a possibly empty list,
// without a bounds check of its own).
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// Emit appends one assembly line to this node's code.
func (n *Node) Emit(line Line) {
	n.Lines = append(n.Lines, line)
}

// AllLines concatenates this node's immediate children's lines, in child
// order, followed by this node's own — the shape pkg/codegen needs when
// assembling a statement block's body (or a function's) from the
// statement nodes it already walked: by the time code generation reaches
// a stat_block, each statement child's Lines is already its own fully
// composed instruction sequence, so gathering them is a one-level
// concatenation rather than a further recursive descent.
func (n *Node) AllLines() []Line {
	var out []Line
	for _, c := range n.Children {
		out = append(out, c.Lines...)
	}
	out = append(out, n.Lines...)
	return out
}
