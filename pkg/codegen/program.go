package codegen

import (
	"fmt"
	"strings"

	"oolang.dev/compiler/pkg/ast"
	"oolang.dev/compiler/pkg/utils"
)

// Function is one emitted moon routine: a name and the sequence of
// assembly lines making up its body. Grounded on
// original_source/gen/models.py's Function, whose format() brackets a
// routine's lines with begin/end comments the way this render does.
type Function struct {
	Name  string
	Lines []ast.Line
}

func (f *Function) emit(line ast.Line) {
	f.Lines = append(f.Lines, line)
}

func (f *Function) render(out *strings.Builder) {
	fmt.Fprintf(out, "%% begin function %s definition\n", f.Name)
	for _, l := range f.Lines {
		renderLine(out, l)
	}
	fmt.Fprintf(out, "%% end function %s definition\n", f.Name)
}

// Program is the whole translated unit: every function in emission
// order, followed by the static storage its statements reserved along
// the way. Grounded on original_source/gen/models.py's Prog, whose
// reserve()/output() this mirrors; OrderedMap (already built for
// pkg/symtab) supplies the same "insert once, keep order" dedup the
// Python OrderedDict gave the original.
type Program struct {
	Functions []*Function
	reserved  utils.OrderedMap[string, ast.Line]
}

// NewProgram returns an empty program ready to accept functions.
func NewProgram() *Program {
	return &Program{}
}

func (p *Program) addFunction(f *Function) {
	p.Functions = append(p.Functions, f)
}

// reserve declares a zero-initialized buffer named tag, size bytes wide,
// a no-op if tag was already reserved — read and write statements
// scattered across the program all borrow the same conversion buffer.
func (p *Program) reserve(tag string, size int, comment string) {
	if _, ok := p.reserved.Get(tag); ok {
		return
	}
	p.reserved.Set(tag, ast.Line{Label: tag, Op: "res", Args: []string{fmt.Sprintf("%d", size)}, Comment: comment})
}

// storeConstant declares a pre-filled, word-per-value buffer named tag
// (e.g. a literal string's characters), likewise deduplicated by tag.
func (p *Program) storeConstant(tag, comment string, values ...string) {
	if _, ok := p.reserved.Get(tag); ok {
		return
	}
	p.reserved.Set(tag, ast.Line{Label: tag, Op: "db", Args: values, Comment: comment})
}

// Render assembles every function body followed by every reserved
// declaration into the final .moon source text.
func (p *Program) Render() string {
	var out strings.Builder
	for _, f := range p.Functions {
		f.render(&out)
	}
	for _, tag := range p.reserved.Keys() {
		line, _ := p.reserved.Get(tag)
		renderLine(&out, line)
	}
	return out.String()
}

func renderLine(out *strings.Builder, l ast.Line) {
	args := strings.Join(l.Args, ", ")
	if l.Comment != "" {
		fmt.Fprintf(out, "%-7s %-5s %-15s%% %s\n", l.Label, l.Op, args, l.Comment)
		return
	}
	fmt.Fprintf(out, "%-7s %-5s %s\n", l.Label, l.Op, args)
}
