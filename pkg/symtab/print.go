package symtab

import "strings"

// String renders a RecordKind the way the printed symbol tables do,
// lower-cased, matching original_source/sem/table.py's
// RecordType.__str__.
func (k RecordKind) String() string {
	switch k {
	case ClassRecord:
		return "class"
	case DataRecord:
		return "data"
	case FunctionRecord:
		return "function"
	case ParamRecord:
		return "param"
	case LocalRecord:
		return "local"
	case TempRecord:
		return "temp"
	default:
		return "unknown"
	}
}

// String renders a Visibility the way the printed symbol tables do.
func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Private:
		return "private"
	default:
		return ""
	}
}

// FormatType renders a record's declared type for the '.outsymboltables'
// artifact: a function prefixes its parameter-type tuple, then the base
// type name followed by one "[]" per declared dimension (empty brackets
// for an unspecified-size parameter dimension).
func (r *Record) FormatType() string {
	var b strings.Builder
	if r.Kind == FunctionRecord {
		parts := make([]string, len(r.Params))
		for i, p := range r.Params {
			parts[i] = p.FormatType()
		}
		b.WriteString("(")
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString("): ")
	}
	if r.Type.Base != nil {
		b.WriteString(r.Type.Base.Name)
	}
	for _, d := range r.Type.Dims {
		b.WriteString("[")
		if d != nil {
			b.WriteString(d.Lexeme)
		}
		b.WriteString("]")
	}
	return b.String()
}

// fields is one record's printed row: kind, name, its type (everything
// but a bare class declaration, which has none of its own), and
// visibility when the record carries one.
func (r *Record) fields() []string {
	out := []string{r.Kind.String(), r.Name}
	if r.Kind != ClassRecord {
		out = append(out, r.FormatType())
	}
	if r.Visibility != NoVisibility {
		out = append(out, r.Visibility.String())
	}
	return out
}

// tableLine is one row of a formatted table: a horizontal rule, a plain
// cell row, or a nested sub-table (a class or function's own table,
// printed indented under the record that owns it).
type tableLine struct {
	hrule  bool
	cells  []string
	nested *tableFormatter
}

type tableFormatter struct {
	lines   []tableLine
	columns []int
}

// PrintTables renders the globals table and everything reachable from
// it as the box-drawing nested form the '.outsymboltables' artifact
// uses. Grounded on original_source/sem/output.py's TableFormatter: a
// two-pass render (gather every row first, then unify column widths
// across every nested table) so a deeply nested function's columns
// still align with its enclosing class's.
func PrintTables(globals *SymbolTable) string {
	return strings.Join(newTableFormatter(globals, false).render(), "\n")
}

func newTableFormatter(t *SymbolTable, showInherits bool) *tableFormatter {
	f := &tableFormatter{lines: formatTableLines(t, showInherits)}
	f.columns = f.columnSizes()

	maxColumns := append([]int(nil), f.columns...)
	for _, line := range f.lines {
		if line.nested == nil {
			continue
		}
		for len(maxColumns) < len(line.nested.columns) {
			maxColumns = append(maxColumns, 0)
		}
		for i, c := range line.nested.columns {
			if c > maxColumns[i] {
				maxColumns[i] = c
			}
		}
	}
	f.updateColumnSizes(maxColumns)
	return f
}

func formatTableLines(t *SymbolTable, showInherits bool) []tableLine {
	lines := []tableLine{{hrule: true}, {cells: []string{"table", t.Name}}, {hrule: true}}
	if showInherits {
		names := []string{"inherits"}
		if len(t.Inherits) == 0 {
			names = append(names, "none")
		}
		for _, p := range t.Inherits {
			names = append(names, p.Name)
		}
		lines = append(lines, tableLine{cells: names})
	}

	for _, name := range t.Names() {
		recs, _ := t.Lookup(name)
		for _, r := range recs {
			lines = append(lines, tableLine{cells: r.fields()})
			if r.Table != nil {
				lines = append(lines, tableLine{nested: newTableFormatter(r.Table, r.Kind == ClassRecord)})
			}
		}
	}
	lines = append(lines, tableLine{hrule: true})
	return lines
}

func (f *tableFormatter) updateColumnSizes(max []int) {
	for i := 0; i < len(f.columns) && i < len(max); i++ {
		f.columns[i] = max[i]
	}
	for _, line := range f.lines {
		if line.nested != nil {
			line.nested.updateColumnSizes(max)
		}
	}
}

func (f *tableFormatter) columnSizes() []int {
	width := 0
	for _, line := range f.lines {
		if !line.hrule && line.nested == nil && len(line.cells) > width {
			width = len(line.cells)
		}
	}
	columns := make([]int, width)
	for _, line := range f.lines {
		if line.hrule || line.nested != nil {
			continue
		}
		for i, c := range line.cells {
			if len(c) > columns[i] {
				columns[i] = len(c)
			}
		}
	}
	return columns
}

// render produces this table's fully column-aligned, box-bordered text,
// including every nested sub-table indented under its owning record.
func (f *tableFormatter) render() []string {
	var out []string
	for _, line := range f.lines {
		switch {
		case line.hrule:
			out = append(out, "=")
		case line.nested != nil:
			for _, l := range line.nested.render() {
				out = append(out, "|     "+l)
			}
		default:
			n := len(line.cells)
			cols := append([]int(nil), f.columns[:n]...)
			extra := 3 * (len(f.columns) - n)
			for _, c := range f.columns[n:] {
				extra += c
			}
			cols[n-1] += extra
			parts := make([]string, n)
			for i, c := range line.cells {
				parts[i] = padRight(c, cols[i])
			}
			out = append(out, "| "+strings.Join(parts, " | "))
		}
	}

	maxLen := 0
	for _, l := range out {
		if n := len(strings.TrimSpace(l)); n > maxLen {
			maxLen = n
		}
	}
	for i, l := range out {
		if strings.HasPrefix(l, "=") {
			out[i] = padRightWith(l, maxLen+2, '=')
		} else {
			out[i] = padRight(strings.TrimSpace(l), maxLen) + " |"
		}
	}
	return out
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

func padRightWith(s string, n int, c byte) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(string(c), n-len(s))
}
