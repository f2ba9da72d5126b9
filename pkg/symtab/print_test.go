package symtab_test

import (
	"strings"
	"testing"

	"oolang.dev/compiler/pkg/symtab"
)

func TestPrintTablesRendersBoxedRows(t *testing.T) {
	ctx := symtab.NewContext()
	integer := ctx.Intern("integer")

	ctx.Globals.Insert(&symtab.Record{Name: "x", Kind: symtab.DataRecord, Type: symtab.SymbolType{Base: integer}})

	out := symtab.PrintTables(ctx.Globals)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) < 4 {
		t.Fatalf("expected at least 4 rendered lines, got %d:\n%s", len(lines), out)
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "|") && !strings.HasPrefix(l, "=") {
			t.Errorf("expected every line to start with '|' or '=', got %q", l)
		}
	}
	if !strings.Contains(out, "globals") {
		t.Errorf("expected the table name to appear, got:\n%s", out)
	}
	if !strings.Contains(out, "data") || !strings.Contains(out, "x") {
		t.Errorf("expected the data member row to appear, got:\n%s", out)
	}
}

func TestPrintTablesNestsClassTables(t *testing.T) {
	ctx := symtab.NewContext()
	integer := ctx.Intern("integer")

	class := symtab.NewSymbolTable("C")
	class.Insert(&symtab.Record{Name: "x", Kind: symtab.DataRecord, Visibility: symtab.Public, Type: symtab.SymbolType{Base: integer}})
	classType := ctx.Intern("C")
	classType.SetTable(class)

	ctx.Globals.Insert(&symtab.Record{Name: "C", Kind: symtab.ClassRecord, Table: class})

	out := symtab.PrintTables(ctx.Globals)
	if !strings.Contains(out, "class") || !strings.Contains(out, "public") {
		t.Errorf("expected the nested class table's rows to appear, got:\n%s", out)
	}
}
