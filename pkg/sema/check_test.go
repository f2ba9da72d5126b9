package sema_test

import (
	"strings"
	"testing"

	"oolang.dev/compiler/pkg/sema"
	"oolang.dev/compiler/pkg/symtab"
)

func analyzeNoOffsets(t *testing.T, src string) sema.Diagnostics {
	t.Helper()
	root := mustParse(t, src)
	ctx := symtab.NewContext()
	var diags sema.Diagnostics
	diags = append(diags, sema.BuildTables(root, ctx)...)
	diags = append(diags, sema.CheckTables(root, ctx)...)
	return diags
}

func TestCheckTablesDetectsInheritanceCycle(t *testing.T) {
	diags := analyzeNoOffsets(t, `
class A inherits B
{
};

class B inherits A
{
};

main
do
end
`)
	if !containsSubstr(diags, "circular") {
		t.Fatalf("expected a circular-dependency diagnostic, got %v", diagStrings(diags))
	}
}

func TestCheckTablesDetectsAggregationCycle(t *testing.T) {
	diags := analyzeNoOffsets(t, `
class A
{
	public B b;
};

class B
{
	public A a;
};

main
do
end
`)
	if !containsSubstr(diags, "circular") {
		t.Fatalf("expected a circular-dependency diagnostic for mutual aggregation, got %v", diagStrings(diags))
	}
}

func countSubstr(diags sema.Diagnostics, substr string) int {
	n := 0
	for _, s := range diagStrings(diags) {
		if strings.Contains(s, substr) {
			n++
		}
	}
	return n
}

func TestCheckTablesReportsInheritanceCycleOnce(t *testing.T) {
	diags := analyzeNoOffsets(t, `
class A inherits B
{
};

class B inherits A
{
};

main
do
end
`)
	if got := countSubstr(diags, "circular"); got != 1 {
		t.Fatalf("expected exactly 1 circular-dependency diagnostic, got %d: %v", got, diagStrings(diags))
	}
}

func TestCheckTablesAllowsValidInheritanceChain(t *testing.T) {
	diags := analyzeNoOffsets(t, `
class A
{
	public integer x;
};

class B inherits A
{
	public integer y;
};

main
do
end
`)
	if containsSubstr(diags, "circular") {
		t.Fatalf("did not expect a circular-dependency diagnostic, got %v", diagStrings(diags))
	}
}

func TestCheckTablesDetectsDuplicateDataMember(t *testing.T) {
	diags := analyzeNoOffsets(t, `
class A
{
	public integer x;
	public integer x;
};

main
do
end
`)
	if !containsSubstr(diags, "already declared") {
		t.Fatalf("expected a duplicate-declaration diagnostic, got %v", diagStrings(diags))
	}
}

func TestCheckTablesAllowsOverloadsByParameterType(t *testing.T) {
	diags := analyzeNoOffsets(t, `
class A
{
	public f(): void;
	public f(integer x): void;
};

A::f(): void
do
end;

A::f(integer x): void
do
end;

main
do
end
`)
	if containsSubstr(diags, "already declared") {
		t.Fatalf("did not expect a duplicate-declaration diagnostic for distinct overloads, got %v", diagStrings(diags))
	}
}

func TestCheckTablesDetectsDeclaredWithoutDefinition(t *testing.T) {
	diags := analyzeNoOffsets(t, `
class A
{
	public f(): void;
};

main
do
end
`)
	if !containsSubstr(diags, "never defined") {
		t.Fatalf("expected a declared-without-definition diagnostic, got %v", diagStrings(diags))
	}
}

func TestCheckTablesDetectsUndeclaredType(t *testing.T) {
	diags := analyzeNoOffsets(t, `
class A
{
	public Ghost g;
};

main
do
end
`)
	if !containsSubstr(diags, "has not been declared") {
		t.Fatalf("expected an undeclared-type diagnostic, got %v", diagStrings(diags))
	}
}

func TestCheckTablesWarnsOnShadowedMember(t *testing.T) {
	diags := analyzeNoOffsets(t, `
class A
{
	public integer x;
};

class B inherits A
{
	public integer x;
};

main
do
end
`)
	if !containsSubstr(diags, "shadows") {
		t.Fatalf("expected a shadowed-member warning, got %v", diagStrings(diags))
	}
}

func TestCheckTablesDetectsMissingReturnOnSomePath(t *testing.T) {
	diags := analyzeNoOffsets(t, `
f(): integer
do
	if (1 < 2) then do
		return(1);
	end else do
	end;
end;

main
do
end
`)
	if !containsSubstr(diags, "does not return a value on every path") {
		t.Fatalf("expected a missing-return diagnostic, got %v", diagStrings(diags))
	}
}

func TestCheckTablesAllowsReturnOnEveryPath(t *testing.T) {
	diags := analyzeNoOffsets(t, `
f(): integer
do
	if (1 < 2) then do
		return(1);
	end else do
		return(2);
	end;
end;

main
do
end
`)
	if containsSubstr(diags, "does not return a value on every path") {
		t.Fatalf("did not expect a missing-return diagnostic, got %v", diagStrings(diags))
	}
}

func TestCheckTablesRejectsWhileAsGuaranteedReturn(t *testing.T) {
	diags := analyzeNoOffsets(t, `
f(): integer
do
	while (1 < 2) do
		return(1);
	end;
end;

main
do
end
`)
	if !containsSubstr(diags, "does not return a value on every path") {
		t.Fatalf("a while loop's body must not count as a guaranteed return, got %v", diagStrings(diags))
	}
}

func TestCheckTablesWarnsOnStatementAfterReturn(t *testing.T) {
	diags := analyzeNoOffsets(t, `
f(): integer
do
	return(1);
	write(2);
end;

main
do
end
`)
	if !containsSubstr(diags, "unreachable") {
		t.Fatalf("expected an unreachable-statement warning, got %v", diagStrings(diags))
	}
}

func TestCheckTablesAllowsNoStatementAfterReturn(t *testing.T) {
	diags := analyzeNoOffsets(t, `
f(): integer
do
	return(1);
end;

main
do
end
`)
	if containsSubstr(diags, "unreachable") {
		t.Fatalf("did not expect an unreachable-statement warning, got %v", diagStrings(diags))
	}
}
