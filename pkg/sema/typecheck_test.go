package sema_test

import (
	"testing"

	"oolang.dev/compiler/pkg/ast"
	"oolang.dev/compiler/pkg/sema"
	"oolang.dev/compiler/pkg/symtab"
)

func typeCheck(t *testing.T, src string) (*ast.Node, sema.Diagnostics) {
	t.Helper()
	root := mustParse(t, src)
	ctx := symtab.NewContext()
	var diags sema.Diagnostics
	diags = append(diags, sema.BuildTables(root, ctx)...)
	diags = append(diags, sema.CheckTables(root, ctx)...)
	diags = append(diags, sema.CheckTypes(root, ctx)...)
	return root, diags
}

func TestCheckTypesDetectsAssignmentMismatch(t *testing.T) {
	_, diags := typeCheck(t, `
main
local
	integer x;
	float y;
do
	x = y;
end
`)
	if !containsSubstr(diags, "cannot assign") {
		t.Fatalf("expected an assignment type-mismatch diagnostic, got %v", diagStrings(diags))
	}
}

func TestCheckTypesAllowsMatchingAssignment(t *testing.T) {
	_, diags := typeCheck(t, `
main
local
	integer x;
	integer y;
do
	x = y;
end
`)
	if containsSubstr(diags, "cannot assign") {
		t.Fatalf("did not expect a type-mismatch diagnostic, got %v", diagStrings(diags))
	}
}

func TestCheckTypesDetectsReturnMismatch(t *testing.T) {
	_, diags := typeCheck(t, `
f(): integer
do
	return(1.5);
end;

main
do
end
`)
	if !containsSubstr(diags, "does not match") {
		t.Fatalf("expected a return-type-mismatch diagnostic, got %v", diagStrings(diags))
	}
}

func TestCheckTypesDetectsArrayIndexMustBeInteger(t *testing.T) {
	_, diags := typeCheck(t, `
main
local
	integer a[5];
	float f;
do
	write(a[f]);
end
`)
	if !containsSubstr(diags, "must be of type") {
		t.Fatalf("expected an array-index type diagnostic, got %v", diagStrings(diags))
	}
}

func TestCheckTypesResolvesOverloadByArgumentType(t *testing.T) {
	_, diags := typeCheck(t, `
f(integer x): void
do
end;

f(float x): void
do
end;

main
local
	float y;
do
	f(y);
end
`)
	if containsSubstr(diags, "no matching overload") {
		t.Fatalf("expected the float overload to resolve cleanly, got %v", diagStrings(diags))
	}
}

func TestCheckTypesReportsNoMatchingOverload(t *testing.T) {
	_, diags := typeCheck(t, `
f(integer x): void
do
end;

main
local
	float y;
do
	f(y);
end
`)
	if !containsSubstr(diags, "no matching overload") {
		t.Fatalf("expected a no-matching-overload diagnostic, got %v", diagStrings(diags))
	}
}

func TestCheckTypesAllocatesTempForArithmeticExpression(t *testing.T) {
	root, diags := typeCheck(t, `
main
local
	integer x;
	integer y;
do
	write(x + y);
end
`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diagStrings(diags))
	}
	write := root.Child(2).Child(1).Child(0)
	addExpr := write.Child(0)
	if addExpr.Kind != ast.AddExpr {
		t.Fatalf("expected an AddExpr, got %v", addExpr.Kind)
	}
	if addExpr.TempRecord == nil {
		t.Fatalf("expected a temporary record to be allocated for an arithmetic expression")
	}
}

func TestCheckTypesDoesNotAllocateTempForBooleanExpression(t *testing.T) {
	root, diags := typeCheck(t, `
main
do
	write(1 < 2);
end
`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diagStrings(diags))
	}
	write := root.Child(2).Child(1).Child(0)
	rel := write.Child(0)
	if rel.Kind != ast.RelExpr {
		t.Fatalf("expected a RelExpr, got %v", rel.Kind)
	}
	if rel.TempRecord != nil {
		t.Fatalf("boolean-valued expressions should never receive a temporary record")
	}
}

func TestCheckTypesRejectsFloatArithmetic(t *testing.T) {
	_, diags := typeCheck(t, `
main
local
	float x;
	float y;
do
	write(x + y);
end
`)
	if !containsSubstr(diags, "floating point arithmetic is not supported") {
		t.Fatalf("expected a float-arithmetic-unsupported diagnostic, got %v", diagStrings(diags))
	}
}
