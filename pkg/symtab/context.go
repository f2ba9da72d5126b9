package symtab

// Context is the interned-type table and globals scope for exactly one
// compilation; a fresh Context is created per call to the compiler
// pipeline and discarded afterward; nothing about it is package-level or
// shared across compilations.
type Context struct {
	types   map[string]*BaseType
	Globals *SymbolTable
}

// NewContext creates a Context with the four primitive base types
// pre-interned and a fresh, empty globals table.
func NewContext() *Context {
	c := &Context{types: make(map[string]*BaseType, 8)}
	for _, name := range []string{"integer", "float", "void", "boolean"} {
		c.types[name] = &BaseType{Name: name, Kind: Primitive}
	}
	c.Globals = NewGlobals()
	return c
}

// Intern returns the BaseType for name, interning it as a (as yet
// tableless) class type on first use. A type reference to a class is
// always resolved through Intern so that every occurrence of the same
// class name shares one BaseType, regardless of which is seen first —
// the table builder attaches the backing table once it visits the
// class_decl itself.
func (c *Context) Intern(name string) *BaseType {
	if bt, ok := c.types[name]; ok {
		return bt
	}
	bt := &BaseType{Name: name, Kind: Class}
	c.types[name] = bt
	return bt
}

// Lookup reports whether name has been interned at all, without
// creating it.
func (c *Context) Lookup(name string) (*BaseType, bool) {
	bt, ok := c.types[name]
	return bt, ok
}

// IsPrimitive reports whether name is one of the four built-in base
// types rather than a class name.
func IsPrimitive(name string) bool {
	_, ok := primitiveSizes[name]
	return ok
}
