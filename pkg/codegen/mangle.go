package codegen

import (
	"fmt"
	"strings"
)

// mangler rewrites a symbol table's "::"-qualified name into a moon-legal
// label — moon symbols can't contain "::" — disambiguating with a
// per-kind counter so "func", "if", and "while" labels minted from
// differently-scoped names never collide. Grounded on
// original_source/gen/vis/code_gen.py's new_mangled/get_mangled pair.
type mangler struct {
	counter map[string]int
	names   map[mangleKey]string
}

type mangleKey struct {
	name, kind string
}

func newMangler() *mangler {
	return &mangler{counter: make(map[string]int), names: make(map[mangleKey]string)}
}

// get returns the mangled label for (name, kind), minting and caching a
// fresh one on first use and returning the same label on every later
// call for the same pair.
func (m *mangler) get(name, kind string) string {
	key := mangleKey{name, kind}
	if existing, ok := m.names[key]; ok {
		return existing
	}
	m.counter[kind]++
	mangled := fmt.Sprintf("%s%d%s", kind, m.counter[kind], strings.ReplaceAll(name, "::", "_"))
	m.names[key] = mangled
	return mangled
}

// fresh always mints a new label under kind, ignoring any cache — used
// for per-statement labels (an "if" or "while" site needs a label unique
// to that occurrence, not one shared across every if in the same scope).
func (m *mangler) fresh(name, kind string) string {
	m.counter[kind]++
	return fmt.Sprintf("%s%d%s", kind, m.counter[kind], strings.ReplaceAll(name, "::", "_"))
}
