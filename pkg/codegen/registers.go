package codegen

import (
	"fmt"

	"oolang.dev/compiler/pkg/utils"
)

// registerPool models moon's twelve general-purpose registers (r1-r12) as
// a LIFO free list, grounded on original_source/gen/vis/code_gen.py's
// _register_stack/pop_reg/push_reg/register() contextmanager trio and
// built on pkg/utils.Stack.
type registerPool struct {
	free utils.Stack[string]
}

func newRegisterPool() *registerPool {
	regs := make([]string, 0, 12)
	for i := 12; i >= 1; i-- {
		regs = append(regs, fmt.Sprintf("r%d", i))
	}
	return &registerPool{free: utils.NewStack(regs...)}
}

func (p *registerPool) pop() string {
	r, err := p.free.Pop()
	if err != nil {
		panic("code generator exhausted its register pool")
	}
	return r
}

func (p *registerPool) push(r string) {
	p.free.Push(r)
}

// with allocates one register for the duration of fn and returns it to
// the pool afterward, standing in for the Python generator's @contextmanager
// register() helper.
func (p *registerPool) with(fn func(reg string)) {
	r := p.pop()
	defer p.push(r)
	fn(r)
}

// withN allocates n registers at once, for the nested "with a, b, c"
// call sites the teacher's code generator uses for binary operators and
// call sequencing.
func (p *registerPool) withN(n int, fn func(regs []string)) {
	regs := make([]string, n)
	for i := range regs {
		regs[i] = p.pop()
	}
	defer func() {
		for _, r := range regs {
			p.push(r)
		}
	}()
	fn(regs)
}
