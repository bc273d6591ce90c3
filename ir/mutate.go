package ir

import (
	"fmt"

	"tlog.app/go/loc"
)

// Mutation primitives. Region dominance of rewritten uses is the caller's
// responsibility; violating it is a bug in the caller, not a recoverable
// error, so precondition failures panic.

// SetOperand rebinds operand i of op to v, keeping use-lists consistent.
func (f *Func) SetOperand(op OpID, i int, v ValueID) {
	old := f.ops[op].Operands[i]
	if old == v {
		return
	}

	f.removeUse(old, Use{Op: op, Index: i})
	f.ops[op].Operands[i] = v
	f.addUse(v, Use{Op: op, Index: i})
}

// Operand is the flat operand of op at position i.
func (f *Func) Operand(op OpID, i int) ValueID { return f.ops[op].Operands[i] }

// ReplaceAllUsesOf rebinds every use of old to new. old ends with zero uses.
func (f *Func) ReplaceAllUsesOf(old, new ValueID) {
	if old == new {
		return
	}

	uses := f.values[old].uses
	f.values[old].uses = nil

	for _, u := range uses {
		f.ops[u.Op].Operands[u.Index] = new
	}

	f.values[new].uses = append(f.values[new].uses, uses...)
}

// MoveBefore relocates op, unchanged, to immediately precede target in
// target's block. Moving op past a use of one of its own results within
// that block is a caller bug.
func (f *Func) MoveBefore(op, target OpID) {
	assert(op != target, "move %v before itself", op)

	src := f.ops[op].block
	dst := f.ops[target].block

	at := f.opIndex(dst, target)
	if src == dst && f.opIndex(src, op) < at {
		at--
	}

	f.unlink(op)

	for _, r := range f.ops[op].Results {
		for _, u := range f.values[r].uses {
			if f.ops[u.Op].block != dst {
				continue
			}

			assert(f.opIndex(dst, u.Op) >= at, "move %v past use %v of its result", op, u.Op)
		}
	}

	f.insert(dst, at, op)
}

// Splice removes ops [from,to) of src and re-inserts them, in order, at
// position at of dst. Ownership transfers to dst.
func (f *Func) Splice(dst BlockID, at int, src BlockID, from, to int) {
	assert(from >= 0 && to <= len(f.blocks[src].Ops) && from <= to, "splice range [%v,%v)", from, to)

	if from == to {
		return
	}

	assert(src != dst, "splice within one block")

	moved := make([]OpID, to-from)
	copy(moved, f.blocks[src].Ops[from:to])

	f.blocks[src].Ops = append(f.blocks[src].Ops[:from], f.blocks[src].Ops[to:]...)

	d := &f.blocks[dst]
	d.Ops = append(d.Ops[:at], append(moved, d.Ops[at:]...)...)

	for _, op := range moved {
		f.ops[op].block = dst
	}
}

// Erase destroys op. Every result must have zero uses. Operations inside
// op's regions are destroyed with it.
func (f *Func) Erase(op OpID) {
	for _, r := range f.ops[op].Results {
		assert(len(f.values[r].uses) == 0, "erase %v: result %v still has %v uses", op, r, len(f.values[r].uses))
	}

	f.unlink(op)
	f.destroy(op)
}

func (f *Func) destroy(op OpID) {
	o := &f.ops[op]
	assert(o.live, "double erase of %v", op)

	for _, r := range o.Regions {
		for _, b := range f.regions[r].Blocks {
			// Reverse order so uses die before defs.
			ops := f.blocks[b].Ops
			for i := len(ops) - 1; i >= 0; i-- {
				inner := ops[i]

				for j, v := range f.ops[inner].Operands {
					f.removeUse(v, Use{Op: inner, Index: j})
				}

				f.destroy(inner)
			}

			f.blocks[b].Ops = nil
		}
	}

	for i, v := range o.Operands {
		f.removeUse(v, Use{Op: op, Index: i})
	}

	o.live = false
	o.Operands = nil
	o.Results = nil
	o.block = NoBlock
}

func (f *Func) opIndex(b BlockID, op OpID) int {
	for i, id := range f.blocks[b].Ops {
		if id == op {
			return i
		}
	}

	panic(fmt.Sprintf("%v: op %v not in block %v", loc.Caller(1), op, b))
}

func (f *Func) unlink(op OpID) {
	b := f.ops[op].block
	at := f.opIndex(b, op)

	f.blocks[b].Ops = append(f.blocks[b].Ops[:at], f.blocks[b].Ops[at+1:]...)
	f.ops[op].block = NoBlock
}

func (f *Func) insert(b BlockID, at int, op OpID) {
	blk := &f.blocks[b]
	blk.Ops = append(blk.Ops[:at], append([]OpID{op}, blk.Ops[at:]...)...)
	f.ops[op].block = b
}

func (f *Func) addUse(v ValueID, u Use) {
	f.values[v].uses = append(f.values[v].uses, u)
}

func (f *Func) removeUse(v ValueID, u Use) {
	uses := f.values[v].uses

	for i, x := range uses {
		if x == u {
			f.values[v].uses = append(uses[:i], uses[i+1:]...)
			return
		}
	}

	panic(fmt.Sprintf("use %v of %v not found", u, v))
}

func assert(cond bool, msg string, args ...any) {
	if cond {
		return
	}

	panic(fmt.Sprintf("%v: %s", loc.Caller(1), fmt.Sprintf(msg, args...)))
}
