package passes

import (
	"context"
	"testing"

	"github.com/execir/execir/ir"
)

func parse(t *testing.T, text string) *ir.Func {
	t.Helper()

	f, err := ir.ParseFunc(context.Background(), []byte(text))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	return f
}

func apply(t *testing.T, name string, f *ir.Func) {
	t.Helper()

	p, ok := Lookup(name)
	if !ok {
		t.Fatalf("pass %v not registered", name)
	}

	p.Run(context.Background(), f, Options{})
}

// checkUses verifies def-use consistency after mutation: every operand is
// backed by a use entry, and every use entry resolves to a live operation
// holding the value in that slot.
func checkUses(t *testing.T, f *ir.Func) {
	t.Helper()

	live := map[ir.OpID]bool{}
	values := append([]ir.ValueID(nil), f.Block(f.Entry()).Args...)

	f.WalkRegion(f.Body, func(op ir.OpID) ir.WalkResult {
		live[op] = true

		values = append(values, f.Op(op).Results...)

		for _, r := range f.Op(op).Regions {
			for _, blk := range f.Region(r).Blocks {
				values = append(values, f.Block(blk).Args...)
			}
		}

		return ir.Advance
	})

	for op := range live {
		for i, v := range f.Op(op).Operands {
			found := false

			for _, u := range f.Uses(v) {
				if u.Op == op && u.Index == i {
					found = true
					break
				}
			}

			if !found {
				t.Errorf("operand %v of op %v has no use entry", i, op)
			}
		}
	}

	for _, v := range values {
		for _, u := range f.Uses(v) {
			if !live[u.Op] {
				t.Errorf("value %v used by unreachable op %v", v, u.Op)
				continue
			}

			if f.Op(u.Op).Operands[u.Index] != v {
				t.Errorf("use entry %v of value %v does not match its operand", u, v)
			}
		}
	}
}
