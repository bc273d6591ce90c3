package ir

type WalkResult int

const (
	Advance WalkResult = iota
	Interrupt
)

// WalkRegion visits every operation under r depth-first in pre-order.
// Interrupt from the visitor stops the whole walk and is returned.
func (f *Func) WalkRegion(r RegionID, visit func(OpID) WalkResult) WalkResult {
	for _, b := range f.regions[r].Blocks {
		// Snapshot: visitors may rewrite the block they are walking.
		ops := append([]OpID(nil), f.blocks[b].Ops...)

		for _, op := range ops {
			if !f.ops[op].live {
				continue
			}

			if f.WalkOp(op, visit) == Interrupt {
				return Interrupt
			}
		}
	}

	return Advance
}

// WalkOp visits op itself, then every operation nested under it.
func (f *Func) WalkOp(op OpID, visit func(OpID) WalkResult) WalkResult {
	if visit(op) == Interrupt {
		return Interrupt
	}

	for _, r := range f.ops[op].Regions {
		if f.WalkRegion(r, visit) == Interrupt {
			return Interrupt
		}
	}

	return Advance
}
