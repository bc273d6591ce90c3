package passes

import (
	"context"

	"tlog.app/go/tlog"

	"github.com/execir/execir/ir"
)

// Hoist moves replicate invariant operations, meaning operations that
// yield the same result regardless of which replica executes, out of
// their replicate construct. Shape queries over replicated arguments are
// rewritten to be invariant first, so they qualify too.
func Hoist(ctx context.Context, f *ir.Func, opt Options) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "replicate-invariant-op-hoisting", "func", f.Name)
	defer tr.Finish()

	dump(ctx, opt, "replicate_invariant_op_hoisting_before", f)

	var reps []ir.OpID

	f.WalkRegion(f.Body, func(op ir.OpID) ir.WalkResult {
		if f.Op(op).Kind == ir.Replicate {
			reps = append(reps, op)
		}

		return ir.Advance
	})

	for _, rep := range reps {
		hoistInvariantOps(ctx, f, rep)
	}

	dump(ctx, opt, "replicate_invariant_op_hoisting_after", f)
}

// makeShapeInvariant rewrites a shape query found inside the replicate
// region when its result provably matches across replicas.
//
// A query over a replicated tensor argument keeps its kind, its operand
// is rebound to the replica-0 operand of that argument. A query over the
// result of a resource read whose resource is a replicated argument is
// replaced by a resource shape query over the replica-0 operand directly.
//
// The resource case assumes the resource is not written between the
// replicate entry and the read, so its shape still matches the replica-0
// operand. That guarantee is established by earlier passes and is not
// checked here.
func makeShapeInvariant(f *ir.Func, rep ir.OpID, n int, rblk ir.BlockID, shape ir.OpID) {
	input := f.Operand(shape, 0)

	if blk, idx, ok := f.DefBlock(input); ok {
		if blk != rblk {
			return
		}

		f.SetOperand(shape, 0, f.Operand(rep, n*idx))

		return
	}

	def, _ := f.DefOp(input)
	if f.Op(def).Kind != ir.ReadVariable {
		return
	}

	blk, idx, ok := f.DefBlock(f.Operand(def, 0))
	if !ok || blk != rblk {
		return
	}

	b := ir.NewBuilder(f)
	b.SetInsertionPointBefore(shape)

	nv := b.Build(ir.Operation{
		Kind:     ir.VariableShape,
		Operands: []ir.ValueID{f.Operand(rep, n*idx)},
	}, resultTypes(f, shape))

	for i, r := range f.Op(shape).Results {
		f.ReplaceAllUsesOf(r, f.Op(nv).Results[i])
	}

	f.Erase(shape)
}

// isReplicateInvariant reports whether every operand of op and of all
// operations nested under it is defined strictly outside the replicate
// region.
func isReplicateInvariant(f *ir.Func, rregion ir.RegionID, op ir.OpID) bool {
	res := f.WalkOp(op, func(inner ir.OpID) ir.WalkResult {
		for _, v := range f.Op(inner).Operands {
			if !f.IsProperAncestor(f.DefRegion(v), rregion) {
				return ir.Interrupt
			}
		}

		return ir.Advance
	})

	return res != ir.Interrupt
}

func hoistInvariantOps(ctx context.Context, f *ir.Func, rep ir.OpID) {
	tr := tlog.SpanFromContext(ctx)

	n := f.Op(rep).N
	rregion := f.Op(rep).Regions[0]
	rblk := f.Region(rregion).Blocks[0]

	var shapes []ir.OpID

	f.WalkOp(rep, func(op ir.OpID) ir.WalkResult {
		if f.Op(op).Kind == ir.Shape {
			shapes = append(shapes, op)
		}

		return ir.Advance
	})

	for _, s := range shapes {
		makeShapeInvariant(f, rep, n, rblk, s)
	}

	// Snapshot: hoisting rewrites the block we iterate. Single pass, top
	// to bottom; an op made invariant by a later hoist is picked up on
	// the next run.
	ops := append([]ir.OpID(nil), f.Block(rblk).Ops...)

	hoisted := 0

	for _, op := range ops {
		if f.Op(op).Kind.IsTerminator() {
			continue
		}

		if isReplicateInvariant(f, rregion, op) {
			f.MoveBefore(op, rep)
			hoisted++
		}
	}

	if hoisted != 0 {
		tr.Printw("hoisted invariant ops", "func", f.Name, "count", hoisted)
	}
}

func resultTypes(f *ir.Func, op ir.OpID) []ir.Type {
	ts := make([]ir.Type, len(f.Op(op).Results))

	for i, r := range f.Op(op).Results {
		ts[i] = f.ValueType(r)
	}

	return ts
}

func init() {
	Register(Pass{
		Name:        "replicate-invariant-op-hoisting",
		Description: "Hoists replicate invariant operations out of replicate",
		Run:         Hoist,
	})
}
