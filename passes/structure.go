package passes

import (
	"context"

	"tlog.app/go/tlog"

	"github.com/execir/execir/ir"
)

// Structure wraps a flat single-block function body into a graph holding
// one island:
//
//	func @fn(%arg...) -> (res) {
//	  %g = graph : res {
//	    %i, %ctl = island : res, control {
//	      ... original body ...
//	      yield %res
//	    }
//	    fetch %i
//	  }
//	  return %g
//	}
//
// The pass is idempotent and silently leaves inapplicable functions
// untouched.
func Structure(ctx context.Context, f *ir.Func, opt Options) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "functional-to-graph-conversion", "func", f.Name)
	defer tr.Finish()

	dump(ctx, opt, "functional_to_graph_before", f)

	body := f.Region(f.Body)
	if len(body.Blocks) != 1 {
		tr.Printw("expect single block function, skip", "func", f.Name, "blocks", len(body.Blocks))
		return
	}

	blk := body.Blocks[0]
	ops := f.Block(blk).Ops

	if len(ops) == 0 {
		return
	}

	// Already a graph.
	if len(ops) == 2 && f.Op(ops[0]).Kind == ir.Graph {
		return
	}

	term := f.Terminator(blk)
	if f.Op(term).Kind != ir.Return {
		tr.Printw("expect function to end with return, skip", "func", f.Name, "terminator", f.Op(term).Kind)
		return
	}

	// Return operands, captured before the body moves.
	args := append([]ir.ValueID(nil), f.Op(term).Operands...)
	n := len(ops) - 1

	b := ir.NewBuilder(f)
	b.SetInsertionPointToStart(blk)

	graph, gblk := b.BuildWithBody(ir.Operation{Kind: ir.Graph}, f.Out)

	b.SetInsertionPointToEnd(gblk)

	island, iblk := b.BuildWithBody(ir.Operation{Kind: ir.Island},
		append(append([]ir.Type(nil), f.Out...), ir.Control))

	toFetch := append([]ir.ValueID(nil), f.Op(island).Results...)
	if len(toFetch) != 1 {
		// Drop the control result for fetch.
		toFetch = toFetch[:len(toFetch)-1]
	}

	b.Build(ir.Operation{Kind: ir.Fetch, Operands: toFetch}, nil)

	// Relocate the original body into the island and yield the values
	// the function used to return.
	f.Splice(iblk, 0, blk, 1, 1+n)

	b.SetInsertionPointToEnd(iblk)
	b.Build(ir.Operation{Kind: ir.Yield, Operands: args}, nil)

	for i, r := range f.Op(graph).Results {
		f.SetOperand(term, i, r)
	}

	dump(ctx, opt, "functional_to_graph_after", f)
}

func init() {
	Register(Pass{
		Name:        "functional-to-graph-conversion",
		Description: "Transform a flat function body into graph form with a single island.",
		Run:         Structure,
	})
}
