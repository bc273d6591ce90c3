package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReplaceAllUsesOf(t *testing.T) {
	f := NewFunc("t", []Type{Tensor, Tensor}, nil)
	args := f.Block(f.Entry()).Args

	b := NewBuilder(f)

	x := b.Build(Operation{Kind: Opaque, Name: "x.a", Operands: args[:1]}, []Type{Tensor})
	xr := f.Op(x).Results[0]

	y := b.Build(Operation{Kind: Opaque, Name: "x.b", Operands: []ValueID{xr, xr}}, []Type{Tensor})
	b.Build(Operation{Kind: Return}, nil)

	require.Equal(t, 2, f.NumUses(xr))

	f.ReplaceAllUsesOf(xr, args[1])

	require.Equal(t, 0, f.NumUses(xr))
	require.Equal(t, 2, f.NumUses(args[1]))
	require.Equal(t, []ValueID{args[1], args[1]}, f.Op(y).Operands)
}

func TestErase(t *testing.T) {
	f := NewFunc("t", []Type{Tensor}, nil)
	args := f.Block(f.Entry()).Args

	b := NewBuilder(f)

	x := b.Build(Operation{Kind: Shape, Operands: args}, []Type{Tensor})
	b.Build(Operation{Kind: Return}, nil)

	require.Equal(t, 1, f.NumUses(args[0]))

	f.Erase(x)

	require.False(t, f.Live(x))
	require.Equal(t, 0, f.NumUses(args[0]))
	require.Equal(t, 1, len(f.Block(f.Entry()).Ops))
}

func TestEraseUsedPanics(t *testing.T) {
	f := NewFunc("t", []Type{Tensor}, nil)
	args := f.Block(f.Entry()).Args

	b := NewBuilder(f)

	x := b.Build(Operation{Kind: Shape, Operands: args}, []Type{Tensor})
	b.Build(Operation{Kind: Return, Operands: f.Op(x).Results}, nil)

	require.Panics(t, func() { f.Erase(x) })
}

func TestMoveBefore(t *testing.T) {
	f := NewFunc("t", []Type{Tensor}, nil)
	args := f.Block(f.Entry()).Args

	b := NewBuilder(f)

	x := b.Build(Operation{Kind: Opaque, Name: "x.a", Operands: args}, []Type{Tensor})
	y := b.Build(Operation{Kind: Opaque, Name: "x.b", Operands: args}, []Type{Tensor})
	b.Build(Operation{Kind: Return}, nil)

	f.MoveBefore(y, x)

	require.Equal(t, []OpID{y, x}, f.Block(f.Entry()).Ops[:2])
}

func TestMoveBeforePastUsePanics(t *testing.T) {
	f := NewFunc("t", []Type{Tensor}, nil)
	args := f.Block(f.Entry()).Args

	b := NewBuilder(f)

	x := b.Build(Operation{Kind: Opaque, Name: "x.a", Operands: args}, []Type{Tensor})
	b.Build(Operation{Kind: Opaque, Name: "x.b", Operands: f.Op(x).Results}, []Type{Tensor})
	ret := b.Build(Operation{Kind: Return}, nil)

	require.Panics(t, func() { f.MoveBefore(x, ret) })
}

func TestSplice(t *testing.T) {
	f := NewFunc("t", []Type{Tensor}, nil)
	args := f.Block(f.Entry()).Args

	b := NewBuilder(f)

	x := b.Build(Operation{Kind: Opaque, Name: "x.a", Operands: args}, []Type{Tensor})
	y := b.Build(Operation{Kind: Opaque, Name: "x.b", Operands: f.Op(x).Results}, []Type{Tensor})
	_, iblk := b.BuildWithBody(Operation{Kind: Island}, []Type{Control})
	b.Build(Operation{Kind: Return}, nil)

	f.Splice(iblk, 0, f.Entry(), 0, 2)

	require.Equal(t, []OpID{x, y}, f.Block(iblk).Ops)
	require.Equal(t, iblk, f.OwnerBlock(x))
	require.Equal(t, iblk, f.OwnerBlock(y))
	require.Equal(t, 2, len(f.Block(f.Entry()).Ops))
}

func TestBuilderCursor(t *testing.T) {
	f := NewFunc("t", []Type{Tensor}, nil)
	args := f.Block(f.Entry()).Args

	b := NewBuilder(f)

	x := b.Build(Operation{Kind: Opaque, Name: "x.a", Operands: args}, []Type{Tensor})
	ret := b.Build(Operation{Kind: Return}, nil)

	// Inserting at the start leaves later ops in place.
	b.SetInsertionPointToStart(f.Entry())
	y := b.Build(Operation{Kind: Opaque, Name: "x.b", Operands: args}, []Type{Tensor})

	require.Equal(t, []OpID{y, x, ret}, f.Block(f.Entry()).Ops)

	b.SetInsertionPointBefore(ret)
	z := b.Build(Operation{Kind: Opaque, Name: "x.c", Operands: args}, []Type{Tensor})

	require.Equal(t, []OpID{y, x, z, ret}, f.Block(f.Entry()).Ops)
}
