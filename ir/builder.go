package ir

type (
	// Builder is an insertion cursor: new operations go into a block at an
	// index, and the cursor advances past each one it creates.
	Builder struct {
		f     *Func
		block BlockID
		at    int
	}
)

// NewBuilder positions a builder at the start of the function entry block.
func NewBuilder(f *Func) *Builder {
	return &Builder{f: f, block: f.Entry()}
}

func (b *Builder) SetInsertionPoint(blk BlockID, at int) {
	b.block = blk
	b.at = at
}

func (b *Builder) SetInsertionPointToStart(blk BlockID) {
	b.SetInsertionPoint(blk, 0)
}

func (b *Builder) SetInsertionPointToEnd(blk BlockID) {
	b.SetInsertionPoint(blk, len(b.f.blocks[blk].Ops))
}

// SetInsertionPointBefore positions the cursor immediately before op.
func (b *Builder) SetInsertionPointBefore(op OpID) {
	blk := b.f.ops[op].block
	b.SetInsertionPoint(blk, b.f.opIndex(blk, op))
}

// Build creates an operation from proto (Kind, Name, N and Operands are
// taken; ownership fields are ignored), allocates one result value per
// type in results, and inserts it at the cursor. The cursor ends up after
// the new operation.
func (b *Builder) Build(proto Operation, results []Type) OpID {
	f := b.f

	id := OpID(len(f.ops))
	f.ops = append(f.ops, Operation{
		Kind:     proto.Kind,
		Name:     proto.Name,
		N:        proto.N,
		Operands: append([]ValueID(nil), proto.Operands...),
		live:     true,
		block:    NoBlock,
	})

	for i, v := range f.ops[id].Operands {
		f.addUse(v, Use{Op: id, Index: i})
	}

	for _, t := range results {
		v := f.newValue(t)
		f.values[v].defOp = id
		f.values[v].defIdx = len(f.ops[id].Results)
		f.ops[id].Results = append(f.ops[id].Results, v)
	}

	f.insert(b.block, b.at, id)
	b.at++

	return id
}

// BuildWithBody is Build for operations that own a single-block region:
// it allocates the region and one empty block inside it.
func (b *Builder) BuildWithBody(proto Operation, results []Type) (OpID, BlockID) {
	id := b.Build(proto, results)

	r := b.f.newRegion(id)
	b.f.ops[id].Regions = append(b.f.ops[id].Regions, r)
	blk := b.f.newBlock(r)

	return id, blk
}
