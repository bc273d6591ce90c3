// Package ir is an in-memory SSA graph: operations grouped into blocks,
// blocks grouped into regions, regions owned by operations. Values are
// operation results or block arguments and carry use-lists.
//
// Everything is stored in arenas owned by Func and addressed by typed
// handles, so the cyclic op <-> operand <-> use structure needs no
// back-pointers.
package ir

type (
	OpID     int32
	ValueID  int32
	BlockID  int32
	RegionID int32

	Kind uint8
	Type uint8

	// Use is one operand slot of one operation.
	Use struct {
		Op    OpID
		Index int
	}

	Operation struct {
		Kind Kind
		Name string // Opaque ops only
		N    int    // Replicate ops only: replica count

		Operands []ValueID
		Results  []ValueID
		Regions  []RegionID

		block BlockID
		live  bool
	}

	Block struct {
		Args []ValueID
		Ops  []OpID

		region RegionID
	}

	Region struct {
		Blocks []BlockID

		owner OpID // NoOp for the function body
	}

	value struct {
		typ Type

		// def: either op result defOp/defIdx or block argument defBlock/defIdx.
		defOp    OpID
		defBlock BlockID
		defIdx   int

		uses []Use
	}

	Func struct {
		Name string
		In   []Type
		Out  []Type

		Body RegionID

		ops     []Operation
		values  []value
		blocks  []Block
		regions []Region
	}
)

const (
	NoOp     OpID     = -1
	NoValue  ValueID  = -1
	NoBlock  BlockID  = -1
	NoRegion RegionID = -1
)

const (
	Opaque Kind = iota
	Return
	Graph
	Island
	Yield
	Fetch
	Replicate
	Shape
	VariableShape
	ReadVariable
)

const (
	Invalid Type = iota
	Tensor
	Resource
	Control
)

func (k Kind) IsTerminator() bool {
	return k == Return || k == Yield || k == Fetch
}

func (k Kind) String() string {
	switch k {
	case Opaque:
		return "opaque"
	case Return:
		return "return"
	case Graph:
		return "graph"
	case Island:
		return "island"
	case Yield:
		return "yield"
	case Fetch:
		return "fetch"
	case Replicate:
		return "replicate"
	case Shape:
		return "shape"
	case VariableShape:
		return "varshape"
	case ReadVariable:
		return "readvar"
	default:
		return "invalid"
	}
}

func (t Type) String() string {
	switch t {
	case Tensor:
		return "tensor"
	case Resource:
		return "resource"
	case Control:
		return "control"
	default:
		return "invalid"
	}
}

// NewFunc creates a function with a single-block body region whose
// arguments match the input types.
func NewFunc(name string, in, out []Type) *Func {
	f := &Func{
		Name: name,
		In:   in,
		Out:  out,
	}

	f.Body = f.newRegion(NoOp)
	b := f.newBlock(f.Body)

	for _, t := range in {
		f.AddBlockArg(b, t)
	}

	return f
}

func (f *Func) Op(id OpID) *Operation { return &f.ops[id] }

func (f *Func) Block(id BlockID) *Block { return &f.blocks[id] }

func (f *Func) Region(id RegionID) *Region { return &f.regions[id] }

// Entry is the single block of the function body.
func (f *Func) Entry() BlockID { return f.regions[f.Body].Blocks[0] }

func (f *Func) Live(op OpID) bool { return f.ops[op].live }

func (f *Func) ValueType(v ValueID) Type { return f.values[v].typ }

// Uses returns the use-list of v. The slice aliases internal state and
// is invalidated by mutation.
func (f *Func) Uses(v ValueID) []Use { return f.values[v].uses }

func (f *Func) NumUses(v ValueID) int { return len(f.values[v].uses) }

// DefOp reports the operation defining v, or false if v is a block argument.
func (f *Func) DefOp(v ValueID) (OpID, bool) {
	d := &f.values[v]
	return d.defOp, d.defOp != NoOp
}

// DefBlock reports the block owning v and its argument ordinal, or false
// if v is an operation result.
func (f *Func) DefBlock(v ValueID) (BlockID, int, bool) {
	d := &f.values[v]
	if d.defBlock == NoBlock {
		return NoBlock, 0, false
	}

	return d.defBlock, d.defIdx, true
}

// DefRegion is the region enclosing the definition of v.
func (f *Func) DefRegion(v ValueID) RegionID {
	d := &f.values[v]
	if d.defBlock != NoBlock {
		return f.blocks[d.defBlock].region
	}

	return f.blocks[f.ops[d.defOp].block].region
}

// OwnerBlock is the block containing op.
func (f *Func) OwnerBlock(op OpID) BlockID { return f.ops[op].block }

// ParentRegion is the region containing op.
func (f *Func) ParentRegion(op OpID) RegionID { return f.blocks[f.ops[op].block].region }

// parentRegion of a region is the region of the block owning its operation.
// The function body has no parent.
func (f *Func) parentRegion(r RegionID) RegionID {
	owner := f.regions[r].owner
	if owner == NoOp {
		return NoRegion
	}

	return f.blocks[f.ops[owner].block].region
}

// IsProperAncestor reports whether a strictly encloses b in the region
// nesting hierarchy.
func (f *Func) IsProperAncestor(a, b RegionID) bool {
	for r := f.parentRegion(b); r != NoRegion; r = f.parentRegion(r) {
		if r == a {
			return true
		}
	}

	return false
}

// Terminator is the last operation of b.
func (f *Func) Terminator(b BlockID) OpID {
	ops := f.blocks[b].Ops
	assert(len(ops) != 0, "empty block %v", b)

	return ops[len(ops)-1]
}

// AddBlock appends an empty block to r.
func (f *Func) AddBlock(r RegionID) BlockID { return f.newBlock(r) }

// AddBlockArg appends an argument of type t to b and returns its value.
func (f *Func) AddBlockArg(b BlockID, t Type) ValueID {
	v := f.newValue(t)
	f.values[v].defBlock = b
	f.values[v].defIdx = len(f.blocks[b].Args)

	f.blocks[b].Args = append(f.blocks[b].Args, v)

	return v
}

func (f *Func) newValue(t Type) ValueID {
	f.values = append(f.values, value{
		typ:      t,
		defOp:    NoOp,
		defBlock: NoBlock,
	})

	return ValueID(len(f.values) - 1)
}

func (f *Func) newBlock(r RegionID) BlockID {
	f.blocks = append(f.blocks, Block{region: r})
	id := BlockID(len(f.blocks) - 1)

	f.regions[r].Blocks = append(f.regions[r].Blocks, id)

	return id
}

func (f *Func) newRegion(owner OpID) RegionID {
	f.regions = append(f.regions, Region{owner: owner})

	return RegionID(len(f.regions) - 1)
}
