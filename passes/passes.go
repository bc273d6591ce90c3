// Package passes holds function-level IR transformations and their
// registry. Each pass mutates one function in place and never fails:
// inapplicable input is left untouched.
package passes

import (
	"context"
	"sort"

	"github.com/execir/execir/ir"
)

type (
	// Options carries external knobs a driver supplies per run.
	Options struct {
		// Verbosity gates diagnostic dumps: at 1 and above each pass
		// writes the function IR before and after itself.
		Verbosity int
		DumpDir   string
	}

	Pass struct {
		Name        string
		Description string

		Run func(ctx context.Context, f *ir.Func, opt Options)
	}
)

var registry = map[string]Pass{}

// Register adds a pass under its name. Called from init.
func Register(p Pass) {
	if _, ok := registry[p.Name]; ok {
		panic("duplicate pass: " + p.Name)
	}

	registry[p.Name] = p
}

func Lookup(name string) (Pass, bool) {
	p, ok := registry[name]
	return p, ok
}

// All lists registered passes sorted by name.
func All() []Pass {
	ps := make([]Pass, 0, len(registry))

	for _, p := range registry {
		ps = append(ps, p)
	}

	sort.Slice(ps, func(i, j int) bool { return ps[i].Name < ps[j].Name })

	return ps
}
