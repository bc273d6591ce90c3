package passes

import (
	"context"
	"os"
	"path/filepath"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/execir/execir/ir"
)

// dump writes the textual IR of f to <DumpDir>/<tag>_<name>.ir when
// verbosity allows. Diagnostics must not fail the pass, so errors are
// logged and swallowed.
func dump(ctx context.Context, opt Options, tag string, f *ir.Func) {
	if opt.Verbosity < 1 {
		return
	}

	err := dumpFile(opt, tag, f)
	if err != nil {
		tlog.SpanFromContext(ctx).Printw("dump ir", "tag", tag, "func", f.Name, "err", err)
	}
}

func dumpFile(opt Options, tag string, f *ir.Func) error {
	dir := opt.DumpDir
	if dir == "" {
		dir = "."
	}

	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return errors.Wrap(err, "mkdir %v", dir)
	}

	name := filepath.Join(dir, tag+"_"+f.Name+".ir")

	err = os.WriteFile(name, f.AppendTo(nil), 0o644)
	if err != nil {
		return errors.Wrap(err, "write %v", name)
	}

	return nil
}
