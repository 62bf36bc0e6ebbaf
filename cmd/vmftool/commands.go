package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/Faultbox/brushwork/internal/alloc"
	"github.com/Faultbox/brushwork/internal/config"
	"github.com/Faultbox/brushwork/internal/logger"
	"github.com/Faultbox/brushwork/internal/mesh"
	"github.com/Faultbox/brushwork/internal/scene"
	"github.com/Faultbox/brushwork/internal/solid"
	"github.com/Faultbox/brushwork/pkg/vmf"
)

// setup parses the shared flags, loads the config and starts the logger.
// It returns the positional arguments.
func setup(name, usage string, args []string, stderr io.Writer, want int) (*config.Config, []string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: vmftool %s\n", usage)
		fs.PrintDefaults()
	}
	var flags config.Flags
	flags.Register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() != want {
		fs.Usage()
		return nil, nil, errUsage
	}

	cfg, err := config.Load(&flags)
	if err != nil {
		return nil, nil, err
	}
	if !flags.Debug {
		// Keep the report readable; rejected brushes are printed anyway.
		cfg.Logging.Level = "error"
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, nil, err
	}
	return cfg, fs.Args(), nil
}

func importLogger(cfg *config.Config) *zap.Logger {
	l := logger.Named("import")
	if cfg.Import.ErrorLog != "" {
		l = logger.WithErrorFile(l, cfg.Import.ErrorLog)
	}
	return l
}

func importFile(cfg *config.Config, path string) ([]*vmf.Node, []*solid.Solid, *solid.ImportLog, error) {
	root, err := vmf.ParseFile(path)
	if err != nil {
		return nil, nil, nil, err
	}
	nodes := root.Solids()
	solids, log := solid.ImportAll(nodes, solid.ImportOptions{
		Workers: cfg.Import.Workers,
		Logger:  importLogger(cfg),
	})
	return nodes, solids, log, nil
}

func cmdInfo(args []string, stdout, stderr io.Writer) error {
	cfg, args, err := setup("info", "info <file.vmf>", args, stderr, 1)
	if err != nil {
		return err
	}
	defer logger.Sync()

	nodes, solids, log, err := importFile(cfg, args[0])
	if err != nil {
		return err
	}

	var sides, disps, vertexBytes, indexBytes int
	var bounds mesh.Bounds
	haveBounds := false
	for _, s := range solids {
		sides += len(s.Faces)
		b := mesh.BuildBrush(s)
		vertexBytes += len(b.Vertices) * mesh.Stride
		indexBytes += len(b.Indices) * 4
		if len(b.Vertices) > 0 {
			bounds, haveBounds = union(bounds, b.Bounds, haveBounds), true
		}
		for i := range s.Faces {
			f := &s.Faces[i]
			if f.Displacement == nil {
				continue
			}
			disps++
			d, err := mesh.BuildDisplacement(f, s.Colour)
			if err != nil {
				continue
			}
			vertexBytes += len(d.Vertices) * mesh.Stride
			indexBytes += len(d.Indices) * 4
		}
	}

	fmt.Fprintf(stdout, "File:          %s\n", args[0])
	fmt.Fprintf(stdout, "Solids:        %d\n", len(nodes))
	fmt.Fprintf(stdout, "Built:         %d\n", len(solids))
	fmt.Fprintf(stdout, "Skipped:       %d\n", log.Len())
	fmt.Fprintf(stdout, "Sides:         %d\n", sides)
	fmt.Fprintf(stdout, "Displacements: %d\n", disps)
	if haveBounds {
		fmt.Fprintf(stdout, "Bounds:        %v - %v\n", bounds.Min, bounds.Max)
	}
	fmt.Fprintf(stdout, "Vertex data:   %d bytes\n", vertexBytes)
	fmt.Fprintf(stdout, "Index data:    %d bytes\n", indexBytes)
	return nil
}

func union(a, b mesh.Bounds, have bool) mesh.Bounds {
	if !have {
		return b
	}
	for i := range 3 {
		a.Min[i] = min(a.Min[i], b.Min[i])
		a.Max[i] = max(a.Max[i], b.Max[i])
	}
	return a
}

func cmdCheck(args []string, stdout, stderr io.Writer) error {
	cfg, args, err := setup("check", "check <file.vmf>", args, stderr, 1)
	if err != nil {
		return err
	}
	defer logger.Sync()

	nodes, _, log, err := importFile(cfg, args[0])
	if err != nil {
		return err
	}
	for _, e := range log.Errors() {
		fmt.Fprintln(stdout, e)
	}
	if n := log.Len(); n > 0 {
		return fmt.Errorf("%d of %d brushes rejected", n, len(nodes))
	}
	fmt.Fprintf(stdout, "%d brushes ok\n", len(nodes))
	return nil
}

// countingSink stands in for the GPU when measuring upload traffic.
type countingSink struct {
	uploads int
	bytes   [2]int
}

func (c *countingSink) Upload(buf alloc.Buffer, _ uint64, data []byte) error {
	c.uploads++
	c.bytes[buf] += len(data)
	return nil
}

func cmdAlloc(args []string, stdout, stderr io.Writer) error {
	cfg, args, err := setup("alloc", "alloc [flags] <file.vmf>", args, stderr, 1)
	if err != nil {
		return err
	}
	defer logger.Sync()

	a := alloc.New(alloc.Options{
		VertexCapacity: cfg.Buffers.VertexBytes,
		IndexCapacity:  cfg.Buffers.IndexBytes,
		Logger:         logger.Named("alloc"),
	})
	sc := scene.New(a, scene.Options{Workers: cfg.Import.Workers, Logger: importLogger(cfg)})
	rep, err := sc.LoadFile(args[0])
	if err != nil {
		return err
	}

	var sink countingSink
	if _, err := a.FlushAll(&sink); err != nil {
		return err
	}

	st := a.Stats()
	fmt.Fprintf(stdout, "Solids:        %d (%d skipped)\n", rep.Solids, rep.Skipped)
	fmt.Fprintf(stdout, "Displacements: %d\n", rep.Displacements)
	fmt.Fprintf(stdout, "Renderables:   %d\n", st.Renderables)
	fmt.Fprintf(stdout, "Draw calls:    %d\n", st.DrawCalls)
	fmt.Fprintf(stdout, "Uploads:       %d (%d vertex bytes, %d index bytes)\n",
		sink.uploads, sink.bytes[alloc.VertexBuffer], sink.bytes[alloc.IndexBuffer])
	for _, b := range []struct {
		name string
		st   alloc.BufferStats
	}{{"Vertex", st.Vertex}, {"Index", st.Index}} {
		fmt.Fprintf(stdout, "%-6s buffer: %d / %d bytes used, %d gaps, largest %d\n",
			b.name, b.st.Used, b.st.Capacity, b.st.Gaps, b.st.LargestGap)
	}
	return nil
}

func cmdFaces(args []string, stdout, stderr io.Writer) error {
	_, args, err := setup("faces", "faces <file.vmf> <solid id>", args, stderr, 2)
	if err != nil {
		return err
	}
	defer logger.Sync()

	id, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("solid id %q: %w", args[1], err)
	}
	root, err := vmf.ParseFile(args[0])
	if err != nil {
		return err
	}

	for _, n := range root.Solids() {
		if nid, err := strconv.ParseUint(n.Value("id"), 10, 64); err != nil || nid != id {
			continue
		}
		s, err := solid.Build(n)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "solid %d colour %v\n", s.ID, s.Colour)
		for _, f := range s.Faces {
			p := f.Plane
			fmt.Fprintf(stdout, "  side %d  %s  normal (%g %g %g) dist %g  %d verts\n",
				f.ID, f.Material, p.Normal.X, p.Normal.Y, p.Normal.Z, p.Distance, len(f.Polygon))
			for _, v := range f.Polygon {
				fmt.Fprintf(stdout, "    (%g %g %g)\n", v.X, v.Y, v.Z)
			}
			if d := f.Displacement; d != nil {
				fmt.Fprintf(stdout, "    displacement power %d, start (%g %g %g)\n", d.Power, d.Start.X, d.Start.Y, d.Start.Z)
			}
		}
		return nil
	}
	return fmt.Errorf("solid %d not found", id)
}
