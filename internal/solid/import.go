package solid

import (
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/brushwork/pkg/vmf"
)

// Build decodes a solid block and reconstructs its faces.
func Build(n *vmf.Node) (*Solid, error) {
	s, err := Decode(n)
	if err != nil {
		return nil, err
	}
	if err := Reconstruct(s); err != nil {
		return nil, err
	}
	return s, nil
}

// ImportOptions controls ImportAll.
type ImportOptions struct {
	// Workers limits concurrent reconstructions. Zero means GOMAXPROCS.
	Workers int
	// Log receives every skipped brush. Nil means a fresh log.
	Log *ImportLog
	// Logger is used for progress messages. Nil disables them.
	Logger *zap.Logger
}

// ImportAll builds every solid block in parallel. Brushes that fail to
// decode or reconstruct are skipped and recorded in the import log; the
// remaining solids are returned in input order.
func ImportAll(nodes []*vmf.Node, opts ImportOptions) ([]*Solid, *ImportLog) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	log := opts.Log
	if log == nil {
		log = NewImportLog(logger)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	built := make([]*Solid, len(nodes))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, n := range nodes {
		g.Go(func() error {
			s, err := Build(n)
			if err != nil {
				log.Append(err)
				return nil
			}
			built[i] = s
			return nil
		})
	}
	_ = g.Wait() // workers never fail; errors go to the log

	out := make([]*Solid, 0, len(built))
	for _, s := range built {
		if s != nil {
			out = append(out, s)
		}
	}
	logger.Info("solids imported",
		zap.Int("built", len(out)),
		zap.Int("skipped", len(nodes)-len(out)),
		zap.Int("workers", workers),
	)
	return out, log
}
