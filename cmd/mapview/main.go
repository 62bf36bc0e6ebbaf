// mapview opens a .vmf map in an OpenGL window.
//
// Extra .obj files are drawn as grey models in world coordinates.
//
// Controls: right mouse drag orbits (or looks, when flying), wheel zooms,
// F toggles the fly camera, WASD/QE move it, Tab cycles render modes, F11
// toggles fullscreen and F12 saves a screenshot. Left click hides the brush
// under the cursor, H shows the last hidden brush and Shift+H shows them all.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/brushwork/internal/config"
	"github.com/Faultbox/brushwork/internal/logger"
)

func main() {
	var flags config.Flags
	flags.Register(flag.CommandLine)
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: mapview [flags] <file.vmf> [model.obj ...]")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(&flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== brushwork map viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	v, err := newViewer(cfg, flag.Arg(0), flag.Args()[1:])
	if err != nil {
		logger.Error("failed to start viewer", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	defer v.Close()

	if err := v.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		v.Close()
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}
