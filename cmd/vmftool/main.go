// vmftool inspects .vmf maps: brush counts, rejected brushes, buffer usage
// and per-face geometry.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

// errUsage marks a bad command line; the usage text has already been printed.
var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}

	command, args := args[0], args[1:]
	var err error
	switch command {
	case "info":
		err = cmdInfo(args, stdout, stderr)
	case "check":
		err = cmdCheck(args, stdout, stderr)
	case "alloc":
		err = cmdAlloc(args, stdout, stderr)
	case "faces":
		err = cmdFaces(args, stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		return 2
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `vmftool - .vmf map inspection utility

Usage:
  vmftool <command> [options]

Commands:
  info <file.vmf>              Show brush, side and displacement counts
  check <file.vmf>             List brushes that fail to reconstruct
  alloc [flags] <file.vmf>     Load into the buffer allocator and show usage
  faces <file.vmf> <solid id>  Print the reconstructed faces of one brush

Examples:
  vmftool info cp_granary.vmf
  vmftool check -workers 4 cp_granary.vmf
  vmftool alloc -vertex-mb 8 -index-mb 4 cp_granary.vmf
  vmftool faces cp_granary.vmf 1234`)
}
