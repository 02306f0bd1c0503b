// Package main is legitfs-inspect, a companion CLI that walks the same
// internal/vfs dispatcher the FUSE mount uses, without a kernel FUSE
// session — for exercising and demonstrating the overlay on platforms
// without a FUSE driver, or for quick scripted inspection of a mount root.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/rybkr/legitfs/internal/cli"
	"github.com/rybkr/legitfs/internal/selfupdate"
	"github.com/rybkr/legitfs/internal/termcolor"
	"github.com/rybkr/legitfs/internal/vfs"
)

// Build-time variables set via -ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	gf, args := parseGlobalFlags(os.Args[1:])

	for _, a := range args {
		if a == "--version" {
			printVersion()
			os.Exit(0)
		}
	}

	cw := termcolor.NewWriter(os.Stdout, gf.colorMode)

	app := cli.NewApp("legitfs-inspect", version)
	app.Stderr = os.Stderr

	root := os.Getenv("LEGITFS_ROOT")
	if root == "" {
		root = "."
	}
	vctx := vfs.NewContext(root)

	app.Register(&cli.Command{
		Name:     "ls",
		Summary:  "List a synthetic directory's entries",
		Usage:    "legitfs-inspect ls <path>",
		Examples: []string{"legitfs-inspect ls myrepo/.git/refs", "legitfs-inspect ls myrepo/.git/objects/<id>/tree"},
		Run:      func(args []string) int { return runLs(vctx, root, args) },
	})

	app.Register(&cli.Command{
		Name:     "cat",
		Summary:  "Print a synthetic file's contents",
		Usage:    "legitfs-inspect cat <path>",
		Examples: []string{"legitfs-inspect cat myrepo/.git/objects/<id>/tree/greeting.txt"},
		Run:      func(args []string) int { return runCat(vctx, root, args) },
	})

	app.Register(&cli.Command{
		Name:     "stat",
		Summary:  "Show the kind and size of a synthetic node",
		Usage:    "legitfs-inspect stat <path>",
		Examples: []string{"legitfs-inspect stat myrepo/.git/HEAD"},
		Run:      func(args []string) int { return runStat(vctx, root, args) },
	})

	app.Register(&cli.Command{
		Name:     "readlink",
		Summary:  "Print the target of a synthetic symlink",
		Usage:    "legitfs-inspect readlink <path>",
		Examples: []string{"legitfs-inspect readlink myrepo/.git/HEAD"},
		Run:      func(args []string) int { return runReadlink(vctx, root, args) },
	})

	app.Register(&cli.Command{
		Name:     "tree",
		Summary:  "Recursively list a synthetic directory",
		Usage:    "legitfs-inspect tree <path>",
		Examples: []string{"legitfs-inspect tree myrepo/.git"},
		Run:      func(args []string) int { return runTree(vctx, root, args, cw) },
	})

	app.Register(&cli.Command{
		Name:    "update",
		Summary: "Update to the latest release",
		Usage:   "legitfs-inspect update [--check]",
		Run:     func(args []string) int { return runUpdate(args) },
	})

	app.Register(&cli.Command{
		Name:    "version",
		Summary: "Show version information",
		Usage:   "legitfs-inspect version",
		Run:     func([]string) int { printVersion(); return 0 },
	})

	os.Exit(app.Run(args, cw))
}

func printVersion() {
	fmt.Printf("legitfs-inspect %s\n", version)
	fmt.Printf("  commit:     %s\n", commit)
	fmt.Printf("  built:      %s\n", buildDate)
	fmt.Printf("  go version: %s\n", runtime.Version())
	fmt.Printf("  platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
