// Package main is the entry point for the legitfs FUSE mount.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/rybkr/legitfs/internal/diag"
	"github.com/rybkr/legitfs/internal/discovery"
	"github.com/rybkr/legitfs/internal/fuseserver"
	"github.com/rybkr/legitfs/internal/logging"
	"github.com/rybkr/legitfs/internal/metricsdb"
	"github.com/rybkr/legitfs/internal/progress"
	"github.com/rybkr/legitfs/internal/selfupdate"
	"github.com/rybkr/legitfs/internal/termcolor"
	"github.com/rybkr/legitfs/internal/vfs"

	"github.com/pterm/pterm"
)

// Build-time variables set via -ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	logging.Init()

	root := flag.String("root", getEnv("LEGITFS_ROOT", "."), "Directory to overlay (must contain the .git directories to expose)")
	mountpoint := flag.String("mountpoint", getEnv("LEGITFS_MOUNTPOINT", ""), "Existing directory to mount the overlay onto")
	debug := flag.Bool("debug", false, "Verbose application logging")
	fuseDebug := flag.Bool("fuse-debug", false, "Route the FUSE bridge's own protocol trace into the log stream")
	colorFlag := flag.String("color", "auto", "Color output: auto, always, never")
	noColor := flag.Bool("no-color", false, "Disable color output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	checkUpdate := flag.Bool("check-update", false, "Check for a newer release and exit")
	showHelp := flag.Bool("help", false, "Show help and exit")
	outputFormat := flag.String("output", "", "Startup output format: json (default: human-readable)")
	diagAddr := flag.String("diag-addr", getEnv("LEGITFS_DIAG_ADDR", ""), "Address for the diagnostics HTTP+WS server (empty disables it)")
	metricsDB := flag.String("metrics-db", getEnv("LEGITFS_METRICS_DB", ""), "Path to a SQLite file to journal mount metrics into (empty disables it)")

	flag.Parse()

	colorMode := termcolor.ColorAuto
	if *noColor {
		colorMode = termcolor.ColorNever
	} else if *colorFlag != "auto" {
		var err error
		colorMode, err = termcolor.ParseColorMode(*colorFlag)
		if err != nil {
			slog.Error("invalid color flag", "value", *colorFlag, "err", err)
			os.Exit(1)
		}
	}
	cw := termcolor.NewWriter(os.Stdout, colorMode)

	if *showVersion {
		printVersion()
		os.Exit(0)
	}
	if *checkUpdate {
		runCheckUpdate()
		os.Exit(0)
	}
	if *showHelp {
		printHelp(cw)
		os.Exit(0)
	}

	if err := validateConfig(*mountpoint, *outputFormat); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", cw.Red("error:"), err)
		os.Exit(1)
	}

	if *debug {
		_ = os.Setenv("LEGITFS_LOG_LEVEL", "debug")
		logging.Init()
	}

	spin := progress.New("Mounting overlay...")
	spin.Start()
	mountStart := time.Now()
	server, vctx, err := fuseserver.Mount(*root, *mountpoint, *fuseDebug)
	mountDur := time.Since(mountStart).Round(time.Millisecond)
	spin.Stop()
	if err != nil {
		slog.Error("failed to mount", "root", *root, "mountpoint", *mountpoint, "err", err)
		os.Exit(1)
	}

	registry := discovery.New(*root, slog.Default())
	if err := registry.Start(); err != nil {
		slog.Warn("repository discovery disabled", "err", err)
		registry = nil
	}

	var diagServer *diag.Server
	if *diagAddr != "" {
		diagServer = diag.New(*diagAddr, registry, vctx, slog.Default())
		if err := diagServer.Start(); err != nil {
			slog.Warn("diagnostics server disabled", "err", err)
			diagServer = nil
		}
	}

	var metrics *metricsdb.DB
	var metricsStop chan struct{}
	if *metricsDB != "" {
		metrics, err = metricsdb.Open(*metricsDB, *root, *mountpoint)
		if err != nil {
			slog.Warn("metrics database disabled", "err", err)
			metrics = nil
		} else {
			metricsStop = startMetricsLoop(metrics, registry, vctx)
		}
	}

	repoCount := 0
	if registry != nil {
		repoCount = len(registry.List())
	}

	if *outputFormat == outputFormatJS {
		printStartupJSON(*root, *mountpoint, mountDur, repoCount)
	} else {
		printStartupBanner(cw, *root, *mountpoint, mountDur, repoCount)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		server.Wait()
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("fuse server stopped with error", "err", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("shutdown initiated, unmounting")
		stop()
		if err := server.Unmount(); err != nil {
			slog.Error("unmount failed", "err", err)
			os.Exit(1)
		}
		<-errCh
	}

	if metricsStop != nil {
		close(metricsStop)
	}
	if metrics != nil {
		_ = metrics.Close()
	}
	if diagServer != nil {
		diagServer.Shutdown()
	}
	if registry != nil {
		registry.Close()
	}

	slog.Info("unmounted cleanly")
}

func startMetricsLoop(db *metricsdb.DB, registry *discovery.Registry, vctx *vfs.Context) chan struct{} {
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				sample := metricsdb.Sample{
					BlobDescriptors:        vctx.BlobDescriptors.Count(),
					PassthroughDescriptors: vctx.PassthroughDescriptors.Count(),
					CachedBlobs:            vctx.BlobCache.Len(),
				}
				if registry != nil {
					sample.RepoCount = len(registry.List())
				}
				if err := db.RecordSample(sample); err != nil {
					slog.Warn("failed to record metrics sample", "err", err)
				}
			}
		}
	}()
	return stop
}

const outputFormatJS = "json"

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func printVersion() {
	fmt.Printf("legitfs %s\n", version)
	fmt.Printf("  commit:     %s\n", commit)
	fmt.Printf("  built:      %s\n", buildDate)
	fmt.Printf("  go version: %s\n", runtime.Version())
	fmt.Printf("  platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

func runCheckUpdate() {
	const repo = "rybkr/legitfs"
	fmt.Printf("Current version: %s\n", version)

	latest, err := selfupdate.CheckLatest(repo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error checking for updates: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Latest version:  %s\n", latest)

	if !selfupdate.NeedsUpdate(version, latest) {
		if version == "dev" {
			fmt.Println("Development build — skipping update check.")
		} else {
			fmt.Println("Already up to date.")
		}
		return
	}

	fmt.Printf("\nUpdate available: %s → %s\n", version, latest)
	fmt.Println("To update, run one of:")
	fmt.Println("  legitfs-inspect update")
	fmt.Println("  brew upgrade legitfs")
}

func validateConfig(mountpoint, outputFormat string) error {
	if mountpoint == "" {
		return fmt.Errorf("-mountpoint is required")
	}
	if outputFormat != "" && outputFormat != outputFormatJS {
		return fmt.Errorf("-output %q is not valid; only \"json\" is supported", outputFormat)
	}
	return nil
}

func printStartupBanner(cw *termcolor.Writer, root, mountpoint string, mountDur time.Duration, repoCount int) {
	fmt.Printf("%s %s\n", cw.BoldCyan("legitfs"), cw.Green(version))

	if termcolor.IsTerminal(os.Stdout.Fd()) {
		data := pterm.TableData{
			{"root", root},
			{"mount", mountpoint},
			{"mounted in", mountDur.String()},
			{"repositories found", fmt.Sprintf("%d", repoCount)},
			{"commit", commit},
		}
		if err := pterm.DefaultTable.WithData(data).Render(); err != nil {
			fmt.Printf("  root:  %s\n  mount: %s\n", root, mountpoint)
		}
		fmt.Printf("\n%s\n", cw.Bold("Press Ctrl+C to unmount."))
		return
	}

	fmt.Printf("  root:    %s\n", root)
	timing := fmt.Sprintf("(mounted in %s)", cw.Yellow(mountDur.String()))
	fmt.Printf("  mount:   %s  %s\n", mountpoint, timing)
	fmt.Printf("  repos:   %d\n", repoCount)
	fmt.Printf("  commit:  %s\n", commit)
}

type startupInfo struct {
	Version    string `json:"version"`
	Commit     string `json:"commit"`
	BuildDate  string `json:"build_date"`
	Root       string `json:"root"`
	Mountpoint string `json:"mountpoint"`
	MountMs    int64  `json:"mount_ms"`
	RepoCount  int    `json:"repo_count"`
}

func printStartupJSON(root, mountpoint string, mountDur time.Duration, repoCount int) {
	info := startupInfo{
		Version:    version,
		Commit:     commit,
		BuildDate:  buildDate,
		Root:       root,
		Mountpoint: mountpoint,
		MountMs:    mountDur.Milliseconds(),
		RepoCount:  repoCount,
	}
	data, _ := json.Marshal(info)
	fmt.Println(string(data))
}

func printHelp(cw *termcolor.Writer) {
	fmt.Println("legitfs - read-only FUSE overlay exposing a Git object graph as files")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println(cw.Bold("Usage:"))
	fmt.Println("  legitfs -mountpoint /mnt/view [flags]")
	fmt.Println()
	fmt.Println(cw.Bold("Flags:"))
	fmt.Printf("  %s string\n", cw.Yellow("-root"))
	fmt.Println("        Directory to overlay (default: current directory)")
	fmt.Println("        Environment: LEGITFS_ROOT")
	fmt.Println()
	fmt.Printf("  %s string\n", cw.Yellow("-mountpoint"))
	fmt.Println("        Existing directory to mount the overlay onto (required)")
	fmt.Println("        Environment: LEGITFS_MOUNTPOINT")
	fmt.Println()
	fmt.Printf("  %s\n", cw.Yellow("-debug"))
	fmt.Println("        Verbose application logging")
	fmt.Println()
	fmt.Printf("  %s\n", cw.Yellow("-fuse-debug"))
	fmt.Println("        Route the FUSE bridge's own protocol trace into the log stream")
	fmt.Println()
	fmt.Printf("  %s string\n", cw.Yellow("-output"))
	fmt.Println("        Startup output format: json (default: human-readable)")
	fmt.Println()
	fmt.Printf("  %s string\n", cw.Yellow("-diag-addr"))
	fmt.Println("        Address for the diagnostics HTTP+WS server (default: disabled)")
	fmt.Println("        Environment: LEGITFS_DIAG_ADDR")
	fmt.Println()
	fmt.Printf("  %s string\n", cw.Yellow("-metrics-db"))
	fmt.Println("        SQLite file to journal mount metrics into (default: disabled)")
	fmt.Println("        Environment: LEGITFS_METRICS_DB")
	fmt.Println()
	fmt.Printf("  %s\n", cw.Yellow("-version"))
	fmt.Println("        Show version and exit")
	fmt.Println()
	fmt.Printf("  %s\n", cw.Yellow("-check-update"))
	fmt.Println("        Check for a newer release and exit")
	fmt.Println()
	fmt.Printf("  %s\n", cw.Yellow("-help"))
	fmt.Println("        Show this help message")
	fmt.Println()
	fmt.Println(cw.Bold("Examples:"))
	fmt.Println("  legitfs -root . -mountpoint /mnt/view")
	fmt.Println("  legitfs -root /srv/repos -mountpoint /mnt/view -debug")
	fmt.Println()
	fmt.Println(cw.Bold("Environment Variables:"))
	fmt.Println("  LEGITFS_ROOT          Directory to overlay")
	fmt.Println("  LEGITFS_MOUNTPOINT    Mountpoint directory")
	fmt.Println("  LEGITFS_LOG_LEVEL     Log level: debug, info, warn, error (default: info)")
	fmt.Println("  LEGITFS_LOG_FORMAT    Log format: text, json (default: text)")
}
