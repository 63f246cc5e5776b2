package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"tonearm/cmd"
	"tonearm/config"
	"tonearm/services"
	"tonearm/types"
)

func main() {
	var (
		server  bool
		port    int
		scan    bool
		details string
		canPlay string
	)

	flag.BoolVar(&server, "server", false, "Start in web server mode")
	flag.IntVar(&port, "port", 8080, "Port for web server mode")
	flag.BoolVar(&scan, "scan", false, "Scan library roots (remaining args, or configured paths) and print discovered URIs")
	flag.StringVar(&details, "details", "", "Print track details for a single URI or path")
	flag.StringVar(&canPlay, "canplay", "", "Check whether a URI or path is playable")
	flag.Parse()

	// Server mode takes precedence
	if server {
		cmd.StartWebServer(port)
		return
	}

	if scan {
		runScan(flag.Args())
		return
	}

	if details != "" {
		runDetails(details)
		return
	}

	if canPlay != "" {
		runCanPlay(canPlay)
		return
	}

	flag.Usage()
}

// newLibrary wires the facade for one-shot CLI commands
func newLibrary(paths []string) *services.LocalFiles {
	logger := cmd.NewLogger()
	prober := services.NewFFProbe(config.GetProbeCommand(), config.GetProbeTimeout(), logger)
	scanner := services.NewScanner(prober, logger, nil)
	return services.NewLocalFiles(paths, config.GetIncludeVideo(), prober, scanner, logger)
}

// runScan scans the given roots (or the configured paths when none are
// given), showing progress while discovery runs in the background.
func runScan(args []string) {
	paths := resolveRoots(args)
	if len(paths) == 0 {
		log.Fatalf("No library roots: pass them as arguments or set MEDIA_PATHS")
	}

	library := newLibrary(paths)
	collection := library.GetURIList(context.Background())

	bar := progressbar.Default(-1, "scanning library")
	seen := 0
	for {
		job := library.ScanStatus()
		if n := collection.Len(); n > seen {
			bar.Add(n - seen)
			seen = n
		}
		if job != nil && job.Status == types.ScanStatusCompleted {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	bar.Finish()
	fmt.Println()

	for _, uri := range collection.Snapshot() {
		fmt.Println(uri)
	}
	fmt.Printf("%d tracks discovered\n", collection.Len())
}

// runDetails prints the probed metadata of one target as JSON
func runDetails(uri string) {
	library := newLibrary(config.GetMediaPaths())

	ctx := context.Background()
	if _, err := library.CanPlayURI(ctx, uri); err != nil {
		log.Fatalf("Cannot play %s: %v", uri, err)
	}

	entry, err := library.GetURIDetails(ctx, uri)
	if err != nil {
		log.Fatalf("Cannot read details for %s: %v", uri, err)
	}

	out, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		log.Fatalf("Cannot encode details: %v", err)
	}
	fmt.Println(string(out))
}

// runCanPlay prints whether the target resolves to an existing file
func runCanPlay(uri string) {
	library := newLibrary(config.GetMediaPaths())

	ok, err := library.CanPlayURI(context.Background(), uri)
	if err != nil {
		log.Fatalf("Cannot play %s: %v", uri, err)
	}
	fmt.Printf("%s: %v\n", uri, ok)
}

// resolveRoots converts scan arguments to absolute paths, falling back
// to the configured media paths when no arguments are given.
func resolveRoots(args []string) []string {
	if len(args) == 0 {
		return config.GetMediaPaths()
	}

	roots := make([]string, 0, len(args))
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", arg, err)
			continue
		}
		roots = append(roots, abs)
	}
	return roots
}
