// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Command pdfinspect builds the cross-reference table and object store of
// PDF files and reports what could not be resolved.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	inspect "github.com/sassoftware/viya-pdf-inspect"
	"github.com/sassoftware/viya-pdf-inspect/logger"
	"github.com/sassoftware/viya-pdf-inspect/tracer"
)

// listFlag collects a repeatable string flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

type options struct {
	verbose bool
	files   listFlag
	dirs    listFlag
	mode    string
	jobs    int
	cache   string
	json    bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("pdfinspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&o.verbose, "v", false, "print diagnostics and debug logging")
	fs.Var(&o.files, "f", "PDF `file` to inspect (repeatable)")
	fs.Var(&o.dirs, "d", "`directory` to scan recursively for .pdf files (repeatable)")
	fs.StringVar(&o.mode, "mode", string(inspect.BestEffort), "parsing mode: strict or best-effort")
	fs.IntVar(&o.jobs, "j", inspect.NewDefaultConfig().MaxConcurrentPDFs, "number of files inspected concurrently")
	fs.StringVar(&o.cache, "cache", "", "bbolt `path` caching reports by file content")
	fs.BoolVar(&o.json, "json", false, "write reports as a JSON array")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	o.files = append(o.files, fs.Args()...)
	return o, nil
}

func stderrLogger(w io.Writer) logger.LogFunc {
	var mu sync.Mutex
	return func(level logger.LogLevel, msg string, keyvals ...interface{}) {
		var b strings.Builder
		fmt.Fprintf(&b, "%s: %s", strings.ToUpper(string(level)), msg)
		for i := 0; i+1 < len(keyvals); i += 2 {
			fmt.Fprintf(&b, " %v=%v", keyvals[i], keyvals[i+1])
		}
		mu.Lock()
		fmt.Fprintln(w, b.String())
		mu.Unlock()
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	cfg := inspect.NewDefaultConfig()
	cfg.ParsingMode = inspect.ParsingMode(o.mode)
	cfg.MaxConcurrentPDFs = o.jobs
	cfg.CachePath = o.cache
	cfg.DebugOn = o.verbose
	if o.verbose {
		cfg.Logger = stderrLogger(stderr)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 2
	}

	paths, err := inspect.Discover(o.files, o.dirs)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}
	if len(paths) == 0 {
		fmt.Fprintln(stderr, "ERROR: no input files")
		return 2
	}

	proc := inspect.NewProcessor(cfg)
	defer proc.Close()

	reports, _ := proc.InspectAll(ctx, paths)
	status := 0
	for _, r := range reports {
		if r.Err != nil {
			status = 1
		}
	}

	if o.json {
		if err := inspect.WriteReports(stdout, reports); err != nil {
			fmt.Fprintf(stderr, "ERROR: %v\n", err)
			return 1
		}
		return status
	}

	for _, r := range reports {
		if r.Err != nil && r.Summary == "" {
			fmt.Fprintf(stdout, "ERROR: %s: %v\n", r.Path, r.Err)
		} else if r.Err != nil {
			fmt.Fprintf(stdout, "ERROR: %s: %s: %v\n", r.Path, r.Summary, r.Err)
		} else {
			fmt.Fprintf(stdout, "INFO: %s: %s\n", r.Path, r.Summary)
		}
		if !o.verbose {
			continue
		}
		for _, d := range r.Diagnostics {
			fmt.Fprintf(stdout, "    %s\n", d.Message)
		}
		if r.Err != nil {
			tracer.Flush(stderr)
		}
	}
	return status
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
