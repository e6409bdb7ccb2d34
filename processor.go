// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package inspect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sassoftware/viya-pdf-inspect/internal/cache"
	"github.com/sassoftware/viya-pdf-inspect/logger"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Processor defines the contract for inspecting PDF files.
type Processor interface {
	Inspect(ctx context.Context, path string) (*Report, error)
	InspectAll(ctx context.Context, paths []string) ([]*Report, error)
}

// InspectorStrategy decides whether a report is acceptable.
// Different strategies handle diagnostics differently (strict vs. best-effort).
type InspectorStrategy interface {
	Accept(r *Report) error
}

// StrictInspector rejects any file with diagnostics.
type StrictInspector struct{}

func (s *StrictInspector) Accept(r *Report) error {
	if len(r.Diagnostics) == 0 {
		return nil
	}
	return fmt.Errorf("strict mode: %d diagnostics, first: %s", len(r.Diagnostics), r.Diagnostics[0].Message)
}

// BestEffortInspector accepts every report that could be built.
type BestEffortInspector struct{}

func (b *BestEffortInspector) Accept(r *Report) error {
	if len(r.Diagnostics) > 0 {
		logger.Debug("BestEffortInspector: accepting report with diagnostics", "path", r.Path, "count", len(r.Diagnostics), true)
	}
	return nil
}

// processor manages PDF inspection with concurrency control
// and delegates the verdict to the chosen InspectorStrategy.
type processor struct {
	cfg       *Config
	sem       *semaphore.Weighted
	inspector InspectorStrategy
	cache     *cache.Cache
}

// NewProcessor validates the config and creates a new processor.
// Selects the correct InspectorStrategy (Strict or BestEffort) and opens
// the report cache when CachePath is set.
func NewProcessor(cfg *Config) *processor {
	//Select InspectorStrategy
	var inspector InspectorStrategy
	switch cfg.ParsingMode {
	case Strict:
		inspector = &StrictInspector{}
	case BestEffort:
		inspector = &BestEffortInspector{}
	}

	//Validate the config object
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	//Set the logger function, dropping debug messages unless DebugOn
	if cfg.Logger != nil {
		logger.SetLogger(levelFilter(cfg.Logger, cfg.DebugOn))
	}

	p := &processor{
		cfg:       cfg,
		sem:       semaphore.NewWeighted(int64(cfg.MaxConcurrentPDFs)),
		inspector: inspector,
	}
	if cfg.CachePath != "" {
		c, err := cache.Open(cfg.CachePath)
		if err != nil {
			logger.Error("report cache disabled", "path", cfg.CachePath, "err", err)
		} else {
			p.cache = c
		}
	}

	logger.Debug(fmt.Sprintf("Processor initialized: parsing_mode=%v, max_concurrent_pdfs=%d, merge_order=%s, cache=%v",
		cfg.ParsingMode, cfg.MaxConcurrentPDFs, cfg.mergeOrder(), p.cache != nil), true)
	return p
}

func levelFilter(f logger.LogFunc, debug bool) logger.LogFunc {
	if debug {
		return f
	}
	return func(level logger.LogLevel, msg string, keyvals ...interface{}) {
		if level == logger.DebugLevel {
			return
		}
		f(level, msg, keyvals...)
	}
}

// Close releases the report cache.
func (p *processor) Close() error {
	return p.cache.Close()
}

// Inspect builds the file at path and reports on it. A file that cannot be
// built returns a nil report. A file rejected by the strategy returns both
// the report and the error.
func (p *processor) Inspect(ctx context.Context, path string) (*Report, error) {
	logger.Debug(fmt.Sprintf("Starting inspection: path=%s", path), true)

	if err := p.acquireSlot(ctx); err != nil {
		logger.Debug(fmt.Sprintf("Failed to acquire slot: err=%v", err), true)
		return nil, err
	}
	defer p.sem.Release(1)

	buf, err := p.readWithRetries(ctx, path)
	if err != nil {
		return nil, &FatalError{Path: path, Stage: StageRead, Err: err}
	}
	digest := cache.Digest(buf)
	key := cache.Key{Path: path, Config: p.cfg.fingerprint(), Digest: digest}

	if r, ok := p.cached(key); ok {
		return r, p.accept(r)
	}

	ctxBuild, cancel := context.WithTimeout(ctx, p.cfg.WorkerTimeout)
	defer cancel()
	r, err := withContext(ctxBuild, func() (*Report, error) {
		doc, err := Build(buf, p.cfg)
		if err != nil {
			return nil, err
		}
		doc.Path = path
		r := NewReport(doc, digest)
		if md, err := doc.Metadata(); err != nil {
			logger.Debug(fmt.Sprintf("Metadata unavailable: path=%s err=%v", path, err), true)
		} else {
			r.Metadata = &md
		}
		return r, nil
	})
	if err != nil {
		var fe *FatalError
		if errors.As(err, &fe) {
			fe.Path = path
		}
		logger.Debug(fmt.Sprintf("Failed to build PDF: path=%s err=%v", path, err), true)
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Put(key, r); err != nil {
			logger.Error("failed to cache report", "path", path, "err", err)
		}
	}
	logger.Debug(fmt.Sprintf("Inspection completed: path=%s %s", path, r.Summary), true)
	return r, p.accept(r)
}

func (p *processor) accept(r *Report) error {
	if err := p.inspector.Accept(r); err != nil {
		r.Err = err
		r.Error = err.Error()
		return err
	}
	return nil
}

func (p *processor) cached(key cache.Key) (*Report, bool) {
	if p.cache == nil {
		return nil, false
	}
	var r Report
	found, err := p.cache.Get(key, &r)
	if err != nil {
		logger.Error("failed to read cached report", "path", key.Path, "err", err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	r.Cached = true
	return &r, true
}

// InspectAll inspects paths with at most MaxConcurrentPDFs files in flight.
// The returned slice is parallel to paths: a file that could not be built
// has a report holding only its path and error. The error joins every
// per-file error.
func (p *processor) InspectAll(ctx context.Context, paths []string) ([]*Report, error) {
	reports := make([]*Report, len(paths))
	if len(paths) == 0 {
		return reports, nil
	}
	numWorkers := min(p.cfg.MaxConcurrentPDFs, len(paths))
	logger.Debug(fmt.Sprintf("Starting workers: count=%d files=%d", numWorkers, len(paths)), true)

	jobs := make(chan int, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	p.startWorkers(gctx, g, paths, jobs, reports, numWorkers)
	feedErr := p.feedJobs(gctx, len(paths), jobs)
	close(jobs)
	err := g.Wait()
	if err == nil {
		err = feedErr
	}
	if err != nil {
		for i, r := range reports {
			if r == nil {
				reports[i] = &Report{Path: paths[i], Err: err, Error: err.Error()}
			}
		}
		return reports, err
	}

	var errs []error
	for _, r := range reports {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Path, r.Err))
		}
	}
	return reports, errors.Join(errs...)
}

func (p *processor) startWorkers(ctx context.Context, g *errgroup.Group, paths []string, jobs <-chan int, reports []*Report, numWorkers int) {
	for w := 1; w <= numWorkers; w++ {
		w := w
		g.Go(func() error {
			logger.Debug(fmt.Sprintf("Worker started: id=%d", w), true)
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					return err
				}
				r, err := p.Inspect(ctx, paths[i])
				if r == nil {
					r = &Report{Path: paths[i]}
				}
				if err != nil {
					r.Err, r.Error = err, err.Error()
					logger.Debug(fmt.Sprintf("Worker: inspection error: worker_id=%d path=%s err=%v", w, paths[i], err), true)
				}
				reports[i] = r
			}
			logger.Debug(fmt.Sprintf("Worker finished: id=%d", w), true)
			return nil
		})
	}
}

func (p *processor) acquireSlot(ctx context.Context) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire slot: %w", err)
	}
	logger.Debug("Slot acquired successfully", true)
	return nil
}

// readWithRetries reads path, retrying up to MaxRetries times. Each attempt
// is bounded by WorkerTimeout. A missing file is not retried.
func (p *processor) readWithRetries(ctx context.Context, path string) ([]byte, error) {
	var buf []byte
	var err error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		ctxRead, cancel := context.WithTimeout(ctx, p.cfg.WorkerTimeout)
		buf, err = withContext(ctxRead, func() ([]byte, error) { return os.ReadFile(path) })
		cancel()
		if err == nil || errors.Is(err, os.ErrNotExist) || ctx.Err() != nil {
			break
		}
		logger.Debug(fmt.Sprintf("Retrying read: attempt=%d err=%v", attempt, err), true)
	}
	return buf, err
}

func (p *processor) feedJobs(ctx context.Context, total int, jobs chan<- int) error {
	for i := 0; i < total; i++ {
		select {
		case <-ctx.Done():
			logger.Debug("Context cancelled while feeding jobs", true)
			return ctx.Err()
		case jobs <- i:
			logger.Debug(fmt.Sprintf("Job queued: index=%d", i), true)
		}
	}
	logger.Debug(fmt.Sprintf("All jobs queued: total_files=%d", total), true)
	return nil
}

// withContext runs f and returns its result, or ctx's error if ctx ends
// first. f keeps running in the background in that case.
func withContext[T any](ctx context.Context, f func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := f()
		ch <- result{v, err}
	}()
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-ch:
		return r.v, r.err
	}
}

// Metadata prints PDF metadata as JSON to the provided writer
func (p *processor) Metadata(ctx context.Context, path string, w io.Writer) error {
	logger.Debug(fmt.Sprintf("Reading metadata: path=%s", path), true)

	if err := p.acquireSlot(ctx); err != nil {
		return err
	}
	defer p.sem.Release(1)

	doc, err := Open(path, p.cfg)
	if err != nil {
		logger.Error("failed to open PDF for metadata:", "path", path, "err", err)
		return err
	}
	md, err := doc.Metadata()
	if err != nil {
		logger.Error("failed to read metadata", "path", path, "err", err)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(md); err != nil {
		return err
	}

	logger.Debug(fmt.Sprintf("Metadata extraction completed: path=%s", path), true)
	return nil
}
