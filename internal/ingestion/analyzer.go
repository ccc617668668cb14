// MIT License
//
// Copyright (c) 2026 Kolin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package ingestion

import (
	"context"
	"fmt"
	"time"

	"geostats/internal/discovery"
	"geostats/internal/enrichment"
	"geostats/internal/stats"

	"github.com/pterm/pterm"
)

// Kinds of analysis
const (
	KindAccess     = "access"
	KindError      = "error"
	KindSuccessful = "successful"
)

// Options configures an Analyzer
type Options struct {
	LogDir           string
	GeoIPDB          string
	SelfIPs          []string
	ExcludeCountries []string
	TopN             int
	KeepRecords      bool
}

// Observer is told about every finished analysis
type Observer interface {
	Observe(kind string, run stats.RunStats, elapsed time.Duration)
}

// Results holds the snapshots of one full batch
type Results struct {
	Access      *stats.AccessStats
	Errors      *stats.ErrorStats
	Successful  *stats.SuccessfulRequestStats
	CompletedAt time.Time
	Duration    time.Duration
}

// Analyzer discovers log files and runs them through a processor, one file
// at a time. The GeoIP backend is opened at the start of every analysis and
// closed before it returns.
type Analyzer struct {
	opts       Options
	open       enrichment.Opener
	filter     *Filter
	accessLogs discovery.Detector
	errorLogs  discovery.Detector
	observer   Observer
	logger     *pterm.Logger
}

// NewAnalyzer creates an analyzer. observer may be nil.
func NewAnalyzer(opts Options, open enrichment.Opener, observer Observer, logger *pterm.Logger) *Analyzer {
	if opts.TopN <= 0 {
		opts.TopN = 10
	}
	return &Analyzer{
		opts:       opts,
		open:       open,
		filter:     NewFilter(opts.SelfIPs, opts.ExcludeCountries),
		accessLogs: discovery.NewAccessDetector(opts.LogDir, logger),
		errorLogs:  discovery.NewErrorDetector(opts.LogDir, logger),
		observer:   observer,
		logger:     logger,
	}
}

// fileProcessor is the non-generic part of Processor
type fileProcessor interface {
	ProcessFile(path string) error
	Run() stats.RunStats
}

// AnalyzeAccess aggregates every access log in the log directory
func (a *Analyzer) AnalyzeAccess(ctx context.Context) (*stats.AccessStats, error) {
	agg := stats.NewAccessAggregator(a.opts.TopN, a.opts.KeepRecords)

	run, found, err := a.analyze(ctx, KindAccess, a.accessLogs, func(r Resolver) fileProcessor {
		return NewAccessProcessor(agg, r, a.filter, a.logger)
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return stats.EmptyAccessStats(run), nil
	}

	s := agg.Snapshot(run)
	a.logger.Info("Access analysis complete",
		a.logger.Args("requests", s.TotalRequests, "unique_ips", s.TotalUniqueIPs, "files", run.FilesProcessed))
	return s, nil
}

// AnalyzeErrors aggregates every error log in the log directory
func (a *Analyzer) AnalyzeErrors(ctx context.Context) (*stats.ErrorStats, error) {
	agg := stats.NewErrorAggregator()

	run, found, err := a.analyze(ctx, KindError, a.errorLogs, func(r Resolver) fileProcessor {
		return NewErrorProcessor(agg, r, a.filter, a.logger)
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return stats.EmptyErrorStats(run), nil
	}

	s := agg.Snapshot(run)
	a.logger.Info("Error analysis complete",
		a.logger.Args("errors", s.TotalErrors, "files", run.FilesProcessed))
	return s, nil
}

// AnalyzeSuccessful collects every 2xx request in the access logs
func (a *Analyzer) AnalyzeSuccessful(ctx context.Context) (*stats.SuccessfulRequestStats, error) {
	agg := stats.NewSuccessfulAggregator(a.opts.TopN)

	run, found, err := a.analyze(ctx, KindSuccessful, a.accessLogs, func(r Resolver) fileProcessor {
		return NewSuccessProcessor(agg, r, a.filter, a.logger)
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return stats.EmptySuccessfulStats(run), nil
	}

	s := agg.Snapshot(run)
	a.logger.Info("Successful request analysis complete",
		a.logger.Args("requests", s.TotalSuccessfulRequests, "unique_ips", s.UniqueIPs, "files", run.FilesProcessed))
	return s, nil
}

// RunAll runs the three analyses in sequence
func (a *Analyzer) RunAll(ctx context.Context) (*Results, error) {
	start := time.Now()

	accessStats, err := a.AnalyzeAccess(ctx)
	if err != nil {
		return nil, err
	}
	errorStats, err := a.AnalyzeErrors(ctx)
	if err != nil {
		return nil, err
	}
	successStats, err := a.AnalyzeSuccessful(ctx)
	if err != nil {
		return nil, err
	}

	return &Results{
		Access:      accessStats,
		Errors:      errorStats,
		Successful:  successStats,
		CompletedAt: time.Now(),
		Duration:    time.Since(start),
	}, nil
}

// analyze processes the files of one kind. found is false when no input file
// exists; the only returned error is a cancelled context.
func (a *Analyzer) analyze(ctx context.Context, kind string, detector discovery.Detector, build func(Resolver) fileProcessor) (run stats.RunStats, found bool, err error) {
	start := time.Now()
	defer func() {
		if err == nil && a.observer != nil {
			a.observer.Observe(kind, run, time.Since(start))
		}
	}()

	files := detector.Detect()
	if len(files) == 0 {
		a.logger.Warn("No log files found", a.logger.Args("kind", kind, "dir", a.opts.LogDir, "logs", detector.Name()))
		return run, false, nil
	}

	resolver := enrichment.NewCountryResolver(a.open, a.opts.GeoIPDB, a.logger)
	defer func() {
		if cerr := resolver.Close(); cerr != nil {
			a.logger.WithCaller().Warn("Failed to close GeoIP database", a.logger.Args("error", cerr))
		}
	}()

	a.logger.Info("Starting analysis", a.logger.Args("kind", kind, "files", len(files), "geoip", resolver.Enabled()))

	proc := build(resolver)
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return run, true, fmt.Errorf("%s analysis cancelled: %w", kind, err)
		}
		// Failures are logged and counted by the processor
		_ = proc.ProcessFile(path)
	}

	run = proc.Run()
	run.FilesFound = len(files)
	return run, true, nil
}
