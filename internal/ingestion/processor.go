package ingestion

import (
	"errors"
	"unicode/utf8"

	parsers "geostats/internal/parser"
	"geostats/internal/parser/access"
	"geostats/internal/parser/errorlog"
	"geostats/internal/stats"

	"github.com/pterm/pterm"
)

const progressEvery = 10000

// Entry is what a processor needs from a parsed line
type Entry interface {
	ClientAddr() string
	SetCountry(country string)
}

// ParseFunc turns one raw line into an entry
type ParseFunc[E Entry] func(line string) (E, error)

// Aggregator folds accepted entries
type Aggregator[E Entry] interface {
	Add(entry E)
}

// Resolver maps an IP to a country code
type Resolver interface {
	Resolve(ip string) string
}

// Processor drives one log kind: parse, filter, resolve, aggregate.
// Not safe for concurrent use.
type Processor[E Entry] struct {
	kind     string
	parse    ParseFunc[E]
	agg      Aggregator[E]
	resolver Resolver
	filter   *Filter
	logger   *pterm.Logger
	run      stats.RunStats
}

// NewProcessor creates a processor for one log kind
func NewProcessor[E Entry](kind string, parse ParseFunc[E], agg Aggregator[E], resolver Resolver, filter *Filter, logger *pterm.Logger) *Processor[E] {
	return &Processor[E]{
		kind:     kind,
		parse:    parse,
		agg:      agg,
		resolver: resolver,
		filter:   filter,
		logger:   logger,
	}
}

// NewAccessProcessor creates a processor for access logs
func NewAccessProcessor(agg *stats.AccessAggregator, resolver Resolver, filter *Filter, logger *pterm.Logger) *Processor[*access.Entry] {
	return NewProcessor[*access.Entry](KindAccess, access.NewParser(logger).Parse, agg, resolver, filter, logger)
}

// NewErrorProcessor creates a processor for error logs
func NewErrorProcessor(agg *stats.ErrorAggregator, resolver Resolver, filter *Filter, logger *pterm.Logger) *Processor[*errorlog.Entry] {
	return NewProcessor[*errorlog.Entry](KindError, errorlog.NewParser(logger).Parse, agg, resolver, filter, logger)
}

// NewSuccessProcessor creates a processor for 2xx requests in access logs
func NewSuccessProcessor(agg *stats.SuccessfulAggregator, resolver Resolver, filter *Filter, logger *pterm.Logger) *Processor[*access.Entry] {
	return NewProcessor[*access.Entry](KindSuccessful, access.NewSuccessParser(logger).Parse, agg, resolver, filter, logger)
}

// ProcessLine folds one line and reports whether it was accepted
func (p *Processor[E]) ProcessLine(line string) bool {
	p.run.LinesRead++

	entry, err := p.parse(line)
	if err != nil {
		p.run.Reject(err)
		if !errors.Is(err, parsers.ErrEmptyLine) {
			p.logger.Trace("Skipping line",
				p.logger.Args("kind", p.kind, "reason", parsers.Reason(err), "line_preview", truncate(line, 100)))
		}
		return false
	}

	ip := entry.ClientAddr()
	if p.filter.SkipIP(ip) {
		p.run.FilteredSelfIP++
		return false
	}

	country := p.resolver.Resolve(ip)
	entry.SetCountry(country)

	if p.filter.SkipCountry(country) {
		p.run.FilteredCountry++
		return false
	}

	p.agg.Add(entry)
	p.run.Accepted++
	return true
}

// ProcessFile folds every line of path. A read failure is logged, counted
// and returned; lines read before the failure stay aggregated.
func (p *Processor[E]) ProcessFile(path string) error {
	p.logger.Info("Processing log file", p.logger.Args("kind", p.kind, "path", path))

	lineNum := 0
	err := ForEachLine(path, func(line string) {
		lineNum++
		p.ProcessLine(line)
		if lineNum%progressEvery == 0 {
			p.logger.Debug("Processing progress",
				p.logger.Args("kind", p.kind, "path", path, "lines", lineNum, "accepted", p.run.Accepted))
		}
	})
	if err != nil {
		p.run.FilesFailed++
		p.logger.WithCaller().Warn("Failed to process log file",
			p.logger.Args("kind", p.kind, "path", path, "lines", lineNum, "error", err))
		return err
	}

	p.run.FilesProcessed++
	p.logger.Debug("Finished log file", p.logger.Args("kind", p.kind, "path", path, "lines", lineNum))
	return nil
}

// Run returns the counters collected so far
func (p *Processor[E]) Run() stats.RunStats {
	return p.run
}

// truncate shortens s to at most maxLen bytes for logging, cutting on a rune boundary
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
