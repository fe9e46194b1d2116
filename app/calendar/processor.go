package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
)

// Processor coordinates a combined request: per-source fetch, parse and
// filter run independently, survivors are merged in request order and
// wrapped into a single output document.
type Processor struct {
	fetcher   *Fetcher
	parser    *Parser
	filterer  *Filterer
	merger    *Merger
	generator *Generator
}

func NewProcessor(fetcher *Fetcher) *Processor {
	return &Processor{
		fetcher:   fetcher,
		parser:    NewParser(),
		filterer:  NewFilterer(),
		merger:    NewMerger(),
		generator: NewGenerator(),
	}
}

func (p *Processor) Run(ctx context.Context, req Request) (string, error) {
	if err := p.Validate(req); err != nil {
		return "", err
	}

	type sourceResult struct {
		events []Event
		err    error
	}

	// Sources are independent; a slow or failing source must not block or
	// fail its siblings. Results stay indexed by spec position so the
	// merge preserves request order.
	results := make([]sourceResult, len(req.Calendars))
	var wg sync.WaitGroup
	for i, spec := range req.Calendars {
		wg.Add(1)
		go func(i int, spec Spec) {
			defer wg.Done()
			events, err := p.processSpec(ctx, spec)
			results[i] = sourceResult{events: events, err: err}
		}(i, spec)
	}
	wg.Wait()

	sequences := make([][]Event, 0, len(results))
	var sourceErrors []SourceError
	for i, result := range results {
		if result.err != nil {
			slog.Warn("Calendar source failed", "url", req.Calendars[i].URL, "error", result.err)
			sourceErrors = append(sourceErrors, SourceError{URL: req.Calendars[i].URL, Err: result.err})
			continue
		}
		sequences = append(sequences, result.events)
	}

	if len(sequences) == 0 {
		return "", &AllSourcesFailedError{Errors: sourceErrors}
	}

	merged := p.merger.Run(sequences)
	slog.Debug("Combined calendar built", "sources", len(sequences), "failed_sources", len(sourceErrors), "events", len(merged))

	return p.generator.Run(merged), nil
}

func (p *Processor) processSpec(ctx context.Context, spec Spec) ([]Event, error) {
	data, err := p.fetcher.Run(ctx, spec.URL)
	if err != nil {
		return nil, err
	}

	events, err := p.parser.Run(data)
	if err != nil {
		return nil, &ParseError{URL: spec.URL, Err: err}
	}

	return p.filterer.Run(events, spec), nil
}

// Validate checks request shape before any network call is made.
func (p *Processor) Validate(req Request) error {
	if len(req.Calendars) == 0 {
		return &InvalidConfigError{Reason: "at least one calendar is required"}
	}

	for i, spec := range req.Calendars {
		if spec.URL == "" {
			return &InvalidConfigError{Reason: fmt.Sprintf("calendar %d: url is required", i)}
		}

		parsed, err := url.Parse(spec.URL)
		if err != nil {
			return &InvalidConfigError{Reason: fmt.Sprintf("calendar %d: invalid url", i)}
		}
		if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return &InvalidConfigError{Reason: fmt.Sprintf("calendar %d: only http and https URLs are supported", i)}
		}
	}

	return nil
}
