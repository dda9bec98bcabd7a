// Package batch builds office terms for many documents concurrently.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/coolbeans/tenure/pkg/infobox"
	"github.com/coolbeans/tenure/pkg/locale"
	"github.com/coolbeans/tenure/pkg/office"
)

// Document is one page to process.
type Document struct {
	// Name identifies the document in results and logs, usually its path.
	Name string

	// Locale overrides the runner's default locale for this document.
	Locale string

	Page *infobox.Document
}

// Result is the outcome for one document.
type Result struct {
	Name   string        `json:"name"`
	Title  string        `json:"title,omitempty"`
	Locale string        `json:"locale"`
	Terms  []office.Term `json:"terms"`
	Err    error         `json:"-"`

	// Error is Err's message, for encoded output.
	Error string `json:"error,omitempty"`
}

// Fallbacks returns how many term dates were kept as raw text.
func (r Result) Fallbacks() int {
	n := 0
	for _, term := range r.Terms {
		if term.StartRaw != "" {
			n++
		}
		if term.EndRaw != "" {
			n++
		}
	}
	return n
}

// Report is the outcome of one Run.
type Report struct {
	RunID    string    `json:"run_id"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`

	// Results holds one entry per input document, in input order.
	Results []Result `json:"results"`
}

// Failed returns the results that carry an error.
func (r *Report) Failed() []Result {
	var failed []Result
	for _, result := range r.Results {
		if result.Err != nil {
			failed = append(failed, result)
		}
	}
	return failed
}

// Config configures a Runner.
type Config struct {
	// Concurrency bounds the documents processed at once; 0 means unlimited.
	Concurrency int

	// Locale is used for documents that do not name one.
	Locale string

	// Strict fails a document on its first unparseable date.
	Strict bool
}

// Runner builds terms for batches of documents. Documents are independent,
// so they are processed in parallel with no coordination beyond the
// concurrency limit.
type Runner struct {
	registry locale.Registry
	config   Config
	metrics  *Metrics
	logger   *slog.Logger
}

// NewRunner creates a runner that resolves locales through registry.
func NewRunner(registry locale.Registry, config Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Locale == "" {
		config.Locale = locale.DefaultCode
	}
	return &Runner{
		registry: registry,
		config:   config,
		metrics:  NewMetrics(),
		logger:   logger,
	}
}

// Metrics returns the runner's counters.
func (r *Runner) Metrics() *Metrics {
	return r.metrics
}

// Run processes docs. Per-document failures are reported in the results;
// Run itself fails only when a locale is unknown or ctx is cancelled.
func (r *Runner) Run(ctx context.Context, docs []Document) (*Report, error) {
	report := &Report{
		RunID:   uuid.NewString(),
		Started: time.Now(),
		Results: make([]Result, len(docs)),
	}
	logger := r.logger.With("run_id", report.RunID)

	builders, err := r.builders(docs, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Batch started",
		"documents", len(docs),
		"concurrency", r.config.Concurrency)

	g, ctx := errgroup.WithContext(ctx)
	if r.config.Concurrency > 0 {
		g.SetLimit(r.config.Concurrency)
	}

	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			code := r.localeOf(doc)
			result := build(builders[code], doc, code)
			report.Results[i] = result
			r.metrics.observe(result)

			if result.Err != nil {
				logger.Warn("Document failed",
					"document", doc.Name,
					"locale", code,
					"error", result.Err)
			} else {
				logger.Debug("Document processed",
					"document", doc.Name,
					"locale", code,
					"terms", len(result.Terms))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch %s: %w", report.RunID, err)
	}
	report.Finished = time.Now()

	logger.Info("Batch finished",
		"documents", len(docs),
		"failed", len(report.Failed()),
		"duration", report.Finished.Sub(report.Started))
	return report, nil
}

// builders creates one builder per locale used by docs before any work
// starts, so an unknown locale fails the run up front.
func (r *Runner) builders(docs []Document, logger *slog.Logger) (map[string]*office.Builder, error) {
	builders := make(map[string]*office.Builder)
	for _, doc := range docs {
		code := r.localeOf(doc)
		if _, ok := builders[code]; ok {
			continue
		}
		rules, err := r.registry.Lookup(code)
		if err != nil {
			return nil, fmt.Errorf("document %q: %w", doc.Name, err)
		}
		builder := office.NewBuilder(rules, logger.With("locale", code))
		builder.Strict = r.config.Strict
		builders[code] = builder
	}
	return builders, nil
}

func (r *Runner) localeOf(doc Document) string {
	if doc.Locale != "" {
		return doc.Locale
	}
	return r.config.Locale
}

func build(builder *office.Builder, doc Document, code string) Result {
	result := Result{Name: doc.Name, Locale: code}
	if doc.Page == nil {
		result.Err = fmt.Errorf("document %q has no page", doc.Name)
		result.Error = result.Err.Error()
		return result
	}
	result.Title = doc.Page.Title

	terms, err := builder.BuildDocument(doc.Page)
	if err != nil {
		result.Err = err
		result.Error = err.Error()
		return result
	}
	result.Terms = terms
	return result
}
