// Package engine ties the pipeline together: raw text is extracted,
// normalized, classified, deduplicated and partitioned into a LinkBatch, and
// any artifact of a batch can be re-checked for liveness.
package engine

import (
	"context"
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/btraven00/linksift/internal/batch"
	"github.com/btraven00/linksift/internal/classifier"
	"github.com/btraven00/linksift/internal/extractor"
	"github.com/btraven00/linksift/internal/logger"
	"github.com/btraven00/linksift/internal/platforms"
	"github.com/btraven00/linksift/internal/prober"
)

// Recorder receives classification and probe metrics.
type Recorder interface {
	prober.Recorder
	Classified(category string, n int)
}

// Prober checks a set of links for liveness.
type Prober interface {
	Probe(ctx context.Context, links []string) *prober.Report
	Estimate(count int) time.Duration
}

// CleanResult is the outcome of cleaning one artifact.
type CleanResult struct {
	Category platforms.Category `json:"category"`
	Report   *prober.Report     `json:"report"`
}

// Engine runs the sort and clean pipelines.
type Engine struct {
	classifier *classifier.Classifier
	prober     Prober
	recorder   Recorder
	log        logger.Logger
	registry   *platforms.Registry
	proberOpts []prober.Option
	cfg        prober.Config
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used by the engine and its prober.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithRegistry sets the platform registry for classification and probing.
func WithRegistry(r *platforms.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithProber replaces the liveness prober.
func WithProber(p Prober) Option {
	return func(e *Engine) { e.prober = p }
}

// WithProberOptions passes extra options to the default prober.
func WithProberOptions(opts ...prober.Option) Option {
	return func(e *Engine) { e.proberOpts = append(e.proberOpts, opts...) }
}

// New creates an engine probing with cfg.
func New(cfg prober.Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		log:      logger.NewNop(),
		registry: platforms.DefaultRegistry,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.classifier = classifier.New(e.registry)

	if e.prober == nil {
		popts := []prober.Option{
			prober.WithRegistry(e.registry),
			prober.WithLogger(e.log),
		}
		if e.recorder != nil {
			popts = append(popts, prober.WithRecorder(e.recorder))
		}
		e.prober = prober.New(cfg, append(popts, e.proberOpts...)...)
	}

	return e
}

// Classifier returns the classifier in use.
func (e *Engine) Classifier() *classifier.Classifier {
	return e.classifier
}

// Sort reads r and builds a batch from every link it contains.
func (e *Engine) Sort(ctx context.Context, r io.Reader) (*batch.LinkBatch, error) {
	lines, err := extractor.ReadLines(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return e.SortLines(lines), nil
}

// SortText builds a batch from a raw text blob of unknown encoding.
func (e *Engine) SortText(data []byte) *batch.LinkBatch {
	return e.SortLines(extractor.SplitLines(data))
}

// SortLines builds a batch from decoded input lines.
func (e *Engine) SortLines(lines []string) *batch.LinkBatch {
	start := time.Now()

	b := batch.Build(e.entries(lines))

	for _, c := range b.Categories() {
		n := len(b.Entries(c))
		if e.recorder != nil {
			e.recorder.Classified(string(c), n)
		}
		e.log.Debug("category built",
			logger.String("category", string(c)),
			logger.Int("total", n),
		)
	}

	e.log.Info("batch sorted",
		logger.Int("lines", len(lines)),
		logger.Int("total", b.Len()),
		logger.Int("categories", len(b.Categories())),
		logger.Duration("elapsed", time.Since(start)),
	)

	return b
}

func (e *Engine) entries(lines []string) iter.Seq[batch.Entry] {
	return func(yield func(batch.Entry) bool) {
		for _, link := range extractor.Links(lines) {
			if !yield(batch.Entry{Link: link, Class: e.classifier.Classify(link)}) {
				return
			}
		}
	}
}

// Estimate returns the worst-case probe duration for count links.
func (e *Engine) Estimate(count int) time.Duration {
	return e.prober.Estimate(count)
}

// Clean probes links and returns the report with the surviving subset.
func (e *Engine) Clean(ctx context.Context, links []string) *prober.Report {
	return e.prober.Probe(ctx, links)
}

// CleanCategory probes one named artifact of b. The name may be a category
// or its artifact file name.
func (e *Engine) CleanCategory(ctx context.Context, b *batch.LinkBatch, name string) (*CleanResult, error) {
	c, links, err := b.Lookup(name)
	if err != nil {
		return nil, err
	}

	log := e.log.With(logger.String("category", string(c)))
	log.Info("cleaning artifact",
		logger.Int("total", len(links)),
		logger.Duration("estimate", e.Estimate(len(links))),
	)

	report := e.Clean(ctx, links)

	log.Info("artifact cleaned",
		logger.Int("total", report.Total),
		logger.Int("alive", report.AliveCount),
		logger.Duration("elapsed", report.Elapsed),
	)

	return &CleanResult{Category: c, Report: report}, nil
}
