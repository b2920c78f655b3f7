// Package ingest implements the end-to-end ingestion orchestrator:
// detect source type, parse via the matching adapter, normalize, and
// persist, returning a summary of what happened.
package ingest

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/moolen/depgraph/internal/adapter"
	"github.com/moolen/depgraph/internal/logging"
	"github.com/moolen/depgraph/internal/normalize"
	"github.com/moolen/depgraph/internal/store"
)

// IngestionResult summarizes one call to Ingest. A partially-bad batch is
// success with a nonzero ErrorCount, never an error.
type IngestionResult struct {
	ID                       uuid.UUID
	SourceType               string
	SourceID                 string
	RawClaimsExtracted       int
	ClaimsAfterNormalization int
	ClaimsSaved              int
	ErrorCount               int
	ProcessingTimeMs         int64
	StartTime                time.Time
}

// Metrics holds the Prometheus instruments the orchestrator updates.
// Constructed against a caller-owned registry; no HTTP endpoint is wired
// here; the registry is reachable programmatically for an embedding caller
// to expose.
type Metrics struct {
	claimsExtracted prometheus.Counter
	claimsSaved     prometheus.Counter
	claimsDropped   prometheus.Counter
	duration        prometheus.Histogram
}

// NewMetrics registers the orchestrator's instruments on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		claimsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "depgraph_claims_extracted_total",
			Help: "Total raw claims extracted by adapters.",
		}),
		claimsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "depgraph_claims_saved_total",
			Help: "Total normalized claims persisted to the evidence store.",
		}),
		claimsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "depgraph_claims_dropped_total",
			Help: "Total claims dropped due to per-claim persistence failure.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "depgraph_ingestion_duration_seconds",
			Help:    "Wall-clock duration of a single Ingest call.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.claimsExtracted, m.claimsSaved, m.claimsDropped, m.duration)
	return m
}

// Input describes one call to Ingest: either raw bytes or a file path to
// read them from, plus optional source-type/source-id hints.
type Input struct {
	RawData        string
	FilePath       string
	SourceTypeHint string
	SourceID       string
}

// Orchestrator wires the adapter registry, normalizer, and evidence store
// into the end-to-end pipeline, bounding concurrent ingestions with a
// semaphore, one request per worker.
type Orchestrator struct {
	registry   *adapter.Registry
	normalizer *normalize.Normalizer
	store      *store.Store
	metrics    *Metrics
	sem        chan struct{}
	logger     *logging.Logger
}

// defaultMaxConcurrency bounds the worker pool when New is called without
// an explicit concurrency (0).
const defaultMaxConcurrency = 8

// New constructs an Orchestrator. maxConcurrency caps the number of Ingest
// calls running at once; 0 uses the default.
func New(registry *adapter.Registry, normalizer *normalize.Normalizer, evidence *store.Store, metrics *Metrics, maxConcurrency int) *Orchestrator {
	if maxConcurrency <= 0 {
		maxConcurrency = defaultMaxConcurrency
	}
	return &Orchestrator{
		registry:   registry,
		normalizer: normalizer,
		store:      evidence,
		metrics:    metrics,
		sem:        make(chan struct{}, maxConcurrency),
		logger:     logging.GetLogger("ingest"),
	}
}

// Ingest runs the full pipeline for one input: detect → parse → normalize →
// persist. A per-claim save failure is logged, counted, and skipped; the
// batch continues. A parser failure aborts the batch
// and returns a wrapped *adapter.Error.
func (o *Orchestrator) Ingest(ctx context.Context, in Input) (IngestionResult, error) {
	select {
	case o.sem <- struct{}{}:
		defer func() { <-o.sem }()
	case <-ctx.Done():
		return IngestionResult{}, ctx.Err()
	}

	start := time.Now()
	result := IngestionResult{
		ID:        uuid.New(),
		SourceID:  in.SourceID,
		StartTime: start,
	}

	raw, filename, err := readInput(in)
	if err != nil {
		return result, err
	}

	if isBlank(raw) {
		result.ProcessingTimeMs = time.Since(start).Milliseconds()
		return result, nil
	}

	a := o.registry.Detect(in.SourceTypeHint, filename, raw)
	if a == nil {
		return result, adapter.Wrap("unknown", fmt.Errorf("no adapter available to process input"))
	}
	result.SourceType = a.Name()

	if err := ctx.Err(); err != nil {
		return result, err
	}

	claims, err := a.Process(raw, start)
	if err != nil {
		return result, adapter.Wrap(a.Name(), err)
	}
	result.RawClaimsExtracted = len(claims)
	if o.metrics != nil {
		o.metrics.claimsExtracted.Add(float64(len(claims)))
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	normalized := o.normalizer.Normalize(claims, start)
	result.ClaimsAfterNormalization = len(normalized)

	for _, nc := range normalized {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := o.store.Save(nc.Claim); err != nil {
			o.logger.WarnWithFields("ingest: dropping claim after persistence failure",
				logging.Field("from", nc.Claim.FromService),
				logging.Field("to", nc.Claim.ToService),
				logging.Field("error", err.Error()),
			)
			result.ErrorCount++
			if o.metrics != nil {
				o.metrics.claimsDropped.Inc()
			}
			continue
		}
		result.ClaimsSaved++
		if o.metrics != nil {
			o.metrics.claimsSaved.Inc()
		}
	}

	result.ProcessingTimeMs = time.Since(start).Milliseconds()
	if o.metrics != nil {
		o.metrics.duration.Observe(time.Since(start).Seconds())
	}
	return result, nil
}

// IngestAll runs Ingest over every input concurrently, bounded by the
// orchestrator's semaphore, via an errgroup. The first error cancels the
// group's context
// and is returned; results for inputs that completed are still returned
// alongside it.
func (o *Orchestrator) IngestAll(ctx context.Context, inputs []Input) ([]IngestionResult, error) {
	results := make([]IngestionResult, len(inputs))
	g, gctx := errgroup.WithContext(ctx)

	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			res, err := o.Ingest(gctx, in)
			results[i] = res
			return err
		})
	}

	err := g.Wait()
	return results, err
}

func isBlank(raw string) bool {
	for _, r := range raw {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

// readInput reads in.RawData directly, or the file at in.FilePath if set.
// A BOM is stripped, and both \n and \r\n line endings are tolerated by
// the adapters themselves.
func readInput(in Input) (raw string, filename string, err error) {
	if in.FilePath != "" {
		data, readErr := os.ReadFile(in.FilePath)
		if readErr != nil {
			return "", in.FilePath, adapter.Wrap("file-reader", readErr)
		}
		return stripBOM(string(data)), in.FilePath, nil
	}
	return stripBOM(in.RawData), "", nil
}

func stripBOM(s string) string {
	const bom = "\uFEFF"
	if len(s) >= len(bom) && s[:len(bom)] == bom {
		return s[len(bom):]
	}
	return s
}
