// Package app wires the full evidence-to-graph pipeline into a single
// programmatic surface, the shared dependency every CLI command and
// embedding caller talks to.
package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/moolen/depgraph/internal/adapter"
	"github.com/moolen/depgraph/internal/adapter/sources"
	"github.com/moolen/depgraph/internal/closure"
	"github.com/moolen/depgraph/internal/config"
	"github.com/moolen/depgraph/internal/graphanalysis"
	"github.com/moolen/depgraph/internal/ingest"
	"github.com/moolen/depgraph/internal/normalize"
	"github.com/moolen/depgraph/internal/reliability"
	"github.com/moolen/depgraph/internal/resolver"
	"github.com/moolen/depgraph/internal/store"
)

// allAdapters constructs one instance of every built-in adapter,
// keyed by name for Config.Ingestion.Adapters filtering.
func allAdapters() map[string]adapter.Adapter {
	return map[string]adapter.Adapter{
		sources.RouterLogName:        sources.NewRouterLog(),
		sources.ConfigFileName:       sources.NewConfigFile(),
		sources.NetworkDiscoveryName: sources.NewNetworkDiscovery(),
		sources.CICDPipelineName:     sources.NewCICDPipeline(),
		sources.APIGatewayName:       sources.NewAPIGateway(),
		sources.ObservabilityName:    sources.NewObservability(),
		sources.KubernetesName:       sources.NewKubernetes(),
		sources.CustomTextName:       sources.NewCustomText(),
	}
}

// App wires the evidence store, normalizer, reliability tracker, resolver,
// and ingestion orchestrator from a single Config, and exposes the inbound
// operations: ingest, resolve, transitive, analyze, recordFeedback.
type App struct {
	Config       *config.Config
	Registry     *adapter.Registry
	Store        *store.Store
	Reliability  *reliability.Tracker
	Normalizer   *normalize.Normalizer
	Orchestrator *ingest.Orchestrator
	Metrics      *prometheus.Registry

	tracer trace.Tracer
}

// New wires a full App from cfg. Pass nil for cfg to use config.Default().
func New(cfg *config.Config) *App {
	if cfg == nil {
		cfg = config.Default()
	}

	registry := adapter.NewRegistry()
	available := allAdapters()
	for _, name := range cfg.Ingestion.Adapters {
		if a, ok := available[name]; ok {
			registry.Register(a)
		}
	}

	metricsRegistry := prometheus.NewRegistry()
	metrics := ingest.NewMetrics(metricsRegistry)

	evidence := store.New()
	normalizer := normalize.New()
	orchestrator := ingest.New(registry, normalizer, evidence, metrics, 0)

	return &App{
		Config:       cfg,
		Registry:     registry,
		Store:        evidence,
		Reliability:  reliability.New(),
		Normalizer:   normalizer,
		Orchestrator: orchestrator,
		Metrics:      metricsRegistry,
		tracer:       otel.Tracer("depgraph"),
	}
}

// Ingest runs one ingestion.
func (a *App) Ingest(ctx context.Context, in ingest.Input) (ingest.IngestionResult, error) {
	ctx, span := a.tracer.Start(ctx, "depgraph.ingest")
	defer span.End()

	result, err := a.Orchestrator.Ingest(ctx, in)
	if err != nil {
		span.RecordError(err)
		return result, err
	}
	span.SetAttributes(
		attribute.String("source.type", result.SourceType),
		attribute.Int("claims.extracted", result.RawClaimsExtracted),
		attribute.Int("claims.saved", result.ClaimsSaved),
	)
	return result, nil
}

// scoreConfig translates the app's Config into the resolver's ScoreConfig.
func (a *App) scoreConfig() resolver.ScoreConfig {
	cfg := resolver.DefaultScoreConfig()
	for k, v := range a.Config.Source.Priorities {
		cfg.Priorities[k] = v
	}
	for k, v := range a.Config.Overrides {
		cfg.Overrides[k] = v
	}
	return cfg
}

// Resolve collapses the evidence store into a ResolvedGraph.
func (a *App) Resolve(ctx context.Context) resolver.ResolvedGraph {
	_, span := a.tracer.Start(ctx, "depgraph.resolve")
	defer span.End()

	r := resolver.New(a.Reliability, a.scoreConfig(), nil)
	graph := r.Resolve(a.Store.FindAll())
	span.SetAttributes(attribute.Int("graph.edges", graph.Edges()))
	return graph
}

// Transitive computes the transitive closure over the resolved graph.
func (a *App) Transitive(ctx context.Context) closure.Closure {
	ctx, span := a.tracer.Start(ctx, "depgraph.transitive")
	defer span.End()

	return closure.Compute(a.Resolve(ctx))
}

// AnalyzeKind enumerates the supported analytics.
type AnalyzeKind string

const (
	AnalyzeCriticality AnalyzeKind = "criticality"
	AnalyzeTopology    AnalyzeKind = "topology"
	AnalyzeBottlenecks AnalyzeKind = "bottlenecks"
	AnalyzeHealth      AnalyzeKind = "health"
	AnalyzeImpact      AnalyzeKind = "impact"
)

// Analytics is the tagged-union result of Analyze, only the field matching
// Kind is populated.
type Analytics struct {
	Kind          AnalyzeKind
	Criticalities []graphanalysis.Criticality
	Topology      graphanalysis.Topology
	Bottlenecks   []graphanalysis.Bottleneck
	Health        []graphanalysis.EdgeHealth
	Impact        graphanalysis.CascadeImpact
}

// Analyze runs one analytic over a fresh resolve of the
// evidence store. impactService is only consulted for AnalyzeImpact.
func (a *App) Analyze(ctx context.Context, kind AnalyzeKind, impactService string) Analytics {
	ctx, span := a.tracer.Start(ctx, "depgraph.analyze",
		trace.WithAttributes(attribute.String("analyze.kind", string(kind))))
	defer span.End()

	graph := a.Resolve(ctx)
	switch kind {
	case AnalyzeCriticality:
		return Analytics{Kind: kind, Criticalities: graphanalysis.Criticalities(graph)}
	case AnalyzeTopology:
		return Analytics{Kind: kind, Topology: graphanalysis.AnalyzeTopology(graph)}
	case AnalyzeBottlenecks:
		return Analytics{Kind: kind, Bottlenecks: graphanalysis.Bottlenecks(graph)}
	case AnalyzeHealth:
		return Analytics{Kind: kind, Health: graphanalysis.DependencyHealth(graph, a.Store.FindByEdge, a.Reliability)}
	case AnalyzeImpact:
		return Analytics{Kind: kind, Impact: graphanalysis.Impact(graph, impactService)}
	default:
		return Analytics{Kind: kind}
	}
}

// RecordFeedback updates the reliability tracker for source.
func (a *App) RecordFeedback(source string, correct bool) {
	a.Reliability.RecordFeedback(source, correct)
}
