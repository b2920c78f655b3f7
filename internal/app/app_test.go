package app

import (
	"context"
	"testing"

	"github.com/moolen/depgraph/internal/config"
	"github.com/moolen/depgraph/internal/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndToEndIngestResolveTransitive(t *testing.T) {
	a := New(config.Default())
	ctx := context.Background()

	_, err := a.Ingest(ctx, ingest.Input{RawData: "svc-a -> svc-b\nsvc-b -> svc-c\n"})
	require.NoError(t, err)

	graph := a.Resolve(ctx)
	assert.Equal(t, 2, graph.Edges())

	tc := a.Transitive(ctx)
	require.Contains(t, tc, "svc-a")
	assert.ElementsMatch(t, []string{"svc-b", "svc-c"}, tc["svc-a"].Values())
}

func TestRecordFeedbackUpdatesReliability(t *testing.T) {
	a := New(config.Default())
	ctx := context.Background()
	_, err := a.Ingest(ctx, ingest.Input{RawData: "svc-a -> svc-b\n"})
	require.NoError(t, err)

	a.RecordFeedback("custom-text", true)
	assert.Greater(t, a.Reliability.Reliability("custom-text"), 0.8)
}

func TestAnalyzeCriticality(t *testing.T) {
	a := New(config.Default())
	ctx := context.Background()
	_, err := a.Ingest(ctx, ingest.Input{RawData: "svc-a -> svc-b\nsvc-b -> svc-c\nsvc-c -> svc-a\n"})
	require.NoError(t, err)

	result := a.Analyze(ctx, AnalyzeCriticality, "")
	assert.Len(t, result.Criticalities, 3)
}
