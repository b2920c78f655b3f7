package ingest

import (
	"context"
	"testing"

	"github.com/moolen/depgraph/internal/adapter"
	"github.com/moolen/depgraph/internal/adapter/sources"
	"github.com/moolen/depgraph/internal/normalize"
	"github.com/moolen/depgraph/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *adapter.Registry {
	r := adapter.NewRegistry()
	r.Register(sources.NewRouterLog())
	r.Register(sources.NewConfigFile())
	r.Register(sources.NewCustomText())
	return r
}

func TestIngestRouterLogLine(t *testing.T) {
	o := New(newTestRegistry(), normalize.New(), store.New(), nil, 0)
	in := Input{
		RawData: "2024-07-04 10:30:45 [INFO] 192.168.1.100 -> 192.168.1.200:8080 GET /api/users 200 125ms",
	}
	result, err := o.Ingest(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "router-log", result.SourceType)
	assert.Equal(t, 1, result.RawClaimsExtracted)
	assert.Equal(t, 1, result.ClaimsAfterNormalization)
	assert.Equal(t, 1, result.ClaimsSaved)
	assert.Equal(t, 0, result.ErrorCount)
}

func TestIngestEmptyInputIsNotAnError(t *testing.T) {
	o := New(newTestRegistry(), normalize.New(), store.New(), nil, 0)
	result, err := o.Ingest(context.Background(), Input{RawData: "   \n\t  "})
	require.NoError(t, err)
	assert.Equal(t, 0, result.RawClaimsExtracted)
	assert.Equal(t, 0, result.ClaimsSaved)
}

func TestIngestMissingFileIsAdapterError(t *testing.T) {
	o := New(newTestRegistry(), normalize.New(), store.New(), nil, 0)
	_, err := o.Ingest(context.Background(), Input{FilePath: "/nonexistent/path/file.log"})
	require.Error(t, err)
	var adapterErr *adapter.Error
	assert.ErrorAs(t, err, &adapterErr)
}

func TestIngestAllRunsConcurrently(t *testing.T) {
	o := New(newTestRegistry(), normalize.New(), store.New(), nil, 4)
	inputs := []Input{
		{RawData: "a -> b"},
		{RawData: "c -> d"},
	}
	results, err := o.IngestAll(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, 1, r.ClaimsSaved)
	}
}
