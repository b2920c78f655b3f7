package export

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/depgraph/internal/claim"
	"github.com/moolen/depgraph/internal/resolver"
)

func testGraph() resolver.ResolvedGraph {
	c := claim.New("web-portal", "user-management-service", claim.APICall, 0.95, "router-log", "raw", claim.NewMetadata(), time.Now())
	return resolver.ResolvedGraph{
		"web-portal": {"user-management-service": c},
	}
}

func TestGraphMLContainsNodesAndEdges(t *testing.T) {
	data, err := GraphML(testGraph())
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `edgedefault="directed"`)
	assert.Contains(t, s, `<node id="web-portal"`)
	assert.Contains(t, s, `<node id="user-management-service"`)
	assert.Contains(t, s, `source="web-portal" target="user-management-service"`)
	assert.Contains(t, s, "API_CALL")
}

func TestGraphMLDeterministic(t *testing.T) {
	a, err := GraphML(testGraph())
	require.NoError(t, err)
	b, err := GraphML(testGraph())
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestWriteSnapshot(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteSnapshot(dir, testGraph(), time.Now())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".graphml"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "graphml")
}
