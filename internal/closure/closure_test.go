package closure

import (
	"testing"
	"time"

	"github.com/moolen/depgraph/internal/claim"
	"github.com/moolen/depgraph/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func edge(from, to string) claim.Claim {
	return claim.New(from, to, claim.Runtime, 0.9, "test", "raw", claim.NewMetadata(), time.Now())
}

func buildGraph(edges ...claim.Claim) resolver.ResolvedGraph {
	g := make(resolver.ResolvedGraph)
	for _, c := range edges {
		if g[c.FromService] == nil {
			g[c.FromService] = make(map[string]claim.Claim)
		}
		g[c.FromService][c.ToService] = c
	}
	return g
}

func TestComputeLinearChain(t *testing.T) {
	g := buildGraph(edge("A", "B"), edge("B", "C"))
	c := Compute(g)

	require.Contains(t, c, "A")
	assert.ElementsMatch(t, []string{"B", "C"}, c["A"].Values())
	assert.ElementsMatch(t, []string{"C"}, c["B"].Values())
	assert.Equal(t, 0, c["C"].Len())
}

func TestComputeIsReflexiveFree(t *testing.T) {
	g := buildGraph(edge("A", "B"))
	c := Compute(g)
	assert.False(t, c["A"].Contains("A"))
	assert.False(t, c["B"].Contains("B"))
}

func TestComputeHandlesCycles(t *testing.T) {
	g := buildGraph(edge("A", "B"), edge("B", "A"))
	c := Compute(g)
	assert.ElementsMatch(t, []string{"B"}, c["A"].Values())
	assert.ElementsMatch(t, []string{"A"}, c["B"].Values())
	assert.False(t, c["A"].Contains("A"))
	assert.False(t, c["B"].Contains("B"))
}
