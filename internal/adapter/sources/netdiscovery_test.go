package sources

import (
	"testing"
	"time"

	"github.com/moolen/depgraph/internal/claim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkDiscovery_WebToSQL(t *testing.T) {
	a := NewNetworkDiscovery()
	raw := "HOST: 10.0.0.1 (web-tier)\n" +
		"PORT: 80/tcp open http nginx\n" +
		"HOST: 10.0.0.2 (db-tier)\n" +
		"PORT: 3306/tcp open mysql\n"

	require.True(t, a.CanProcess(raw))
	claims, err := a.Process(raw, time.Now())
	require.NoError(t, err)
	require.NotEmpty(t, claims)

	found := false
	for _, c := range claims {
		if c.FromService == "web-tier" && c.ToService == "db-tier" {
			found = true
			assert.Equal(t, 0.85, c.Confidence)
			assert.Equal(t, claim.Runtime, c.DependencyType)
		}
	}
	assert.True(t, found, "expected web-tier -> db-tier claim")
}

func TestNetworkDiscovery_NoMatchingRule(t *testing.T) {
	a := NewNetworkDiscovery()
	raw := "HOST: 10.0.0.3 (cache-tier)\nPORT: 6379/tcp open redis\n"
	claims, err := a.Process(raw, time.Now())
	require.NoError(t, err)
	assert.Empty(t, claims)
}
