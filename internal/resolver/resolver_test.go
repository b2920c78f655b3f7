package resolver

import (
	"testing"
	"time"

	"github.com/moolen/depgraph/internal/claim"
	"github.com/moolen/depgraph/internal/reliability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestResolveEmptyStoreYieldsEmptyGraph(t *testing.T) {
	r := New(reliability.New(), DefaultScoreConfig(), nil)
	g := r.Resolve(nil)
	assert.Equal(t, 0, g.Edges())
}

func TestResolvePicksHighestScore(t *testing.T) {
	now := time.Now()
	claims := []claim.Claim{
		claim.New("a", "b", claim.APICall, 0.9, "router-log", "raw1", claim.NewMetadata(), now),
		claim.New("a", "b", claim.APICall, 0.2, "network-discovery", "raw2", claim.NewMetadata(), now),
	}
	r := New(reliability.New(), DefaultScoreConfig(), fixedNow(now))
	g := r.Resolve(claims)
	winner, ok := g["a"]["b"]
	require.True(t, ok)
	assert.Equal(t, "router-log", winner.Source)
}

func TestResolveOverrideBypassesScoring(t *testing.T) {
	now := time.Now()
	auto := claim.New("ServiceA", "ServiceC", claim.APICall, 0.9, "auto", "raw-auto", claim.NewMetadata(), now.Add(-time.Hour))
	manual := claim.New("ServiceA", "ServiceC", claim.APICall, 0.6, "manual", "raw-manual", claim.NewMetadata(), now)

	cfg := DefaultScoreConfig()
	cfg.Overrides["ServiceA->ServiceC"] = "manual"
	r := New(reliability.New(), cfg, fixedNow(now))

	g := r.Resolve([]claim.Claim{auto, manual})
	winner, ok := g["ServiceA"]["ServiceC"]
	require.True(t, ok)
	assert.Equal(t, "manual", winner.Source)
}

func TestResolvePriorityDominatesWithoutOverride(t *testing.T) {
	now := time.Now()
	auto := claim.New("ServiceA", "ServiceC", claim.APICall, 0.9, "auto", "raw-auto", claim.NewMetadata(), now.Add(-time.Hour))
	manual := claim.New("ServiceA", "ServiceC", claim.APICall, 0.6, "manual", "raw-manual", claim.NewMetadata(), now)

	cfg := DefaultScoreConfig()
	cfg.Priorities["manual"] = 5
	r := New(reliability.New(), cfg, fixedNow(now))

	g := r.Resolve([]claim.Claim{auto, manual})
	winner, ok := g["ServiceA"]["ServiceC"]
	require.True(t, ok)
	assert.Equal(t, "manual", winner.Source)
}

func TestResolveIgnoresOverrideWithNoMatchingClaim(t *testing.T) {
	now := time.Now()
	claims := []claim.Claim{
		claim.New("a", "b", claim.APICall, 0.9, "router-log", "raw", claim.NewMetadata(), now),
	}
	cfg := DefaultScoreConfig()
	cfg.Overrides["a->b"] = "nonexistent-source"
	r := New(reliability.New(), cfg, fixedNow(now))

	g := r.Resolve(claims)
	winner, ok := g["a"]["b"]
	require.True(t, ok)
	assert.Equal(t, "router-log", winner.Source)
}

func TestResolveFrequencyBonusPerEdgeIndependent(t *testing.T) {
	now := time.Now()
	claims := []claim.Claim{
		claim.New("a", "b", claim.APICall, 0.7, "auto", "raw1", claim.NewMetadata(), now),
		claim.New("a", "b", claim.APICall, 0.7, "auto", "raw2", claim.NewMetadata(), now),
		claim.New("a", "c", claim.APICall, 0.9, "auto", "raw3", claim.NewMetadata(), now),
	}
	r := New(reliability.New(), DefaultScoreConfig(), fixedNow(now))
	g := r.Resolve(claims)
	_, okB := g["a"]["b"]
	_, okC := g["a"]["c"]
	assert.True(t, okB)
	assert.True(t, okC)
}

func TestResolveDeterministic(t *testing.T) {
	now := time.Now()
	claims := []claim.Claim{
		claim.New("a", "b", claim.APICall, 0.8, "router-log", "raw1", claim.NewMetadata(), now),
		claim.New("a", "b", claim.APICall, 0.8, "network-discovery", "raw2", claim.NewMetadata(), now),
	}
	rel := reliability.New()
	cfg := DefaultScoreConfig()
	r1 := New(rel, cfg, fixedNow(now))
	r2 := New(rel, cfg, fixedNow(now))

	g1 := r1.Resolve(claims)
	g2 := r2.Resolve(claims)
	assert.Equal(t, g1["a"]["b"].Source, g2["a"]["b"].Source)
}

func TestRationaleMentionsFactors(t *testing.T) {
	now := time.Now()
	c := claim.New("a", "b", claim.APICall, 0.9, "router-log", "raw", claim.NewMetadata(), now.Add(-3*time.Minute))
	r := New(reliability.New(), DefaultScoreConfig(), fixedNow(now))

	got := r.Rationale(c, 2, now)
	assert.Contains(t, got, "priority 1.00")
	assert.Contains(t, got, "reliability 0.80")
	assert.Contains(t, got, "corroborated by 2 claim(s)")
	assert.Contains(t, got, "3m0s ago")
}
