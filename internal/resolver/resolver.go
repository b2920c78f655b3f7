// Package resolver implements the conflict resolver: collapsing the
// multiset of claims on each edge to one winning claim via a weighted score.
package resolver

import (
	"fmt"
	"strings"
	"time"

	"github.com/moolen/depgraph/internal/claim"
	"github.com/moolen/depgraph/internal/logging"
	"github.com/moolen/depgraph/internal/reliability"
)

// ResolvedGraph is the adjacency mapping fromService → (toService → winning
// Claim). It contains an edge iff the evidence store has ≥1 claim for it.
type ResolvedGraph map[string]map[string]claim.Claim

// Edges returns the total number of realized edges across the graph.
func (g ResolvedGraph) Edges() int {
	n := 0
	for _, out := range g {
		n += len(out)
	}
	return n
}

// Vertices returns every distinct service name appearing as either side of
// an edge, in no particular order.
func (g ResolvedGraph) Vertices() []string {
	seen := make(map[string]bool)
	for from, out := range g {
		seen[from] = true
		for to := range out {
			seen[to] = true
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	return out
}

// ScoreConfig holds the resolver's two independent configuration knobs:
// per-source scoring priority, and manual per-edge overrides. Both
// are read-only process-wide configuration.
type ScoreConfig struct {
	// Priorities maps a source name to its scoring priority; sources not
	// listed default to 1.0.
	Priorities map[string]float64
	// Overrides maps "from->to" to the source name that should win that
	// edge outright, bypassing scoring. Matching is case-insensitive and
	// trimmed on the source value.
	Overrides map[string]string
}

// DefaultScoreConfig returns an empty ScoreConfig (every source at priority
// 1.0, no overrides).
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{Priorities: map[string]float64{}, Overrides: map[string]string{}}
}

func (c ScoreConfig) priority(source string) float64 {
	if p, ok := c.Priorities[source]; ok {
		return p
	}
	return 1.0
}

// Resolver collapses per-edge claim multisets into a ResolvedGraph.
type Resolver struct {
	reliability *reliability.Tracker
	config      ScoreConfig
	now         func() time.Time
	logger      *logging.Logger
}

// New constructs a Resolver scoring against rel and cfg. now defaults to
// time.Now if nil; tests inject a fixed clock for deterministic recency.
func New(rel *reliability.Tracker, cfg ScoreConfig, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	if cfg.Priorities == nil {
		cfg.Priorities = map[string]float64{}
	}
	if cfg.Overrides == nil {
		cfg.Overrides = map[string]string{}
	}
	return &Resolver{reliability: rel, config: cfg, now: now, logger: logging.GetLogger("resolver")}
}

// groupByEdge buckets claims by directed edge, the input shape Resolve
// needs: every claim for every edge, without caring how the caller sourced them (store.FindAll, or a
// synthetic test fixture).
func groupByEdge(claims []claim.Claim) map[claim.EdgeKey][]claim.Claim {
	byEdge := make(map[claim.EdgeKey][]claim.Claim)
	for _, c := range claims {
		key := c.EdgeKey()
		byEdge[key] = append(byEdge[key], c)
	}
	return byEdge
}

// Resolve collapses claims (typically store.FindAll()) into a ResolvedGraph.
// An empty input yields an empty, non-nil graph, never an error. Resolve
// never mutates claims.
func (r *Resolver) Resolve(claims []claim.Claim) ResolvedGraph {
	graph := make(ResolvedGraph)
	byEdge := groupByEdge(claims)

	for key, edgeClaims := range byEdge {
		n := len(edgeClaims)

		if overrideSource, ok := r.config.Overrides[overrideKey(key.From, key.To)]; ok {
			if winner, found := findOverride(edgeClaims, overrideSource); found {
				r.place(graph, key, winner)
				continue
			}
			r.logger.Debug("resolver: override for %s->%s names source %q with no claim on this edge, falling back to scoring",
				key.From, key.To, overrideSource)
		}

		winner := r.scoreWinner(edgeClaims, n)
		r.place(graph, key, winner)
	}

	return graph
}

func (r *Resolver) place(graph ResolvedGraph, key claim.EdgeKey, c claim.Claim) {
	if graph[key.From] == nil {
		graph[key.From] = make(map[string]claim.Claim)
	}
	graph[key.From][key.To] = c
}

func overrideKey(from, to string) string {
	return from + "->" + to
}

// findOverride returns the first claim (in insertion order) whose source
// matches wantSource case-insensitively and trimmed.
func findOverride(claims []claim.Claim, wantSource string) (claim.Claim, bool) {
	want := strings.ToLower(strings.TrimSpace(wantSource))
	for _, c := range claims {
		if strings.ToLower(strings.TrimSpace(c.Source)) == want {
			return c, true
		}
	}
	return claim.Claim{}, false
}

// scoreWinner picks the highest-scoring claim among edgeClaims, with ties
// broken by most recent timestamp then lexicographic source name.
func (r *Resolver) scoreWinner(edgeClaims []claim.Claim, n int) claim.Claim {
	now := r.now()
	best := edgeClaims[0]
	bestScore := r.score(best, n, now)

	for _, c := range edgeClaims[1:] {
		s := r.score(c, n, now)
		if s > bestScore || (s == bestScore && tiebreak(c, best)) {
			best, bestScore = c, s
		}
	}
	return best
}

// tiebreak reports whether candidate should replace current given an equal
// score: more recent timestamp wins, then lexicographically smaller source.
func tiebreak(candidate, current claim.Claim) bool {
	if !candidate.Timestamp.Equal(current.Timestamp) {
		return candidate.Timestamp.After(current.Timestamp)
	}
	return candidate.Source < current.Source
}

// score computes the weighted claim score:
//
//	score(c, n) = confidence(c)·priority(source(c))·reliability(source(c)) + n + recency(c)
func (r *Resolver) score(c claim.Claim, n int, now time.Time) float64 {
	priority := r.config.priority(c.Source)
	rel := r.reliability.Reliability(c.Source)
	return c.Confidence*priority*rel + float64(n) + recency(c, now)
}

// recency returns 1/(1+ageInSeconds), or 0 if the claim carries a zero
// timestamp.
func recency(c claim.Claim, now time.Time) float64 {
	if c.Timestamp.IsZero() {
		return 0
	}
	age := now.Sub(c.Timestamp).Seconds()
	if age < 0 {
		age = 0
	}
	return 1 / (1 + age)
}

// Rationale returns a short human-readable explanation of why c would win
// (or did win) its edge, for audit/reporting. It does not affect scoring.
func (r *Resolver) Rationale(c claim.Claim, n int, now time.Time) string {
	priority := r.config.priority(c.Source)
	rel := r.reliability.Reliability(c.Source)
	age := "unknown age"
	if !c.Timestamp.IsZero() {
		age = fmt.Sprintf("observed %s ago", now.Sub(c.Timestamp).Round(time.Second))
	}
	return fmt.Sprintf("priority %.2f · reliability %.2f · corroborated by %d claim(s) · %s",
		priority, rel, n, age)
}
