// Package normalize implements the canonicalization, confidence-calibration,
// and duplicate-merge pipeline a batch of raw Claims goes through before
// they're persisted.
package normalize

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/moolen/depgraph/internal/claim"
	"github.com/moolen/depgraph/internal/logging"
)

// aliasTable maps alternate service spellings to their canonical name.
// Loaded once at startup; read-only thereafter.
var aliasTable = map[string]string{
	"mysql-primary": "mysql-database",
	"mysql-replica": "mysql-database",
	"auth-service":  "authentication-service",
	"auth-svc":      "authentication-service",
	"postgres-db":   "postgresql-database",
	"redis-cache":   "redis-database",
	"kafka-brokers": "kafka-broker",
	"kafka-cluster": "kafka-broker",
	"mongo":         "mongodb-database",
	"mongo-db":      "mongodb-database",
}

// suffixCues maps a substring cue found in a (pre-suffix) service name to the
// suffix that should be appended when the name doesn't already carry a
// recognized suffix of its own.
var suffixCues = []struct {
	cue    string
	suffix string
}{
	{"kafka", "-broker"},
	{"queue", "-broker"},
	{"broker", ""}, // already has it
	{"sql", "-database"},
	{"db", "-database"},
	{"cache", "-database"},
	{"redis", "-database"},
}

var recognizedSuffixes = []string{"-database", "-service", "-broker"}

// SourceWeights calibrates confidence per source family at normalization
// time. Distinct from the resolver's priority table: this shapes confidence
// at ingestion, priority shapes scoring at resolution.
var SourceWeights = map[string]float64{
	"configuration-file": 1.0,
	"router-log":         0.9,
	"network-discovery":  0.7,
}

const defaultSourceWeight = 0.5

// sourceWeight returns the calibration weight for source, matching on
// prefix so e.g. "router-log" and any future "router-*" variant share the
// "router" family weight.
func sourceWeight(source string) float64 {
	if w, ok := SourceWeights[source]; ok {
		return w
	}
	lower := strings.ToLower(source)
	for key, w := range SourceWeights {
		family := strings.SplitN(key, "-", 2)[0]
		if strings.HasPrefix(lower, family) {
			return w
		}
	}
	return defaultSourceWeight
}

// Canon canonicalizes a raw service name: alias lookup, then suffix
// inference, lowercased and trimmed. Canon is idempotent (canon(canon(x))
// == canon(x)) because a name that already carries a recognized suffix is
// only ever alias-checked, and every alias value is itself canonical.
func Canon(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "_", "-")
	if canonical, ok := aliasTable[name]; ok {
		return canonical
	}
	if hasRecognizedSuffix(name) {
		// Adapters suffix the bare host before normalization runs
		// (e.g. "mysql-primary" arrives as "mysql-primary-database"),
		// but the alias table keys on the bare host.
		for _, s := range recognizedSuffixes {
			if bare, ok := strings.CutSuffix(name, s); ok {
				if canonical, aliased := aliasTable[bare]; aliased {
					return canonical
				}
				break
			}
		}
		return name
	}
	for _, cue := range suffixCues {
		if cue.suffix == "" {
			continue
		}
		if strings.Contains(name, cue.cue) {
			return name + cue.suffix
		}
	}
	return name
}

func hasRecognizedSuffix(name string) bool {
	for _, s := range recognizedSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// Normalizer runs the canonicalize → calibrate → merge pipeline over a
// batch of raw Claims.
type Normalizer struct {
	logger *logging.Logger
}

// New constructs a Normalizer.
func New() *Normalizer {
	return &Normalizer{logger: logging.GetLogger("normalize")}
}

// Normalize runs canonicalization, confidence calibration, metadata
// normalization, provenance construction, and duplicate merge over batch,
// returning one NormalizedClaim per distinct canonical edge. A nil or empty
// batch returns an empty (non-nil) slice, never an error.
func (n *Normalizer) Normalize(batch []claim.Claim, now time.Time) []claim.NormalizedClaim {
	if len(batch) == 0 {
		return []claim.NormalizedClaim{}
	}

	type group struct {
		order        int
		base         claim.Claim
		baseOrigConf float64
		prov         []claim.Provenance
		meta         claim.Metadata
		seen         map[string]bool
	}
	groups := make(map[claim.EdgeKey]*group)
	var order []claim.EdgeKey

	for _, c := range batch {
		if c.SelfLoop() {
			n.logger.Debug("normalize: dropping self-loop claim %s->%s", c.FromService, c.ToService)
			continue
		}

		canonClaim := c
		canonClaim.FromService = Canon(c.FromService)
		canonClaim.ToService = Canon(c.ToService)
		if canonClaim.SelfLoop() {
			n.logger.Debug("normalize: dropping claim that canonicalized to a self-loop: %s->%s", c.FromService, c.ToService)
			continue
		}
		originalConfidence := c.Confidence
		canonClaim.Confidence = claim.Clamp(c.Confidence * sourceWeight(c.Source))

		meta := normalizeMetadata(c.Metadata, c.Source, now)
		prov := claim.Provenance{
			Source:             c.Source,
			Timestamp:          c.Timestamp,
			OriginalRawData:    c.RawData,
			OriginalConfidence: originalConfidence,
			OriginalMetadata:   c.Metadata.Clone(),
		}

		key := canonClaim.EdgeKey()
		g, ok := groups[key]
		if !ok {
			g = &group{order: len(order), base: canonClaim, baseOrigConf: originalConfidence, meta: meta, seen: map[string]bool{}}
			groups[key] = g
			order = append(order, key)
		} else if originalConfidence > g.baseOrigConf {
			g.base = canonClaim
			g.baseOrigConf = originalConfidence
		}
		g.prov = append(g.prov, prov)
		g.meta = g.meta.Merge(meta)
		g.seen[c.Source] = true
	}

	out := make([]claim.NormalizedClaim, 0, len(order))
	for _, key := range order {
		g := groups[key]
		sources := make([]string, 0, len(g.seen))
		for s := range g.seen {
			sources = append(sources, s)
		}
		sort.Strings(sources)
		g.meta.Set("merged_from_sources", fmt.Sprintf("%d", len(g.prov)))
		g.meta.Set("all_sources", strings.Join(sources, ","))

		final := g.base
		final.Metadata = g.meta
		out = append(out, claim.NormalizedClaim{Claim: final, Provenance: g.prov})
	}
	return out
}

// normalizeMetadata lowercases keys, rewrites spaces/hyphens to underscores,
// maps empty values to "unknown", and injects the standard source_type /
// normalized_at keys.
func normalizeMetadata(m claim.Metadata, source string, now time.Time) claim.Metadata {
	out := claim.NewMetadata()
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		key := strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(k, " ", "_"), "-", "_"))
		if v == "" {
			v = "unknown"
		}
		out.Set(key, v)
	}
	out.Set("source_type", source)
	out.Set("normalized_at", now.UTC().Format(time.RFC3339))
	return out
}
