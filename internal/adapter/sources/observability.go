package sources

import (
	"regexp"
	"strconv"
	"time"

	"github.com/moolen/depgraph/internal/claim"
	"github.com/moolen/depgraph/internal/logging"
)

// ObservabilityName is this adapter's source label.
const ObservabilityName = "observability"

var (
	// metric{service="A",target_service="B"} value
	promMetric = regexp.MustCompile(`\w+\{[^}]*service="([\w.-]+)"[^}]*target_service="([\w.-]+)"[^}]*\}\s+([\d.]+)`)
	// ts trace_id "A" -> "B" Nms
	jaegerSpan = regexp.MustCompile(`^\S+\s+\S+\s+"([\w.-]+)"\s*->\s*"([\w.-]+)"\s+(\d+)ms`)
	// span_id:... service:A downstream:B duration:Nms status:S
	otelSpan = regexp.MustCompile(`service:([\w.-]+)\s+downstream:([\w.-]+)\s+duration:(\d+)ms\s+status:(\w+)`)
)

// Observability parses Prometheus metric samples, Jaeger span lines, and
// OpenTelemetry span summaries into RUNTIME claims, grading confidence from
// metric value, latency, and status heuristics.
type Observability struct {
	logger *logging.Logger
}

// NewObservability constructs an Observability adapter.
func NewObservability() *Observability {
	return &Observability{logger: logging.GetLogger("adapter.observability")}
}

func (a *Observability) Name() string { return ObservabilityName }

func (a *Observability) DefaultConfidence() float64 { return 0.8 }

func (a *Observability) CanProcess(raw string) bool {
	for _, line := range splitLines(raw) {
		if promMetric.MatchString(line) || jaegerSpan.MatchString(line) || otelSpan.MatchString(line) {
			return true
		}
	}
	return false
}

func (a *Observability) Process(raw string, now time.Time) ([]claim.Claim, error) {
	var claims []claim.Claim

	for _, line := range splitLines(raw) {
		if line == "" {
			continue
		}

		if m := promMetric.FindStringSubmatch(line); m != nil {
			value, _ := strconv.ParseFloat(m[3], 64)
			if m[1] == m[2] {
				continue
			}
			claims = append(claims, claim.New(m[1], m[2], claim.Runtime, promConfidence(value),
				ObservabilityName, line, claim.NewMetadata(), now))
			continue
		}

		if m := jaegerSpan.FindStringSubmatch(line); m != nil {
			latencyMs, _ := strconv.Atoi(m[3])
			if m[1] == m[2] {
				continue
			}
			claims = append(claims, claim.New(m[1], m[2], claim.Runtime, jaegerConfidence(latencyMs),
				ObservabilityName, line, claim.NewMetadata(), now))
			continue
		}

		if m := otelSpan.FindStringSubmatch(line); m != nil {
			latencyMs, _ := strconv.Atoi(m[3])
			if m[1] == m[2] {
				continue
			}
			claims = append(claims, claim.New(m[1], m[2], claim.Runtime, otelConfidence(latencyMs, m[4]),
				ObservabilityName, line, claim.NewMetadata(), now))
			continue
		}

		a.logger.Warn("observability: skipping unrecognized line: %q", line)
	}

	return claims, nil
}

// promConfidence grades a Prometheus sample value, treating higher observed
// call volume as stronger corroborating evidence.
func promConfidence(value float64) float64 {
	switch {
	case value >= 100:
		return 0.95
	case value >= 10:
		return 0.85
	default:
		return 0.7
	}
}

// jaegerConfidence grades a Jaeger span by latency, low latency implying a
// direct, well-understood call path.
func jaegerConfidence(latencyMs int) float64 {
	switch {
	case latencyMs < 50:
		return 0.95
	case latencyMs < 500:
		return 0.85
	default:
		return 0.7
	}
}

// otelConfidence grades an OpenTelemetry span by status first, then latency.
func otelConfidence(latencyMs int, status string) float64 {
	switch status {
	case "ERROR", "error":
		return 0.7
	default:
		if latencyMs < 100 {
			return 0.99
		}
		return 0.85
	}
}
