// Package sources implements the concrete per-format adapters.
package sources

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/moolen/depgraph/internal/claim"
	"github.com/moolen/depgraph/internal/logging"
)

// RouterLogName is this adapter's source label.
const RouterLogName = "router-log"

// routerLogLine matches lines like:
// 2024-07-04 10:30:45 [INFO] 192.168.1.100 -> 192.168.1.200:8080 GET /api/users 200 125ms
var routerLogLine = regexp.MustCompile(
	`^(\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2})\s+\[\w+\]\s+` +
		`(\d{1,3}(?:\.\d{1,3}){3})\s*->\s*(\d{1,3}(?:\.\d{1,3}){3}):(\d+)\s+` +
		`\S+\s+\S+\s+(\d{3})\s+(\d+)ms`,
)

// compactRouterLine matches the alternate compact form: ServiceA->ServiceB
var compactRouterLine = regexp.MustCompile(`^\s*([\w.-]+)\s*->\s*([\w.-]+)\s*$`)

// RouterLog parses access/router log lines into RUNTIME/API_CALL claims,
// mapping observed IPs to service names via a small static table (falling
// back to "service-<ip-with-dashes>"), and grading confidence from HTTP
// status and latency.
type RouterLog struct {
	// IPToService optionally overrides the built-in IP→service table.
	IPToService map[string]string
	logger      *logging.Logger
}

// NewRouterLog constructs a RouterLog adapter with the default IP table.
func NewRouterLog() *RouterLog {
	return &RouterLog{
		IPToService: defaultIPTable,
		logger:      logging.GetLogger("adapter.router-log"),
	}
}

func (a *RouterLog) Name() string { return RouterLogName }

func (a *RouterLog) DefaultConfidence() float64 { return 0.7 }

func (a *RouterLog) CanProcess(raw string) bool {
	for _, line := range splitLines(raw) {
		line = strings.TrimSpace(line)
		if line == "" || isCommentLine(line) {
			continue
		}
		if routerLogLine.MatchString(line) || compactRouterLine.MatchString(line) {
			return true
		}
	}
	return false
}

func (a *RouterLog) Process(raw string, now time.Time) ([]claim.Claim, error) {
	var claims []claim.Claim

	for _, line := range splitLines(raw) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isCommentLine(trimmed) {
			continue
		}

		if m := routerLogLine.FindStringSubmatch(trimmed); m != nil {
			ts, err := time.ParseInLocation("2006-01-02 15:04:05", m[1], time.UTC)
			observed := now
			if err == nil {
				observed = ts
			}

			fromSvc := a.serviceForIP(m[2])
			toSvc := a.serviceForIP(m[3])
			port := m[4]
			status, _ := strconv.Atoi(m[5])
			latencyMs, _ := strconv.Atoi(m[6])

			if fromSvc == toSvc {
				a.logger.Debug("router-log: dropping self-loop line: %s", trimmed)
				continue
			}

			meta := claim.NewMetadata()
			meta.Set("target_port", port)
			meta.Set("http_status", m[5])
			meta.Set("response_time_ms", m[6])

			c := claim.New(fromSvc, toSvc, claim.APICall, routerLogConfidence(status, latencyMs),
				RouterLogName, trimmed, meta, observed)
			claims = append(claims, c)
			continue
		}

		if m := compactRouterLine.FindStringSubmatch(trimmed); m != nil {
			from, to := m[1], m[2]
			if from == to {
				continue
			}
			c := claim.New(from, to, claim.Runtime, 0.9, RouterLogName, trimmed, claim.NewMetadata(), now)
			claims = append(claims, c)
			continue
		}

		a.logger.Warn("router-log: skipping unparseable line: %q", trimmed)
	}

	return claims, nil
}

// routerLogConfidence grades confidence: VERY_HIGH for 2xx under
// 1000ms, HIGH for other 2xx, MEDIUM for 4xx, LOW otherwise.
func routerLogConfidence(status, latencyMs int) float64 {
	switch {
	case status >= 200 && status < 300 && latencyMs < 1000:
		return 0.95
	case status >= 200 && status < 300:
		return 0.85
	case status >= 400 && status < 500:
		return 0.6
	default:
		return 0.4
	}
}

func (a *RouterLog) serviceForIP(ip string) string {
	if svc, ok := a.IPToService[ip]; ok {
		return svc
	}
	return fmt.Sprintf("service-%s", strings.ReplaceAll(ip, ".", "-"))
}

// defaultIPTable is a small illustrative mapping; real deployments inject
// their own via RouterLog.IPToService.
var defaultIPTable = map[string]string{
	"192.168.1.100": "web-portal",
	"192.168.1.200": "user-management-service",
}
