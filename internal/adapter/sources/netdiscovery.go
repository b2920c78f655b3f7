package sources

import (
	"regexp"
	"strings"
	"time"

	"github.com/moolen/depgraph/internal/claim"
	"github.com/moolen/depgraph/internal/logging"
)

// NetworkDiscoveryName is this adapter's source label.
const NetworkDiscoveryName = "network-discovery"

var (
	hostLine = regexp.MustCompile(`(?i)^HOST:\s*([\d.]+)\s*\(([\w.-]+)\)\s*$`)
	portLine = regexp.MustCompile(`(?i)^PORT:\s*(\d+)/(\w+)\s+open\s+(\w+)(?:\s+(.+))?$`)
)

// serviceKind classifies a discovered open port into a coarse service role
// used to look up the static cross-host dependency rule table.
var serviceKind = map[string]string{
	"http":       "http",
	"https":      "http",
	"nginx":      "http",
	"apache":     "http",
	"mysql":      "mysql",
	"postgresql": "postgresql",
	"postgres":   "postgresql",
	"redis":      "redis",
	"mongodb":    "mongodb",
	"mongo":      "mongodb",
}

// dependencyRules maps a source service kind to the set of target kinds it
// is assumed to depend on when both are present on the discovered network.
var dependencyRules = map[string][]string{
	"http": {"mysql", "postgresql", "redis", "mongodb"},
}

type discoveredHost struct {
	ip       string
	name     string
	services []discoveredService
}

type discoveredService struct {
	port    string
	kind    string
	service string
}

// NetworkDiscovery parses port-scan style output, first collecting hosts and
// open services, then inferring cross-host dependencies from a static rule
// table keyed on service type.
type NetworkDiscovery struct {
	logger *logging.Logger
}

// NewNetworkDiscovery constructs a NetworkDiscovery adapter.
func NewNetworkDiscovery() *NetworkDiscovery {
	return &NetworkDiscovery{logger: logging.GetLogger("adapter.network-discovery")}
}

func (a *NetworkDiscovery) Name() string { return NetworkDiscoveryName }

func (a *NetworkDiscovery) DefaultConfidence() float64 { return 0.6 }

func (a *NetworkDiscovery) CanProcess(raw string) bool {
	for _, line := range splitLines(raw) {
		line = strings.TrimSpace(line)
		if hostLine.MatchString(line) || portLine.MatchString(line) {
			return true
		}
	}
	return false
}

func (a *NetworkDiscovery) Process(raw string, now time.Time) ([]claim.Claim, error) {
	hosts := a.parseHosts(raw)

	known := map[string]bool{}
	for _, h := range hosts {
		for _, svc := range h.services {
			if svc.kind != "" {
				known[h.name] = true
			}
		}
	}

	var claims []claim.Claim
	for _, from := range hosts {
		fromKinds := kindsOf(from)
		for _, fromKind := range fromKinds {
			targets, ok := dependencyRules[fromKind]
			if !ok {
				continue
			}
			for _, to := range hosts {
				if to.name == from.name {
					continue
				}
				for _, toKind := range kindsOf(to) {
					if !contains(targets, toKind) {
						continue
					}
					confidence := 0.4
					if fromKind == "http" && (toKind == "mysql" || toKind == "postgresql") {
						confidence = 0.85
					} else if known[from.name] && known[to.name] {
						confidence = 0.65
					}
					meta := claim.NewMetadata()
					meta.Set("discovered_via", "network-discovery")
					claims = append(claims, claim.New(from.name, to.name, claim.Runtime, confidence,
						NetworkDiscoveryName, from.ip+"->"+to.ip, meta, now))
				}
			}
		}
	}

	return claims, nil
}

func kindsOf(h discoveredHost) []string {
	var out []string
	for _, svc := range h.services {
		if svc.kind != "" {
			out = append(out, svc.kind)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func (a *NetworkDiscovery) parseHosts(raw string) []discoveredHost {
	var hosts []discoveredHost
	var cur *discoveredHost

	for _, line := range splitLines(raw) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := hostLine.FindStringSubmatch(trimmed); m != nil {
			if cur != nil {
				hosts = append(hosts, *cur)
			}
			cur = &discoveredHost{ip: m[1], name: m[2]}
			continue
		}

		if m := portLine.FindStringSubmatch(trimmed); m != nil {
			if cur == nil {
				a.logger.Warn("network-discovery: PORT line before any HOST: %q", trimmed)
				continue
			}
			svcName := strings.ToLower(m[3])
			kind := serviceKind[svcName]
			cur.services = append(cur.services, discoveredService{port: m[1], kind: kind, service: svcName})
			continue
		}

		a.logger.Warn("network-discovery: skipping unrecognized line: %q", trimmed)
	}
	if cur != nil {
		hosts = append(hosts, *cur)
	}
	return hosts
}
