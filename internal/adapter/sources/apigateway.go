package sources

import (
	"regexp"
	"strings"
	"time"

	"github.com/moolen/depgraph/internal/claim"
	"github.com/moolen/depgraph/internal/logging"
)

// APIGatewayName is this adapter's source label.
const APIGatewayName = "api-gateway"

const apiGatewayConfidence = 0.95

var (
	// Kong: - name: svc-a-to-svc-b url: http://svc-b:8080
	kongRoute = regexp.MustCompile(`(?i)^-?\s*name:\s*([\w.-]+)\s*$`)
	kongURL   = regexp.MustCompile(`(?i)url:\s*https?://([\w.-]+)`)
	// AWS API Gateway: integration: lambda/svc-a -> svc-b
	awsIntegration = regexp.MustCompile(`(?i)integration:\s*[\w./-]*/([\w.-]+)\s*->\s*([\w.-]+)`)
	// NGINX: upstream svc-a { ... } then proxy_pass http://svc-b gives svc-a -> svc-b
	// (from "api-gateway" when no upstream block came before the proxy_pass)
	nginxUpstream  = regexp.MustCompile(`(?i)upstream\s+([\w.-]+)\s*\{`)
	nginxProxyPass = regexp.MustCompile(`(?i)proxy_pass\s+https?://([\w.-]+)`)
	// Istio VirtualService: host: svc-b ... from svc-a (gateway annotation)
	istioHost = regexp.MustCompile(`(?i)^\s*-?\s*host:\s*([\w.-]+)\s*$`)
	istioFrom = regexp.MustCompile(`(?i)#\s*from:\s*([\w.-]+)`)
	// generic: route: A -> B weight:n
	genericRoute = regexp.MustCompile(`(?i)route:\s*([\w.-]+)\s*->\s*([\w.-]+)(?:\s+weight:(\d+))?`)
)

// APIGateway recognizes route declarations from Kong, AWS API Gateway,
// NGINX upstream blocks, Istio VirtualServices, and a generic
// "route: A -> B weight:n" form.
type APIGateway struct {
	logger *logging.Logger
}

// NewAPIGateway constructs an APIGateway adapter.
func NewAPIGateway() *APIGateway {
	return &APIGateway{logger: logging.GetLogger("adapter.api-gateway")}
}

func (a *APIGateway) Name() string { return APIGatewayName }

func (a *APIGateway) DefaultConfidence() float64 { return apiGatewayConfidence }

func (a *APIGateway) CanProcess(raw string) bool {
	return genericRoute.MatchString(raw) || awsIntegration.MatchString(raw) ||
		nginxProxyPass.MatchString(raw) || (kongRoute.MatchString(raw) && kongURL.MatchString(raw)) ||
		(istioHost.MatchString(raw) && istioFrom.MatchString(raw))
}

func (a *APIGateway) Process(raw string, now time.Time) ([]claim.Claim, error) {
	var claims []claim.Claim
	lines := splitLines(raw)

	var pendingKongName, pendingUpstreamName string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := genericRoute.FindStringSubmatch(trimmed); m != nil {
			if m[1] != m[2] {
				claims = append(claims, claim.New(m[1], m[2], claim.APICall, apiGatewayConfidence,
					APIGatewayName, trimmed, claim.NewMetadata(), now))
			}
			continue
		}

		if m := awsIntegration.FindStringSubmatch(trimmed); m != nil {
			if m[1] != m[2] {
				claims = append(claims, claim.New(m[1], m[2], claim.APICall, apiGatewayConfidence,
					APIGatewayName, trimmed, claim.NewMetadata(), now))
			}
			continue
		}

		if m := nginxUpstream.FindStringSubmatch(trimmed); m != nil {
			pendingUpstreamName = m[1]
			continue
		}
		if m := nginxProxyPass.FindStringSubmatch(trimmed); m != nil {
			from := "api-gateway"
			if pendingUpstreamName != "" {
				from = pendingUpstreamName
			}
			if from != m[1] {
				claims = append(claims, claim.New(from, m[1], claim.APICall, apiGatewayConfidence,
					APIGatewayName, trimmed, claim.NewMetadata(), now))
			}
			continue
		}

		if m := kongRoute.FindStringSubmatch(trimmed); m != nil {
			pendingKongName = m[1]
			continue
		}
		if m := kongURL.FindStringSubmatch(trimmed); m != nil && pendingKongName != "" {
			claims = append(claims, claim.New("kong-gateway", m[1], claim.APICall, apiGatewayConfidence,
				APIGatewayName, trimmed, claim.NewMetadata(), now))
			pendingKongName = ""
			continue
		}

		if m := istioFrom.FindStringSubmatch(trimmed); m != nil {
			pendingKongName = "istio:" + m[1]
			continue
		}
		if m := istioHost.FindStringSubmatch(trimmed); m != nil && strings.HasPrefix(pendingKongName, "istio:") {
			from := strings.TrimPrefix(pendingKongName, "istio:")
			if from != m[1] {
				claims = append(claims, claim.New(from, m[1], claim.APICall, apiGatewayConfidence,
					APIGatewayName, trimmed, claim.NewMetadata(), now))
			}
			pendingKongName = ""
			continue
		}
	}

	return claims, nil
}
