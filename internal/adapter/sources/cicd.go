package sources

import (
	"regexp"
	"strings"
	"time"

	"github.com/moolen/depgraph/internal/claim"
	"github.com/moolen/depgraph/internal/logging"
)

// CICDPipelineName is this adapter's source label.
const CICDPipelineName = "cicd-pipeline"

const cicdConfidence = 0.8

var (
	// "service checkout-service depends on [payment-service, inventory-service]"
	genericDependsOn = regexp.MustCompile(`(?i)service\s+([\w.-]+)\s+depends\s+on\s*\[([^\]]*)\]`)
	// Jenkinsfile: build job: 'deploy-service', downstream: 'notify-service'
	jenkinsDownstream = regexp.MustCompile(`(?i)job:\s*'([\w.-]+)'.*downstream:\s*'([\w.-]+)'`)
	// GitLab CI: needs: [auth-service, billing-service] under a job named x:
	gitlabJob   = regexp.MustCompile(`^([\w.-]+):\s*$`)
	gitlabNeeds = regexp.MustCompile(`(?i)needs:\s*\[([^\]]*)\]`)
	// docker-compose: depends_on under a service block
	composeService   = regexp.MustCompile(`^\s{2}([\w.-]+):\s*$`)
	composeDependsOn = regexp.MustCompile(`(?i)^\s*depends_on:\s*$`)
	composeListItem  = regexp.MustCompile(`^\s*-\s*([\w.-]+)\s*$`)
	// Helm: dependencies: - name: subchart-service
	helmDepName = regexp.MustCompile(`(?i)-\s*name:\s*([\w.-]+)`)
)

// CICDPipeline extracts "service X depends on [...]" phrasing across four
// dialects: Jenkins, GitLab CI, docker-compose, and Helm charts.
type CICDPipeline struct {
	logger *logging.Logger
}

// NewCICDPipeline constructs a CICDPipeline adapter.
func NewCICDPipeline() *CICDPipeline {
	return &CICDPipeline{logger: logging.GetLogger("adapter.cicd-pipeline")}
}

func (a *CICDPipeline) Name() string { return CICDPipelineName }

func (a *CICDPipeline) DefaultConfidence() float64 { return cicdConfidence }

func (a *CICDPipeline) CanProcess(raw string) bool {
	return genericDependsOn.MatchString(raw) || jenkinsDownstream.MatchString(raw) ||
		gitlabNeeds.MatchString(raw) || (composeDependsOn.MatchString(raw) && composeListItem.MatchString(raw)) ||
		helmDepName.MatchString(raw)
}

func (a *CICDPipeline) Process(raw string, now time.Time) ([]claim.Claim, error) {
	var claims []claim.Claim
	lines := splitLines(raw)

	var currentService string
	inDependsOnBlock := false

	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if strings.TrimSpace(trimmed) == "" || isCommentLine(strings.TrimSpace(trimmed)) {
			continue
		}

		if m := genericDependsOn.FindStringSubmatch(trimmed); m != nil {
			from := m[1]
			for _, to := range strings.Split(m[2], ",") {
				to = strings.TrimSpace(to)
				if to == "" || to == from {
					continue
				}
				claims = append(claims, claim.New(from, to, claim.BuildTime, cicdConfidence,
					CICDPipelineName, trimmed, claim.NewMetadata(), now))
			}
			continue
		}

		if m := jenkinsDownstream.FindStringSubmatch(trimmed); m != nil {
			if m[1] != m[2] {
				claims = append(claims, claim.New(m[1], m[2], claim.BuildTime, cicdConfidence,
					CICDPipelineName, trimmed, claim.NewMetadata(), now))
			}
			continue
		}

		if m := gitlabNeeds.FindStringSubmatch(trimmed); m != nil && currentService != "" {
			for _, to := range strings.Split(m[1], ",") {
				to = strings.TrimSpace(to)
				if to == "" || to == currentService {
					continue
				}
				claims = append(claims, claim.New(currentService, to, claim.BuildTime, cicdConfidence,
					CICDPipelineName, trimmed, claim.NewMetadata(), now))
			}
			continue
		}
		if m := gitlabJob.FindStringSubmatch(strings.TrimSpace(trimmed)); m != nil && !strings.HasPrefix(trimmed, "  ") {
			currentService = m[1]
			continue
		}

		if m := composeService.FindStringSubmatch(line); m != nil {
			currentService = m[1]
			inDependsOnBlock = false
			continue
		}
		if composeDependsOn.MatchString(line) {
			inDependsOnBlock = true
			continue
		}
		if inDependsOnBlock {
			if m := composeListItem.FindStringSubmatch(line); m != nil && currentService != "" {
				if m[1] != currentService {
					claims = append(claims, claim.New(currentService, m[1], claim.BuildTime, cicdConfidence,
						CICDPipelineName, trimmed, claim.NewMetadata(), now))
				}
				continue
			}
			inDependsOnBlock = false
		}

		if m := helmDepName.FindStringSubmatch(trimmed); m != nil {
			from := chartNameHint(lines)
			if from != "" && from != m[1] {
				claims = append(claims, claim.New(from, m[1], claim.BuildTime, cicdConfidence,
					CICDPipelineName, trimmed, claim.NewMetadata(), now))
			}
			continue
		}
	}

	return claims, nil
}

// chartNameHint returns the value of the first "name: x" line (indentation
// is ignored), used as the Helm chart's own service identity when resolving
// "dependencies:" entries, or "this-chart" when there is none.
var chartName = regexp.MustCompile(`(?i)^name:\s*([\w.-]+)\s*$`)

func chartNameHint(lines []string) string {
	for _, l := range lines {
		if m := chartName.FindStringSubmatch(strings.TrimSpace(l)); m != nil {
			return m[1]
		}
	}
	return "this-chart"
}
