package sources

import (
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/moolen/depgraph/internal/claim"
	"github.com/moolen/depgraph/internal/logging"
)

// KubernetesName is this adapter's source label.
const KubernetesName = "kubernetes"

var envHintSuffix = regexp.MustCompile(`(?i)(_URL|_HOST|_SERVICE|_ENDPOINT)$`)

// Kubernetes parses Kubernetes manifests (multi-document YAML, split on
// "---"), classifying by kind and extracting dependency hints from
// container env vars, configMap/secret references, and Ingress
// host→service routing. A workload's "app" selector label is used only as
// its identity fallback; selectors produce no claims of their own.
type Kubernetes struct {
	logger *logging.Logger
}

// NewKubernetes constructs a Kubernetes adapter.
func NewKubernetes() *Kubernetes {
	return &Kubernetes{logger: logging.GetLogger("adapter.kubernetes")}
}

func (a *Kubernetes) Name() string { return KubernetesName }

func (a *Kubernetes) DefaultConfidence() float64 { return 0.75 }

func (a *Kubernetes) CanProcess(raw string) bool {
	return strings.Contains(raw, "kind:")
}

func (a *Kubernetes) Process(raw string, now time.Time) ([]claim.Claim, error) {
	var claims []claim.Claim

	for _, doc := range strings.Split(raw, "\n---") {
		doc = strings.TrimSpace(strings.TrimPrefix(doc, "---"))
		if doc == "" {
			continue
		}

		var manifest map[string]interface{}
		if err := yaml.Unmarshal([]byte(doc), &manifest); err != nil {
			a.logger.Warn("kubernetes: skipping unparseable document: %v", err)
			continue
		}
		if manifest == nil {
			continue
		}

		kind, _ := manifest["kind"].(string)
		switch kind {
		case "Deployment", "StatefulSet":
			claims = append(claims, a.fromWorkload(manifest, doc, now)...)
		case "Ingress":
			claims = append(claims, a.fromIngress(manifest, doc, now)...)
		case "Service", "ConfigMap":
			// Skipped: these documents produce no claims and nothing in them is
			// read.
		default:
			a.logger.Debug("kubernetes: ignoring manifest kind %q", kind)
		}
	}

	return claims, nil
}

func (a *Kubernetes) fromWorkload(manifest map[string]interface{}, raw string, now time.Time) []claim.Claim {
	fromName := workloadIdentity(manifest)
	if fromName == "" {
		return nil
	}

	containers := dig(manifest, "spec", "template", "spec", "containers")
	list, ok := containers.([]interface{})
	if !ok {
		return nil
	}

	var claims []claim.Claim
	for _, c := range list {
		container, ok := c.(map[string]interface{})
		if !ok {
			continue
		}

		if envList, ok := container["env"].([]interface{}); ok {
			for _, e := range envList {
				entry, ok := e.(map[string]interface{})
				if !ok {
					continue
				}
				name, _ := entry["name"].(string)
				value, _ := entry["value"].(string)
				if value == "" || !envHintSuffix.MatchString(name) {
					continue
				}
				target := serviceFromHostValue(value)
				if target == "" || target == fromName {
					continue
				}
				claims = append(claims, claim.New(fromName, target, claim.Configuration, 0.85,
					KubernetesName, raw, claim.NewMetadata(), now))
			}
		}

		if envFrom, ok := container["envFrom"].([]interface{}); ok {
			for _, e := range envFrom {
				entry, ok := e.(map[string]interface{})
				if !ok {
					continue
				}
				if ref, ok := entry["configMapRef"].(map[string]interface{}); ok {
					if name, _ := ref["name"].(string); name != "" && name != fromName {
						claims = append(claims, claim.New(fromName, name, claim.Configuration, 0.6,
							KubernetesName, raw, claim.NewMetadata(), now))
					}
				}
				if ref, ok := entry["secretRef"].(map[string]interface{}); ok {
					if name, _ := ref["name"].(string); name != "" && name != fromName {
						claims = append(claims, claim.New(fromName, name, claim.Configuration, 0.6,
							KubernetesName, raw, claim.NewMetadata(), now))
					}
				}
			}
		}
	}

	return claims
}

func (a *Kubernetes) fromIngress(manifest map[string]interface{}, raw string, now time.Time) []claim.Claim {
	var claims []claim.Claim
	rules, ok := dig(manifest, "spec", "rules").([]interface{})
	if !ok {
		return nil
	}

	for _, r := range rules {
		rule, ok := r.(map[string]interface{})
		if !ok {
			continue
		}
		host, _ := rule["host"].(string)
		fromName := host
		if fromName == "" {
			fromName = "ingress"
		}

		paths, ok := dig(rule, "http", "paths").([]interface{})
		if !ok {
			continue
		}
		for _, p := range paths {
			path, ok := p.(map[string]interface{})
			if !ok {
				continue
			}
			backendName := backendServiceName(path)
			if backendName == "" || backendName == fromName {
				continue
			}
			claims = append(claims, claim.New(fromName, backendName, claim.APICall, 0.95,
				KubernetesName, raw, claim.NewMetadata(), now))
		}
	}
	return claims
}

// workloadIdentity returns the name this workload's claims should be
// attributed to: its own metadata.name, falling back to the "app" selector
// label when present.
func workloadIdentity(manifest map[string]interface{}) string {
	if name, ok := dig(manifest, "metadata", "name").(string); ok && name != "" {
		return name
	}
	if app, ok := dig(manifest, "spec", "selector", "matchLabels", "app").(string); ok {
		return app
	}
	return ""
}

// backendServiceName reads an Ingress path's backend service name, handling
// both the modern (networking.k8s.io/v1) and legacy (extensions/v1beta1) shapes.
func backendServiceName(path map[string]interface{}) string {
	if name, ok := dig(path, "backend", "service", "name").(string); ok {
		return name
	}
	if name, ok := dig(path, "backend", "serviceName").(string); ok {
		return name
	}
	return ""
}

// serviceFromHostValue strips a scheme, port, path, and well-known internal
// DNS suffix from an env var value to recover a bare service name.
func serviceFromHostValue(value string) string {
	v := value
	if i := strings.Index(v, "://"); i >= 0 {
		v = v[i+3:]
	}
	if i := strings.IndexAny(v, "/:"); i >= 0 {
		v = v[:i]
	}
	v = strings.TrimSuffix(v, ".svc.cluster.local")
	v = strings.TrimSuffix(v, ".default.svc")
	parts := strings.Split(v, ".")
	if len(parts) > 0 {
		v = parts[0]
	}
	return v
}

// dig walks a chain of nested map[string]interface{} keys, returning nil if
// any segment is missing or not a map.
func dig(m map[string]interface{}, path ...string) interface{} {
	var cur interface{} = m
	for _, key := range path {
		asMap, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = asMap[key]
	}
	return cur
}
