package sources

import (
	"regexp"
	"strings"
	"time"

	"github.com/moolen/depgraph/internal/claim"
	"github.com/moolen/depgraph/internal/logging"
)

// ConfigFileName is this adapter's source label.
const ConfigFileName = "configuration-file"

var (
	jdbcURL            = regexp.MustCompile(`jdbc:\w+://([\w.-]+)(?::\d+)?/`)
	httpURL            = regexp.MustCompile(`https?://([\w.-]+)(?::\d+)?`)
	hostRef            = regexp.MustCompile(`(?i)^([\w.]+\.(?:host|server))\s*=\s*([\w.-]+)\s*$`)
	kafkaRef           = regexp.MustCompile(`(?i)kafka\.brokers\s*=\s*([\w.,:-]+)`)
	blockCommentPrefix = "/*"
)

// ConfigFile parses application config files (.properties/.conf/.cfg-style,
// line-oriented), recognizing JDBC URLs, HTTP(S) endpoints, host/server
// references, and Kafka broker lists.
type ConfigFile struct {
	logger *logging.Logger
}

// NewConfigFile constructs a ConfigFile adapter.
func NewConfigFile() *ConfigFile {
	return &ConfigFile{logger: logging.GetLogger("adapter.configuration-file")}
}

func (a *ConfigFile) Name() string { return ConfigFileName }

func (a *ConfigFile) DefaultConfidence() float64 { return 0.8 }

func (a *ConfigFile) CanProcess(raw string) bool {
	for _, line := range relevantConfigLines(raw) {
		if jdbcURL.MatchString(line) || httpURL.MatchString(line) ||
			hostRef.MatchString(line) || kafkaRef.MatchString(line) {
			return true
		}
	}
	return false
}

func (a *ConfigFile) Process(raw string, now time.Time) ([]claim.Claim, error) {
	var claims []claim.Claim

	for _, line := range relevantConfigLines(raw) {
		switch {
		case jdbcURL.MatchString(line):
			m := jdbcURL.FindStringSubmatch(line)
			target := targetWithSuffix(m[1], "-database")
			if skipHostTarget(m[1]) {
				continue
			}
			claims = append(claims, claim.New("this-service", target, claim.Configuration, 0.95,
				ConfigFileName, line, claim.NewMetadata(), now))

		case kafkaRef.MatchString(line):
			m := kafkaRef.FindStringSubmatch(line)
			for _, broker := range strings.Split(m[1], ",") {
				host := strings.SplitN(strings.TrimSpace(broker), ":", 2)[0]
				if skipHostTarget(host) {
					continue
				}
				claims = append(claims, claim.New("this-service", targetWithSuffix(host, "-kafka"), claim.Configuration,
					0.95, ConfigFileName, line, claim.NewMetadata(), now))
			}

		case httpURL.MatchString(line):
			m := httpURL.FindStringSubmatch(line)
			if skipHostTarget(m[1]) {
				continue
			}
			claims = append(claims, claim.New("this-service", targetWithSuffix(m[1], "-service"), claim.Configuration,
				0.95, ConfigFileName, line, claim.NewMetadata(), now))

		case hostRef.MatchString(line):
			m := hostRef.FindStringSubmatch(line)
			if skipHostTarget(m[2]) {
				continue
			}
			claims = append(claims, claim.New("this-service", targetWithSuffix(m[2], "-service"), claim.Configuration,
				0.8, ConfigFileName, line, claim.NewMetadata(), now))

		default:
			a.logger.Warn("configuration-file: skipping unrecognized line: %q", line)
		}
	}

	return claims, nil
}

// relevantConfigLines strips blank lines and the four recognized comment
// styles: "#", "//", "/* ... */" and leading "*" continuation lines.
func relevantConfigLines(raw string) []string {
	var out []string
	inBlockComment := false
	for _, line := range splitLines(raw) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if inBlockComment {
			if strings.Contains(trimmed, "*/") {
				inBlockComment = false
			}
			continue
		}
		if strings.HasPrefix(trimmed, blockCommentPrefix) {
			if !strings.Contains(trimmed, "*/") {
				inBlockComment = true
			}
			continue
		}
		if isCommentLine(trimmed) || strings.HasPrefix(trimmed, "*") {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

// skipHostTarget ignores localhost and bare IPv4 targets.
func skipHostTarget(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	return ipv4Pattern.MatchString(host)
}

var ipv4Pattern = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`)

// targetWithSuffix appends suffix unless host already ends with a recognized
// dependency-kind suffix.
func targetWithSuffix(host, suffix string) string {
	lower := strings.ToLower(host)
	for _, known := range []string{"-database", "-service", "-kafka", "-broker"} {
		if strings.HasSuffix(lower, known) {
			return lower
		}
	}
	return lower + suffix
}
