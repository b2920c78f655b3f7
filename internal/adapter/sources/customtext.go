package sources

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	dps "github.com/markusmobius/go-dateparser"

	"github.com/moolen/depgraph/internal/claim"
	"github.com/moolen/depgraph/internal/logging"
)

// CustomTextName is this adapter's source label.
const CustomTextName = "custom-text"

const customTextDefaultConfidence = 0.8

// customTextLine matches "FROM -> TO [confidence] [source] [timestamp]",
// with confidence, source, and timestamp all optional and order-preserving.
var customTextLine = regexp.MustCompile(
	`^([\w.-]+)\s*->\s*([\w.-]+)(?:\s+([\d.]+))?(?:\s+([\w.-]+))?(?:\s+(.+))?$`,
)

// CustomText parses the free-text grammar "FROM -> TO [confidence] [source]
// [timestamp]", one assertion per line, "#" comments.
type CustomText struct {
	logger *logging.Logger
}

// NewCustomText constructs a CustomText adapter.
func NewCustomText() *CustomText {
	return &CustomText{logger: logging.GetLogger("adapter.custom-text")}
}

func (a *CustomText) Name() string { return CustomTextName }

func (a *CustomText) DefaultConfidence() float64 { return customTextDefaultConfidence }

func (a *CustomText) CanProcess(raw string) bool {
	for _, line := range splitLines(raw) {
		line = strings.TrimSpace(line)
		if line == "" || isCommentLine(line) {
			continue
		}
		if customTextLine.MatchString(line) {
			return true
		}
	}
	return false
}

func (a *CustomText) Process(raw string, now time.Time) ([]claim.Claim, error) {
	var claims []claim.Claim

	for _, line := range splitLines(raw) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isCommentLine(trimmed) {
			continue
		}

		m := customTextLine.FindStringSubmatch(trimmed)
		if m == nil {
			a.logger.Warn("custom-text: skipping unparseable line: %q", trimmed)
			continue
		}

		from, to := m[1], m[2]
		if from == to {
			continue
		}

		confidence := customTextDefaultConfidence
		if m[3] != "" {
			if parsed, err := strconv.ParseFloat(m[3], 64); err == nil {
				confidence = parsed
			}
		}

		source := CustomTextName
		if m[4] != "" {
			source = m[4]
		}

		observed := now
		if m[5] != "" {
			parser := dps.Parser{}
			if parsed, err := parser.Parse(&dps.Configuration{}, strings.TrimSpace(m[5])); err == nil && !parsed.Time.IsZero() {
				observed = parsed.Time
			}
		}

		claims = append(claims, claim.New(from, to, claim.Runtime, confidence, source, trimmed, claim.NewMetadata(), observed))
	}

	return claims, nil
}
