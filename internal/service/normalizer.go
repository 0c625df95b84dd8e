package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Harshitk-cp/concord/internal/domain"
	"github.com/tidwall/gjson"
)

// ConfidenceTolerance is how far outside [0,1] a reported confidence may
// drift before the output is treated as malformed. Values inside the
// tolerance are clamped.
const ConfidenceTolerance = 0.01

var (
	verdictPaths   = []string{"verdict", "result.verdict", "assessment.verdict"}
	confidencePath = []string{"confidence", "result.confidence", "assessment.confidence"}
	findingsPaths  = []string{"findings", "result.findings", "issues"}
	reasoningPaths = []string{"reasoning", "rationale", "explanation", "result.reasoning"}
	findingFields  = []string{"description", "text", "title", "finding", "summary"}
)

// Normalizer turns raw agent output into an AgentResult for one domain.
// It never fails: unusable output becomes an error-flagged result.
type Normalizer struct {
	profile *domain.DomainWeightProfile
}

// NewNormalizer creates a normalizer that accepts only the verdicts profile allows.
func NewNormalizer(profile *domain.DomainWeightProfile) *Normalizer {
	return &Normalizer{profile: profile}
}

func (n *Normalizer) Normalize(agent domain.AgentConfig, raw string) domain.AgentResult {
	malformed := func(format string, args ...any) domain.AgentResult {
		msg := fmt.Sprintf("%s: %s", domain.ErrMalformedOutput, fmt.Sprintf(format, args...))
		return domain.ErrorResult(agent.ID, agent.Provider, msg)
	}

	payload, ok := extractJSONObject(raw)
	if !ok {
		return malformed("no JSON object found")
	}
	doc := gjson.Parse(payload)

	verdictVal := firstOf(doc, verdictPaths)
	if !verdictVal.Exists() || verdictVal.Type != gjson.String {
		return malformed("missing verdict")
	}
	verdict := NormalizeVerdict(verdictVal.Str)
	if verdict == "" {
		return malformed("empty verdict")
	}
	if n.profile != nil && !n.profile.Allows(verdict) {
		return malformed("verdict %q is not allowed for domain %s", verdict, n.profile.Name)
	}

	confidence, err := parseConfidence(firstOf(doc, confidencePath))
	if err != nil {
		return malformed("%v", err)
	}

	return domain.AgentResult{
		AgentID:    agent.ID,
		Provider:   agent.Provider,
		Verdict:    verdict,
		Confidence: confidence,
		Findings:   parseFindings(firstOf(doc, findingsPaths)),
		Reasoning:  strings.TrimSpace(firstOf(doc, reasoningPaths).String()),
	}
}

// NormalizeVerdict upper-cases a label and joins words with underscores.
func NormalizeVerdict(s string) domain.Verdict {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	return domain.Verdict(s)
}

// ClampConfidence bounds c to [0,1].
func ClampConfidence(c float64) float64 {
	if math.IsNaN(c) || c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func parseConfidence(v gjson.Result) (float64, error) {
	var c float64
	switch v.Type {
	case gjson.Number:
		c = v.Num
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, fmt.Errorf("confidence %q is not a number", v.Str)
		}
		c = parsed
	default:
		return 0, fmt.Errorf("missing confidence")
	}
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return 0, fmt.Errorf("confidence is not finite")
	}
	if c < -ConfidenceTolerance || c > 1+ConfidenceTolerance {
		return 0, fmt.Errorf("confidence %g outside [0,1]", c)
	}
	return ClampConfidence(c), nil
}

func parseFindings(v gjson.Result) []string {
	findings := []string{}
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			findings = append(findings, s)
		}
	}

	switch {
	case v.IsArray():
		for _, item := range v.Array() {
			switch {
			case item.Type == gjson.String:
				add(item.Str)
			case item.IsObject():
				add(firstOf(item, findingFields).String())
			}
		}
	case v.Type == gjson.String:
		add(v.Str)
	}
	return findings
}

func firstOf(doc gjson.Result, paths []string) gjson.Result {
	for _, p := range paths {
		if r := doc.Get(p); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}

// extractJSONObject strips markdown fences and surrounding prose and returns
// the outermost JSON object in raw.
func extractJSONObject(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	s = s[start : end+1]
	if !gjson.Valid(s) {
		return "", false
	}
	return s, true
}
