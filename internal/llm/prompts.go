package llm

import (
	"fmt"
	"strings"

	"github.com/Harshitk-cp/concord/internal/domain"
)

const systemPrompt = `You are one of several independent analysts. Other analysts receive the same task; do not try to guess their answers.
Respond ONLY with a JSON object. No markdown, no explanation outside the JSON.`

const analysisPrompt = `Domain: %s
Your perspective: %s

Task:
%s

Return exactly this JSON shape:
{"verdict":"<one of: %s>","confidence":0.0,"findings":["finding 1","finding 2"],"reasoning":"brief justification"}

Rules:
- verdict MUST be one of the labels above
- confidence is a number between 0 and 1
- each finding is a single, self-contained sentence`

func renderPrompt(agent domain.AgentConfig, query domain.Query) string {
	role := agent.Role
	if role == "" {
		role = "general analyst"
	}
	labels := make([]string, len(query.Verdicts))
	for i, v := range query.Verdicts {
		labels[i] = string(v)
	}
	return fmt.Sprintf(analysisPrompt, query.Domain, role, query.Text, strings.Join(labels, ", "))
}

func modelOr(agent domain.AgentConfig, fallback string) string {
	if agent.Model != "" {
		return agent.Model
	}
	return fallback
}
