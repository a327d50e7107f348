package engine

import (
	"fmt"
	"strings"

	"github.com/zen-systems/acemock/pkg/assistant"
)

const defaultRoutesSummary = "- / : Home\n- /dashboard : Dashboard\n- /dashboard/interview/:id : Interview details"

func evaluationPrompt(req EvaluationRequest) string {
	reference := req.ReferenceAnswer
	if strings.TrimSpace(reference) == "" {
		reference = "N/A"
	}
	return fmt.Sprintf(`
You are an assistant that evaluates a candidate's spoken answer for an interview question.
Compare the user's answer to the expected answer and provide:
- "rating": integer from 1 (poor) to 5 (excellent)
- "feedback": a short helpful paragraph (1-3 sentences)

Question: %s
Expected answer (if available): %s
User answer: %s

OUTPUT MUST BE VALID JSON ONLY:
{
  "rating": <1-5>,
  "feedback": "<short helpful feedback>"
}
`, req.Question, reference, req.CandidateAnswer)
}

func routesSummary(routes []assistant.Route) string {
	if len(routes) == 0 {
		return defaultRoutesSummary
	}
	lines := make([]string, 0, len(routes))
	for _, r := range routes {
		label := r.Label
		if label == "" {
			label = r.URL
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", label, r.URL))
	}
	return strings.Join(lines, "\n")
}

func chatPrompt(req ChatRequest) string {
	current := req.CurrentURL
	if current == "" {
		current = "/"
	}
	return fmt.Sprintf(`
You are an assistant for the AceMock web app.

Site routes (use these exact URLs if producing a navigation action):
%s

Current page: %s

USER MESSAGE:
%s

OUTPUT MUST BE VALID JSON ONLY:
{
  "reply": "<short 1-3 sentence answer>",
  "action": { "type": "navigate", "url": "/path" }
}

Rules:
- Output valid JSON only (no extra text).
- Include "action" only if the user clearly asks to navigate.
- Otherwise only provide a textual reply.
- Keep reply concise.
`, routesSummary(req.Routes), current, req.Message)
}

func questionsPrompt(spec InterviewSpec) string {
	return fmt.Sprintf(
		"jobposition: %s, jobDesc: %s, job of experience: %s, Generate %d interview questions with answers in JSON format. "+
			"Respond with a JSON array of objects with \"question\" and \"answer\" fields only.",
		spec.JobPosition, spec.JobDesc, spec.JobExperience, spec.Count,
	)
}
