package trainer

import (
	"fmt"
	"strings"
)

// buildTranscript renders a conversation into the plain-text form consumed
// by the feedback analysis prompt. Rendering depends only on the input, so
// the same session always yields the same transcript.
func buildTranscript(scenario Scenario, history []Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== ROLEPLAY CONVERSATION (%d messages) ===\n", len(history))
	fmt.Fprintf(&b, "Scenario: %s", scenario.Title)

	for _, msg := range history {
		speaker := "AI PERSONA"
		if msg.Role == RoleUser {
			speaker = "USER"
		}
		fmt.Fprintf(&b, "\n[%s] %s: %s", msg.Timestamp.Format("15:04:05"), speaker, msg.Content)
	}
	return b.String()
}

// feedbackPromptFormat is the analysis prompt sent to the backend. The
// interpolated fields are scenario title, category, description, the
// rendered transcript, and the category again for the analysis focus line.
const feedbackPromptFormat = `You are an expert communication coach analyzing a roleplay conversation.

ROLEPLAY SCENARIO:
- Title: %s
- Category: %s
- Description: %s

FULL CONVERSATION TRANSCRIPT:
%s

Analyze the USER's communication performance specifically for this %s scenario.
Focus on engagement level, communication style, and effectiveness.

Please provide a comprehensive analysis in the following format:

PERFORMANCE SCORE: [Give a score from 60-95 based on communication effectiveness]

OVERVIEW: [2-3 sentences summarizing overall performance]

STRENGTHS: [List 2-3 specific strengths demonstrated, separated by ' • ']

IMPROVEMENT AREAS: [List 2-3 specific actionable improvements, separated by ' • ']

KEY INSIGHTS: [2-3 key learning points for future development, separated by ' • ']

Focus on practical, actionable feedback that helps improve communication skills. Be constructive but direct - this is for skill development.`

// feedbackPrompt assembles the full analysis prompt for a session.
func feedbackPrompt(scenario Scenario, history []Message) string {
	return fmt.Sprintf(feedbackPromptFormat,
		scenario.Title,
		scenario.Category,
		scenario.Description,
		buildTranscript(scenario, history),
		scenario.Category,
	)
}
