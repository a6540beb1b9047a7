package trainer

import (
	"fmt"
	"strings"
)

// bulletSeparator joins list-valued feedback fields.
const bulletSeparator = " • "

// conversationStats are the per-session metrics the deterministic analyzer
// derives from the trainee's turns. Persona turns are excluded.
type conversationStats struct {
	// lowered holds each user message lower-cased, in order.
	lowered []string

	// wordCounts holds the word count of each user message, in order.
	wordCounts []int

	// count is the number of user messages.
	count int

	// avgWords is the mean word count across user messages, 0 when there
	// are none.
	avgWords float64
}

func statsOf(history []Message) conversationStats {
	var s conversationStats
	total := 0
	for _, msg := range history {
		if msg.Role != RoleUser {
			continue
		}
		words := len(strings.Fields(msg.Content))
		s.lowered = append(s.lowered, strings.ToLower(msg.Content))
		s.wordCounts = append(s.wordCounts, words)
		total += words
	}
	s.count = len(s.lowered)
	if s.count > 0 {
		s.avgWords = float64(total) / float64(s.count)
	}
	return s
}

func (s conversationStats) anyContains(sub string) bool {
	for _, text := range s.lowered {
		if strings.Contains(text, sub) {
			return true
		}
	}
	return false
}

func (s conversationStats) anyContainsEither(a, b string) bool {
	return s.anyContains(a) || s.anyContains(b)
}

func (s conversationStats) anyLongerThan(words int) bool {
	for _, n := range s.wordCounts {
		if n > words {
			return true
		}
	}
	return false
}

// analyzeConversation is the deterministic feedback path. It produces a full
// report from conversation statistics alone, with no generative backend.
func analyzeConversation(scenario Scenario, history []Message) FeedbackReport {
	stats := statsOf(history)
	return FeedbackReport{
		Score:        scoreFor(stats),
		Overview:     overviewFor(scenario.Category, stats),
		Strengths:    strengthsFor(scenario.Category, stats),
		Improvements: improvementsFor(scenario.Category, stats),
		Insights:     insightsFor(scenario.Category, stats),
	}
}

// scoreFor maps engagement and response depth onto the deterministic score
// band. The rule-based ceiling is 85; only backend-produced scores can reach
// 95.
func scoreFor(s conversationStats) int {
	score := int(70 + float64(s.count)*2 + s.avgWords*0.5)
	if score > 85 {
		score = 85
	}
	if score < 60 {
		score = 60
	}
	return score
}

func overviewFor(category Category, s conversationStats) string {
	engagement := "low"
	switch {
	case s.count >= 8:
		engagement = "high"
	case s.count >= 5:
		engagement = "moderate"
	}
	detail := "brief"
	switch {
	case s.avgWords >= 15:
		detail = "detailed"
	case s.avgWords >= 8:
		detail = "adequate"
	}

	switch category {
	case CategoryCareer:
		return fmt.Sprintf("Your interview performance showed %s engagement with %s responses. You demonstrated good communication skills and showed interest in the role.", engagement, detail)
	case CategoryCustomerService:
		return fmt.Sprintf("You handled this challenging customer service scenario with %s engagement. Your responses were %s and showed professional communication skills.", engagement, detail)
	case CategorySocial:
		return fmt.Sprintf("Your conversation skills demonstrated %s social engagement with %s responses. You showed good interpersonal communication abilities.", engagement, detail)
	case CategoryManagement:
		return fmt.Sprintf("Your approach to receiving feedback showed %s engagement and %s responses. You demonstrated openness to improvement.", engagement, detail)
	case CategoryNetworking:
		return fmt.Sprintf("Your networking conversation showed %s engagement with %s responses. You demonstrated good professional communication skills.", engagement, detail)
	}
	return fmt.Sprintf("You showed %s engagement in this roleplay scenario with %s responses.", engagement, detail)
}

func strengthsFor(category Category, s conversationStats) string {
	var strengths []string

	if s.anyContains("thank") {
		strengths = append(strengths, "Good use of polite expressions and gratitude")
	}
	if s.anyLongerThan(20) {
		strengths = append(strengths, "Ability to provide detailed explanations when needed")
	}
	if s.anyContains("?") {
		strengths = append(strengths, "Good questioning skills and curiosity")
	}

	switch category {
	case CategoryCareer:
		if s.anyContainsEither("experience", "project") {
			strengths = append(strengths, "Effectively highlighted relevant experience")
		}
		if s.anyContainsEither("team", "collaboration") {
			strengths = append(strengths, "Demonstrated understanding of teamwork importance")
		}
	case CategoryCustomerService:
		if s.anyContainsEither("understand", "help") {
			strengths = append(strengths, "Showed empathy and willingness to help")
		}
		if s.anyContainsEither("solution", "resolve") {
			strengths = append(strengths, "Focused on problem-solving approaches")
		}
	}

	if len(strengths) == 0 {
		return "Maintained consistent communication throughout the session"
	}
	return strings.Join(strengths, bulletSeparator)
}

func improvementsFor(category Category, s conversationStats) string {
	var improvements []string

	if s.count < 5 {
		improvements = append(improvements, "Try to engage more deeply by asking follow-up questions")
	}
	if s.avgWords < 10 {
		improvements = append(improvements, "Provide more detailed responses to show depth of thinking")
	}

	switch category {
	case CategoryCareer:
		improvements = append(improvements,
			"Consider using the STAR method (Situation, Task, Action, Result) for behavioral questions",
			"Research more specific details about the company and role")
	case CategoryCustomerService:
		improvements = append(improvements,
			"Practice acknowledging customer emotions before presenting solutions",
			"Develop a repertoire of service recovery options")
	case CategorySocial:
		improvements = append(improvements,
			"Practice sharing personal anecdotes to build connection",
			"Ask more open-ended questions to keep conversations flowing")
	case CategoryManagement:
		improvements = append(improvements,
			"Practice active listening techniques and paraphrasing",
			"Focus on collaborative problem-solving approaches")
	case CategoryNetworking:
		improvements = append(improvements,
			"Prepare elevator pitches about yourself and your work",
			"Practice transitioning conversations toward mutual opportunities")
	}

	if len(improvements) == 0 {
		return "Continue practicing to build confidence and fluency"
	}
	return strings.Join(improvements, bulletSeparator)
}

// categoryInsights map each category to its core lesson.
var categoryInsights = map[Category]string{
	CategoryCareer:          "Job interviews are about demonstrating fit - both your qualifications and cultural alignment with the organization.",
	CategoryCustomerService: "Effective customer service balances empathy with practical solutions, turning negative experiences into positive outcomes.",
	CategorySocial:          "Great conversations happen when both people feel heard and valued - focus on genuine curiosity about others.",
	CategoryManagement:      "Giving and receiving feedback effectively requires trust, specificity, and a focus on growth rather than criticism.",
	CategoryNetworking:      "Successful networking is about building genuine relationships, not just exchanging business cards.",
}

func insightsFor(category Category, s conversationStats) string {
	var insights []string

	if s.count >= 8 {
		insights = append(insights, "You showed good stamina for extended conversations")
	}

	if insight, ok := categoryInsights[category]; ok {
		insights = append(insights, insight)
	} else {
		insights = append(insights, "Effective communication requires practice, patience, and genuine interest in others.")
	}
	insights = append(insights, "Consider recording yourself practicing to identify speech patterns and areas for improvement.")

	return strings.Join(insights, bulletSeparator)
}
