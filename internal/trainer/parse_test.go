package trainer

import (
	"strings"
	"testing"
)

const wellFormedAnalysis = `PERFORMANCE SCORE: 82

OVERVIEW: You communicated clearly and stayed engaged throughout.
Your answers were specific and well structured.

STRENGTHS: Clear structure • Specific examples

IMPROVEMENT AREAS: Ask more follow-up questions • Slow down your delivery

KEY INSIGHTS: Preparation shows • Rapport matters`

func TestParseFeedback_WellFormed(t *testing.T) {
	report := parseFeedback(wellFormedAnalysis, testScenario(CategoryCareer), historyOf(3, 5))

	if report.Score != 82 {
		t.Errorf("score = %d, want 82", report.Score)
	}
	wantOverview := "You communicated clearly and stayed engaged throughout. Your answers were specific and well structured."
	if report.Overview != wantOverview {
		t.Errorf("overview = %q, want %q", report.Overview, wantOverview)
	}
	if report.Strengths != "Clear structure • Specific examples" {
		t.Errorf("strengths = %q", report.Strengths)
	}
	if report.Improvements != "Ask more follow-up questions • Slow down your delivery" {
		t.Errorf("improvements = %q", report.Improvements)
	}
	if report.Insights != "Preparation shows • Rapport matters" {
		t.Errorf("insights = %q", report.Insights)
	}
}

func TestParseFeedback_ScoreClamping(t *testing.T) {
	tests := []struct {
		name string
		line string
		want int
	}{
		{"above range", "PERFORMANCE SCORE: 140", 95},
		{"below range", "PERFORMANCE SCORE: 10", 60},
		{"in range", "PERFORMANCE SCORE: 73", 73},
		{"embedded in prose", "PERFORMANCE SCORE: I'd say 88 out of 95", 88},
		{"no digits", "PERFORMANCE SCORE: excellent", defaultScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := parseFeedback(tt.line, testScenario(CategoryCareer), historyOf(3, 5))
			if report.Score != tt.want {
				t.Errorf("score = %d, want %d", report.Score, tt.want)
			}
		})
	}
}

func TestParseFeedback_MissingScoreUsesDefault(t *testing.T) {
	report := parseFeedback("OVERVIEW: Fine work.", testScenario(CategoryCareer), historyOf(3, 5))
	if report.Score != defaultScore {
		t.Errorf("score = %d, want %d", report.Score, defaultScore)
	}
}

func TestParseFeedback_BackfillMatchesAnalyzer(t *testing.T) {
	// Whatever the backend omits must come out identical to the analyzer's
	// own value for that field.
	scenario := testScenario(CategoryCustomerService)
	history := historyOf(4, 6)
	want := analyzeConversation(scenario, history)

	report := parseFeedback("PERFORMANCE SCORE: 90\n\nOVERVIEW: Handled the customer well.", scenario, history)

	if report.Overview != "Handled the customer well." {
		t.Errorf("parsed overview was replaced: %q", report.Overview)
	}
	if report.Strengths != want.Strengths {
		t.Errorf("strengths = %q, want analyzer value %q", report.Strengths, want.Strengths)
	}
	if report.Improvements != want.Improvements {
		t.Errorf("improvements = %q, want analyzer value %q", report.Improvements, want.Improvements)
	}
	if report.Insights != want.Insights {
		t.Errorf("insights = %q, want analyzer value %q", report.Insights, want.Insights)
	}
}

func TestParseFeedback_GarbageBackfillsEverything(t *testing.T) {
	scenario := testScenario(CategorySocial)
	history := historyOf(5, 12)
	want := analyzeConversation(scenario, history)

	report := parseFeedback("I'm sorry, I cannot analyze this conversation.", scenario, history)

	if report.Score != defaultScore {
		t.Errorf("score = %d, want %d", report.Score, defaultScore)
	}
	if report.Overview != want.Overview || report.Strengths != want.Strengths ||
		report.Improvements != want.Improvements || report.Insights != want.Insights {
		t.Errorf("report %+v does not match analyzer report %+v", report, want)
	}
}

func TestParseFeedback_HeadersMustStartTheLine(t *testing.T) {
	report := parseFeedback("The OVERVIEW: section is below.", testScenario(CategoryCareer), historyOf(3, 5))
	if strings.Contains(report.Overview, "section is below") {
		t.Errorf("mid-line header treated as section start: %q", report.Overview)
	}
}
