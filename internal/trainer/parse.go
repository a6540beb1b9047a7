package trainer

import (
	"regexp"
	"strconv"
	"strings"
)

// feedbackSection tracks which report field continuation lines belong to
// while scanning backend output.
type feedbackSection int

const (
	sectionNone feedbackSection = iota
	sectionOverview
	sectionStrengths
	sectionImprovements
	sectionInsights
)

// Section header prefixes the analysis prompt instructs the backend to emit.
const (
	scoreHeader        = "PERFORMANCE SCORE:"
	overviewHeader     = "OVERVIEW:"
	strengthsHeader    = "STRENGTHS:"
	improvementsHeader = "IMPROVEMENT AREAS:"
	insightsHeader     = "KEY INSIGHTS:"
)

const (
	minScore     = 60
	maxScore     = 95
	defaultScore = 75
)

var scorePattern = regexp.MustCompile(`\d+`)

// parseFeedback extracts a structured report from backend analysis output.
// The format is line-oriented: a header line starts a section and lines
// until the next header continue it, joined with single spaces. Any field
// the output leaves empty is backfilled from the deterministic analyzer, so
// a partially parseable analysis still yields a complete report.
func parseFeedback(text string, scenario Scenario, history []Message) FeedbackReport {
	report := FeedbackReport{Score: defaultScore}

	section := sectionNone
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)

		switch {
		case strings.HasPrefix(line, scoreHeader):
			section = sectionNone
			report.Score = parseScore(strings.TrimSpace(strings.TrimPrefix(line, scoreHeader)))
		case strings.HasPrefix(line, overviewHeader):
			section = sectionOverview
			report.Overview = strings.TrimSpace(strings.TrimPrefix(line, overviewHeader))
		case strings.HasPrefix(line, strengthsHeader):
			section = sectionStrengths
			report.Strengths = strings.TrimSpace(strings.TrimPrefix(line, strengthsHeader))
		case strings.HasPrefix(line, improvementsHeader):
			section = sectionImprovements
			report.Improvements = strings.TrimSpace(strings.TrimPrefix(line, improvementsHeader))
		case strings.HasPrefix(line, insightsHeader):
			section = sectionInsights
			report.Insights = strings.TrimSpace(strings.TrimPrefix(line, insightsHeader))
		case line != "":
			switch section {
			case sectionOverview:
				report.Overview = appendLine(report.Overview, line)
			case sectionStrengths:
				report.Strengths = appendLine(report.Strengths, line)
			case sectionImprovements:
				report.Improvements = appendLine(report.Improvements, line)
			case sectionInsights:
				report.Insights = appendLine(report.Insights, line)
			}
		}
	}

	backfill(&report, scenario, history)
	return report
}

// parseScore pulls the first integer out of the score line and clamps it to
// the valid range. A line with no digits keeps the default.
func parseScore(text string) int {
	match := scorePattern.FindString(text)
	if match == "" {
		return defaultScore
	}
	score, err := strconv.Atoi(match)
	if err != nil {
		return defaultScore
	}
	if score > maxScore {
		return maxScore
	}
	if score < minScore {
		return minScore
	}
	return score
}

func appendLine(current, line string) string {
	if current == "" {
		return line
	}
	return current + " " + line
}

// backfill fills any empty text field from the deterministic analyzer. Each
// field uses the same logic the full rule-based report would, so a partially
// parsed analysis and the pure fallback report never disagree on the fields
// the backend left out.
func backfill(report *FeedbackReport, scenario Scenario, history []Message) {
	if report.Overview != "" && report.Strengths != "" && report.Improvements != "" && report.Insights != "" {
		return
	}
	stats := statsOf(history)
	if report.Overview == "" {
		report.Overview = overviewFor(scenario.Category, stats)
	}
	if report.Strengths == "" {
		report.Strengths = strengthsFor(scenario.Category, stats)
	}
	if report.Improvements == "" {
		report.Improvements = improvementsFor(scenario.Category, stats)
	}
	if report.Insights == "" {
		report.Insights = insightsFor(scenario.Category, stats)
	}
}
