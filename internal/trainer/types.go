// Package trainer implements the persona response and feedback synthesis
// engines for Parley roleplay sessions.
//
// Both engines take a scenario descriptor plus an ordered conversation
// history and depend on nothing else. The primary path delegates to a
// generative backend ([llm.Provider]); when the backend is unavailable,
// rate limited, or returns unusable output, a deterministic rule-based
// path produces the result instead. No failure on either path ever
// reaches the caller as an error.
package trainer

import "time"

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleUser marks a turn authored by the trainee.
	RoleUser Role = "user"

	// RolePersona marks a turn authored by the AI persona.
	RolePersona Role = "persona"
)

// Category classifies a scenario into one of the supported roleplay domains.
// Unrecognised values resolve to [CategoryOther] rather than failing, so that
// newly authored scenario categories degrade to generic behaviour.
type Category string

const (
	CategoryCareer          Category = "career"
	CategoryCustomerService Category = "customer_service"
	CategorySocial          Category = "social"
	CategoryManagement      Category = "management"
	CategoryNetworking      Category = "networking"
	CategoryOther           Category = "other"
)

// categories lists the closed set of known categories, in display order.
var categories = []Category{
	CategoryCareer,
	CategoryCustomerService,
	CategorySocial,
	CategoryManagement,
	CategoryNetworking,
}

// IsValid reports whether c is one of the known categories (not Other).
func (c Category) IsValid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory maps a free-form category tag onto the closed enumeration.
// Anything unrecognised becomes [CategoryOther].
func ParseCategory(s string) Category {
	c := Category(s)
	if c.IsValid() {
		return c
	}
	return CategoryOther
}

// Scenario is the immutable definition of a roleplay situation. It is
// authored outside this package and read-only here.
type Scenario struct {
	// Title is the short display name of the situation.
	Title string

	// Description is the free-text setup shown to the trainee.
	Description string

	// PersonaScript is the character brief used to condition generation.
	PersonaScript string

	// Difficulty is the authored difficulty label (e.g. "beginner").
	Difficulty string

	// Category selects the behavioural rules for both engines.
	Category Category
}

// Message is one turn in a conversation. Immutable once created.
type Message struct {
	// Role identifies the author.
	Role Role

	// Content is the turn's text.
	Content string

	// Position is the turn's zero-based order within its session.
	// Positions are contiguous; user and persona turns need not alternate.
	Position int

	// Timestamp records when the turn was created.
	Timestamp time.Time
}

// FeedbackReport is the structured performance review produced once per
// completed session.
type FeedbackReport struct {
	// Score is the overall performance score, always within [60, 95].
	Score int

	// Overview is a short prose summary of the performance.
	Overview string

	// Strengths lists demonstrated strengths, joined by " • ".
	Strengths string

	// Improvements lists actionable improvement areas, joined by " • ".
	Improvements string

	// Insights lists key learning points, joined by " • ".
	Insights string
}
