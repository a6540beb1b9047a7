package trainer

import (
	"strings"
	"testing"
	"time"
)

// pickIndex returns a chooser that always selects the given pool index,
// making template selection deterministic.
func pickIndex(i int) chooser {
	return func(n int) int {
		if i >= n {
			return n - 1
		}
		return i
	}
}

func userMsg(content string) Message {
	return Message{Role: RoleUser, Content: content, Timestamp: time.Now()}
}

func personaMsg(content string) Message {
	return Message{Role: RolePersona, Content: content, Timestamp: time.Now()}
}

func TestFallback_EmptyHistoryUsesOpener(t *testing.T) {
	g := newFallbackGenerator(pickIndex(0))

	for _, category := range categories {
		reply := g.Reply(Scenario{Category: category}, nil)
		if reply != openers[category][0] {
			t.Errorf("category %s: got %q, want first opener %q", category, reply, openers[category][0])
		}
	}
}

func TestFallback_UnknownCategoryUsesGenericOpener(t *testing.T) {
	g := newFallbackGenerator(pickIndex(0))

	reply := g.Reply(Scenario{Category: CategoryOther}, nil)
	want := "Hello! I'm ready to begin our roleplay session. How are you doing today?"
	if reply != want {
		t.Errorf("got %q, want %q", reply, want)
	}
}

func TestFallback_NoUserTurnReturnsListeningPrompt(t *testing.T) {
	g := newFallbackGenerator(pickIndex(0))

	history := []Message{personaMsg("Hello!"), personaMsg("Anyone there?")}
	if reply := g.Reply(Scenario{Category: CategoryCareer}, history); reply != listeningPrompt {
		t.Errorf("got %q, want %q", reply, listeningPrompt)
	}
}

func TestFallback_CareerRapportOnEarlyTurns(t *testing.T) {
	g := newFallbackGenerator(pickIndex(0))

	// Two turns total, so the rapport phase still applies even though the
	// user mentioned a technical keyword.
	history := []Message{personaMsg("Welcome!"), userMsg("I know python inside out.")}
	reply := g.Reply(Scenario{Category: CategoryCareer}, history)
	if reply != careerRapport[0] {
		t.Errorf("got %q, want rapport line %q", reply, careerRapport[0])
	}
}

func TestFallback_CareerKeywordRouting(t *testing.T) {
	history := func(last string) []Message {
		return []Message{personaMsg("Welcome!"), userMsg("Hi."), personaMsg("Tell me more."), userMsg(last)}
	}

	tests := []struct {
		name string
		last string
		pool []string
	}{
		{"technical keywords", "I mostly do javascript development.", careerTechnical},
		{"experience keywords", "My last project shipped on time.", careerQuestions},
		{"teamwork keywords", "I enjoy collaboration across departments.", careerTeamwork},
		{"no keywords", "I grew up in a small town.", careerFollowUps},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newFallbackGenerator(pickIndex(0))
			reply := g.Reply(Scenario{Category: CategoryCareer}, history(tt.last))
			want := substituteTopic(tt.pool[0], ExtractTopics(tt.last))
			if reply != want {
				t.Errorf("got %q, want %q", reply, want)
			}
		})
	}
}

func TestFallback_CareerTopicSubstitution(t *testing.T) {
	g := newFallbackGenerator(pickIndex(1))

	history := []Message{
		personaMsg("Welcome!"), userMsg("Hi."), personaMsg("Go on."),
		userMsg("I have experience with python services."),
	}
	reply := g.Reply(Scenario{Category: CategoryCareer}, history)
	if strings.Contains(reply, "{topic}") {
		t.Errorf("unsubstituted placeholder in %q", reply)
	}
	if !strings.Contains(reply, "python") {
		t.Errorf("expected extracted topic in %q", reply)
	}
}

func TestFallback_CustomerServiceRouting(t *testing.T) {
	tests := []struct {
		name string
		last string
		pool []string
	}{
		{"positive tone de-escalates", "I appreciate you looking into this, thank you.", customerDeEscalations},
		{"refund request", "I just want a refund at this point.", customerRefund},
		{"manager request", "Let me talk to your manager.", customerManager},
		{"neutral complaint escalates", "The screen still flickers constantly.", customerEscalations},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newFallbackGenerator(pickIndex(0))
			history := []Message{personaMsg("This is unacceptable!"), userMsg(tt.last)}
			reply := g.Reply(Scenario{Category: CategoryCustomerService}, history)
			if reply != tt.pool[0] {
				t.Errorf("got %q, want %q", reply, tt.pool[0])
			}
		})
	}
}

func TestFallback_SocialPlaceholdersAlwaysFilled(t *testing.T) {
	// Every interests template must come out free of placeholders, with or
	// without an extractable topic.
	for i := range socialInterests {
		for _, last := range []string{
			"My hobbies are photography and hiking.",
			"I enjoy all sorts of things.",
		} {
			g := newFallbackGenerator(pickIndex(i))
			history := []Message{personaMsg("Hi!"), userMsg(last)}
			reply := g.Reply(Scenario{Category: CategorySocial}, history)
			for _, placeholder := range []string{"{topic}", "{related_place}", "{alternative_interest}"} {
				if strings.Contains(reply, placeholder) {
					t.Errorf("template %d with %q: placeholder %s left in %q", i, last, placeholder, reply)
				}
			}
		}
	}
}

func TestFallback_ManagementToneRouting(t *testing.T) {
	tests := []struct {
		name string
		last string
		pool []string
	}{
		{"supportive tone is received well", "I appreciate your hard work and want to help you grow.", managementReceptive},
		{"feedback keywords", "Your performance on deadlines has slipped.", managementFeedback},
		{"blunt criticism gets defensiveness", "This report is sloppy.", managementDefensive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newFallbackGenerator(pickIndex(0))
			history := []Message{personaMsg("Is everything okay?"), userMsg(tt.last)}
			reply := g.Reply(Scenario{Category: CategoryManagement}, history)
			if reply != tt.pool[0] {
				t.Errorf("got %q, want %q", reply, tt.pool[0])
			}
		})
	}
}

func TestFallback_NetworkingFieldSubstitution(t *testing.T) {
	g := newFallbackGenerator(pickIndex(1))

	history := []Message{personaMsg("Great event!"), userMsg("I run a consulting business.")}
	reply := g.Reply(Scenario{Category: CategoryNetworking}, history)
	if strings.Contains(reply, "{field}") || strings.Contains(reply, "{topic}") {
		t.Errorf("unsubstituted placeholder in %q", reply)
	}
	if !strings.Contains(reply, "consulting") {
		t.Errorf("expected extracted field in %q", reply)
	}
}

func TestFallback_NetworkingWithoutTopicsUsesDefaultField(t *testing.T) {
	g := newFallbackGenerator(pickIndex(1))

	history := []Message{personaMsg("Great event!"), userMsg("I work downtown, mostly industry events.")}
	reply := g.Reply(Scenario{Category: CategoryNetworking}, history)
	if !strings.Contains(reply, "your field") {
		t.Errorf("expected default field phrase in %q", reply)
	}
}

func TestFallback_OtherCategoryUsesDefaultPool(t *testing.T) {
	g := newFallbackGenerator(pickIndex(0))

	history := []Message{personaMsg("Hello."), userMsg("Let's talk about philosophy.")}
	reply := g.Reply(Scenario{Category: CategoryOther}, history)
	if reply != defaultResponses[0] {
		t.Errorf("got %q, want %q", reply, defaultResponses[0])
	}
}

func TestFallback_DeterministicForSameInputs(t *testing.T) {
	history := []Message{personaMsg("Welcome!"), userMsg("Thanks for having me.")}
	scenario := Scenario{Category: CategoryCareer}

	a := newFallbackGenerator(pickIndex(2)).Reply(scenario, history)
	b := newFallbackGenerator(pickIndex(2)).Reply(scenario, history)
	if a != b {
		t.Errorf("same chooser and inputs produced %q and %q", a, b)
	}
}
