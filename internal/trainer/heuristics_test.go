package trainer

import (
	"reflect"
	"testing"
)

func TestExtractTopics(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    []string
	}{
		{
			name:    "no known topics",
			message: "Hello there, nice to meet you!",
			want:    nil,
		},
		{
			name:    "single technical topic",
			message: "I have five years of Python experience.",
			want:    []string{"python"},
		},
		{
			name:    "technical topics win over hobbies",
			message: "I write Python and JavaScript for a React frontend, and I also enjoy hiking and music.",
			want:    []string{"python", "javascript", "react"},
		},
		{
			name:    "mixed vocabularies under the cap",
			message: "My marketing background pairs well with my photography hobby.",
			want:    []string{"marketing", "photography"},
		},
		{
			name:    "matching is case insensitive",
			message: "DATABASE work and SALES strategy.",
			want:    []string{"database", "sales", "strategy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTopics(tt.message)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractTopics(%q) = %v, want %v", tt.message, got, tt.want)
			}
		})
	}
}

func TestClassifySentiment(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    Sentiment
	}{
		{"no polarity words", "The meeting is at noon.", SentimentNeutral},
		{"positive majority", "That's great, I really appreciate your help, thank you!", SentimentPositive},
		{"negative majority", "This is terrible, I'm so frustrated with this problem.", SentimentNegative},
		{"equal hits are neutral", "It was a good day until this bad news arrived.", SentimentNeutral},
		{"case insensitive", "EXCELLENT work!", SentimentPositive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifySentiment(tt.message); got != tt.want {
				t.Errorf("ClassifySentiment(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestClassifySentiment_Symmetry(t *testing.T) {
	// A message hitting one positive and one negative word must classify
	// the same as the empty message.
	if got := ClassifySentiment("good problem"); got != ClassifySentiment("") {
		t.Errorf("balanced message = %q, empty message = %q", got, ClassifySentiment(""))
	}
}
