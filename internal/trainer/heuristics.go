package trainer

import "strings"

// Sentiment is the polarity label assigned to a user message.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// maxTopics caps how many topic keywords ExtractTopics returns.
const maxTopics = 3

// Topic vocabularies. Matching is plain lower-cased substring containment;
// order determines which topics win when more than maxTopics match.
var (
	techKeywords = []string{
		"python", "javascript", "react", "node", "database", "api",
		"frontend", "backend",
	}
	businessKeywords = []string{
		"marketing", "sales", "strategy", "management", "leadership",
		"consulting",
	}
	hobbyKeywords = []string{
		"photography", "hiking", "reading", "music", "travel", "sports",
		"cooking",
	}
)

// Sentiment polarity tables. A word contributes one hit per table entry it
// appears in, regardless of how often it occurs in the message.
var (
	positiveWords = []string{
		"good", "great", "excellent", "love", "like", "appreciate",
		"thank", "understand", "agree",
	}
	negativeWords = []string{
		"bad", "terrible", "hate", "angry", "frustrated", "upset",
		"problem", "issue", "complaint",
	}
)

// ExtractTopics returns up to maxTopics keywords found in message, scanning
// the technical, business, and hobby vocabularies in that order.
func ExtractTopics(message string) []string {
	lower := strings.ToLower(message)

	var topics []string
	for _, vocab := range [][]string{techKeywords, businessKeywords, hobbyKeywords} {
		for _, keyword := range vocab {
			if strings.Contains(lower, keyword) {
				topics = append(topics, keyword)
				if len(topics) == maxTopics {
					return topics
				}
			}
		}
	}
	return topics
}

// ClassifySentiment labels message by counting positive versus negative
// keyword hits. Strictly more positive hits yields positive, strictly more
// negative yields negative; ties (including zero hits on both sides) are
// neutral.
func ClassifySentiment(message string) Sentiment {
	lower := strings.ToLower(message)

	var positive, negative int
	for _, word := range positiveWords {
		if strings.Contains(lower, word) {
			positive++
		}
	}
	for _, word := range negativeWords {
		if strings.Contains(lower, word) {
			negative++
		}
	}

	switch {
	case positive > negative:
		return SentimentPositive
	case negative > positive:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// containsAny reports whether lower contains at least one of the substrings.
// Callers pass an already lower-cased message.
func containsAny(lower string, substrings ...string) bool {
	for _, s := range substrings {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
