package trainer

import (
	"math/rand/v2"
	"strings"
)

// chooser picks an index in [0, n). The production chooser is uniform
// random; tests inject a deterministic one.
type chooser func(n int) int

// defaultTopicPhrase fills a {topic} slot when no topic was extracted.
const defaultTopicPhrase = "that"

// ── Opening lines ─────────────────────────────────────────────────────────────

// openers holds the prewritten first persona line for each category. The
// persona always speaks first when a session starts with an empty history.
var openers = map[Category][]string{
	CategoryCareer: {
		"Hello! Thank you for coming in today. I'm excited to learn more about you and your background.",
		"Good morning! Please, have a seat. I'd love to start by hearing about your experience and what interests you about this role.",
		"Hi there! I appreciate you taking the time to meet with me today. Why don't we begin with you telling me a bit about yourself?",
	},
	CategoryCustomerService: {
		"I can't believe this! I specifically bought this expensive laptop and now it's having issues!",
		"This is absolutely unacceptable! I paid good money for this product and now I want my money back!",
		"Listen, I've been a customer for years and this kind of quality is just not what I expect from your company!",
	},
	CategorySocial: {
		"Hi! Thanks for meeting me here. This coffee shop has such a nice atmosphere, don't you think?",
		"It's so nice to finally meet in person! I have to say, this place makes an amazing latte.",
		"Hello! I hope you didn't have trouble finding this place. I love how cozy it is here.",
	},
	CategoryManagement: {
		"Oh, hi... I wasn't expecting to talk today. Is everything okay?",
		"Hey, what's up? You mentioned you wanted to discuss something with me?",
		"Hi there. I hope this isn't about the project deadline... I've been working really hard on it.",
	},
	CategoryNetworking: {
		"Hi! I don't think we've met yet. I'm Taylor from Creative Marketing Solutions. Great event tonight, isn't it?",
		"Hello there! I love meeting new people at these events. What brings you here tonight?",
		"Hi! I've been looking forward to this networking event all week. What kind of work do you do?",
	},
}

// genericOpeners is used when the scenario category has no dedicated opener set.
var genericOpeners = []string{
	"Hello! I'm ready to begin our roleplay session. How are you doing today?",
}

// ── Category template pools ───────────────────────────────────────────────────

var careerRapport = []string{
	"Great! Now, let me ask you - what interests you most about this position?",
	"Excellent background! What drew you to apply for this specific role?",
	"That's impressive. What would you say is your biggest professional accomplishment?",
}

var careerTechnical = []string{
	"Excellent! How do you approach debugging when you encounter a complex issue in your code?",
	"That's great experience. Can you walk me through your process for learning new technologies?",
	"I see you have strong technical skills. How do you balance code quality with delivery deadlines?",
}

var careerQuestions = []string{
	"That's impressive experience! Can you walk me through a specific project where you had to solve a challenging technical problem?",
	"I see you have experience with {topic}. How would you handle a situation where you disagree with a team member's technical approach?",
	"Tell me about a time when you had to learn a new technology quickly. What was your approach?",
	"What interests you most about working at our company specifically?",
	"How do you stay current with new developments in software engineering?",
	"Describe a situation where you had to explain a complex technical concept to non-technical stakeholders.",
}

var careerTeamwork = []string{
	"Teamwork is crucial here. Tell me about a time when you had to resolve a conflict with a team member.",
	"Great! How do you handle situations where team members have different approaches to solving a problem?",
	"That shows good collaboration skills. What's your preferred communication style when working in teams?",
}

var careerFollowUps = []string{
	"That's a great example. What was the most challenging part of that experience?",
	"Interesting approach! How did you measure the success of that solution?",
	"I can see you have strong problem-solving skills. What would you do differently if you faced a similar situation again?",
	"That shows good initiative. How did your team react to your solution?",
}

var customerDeEscalations = []string{
	"Okay, I appreciate you taking the time to explain that. What are my options here?",
	"I can see you're trying to help. Let me think about what you've offered.",
	"Thank you for being patient with me. I was just really frustrated about this situation.",
	"That makes sense. I guess I was just expecting too much. What would you recommend?",
}

var customerRefund = []string{
	"Finally! Yes, I want a full refund. I don't care about your 30-day policy - this is defective!",
	"That's what I've been asking for! How long will the refund process take?",
}

var customerManager = []string{
	"Yes, I think speaking to a manager would be appropriate. This situation needs to be escalated.",
	"Thank you, I would appreciate speaking with someone who has more authority to resolve this.",
}

var customerEscalations = []string{
	"Well, that's something, but I still think I deserve compensation for all this trouble!",
	"I appreciate that, but this has been going on for weeks now. What are you going to do to make this right?",
	"Look, I understand you're trying to help, but I need a real solution here, not just apologies.",
	"That's better, but I'm still not satisfied. Can you get your manager involved?",
}

var socialInterests = []string{
	"That sounds really interesting! I've always wanted to try {topic}. How did you get started?",
	"Oh wow, I love that too! Have you been to {related_place} recently?",
	"That's so cool! I'm more of a {alternative_interest} person myself, but I can definitely appreciate {topic}.",
	"I've heard great things about that! What's your favorite part about {topic}?",
}

var socialWork = []string{
	"That sounds like rewarding work! What's the most interesting part of your job?",
	"That's fascinating! How did you get started in that field?",
	"Work can be so demanding sometimes. How do you like to unwind after a busy day?",
}

var socialTravel = []string{
	"Oh, I love traveling! What's your favorite place you've visited recently?",
	"That sounds amazing! I'm always looking for new travel ideas. Any recommendations?",
	"Travel is so enriching! Do you prefer adventure trips or more relaxing vacations?",
}

var socialQuestions = []string{
	"So what do you like to do for fun when you're not working?",
	"Have you seen any good movies lately? I'm always looking for recommendations.",
	"This place has such good energy, don't you think? Do you come here often?",
	"What's been the highlight of your week so far?",
}

var managementReceptive = []string{
	"Oh, I see what you mean. I hadn't thought about it that way before.",
	"You're right, I can definitely work on that. Do you have any specific suggestions?",
	"I appreciate the feedback. It's helpful to get your perspective on this.",
	"That makes sense. I want to improve, so I'm glad you brought this up.",
}

var managementFeedback = []string{
	"I really do want to get better. Maybe I just need some guidance on prioritizing tasks?",
	"That makes sense. I want to improve, so I'm glad you brought this up.",
	"I appreciate you taking the time to discuss this with me. How can I do better?",
}

var managementDefensive = []string{
	"I mean, I've been trying my best with everything that's on my plate right now...",
	"I thought I was doing okay with that. Can you give me a specific example?",
	"It's been really challenging lately with all the changes happening...",
	"I guess I didn't realize it was coming across that way. That wasn't my intention.",
}

var networkingProfessional = []string{
	"That sounds like fascinating work! What's the most exciting project you're working on right now?",
	"I'd love to hear more about your experience in {field}. We might have some interesting synergies.",
	"Your background sounds really impressive. What got you interested in {topic} originally?",
	"That's a great perspective! Have you noticed any emerging trends in your industry lately?",
}

var networkingCollaborative = []string{
	"You know, we might be able to help each other out. Would you be interested in connecting after the event?",
	"That's exactly the kind of expertise our clients are looking for. Would you be open to a coffee meeting sometime?",
	"I think there could be some real opportunities for collaboration between our companies.",
	"This has been a great conversation! I'd love to continue it sometime. Do you have a business card?",
}

var networkingGeneral = []string{
	"That sounds like fascinating work! What's the most exciting project you're working on right now?",
	"Your background sounds really impressive. What got you interested in this field originally?",
	"This has been a great conversation! What brings you to networking events like this?",
}

var defaultResponses = []string{
	"That's really interesting. Can you tell me more about that?",
	"I see your point. How do you think we should move forward?",
	"That's a great perspective. What led you to that conclusion?",
	"I understand. What would you like to focus on next?",
	"That makes sense. How has that experience shaped your approach?",
	"Interesting! What's been your biggest learning from that?",
}

// ── Rule engine ───────────────────────────────────────────────────────────────

// fallbackGenerator is the deterministic rule engine behind the persona
// response path. Its inputs fully determine the eligible template pool; the
// injected chooser only selects among equally valid entries.
type fallbackGenerator struct {
	pick chooser
}

func newFallbackGenerator(pick chooser) *fallbackGenerator {
	if pick == nil {
		pick = rand.IntN
	}
	return &fallbackGenerator{pick: pick}
}

// choose selects one entry from pool via the injected chooser.
func (g *fallbackGenerator) choose(pool []string) string {
	return pool[g.pick(len(pool))]
}

// OpeningLine returns the persona's first utterance for an empty session.
func (g *fallbackGenerator) OpeningLine(category Category) string {
	if pool, ok := openers[category]; ok {
		return g.choose(pool)
	}
	return g.choose(genericOpeners)
}

// Reply produces the next persona utterance without the generative backend.
// An empty history yields an opening line; a history without any user turn
// yields the fixed listening prompt; otherwise the most recent user message
// drives a category-specific rule set.
func (g *fallbackGenerator) Reply(scenario Scenario, history []Message) string {
	if len(history) == 0 {
		return g.OpeningLine(scenario.Category)
	}

	var lastUser string
	found := false
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == RoleUser {
			lastUser = history[i].Content
			found = true
			break
		}
	}
	if !found {
		return listeningPrompt
	}

	lower := strings.ToLower(lastUser)
	topics := ExtractTopics(lastUser)
	sentiment := ClassifySentiment(lastUser)

	switch scenario.Category {
	case CategoryCareer:
		return g.careerReply(lower, len(history), topics)
	case CategoryCustomerService:
		return g.customerServiceReply(lower, sentiment)
	case CategorySocial:
		return g.socialReply(lower, topics)
	case CategoryManagement:
		return g.managementReply(lower, sentiment)
	case CategoryNetworking:
		return g.networkingReply(lower, topics)
	}
	return g.choose(defaultResponses)
}

// careerReply covers interview scenarios. The first couple of turns build
// rapport regardless of content; after that, ordered keyword rules pick the
// themed pool.
func (g *fallbackGenerator) careerReply(lower string, turnCount int, topics []string) string {
	if turnCount <= 2 {
		return g.choose(careerRapport)
	}
	if containsAny(lower, "python", "javascript", "code", "programming", "development", "technical") {
		return g.choose(careerTechnical)
	}
	if containsAny(lower, "experience", "background", "worked", "project") {
		return substituteTopic(g.choose(careerQuestions), topics)
	}
	if containsAny(lower, "team", "collaboration", "colleagues", "work with") {
		return g.choose(careerTeamwork)
	}
	return g.choose(careerFollowUps)
}

// customerServiceReply plays an upset customer who escalates or calms down
// based on how the trainee handles them.
func (g *fallbackGenerator) customerServiceReply(lower string, sentiment Sentiment) string {
	if sentiment == SentimentPositive || containsAny(lower, "understand", "appreciate", "thank", "help") {
		return g.choose(customerDeEscalations)
	}
	if containsAny(lower, "refund", "money back", "return") {
		return g.choose(customerRefund)
	}
	if containsAny(lower, "manager", "supervisor", "boss") {
		return g.choose(customerManager)
	}
	return g.choose(customerEscalations)
}

// socialReply keeps a casual conversation flowing around whatever the
// trainee brings up.
func (g *fallbackGenerator) socialReply(lower string, topics []string) string {
	if containsAny(lower, "hobby", "hobbies", "interests", "like to do", "enjoy") {
		reply := substituteTopic(g.choose(socialInterests), topics)
		reply = strings.ReplaceAll(reply, "{related_place}", "the local area")
		return strings.ReplaceAll(reply, "{alternative_interest}", "reading")
	}
	if containsAny(lower, "work", "job", "career", "profession") {
		return g.choose(socialWork)
	}
	if containsAny(lower, "travel", "vacation", "trip", "visit") {
		return g.choose(socialTravel)
	}
	return g.choose(socialQuestions)
}

// managementReply plays an employee receiving feedback, shifting between
// receptive and defensive depending on the trainee's tone.
func (g *fallbackGenerator) managementReply(lower string, sentiment Sentiment) string {
	if sentiment == SentimentPositive || containsAny(lower, "understand", "appreciate", "help", "improve") {
		return g.choose(managementReceptive)
	}
	if containsAny(lower, "feedback", "performance", "improve", "better") {
		return g.choose(managementFeedback)
	}
	return g.choose(managementDefensive)
}

// networkingReply plays a fellow attendee looking for professional common
// ground.
func (g *fallbackGenerator) networkingReply(lower string, topics []string) string {
	if containsAny(lower, "business", "company", "work", "industry", "professional") {
		field := defaultFieldPhrase(topics)
		reply := strings.ReplaceAll(g.choose(networkingProfessional), "{field}", field)
		return strings.ReplaceAll(reply, "{topic}", field)
	}
	if containsAny(lower, "collaborate", "partner", "work together", "opportunity") {
		return g.choose(networkingCollaborative)
	}
	return g.choose(networkingGeneral)
}

// substituteTopic fills a {topic} slot with the first extracted topic, or a
// fixed default phrase when none was found.
func substituteTopic(template string, topics []string) string {
	topic := defaultTopicPhrase
	if len(topics) > 0 {
		topic = topics[0]
	}
	return strings.ReplaceAll(template, "{topic}", topic)
}

func defaultFieldPhrase(topics []string) string {
	if len(topics) > 0 {
		return topics[0]
	}
	return "your field"
}
