// Package sentiment provides a keyword-table analyzer for inbound SMS
// replies. Results are heuristic placeholders until a real NLP provider
// is wired in.
package sentiment

import (
	"strings"

	"github.com/mirelhq/campaign-insights/internal/domain"
)

const stubConfidence = 0.65

// Analysis is the classified tone and intent of one message body.
type Analysis struct {
	Sentiment  domain.Sentiment
	Intent     domain.Intent
	Confidence float64
}

var positiveKeywords = []string{
	"yes", "great", "thanks", "thank you", "love", "awesome", "interested", "sure", "perfect",
}

var negativeKeywords = []string{
	"no", "stop", "bad", "hate", "awful", "unsubscribe", "never", "terrible", "scam",
}

var intentKeywords = []struct {
	intent   domain.Intent
	keywords []string
}{
	{domain.IntentOptOut, []string{"stop", "unsubscribe", "remove me", "opt out"}},
	{domain.IntentComplaint, []string{"complaint", "terrible", "awful", "scam", "refund"}},
	{domain.IntentQuestion, []string{"?", "how", "when", "where", "what", "why"}},
	{domain.IntentInterested, []string{"yes", "interested", "sign me up", "tell me more", "sure"}},
}

// Analyzer classifies message bodies by keyword lookup.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze scores a message body. Empty bodies come back neutral/unknown.
func (a *Analyzer) Analyze(body string) Analysis {
	normalized := strings.ToLower(strings.TrimSpace(body))
	if normalized == "" {
		return Analysis{
			Sentiment:  domain.SentimentNeutral,
			Intent:     domain.IntentUnknown,
			Confidence: stubConfidence,
		}
	}

	score := 0
	for _, keyword := range positiveKeywords {
		if strings.Contains(normalized, keyword) {
			score++
		}
	}
	for _, keyword := range negativeKeywords {
		if strings.Contains(normalized, keyword) {
			score--
		}
	}

	tone := domain.SentimentNeutral
	if score > 0 {
		tone = domain.SentimentPositive
	} else if score < 0 {
		tone = domain.SentimentNegative
	}

	intent := domain.IntentUnknown
	for _, entry := range intentKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(normalized, keyword) {
				intent = entry.intent
				break
			}
		}
		if intent != domain.IntentUnknown {
			break
		}
	}

	return Analysis{
		Sentiment:  tone,
		Intent:     intent,
		Confidence: stubConfidence,
	}
}
