// internal/ai/assistant.go
package ai

// Sentiment labels
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Assistant is the optional AI text capability. Every caller must degrade
// gracefully when a method fails: delivery falls back to the original text,
// reconciliation simply skips enrichment.
type Assistant interface {
	Personalize(text, contactName string, history []string) (string, error)
	Summarize(reply string) (string, error)
	Sentiment(reply string) (string, error)
}

// Disabled is the no-op Assistant used when personalization is off or no
// provider is configured.
type Disabled struct{}

func (Disabled) Personalize(text, contactName string, history []string) (string, error) {
	return text, nil
}

func (Disabled) Summarize(reply string) (string, error) {
	return "", nil
}

func (Disabled) Sentiment(reply string) (string, error) {
	return SentimentNeutral, nil
}

var _ Assistant = Disabled{}
