package contextwindow

import "github.com/ashevelev/chatweb/pkg/domain"

const (
	defaultCharsPerToken   = 4
	defaultMessageOverhead = 100
)

// Estimator approximates the token cost of a message from its character
// length. A rough heuristic, good enough for budgeting a context window
// but not for billing.
type Estimator struct {
	CharsPerToken   int // defaults to 4 if zero
	MessageOverhead int // fixed per-message cost, defaults to 100 if zero
}

func (e Estimator) ratio() int {
	if e.CharsPerToken <= 0 {
		return defaultCharsPerToken
	}
	return e.CharsPerToken
}

func (e Estimator) overhead() int {
	if e.MessageOverhead <= 0 {
		return defaultMessageOverhead
	}
	return e.MessageOverhead
}

// Estimate returns ceil(len(content)/charsPerToken) plus the fixed
// per-message overhead.
func (e Estimator) Estimate(m domain.Message) int {
	r := e.ratio()
	return (len(m.Content)+r-1)/r + e.overhead()
}

// EstimateAll returns the total estimated cost of messages.
func (e Estimator) EstimateAll(messages []domain.Message) int {
	total := 0
	for _, m := range messages {
		total += e.Estimate(m)
	}
	return total
}
