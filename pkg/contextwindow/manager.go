package contextwindow

import "github.com/ashevelev/chatweb/pkg/domain"

// DefaultBudget is the default maximum estimated token cost for a
// single model request.
const DefaultBudget = 8000

// Manager selects which parts of a conversation fit under a token
// budget. A system message, if present, is always kept and always
// output first.
type Manager struct {
	budget    int
	estimator Estimator
}

func NewManager(budget int, estimator Estimator) *Manager {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Manager{budget: budget, estimator: estimator}
}

func (m *Manager) Budget() int { return m.budget }

// Trim returns a chronologically ordered subsequence of messages whose
// total estimated cost fits the budget. The system message is reserved
// first; the remaining budget is filled with the most recent turns.
// When the budget is exhausted mid-scan the partially fitting older
// message is excluded, never truncated.
func (m *Manager) Trim(messages []domain.Message) []domain.Message {
	system, rest := splitSystem(messages)

	total := 0
	result := make([]domain.Message, 0, len(messages))
	if system != nil {
		result = append(result, *system)
		total += m.estimator.Estimate(*system)
	}

	// Walk newest to oldest, then restore chronological order.
	kept := 0
	for i := len(rest) - 1; i >= 0; i-- {
		cost := m.estimator.Estimate(rest[i])
		if total+cost > m.budget {
			break
		}
		total += cost
		kept++
	}

	result = append(result, rest[len(rest)-kept:]...)
	return result
}

// Segment splits a conversation into ordered windows, each within the
// budget after reserving the system message's cost. Consecutive windows
// share the last overlap messages of the previous window for
// continuity; the final partial window is always flushed.
func (m *Manager) Segment(messages []domain.Message, overlap int) [][]domain.Message {
	if overlap < 0 {
		overlap = 0
	}

	system, rest := splitSystem(messages)

	systemCost := 0
	if system != nil {
		systemCost = m.estimator.Estimate(*system)
	}

	var segments [][]domain.Message
	var current []domain.Message
	currentCost := 0

	flush := func() {
		segment := make([]domain.Message, 0, len(current)+1)
		if system != nil {
			segment = append(segment, *system)
		}
		segment = append(segment, current...)
		segments = append(segments, segment)
	}

	for _, msg := range rest {
		cost := m.estimator.Estimate(msg)

		if currentCost+cost+systemCost > m.budget && len(current) > 0 {
			flush()

			carry := overlap
			if carry > len(current) {
				carry = len(current)
			}
			current = append([]domain.Message(nil), current[len(current)-carry:]...)
			currentCost = m.estimator.EstimateAll(current)
		}

		current = append(current, msg)
		currentCost += cost
	}

	if len(current) > 0 {
		flush()
	}

	return segments
}

// splitSystem extracts the first system message, if any, and returns
// the remaining messages in order. At most one system message is
// expected per input.
func splitSystem(messages []domain.Message) (*domain.Message, []domain.Message) {
	var system *domain.Message
	rest := make([]domain.Message, 0, len(messages))
	for i := range messages {
		if system == nil && messages[i].Role == domain.RoleSystem {
			system = &messages[i]
			continue
		}
		rest = append(rest, messages[i])
	}
	return system, rest
}
