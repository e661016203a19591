package contextwindow

import (
	"strings"
	"testing"

	"github.com/ashevelev/chatweb/pkg/domain"
)

func msg(role domain.Role, content string) domain.Message {
	return domain.Message{Role: role, Content: content}
}

func contents(messages []domain.Message) []string {
	out := make([]string, len(messages))
	for i, m := range messages {
		out[i] = m.Content
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestEstimate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty", "", 100},
		{"one char", "a", 101},
		{"exactly four chars", "abcd", 101},
		{"five chars rounds up", "abcde", 102},
		{"forty chars", strings.Repeat("x", 40), 110},
	}

	var e Estimator
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Estimate(msg(domain.RoleUser, tt.content)); got != tt.want {
				t.Errorf("Estimate(%q) = %d, want %d", tt.content, got, tt.want)
			}
		})
	}
}

func TestTrimKeepsSystemMessageFirst(t *testing.T) {
	m := NewManager(1000, Estimator{})

	messages := []domain.Message{
		msg(domain.RoleUser, "first"),
		msg(domain.RoleSystem, "you are helpful"),
		msg(domain.RoleAssistant, "second"),
	}

	got := m.Trim(messages)
	if len(got) == 0 || got[0].Role != domain.RoleSystem {
		t.Fatalf("expected system message first, got %v", contents(got))
	}
}

func TestTrimPrefersRecentMessages(t *testing.T) {
	// Each message costs ~101 tokens; budget fits three.
	m := NewManager(310, Estimator{})

	messages := []domain.Message{
		msg(domain.RoleUser, "m1"),
		msg(domain.RoleAssistant, "m2"),
		msg(domain.RoleUser, "m3"),
		msg(domain.RoleAssistant, "m4"),
	}

	got := m.Trim(messages)
	want := []string{"m2", "m3", "m4"}
	if !equal(contents(got), want) {
		t.Errorf("Trim = %v, want %v", contents(got), want)
	}
}

func TestTrimSystemOnlyWhenNothingFits(t *testing.T) {
	// System message consumes most of the budget; neither remaining
	// message fits in what is left.
	m := NewManager(150, Estimator{})

	messages := []domain.Message{
		msg(domain.RoleSystem, "sys"),
		msg(domain.RoleUser, strings.Repeat("a", 2000)),
		msg(domain.RoleAssistant, strings.Repeat("b", 10)),
	}

	got := m.Trim(messages)
	if len(got) != 1 || got[0].Role != domain.RoleSystem {
		t.Fatalf("expected only the system message, got %v", contents(got))
	}
}

func TestTrimEmptyWhenNothingFitsAndNoSystem(t *testing.T) {
	m := NewManager(50, Estimator{})

	got := m.Trim([]domain.Message{msg(domain.RoleUser, "hello")})
	if len(got) != 0 {
		t.Fatalf("expected empty output, got %v", contents(got))
	}
}

func TestTrimWithinBudget(t *testing.T) {
	budgets := []int{150, 500, 1000, 5000}
	var messages []domain.Message
	messages = append(messages, msg(domain.RoleSystem, "sys"))
	for i := 0; i < 30; i++ {
		messages = append(messages, msg(domain.RoleUser, strings.Repeat("x", i*17)))
	}

	var e Estimator
	for _, budget := range budgets {
		m := NewManager(budget, e)
		got := m.Trim(messages)

		total := e.EstimateAll(got)
		systemCost := e.Estimate(messages[0])
		if total > budget && total != systemCost {
			t.Errorf("budget %d: trimmed cost %d exceeds budget", budget, total)
		}
	}
}

func TestTrimIsIdempotent(t *testing.T) {
	m := NewManager(700, Estimator{})

	var messages []domain.Message
	messages = append(messages, msg(domain.RoleSystem, "sys"))
	for i := 0; i < 12; i++ {
		messages = append(messages, msg(domain.RoleUser, strings.Repeat("y", i*50)))
	}

	once := m.Trim(messages)
	twice := m.Trim(once)
	if !equal(contents(once), contents(twice)) {
		t.Errorf("trim not idempotent: %v vs %v", contents(once), contents(twice))
	}
}

func TestTrimPreservesChronologicalOrder(t *testing.T) {
	m := NewManager(2000, Estimator{})

	messages := []domain.Message{
		msg(domain.RoleUser, "a"),
		msg(domain.RoleAssistant, "b"),
		msg(domain.RoleSystem, "sys"),
		msg(domain.RoleUser, "c"),
	}

	got := m.Trim(messages)
	want := []string{"sys", "a", "b", "c"}
	if !equal(contents(got), want) {
		t.Errorf("Trim = %v, want %v", contents(got), want)
	}
}

func TestSegmentRespectsBudget(t *testing.T) {
	var e Estimator
	m := NewManager(450, e)

	var messages []domain.Message
	messages = append(messages, msg(domain.RoleSystem, "sys"))
	for i := 0; i < 10; i++ {
		messages = append(messages, msg(domain.RoleUser, strings.Repeat("z", 40)))
	}

	segments := m.Segment(messages, 1)
	if len(segments) < 2 {
		t.Fatalf("expected multiple segments, got %d", len(segments))
	}
	for i, segment := range segments {
		if segment[0].Role != domain.RoleSystem {
			t.Errorf("segment %d: system message not first", i)
		}
		if cost := e.EstimateAll(segment); cost > 450 {
			t.Errorf("segment %d: cost %d exceeds budget", i, cost)
		}
	}
}

func TestSegmentOverlapReconstructsConversation(t *testing.T) {
	m := NewManager(350, Estimator{})
	overlap := 2

	var messages []domain.Message
	for i := 0; i < 9; i++ {
		messages = append(messages, msg(domain.RoleUser, strings.Repeat("w", 20+i)))
	}

	segments := m.Segment(messages, overlap)
	if len(segments) < 2 {
		t.Fatalf("expected multiple segments, got %d", len(segments))
	}

	// Consecutive segments share exactly overlap messages; stripping
	// them rebuilds the original conversation in order.
	var rebuilt []domain.Message
	for i, segment := range segments {
		if i == 0 {
			rebuilt = append(rebuilt, segment...)
			continue
		}
		rebuilt = append(rebuilt, segment[overlap:]...)
	}

	if !equal(contents(rebuilt), contents(messages)) {
		t.Errorf("reconstruction mismatch:\n got %v\nwant %v", contents(rebuilt), contents(messages))
	}
}

func TestSegmentSingleWindow(t *testing.T) {
	m := NewManager(0, Estimator{}) // default budget

	messages := []domain.Message{
		msg(domain.RoleSystem, "sys"),
		msg(domain.RoleUser, "hi"),
		msg(domain.RoleAssistant, "hello"),
	}

	segments := m.Segment(messages, 2)
	if len(segments) != 1 {
		t.Fatalf("expected one segment, got %d", len(segments))
	}
	want := []string{"sys", "hi", "hello"}
	if !equal(contents(segments[0]), want) {
		t.Errorf("segment = %v, want %v", contents(segments[0]), want)
	}
}

func TestSegmentEmptyInput(t *testing.T) {
	m := NewManager(100, Estimator{})
	if segments := m.Segment(nil, 2); len(segments) != 0 {
		t.Errorf("expected no segments for empty input, got %d", len(segments))
	}
}
