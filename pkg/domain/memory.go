package domain

// Memory is a long-term memory entry returned by the memory service.
type Memory struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Score float64 `json:"score,omitempty"`
}
