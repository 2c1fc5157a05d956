package models

// DefaultLimit is the page size assumed when the backend does not report one
const DefaultLimit = 10

// Envelope is the canonical paginated list shape
type Envelope[T any] struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Items  []T `json:"items"`
}

// EmptyEnvelope is the safe value used for malformed list payloads
func EmptyEnvelope[T any]() Envelope[T] {
	return Envelope[T]{Limit: DefaultLimit, Items: []T{}}
}
