package domain

import "time"

// Complexity drives how many documents a client is expected to provide.
// It is set once at client creation and never changes.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

func (c Complexity) Valid() bool {
	switch c {
	case ComplexityLow, ComplexityMedium, ComplexityHigh:
		return true
	}
	return false
}

type Client struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Complexity Complexity `json:"complexity"`
	CreatedAt  time.Time  `json:"created_at"`
}
