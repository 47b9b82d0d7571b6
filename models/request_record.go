package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the terminal state of one executed capability request
type RequestStatus string

const (
	RequestStatusCompleted RequestStatus = "completed"
	RequestStatusFailed    RequestStatus = "failed"
)

// RequestRecord is the immutable audit entry for one completed or failed
// execution. It is produced exactly once per execution by the request
// executor, after the adapter call settles, and never mutated afterward.
type RequestRecord struct {
	ID           uuid.UUID       `json:"id"`
	Provider     ProviderType    `json:"provider"`
	Capability   Capability      `json:"capability"`
	Input        json.RawMessage `json:"input"`
	Output       json.RawMessage `json:"output,omitempty"`
	Tokens       int             `json:"tokens"`
	Cost         float64         `json:"cost"`
	DurationMs   int64           `json:"duration_ms"`
	Status       RequestStatus   `json:"status"`
	ErrorMessage string          `json:"error,omitempty"`
	UserID       string          `json:"user_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// UsageStat is one aggregate row from the request-record store,
// grouped by provider and status over a reporting window.
type UsageStat struct {
	Provider      ProviderType  `json:"provider"`
	Status        RequestStatus `json:"status"`
	Requests      int64         `json:"requests"`
	TotalTokens   int64         `json:"total_tokens"`
	TotalCost     float64       `json:"total_cost"`
	AvgDurationMs float64       `json:"avg_duration_ms"`
}
