package checklist

import "time"

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Entry is a persisted generation record: the request and its outcome share
// one row.
type Entry struct {
	ID            int64
	UserID        string
	TargetDate    time.Time
	Goal          string
	ChecklistJSON string
	Status        Status
	ErrorMessage  string
	StartedAt     time.Time
	CompletedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Start marks generation as in flight.
func (e *Entry) Start() {
	e.StartedAt = time.Now()
	e.Status = StatusProcessing
}

// Complete records the generated checklist.
func (e *Entry) Complete(checklistJSON string) {
	now := time.Now()
	e.ChecklistJSON = checklistJSON
	e.CompletedAt = &now
	e.Status = StatusCompleted
	e.ErrorMessage = ""
}

// Fail records the generation error.
func (e *Entry) Fail(message string) {
	now := time.Now()
	e.ErrorMessage = message
	e.CompletedAt = &now
	e.Status = StatusFailed
}

func (e *Entry) IsCompleted() bool { return e.Status == StatusCompleted }

// Item is one actionable task of a generated checklist.
type Item struct {
	Task          string   `json:"task"`
	Description   string   `json:"description,omitempty"`
	Priority      Priority `json:"priority"`
	EstimatedTime string   `json:"estimatedTime,omitempty"`
}

// Request is the generation input. A zero date means today.
type Request struct {
	Date    string `json:"date"`
	Goal    string `json:"goal" binding:"required"`
	Context string `json:"context"`
}

// Response is the generated checklist returned to the caller.
type Response struct {
	Date               string `json:"date"`
	Goal               string `json:"goal"`
	Items              []Item `json:"items"`
	EstimatedTotalTime string `json:"estimatedTotalTime"`
}
