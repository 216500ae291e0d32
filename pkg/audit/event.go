// Package audit records committed change sets in a JSON-lines log.
package audit

import (
	"time"

	"github.com/pborman/uuid"

	"github.com/newtron-network/vlanadmin/pkg/switchmodel"
)

// Operation names what was attempted against a switch.
type Operation string

const (
	OperationCommit  Operation = "commit"
	OperationDiscard Operation = "discard"
)

// Event is one audited operation. Changes holds the human-readable
// rendering of the change log at the time of the operation.
type Event struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	User      string        `json:"user"`
	Switch    string        `json:"switch"`
	Model     string        `json:"model,omitempty"`
	Operation Operation     `json:"operation"`
	Changes   []string      `json:"changes,omitempty"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Filter selects events in Query. Zero fields match everything.
type Filter struct {
	Switch      string
	User        string
	Operation   Operation
	StartTime   time.Time
	EndTime     time.Time
	SuccessOnly bool
	FailureOnly bool

	// Last keeps only the newest N matches; applied before Offset/Limit.
	Last   int
	Offset int
	Limit  int
}

// NewEvent creates a new audit event
func NewEvent(user, sw string, op Operation) *Event {
	return &Event{
		ID:        generateID(),
		Timestamp: time.Now(),
		User:      user,
		Switch:    sw,
		Operation: op,
	}
}

// WithModel records the switch model.
func (e *Event) WithModel(model string) *Event {
	e.Model = model
	return e
}

// WithChanges renders the change log into the event.
func (e *Event) WithChanges(changes []switchmodel.Change) *Event {
	e.Changes = make([]string, len(changes))
	for i, c := range changes {
		e.Changes[i] = c.String()
	}
	return e
}

// WithSuccess marks the event as successful
func (e *Event) WithSuccess() *Event {
	e.Success = true
	return e
}

// WithError marks the event as failed
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithDuration sets the operation duration
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}

func (e *Event) matches(f Filter) bool {
	switch {
	case f.Switch != "" && e.Switch != f.Switch,
		f.User != "" && e.User != f.User,
		f.Operation != "" && e.Operation != f.Operation,
		!f.StartTime.IsZero() && e.Timestamp.Before(f.StartTime),
		!f.EndTime.IsZero() && e.Timestamp.After(f.EndTime),
		f.SuccessOnly && !e.Success,
		f.FailureOnly && e.Success:
		return false
	}
	return true
}

func generateID() string {
	return uuid.NewRandom().String()
}
