package models

import "time"

// Row is one entry of the TrafficLight API response.
type Row struct {
	From  string `json:"From"`
	To    string `json:"To"`
	Value string `json:"Value"`
}

// Observation is the most recent row of a response with its window normalized to UTC.
type Observation struct {
	WindowStart time.Time
	WindowEnd   time.Time
	Signal      SignalState
}

// Credential is a bearer token. Its expiry is only discovered through a 401.
type Credential struct {
	AccessToken string
}

// IsZero reports whether no token has been acquired yet.
func (c Credential) IsZero() bool { return c.AccessToken == "" }

// Phase is the reconciliation loop mode.
type Phase string

const (
	PhaseStarting Phase = "STARTING"
	PhaseHealthy  Phase = "HEALTHY"
	PhaseFailed   Phase = "FAILED"
)

// StatusSnapshot is the externally visible loop state after a cycle.
type StatusSnapshot struct {
	Phase         Phase      `json:"phase"`
	InFailure     bool       `json:"in_failure"`
	FailureReason string     `json:"failure_reason,omitempty"`
	Label         string     `json:"label,omitempty"`
	Magnitude     int        `json:"magnitude"`
	Bucket        string     `json:"bucket,omitempty"`
	WindowStart   *time.Time `json:"window_start,omitempty"`
	LastAppliedTo *time.Time `json:"last_applied_to,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// EventType names a loop transition worth publishing.
type EventType string

const (
	EventApplied   EventType = "applied"
	EventFailure   EventType = "failure"
	EventRecovered EventType = "recovered"
)

// TransitionEvent describes one indicator-visible transition of the loop.
type TransitionEvent struct {
	ID          string     `json:"id"`
	Type        EventType  `json:"type"`
	Reason      string     `json:"reason,omitempty"`
	Kind        string     `json:"kind,omitempty"`
	Label       string     `json:"label,omitempty"`
	Magnitude   int        `json:"magnitude"`
	Bucket      string     `json:"bucket,omitempty"`
	WindowStart *time.Time `json:"window_start,omitempty"`
	WindowEnd   *time.Time `json:"window_end,omitempty"`
	At          time.Time  `json:"at"`
}
