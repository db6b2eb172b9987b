package domain

import "time"

// LoginOutcome classifies a login attempt for the audit trail and metrics.
type LoginOutcome string

const (
	OutcomeSuccess         LoginOutcome = "success"
	OutcomeBadCredentials  LoginOutcome = "bad_credentials"
	OutcomeTooManyAttempts LoginOutcome = "too_many_attempts"
	OutcomeError           LoginOutcome = "error"
)

// LoginEvent is an append-only audit record of one login attempt.
type LoginEvent struct {
	LoginID    string
	Origin     string
	Outcome    LoginOutcome
	Role       Role // set on success only
	OccurredAt time.Time
}
