package core

// DecisionResult represents the outcome of a Decide function.
//
// Construct it only with SuccessDecision or ErrorDecision.
type DecisionResult struct {
	Outcome string       // "success" or "error"
	Events  DomainEvents // success events to apply, or the single failure event
	Err     error        // a Rejection for error outcomes
}

const (
	successOutcome = "success"
	errorOutcome   = "error"
)

// SuccessDecision creates a DecisionResult whose events are applied and appended together.
func SuccessDecision(event DomainEvent, more ...DomainEvent) DecisionResult {
	return DecisionResult{
		Outcome: successOutcome,
		Events:  append(DomainEvents{event}, more...),
	}
}

// ErrorDecision creates a DecisionResult for a business rule violation with a failure event to append.
func ErrorDecision(event DomainEvent, rejection Rejection) DecisionResult {
	return DecisionResult{
		Outcome: errorOutcome,
		Events:  DomainEvents{event},
		Err:     rejection,
	}
}

// IsSuccess returns true if the events change the library state.
func (r DecisionResult) IsSuccess() bool {
	return r.Outcome == successOutcome
}

// HasError returns the Rejection if there is one, otherwise nil.
func (r DecisionResult) HasError() error {
	if r.Outcome == errorOutcome {
		return r.Err
	}

	return nil
}
