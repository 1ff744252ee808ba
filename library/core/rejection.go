package core

import (
	"errors"
)

// ErrRejected matches every Rejection with errors.Is.
var ErrRejected = errors.New("rejected")

// RejectionReason is the machine readable code of a rejected command or query.
type RejectionReason string

const (
	ReasonNotPatron           RejectionReason = "NotPatron"
	ReasonNotLibrarian        RejectionReason = "NotLibrarian"
	ReasonLoanLimitReached    RejectionReason = "LoanLimitReached"
	ReasonBookUnavailable     RejectionReason = "BookUnavailable"
	ReasonNotFound            RejectionReason = "NotFound"
	ReasonAlreadyOverdue      RejectionReason = "AlreadyOverdue"
	ReasonRenewalLimitReached RejectionReason = "RenewalLimitReached"
	ReasonFinesOutstanding    RejectionReason = "FinesOutstanding"
	ReasonSettlementDisabled  RejectionReason = "SettlementDisabled"
)

// Rejection is a business rule violation. It is user visible and never fatal.
type Rejection struct {
	Reason  RejectionReason
	Message string
}

// Reject builds a Rejection.
func Reject(reason RejectionReason, message string) Rejection {
	return Rejection{Reason: reason, Message: message}
}

func (r Rejection) Error() string {
	return r.Message
}

func (r Rejection) Is(target error) bool {
	return target == ErrRejected
}

// ReasonOf extracts the reason of a Rejection anywhere in err's chain.
func ReasonOf(err error) (RejectionReason, bool) {
	var rejection Rejection
	if errors.As(err, &rejection) {
		return rejection.Reason, true
	}

	return "", false
}
