package core

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPolicy   = errors.New("invalid loan policy")
	ErrUnknownFineMode = errors.New("unknown fine mode")
)

// FineMode selects how fines are collected. The two modes are never mixed in one deployment.
type FineMode string

const (
	// FineModeReturnOnly charges the fine when the book is returned.
	FineModeReturnOnly FineMode = "return-only"

	// FineModePayable blocks returning overdue loans; they are closed by settling their fines.
	FineModePayable FineMode = "payable"
)

// ParseFineMode maps a configuration value to a FineMode, the empty string means return-only.
func ParseFineMode(value string) (FineMode, error) {
	switch FineMode(value) {
	case "", FineModeReturnOnly:
		return FineModeReturnOnly, nil
	case FineModePayable:
		return FineModePayable, nil
	default:
		return "", errors.Join(ErrUnknownFineMode, errors.New(value))
	}
}

// Policy holds the lending rules.
type Policy struct {
	InitialLoanPeriodDays   int
	RenewalPeriodDays       int
	MaxRenewals             int
	MaxActiveLoansPerPatron int
	FinePerDay              decimal.Decimal
	FineMode                FineMode
}

// DefaultPolicy returns 7 days initial period, 7 days per renewal, two renewals,
// five open loans per patron and 0.50 per overdue day, charged on return.
func DefaultPolicy() Policy {
	return Policy{
		InitialLoanPeriodDays:   7,
		RenewalPeriodDays:       7,
		MaxRenewals:             2,
		MaxActiveLoansPerPatron: 5,
		FinePerDay:              decimal.RequireFromString("0.50"),
		FineMode:                FineModeReturnOnly,
	}
}

func (p Policy) Validate() error {
	switch {
	case p.InitialLoanPeriodDays <= 0:
		return errors.Join(ErrInvalidPolicy, errors.New("initial loan period must be positive"))
	case p.RenewalPeriodDays <= 0:
		return errors.Join(ErrInvalidPolicy, errors.New("renewal period must be positive"))
	case p.MaxRenewals < 0:
		return errors.Join(ErrInvalidPolicy, errors.New("max renewals must not be negative"))
	case p.MaxActiveLoansPerPatron <= 0:
		return errors.Join(ErrInvalidPolicy, errors.New("max active loans must be positive"))
	case p.FinePerDay.IsNegative():
		return errors.Join(ErrInvalidPolicy, errors.New("fine per day must not be negative"))
	case p.FineMode != FineModeReturnOnly && p.FineMode != FineModePayable:
		return errors.Join(ErrInvalidPolicy, ErrUnknownFineMode)
	}

	return nil
}
