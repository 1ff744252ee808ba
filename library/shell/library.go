package shell

import (
	"errors"
	"sync"

	"github.com/softlib/loantracker/library/core"
)

// Library aggregates the repositories behind a single mutex.
// Construct it once and pass it to every handler.
type Library struct {
	mu      sync.Mutex
	policy  core.Policy
	users   *UserRegistry
	catalog *Catalog
	ledger  *Ledger

	revision uint64
}

// NewLibrary builds the repositories from loaded records. The policy of the passed state is ignored.
func NewLibrary(policy core.Policy, records core.LibraryState) (*Library, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	return &Library{
		policy:  policy,
		users:   NewUserRegistry(records.Users),
		catalog: NewCatalog(records.Books, records.Statuses),
		ledger:  NewLedger(records.Loans, records.LoanSeq),
	}, nil
}

func (l *Library) Policy() core.Policy {
	return l.policy
}

func (l *Library) Users() *UserRegistry {
	return l.users
}

// Snapshot returns a deep copy of the current state.
func (l *Library) Snapshot() core.LibraryState {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.snapshot()
}

// Decide runs decide against a snapshot and applies the success events, all under the lock.
// The events are applied all or nothing. It returns the decision and the state after applying it.
func (l *Library) Decide(decide func(core.LibraryState) core.DecisionResult) (core.DecisionResult, core.LibraryState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	decision := decide(l.snapshot())

	if decision.IsSuccess() {
		catalog, ledger := l.catalog.clone(), l.ledger.clone()

		for _, event := range decision.Events {
			if err := apply(catalog, ledger, event); err != nil {
				return decision, l.snapshot(), errors.Join(ErrApplyingEventFailed, err)
			}
		}

		l.catalog, l.ledger = catalog, ledger
		l.revision++
	}

	return decision, l.snapshot(), nil
}

func apply(catalog *Catalog, ledger *Ledger, event core.DomainEvent) error {
	switch e := event.(type) {
	case core.LoanOpened:
		err := ledger.open(core.LoanRecord{
			LoanID:   e.LoanID,
			PatronID: e.PatronID,
			BookID:   e.BookID,
			LoanDate: e.LoanDate,
			DueDate:  e.DueDate,
			Return:   core.StillOpen{},
		})
		if err != nil {
			return err
		}

		return catalog.setLoanable(e.BookID, false)

	case core.LoanRenewed:
		return ledger.renew(e.LoanID, e.DueDate, e.Renewals)

	case core.LoanReturned:
		bookID, err := ledger.close(e.LoanID, e.ReturnDate, e.Fine)
		if err != nil {
			return err
		}

		return catalog.setLoanable(bookID, true)

	case core.FinesSettled:
		bookID, err := ledger.close(e.LoanID, e.ReturnDate, e.Fine)
		if err != nil {
			return err
		}

		return catalog.setLoanable(bookID, true)

	default:
		return ErrUnexpectedSuccessType
	}
}

func (l *Library) snapshot() core.LibraryState {
	books, statuses := l.catalog.snapshot()
	loans, seq := l.ledger.snapshot()

	return core.LibraryState{
		Policy:   l.policy,
		Users:    l.users.snapshot(),
		Books:    books,
		Statuses: statuses,
		Loans:    loans,
		LoanSeq:  seq,
		Revision: l.revision,
	}
}
