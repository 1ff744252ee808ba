package loanactivity

import (
	"fmt"
	"slices"
	"strings"

	"github.com/softlib/loantracker/eventstore"
	"github.com/softlib/loantracker/library/core"
	"github.com/softlib/loantracker/library/shell"
)

const dateLayout = "2006-01-02"

// ProjectLoanActivity turns journal envelopes into display entries in sequence order.
func ProjectLoanActivity(envelopes shell.EventEnvelopes, query Query) LoanActivity {
	entries := make([]ActivityEntry, 0, len(envelopes))

	for _, envelope := range envelopes {
		event := envelope.DomainEvent

		entries = append(entries, ActivityEntry{
			SequenceNumber: envelope.SequenceNumber,
			EventType:      event.EventType(),
			OccurredAt:     event.HasOccurredAt(),
			ActorID:        envelope.EventMetadata.ActorID,
			Failed:         event.IsErrorEvent(),
			Summary:        summarize(event),
		})
	}

	slices.SortStableFunc(entries, func(a, b ActivityEntry) int {
		switch {
		case a.SequenceNumber < b.SequenceNumber:
			return -1
		case a.SequenceNumber > b.SequenceNumber:
			return 1
		default:
			return 0
		}
	})

	return LoanActivity{
		BookID:   query.BookID,
		PatronID: query.PatronID,
		Entries:  entries,
		Count:    len(entries),
	}
}

func summarize(event core.DomainEvent) string {
	switch e := event.(type) {
	case core.LoanOpened:
		return fmt.Sprintf("loan %s: %s borrowed %s, due %s", e.LoanID, e.PatronID, e.BookID, e.DueDate.Format(dateLayout))
	case core.LoanRenewed:
		return fmt.Sprintf("loan %s: due %s -> %s (renewal %d)",
			e.LoanID, e.PreviousDueDate.Format(dateLayout), e.DueDate.Format(dateLayout), e.Renewals)
	case core.LoanReturned:
		return fmt.Sprintf("loan %s: %s returned %s on %s, fine %s",
			e.LoanID, e.PatronID, e.BookID, e.ReturnDate.Format(dateLayout), e.Fine.StringFixed(2))
	case core.FinesSettled:
		return fmt.Sprintf("loan %s: %s settled %s on %s for %s",
			e.LoanID, e.PatronID, e.BookID, e.ReturnDate.Format(dateLayout), e.Fine.StringFixed(2))
	case core.OpeningLoanFailed:
		return fmt.Sprintf("%s could not borrow %s: %s (%s)", e.PatronID, e.BookID, e.FailureInfo, e.Reason)
	case core.RenewingLoanFailed:
		return fmt.Sprintf("%s could not renew %s: %s (%s)", e.PatronID, e.BookID, e.FailureInfo, e.Reason)
	case core.ReturningLoanFailed:
		return fmt.Sprintf("%s could not return %s: %s (%s)", e.PatronID, e.BookID, e.FailureInfo, e.Reason)
	case core.SettlingFinesFailed:
		loans := "all overdue loans"
		if len(e.LoanIDs) > 0 {
			loans = "loans " + strings.Join(e.LoanIDs, ", ")
		}

		return fmt.Sprintf("%s could not settle %s: %s (%s)", e.PatronID, loans, e.FailureInfo, e.Reason)
	default:
		return event.EventType()
	}
}

// BuildEventFilter selects every loan event about the book and/or the patron.
// Both given means both must match.
func BuildEventFilter(bookID core.BookIDString, patronID core.UserIDString) eventstore.Filter {
	var predicates []eventstore.FilterPredicate
	if bookID != "" {
		predicates = append(predicates, eventstore.P("BookID", bookID))
	}
	if patronID != "" {
		predicates = append(predicates, eventstore.P("PatronID", patronID))
	}

	switch len(predicates) {
	case 0:
		return eventstore.BuildEventFilter().MatchingAnyEvent()
	case 1:
		return eventstore.BuildEventFilter().
			Matching().
			AnyPredicateOf(predicates[0]).
			Finalize()
	default:
		return eventstore.BuildEventFilter().
			Matching().
			AllPredicatesOf(predicates[0], predicates[1:]...).
			Finalize()
	}
}
