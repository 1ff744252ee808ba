package eventstore_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/softlib/loantracker/eventstore"
)

func Test_FilterBuilder_ValidCombinations(t *testing.T) {
	tests := []struct {
		name     string
		build    func() eventstore.Filter
		validate func(t *testing.T, filter eventstore.Filter)
	}{
		{
			name: "matching_any_event_creates_empty_filter",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().MatchingAnyEvent()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				assert.Empty(t, f.Items())
				assert.True(t, f.OccurredFrom().IsZero())
				assert.True(t, f.OccurredUntil().IsZero())
			},
		},
		{
			name: "event_types_are_sorted_and_deduplicated",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().
					Matching().
					AnyEventTypeOf("LoanReturned", "LoanOpened", "", "LoanReturned").
					Finalize()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				assert.Len(t, f.Items(), 1)
				assert.Equal(t, []string{"LoanOpened", "LoanReturned"}, f.Items()[0].EventTypes())
				assert.Empty(t, f.Items()[0].Predicates())
			},
		},
		{
			name: "partial_predicates_are_dropped",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().
					Matching().
					AnyPredicateOf(eventstore.P("BookID", "L001"), eventstore.P("", "x"), eventstore.P("PatronID", "")).
					Finalize()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				assert.Equal(t, []eventstore.FilterPredicate{eventstore.P("BookID", "L001")}, f.Items()[0].Predicates())
				assert.False(t, f.Items()[0].AllPredicatesMustMatch())
			},
		},
		{
			name: "all_predicates_with_event_types",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().
					Matching().
					AllPredicatesOf(eventstore.P("PatronID", "C101"), eventstore.P("BookID", "L001")).
					AndAnyEventTypeOf("LoanOpened").
					Finalize()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				item := f.Items()[0]
				assert.True(t, item.AllPredicatesMustMatch())
				assert.Equal(t, []string{"LoanOpened"}, item.EventTypes())
				assert.Equal(t, "BookID", item.Predicates()[0].Key())
				assert.Equal(t, "C101", item.Predicates()[1].Val())
			},
		},
		{
			name: "or_matching_creates_several_items_in_a_window",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().
					Matching().
					AnyEventTypeOf("LoanOpened").
					AndAnyPredicateOf(eventstore.P("BookID", "L001")).
					OrMatching().
					AnyPredicateOf(eventstore.P("PatronID", "C102")).
					OccurredBetween(
						time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC),
						time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC),
					).
					Finalize()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				assert.Len(t, f.Items(), 2)
				assert.Equal(t, "PatronID", f.Items()[1].Predicates()[0].Key())
				assert.Equal(t, time.December, f.OccurredFrom().Month())
				assert.Equal(t, 31, f.OccurredUntil().Day())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, tt.build())
		})
	}
}

func Test_FilterBuilder_IsImmutableAcrossBranches(t *testing.T) {
	// arrange
	base := eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf("LoanOpened").
		OrMatching()

	// act
	first := base.AnyEventTypeOf("LoanRenewed").Finalize()
	second := base.AnyEventTypeOf("LoanReturned").Finalize()

	// assert
	assert.Equal(t, []string{"LoanRenewed"}, first.Items()[1].EventTypes())
	assert.Equal(t, []string{"LoanReturned"}, second.Items()[1].EventTypes())
}
