package loanactivity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/softlib/loantracker/library/features/query/loanactivity"
)

func Test_BuildEventFilter(t *testing.T) {
	tests := []struct {
		name          string
		bookID        string
		patronID      string
		expectedItems int
		expectAll     bool
	}{
		{name: "whole journal", expectedItems: 0},
		{name: "book only", bookID: "L001", expectedItems: 1},
		{name: "patron only", patronID: "C101", expectedItems: 1},
		{name: "book and patron", bookID: "L001", patronID: "C101", expectedItems: 1, expectAll: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := loanactivity.BuildEventFilter(tt.bookID, tt.patronID)

			assert.Len(t, filter.Items(), tt.expectedItems)
			if tt.expectedItems > 0 {
				assert.Equal(t, tt.expectAll, filter.Items()[0].AllPredicatesMustMatch())
				assert.Empty(t, filter.Items()[0].EventTypes())
			}
		})
	}
}
