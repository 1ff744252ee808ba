package main

import (
	"context"
	"fmt"

	"github.com/softlib/loantracker/library/features/command/createloan"
	"github.com/softlib/loantracker/library/features/command/renewloan"
	"github.com/softlib/loantracker/library/features/command/returnloan"
	"github.com/softlib/loantracker/library/features/command/settlefines"
	"github.com/softlib/loantracker/library/features/query/allbooks"
	"github.com/softlib/loantracker/library/features/query/availablebooks"
	"github.com/softlib/loantracker/library/features/query/loanactivity"
	"github.com/softlib/loantracker/library/features/query/loanhistory"
	"github.com/softlib/loantracker/library/features/query/patronloans"
	"github.com/softlib/loantracker/library/shell"
	"github.com/softlib/loantracker/library/shell/config"
	"github.com/softlib/loantracker/library/shell/observable"
)

// handler is satisfied by the core handlers and by their observable wrappers.
type handler[In, Out any] interface {
	Handle(ctx context.Context, in In) (Out, error)
}

// Handlers contains all command and query handlers the console can run.
type Handlers struct {
	CreateLoan  handler[createloan.Command, createloan.Result]
	RenewLoan   handler[renewloan.Command, renewloan.Result]
	ReturnLoan  handler[returnloan.Command, returnloan.Result]
	SettleFines handler[settlefines.Command, settlefines.Result]

	AvailableBooks handler[availablebooks.Query, availablebooks.AvailableBooks]
	AllBooks       handler[allbooks.Query, allbooks.Catalog]
	PatronLoans    handler[patronloans.Query, patronloans.PatronLoans]
	LoanHistory    handler[loanhistory.Query, loanhistory.LoanHistory]
	LoanActivity   handler[loanactivity.Query, loanactivity.LoanActivity]
}

// NewHandlers wraps every core handler with metrics, tracing and logging.
func NewHandlers(
	library *shell.Library,
	persistence shell.Persistence,
	journal shell.Journal,
	ins config.Instrumentation,
) (Handlers, error) {

	opts := observableOptions(ins)

	createLoan, err := observable.NewCommandWrapper[createloan.Command, createloan.Result](createloan.NewCommandHandler(library, persistence), opts...)
	if err != nil {
		return Handlers{}, fmt.Errorf("failed to create CreateLoan handler: %w", err)
	}

	renewLoan, err := observable.NewCommandWrapper[renewloan.Command, renewloan.Result](renewloan.NewCommandHandler(library, persistence), opts...)
	if err != nil {
		return Handlers{}, fmt.Errorf("failed to create RenewLoan handler: %w", err)
	}

	returnLoan, err := observable.NewCommandWrapper[returnloan.Command, returnloan.Result](returnloan.NewCommandHandler(library, persistence), opts...)
	if err != nil {
		return Handlers{}, fmt.Errorf("failed to create ReturnLoan handler: %w", err)
	}

	settleFines, err := observable.NewCommandWrapper[settlefines.Command, settlefines.Result](settlefines.NewCommandHandler(library, persistence), opts...)
	if err != nil {
		return Handlers{}, fmt.Errorf("failed to create SettleFines handler: %w", err)
	}

	availableBooks, err := observable.NewQueryWrapper[availablebooks.Query, availablebooks.AvailableBooks](availablebooks.NewQueryHandler(library), opts...)
	if err != nil {
		return Handlers{}, fmt.Errorf("failed to create AvailableBooks handler: %w", err)
	}

	allBooks, err := observable.NewQueryWrapper[allbooks.Query, allbooks.Catalog](allbooks.NewQueryHandler(library), opts...)
	if err != nil {
		return Handlers{}, fmt.Errorf("failed to create AllBooks handler: %w", err)
	}

	patronLoans, err := observable.NewQueryWrapper[patronloans.Query, patronloans.PatronLoans](patronloans.NewQueryHandler(library), opts...)
	if err != nil {
		return Handlers{}, fmt.Errorf("failed to create PatronLoans handler: %w", err)
	}

	loanHistory, err := observable.NewQueryWrapper[loanhistory.Query, loanhistory.LoanHistory](loanhistory.NewQueryHandler(library), opts...)
	if err != nil {
		return Handlers{}, fmt.Errorf("failed to create LoanHistory handler: %w", err)
	}

	loanActivity, err := observable.NewQueryWrapper[loanactivity.Query, loanactivity.LoanActivity](loanactivity.NewQueryHandler(library, journal), opts...)
	if err != nil {
		return Handlers{}, fmt.Errorf("failed to create LoanActivity handler: %w", err)
	}

	return Handlers{
		CreateLoan:     createLoan,
		RenewLoan:      renewLoan,
		ReturnLoan:     returnLoan,
		SettleFines:    settleFines,
		AvailableBooks: availableBooks,
		AllBooks:       allBooks,
		PatronLoans:    patronLoans,
		LoanHistory:    loanHistory,
		LoanActivity:   loanActivity,
	}, nil
}

func observableOptions(ins config.Instrumentation) []observable.Option {
	var opts []observable.Option

	if ins.Metrics != nil {
		opts = append(opts, observable.WithMetrics(ins.Metrics))
	}

	if ins.Tracing != nil {
		opts = append(opts, observable.WithTracing(ins.Tracing))
	}

	if ins.ContextualLogger != nil {
		opts = append(opts, observable.WithContextualLogging(ins.ContextualLogger))
	}

	if ins.Logger != nil {
		opts = append(opts, observable.WithLogging(ins.Logger))
	}

	return opts
}
