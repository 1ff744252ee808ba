package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/softlib/loantracker/library/core"
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
	"github.com/softlib/loantracker/library/shell/session"
)

const maxLoginAttempts = 3

var errInputClosed = errors.New("input closed")

type menuEntry struct {
	label  string
	action func(ctx context.Context, s session.Session) error
}

// Console is the interactive front end. Invalid input is re-prompted here and never reaches the handlers.
type Console struct {
	in       *bufio.Scanner
	out      io.Writer
	now      func() time.Time
	auth     session.Authenticator
	handlers Handlers
	policy   core.Policy
}

func NewConsole(
	in io.Reader,
	out io.Writer,
	now func() time.Time,
	auth session.Authenticator,
	handlers Handlers,
	policy core.Policy,
) *Console {

	return &Console{
		in:       bufio.NewScanner(in),
		out:      out,
		now:      now,
		auth:     auth,
		handlers: handlers,
		policy:   policy,
	}
}

// Run serves one session, from login to exit. Closed input ends the session without error.
func (c *Console) Run(ctx context.Context) error {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(c.out, rule)
	fmt.Fprintf(c.out, "Loan system, %s (%s)\n", productName, companyName)
	fmt.Fprintln(c.out, "Login required to continue.")
	fmt.Fprintln(c.out, rule)

	s, ok, err := c.login(ctx)
	if errors.Is(err, errInputClosed) {
		fmt.Fprintln(c.out, "Exiting...")
		return nil
	}

	if err != nil || !ok {
		return err
	}

	fmt.Fprintf(c.out, "\nWelcome, %s (%s)\n", s.User.Name, s.User.Role)

	menu := c.librarianMenu()
	if s.IsPatron() {
		menu = c.patronMenu()
	}

	err = c.loop(session.WithUser(ctx, s.User), s, menu)
	if errors.Is(err, errInputClosed) {
		fmt.Fprintln(c.out, "Exiting...")
		return nil
	}

	return err
}

func (c *Console) login(ctx context.Context) (session.Session, bool, error) {
	for attempt := 1; attempt <= maxLoginAttempts; attempt++ {
		login, err := c.readLine("Login: ")
		if err != nil {
			return session.Session{}, false, err
		}

		secret, err := c.readLine("Password: ")
		if err != nil {
			return session.Session{}, false, err
		}

		s, err := c.auth.Authenticate(ctx, login, secret)
		switch {
		case err == nil:
			return s, true, nil
		case errors.Is(err, session.ErrAuthFailure):
			fmt.Fprintln(c.out, "Access denied!")
		default:
			return session.Session{}, false, err
		}
	}

	fmt.Fprintln(c.out, "Too many failed attempts.")

	return session.Session{}, false, nil
}

func (c *Console) patronMenu() []menuEntry {
	menu := []menuEntry{
		{label: "My loans and fines", action: c.showPatronLoans},
		{label: "Renew a loan", action: c.renewLoan},
	}

	if c.policy.FineMode == core.FineModePayable {
		menu = append(menu, menuEntry{label: "Pay fines", action: c.settleFines})
	}

	return append(menu,
		menuEntry{label: "List books", action: c.listBooks},
		menuEntry{label: "Borrow a book", action: c.borrowBook},
		menuEntry{label: "Return a book", action: c.returnBook},
		menuEntry{label: "About " + companyName, action: c.about},
	)
}

func (c *Console) librarianMenu() []menuEntry {
	return []menuEntry{
		{label: "Full loan history", action: c.showHistory},
		{label: "Loan activity", action: c.showActivity},
		{label: "List books", action: c.listBooks},
		{label: "About " + companyName, action: c.about},
	}
}

func (c *Console) loop(ctx context.Context, s session.Session, menu []menuEntry) error {
	exit := len(menu) + 1

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintln(c.out)
		for i, entry := range menu {
			fmt.Fprintf(c.out, "%d - %s\n", i+1, entry.label)
		}
		fmt.Fprintf(c.out, "%d - Exit\n", exit)

		choice, err := c.readChoice("Choose: ", 1, exit)
		if err != nil {
			return err
		}

		if choice == exit {
			fmt.Fprintln(c.out, "Exiting... Thank you!")
			return nil
		}

		if err := menu[choice-1].action(ctx, s); err != nil {
			return err
		}
	}
}

func (c *Console) showPatronLoans(ctx context.Context, s session.Session) error {
	loans, ok := c.patronLoans(ctx, s)
	if !ok {
		return nil
	}

	fmt.Fprintf(c.out, "\n--- Loans of %s ---\n", s.User.Name)

	if len(loans.Loans) == 0 {
		fmt.Fprintln(c.out, "No open loans.")
	}

	for i, loan := range loans.Loans {
		status := "On time"
		if loan.IsOverdue {
			status = "Overdue | Current fine: " + money(loan.CurrentFine)
		}

		fmt.Fprintf(c.out, "%d. [%s] %s\n", i+1, loan.Record.BookID, loan.Title)
		fmt.Fprintf(c.out, "   Loaned: %s | Due: %s\n", day(loan.Record.LoanDate), day(loan.Record.DueDate))
		fmt.Fprintf(c.out, "   Status: %s | Renewals: %d/%d\n", status, loan.Record.Renewals, loans.MaxRenewals)
	}

	fmt.Fprintln(c.out, strings.Repeat("-", 34))
	fmt.Fprintf(c.out, "Total fines: %s\n", money(loans.TotalFines))

	return nil
}

func (c *Console) renewLoan(ctx context.Context, s session.Session) error {
	loan, ok, err := c.pickOpenLoan(ctx, s, "RENEW A LOAN")
	if err != nil || !ok {
		return err
	}

	result, err := c.handlers.RenewLoan.Handle(ctx, renewloan.BuildCommand(s.UserID(), loan.Record.BookID, c.now()))
	if c.report(err, result.ExecutionMetadata()) {
		fmt.Fprintf(c.out, "Renewed. New due date: %s\n", day(result.Loan.DueDate))
	}

	return nil
}

func (c *Console) returnBook(ctx context.Context, s session.Session) error {
	loan, ok, err := c.pickOpenLoan(ctx, s, "RETURN A BOOK")
	if err != nil || !ok {
		return err
	}

	result, err := c.handlers.ReturnLoan.Handle(ctx, returnloan.BuildCommand(s.UserID(), loan.Record.BookID, c.now()))
	if c.report(err, result.ExecutionMetadata()) {
		fmt.Fprintf(c.out, "Returned '%s'. Fine charged: %s\n", loan.Title, money(result.FineCharged))
	}

	return nil
}

func (c *Console) settleFines(ctx context.Context, s session.Session) error {
	loans, ok := c.patronLoans(ctx, s)
	if !ok {
		return nil
	}

	var overdue []patronloans.LoanStatus
	for _, loan := range loans.Loans {
		if loan.IsOverdue {
			overdue = append(overdue, loan)
		}
	}

	fmt.Fprintln(c.out, "\n--- PAY FINES ---")

	if len(overdue) == 0 {
		fmt.Fprintln(c.out, "You have no outstanding fines!")
		return nil
	}

	fmt.Fprintf(c.out, "Outstanding fines: %s\n\n", money(loans.TotalFines))

	for i, loan := range overdue {
		fmt.Fprintf(c.out, "%d. Book: %s\n", i+1, loan.Title)
		fmt.Fprintf(c.out, "   Current fine: %s | Was due: %s\n", money(loan.CurrentFine), day(loan.Record.DueDate))
	}

	back := len(overdue) + 1
	fmt.Fprintln(c.out, "0 - Pay ALL fines")
	fmt.Fprintf(c.out, "%d - Back\n", back)

	choice, err := c.readChoice("Choose which fine to pay: ", 0, back)
	if err != nil || choice == back {
		return err
	}

	var loanIDs []core.LoanIDString
	if choice > 0 {
		loanIDs = []core.LoanIDString{overdue[choice-1].Record.LoanID}
	}

	result, err := c.handlers.SettleFines.Handle(ctx, settlefines.BuildCommand(s.UserID(), loanIDs, c.now()))
	if c.report(err, result.ExecutionMetadata()) {
		fmt.Fprintf(c.out, "Paid %s for %d loan(s).\n", money(result.Total), len(result.Settled))
	}

	return nil
}

func (c *Console) listBooks(ctx context.Context, _ session.Session) error {
	catalog, err := c.handlers.AllBooks.Handle(ctx, allbooks.BuildQuery())
	if err != nil {
		c.report(err, shell.HandlerResult{})
		return nil
	}

	fmt.Fprintln(c.out, "\n--- BOOKS ---")

	for _, entry := range catalog.Books {
		situation := "Available"
		if entry.Borrowed {
			situation = "Borrowed"
		}

		fmt.Fprintf(c.out, "[%s] %s by %s\n", entry.Book.ID, entry.Book.Title, entry.Book.Author)
		fmt.Fprintf(c.out, "   Condition: %s | Location: %s | Loanable: %t\n",
			entry.Status.Condition, entry.Status.Location, entry.Status.Loanable)
		fmt.Fprintf(c.out, "   Situation: %s\n", situation)
	}

	fmt.Fprintln(c.out, strings.Repeat("-", 34))

	return nil
}

func (c *Console) borrowBook(ctx context.Context, s session.Session) error {
	available, err := c.handlers.AvailableBooks.Handle(ctx, availablebooks.BuildQuery())
	if err != nil {
		c.report(err, shell.HandlerResult{})
		return nil
	}

	fmt.Fprintln(c.out, "\n--- BORROW A BOOK ---")

	if available.Count == 0 {
		fmt.Fprintln(c.out, "No books available for loan right now.")
		return nil
	}

	for i, info := range available.Books {
		fmt.Fprintf(c.out, "%d. [%s] %s by %s\n", i+1, info.Book.ID, info.Book.Title, info.Book.Author)
		fmt.Fprintf(c.out, "   Location: %s | Condition: %s\n", info.Status.Location, info.Status.Condition)
	}

	fmt.Fprintln(c.out, "0 - Back")

	choice, err := c.readChoice("Select the book number: ", 0, available.Count)
	if err != nil || choice == 0 {
		return err
	}

	book := available.Books[choice-1].Book

	result, err := c.handlers.CreateLoan.Handle(ctx, createloan.BuildCommand(s.UserID(), book.ID, c.now()))
	if c.report(err, result.ExecutionMetadata()) {
		fmt.Fprintln(c.out, "Loan created!")
		fmt.Fprintf(c.out, "Book: %s\n", result.Title)
		fmt.Fprintf(c.out, "Loaned: %s | Due: %s\n", day(result.Loan.LoanDate), day(result.Loan.DueDate))
	}

	return nil
}

func (c *Console) showHistory(ctx context.Context, s session.Session) error {
	history, err := c.handlers.LoanHistory.Handle(ctx, loanhistory.BuildQuery(s.UserID()))
	if err != nil {
		c.report(err, shell.HandlerResult{})
		return nil
	}

	fmt.Fprintln(c.out, "\n--- FULL HISTORY ---")

	for _, entry := range history.Entries {
		status, returned := "Open", "-"
		if date, ok := entry.Record.ReturnDate(); ok {
			status, returned = "Returned", day(date)
		}

		fmt.Fprintf(c.out, "[%s] %s\n", entry.Record.LoanID, status)
		fmt.Fprintf(c.out, "  Patron: %s | Book: %s\n", entry.Record.PatronID, entry.Title)
		fmt.Fprintf(c.out, "  Loaned: %s | Due: %s\n", day(entry.Record.LoanDate), day(entry.Record.DueDate))
		fmt.Fprintf(c.out, "  Returned: %s | Fine: %s\n", returned, money(entry.Record.Fine))
	}

	fmt.Fprintln(c.out, strings.Repeat("-", 34))

	return nil
}

func (c *Console) showActivity(ctx context.Context, s session.Session) error {
	bookID, err := c.readLine("Book code (blank for any): ")
	if err != nil {
		return err
	}

	patronID, err := c.readLine("Patron code (blank for any): ")
	if err != nil {
		return err
	}

	activity, err := c.handlers.LoanActivity.Handle(ctx, loanactivity.BuildQuery(s.UserID(), bookID, patronID))
	if err != nil {
		c.report(err, shell.HandlerResult{})
		return nil
	}

	fmt.Fprintf(c.out, "\n--- LOAN ACTIVITY (%d) ---\n", activity.Count)

	for _, entry := range activity.Entries {
		marker := ""
		if entry.Failed {
			marker = " [rejected]"
		}

		fmt.Fprintf(c.out, "#%d %s %s by %s%s\n", entry.SequenceNumber,
			entry.OccurredAt.Format(time.DateTime), entry.EventType, entry.ActorID, marker)
		fmt.Fprintf(c.out, "   %s\n", entry.Summary)
	}

	return nil
}

func (c *Console) about(_ context.Context, _ session.Session) error {
	fmt.Fprintln(c.out)
	printAbout(c.out)

	return nil
}

func (c *Console) patronLoans(ctx context.Context, s session.Session) (patronloans.PatronLoans, bool) {
	loans, err := c.handlers.PatronLoans.Handle(ctx, patronloans.BuildQuery(s.UserID(), c.now()))
	if err != nil {
		c.report(err, shell.HandlerResult{})
		return patronloans.PatronLoans{}, false
	}

	return loans, true
}

// pickOpenLoan lists the patron's open loans and reads a choice; ok is false when there is
// nothing to pick or the patron went back.
func (c *Console) pickOpenLoan(ctx context.Context, s session.Session, title string) (patronloans.LoanStatus, bool, error) {
	loans, ok := c.patronLoans(ctx, s)
	if !ok {
		return patronloans.LoanStatus{}, false, nil
	}

	fmt.Fprintf(c.out, "\n--- %s ---\n", title)

	if len(loans.Loans) == 0 {
		fmt.Fprintln(c.out, "No open loans.")
		return patronloans.LoanStatus{}, false, nil
	}

	for i, loan := range loans.Loans {
		fmt.Fprintf(c.out, "%d. %s (due %s)\n", i+1, loan.Title, day(loan.Record.DueDate))
	}

	fmt.Fprintln(c.out, "0 - Back")

	choice, err := c.readChoice("Book number: ", 0, len(loans.Loans))
	if err != nil || choice == 0 {
		return patronloans.LoanStatus{}, false, err
	}

	return loans.Loans[choice-1], true, nil
}

// report prints a rejection verbatim, any other error, and a persistence warning. It reports success.
func (c *Console) report(err error, metadata shell.HandlerResult) bool {
	switch {
	case err == nil:
	case errors.Is(err, core.ErrRejected):
		fmt.Fprintf(c.out, "Not possible: %s\n", err.Error())
	default:
		fmt.Fprintf(c.out, "Error: %v\n", err)
	}

	if metadata.HasWarning() {
		fmt.Fprintf(c.out, "Warning: the change is active but was not fully saved (%v)\n", metadata.Warning)
	}

	return err == nil
}

func (c *Console) readLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)

	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}

		return "", errInputClosed
	}

	return strings.TrimSpace(c.in.Text()), nil
}

func (c *Console) readChoice(prompt string, lowest, highest int) (int, error) {
	for {
		line, err := c.readLine(prompt)
		if err != nil {
			return 0, err
		}

		choice, err := strconv.Atoi(line)
		if err == nil && choice >= lowest && choice <= highest {
			return choice, nil
		}

		fmt.Fprintln(c.out, "Invalid option.")
	}
}

func day(t time.Time) string {
	return t.Format(time.DateOnly)
}

func money(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
