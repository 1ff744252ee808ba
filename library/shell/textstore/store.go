package textstore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/softlib/loantracker/library/core"
	"github.com/softlib/loantracker/library/shell"
)

var (
	ErrReadingRecordsFailed  = errors.New("reading records failed")
	ErrWritingRecordsFailed  = errors.New("writing records failed")
	ErrFieldNotRepresentable = errors.New("field contains a separator or line break")
)

// LineWarning reports a skipped line.
type LineWarning struct {
	File   string
	Line   int
	Reason string
}

func (w LineWarning) String() string {
	return fmt.Sprintf("%s:%d: %s", w.File, w.Line, w.Reason)
}

// Store reads and writes the record files of one data directory.
type Store struct {
	dir    string
	logger shell.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger logs every skipped line at warn level.
func WithLogger(logger shell.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func New(dir string, opts ...Option) Store {
	s := Store{dir: dir}

	for _, opt := range opts {
		opt(&s)
	}

	return s
}

func (s Store) Dir() string {
	return s.dir
}

// Load reads all record files. Missing files load as empty; only I/O errors abort.
// The Policy of the returned state is left zero.
func (s Store) Load(ctx context.Context) (core.LibraryState, []LineWarning, error) {
	state := core.LibraryState{
		Users:    make(map[core.UserIDString]core.User),
		Books:    make(map[core.BookIDString]core.Book),
		Statuses: make(map[core.BookIDString]core.BookStatus),
	}

	loaders := []struct {
		file  string
		parse func(fields []string) error
	}{
		{UsersFile, func(f []string) error { return parseUser(&state, f) }},
		{BooksFile, func(f []string) error { return parseBook(&state, f) }},
		{StatusFile, func(f []string) error { return parseStatus(&state, f) }},
		{LoansFile, func(f []string) error { return parseLoan(&state, f) }},
		{LedgerSeqFile, func(f []string) error { return parseSeq(&state, f) }},
	}

	var warnings []LineWarning

	for _, loader := range loaders {
		if err := ctx.Err(); err != nil {
			return core.LibraryState{}, nil, err
		}

		fileWarnings, err := s.readLines(loader.file, loader.parse)
		if err != nil {
			return core.LibraryState{}, nil, errors.Join(ErrReadingRecordsFailed, err)
		}

		warnings = append(warnings, fileWarnings...)
	}

	for _, w := range warnings {
		s.warn(w)
	}

	return state, warnings, nil
}

func (s Store) readLines(file string, parse func(fields []string) error) ([]LineWarning, error) {
	f, err := os.Open(filepath.Join(s.dir, file))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var warnings []LineWarning

	scanner := bufio.NewScanner(f)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, string(separator))
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		if err := parse(fields); err != nil {
			warnings = append(warnings, LineWarning{File: file, Line: lineNo, Reason: err.Error()})
		}
	}

	return warnings, scanner.Err()
}

func (s Store) warn(w LineWarning) {
	if s.logger == nil {
		return
	}

	s.logger.Warn(shell.LogMsgRecordLineSkipped,
		shell.LogAttrFile, w.File,
		shell.LogAttrLine, w.Line,
		shell.LogAttrReason, w.Reason,
	)
}

func expectFields(fields []string, want ...int) error {
	if slices.Contains(want, len(fields)) {
		return nil
	}

	return fmt.Errorf("expected %d fields, got %d", want[0], len(fields))
}

func parseUser(state *core.LibraryState, fields []string) error {
	if err := expectFields(fields, 5); err != nil {
		return err
	}

	if fields[0] == "" {
		return errors.New("empty user code")
	}

	if _, dup := state.Users[fields[0]]; dup {
		return fmt.Errorf("duplicate user code %s", fields[0])
	}

	for _, user := range state.Users {
		if user.Login == fields[3] {
			return fmt.Errorf("duplicate login %s", fields[3])
		}
	}

	role, err := core.ParseRole(fields[2])
	if err != nil {
		return err
	}

	state.Users[fields[0]] = core.User{
		ID:     fields[0],
		Name:   fields[1],
		Role:   role,
		Login:  fields[3],
		Secret: fields[4],
	}

	return nil
}

func parseBook(state *core.LibraryState, fields []string) error {
	if err := expectFields(fields, 3); err != nil {
		return err
	}

	if fields[0] == "" {
		return errors.New("empty book code")
	}

	if _, dup := state.Books[fields[0]]; dup {
		return fmt.Errorf("duplicate book code %s", fields[0])
	}

	state.Books[fields[0]] = core.Book{ID: fields[0], Title: fields[1], Author: fields[2]}

	return nil
}

func parseStatus(state *core.LibraryState, fields []string) error {
	if err := expectFields(fields, 4); err != nil {
		return err
	}

	if fields[0] == "" {
		return errors.New("empty book code")
	}

	state.Statuses[fields[0]] = core.BookStatus{
		BookID:    fields[0],
		Location:  fields[1],
		Condition: fields[2],
		Loanable:  parseLoanable(fields[3]),
	}

	return nil
}

// parseLoan accepts 8 fields, or 7 from files written before renewals were counted.
func parseLoan(state *core.LibraryState, fields []string) error {
	if err := expectFields(fields, 8, 7); err != nil {
		return err
	}

	if fields[0] == "" {
		return errors.New("empty loan code")
	}

	if slices.ContainsFunc(state.Loans, func(r core.LoanRecord) bool { return r.LoanID == fields[0] }) {
		return fmt.Errorf("duplicate loan code %s", fields[0])
	}

	loanDate, err := parseDate(fields[3])
	if err != nil {
		return err
	}

	dueDate, err := parseDate(fields[4])
	if err != nil {
		return err
	}

	var returnStatus core.ReturnStatus = core.StillOpen{}
	if !strings.EqualFold(fields[5], openReturnDate) && fields[5] != "" {
		returnDate, err := parseDate(fields[5])
		if err != nil {
			return err
		}

		returnStatus = core.ReturnedOn{Date: returnDate}
	}

	fine, err := decimal.NewFromString(fields[6])
	if err != nil || fine.IsNegative() {
		return fmt.Errorf("invalid fine %q", fields[6])
	}

	renewals := 0
	if len(fields) == 8 {
		renewals, err = strconv.Atoi(fields[7])
		if err != nil || renewals < 0 {
			return fmt.Errorf("invalid renewal count %q", fields[7])
		}
	}

	state.Loans = append(state.Loans, core.LoanRecord{
		LoanID:   fields[0],
		PatronID: fields[1],
		BookID:   fields[2],
		LoanDate: loanDate,
		DueDate:  dueDate,
		Return:   returnStatus,
		Fine:     fine,
		Renewals: renewals,
	})

	return nil
}

func parseSeq(state *core.LibraryState, fields []string) error {
	if err := expectFields(fields, 1); err != nil {
		return err
	}

	seq, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid loan counter %q", fields[0])
	}

	state.LoanSeq = uint(seq)

	return nil
}

// Save writes every record file. It satisfies shell.SnapshotSaver.
func (s Store) Save(ctx context.Context, state core.LibraryState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Join(ErrWritingRecordsFailed, err)
	}

	files := map[string][][]string{
		UsersFile:     userRows(state),
		BooksFile:     bookRows(state),
		StatusFile:    statusRows(state),
		LoansFile:     loanRows(state),
		LedgerSeqFile: {{strconv.FormatUint(uint64(state.LoanSeq), 10)}},
	}

	for _, file := range slices.Sorted(maps.Keys(files)) {
		if err := s.writeAtomic(file, files[file]); err != nil {
			return errors.Join(ErrWritingRecordsFailed, err)
		}
	}

	return nil
}

func userRows(state core.LibraryState) [][]string {
	rows := make([][]string, 0, len(state.Users))
	for _, id := range slices.Sorted(maps.Keys(state.Users)) {
		u := state.Users[id]
		rows = append(rows, []string{u.ID, u.Name, string(u.Role), u.Login, u.Secret})
	}

	return rows
}

func bookRows(state core.LibraryState) [][]string {
	rows := make([][]string, 0, len(state.Books))
	for _, id := range slices.Sorted(maps.Keys(state.Books)) {
		b := state.Books[id]
		rows = append(rows, []string{b.ID, b.Title, b.Author})
	}

	return rows
}

func statusRows(state core.LibraryState) [][]string {
	rows := make([][]string, 0, len(state.Statuses))
	for _, id := range slices.Sorted(maps.Keys(state.Statuses)) {
		st := state.Statuses[id]
		rows = append(rows, []string{st.BookID, st.Location, st.Condition, formatLoanable(st.Loanable)})
	}

	return rows
}

func loanRows(state core.LibraryState) [][]string {
	rows := make([][]string, 0, len(state.Loans))
	for _, r := range state.Loans {
		returnDate := openReturnDate
		if date, ok := r.ReturnDate(); ok {
			returnDate = formatDate(date)
		}

		rows = append(rows, []string{
			r.LoanID,
			r.PatronID,
			r.BookID,
			formatDate(r.LoanDate),
			formatDate(r.DueDate),
			returnDate,
			r.Fine.StringFixed(2),
			strconv.Itoa(r.Renewals),
		})
	}

	return rows
}

func (s Store) writeAtomic(file string, rows [][]string) error {
	var b strings.Builder

	b.WriteString("# " + headers[file] + "\n")

	for _, row := range rows {
		for _, field := range row {
			if strings.ContainsAny(field, string(separator)+"\r\n") {
				return fmt.Errorf("%w: %s %q", ErrFieldNotRepresentable, file, field)
			}
		}

		b.WriteString(strings.Join(row, string(separator)) + "\n")
	}

	tmp, err := os.CreateTemp(s.dir, "."+file+".*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.WriteString(b.String()); err != nil {
		_ = tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), filepath.Join(s.dir, file))
}
