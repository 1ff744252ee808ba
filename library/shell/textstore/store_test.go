package textstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softlib/loantracker/library/core"
	"github.com/softlib/loantracker/library/shell/textstore"
	"github.com/softlib/loantracker/testutil/fixtures"
	"github.com/softlib/loantracker/testutil/observability/testdoubles"
)

func Test_Store_SaveThenLoad_ReproducesLogicalState(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := textstore.New(t.TempDir())

	state := fixtures.State()
	state = fixtures.WithClosedLoan(state, fixtures.PatronJoao, fixtures.BookPython, fixtures.Date(2025, 12, 1), fixtures.Date(2025, 12, 11), "1.5")
	state = fixtures.WithOpenLoan(state, fixtures.PatronMaria, fixtures.BookOOP, fixtures.Date(2025, 12, 3))
	state.Loans[1].Renewals = 2
	state.LoanSeq = 7

	// act
	require.NoError(t, store.Save(ctx, state))
	loaded, warnings, err := store.Load(ctx)

	// assert
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, state.Users, loaded.Users)
	assert.Equal(t, state.Books, loaded.Books)
	assert.Equal(t, state.Statuses, loaded.Statuses)
	assert.Equal(t, uint(7), loaded.LoanSeq)

	require.Len(t, loaded.Loans, 2)
	for i, want := range state.Loans {
		got := loaded.Loans[i]
		assert.Equal(t, want.LoanID, got.LoanID)
		assert.Equal(t, want.PatronID, got.PatronID)
		assert.Equal(t, want.BookID, got.BookID)
		assert.True(t, want.LoanDate.Equal(got.LoanDate))
		assert.True(t, want.DueDate.Equal(got.DueDate))
		assert.Equal(t, want.IsOpen(), got.IsOpen())
		assert.Equal(t, want.Fine.StringFixed(2), got.Fine.StringFixed(2))
		assert.Equal(t, want.Renewals, got.Renewals)
	}

	returnDate, ok := loaded.Loans[0].ReturnDate()
	require.True(t, ok)
	assert.Equal(t, fixtures.Date(2025, 12, 11), returnDate)
}

func Test_Store_Save_WritesHeaderAndTwoDecimalFines(t *testing.T) {
	// arrange
	dir := t.TempDir()
	state := fixtures.WithClosedLoan(fixtures.State(), fixtures.PatronJoao, fixtures.BookPython, fixtures.Date(2025, 12, 1), fixtures.Date(2025, 12, 9), "0.5")

	// act
	require.NoError(t, textstore.New(dir).Save(context.Background(), state))

	// assert
	content, err := os.ReadFile(filepath.Join(dir, textstore.LoansFile))
	require.NoError(t, err)
	assert.Equal(t,
		"# loan_code;patron_code;book_code;loan_date;due_date;return_date;fine;renewals\n"+
			"001;C101;L001;2025-12-01;2025-12-08;2025-12-09;0.50;0\n",
		string(content))

	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func Test_Store_Save_RejectsSeparatorInField(t *testing.T) {
	state := fixtures.State()
	state.Books["L009"] = core.Book{ID: "L009", Title: "Semi;colon", Author: "X"}

	err := textstore.New(t.TempDir()).Save(context.Background(), state)

	assert.ErrorIs(t, err, textstore.ErrFieldNotRepresentable)
}

func Test_Store_Load_SkipsMalformedLines(t *testing.T) {
	// arrange
	dir := t.TempDir()
	givenFile(t, dir, textstore.UsersFile,
		"# users",
		"C101;João Silva;Cliente;jsilva;12345",
		"",
		"C102;Maria Souza;Chef;msouza;45678",
		"B001;Lucas Ferreira;Bibliotecário;lferreira;99999",
		"broken line",
	)
	givenFile(t, dir, textstore.StatusFile,
		"L001;A01;Bom;Sim",
		"L002;A02;Novo;S",
		"L003;B01;Desgastado;nao",
		"L004;B02;Bom;1",
	)
	givenFile(t, dir, textstore.LoansFile,
		"001;C101;L001;01/12/2025;08/12/2025;None;0.00;0",
		"002;C101;L002;2025-12-03;2025-12-10;2025-12-11;0.50",
		"003;C101;L004;2025-13-40;2025-12-11;None;0.00;0",
		"004;C101;L004;2025-12-04;2025-12-11;None;-1;0",
		"001;C102;L003;2025-12-04;2025-12-11;None;0.00;0",
	)
	givenFile(t, dir, textstore.LedgerSeqFile, "abc")
	logger := testdoubles.NewContextualLoggerSpy()

	// act
	state, warnings, err := textstore.New(dir, textstore.WithLogger(logger)).Load(context.Background())

	// assert
	require.NoError(t, err)

	assert.Len(t, state.Users, 2)
	assert.Equal(t, core.RoleLibrarian, state.Users["B001"].Role)

	assert.True(t, state.Statuses["L001"].Loanable)
	assert.True(t, state.Statuses["L002"].Loanable)
	assert.False(t, state.Statuses["L003"].Loanable)
	assert.True(t, state.Statuses["L004"].Loanable)

	require.Len(t, state.Loans, 2)
	assert.True(t, state.Loans[0].IsOpen())
	assert.Equal(t, fixtures.Date(2025, 12, 8), state.Loans[0].DueDate)
	assert.False(t, state.Loans[1].IsOpen())
	assert.Equal(t, 0, state.Loans[1].Renewals)
	assert.Zero(t, state.LoanSeq)

	lines := make(map[string][]int)
	for _, w := range warnings {
		lines[w.File] = append(lines[w.File], w.Line)
	}
	assert.Equal(t, map[string][]int{
		textstore.UsersFile:     {4, 6},
		textstore.LoansFile:     {3, 4, 5},
		textstore.LedgerSeqFile: {1},
	}, lines)
	assert.Len(t, logger.Records("warn"), len(warnings))
}

func Test_Store_Load_SkipsDuplicateLogin(t *testing.T) {
	// arrange
	dir := t.TempDir()
	givenFile(t, dir, textstore.UsersFile,
		"C101;João Silva;Cliente;jsilva;12345",
		"C102;Joana Silva;Cliente;jsilva;54321",
	)

	// act
	state, warnings, err := textstore.New(dir).Load(context.Background())

	// assert
	require.NoError(t, err)
	require.Len(t, state.Users, 1)
	assert.Equal(t, "João Silva", state.Users["C101"].Name)
	require.Len(t, warnings, 1)
	assert.Equal(t, textstore.UsersFile, warnings[0].File)
	assert.Equal(t, 2, warnings[0].Line)
	assert.Contains(t, warnings[0].Reason, "duplicate login")
}

func Test_Store_Load_MissingFilesAreEmpty(t *testing.T) {
	state, warnings, err := textstore.New(filepath.Join(t.TempDir(), "nothing-here")).Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Empty(t, state.Users)
	assert.Empty(t, state.Loans)
}

func givenFile(t *testing.T, dir, name string, lines ...string) {
	t.Helper()

	content := ""
	for _, line := range lines {
		content += line + "\n"
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}
