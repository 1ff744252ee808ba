package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softlib/loantracker/library/shell"
	"github.com/softlib/loantracker/library/shell/session"
	"github.com/softlib/loantracker/testutil/fixtures"
)

func Test_Authenticate_Success(t *testing.T) {
	// arrange
	authenticator := givenAuthenticator(t)

	// act
	s, err := authenticator.Authenticate(context.Background(), "lferreira", "99999")

	// assert
	require.NoError(t, err)
	assert.Equal(t, fixtures.Librarian, s.UserID())
	assert.True(t, s.IsLibrarian())
	assert.False(t, s.IsPatron())
}

func Test_Authenticate_Failure(t *testing.T) {
	tests := []struct {
		name   string
		login  string
		secret string
	}{
		{name: "wrong secret", login: "jsilva", secret: "54321"},
		{name: "unknown login", login: "nobody", secret: "12345"},
		{name: "login differs in case", login: "JSILVA", secret: "12345"},
		{name: "empty credentials", login: "", secret: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := givenAuthenticator(t).Authenticate(context.Background(), tt.login, tt.secret)

			assert.ErrorIs(t, err, session.ErrAuthFailure)
		})
	}
}

func Test_WithUser_UserFrom(t *testing.T) {
	// arrange
	user := fixtures.State().Users[fixtures.PatronMaria]

	// act
	ctx := session.WithUser(context.Background(), user)
	got, ok := session.UserFrom(ctx)

	// assert
	require.True(t, ok)
	assert.Equal(t, user, got)

	_, ok = session.UserFrom(context.Background())
	assert.False(t, ok)
}

func givenAuthenticator(t *testing.T) session.Authenticator {
	t.Helper()

	return session.NewAuthenticator(shell.NewUserRegistry(fixtures.State().Users))
}
