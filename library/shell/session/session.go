package session

import (
	"context"
	"errors"

	"github.com/softlib/loantracker/library/core"
	"github.com/softlib/loantracker/library/shell"
)

// ErrAuthFailure is returned for an unknown login or a wrong secret. It is user visible and not fatal.
var ErrAuthFailure = errors.New("invalid login or password")

// Session binds the authenticated user.
type Session struct {
	User core.User
}

func (s Session) UserID() core.UserIDString {
	return s.User.ID
}

func (s Session) IsPatron() bool {
	return s.User.IsPatron()
}

func (s Session) IsLibrarian() bool {
	return s.User.IsLibrarian()
}

// Authenticator checks credentials by plain equality.
type Authenticator struct {
	users *shell.UserRegistry
}

func NewAuthenticator(users *shell.UserRegistry) Authenticator {
	return Authenticator{users: users}
}

// Authenticate looks up the login and compares the secret, both exactly.
func (a Authenticator) Authenticate(ctx context.Context, login, secret string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}

	user, ok := a.users.ByLogin(login)
	if !ok || user.Secret != secret {
		return Session{}, ErrAuthFailure
	}

	return Session{User: user}, nil
}

type userKey struct{}

// WithUser returns a copy of ctx carrying the session user.
func WithUser(ctx context.Context, user core.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFrom returns the session user carried by ctx.
func UserFrom(ctx context.Context) (core.User, bool) {
	user, ok := ctx.Value(userKey{}).(core.User)
	return user, ok
}
