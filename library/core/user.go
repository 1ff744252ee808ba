package core

import (
	"errors"
	"strings"
)

// ErrUnknownRole is returned by ParseRole for labels that name neither role.
var ErrUnknownRole = errors.New("unknown role")

// Role separates patrons, who borrow, from librarians, who only read the full ledger.
type Role string

const (
	RolePatron    Role = "Patron"
	RoleLibrarian Role = "Librarian"
)

// ParseRole accepts the English labels and the legacy labels found in older record files.
func ParseRole(label string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "patron", "cliente", "client":
		return RolePatron, nil
	case "librarian", "bibliotecário", "bibliotecario":
		return RoleLibrarian, nil
	default:
		return "", errors.Join(ErrUnknownRole, errors.New(label))
	}
}

// User is immutable once loaded.
type User struct {
	ID     UserIDString
	Name   string
	Role   Role
	Login  string
	Secret string
}

func (u User) IsPatron() bool {
	return u.Role == RolePatron
}

func (u User) IsLibrarian() bool {
	return u.Role == RoleLibrarian
}
