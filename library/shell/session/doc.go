// Package session authenticates users against the UserRegistry and carries the
// authenticated user through a context.Context.
package session
