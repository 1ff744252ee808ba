// Package memengine is an in-process journal engine.
//
// It keeps every appended event in a slice guarded by a mutex and evaluates filters in Go.
// It is the default engine of the console and the engine most tests use, since it needs
// no external resources. Its contents are lost when the process exits.
package memengine
