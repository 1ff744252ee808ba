// Package core contains the pure domain of the loan tracker:
// users, books and their shelf status, loan records, the loan policy
// and the fine policy, plus the domain events produced by deciding a command.
//
// Nothing in this package performs I/O. Commands are decided by pure Decide
// functions in the feature packages which receive a LibraryState snapshot and
// return a DecisionResult carrying either success events or a failure event
// together with a Rejection.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core
