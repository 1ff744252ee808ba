// Package shell is the imperative shell around the loan tracker core.
//
// It owns the repositories (UserRegistry, Catalog, Ledger) aggregated by Library,
// which serializes every command behind one mutex: snapshot, decide, apply.
// After the lock is released the decided events are appended to the journal with
// optimistic concurrency and retry, and the text snapshot is saved. Persistence
// failures never roll back the in-memory change, they surface as a PersistenceWarning.
//
// The package also maps domain events to storable events and back, and provides
// the metrics, tracing and logging helpers used by the observable wrappers.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'infrastructure' layer.
package shell
