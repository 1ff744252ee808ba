// Package eventstore defines the journal abstractions shared by every storage engine
// that records loan ledger decisions.
//
// The journal is an append-only log of decision events. Each engine (memengine,
// sqliteengine, postgresengine) implements the same two operations:
//
//   - Query returns the events matching a Filter together with the highest sequence
//     number among them.
//   - Append writes one or more events atomically, but only if the highest sequence
//     number for the same Filter still equals the expected value.
//
// The second rule gives optimistic concurrency on a "dynamic stream": the set of
// events that touch a given book or patron, not a fixed aggregate.
//
// Typical usage:
//
//	filter := eventstore.BuildEventFilter().
//		Matching().
//		AnyEventTypeOf(core.LoanOpenedEventType, core.LoanReturnedEventType).
//		AndAnyPredicateOf(eventstore.P("BookID", "B001"), eventstore.P("PatronID", "U001")).
//		Finalize()
//
//	_, maxSeq, err := journal.Query(ctx, filter)
//	if err != nil {
//		return err
//	}
//
//	err = journal.Append(ctx, filter, maxSeq, storableEvent)
package eventstore
