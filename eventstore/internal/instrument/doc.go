// Package instrument holds the logging, metrics and tracing plumbing shared by the journal engines.
//
// Every engine embeds an Instrumentation and wraps each Query and Append in an Operation,
// which produces the same span names, metric names and log messages regardless of the backend.
package instrument
