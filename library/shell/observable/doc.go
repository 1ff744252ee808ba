// Package observable decorates core command and query handlers with metrics, tracing and logging.
//
// The wrappers translate handler outcomes into telemetry and change nothing else:
// rejections, persistence warnings and retry metadata are recorded and the core handler's
// result and error are returned unchanged. When the context carries a session user,
// its ID is attached to every log record.
package observable
