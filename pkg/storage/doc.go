// Package storage persists the form draft through a key-value Provider.
//
// The Adapter is the only component that talks to a Provider. It stores the
// whole FormState as one JSON blob under a single fixed key, wraps every
// provider call in an independent Retry loop, and coalesces bursts of writes
// through its own Debouncer so rapid edits produce one write carrying the
// latest state.
//
// Failure policy:
//
//	Save    retried, then logged, reported through the notifier and returned.
//	Persist debounced Save; failures are reported the same way but not returned.
//	Load    retried, then degrades to "no saved form".
//	Clear   cancels any pending Persist, retried, then logged and returned.
//
// Three providers ship with the package: MemoryProvider for tests and demos,
// FileProvider (one JSON file per key) and SQLiteProvider (a kv table in a
// SQLite database).
package storage
