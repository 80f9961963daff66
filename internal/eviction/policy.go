package eviction

// Policy tracks per-key access frequency and selects eviction victims.
//
// Implementations are pure in-memory bookkeeping: they perform no I/O and
// never fail. All methods must be safe for concurrent use.
type Policy interface {
	// RecordAccess inserts the key with an initial frequency if it is new,
	// otherwise bumps its frequency.
	RecordAccess(key string)

	// EvictCandidate returns the least-used key currently tracked.
	// It reports false only when the policy tracks no keys at all.
	// The candidate stays tracked until Remove is called for it.
	EvictCandidate() (string, bool)

	// Remove purges the key's bookkeeping unconditionally.
	Remove(key string)

	// Len returns the number of tracked keys.
	Len() int
}
