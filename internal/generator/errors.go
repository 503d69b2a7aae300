package generator

import "errors"

// Failure signals for content assembly. Shape errors are recoverable (they
// trigger the retry/fallback path); ErrExhausted is fatal to the enclosing
// generation request and must be surfaced to the caller.
var (
	// ErrMalformedBatch means the provider response did not decode into the
	// expected batch shape (wrong count, broken JSON, missing fields).
	ErrMalformedBatch = errors.New("malformed batch shape")
	// ErrSlotMismatch means an item's slot index set or declared
	// type/bloom/difficulty did not match the blueprint.
	ErrSlotMismatch = errors.New("slot mismatch")
	// ErrInvalidOptions means a choice question's option set broke an
	// invariant: wrong count, duplicates, banned phrasing, or an
	// out-of-range correct index.
	ErrInvalidOptions = errors.New("invalid option set")
	// ErrExhausted means the batched call, its retry, and the sequential
	// fallback all failed. No partial test is ever returned alongside it.
	ErrExhausted = errors.New("generation retries exhausted")
)
