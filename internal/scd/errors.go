package scd

import "fmt"

// NotFoundError reports a lookup that matched nothing. Every storage error in
// this package names the entity and business key so a blocked write can be
// traced during post-incident analysis.
type NotFoundError struct {
	Entity      string
	BusinessKey string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q: no current version", e.Entity, e.BusinessKey)
}

// DuplicateBusinessKeyError reports a Create against a business key that
// already has a current version. Callers that expect the key to exist should
// use Upsert instead.
type DuplicateBusinessKeyError struct {
	Entity      string
	BusinessKey string
}

func (e *DuplicateBusinessKeyError) Error() string {
	return fmt.Sprintf("%s %q: current version already exists, use upsert", e.Entity, e.BusinessKey)
}

// ConcurrencyConflictError reports a partial-unique-index violation raised by
// a concurrent writer on the same business key. Upsert retries these itself
// with backoff; when the error escapes to a caller the retry budget is spent
// and the caller must re-read before trying again.
type ConcurrencyConflictError struct {
	Entity      string
	BusinessKey string
	Attempts    int
	Err         error
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("%s %q: concurrent version write lost after %d attempt(s): %v",
		e.Entity, e.BusinessKey, e.Attempts, e.Err)
}

func (e *ConcurrencyConflictError) Unwrap() error { return e.Err }
