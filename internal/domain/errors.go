package domain

import "errors"

// ErrNotIndexed is returned when a query arrives before any document has
// been ingested. Callers should surface it as an actionable message rather
// than a generic failure.
var ErrNotIndexed = errors.New("no document indexed yet")

// ErrEmptyMessage is returned when a turn is recorded with empty or
// whitespace-only text on either side.
var ErrEmptyMessage = errors.New("message content must be non-empty")
