package service

import "errors"

// Engine error taxonomy. Controllers match these with errors.Is and map them
// to HTTP statuses; services wrap them with fmt.Errorf("...: %w", ...) to
// attach context.
var (
	// ErrNotFound covers a missing exam, attempt or question. Caller error,
	// non-retryable.
	ErrNotFound = errors.New("resource not found")
	// ErrForbidden is an ownership mismatch. Non-retryable and logged as a
	// security-relevant event, never silently ignored.
	ErrForbidden = errors.New("attempt does not belong to participant")
	// ErrAlreadyCompleted rejects begin-or-resume once a completed attempt
	// exists for the (participant, exam) pair.
	ErrAlreadyCompleted = errors.New("exam already completed by participant")
	// ErrAlreadySubmitted signals an idempotent no-op: the attempt was
	// already scored and the stored result stands.
	ErrAlreadySubmitted = errors.New("attempt already submitted")
	// ErrTimeExpired is terminal for the attempt; a zero score is recorded.
	ErrTimeExpired = errors.New("time budget exceeded")
	// ErrValidation covers answer sets referencing questions outside the
	// exam or options outside their question. Fix-and-retry by caller.
	ErrValidation = errors.New("invalid answer set")
)
