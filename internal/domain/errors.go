package domain

import "errors"

var (
	// ErrNoToken is returned when a gated flow runs without a stored token.
	ErrNoToken = errors.New("not logged in")
	// ErrBadToken is returned when the stored token payload cannot be decoded.
	ErrBadToken = errors.New("token cannot be decoded")
	// ErrForbidden is returned when the console allow-list check fails.
	ErrForbidden = errors.New("administrator access required")
	// ErrQuizNotFound indicates the quiz has no record on the question service.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrNoQuestions indicates a quiz exists but has an empty question set.
	ErrNoQuestions = errors.New("no questions available for this quiz")
	// ErrAlreadyAttempted blocks re-taking a quiz this identity already submitted.
	ErrAlreadyAttempted = errors.New("quiz already attempted, re-attempt is not allowed")
	// ErrValidation is wrapped around client-side required-field failures.
	ErrValidation = errors.New("validation error")
	// ErrPartialFailure marks batch operations where some sub-requests failed.
	ErrPartialFailure = errors.New("some operations could not be completed")
	// ErrProtectedAccount refuses destructive actions on the reserved admin account.
	ErrProtectedAccount = errors.New("the admin account is protected")
)
