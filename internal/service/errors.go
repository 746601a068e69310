package service

import "errors"

// Domain errors surfaced by the services. Handlers translate these into
// response error codes; anything else is an internal error.
var (
	ErrInvalidTransition       = errors.New("invalid exam state transition")
	ErrExamNotLive             = errors.New("exam is not live")
	ErrSessionNotActive        = errors.New("no active exam session")
	ErrDisqualified            = errors.New("participant is disqualified")
	ErrLanguageUnsupported     = errors.New("question not available in participant's language")
	ErrNoOpCode                = errors.New("no changes made to the code")
	ErrAttemptCapExceeded      = errors.New("maximum attempts reached for this question")
	ErrLeaderboardNotAvailable = errors.New("leaderboard not available until the exam ends")
	ErrDuplicateEmail          = errors.New("email already registered")
)
