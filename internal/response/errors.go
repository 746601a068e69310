package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Admin access ──────────────────────────────────────────────────
	ErrAdminKeyRequired ErrCode = "ADMIN_KEY_REQUIRED"
	ErrAdminKeyInvalid  ErrCode = "ADMIN_KEY_INVALID"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Exam lifecycle ────────────────────────────────────────────────
	ErrInvalidTransition ErrCode = "INVALID_TRANSITION"
	ErrExamNotLive       ErrCode = "EXAM_NOT_LIVE"

	// ─── Submissions ───────────────────────────────────────────────────
	ErrSessionNotActive    ErrCode = "SESSION_NOT_ACTIVE"
	ErrDisqualified        ErrCode = "DISQUALIFIED"
	ErrLanguageUnsupported ErrCode = "LANGUAGE_UNSUPPORTED"
	ErrNoOpCode            ErrCode = "NO_OP_CODE"
	ErrAttemptCapExceeded  ErrCode = "ATTEMPT_CAP_EXCEEDED"
	ErrJudgeUnavailable    ErrCode = "JUDGE_UNAVAILABLE"

	// ─── Leaderboard ───────────────────────────────────────────────────
	ErrLeaderboardNotAvailable ErrCode = "LEADERBOARD_NOT_AVAILABLE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Admin access ──────────────────────────────────────────────────
	case ErrAdminKeyRequired:
		return "Admin key missing."
	case ErrAdminKeyInvalid:
		return "Invalid admin key."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Exam lifecycle ────────────────────────────────────────────────
	case ErrInvalidTransition:
		return "The exam cannot transition to that state."
	case ErrExamNotLive:
		return "The exam is not live."

	// ─── Submissions ───────────────────────────────────────────────────
	case ErrSessionNotActive:
		return "No active exam session found."
	case ErrDisqualified:
		return "You have been disqualified from this exam."
	case ErrLanguageUnsupported:
		return "This question is not available in your language."
	case ErrNoOpCode:
		return "No changes made to the code."
	case ErrAttemptCapExceeded:
		return "Maximum attempts reached for this question."
	case ErrJudgeUnavailable:
		return "Code execution service is unavailable. Please retry."

	// ─── Leaderboard ───────────────────────────────────────────────────
	case ErrLeaderboardNotAvailable:
		return "Leaderboard will be available after the exam ends."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
