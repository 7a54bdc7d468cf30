package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden          ErrCode = "FORBIDDEN"
	ErrRecruiterOnly      ErrCode = "RECRUITER_ACCESS_ONLY"
	ErrCandidateOnly      ErrCode = "CANDIDATE_ACCESS_ONLY"
	ErrWrongAssessmentKey ErrCode = "TOKEN_WRONG_ASSESSMENT"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Assessment engine ─────────────────────────────────────────────
	ErrStructureInvalid      ErrCode = "STRUCTURE_INVALID"
	ErrFieldValidationFailed ErrCode = "FIELD_VALIDATION_FAILED"
	ErrGuardRejected         ErrCode = "GUARD_REJECTED"
	ErrNotChoiceQuestion     ErrCode = "NOT_CHOICE_QUESTION"
	ErrOptionIndex           ErrCode = "OPTION_INDEX_OUT_OF_RANGE"
	ErrResponseSubmitted     ErrCode = "RESPONSE_SUBMITTED"
	ErrResponseNotSubmitted  ErrCode = "RESPONSE_NOT_SUBMITTED"
	ErrDraftNotOpen          ErrCode = "DRAFT_NOT_OPEN"
	ErrPersistenceFailure    ErrCode = "PERSISTENCE_FAILURE"

	// ─── Media ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid email or password."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrTokenExpired:
		return "Authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You are not allowed to access this resource."
	case ErrRecruiterOnly:
		return "This resource is restricted to recruiters."
	case ErrCandidateOnly:
		return "This resource is restricted to invited candidates."
	case ErrWrongAssessmentKey:
		return "This invite is for a different assessment."

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

	// ─── Assessment engine ─────────────────────────────────────────────
	case ErrStructureInvalid:
		return "The assessment has questions that need attention."
	case ErrFieldValidationFailed:
		return "Some answers are missing or invalid."
	case ErrGuardRejected:
		return "This change would leave the assessment without a section or the question without an option."
	case ErrNotChoiceQuestion:
		return "Only choice questions have options."
	case ErrOptionIndex:
		return "Option index is out of range."
	case ErrResponseSubmitted:
		return "This response has already been submitted."
	case ErrResponseNotSubmitted:
		return "This response has not been submitted yet."
	case ErrDraftNotOpen:
		return "No builder draft is open for this assessment."
	case ErrPersistenceFailure:
		return "The change could not be saved. Please try again."

	// ─── Media ─────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "A file upload is required."
	case ErrUnsupportedFile:
		return "Unsupported file type."
	case ErrFileTooLarge:
		return "File exceeds the size limit."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
