package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: Common errors
// 11000-11999: Identity & registration errors
// 12000-12999: Judge transport errors
// 13000-13999: Submission session errors
// 14000-14999: Contest catalog errors

const (
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	NotFound            ErrorCode = 10003

	// Validation errors (10300-10399)
	ValidationFailed   ErrorCode = 10300
	InvalidFormat      ErrorCode = 10301
	InvalidValue       ErrorCode = 10302
	RequiredFieldEmpty ErrorCode = 10303

	// Identity (11000-11099)
	LoginRequired      ErrorCode = 11000
	IdentityStoreError ErrorCode = 11001

	// Registration (11100-11199)
	UsernameAlreadyExists ErrorCode = 11100
	RegistrationFailed    ErrorCode = 11101

	// Transport (12000-12099)
	TransportFailed    ErrorCode = 12000
	RequestBuildFailed ErrorCode = 12001
	ServerRejected     ErrorCode = 12002
	ResponseDecode     ErrorCode = 12003

	// Submission session (13000-13099)
	InvalidTransition   ErrorCode = 13000
	ProblemNotSelected  ErrorCode = 13001
	SubmissionDiscarded ErrorCode = 13002
	MalformedVerdict    ErrorCode = 13003
	TestCaseInvalid     ErrorCode = 13004

	// Contest catalog (14000-14099)
	ContestNotFound     ErrorCode = 14000
	ContestFetchFailed  ErrorCode = 14001
	ContestNotRunning   ErrorCode = 14002
	UnknownContestTab   ErrorCode = 14003
)

var errorMessages = map[ErrorCode]string{
	Success: "Success",

	InternalServerError: "Internal server error",
	InvalidParams:       "Invalid parameters",
	NotFound:            "Resource not found",

	ValidationFailed:   "Validation failed",
	InvalidFormat:      "Invalid format",
	InvalidValue:       "Invalid value",
	RequiredFieldEmpty: "Required field is empty",

	LoginRequired:      "Login required",
	IdentityStoreError: "Identity storage failed",

	UsernameAlreadyExists: "Username already exists",
	RegistrationFailed:    "An error occurred during registration",

	TransportFailed:    "No response received from the server",
	RequestBuildFailed: "Failed to build request",
	ServerRejected:     "Server rejected the request",
	ResponseDecode:     "Failed to decode server response",

	InvalidTransition:   "Action not allowed in the current state",
	ProblemNotSelected:  "No problem selected",
	SubmissionDiscarded: "Submission result discarded",
	MalformedVerdict:    "Judge returned a malformed verdict response",
	TestCaseInvalid:     "Invalid test case data",

	ContestNotFound:    "Contest not found",
	ContestFetchFailed: "Failed to fetch contests",
	ContestNotRunning:  "Contest is not running",
	UnknownContestTab:  "Unknown contest tab",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// HTTPStatus returns the recommended HTTP status code for the error code
func (c ErrorCode) HTTPStatus() int {
	switch {
	case c == Success:
		return 200
	case c == LoginRequired:
		return 401
	case c == NotFound, c == ContestNotFound:
		return 404
	case c == UsernameAlreadyExists:
		return 409
	case c == ContestNotRunning:
		return 403
	case c >= 10300 && c < 10400:
		return 400
	case c == InvalidParams, c == UnknownContestTab, c == TestCaseInvalid:
		return 400
	case c == TransportFailed, c == ServerRejected:
		return 502
	default:
		return 500
	}
}
