package errors

// ErrorCodeInfo contains metadata about an error code.
type ErrorCodeInfo struct {
	Code        ErrorCode
	Recoverable bool
	Description string
}

// ErrorCodeRegistry maps error codes to their metadata. Recoverable means
// the caller can correct the request and resubmit; the other codes are
// terminal for the request that produced them.
var ErrorCodeRegistry = map[ErrorCode]ErrorCodeInfo{
	ErrInputRejected: {
		Code:        ErrInputRejected,
		Recoverable: true,
		Description: "Description is outside the accepted length bounds",
	},
	ErrGenerationUnavailable: {
		Code:        ErrGenerationUnavailable,
		Recoverable: false,
		Description: "Generation service exhausted retries and no fallback could be produced",
	},
	ErrMalformedOutput: {
		Code:        ErrMalformedOutput,
		Recoverable: false,
		Description: "No well-formed draft record could be extracted from the generated text",
	},
	ErrOutputRejected: {
		Code:        ErrOutputRejected,
		Recoverable: false,
		Description: "Extracted draft failed content validation",
	},
}

// IsRecoverable returns true if the given error code represents a condition
// the caller can correct by resubmitting.
func IsRecoverable(code ErrorCode) bool {
	if info, ok := ErrorCodeRegistry[code]; ok {
		return info.Recoverable
	}
	return false
}

// GetDescription returns the human-readable description for the given error code.
func GetDescription(code ErrorCode) string {
	if info, ok := ErrorCodeRegistry[code]; ok {
		return info.Description
	}
	return "Unknown error"
}
