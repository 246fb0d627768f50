package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Graph integrity errors (fatal)
const (
	// ErrCodeCyclicGraph indicates a chain transitively depends on itself.
	ErrCodeCyclicGraph ErrorCode = "CYCLIC_GRAPH"
	// ErrCodeUnknownInput indicates a run without a required named input.
	ErrCodeUnknownInput ErrorCode = "UNKNOWN_NAMED_INPUT"
	// ErrCodeUnknownFunction indicates a job references an unregistered function.
	ErrCodeUnknownFunction ErrorCode = "UNKNOWN_FUNCTION"
	// ErrCodeInvalidStrategy indicates an unsupported join strategy.
	ErrCodeInvalidStrategy ErrorCode = "INVALID_JOIN_STRATEGY"
)

// Data errors
const (
	// ErrCodeMapperFailure indicates a user function failed on a record.
	ErrCodeMapperFailure ErrorCode = "MAPPER_FAILURE"
	// ErrCodeInvalidRecord indicates an input line is not a JSON object.
	ErrCodeInvalidRecord ErrorCode = "INVALID_RECORD"
	// ErrCodeSortPrecondition indicates grouped input is not sorted by its keys.
	ErrCodeSortPrecondition ErrorCode = "SORT_PRECONDITION"
	// ErrCodeMissingSortKey indicates sort keys absent from the data.
	ErrCodeMissingSortKey ErrorCode = "MISSING_SORT_KEY"
)

// Validation and internal errors
const (
	// ErrCodeInvalidInput indicates invalid configuration or job definitions.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeInternal indicates an unexpected engine failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// recoverableCodes lists conditions that degrade output instead of aborting.
var recoverableCodes = map[ErrorCode]bool{
	ErrCodeSortPrecondition: true,
	ErrCodeMissingSortKey:   true,
}

// IsRecoverableCode returns true if the code describes a non-fatal condition.
func IsRecoverableCode(code ErrorCode) bool {
	return recoverableCodes[code]
}
