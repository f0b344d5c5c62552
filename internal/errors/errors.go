package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Plan errors (PLAN-001 to PLAN-099)
	ErrCodePlanNotFound   ErrorCode = "PLAN-001"
	ErrCodePlanInvalid    ErrorCode = "PLAN-002"
	ErrCodePlanCyclicDep  ErrorCode = "PLAN-003"
	ErrCodePlanNoFeatures ErrorCode = "PLAN-004"

	// Feature errors (FEATURE-001 to FEATURE-099)
	ErrCodeFeatureNotFound      ErrorCode = "FEATURE-001"
	ErrCodeInvalidTransition    ErrorCode = "FEATURE-002"
	ErrCodeDependencyNotMet     ErrorCode = "FEATURE-003"
	ErrCodeStepOutOfRange       ErrorCode = "FEATURE-004"
	ErrCodeFeatureAlreadyActive ErrorCode = "FEATURE-005"

	// Admission errors (ADMIT-001 to ADMIT-099)
	ErrCodeAdmissionBranch ErrorCode = "ADMIT-001"
	ErrCodeAdmissionThread ErrorCode = "ADMIT-002"
	ErrCodeNoCapacity      ErrorCode = "ADMIT-003"

	// Gateway errors (GATEWAY-001 to GATEWAY-099)
	ErrCodeGatewayConfig      ErrorCode = "GATEWAY-001"
	ErrCodeGatewayAPI         ErrorCode = "GATEWAY-002"
	ErrCodeGatewayUnsupported ErrorCode = "GATEWAY-003"

	// Pool errors (POOL-001 to POOL-099)
	ErrCodePoolShutdown ErrorCode = "POOL-001"
	ErrCodePoolTimeout  ErrorCode = "POOL-002"

	// Parse errors (PARSE-001 to PARSE-099)
	ErrCodeParseNoFeatures ErrorCode = "PARSE-001"
	ErrCodeParseBadFeature ErrorCode = "PARSE-002"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeFileUnmarshal   ErrorCode = "IO-004"
	ErrCodeFileMarshal     ErrorCode = "IO-005"
)

// ProjectorError represents an enhanced error with code, suggestions, and documentation
type ProjectorError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *ProjectorError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *ProjectorError) Unwrap() error {
	return e.Cause
}

// New creates a new ProjectorError
func New(code ErrorCode, message string) *ProjectorError {
	return &ProjectorError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new ProjectorError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *ProjectorError {
	return &ProjectorError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *ProjectorError) WithSuggestion(suggestion string) *ProjectorError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *ProjectorError) WithSuggestions(suggestions ...string) *ProjectorError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *ProjectorError) WithDocs(url string) *ProjectorError {
	e.DocsURL = url
	return e
}

// CodeOf returns the error code carried by err, or an empty code for
// plain errors.
func CodeOf(err error) ErrorCode {
	if pe, ok := err.(*ProjectorError); ok {
		return pe.Code
	}
	return ""
}

// Common error constructors for frequently used errors

// NewPlanNotFoundError creates a plan not found error
func NewPlanNotFoundError(planID string) *ProjectorError {
	return New(ErrCodePlanNotFound, fmt.Sprintf("plan not found: %s", planID)).
		WithSuggestion("Run 'projector plan list' to see known plans").
		WithSuggestion("Check if the plan ID is correct")
}

// NewPlanCyclicDepError creates a cyclic dependency error
func NewPlanCyclicDepError(cycle string) *ProjectorError {
	return New(ErrCodePlanCyclicDep, fmt.Sprintf("circular dependency detected: %s", cycle)).
		WithSuggestion("Remove one edge of the cycle from the feature dependencies").
		WithSuggestion("Run 'projector plan status <id>' to inspect the dependency graph")
}

// NewFeatureNotFoundError creates a feature not found error
func NewFeatureNotFoundError(name string) *ProjectorError {
	return New(ErrCodeFeatureNotFound, fmt.Sprintf("feature not found in plan: %s", name)).
		WithSuggestion("Feature names are case sensitive; check the plan definition")
}

// NewInvalidTransitionError creates an illegal status change error
func NewInvalidTransitionError(name, from, to string) *ProjectorError {
	return New(ErrCodeInvalidTransition,
		fmt.Sprintf("feature %s cannot move from %s to %s", name, from, to))
}

// NewDependencyNotMetError creates an out-of-order admission error
func NewDependencyNotMetError(name, dependency string) *ProjectorError {
	return New(ErrCodeDependencyNotMet,
		fmt.Sprintf("feature %s depends on %s, which is not completed", name, dependency)).
		WithSuggestion("Complete the dependency first, or remove it from the feature")
}

// NewStepOutOfRangeError creates a step index error
func NewStepOutOfRangeError(feature string, index int) *ProjectorError {
	return New(ErrCodeStepOutOfRange,
		fmt.Sprintf("step index %d is out of range for feature %s", index, feature))
}

// NewPoolShutdownError creates an error for submissions after shutdown
func NewPoolShutdownError() *ProjectorError {
	return New(ErrCodePoolShutdown, "cannot submit task: pool is shutting down")
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *ProjectorError {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}
