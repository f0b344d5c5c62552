// Package exitcode maps structured errors to process exit codes.
package exitcode

import (
	"os"
	"strings"

	"github.com/felixgeelhaar/projector/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// NotFound indicates a missing plan or feature reference
	NotFound = 3

	// InvalidState indicates an illegal lifecycle transition or state conflict
	InvalidState = 4

	// GatewayError indicates a failed call to an external system
	GatewayError = 5

	// Interrupted indicates the run was cancelled by a signal
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}
	Exit(DetermineExitCode(err))
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	switch errors.CodeOf(err) {
	case errors.ErrCodePlanNotFound, errors.ErrCodeFeatureNotFound, errors.ErrCodeFileNotFound:
		return NotFound
	case errors.ErrCodeInvalidTransition, errors.ErrCodeDependencyNotMet,
		errors.ErrCodeStepOutOfRange, errors.ErrCodeFeatureAlreadyActive:
		return InvalidState
	case errors.ErrCodeGatewayConfig, errors.ErrCodeGatewayAPI, errors.ErrCodeGatewayUnsupported,
		errors.ErrCodeAdmissionBranch, errors.ErrCodeAdmissionThread:
		return GatewayError
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "unknown command") || strings.Contains(errMsg, "unknown flag") ||
		strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "accepts") {
		return UsageError
	}
	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case NotFound:
		return "Plan or feature not found"
	case InvalidState:
		return "Invalid lifecycle transition"
	case GatewayError:
		return "External gateway error"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
