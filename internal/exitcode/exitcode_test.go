package exitcode

import (
	stderrors "errors"
	"testing"

	"github.com/felixgeelhaar/projector/internal/errors"
)

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "nil error",
			err:  nil,
			want: Success,
		},
		{
			name: "plan not found",
			err:  errors.NewPlanNotFoundError("plan-1"),
			want: NotFound,
		},
		{
			name: "feature not found",
			err:  errors.NewFeatureNotFoundError("auth"),
			want: NotFound,
		},
		{
			name: "invalid transition",
			err:  errors.NewInvalidTransitionError("auth", "completed", "in_progress"),
			want: InvalidState,
		},
		{
			name: "admission branch failure",
			err:  errors.New(errors.ErrCodeAdmissionBranch, "branch creation failed"),
			want: GatewayError,
		},
		{
			name: "usage error from cobra",
			err:  stderrors.New(`unknown command "wat" for "projector"`),
			want: UsageError,
		},
		{
			name: "plain error",
			err:  stderrors.New("something broke"),
			want: GeneralError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineExitCode(tt.err); got != tt.want {
				t.Errorf("DetermineExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetExitCodeDescription(t *testing.T) {
	if GetExitCodeDescription(NotFound) == "Unknown error" {
		t.Error("NotFound should have a description")
	}
	if GetExitCodeDescription(99) != "Unknown error" {
		t.Error("unmapped codes should be unknown")
	}
}
