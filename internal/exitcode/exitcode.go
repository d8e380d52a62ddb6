// Package exitcode defines the process exit codes of the carecost command.
package exitcode

import (
	"errors"

	"github.com/gyeh/carecost/internal/refload"
)

const (
	Success         = 0
	UsageError      = 1
	ValidationError = 2
	DBConnError     = 3
	CopyError       = 4
	UpsertError     = 5
	InputError      = 6
)

// ForError maps a load pipeline error to an exit code by the phase it
// failed in. Errors from outside the pipeline map to UsageError.
func ForError(err error) int {
	if err == nil {
		return Success
	}
	var pe *refload.PipelineError
	if !errors.As(err, &pe) {
		return UsageError
	}
	switch pe.Phase {
	case refload.PhasePreflight:
		return ValidationError
	case refload.PhaseStage:
		return CopyError
	case refload.PhaseUpsert:
		return UpsertError
	default:
		return UsageError
	}
}
