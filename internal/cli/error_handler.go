package cli

import (
	goerrors "errors"

	"toggl-opsync/internal/errors"
	"toggl-opsync/internal/sync"
)

// Exit codes returned by the binary.
const (
	ExitOK       = 0
	ExitError    = 1
	ExitDeclined = 2
)

// ExitCode maps an error from a command to the process exit code. A declined
// confirmation is an expected outcome and gets its own code so scripts can
// tell it apart from a failure.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case goerrors.Is(err, sync.ErrDeclined):
		return ExitDeclined
	default:
		return ExitError
	}
}

// UserMessage returns the message to print for a failed command.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if _, ok := errors.AsAppError(err); ok {
		return errors.GetUserMessage(err)
	}
	return err.Error()
}
