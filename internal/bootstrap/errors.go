package bootstrap

import (
	"fmt"

	"github.com/otter-ml/otter-launcher/internal/cmdutil"
)

// Kind classifies fatal bootstrap failures.
type Kind string

const (
	// KindEnvironment means the host lacks a prerequisite we do not install.
	KindEnvironment Kind = "environment"
	// KindInstall means an installation sub-step failed.
	KindInstall Kind = "install"
	// KindPostcondition means installation claimed success but the binary is missing.
	KindPostcondition Kind = "postcondition"
)

// Error is a fatal bootstrap failure. The launcher prints it and exits 1.
type Error struct {
	Kind    Kind
	Message string
	Hints   []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, describe(e.Err))
}

func (e *Error) Unwrap() error {
	return e.Err
}

// describe shortens a failed command to its exit status and stderr. Joined
// errors from several attempts are printed whole.
func describe(err error) string {
	cmdErr, ok := err.(*cmdutil.Error)
	if ok && cmdErr.ExitCode > 0 {
		if cmdErr.Stderr == "" {
			return fmt.Sprintf("exit %d", cmdErr.ExitCode)
		}
		return fmt.Sprintf("exit %d: %s", cmdErr.ExitCode, cmdErr.Stderr)
	}
	return err.Error()
}
