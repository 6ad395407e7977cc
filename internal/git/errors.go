package git

import (
	"fmt"
	"strings"
)

// ShellCommandError is returned when a git command exits non-zero. Output
// holds the combined stdout and stderr of the command.
type ShellCommandError struct {
	Args   []string
	Dir    string
	Output string
	Err    error
}

func (e *ShellCommandError) Error() string {
	return fmt.Sprintf("'git %s' failed in %s with %s: %v",
		strings.Join(e.Args, " "), e.Dir, strings.TrimSpace(e.Output), e.Err)
}

func (e *ShellCommandError) Unwrap() error {
	return e.Err
}

// MergeBaseError is returned when the merge-base of two revisions cannot be computed.
type MergeBaseError struct {
	A, B string
	Err  error
}

func (e *MergeBaseError) Error() string {
	return fmt.Sprintf("computing merge-base of %s and %s: %v", e.A, e.B, e.Err)
}

func (e *MergeBaseError) Unwrap() error {
	return e.Err
}
