package repository

import (
	"errors"
	"fmt"

	"github.com/javanhut/gitlet/internal/commit"
	"github.com/javanhut/gitlet/internal/config"
	"github.com/javanhut/gitlet/internal/refs"
	"github.com/javanhut/gitlet/internal/staging"
	"github.com/javanhut/gitlet/internal/workspace"
)

// UserError is a recognized failure of a command. Its message is meant to be
// shown to the user as is.
type UserError struct {
	msg string
}

func (e *UserError) Error() string { return e.msg }

func userError(msg string) *UserError { return &UserError{msg: msg} }

var (
	ErrNotInitialized            = userError("Not in an initialized Gitlet directory.")
	ErrAlreadyInitialized        = userError("A Gitlet version-control system already exists in the current directory.")
	ErrFileNotFound              = userError("File does not exist.")
	ErrFileNotInCommit           = userError("File does not exist in that commit.")
	ErrCommitNotFound            = userError("No commit with that id exists.")
	ErrAmbiguousCommitID         = userError("Commit id prefix is ambiguous.")
	ErrNoCommitWithMessage       = userError("Found no commit with that message.")
	ErrBranchNotFound            = userError("A branch with that name does not exist.")
	ErrNoSuchBranch              = userError("No such branch exists.")
	ErrBranchExists              = userError("A branch with that name already exists.")
	ErrInvalidBranchName         = userError("Invalid branch name.")
	ErrCannotDeleteCurrentBranch = userError("Cannot remove the current branch.")
	ErrCheckoutCurrentBranch     = userError("No need to checkout the current branch.")
	ErrEmptyCommitMessage        = userError("Please enter a commit message.")
	ErrNothingToCommit           = userError("No changes added to the commit.")
	ErrNothingToRemove           = userError("No reason to remove the file.")
	ErrMergeWithSelf             = userError("Cannot merge a branch with itself.")
	ErrUncommittedChanges        = userError("You have uncommitted changes.")
	ErrUntrackedFileConflict     = userError("There is an untracked file in the way; delete it, or add and commit it first.")
	ErrDetachedHead              = userError("HEAD is not on a branch.")
	ErrUnknownConfigKey          = userError("No such configuration key.")
	ErrFixedConfigKey            = userError("That setting cannot be changed after init.")
	ErrInvalidConfigValue        = userError("Invalid configuration value.")
)

// IsUserError reports whether err is a recognized command failure rather than
// a broken repository or I/O problem.
func IsUserError(err error) bool {
	var u *UserError
	return errors.As(err, &u)
}

// Message returns the user-facing line for err. Internal errors are returned
// with their full text.
func Message(err error) string {
	var u *UserError
	if errors.As(err, &u) {
		return u.msg
	}
	return err.Error()
}

// translate maps component errors onto the user error they stand for,
// keeping the original for errors.Is.
func translate(err error) error {
	if err == nil || IsUserError(err) {
		return err
	}
	var user *UserError
	switch {
	case errors.Is(err, staging.ErrFileNotFound), errors.Is(err, workspace.ErrInvalidPath):
		user = ErrFileNotFound
	case errors.Is(err, staging.ErrNothingToRemove):
		user = ErrNothingToRemove
	case errors.Is(err, commit.ErrEmptyMessage):
		user = ErrEmptyCommitMessage
	case errors.Is(err, commit.ErrAmbiguousCommitID):
		user = ErrAmbiguousCommitID
	case errors.Is(err, refs.ErrBranchExists):
		user = ErrBranchExists
	case errors.Is(err, refs.ErrInvalidBranchName):
		user = ErrInvalidBranchName
	case errors.Is(err, refs.ErrCannotDeleteCurrentBranch):
		user = ErrCannotDeleteCurrentBranch
	case errors.Is(err, config.ErrUnknownKey):
		user = ErrUnknownConfigKey
	case errors.Is(err, config.ErrFixedKey):
		user = ErrFixedConfigKey
	case errors.Is(err, config.ErrInvalidConfig):
		user = ErrInvalidConfigValue
	default:
		return err
	}
	return fmt.Errorf("%w: %w", user, err)
}
