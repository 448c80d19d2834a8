package repository

import (
	"errors"

	"github.com/javanhut/gitlet/internal/commit"
	"github.com/javanhut/gitlet/internal/refs"
	"github.com/javanhut/gitlet/internal/staging"
	"github.com/javanhut/gitlet/internal/workspace"
)

// CheckoutHeadFile restores filename from the HEAD commit. The staging area
// is not touched.
func (r *Repository) CheckoutHeadFile(filename string) error {
	c, err := r.headCommit()
	if err != nil {
		return err
	}
	return r.restoreFile(c, filename)
}

// CheckoutFile restores filename from the commit identified by commitID,
// which may be abbreviated. The staging area is not touched.
func (r *Repository) CheckoutFile(commitID, filename string) error {
	c, err := r.resolveCommit(commitID)
	if err != nil {
		return err
	}
	return r.restoreFile(c, filename)
}

func (r *Repository) restoreFile(c *commit.Commit, filename string) error {
	name, err := workspace.CleanName(filename)
	if err != nil {
		return ErrFileNotInCommit
	}
	id, ok := c.Tracks(name)
	if !ok {
		return ErrFileNotInCommit
	}
	return r.mat.CheckoutFile(name, id)
}

// CheckoutBranch switches the working directory and HEAD to a branch.
func (r *Repository) CheckoutBranch(name string) error {
	target, err := r.branchCommit(name)
	if errors.Is(err, refs.ErrBranchNotFound) {
		return ErrNoSuchBranch
	}
	if err != nil {
		return err
	}
	current, err := r.refs.CurrentBranch()
	if err != nil {
		return err
	}
	if current == name {
		return ErrCheckoutCurrentBranch
	}

	if err := r.switchTo(target); err != nil {
		return err
	}
	if err := r.refs.SetCurrentBranch(name); err != nil {
		return err
	}
	if err := r.refs.SetHead(target.ID); err != nil {
		return err
	}
	r.Logger.Printf("switched to branch %s at %s", name, target.ID.Short(12))
	return nil
}

// Reset moves the current branch and HEAD to a commit and checks it out.
func (r *Repository) Reset(commitID string) error {
	target, err := r.resolveCommit(commitID)
	if err != nil {
		return err
	}
	if err := r.switchTo(target); err != nil {
		return err
	}
	if err := r.advance(target.ID); err != nil {
		return err
	}
	r.Logger.Printf("reset to %s", target.ID.Short(12))
	return nil
}

// switchTo replaces HEAD's files in the working directory with target's and
// clears the staging area. Nothing is written if an untracked file would be
// overwritten.
func (r *Repository) switchTo(target *commit.Commit) error {
	head, err := r.headCommit()
	if err != nil {
		return err
	}
	if err := r.preflight(head.Files, target.Files); err != nil {
		return err
	}
	if err := r.mat.Materialize(head.Files, target.Files); err != nil {
		return err
	}
	return staging.New().Save(r.kv)
}
