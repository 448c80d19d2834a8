package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/javanhut/gitlet/internal/cas"
	"github.com/javanhut/gitlet/internal/commit"
	"github.com/javanhut/gitlet/internal/refs"
	"github.com/javanhut/gitlet/internal/workspace"
)

// Add stages a working file for the next commit.
func (r *Repository) Add(filename string) error {
	name, err := workspace.CleanName(filename)
	if err != nil {
		return translate(err)
	}
	head, err := r.headCommit()
	if err != nil {
		return err
	}
	stage, err := r.loadStage()
	if err != nil {
		return err
	}
	if err := stage.Add(name, r.ws, r.objects, head.Files); err != nil {
		return translate(err)
	}
	if err := stage.Save(r.kv); err != nil {
		return err
	}
	r.Logger.Printf("add %s", name)
	return nil
}

// Commit records the staged snapshot as a child of HEAD.
func (r *Repository) Commit(message string) (*commit.Commit, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyCommitMessage
	}
	stage, err := r.loadStage()
	if err != nil {
		return nil, err
	}
	if stage.IsEmpty() {
		return nil, ErrNothingToCommit
	}
	head, err := r.headCommit()
	if err != nil {
		return nil, err
	}

	c, err := r.graph.Create(message, []cas.Hash{head.ID}, stage.Snapshot(head.Files), r.now())
	if err != nil {
		return nil, translate(err)
	}
	if err := r.advance(c.ID); err != nil {
		return nil, err
	}
	stage.Clear()
	if err := stage.Save(r.kv); err != nil {
		return nil, err
	}
	r.Logger.Printf("commit %s %q", c.ID.Short(12), message)
	return c, nil
}

// Remove unstages a file or stages the removal of a tracked file.
func (r *Repository) Remove(filename string) error {
	name, err := workspace.CleanName(filename)
	if err != nil {
		return ErrNothingToRemove
	}
	head, err := r.headCommit()
	if err != nil {
		return err
	}
	stage, err := r.loadStage()
	if err != nil {
		return err
	}
	if err := stage.Remove(name, r.ws, head.Files); err != nil {
		return translate(err)
	}
	if err := stage.Save(r.kv); err != nil {
		return err
	}
	r.Logger.Printf("rm %s", name)
	return nil
}

// Branch creates a branch at HEAD.
func (r *Repository) Branch(name string) error {
	head, err := r.refs.Head()
	if err != nil {
		return err
	}
	if err := r.refs.CreateBranch(name, head); err != nil {
		return translate(err)
	}
	r.Logger.Printf("branch %s at %s", name, head.Short(12))
	return nil
}

// RemoveBranch deletes a branch pointer. Its commits stay in the store.
func (r *Repository) RemoveBranch(name string) error {
	err := r.refs.DeleteBranch(name)
	if errors.Is(err, refs.ErrBranchNotFound) {
		return ErrBranchNotFound
	}
	if err != nil {
		return translate(err)
	}
	r.Logger.Printf("removed branch %s", name)
	return nil
}

// CurrentBranch returns the attached branch, or "" when HEAD is detached.
func (r *Repository) CurrentBranch() (string, error) {
	return r.refs.CurrentBranch()
}

// Head returns the commit HEAD points at.
func (r *Repository) Head() (*commit.Commit, error) {
	return r.headCommit()
}

// branchCommit returns the tip commit of an existing branch.
func (r *Repository) branchCommit(name string) (*commit.Commit, error) {
	tip, err := r.refs.BranchTip(name)
	if err != nil {
		return nil, err
	}
	c, err := r.graph.Get(tip)
	if err != nil {
		return nil, fmt.Errorf("branch %s: %w", name, err)
	}
	return c, nil
}
