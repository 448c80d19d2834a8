package repository

import (
	"github.com/javanhut/gitlet/internal/cas"
	"github.com/javanhut/gitlet/internal/commit"
)

// Log returns the first-parent history of HEAD, newest first.
func (r *Repository) Log() ([]*commit.Commit, error) {
	head, err := r.refs.Head()
	if err != nil {
		return nil, err
	}
	var history []*commit.Commit
	for c, err := range r.graph.FirstParentHistory(head) {
		if err != nil {
			return nil, err
		}
		history = append(history, c)
	}
	return history, nil
}

// GlobalLog returns every commit ever made, in id order.
func (r *Repository) GlobalLog() ([]*commit.Commit, error) {
	ids, err := r.graph.All()
	if err != nil {
		return nil, err
	}
	commits := make([]*commit.Commit, 0, len(ids))
	for _, id := range ids {
		c, err := r.graph.Get(id)
		if err != nil {
			return nil, err
		}
		commits = append(commits, c)
	}
	return commits, nil
}

// Find returns the ids of all commits whose message is exactly message.
func (r *Repository) Find(message string) ([]cas.Hash, error) {
	commits, err := r.GlobalLog()
	if err != nil {
		return nil, err
	}
	var ids []cas.Hash
	for _, c := range commits {
		if c.Message == message {
			ids = append(ids, c.ID)
		}
	}
	if len(ids) == 0 {
		return nil, ErrNoCommitWithMessage
	}
	return ids, nil
}
