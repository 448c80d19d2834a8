package repository

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/javanhut/gitlet/internal/cas"
	"github.com/javanhut/gitlet/internal/commit"
	"github.com/javanhut/gitlet/internal/merge"
	"github.com/javanhut/gitlet/internal/refs"
)

// MergeOutcome says how a merge was resolved.
type MergeOutcome int

const (
	// AlreadyMerged: the given branch is an ancestor of HEAD; nothing changed.
	AlreadyMerged MergeOutcome = iota + 1
	// FastForwarded: HEAD was an ancestor of the given branch and moved to it.
	FastForwarded
	// Merged: a merge commit with two parents was created.
	Merged
)

// Notice returns the line printed for the outcome, if any.
func (o MergeOutcome) Notice() string {
	switch o {
	case AlreadyMerged:
		return "Given branch is an ancestor of the current branch."
	case FastForwarded:
		return "Current branch fast-forwarded."
	default:
		return ""
	}
}

// ConflictNotice is printed when a merge commit holds conflict markers.
const ConflictNotice = "Encountered a merge conflict."

// MergeResult describes a finished merge.
type MergeResult struct {
	Outcome    MergeOutcome
	Base       cas.Hash
	Commit     *commit.Commit // new HEAD commit; nil when AlreadyMerged
	Conflicted []string       // files written with conflict markers
}

// Merge merges the named branch into the current branch.
func (r *Repository) Merge(branch string) (*MergeResult, error) {
	stage, err := r.loadStage()
	if err != nil {
		return nil, err
	}
	if !stage.IsEmpty() {
		return nil, ErrUncommittedChanges
	}
	currentBranch, err := r.refs.CurrentBranch()
	if err != nil {
		return nil, err
	}
	if branch == currentBranch {
		return nil, ErrMergeWithSelf
	}
	if currentBranch == "" {
		return nil, ErrDetachedHead
	}
	given, err := r.branchCommit(branch)
	if errors.Is(err, refs.ErrBranchNotFound) {
		return nil, ErrBranchNotFound
	}
	if err != nil {
		return nil, err
	}
	current, err := r.headCommit()
	if err != nil {
		return nil, err
	}

	baseID, err := r.graph.LowestCommonAncestor(current.ID, given.ID)
	if err != nil {
		return nil, fmt.Errorf("merge %s: %w", branch, err)
	}
	r.Logger.Printf("merge %s: split point %s", branch, baseID.Short(12))

	switch baseID {
	case given.ID:
		return &MergeResult{Outcome: AlreadyMerged, Base: baseID}, nil

	case current.ID:
		if err := r.preflight(current.Files, given.Files); err != nil {
			return nil, err
		}
		if err := r.mat.Materialize(current.Files, given.Files); err != nil {
			return nil, err
		}
		if err := r.advance(given.ID); err != nil {
			return nil, err
		}
		return &MergeResult{Outcome: FastForwarded, Base: baseID, Commit: given}, nil
	}

	base, err := r.graph.Get(baseID)
	if err != nil {
		return nil, fmt.Errorf("merge %s: %w", branch, err)
	}
	resolved := merge.Resolve(base.Files, current.Files, given.Files)

	// Every file the merge writes must be checked before the first write.
	written := make(map[string]cas.Hash)
	for _, ch := range resolved.Changes {
		if ch.Action == merge.Take || ch.Action == merge.Conflict {
			written[ch.Path] = cas.Hash{}
		}
	}
	if err := r.preflight(current.Files, written); err != nil {
		return nil, err
	}

	for _, ch := range resolved.Changes {
		switch ch.Action {
		case merge.Take:
			if err := r.mat.CheckoutFile(ch.Path, *ch.Given); err != nil {
				return nil, err
			}
			stage.StageAddition(ch.Path, *ch.Given)

		case merge.Delete:
			if err := r.ws.Remove(ch.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("merge: remove %s: %w", ch.Path, err)
			}
			stage.StageRemoval(ch.Path)

		case merge.Conflict:
			id, err := r.writeConflict(ch)
			if err != nil {
				return nil, err
			}
			stage.StageAddition(ch.Path, id)
		}
	}

	message := fmt.Sprintf("Merged %s into %s.", branch, currentBranch)
	c, err := r.graph.Create(message, []cas.Hash{current.ID, given.ID}, stage.Snapshot(current.Files), r.now())
	if err != nil {
		return nil, err
	}
	if err := r.advance(c.ID); err != nil {
		return nil, err
	}
	stage.Clear()
	if err := stage.Save(r.kv); err != nil {
		return nil, err
	}

	conflicted := resolved.Conflicted()
	r.Logger.Printf("merge commit %s (%d changes, %d conflicts)", c.ID.Short(12), len(resolved.Changes), len(conflicted))
	return &MergeResult{Outcome: Merged, Base: baseID, Commit: c, Conflicted: conflicted}, nil
}

// writeConflict stores and writes the conflict-marked content of one file.
func (r *Repository) writeConflict(ch merge.Change) (cas.Hash, error) {
	cur, err := r.blobOrEmpty(ch.Current)
	if err != nil {
		return cas.Hash{}, err
	}
	giv, err := r.blobOrEmpty(ch.Given)
	if err != nil {
		return cas.Hash{}, err
	}
	content := merge.ConflictContent(cur, giv)
	id, err := r.objects.Put(content)
	if err != nil {
		return cas.Hash{}, fmt.Errorf("merge: store conflict for %s: %w", ch.Path, err)
	}
	if err := r.ws.WriteFile(ch.Path, content); err != nil {
		return cas.Hash{}, err
	}
	r.Logger.Printf("conflict in %s", ch.Path)
	return id, nil
}

func (r *Repository) blobOrEmpty(id *cas.Hash) ([]byte, error) {
	if id == nil {
		return nil, nil
	}
	data, err := r.objects.Get(*id)
	if err != nil {
		return nil, fmt.Errorf("merge: read blob %s: %w", id.Short(12), err)
	}
	return data, nil
}
