package repository

import (
	"slices"
)

// ModificationKind tells how an unstaged change differs from what would be
// committed.
type ModificationKind string

const (
	Modified ModificationKind = "modified"
	Deleted  ModificationKind = "deleted"
)

// Modification is a working file change that is not staged.
type Modification struct {
	Name string
	Kind ModificationKind
}

// Status is a snapshot of branches, the staging area and the working
// directory. Every list is sorted.
type Status struct {
	Branches      []string
	CurrentBranch string
	Staged        []string
	Removed       []string
	Modifications []Modification
	Untracked     []string
}

// Status compares HEAD, the staging area and the working directory.
//
// A change is unstaged when a tracked file was edited or deleted without
// staging it, or when a staged file was edited or deleted afterwards. A file
// is untracked when it is in the working directory but neither staged for
// addition nor tracked by HEAD; a file staged for removal and then re-created
// is untracked too.
func (r *Repository) Status() (*Status, error) {
	branches, err := r.refs.Branches()
	if err != nil {
		return nil, err
	}
	current, err := r.refs.CurrentBranch()
	if err != nil {
		return nil, err
	}
	head, err := r.headCommit()
	if err != nil {
		return nil, err
	}
	stage, err := r.loadStage()
	if err != nil {
		return nil, err
	}
	working, err := r.ws.Scan()
	if err != nil {
		return nil, err
	}

	st := &Status{
		Branches:      branches,
		CurrentBranch: current,
		Staged:        stage.AddedFiles(),
		Removed:       stage.RemovedFiles(),
	}

	for _, name := range stage.AddedFiles() {
		wid, ok := working[name]
		switch {
		case !ok:
			st.Modifications = append(st.Modifications, Modification{Name: name, Kind: Deleted})
		case wid != stage.Additions[name]:
			st.Modifications = append(st.Modifications, Modification{Name: name, Kind: Modified})
		}
	}
	for name, tracked := range head.Files {
		if _, staged := stage.Additions[name]; staged {
			continue
		}
		if _, removed := stage.Removals[name]; removed {
			continue
		}
		wid, ok := working[name]
		switch {
		case !ok:
			st.Modifications = append(st.Modifications, Modification{Name: name, Kind: Deleted})
		case wid != tracked:
			st.Modifications = append(st.Modifications, Modification{Name: name, Kind: Modified})
		}
	}
	slices.SortFunc(st.Modifications, func(a, b Modification) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})

	for name := range working {
		_, staged := stage.Additions[name]
		_, tracked := head.Files[name]
		_, removed := stage.Removals[name]
		if (!staged && !tracked) || removed {
			st.Untracked = append(st.Untracked, name)
		}
	}
	slices.Sort(st.Untracked)

	return st, nil
}
