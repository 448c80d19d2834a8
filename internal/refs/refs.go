package refs

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/javanhut/gitlet/internal/cas"
	"github.com/javanhut/gitlet/internal/store"
)

// Keys used in the backing store.
const (
	headKey     = "HEAD"
	branchKey   = "branch"
	headsPrefix = "refs/heads/"
)

var (
	ErrBranchNotFound            = errors.New("branch not found")
	ErrBranchExists              = errors.New("branch already exists")
	ErrCannotDeleteCurrentBranch = errors.New("cannot delete the current branch")
	ErrInvalidBranchName         = errors.New("invalid branch name")
	ErrNoHead                    = errors.New("HEAD is not set")
)

// RefStore maps branch names to commit ids and tracks the current branch
// and HEAD commit.
type RefStore struct {
	kv store.KV
}

// NewRefStore creates a RefStore persisted in kv.
func NewRefStore(kv store.KV) *RefStore {
	return &RefStore{kv: kv}
}

func branchPath(name string) string {
	return headsPrefix + name
}

// ValidateBranchName rejects names that cannot be stored as a ref.
func ValidateBranchName(name string) error {
	if strings.TrimSpace(name) != name || name == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBranchName, name)
	}
	clean := path.Clean(name)
	if clean != name || strings.HasPrefix(name, "/") || strings.HasPrefix(name, ".") ||
		strings.Contains(name, "..") || strings.ContainsAny(name, "\n\r\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidBranchName, name)
	}
	return nil
}

// HasBranch reports whether a branch named name exists.
func (rs *RefStore) HasBranch(name string) (bool, error) {
	if ValidateBranchName(name) != nil {
		return false, nil
	}
	return store.Has(rs.kv, branchPath(name))
}

// CreateBranch creates a branch pointing at id.
func (rs *RefStore) CreateBranch(name string, id cas.Hash) error {
	if err := ValidateBranchName(name); err != nil {
		return err
	}
	exists, err := rs.HasBranch(name)
	if err != nil {
		return fmt.Errorf("create branch %s: %w", name, err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrBranchExists, name)
	}
	// A ref is a file under refs/heads, so a branch cannot also be a
	// directory of other branches.
	branches, err := rs.Branches()
	if err != nil {
		return fmt.Errorf("create branch %s: %w", name, err)
	}
	for _, b := range branches {
		if strings.HasPrefix(name, b+"/") || strings.HasPrefix(b, name+"/") {
			return fmt.Errorf("%w: %q conflicts with branch %q", ErrInvalidBranchName, name, b)
		}
	}
	return rs.writeHash(branchPath(name), id)
}

// DeleteBranch removes the branch pointer. Commits are left untouched.
func (rs *RefStore) DeleteBranch(name string) error {
	exists, err := rs.HasBranch(name)
	if err != nil {
		return fmt.Errorf("delete branch %s: %w", name, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrBranchNotFound, name)
	}
	current, err := rs.CurrentBranch()
	if err != nil {
		return err
	}
	if current == name {
		return fmt.Errorf("%w: %s", ErrCannotDeleteCurrentBranch, name)
	}
	return rs.kv.Delete(branchPath(name))
}

// BranchTip returns the commit a branch points at.
func (rs *RefStore) BranchTip(name string) (cas.Hash, error) {
	if err := ValidateBranchName(name); err != nil {
		return cas.Hash{}, fmt.Errorf("%w: %s", ErrBranchNotFound, name)
	}
	h, err := rs.readHash(branchPath(name))
	if errors.Is(err, store.ErrNotFound) {
		return cas.Hash{}, fmt.Errorf("%w: %s", ErrBranchNotFound, name)
	}
	return h, err
}

// SetBranchTip moves an existing branch to id.
func (rs *RefStore) SetBranchTip(name string, id cas.Hash) error {
	exists, err := rs.HasBranch(name)
	if err != nil {
		return fmt.Errorf("set branch %s: %w", name, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrBranchNotFound, name)
	}
	return rs.writeHash(branchPath(name), id)
}

// Branches lists branch names in lexicographic order.
func (rs *RefStore) Branches() ([]string, error) {
	keys, err := rs.kv.List(headsPrefix)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, strings.TrimPrefix(k, headsPrefix))
	}
	return names, nil
}

// CurrentBranch returns the name of the attached branch, or "" when HEAD is
// detached.
func (rs *RefStore) CurrentBranch() (string, error) {
	data, err := rs.kv.Get(branchKey)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read current branch: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// SetCurrentBranch attaches HEAD to an existing branch.
func (rs *RefStore) SetCurrentBranch(name string) error {
	exists, err := rs.HasBranch(name)
	if err != nil {
		return fmt.Errorf("set current branch: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrBranchNotFound, name)
	}
	return rs.kv.Put(branchKey, []byte(name+"\n"))
}

// Detach leaves HEAD pointing at its commit without a current branch.
func (rs *RefStore) Detach() error {
	return rs.kv.Delete(branchKey)
}

// Head returns the commit id HEAD points at.
func (rs *RefStore) Head() (cas.Hash, error) {
	h, err := rs.readHash(headKey)
	if errors.Is(err, store.ErrNotFound) {
		return cas.Hash{}, ErrNoHead
	}
	return h, err
}

// SetHead points HEAD at id.
func (rs *RefStore) SetHead(id cas.Hash) error {
	return rs.writeHash(headKey, id)
}

func (rs *RefStore) readHash(key string) (cas.Hash, error) {
	data, err := rs.kv.Get(key)
	if err != nil {
		return cas.Hash{}, err
	}
	h, err := cas.ParseHash(strings.TrimSpace(string(data)))
	if err != nil {
		return cas.Hash{}, fmt.Errorf("read %s: %w", key, err)
	}
	return h, nil
}

func (rs *RefStore) writeHash(key string, id cas.Hash) error {
	if err := rs.kv.Put(key, []byte(id.String()+"\n")); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
