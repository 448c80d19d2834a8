// Package repository orchestrates the object store, refs, staging area,
// commit graph and merge engine into the gitlet commands.
//
// A Repository is opened for a single command: Open takes the repository
// lock, the command runs, and Close releases it.
package repository

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/javanhut/gitlet/internal/cas"
	"github.com/javanhut/gitlet/internal/commit"
	"github.com/javanhut/gitlet/internal/config"
	"github.com/javanhut/gitlet/internal/lock"
	"github.com/javanhut/gitlet/internal/refs"
	"github.com/javanhut/gitlet/internal/staging"
	"github.com/javanhut/gitlet/internal/store"
	"github.com/javanhut/gitlet/internal/workspace"
)

const (
	objectsDir = "objects"
	boltFile   = "gitlet.db"

	// InitialMessage is the message of the root commit.
	InitialMessage = "initial commit"
)

// Options tune how a repository is created or opened.
type Options struct {
	// Config seeds the config file at Init. Ignored by Open.
	Config *config.Config
	// Logger receives diagnostics; nil discards them.
	Logger *log.Logger
	// Now returns the commit time; nil means time.Now.
	Now func() time.Time
	// LockWait bounds how long Open waits for another command to finish.
	LockWait time.Duration
}

// Repository is an opened gitlet repository.
type Repository struct {
	Root       string
	ControlDir string
	FS         afero.Fs
	Config     *config.Config
	Logger     *log.Logger

	now     func() time.Time
	kv      store.KV
	objects *cas.ObjectStore
	refs    *refs.RefStore
	graph   *commit.Graph
	ws      *workspace.Workspace
	mat     *workspace.Materializer
	lock    *lock.Lock
	closers []io.Closer
}

// IsRepository reports whether root holds a control directory.
func IsRepository(afs afero.Fs, root string) (bool, error) {
	info, err := afs.Stat(filepath.Join(root, workspace.ControlDir))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// Init creates a repository in root with a root commit on the default
// branch and returns it opened.
func Init(afs afero.Fs, root string, opts Options) (*Repository, error) {
	exists, err := IsRepository(afs, root)
	if err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	if exists {
		return nil, ErrAlreadyInitialized
	}

	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, translate(err)
	}
	controlDir := filepath.Join(root, workspace.ControlDir)
	if err := config.Save(afs, controlDir, cfg); err != nil {
		afs.RemoveAll(controlDir)
		return nil, fmt.Errorf("init: %w", err)
	}

	r, err := open(afs, root, cfg, opts)
	if err != nil {
		if !errors.Is(err, lock.ErrLocked) {
			afs.RemoveAll(controlDir)
		}
		return nil, err
	}
	if err := r.seed(); err != nil {
		r.Close()
		afs.RemoveAll(controlDir)
		return nil, fmt.Errorf("init: %w", err)
	}

	r.Logger.Printf("initialized repository in %s (storage=%s, compression=%s)",
		controlDir, cfg.Core.Storage, cfg.Core.Compression)
	return r, nil
}

// seed writes the root commit and points the default branch, HEAD and an
// empty staging area at it.
func (r *Repository) seed() error {
	rootCommit, err := r.graph.Create(InitialMessage, nil, nil, time.Unix(0, 0).UTC())
	if err != nil {
		return err
	}
	branch := r.Config.Core.DefaultBranch
	if err := r.refs.CreateBranch(branch, rootCommit.ID); err != nil {
		return translate(err)
	}
	if err := r.refs.SetCurrentBranch(branch); err != nil {
		return err
	}
	if err := r.refs.SetHead(rootCommit.ID); err != nil {
		return err
	}
	return staging.New().Save(r.kv)
}

// Open opens the repository in root.
func Open(afs afero.Fs, root string, opts Options) (*Repository, error) {
	exists, err := IsRepository(afs, root)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if !exists {
		return nil, ErrNotInitialized
	}
	cfg, err := config.Load(afs, filepath.Join(root, workspace.ControlDir))
	if err != nil {
		return nil, err
	}
	return open(afs, root, cfg, opts)
}

func open(afs afero.Fs, root string, cfg *config.Config, opts Options) (*Repository, error) {
	r := &Repository{
		Root:       root,
		ControlDir: filepath.Join(root, workspace.ControlDir),
		FS:         afs,
		Config:     cfg,
		Logger:     opts.Logger,
		now:        opts.Now,
	}
	if r.Logger == nil {
		r.Logger = log.New(io.Discard, "", 0)
	}
	if r.now == nil {
		r.now = time.Now
	}

	// Locks are kernel objects; an in-memory filesystem has no other users.
	if _, onDisk := afs.(*afero.OsFs); onDisk {
		l, err := lock.Acquire(filepath.Join(r.ControlDir, lock.FileName), opts.LockWait)
		if err != nil {
			return nil, err
		}
		r.lock = l
	}

	if err := r.openStores(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repository) openStores() error {
	switch r.Config.Core.Storage {
	case config.StorageBolt:
		if _, onDisk := r.FS.(*afero.OsFs); !onDisk {
			return fmt.Errorf("open: %s storage needs the OS filesystem", config.StorageBolt)
		}
		db, err := store.OpenBolt(filepath.Join(r.ControlDir, boltFile))
		if err != nil {
			return fmt.Errorf("open: %w", err)
		}
		r.kv = db
		r.closers = append(r.closers, db)
	default:
		kv, err := store.NewFileKV(r.FS, r.ControlDir)
		if err != nil {
			return fmt.Errorf("open: %w", err)
		}
		r.kv = kv
	}

	backend, err := cas.NewFileCAS(r.FS, filepath.Join(r.ControlDir, objectsDir), cas.Codec(r.Config.Core.Compression))
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	r.objects = cas.NewObjectStore(backend)
	r.refs = refs.NewRefStore(r.kv)
	r.graph = commit.NewGraph(r.objects, r.kv)
	r.ws = workspace.New(r.FS, r.Root)
	r.mat = workspace.NewMaterializer(r.objects, r.ws, r.Logger)
	return nil
}

// Close releases the stores and the repository lock.
func (r *Repository) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c.Close())
	}
	r.closers = nil
	if r.lock != nil {
		errs = append(errs, r.lock.Release())
		r.lock = nil
	}
	return errors.Join(errs...)
}

// ConfigValue returns the setting stored under a section.field key.
func (r *Repository) ConfigValue(key string) (string, error) {
	v, err := r.Config.GetValue(key)
	if err != nil {
		return "", translate(err)
	}
	return v, nil
}

// SetConfigValue changes one setting and writes the config file. The
// in-memory config is left untouched when the value is rejected.
func (r *Repository) SetConfigValue(key, value string) error {
	cfg := *r.Config
	if err := cfg.SetValue(key, value); err != nil {
		return translate(err)
	}
	if err := config.Save(r.FS, r.ControlDir, &cfg); err != nil {
		return err
	}
	r.Config = &cfg
	return nil
}

// headCommit returns the commit HEAD points at.
func (r *Repository) headCommit() (*commit.Commit, error) {
	id, err := r.refs.Head()
	if err != nil {
		return nil, fmt.Errorf("read HEAD: %w", err)
	}
	c, err := r.graph.Get(id)
	if err != nil {
		return nil, fmt.Errorf("read HEAD commit: %w", err)
	}
	return c, nil
}

// resolveCommit expands a user supplied id or prefix.
func (r *Repository) resolveCommit(prefix string) (*commit.Commit, error) {
	id, err := r.graph.Resolve(prefix)
	if errors.Is(err, commit.ErrCommitNotFound) {
		return nil, fmt.Errorf("%w: %w", ErrCommitNotFound, err)
	}
	if err != nil {
		return nil, translate(err)
	}
	return r.graph.Get(id)
}

func (r *Repository) loadStage() (*staging.Area, error) {
	return staging.Load(r.kv)
}

// advance moves HEAD, and the current branch if attached, to id.
func (r *Repository) advance(id cas.Hash) error {
	branch, err := r.refs.CurrentBranch()
	if err != nil {
		return err
	}
	if branch != "" {
		if err := r.refs.SetBranchTip(branch, id); err != nil {
			return err
		}
	}
	if err := r.refs.SetHead(id); err != nil {
		return err
	}
	r.Logger.Printf("HEAD -> %s (branch %q)", id.Short(12), branch)
	return nil
}

// preflight fails if writing target over current would clobber an untracked
// working file.
func (r *Repository) preflight(current, target map[string]cas.Hash) error {
	blocked, err := r.ws.UntrackedInTheWay(current, target)
	if err != nil {
		return err
	}
	if len(blocked) > 0 {
		r.Logger.Printf("untracked files in the way: %v", blocked)
		return ErrUntrackedFileConflict
	}
	return nil
}
