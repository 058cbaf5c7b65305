package store

import (
	"errors"
	"path"
	"strings"
	"sync"
	"unicode/utf8"
)

// DefaultFolderName is used by CreateFolder when no name is given.
const DefaultFolderName = "New Folder"

// copySuffix is appended to a duplicate's name until it no longer
// collides with an existing entry.
const copySuffix = " copy"

// Store is the single source of truth for "what files exist where" within
// one sandbox root, and the sole executor of file-mutating actions.
//
// Every mutating operation performs one filesystem action and then re-reads
// the current directory wholesale; the in-memory entry set is never patched
// incrementally. On failure no reload happens and the previous listing
// stands, so the caller's view always reflects a directory state that
// physically existed.
//
// All operations serialize on one mutex: the whole store is a single
// critical section per call. There is no background work and no retry.
type Store struct {
	mu sync.Mutex
	fs FileSystem

	root    string
	dir     string
	filter  string
	entries []*Entry

	// ShowHidden controls whether dotfiles appear in listings. Set it
	// before the first read; the default shows everything.
	ShowHidden bool
}

// New creates a store over fs rooted at root. The store points nowhere
// until SetRoot is called.
func New(fs FileSystem, root string) *Store {
	return &Store{
		fs:         fs,
		root:       root,
		ShowHidden: true,
	}
}

// Root returns the sandbox root the store was created with.
func (s *Store) Root() string { return s.root }

// Dir returns the directory the store currently points at.
func (s *Store) Dir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir
}

// Listing returns a snapshot of the current directory's entries and filter.
func (s *Store) Listing() *Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// SetRoot points the store at the sandbox root and reads it.
func (s *Store) SetRoot() (*Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readDir("set_root", s.root)
}

// Enter descends into the given directory entry and reads it. The parent's
// entries are discarded; navigating back re-reads on demand.
func (s *Store) Enter(e *Entry) (*Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !e.IsDir {
		return nil, opErr(ReadError, "enter", e.Path, errors.New("not a directory"))
	}
	return s.readDir("enter", e.Path)
}

// Refresh re-reads the current directory.
func (s *Store) Refresh() (*Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readDir("refresh", s.dir)
}

// SetFilter updates the search filter and recomputes the visible set from
// the entries already in memory; no re-read happens.
func (s *Store) SetFilter(text string) *Listing {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filter = text
	return s.snapshot()
}

// Read returns the full text content of a file entry.
func (s *Store) Read(e *Entry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.IsDir {
		return "", opErr(ReadError, "read", e.Path, errors.New("is a directory"))
	}

	data, err := s.fs.ReadFile(e.Path)
	if err != nil {
		return "", opErr(ReadError, "read", e.Path, err)
	}
	if !utf8.Valid(data) {
		return "", opErr(DecodeError, "read", e.Path, errors.New("content is not valid text"))
	}
	return string(data), nil
}

// Write replaces the file's content atomically: the file either holds the
// new content in full or is left unchanged. The entry set of the current
// directory does not change, so no reload happens.
func (s *Store) Write(e *Entry, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.IsDir {
		return opErr(WriteError, "write", e.Path, errors.New("is a directory"))
	}

	if err := s.fs.WriteFile(e.Path, []byte(content)); err != nil {
		return opErr(WriteError, "write", e.Path, err)
	}
	return nil
}

// Copy duplicates the entry within its parent directory. A name collision
// is resolved by appending " copy" until the name is free.
func (s *Store) Copy(e *Entry) (*Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent := path.Dir(e.Path)
	name := e.Name + copySuffix
	for s.exists(path.Join(parent, name)) {
		name += copySuffix
	}

	if err := s.fs.Copy(e.Path, parent, name); err != nil {
		return nil, opErr(IOError, "copy", e.Path, err)
	}
	return s.readDir("copy", s.dir)
}

// Move relocates the entry into destDir, keeping its name. An empty
// destDir moves the entry to the root.
func (s *Store) Move(e *Entry, destDir string) (*Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if destDir == "" {
		destDir = s.root
	}

	if err := s.fs.Move(e.Path, destDir); err != nil {
		return nil, opErr(IOError, "move", e.Path, err)
	}
	return s.readDir("move", s.dir)
}

// Rename gives the entry a new leaf name within its parent directory.
func (s *Store) Rename(e *Entry, newName string) (*Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(newName) == "" {
		return nil, opErr(IOError, "rename", e.Path, errors.New("empty name"))
	}

	if err := s.fs.Rename(e.Path, newName); err != nil {
		return nil, opErr(IOError, "rename", e.Path, err)
	}
	return s.readDir("rename", s.dir)
}

// Delete removes the entry permanently, recursively for directories.
func (s *Store) Delete(e *Entry) (*Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.Delete(e.Path); err != nil {
		return nil, opErr(IOError, "delete", e.Path, err)
	}
	return s.readDir("delete", s.dir)
}

// CreateFolder creates an empty directory with the given name under the
// current directory. An existing entry with the same name fails the call
// and is left untouched.
func (s *Store) CreateFolder(name string) (*Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(name) == "" {
		name = DefaultFolderName
	}

	if err := s.fs.Mkdir(s.dir, name); err != nil {
		return nil, opErr(IOError, "create_folder", path.Join(s.dir, name), err)
	}
	return s.readDir("create_folder", s.dir)
}

// Find looks a path up in the current listing snapshot.
func (s *Store) Find(path string) (*Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.Path == path {
			return e, true
		}
	}
	return nil, false
}

// FS exposes the backing filesystem for collaborators that stream content
// past the listing model, such as downloads and uploads.
func (s *Store) FS() FileSystem { return s.fs }

func (s *Store) readDir(op, dir string) (*Listing, error) {
	entries, err := s.fs.List(dir, s.ShowHidden)
	if err != nil {
		return nil, opErr(ReadError, op, dir, err)
	}

	s.dir = dir
	s.entries = entries
	return s.snapshot(), nil
}

func (s *Store) snapshot() *Listing {
	entries := make([]*Entry, len(s.entries))
	copy(entries, s.entries)

	return &Listing{
		Dir:     s.dir,
		Filter:  s.filter,
		Entries: entries,
	}
}

func (s *Store) exists(p string) bool {
	_, err := s.fs.Stat(p)
	return err == nil
}
