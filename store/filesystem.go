package store

import "io"

// FileSystem defines the primitives the store needs from a volume.
// Both local and remote implementations conform to this interface.
type FileSystem interface {
	// List returns the directory entries at the given path. The showHidden
	// flag indicates whether dotfiles should be included.
	List(path string, showHidden bool) ([]*Entry, error)

	// Stat returns the entry for a single path.
	Stat(path string) (*Entry, error)

	// ReadFile returns the full content of the file at path.
	ReadFile(path string) ([]byte, error)

	// WriteFile replaces the content of the file at path atomically:
	// the file either holds the new content in full or is left unchanged.
	WriteFile(path string, data []byte) error

	// OpenWrite opens the file at path for streaming writes, creating it
	// if needed and truncating it otherwise.
	OpenWrite(path string) (io.WriteCloser, error)

	// Copy duplicates the file or directory at src into the destDir
	// directory under the given leaf name.
	Copy(src, destDir, name string) error

	// Move relocates the file or directory at src into destDir, keeping
	// its leaf name.
	Move(src, destDir string) error

	// Rename relocates the file or directory at oldPath to newName within
	// the same parent directory.
	Rename(oldPath, newName string) error

	// Delete removes the file or directory at path, recursively for
	// directories.
	Delete(path string) error

	// Mkdir creates a new directory with the given name under parentPath.
	Mkdir(parentPath, name string) error
}
