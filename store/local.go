package store

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// LocalFileSystem implements FileSystem on top of the local volume.
type LocalFileSystem struct {
	*log.Logger
}

func NewLocalFileSystem(logger *log.Logger) *LocalFileSystem {
	return &LocalFileSystem{Logger: logger}
}

// List implements FileSystem.
func (l *LocalFileSystem) List(dirPath string, showHidden bool) ([]*Entry, error) {
	dirEntries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}

	entries := make([]*Entry, 0, len(dirEntries))

	for _, dirEntry := range dirEntries {
		info, err := dirEntry.Info()
		if err != nil {
			l.logf("error getting file info: %v", err)
			continue
		}
		if !showHidden && dirEntry.Name()[0] == '.' {
			continue
		}
		entries = append(entries, &Entry{
			Name:    dirEntry.Name(),
			Path:    filepath.Join(dirPath, dirEntry.Name()),
			IsDir:   dirEntry.IsDir(),
			Size:    info.Size(),
			Mode:    info.Mode(),
			ModTime: info.ModTime().UnixMilli(),
		})
	}

	return entries, nil
}

// Stat implements FileSystem.
func (l *LocalFileSystem) Stat(path string) (*Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	return &Entry{
		Name:    info.Name(),
		Path:    path,
		IsDir:   info.IsDir(),
		Size:    info.Size(),
		Mode:    info.Mode(),
		ModTime: info.ModTime().UnixMilli(),
	}, nil
}

// ReadFile implements FileSystem.
func (l *LocalFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile implements FileSystem. The content lands in a temporary file
// in the same directory which then replaces the target, so the target is
// never observed half-written.
func (l *LocalFileSystem) WriteFile(path string, data []byte) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmp.Name(), mode); err != nil {
		l.logf("error preserving file mode for %s: %v", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace target file: %w", err)
	}

	return nil
}

// OpenWrite implements FileSystem.
func (l *LocalFileSystem) OpenWrite(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
}

// Copy implements FileSystem.
func (l *LocalFileSystem) Copy(src, destDir, name string) error {
	return l.copyPath(src, filepath.Join(destDir, name))
}

func (l *LocalFileSystem) copyPath(src, destPath string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}

	if srcInfo.IsDir() {
		if err := os.MkdirAll(destPath, srcInfo.Mode()); err != nil {
			return fmt.Errorf("failed to create destination directory: %w", err)
		}

		entries, err := os.ReadDir(src)
		if err != nil {
			return fmt.Errorf("failed to read source directory: %w", err)
		}

		for _, entry := range entries {
			srcPath := filepath.Join(src, entry.Name())
			if err := l.copyPath(srcPath, filepath.Join(destPath, entry.Name())); err != nil {
				// cleanup on error
				os.RemoveAll(destPath)
				return err
			}
		}
		return nil
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	destFile, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destFile.Close()

	if _, err = io.Copy(destFile, srcFile); err != nil {
		os.Remove(destPath) // cleanup on error
		return fmt.Errorf("failed to copy file contents: %w", err)
	}

	return nil
}

// Move implements FileSystem.
func (l *LocalFileSystem) Move(src, destDir string) error {
	destPath := filepath.Join(destDir, filepath.Base(src))

	if _, err := os.Stat(destPath); err == nil {
		return fmt.Errorf("destination already exists: %s", destPath)
	}

	return os.Rename(src, destPath)
}

// Rename implements FileSystem.
func (l *LocalFileSystem) Rename(oldPath, newName string) error {
	if strings.ContainsRune(newName, os.PathSeparator) {
		return fmt.Errorf("invalid file name: %s", newName)
	}

	newPath := filepath.Join(filepath.Dir(oldPath), newName)

	if _, err := os.Stat(newPath); err == nil {
		return fmt.Errorf("destination already exists: %s", newPath)
	}

	return os.Rename(oldPath, newPath)
}

// Delete implements FileSystem.
func (l *LocalFileSystem) Delete(path string) error {
	return os.RemoveAll(path)
}

// Mkdir implements FileSystem.
func (l *LocalFileSystem) Mkdir(parentPath, name string) error {
	newPath := filepath.Join(parentPath, name)

	if _, err := os.Stat(newPath); err == nil {
		return fmt.Errorf("destination already exists: %s", newPath)
	}

	return os.Mkdir(newPath, 0750)
}

func (l *LocalFileSystem) logf(format string, v ...any) {
	if l.Logger != nil {
		l.Printf(format, v...)
	}
}
