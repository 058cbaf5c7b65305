package store

import (
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// SFTPFileSystem implements FileSystem against a remote host, letting the
// same store browse a sandbox root reached over SSH.
type SFTPFileSystem struct {
	Client *sftp.Client
	*log.Logger
}

// NewSFTPFileSystem opens an SFTP session on an established SSH connection.
func NewSFTPFileSystem(sshClient *ssh.Client, logger *log.Logger) (*SFTPFileSystem, error) {
	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create sftp client: %w", err)
	}

	return &SFTPFileSystem{
		Client: sftpClient,
		Logger: logger,
	}, nil
}

// List implements FileSystem.
func (s *SFTPFileSystem) List(dirPath string, showHidden bool) ([]*Entry, error) {
	files, err := s.Client.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	entries := make([]*Entry, 0, len(files))
	for _, file := range files {
		if !showHidden && file.Name()[0] == '.' {
			continue
		}

		entries = append(entries, &Entry{
			Name:    file.Name(),
			Path:    path.Join(dirPath, file.Name()),
			IsDir:   file.IsDir(),
			Size:    file.Size(),
			Mode:    file.Mode(),
			ModTime: file.ModTime().UnixMilli(),
		})
	}
	return entries, nil
}

// Stat implements FileSystem.
func (s *SFTPFileSystem) Stat(p string) (*Entry, error) {
	info, err := s.Client.Stat(p)
	if err != nil {
		return nil, err
	}

	return &Entry{
		Name:    info.Name(),
		Path:    p,
		IsDir:   info.IsDir(),
		Size:    info.Size(),
		Mode:    info.Mode(),
		ModTime: info.ModTime().UnixMilli(),
	}, nil
}

// ReadFile implements FileSystem.
func (s *SFTPFileSystem) ReadFile(p string) ([]byte, error) {
	f, err := s.Client.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

// WriteFile implements FileSystem. The content is staged in a temporary
// file next to the target and swapped in with a POSIX rename.
func (s *SFTPFileSystem) WriteFile(p string, data []byte) error {
	tmpPath := path.Join(path.Dir(p), "."+path.Base(p)+".part")

	tmp, err := s.Client.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		s.Client.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		s.Client.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := s.Client.PosixRename(tmpPath, p); err != nil {
		s.Client.Remove(tmpPath)
		return fmt.Errorf("failed to replace target file: %w", err)
	}

	return nil
}

// OpenWrite implements FileSystem.
func (s *SFTPFileSystem) OpenWrite(p string) (io.WriteCloser, error) {
	return s.Client.Create(p)
}

// Copy implements FileSystem.
func (s *SFTPFileSystem) Copy(src, destDir, name string) error {
	return s.copyPath(src, path.Join(destDir, name))
}

func (s *SFTPFileSystem) copyPath(src, destPath string) error {
	srcInfo, err := s.Client.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}

	if srcInfo.IsDir() {
		if err := s.Client.MkdirAll(destPath); err != nil {
			return fmt.Errorf("failed to create destination directory: %w", err)
		}

		entries, err := s.Client.ReadDir(src)
		if err != nil {
			return fmt.Errorf("failed to read source directory: %w", err)
		}

		for _, entry := range entries {
			srcPath := path.Join(src, entry.Name())
			if err := s.copyPath(srcPath, path.Join(destPath, entry.Name())); err != nil {
				// cleanup on error
				s.Client.RemoveAll(destPath)
				return err
			}
		}
		return nil
	}

	srcFile, err := s.Client.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	destFile, err := s.Client.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, srcFile); err != nil {
		s.Client.Remove(destPath) // cleanup on error
		return fmt.Errorf("failed to copy file contents: %w", err)
	}

	return nil
}

// Move implements FileSystem.
func (s *SFTPFileSystem) Move(src, destDir string) error {
	destPath := path.Join(destDir, path.Base(src))

	if _, err := s.Client.Stat(destPath); err == nil {
		return fmt.Errorf("destination already exists: %s", destPath)
	}

	return s.Client.Rename(src, destPath)
}

// Rename implements FileSystem.
func (s *SFTPFileSystem) Rename(oldPath, newName string) error {
	if strings.Contains(newName, "/") {
		return fmt.Errorf("invalid file name: %s", newName)
	}

	newPath := path.Join(path.Dir(oldPath), newName)

	if _, err := s.Client.Stat(newPath); err == nil {
		return fmt.Errorf("destination already exists: %s", newPath)
	}

	return s.Client.Rename(oldPath, newPath)
}

// Delete implements FileSystem.
func (s *SFTPFileSystem) Delete(p string) error {
	info, err := s.Client.Stat(p)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}

	if info.IsDir() {
		return s.Client.RemoveAll(p)
	}
	return s.Client.Remove(p)
}

// Mkdir implements FileSystem.
func (s *SFTPFileSystem) Mkdir(parentPath, name string) error {
	newPath := path.Join(parentPath, name)

	if _, err := s.Client.Stat(newPath); err == nil {
		return fmt.Errorf("destination already exists: %s", newPath)
	}

	return s.Client.Mkdir(newPath)
}

// Close tears down the SFTP session.
func (s *SFTPFileSystem) Close() error {
	return s.Client.Close()
}
