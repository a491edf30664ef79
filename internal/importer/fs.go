package importer

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FileSystem is the file access the adapter needs. Abs must return the key
// that Stat and ReadFile accept.
type FileSystem interface {
	Abs(name string) (string, error)
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
}

// OS returns the host filesystem.
func OS() FileSystem {
	return osFS{}
}

type osFS struct{}

func (osFS) Abs(name string) (string, error)       { return filepath.Abs(name) }
func (osFS) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }
func (osFS) ReadFile(name string) ([]byte, error)  { return os.ReadFile(name) }

// FromFS adapts an fs.FS. Names are cleaned and made relative to its root.
func FromFS(fsys fs.FS) FileSystem {
	return subFS{fsys: fsys}
}

type subFS struct {
	fsys fs.FS
}

func (s subFS) Abs(name string) (string, error) {
	clean := strings.TrimPrefix(path.Clean(filepath.ToSlash(name)), "/")
	if clean == "" {
		clean = "."
	}
	if !fs.ValidPath(clean) {
		return "", fmt.Errorf("invalid path %q: %w", name, fs.ErrInvalid)
	}
	return clean, nil
}

func (s subFS) Stat(name string) (fs.FileInfo, error) {
	return fs.Stat(s.fsys, name)
}

func (s subFS) ReadFile(name string) ([]byte, error) {
	return fs.ReadFile(s.fsys, name)
}
