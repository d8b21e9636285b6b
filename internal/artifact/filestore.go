// Package artifact reads per-domain model artifacts from a directory.
package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Extensions are tried in order when resolving an artifact name to a file.
var Extensions = []string{".json", ".yaml", ".yml"}

// FileStore serves artifacts from a flat directory such as models/.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir. The directory is not checked
// until the first Open so a missing directory surfaces as a missing artifact.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the root directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Open returns the content of the first <dir>/<name><ext> that exists.
func (s *FileStore) Open(name string) ([]byte, error) {
	if name == "" || name != filepath.Base(name) {
		return nil, fmt.Errorf("invalid artifact name %q", name)
	}

	for _, ext := range Extensions {
		path := filepath.Join(s.dir, name+ext)
		data, err := os.ReadFile(path)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read artifact %s: %w", path, err)
		}
	}
	return nil, fmt.Errorf("artifact %s not found in %s: %w", name, s.dir, fs.ErrNotExist)
}
