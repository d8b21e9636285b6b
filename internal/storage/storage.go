// Package storage provides a BoltDB-backed artifact store.
//
// Artifacts are kept in a single bucket keyed by artifact name ("heart",
// "heart_features", ...), so a deployment can ship one database file instead
// of a models directory. The store satisfies ports.ArtifactStore and is safe
// for concurrent use.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.etcd.io/bbolt"

	"disease-predictor/internal/artifact"
)

const artifactsBucket = "artifacts" // Bucket name for artifact blobs

// DBFile is the database file name created under the data path.
const DBFile = "artifacts.db"

// Store persists artifacts in BoltDB.
type Store struct {
	db *bbolt.DB // BoltDB database instance
}

// New opens (or creates) the artifact database under dataPath.
func New(dataPath string) (*Store, error) {
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	dbPath := filepath.Join(dataPath, DBFile)

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(artifactsBucket)); err != nil {
			return fmt.Errorf("create artifacts bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Put stores data under name, replacing any previous value.
func (s *Store) Put(name string, data []byte) error {
	if name == "" {
		return errors.New("artifact name is empty")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(artifactsBucket))
		return b.Put([]byte(name), data)
	})
}

// Open returns a copy of the artifact stored under name.
func (s *Store) Open(name string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(artifactsBucket))
		v := b.Get([]byte(name))
		if v == nil {
			return fmt.Errorf("artifact %s not found in %s: %w", name, s.db.Path(), fs.ErrNotExist)
		}
		// Values are only valid for the life of the transaction.
		out = make([]byte, len(v))
		copy(out, v)
		return nil
	})
	return out, err
}

// List returns the stored artifact names in key order.
func (s *Store) List() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(artifactsBucket)).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

// ImportDir copies every artifact file (see artifact.Extensions) from dir
// into the store, keyed by file name without extension. When two files share
// a base name the one with the earlier extension wins. It returns the
// imported names.
func (s *Store) ImportDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read artifact dir: %w", err)
	}

	picked := make(map[string]string)
	rank := make(map[string]int)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		r := extRank(ext)
		if r < 0 {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ext)
		if prev, ok := rank[name]; ok && prev <= r {
			continue
		}
		picked[name] = filepath.Join(dir, e.Name())
		rank[name] = r
	}

	names := make([]string, 0, len(picked))
	for name := range picked {
		names = append(names, name)
	}
	sort.Strings(names)

	err = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(artifactsBucket))
		for _, name := range names {
			data, err := os.ReadFile(picked[name])
			if err != nil {
				return fmt.Errorf("read %s: %w", picked[name], err)
			}
			if err := b.Put([]byte(name), data); err != nil {
				return fmt.Errorf("put %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("dir", dir).Int("count", len(names)).Msg("artifacts imported")
	return names, nil
}

func extRank(ext string) int {
	for i, e := range artifact.Extensions {
		if e == ext {
			return i
		}
	}
	return -1
}
