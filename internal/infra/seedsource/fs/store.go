// Package fs implements a seed source over a local directory.
package fs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/juju/errors"

	"recordhub/internal/infra/seedsource"
)

// Store maps keys to files under root.
type Store struct {
	root string
}

// New returns a store rooted at root, creating the directory if needed.
func New(root string) (*Store, error) {
	if root == "" {
		root = "./seed"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Annotatef(err, "create seed root %s", root)
	}
	return &Store{root: root}, nil
}

// Driver implements seedsource.Source.
func (s *Store) Driver() seedsource.Driver { return seedsource.DriverFilesystem }

func (s *Store) pathFor(key string) (string, error) {
	clean, err := seedsource.CleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// Open implements seedsource.Source.
func (s *Store) Open(ctx context.Context, key string) (seedsource.Info, io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return seedsource.Info{}, nil, err
	}
	p, err := s.pathFor(key)
	if err != nil {
		return seedsource.Info{}, nil, err
	}
	file, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return seedsource.Info{}, nil, errors.NotFoundf("seed %q", key)
	}
	if err != nil {
		return seedsource.Info{}, nil, errors.Trace(err)
	}
	st, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return seedsource.Info{}, nil, errors.Trace(err)
	}
	if st.IsDir() {
		_ = file.Close()
		return seedsource.Info{}, nil, errors.NotValidf("seed %q is a directory", key)
	}
	return s.info(key, st), file, nil
}

// Put writes a new file atomically. Existing keys are rejected.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, contentType string) (seedsource.Info, error) {
	if err := ctx.Err(); err != nil {
		return seedsource.Info{}, err
	}
	p, err := s.pathFor(key)
	if err != nil {
		return seedsource.Info{}, err
	}
	if _, err := os.Stat(p); err == nil {
		return seedsource.Info{}, errors.AlreadyExistsf("seed %q", key)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return seedsource.Info{}, errors.Trace(err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".tmp-*")
	if err != nil {
		return seedsource.Info{}, errors.Trace(err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, h), r); err != nil {
		_ = tmp.Close()
		return seedsource.Info{}, errors.Trace(err)
	}
	if err := tmp.Close(); err != nil {
		return seedsource.Info{}, errors.Trace(err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return seedsource.Info{}, errors.Trace(err)
	}
	st, err := os.Stat(p)
	if err != nil {
		return seedsource.Info{}, errors.Trace(err)
	}
	info := s.info(key, st)
	if contentType != "" {
		info.ContentType = contentType
	}
	info.ETag = hex.EncodeToString(h.Sum(nil))
	return info, nil
}

// List returns files whose key starts with prefix, sorted by key.
func (s *Store) List(ctx context.Context, prefix string) ([]seedsource.Info, error) {
	var infos []seedsource.Info
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		st, err := d.Info()
		if err != nil {
			return err
		}
		infos = append(infos, s.info(key, st))
		return nil
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func (s *Store) info(key string, st os.FileInfo) seedsource.Info {
	return seedsource.Info{
		Key:          key,
		Size:         st.Size(),
		ContentType:  seedsource.ContentTypeFor(key),
		LastModified: st.ModTime().UTC(),
	}
}
