// Package memory implements an in-process seed source for tests and demos.
package memory

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/juju/errors"

	"recordhub/internal/infra/seedsource"
)

type entry struct {
	info seedsource.Info
	data []byte
}

// Store keeps seed documents in a map.
type Store struct {
	mu   sync.RWMutex
	objs map[string]entry
}

// New returns an empty store.
func New() *Store { return &Store{objs: make(map[string]entry)} }

// Driver implements seedsource.Source.
func (s *Store) Driver() seedsource.Driver { return seedsource.DriverMemory }

// Open implements seedsource.Source.
func (s *Store) Open(_ context.Context, key string) (seedsource.Info, io.ReadCloser, error) {
	clean, err := seedsource.CleanKey(key)
	if err != nil {
		return seedsource.Info{}, nil, err
	}
	s.mu.RLock()
	obj, ok := s.objs[clean]
	s.mu.RUnlock()
	if !ok {
		return seedsource.Info{}, nil, errors.NotFoundf("seed %q", key)
	}
	return obj.info, io.NopCloser(bytes.NewReader(obj.data)), nil
}

// Put implements seedsource.Source.
func (s *Store) Put(_ context.Context, key string, r io.Reader, contentType string) (seedsource.Info, error) {
	clean, err := seedsource.CleanKey(key)
	if err != nil {
		return seedsource.Info{}, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return seedsource.Info{}, errors.Trace(err)
	}
	if contentType == "" {
		contentType = seedsource.ContentTypeFor(clean)
	}
	sum := sha256.Sum256(data)
	info := seedsource.Info{
		Key:          clean,
		Size:         int64(len(data)),
		ContentType:  contentType,
		ETag:         hex.EncodeToString(sum[:]),
		LastModified: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objs[clean]; exists {
		return seedsource.Info{}, errors.AlreadyExistsf("seed %q", key)
	}
	s.objs[clean] = entry{info: info, data: data}
	return info, nil
}

// List implements seedsource.Source.
func (s *Store) List(_ context.Context, prefix string) ([]seedsource.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []seedsource.Info
	for key, obj := range s.objs {
		if strings.HasPrefix(key, prefix) {
			out = append(out, obj.info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
