package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// JSONFile keeps one collection as a JSON array in <dir>/<name>.json.
//
// Writers are serialised by a mutex and every write replaces the file atomically,
// so a crash mid-write leaves the previous array in place. The highest id ever
// issued is kept in <name>.seq next to the data file so deleting the newest
// record never frees its id.
type JSONFile[T Entity] struct {
	mu      sync.Mutex
	name    string
	path    string
	seqPath string
}

func NewJSONFile[T Entity](dir, name string) (*JSONFile[T], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &JSONFile[T]{
		name:    name,
		path:    filepath.Join(dir, name+".json"),
		seqPath: filepath.Join(dir, name+".seq"),
	}, nil
}

// Path returns the backing file.
func (s *JSONFile[T]) Path() string { return s.path }

func (s *JSONFile[T]) load() ([]T, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(b))) == 0 {
		return []T{}, nil
	}
	var recs []T
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if recs == nil {
		recs = []T{}
	}
	return recs, nil
}

func (s *JSONFile[T]) save(recs []T) error {
	b, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSave, err)
	}
	if err := writeAtomic(s.path, b); err != nil {
		return fmt.Errorf("%w: %v", ErrSave, err)
	}
	return nil
}

func (s *JSONFile[T]) readSeq() int {
	b, err := os.ReadFile(s.seqPath)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0
	}
	return n
}

func writeAtomic(path string, b []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// All never fails: an unreadable or corrupt file is logged and reads as empty.
func (s *JSONFile[T]) All(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.load()
	if err != nil {
		log.Warn().Err(err).Str("collection", s.name).Msg("reading collection failed, treating as empty")
		return []T{}, nil
	}
	return recs, nil
}

func (s *JSONFile[T]) Get(ctx context.Context, id int) (T, error) {
	var zero T
	recs, _ := s.All(ctx)
	for _, r := range recs {
		if r.Record().ID == id {
			return r, nil
		}
	}
	return zero, ErrNotFound
}

func (s *JSONFile[T]) FindBy(ctx context.Context, field string, value any) (T, error) {
	var zero T
	if err := validField(field); err != nil {
		return zero, err
	}
	recs, _ := s.All(ctx)
	for _, r := range recs {
		if matches(r, field, value) {
			return r, nil
		}
	}
	return zero, ErrNotFound
}

func (s *JSONFile[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()

	// A corrupt file must not be overwritten by a one-element array.
	recs, err := s.load()
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrSave, err)
	}

	next := s.readSeq()
	for _, r := range recs {
		if id := r.Record().ID; id > next {
			next = id
		}
	}
	next++

	m := rec.Record()
	m.ID = next
	m.CreatedAt = Timestamp()
	m.UpdatedAt = m.CreatedAt

	if err := s.save(append(recs, rec)); err != nil {
		return zero, err
	}
	if err := writeAtomic(s.seqPath, []byte(strconv.Itoa(next))); err != nil {
		log.Warn().Err(err).Str("collection", s.name).Msg("persisting id sequence failed")
	}
	return rec, nil
}

func (s *JSONFile[T]) Update(ctx context.Context, id int, patch map[string]any) (T, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.load()
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrSave, err)
	}
	for i, r := range recs {
		if r.Record().ID != id {
			continue
		}
		merged, err := merge(r, patch, Timestamp())
		if err != nil {
			return zero, fmt.Errorf("%w: %v", ErrSave, err)
		}
		recs[i] = merged
		if err := s.save(recs); err != nil {
			return zero, err
		}
		return merged, nil
	}
	return zero, ErrNotFound
}

func (s *JSONFile[T]) Delete(ctx context.Context, id int) (T, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.load()
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrSave, err)
	}
	for i, r := range recs {
		if r.Record().ID != id {
			continue
		}
		rest := append(recs[:i:i], recs[i+1:]...)
		if err := s.save(rest); err != nil {
			return zero, err
		}
		return r, nil
	}
	return zero, ErrNotFound
}
