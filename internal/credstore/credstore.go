// Package credstore persists per-account credential blobs on disk. Active
// credentials live under one directory, one JSON file per account; invalid
// ones are never deleted, only moved into a quarantine directory alongside
// a record of why.
package credstore

import (
	"errors"
	"fmt"
	mathrand "math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	dirMode  = 0o700
	fileMode = 0o600
	ext      = ".json"
)

var (
	// ErrInvalidName rejects identities that would escape the store directory.
	ErrInvalidName = errors.New("credstore: invalid credential name")

	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// Credential is one stored entry: the identity it is filed under and the
// raw payload accepted by the messenger login.
type Credential struct {
	Name    string
	Payload []byte
}

// Store manages the active and quarantine directories.
type Store struct {
	mu         sync.Mutex
	dir        string
	quarantine string
	now        func() time.Time
}

// New creates both directories if needed.
func New(dir, quarantineDir string) (*Store, error) {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("create credential directory: %w", err)
	}
	if err := os.MkdirAll(quarantineDir, dirMode); err != nil {
		return nil, fmt.Errorf("create quarantine directory: %w", err)
	}
	return &Store{dir: dir, quarantine: quarantineDir, now: time.Now}, nil
}

// Save writes payload atomically under name. The write goes to a temp file
// first so a crash never leaves a truncated credential behind.
func (s *Store) Save(name string, payload []byte) error {
	path, err := s.pathFor(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("stage credential %q: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("write credential %q: %w", name, err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod credential %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close credential %q: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("commit credential %q: %w", name, err)
	}
	return nil
}

// Exists reports whether a credential is filed under name.
func (s *Store) Exists(name string) bool {
	path, err := s.pathFor(name)
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = os.Stat(path)
	return err == nil
}

// List enumerates all active credentials in filesystem order.
func (s *Store) List() ([]Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}

	var out []Credential
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		payload, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read credential %q: %w", e.Name(), err)
		}
		out = append(out, Credential{
			Name:    strings.TrimSuffix(e.Name(), ext),
			Payload: payload,
		})
	}
	return out, nil
}

// Quarantine moves the named credential out of the active set and writes a
// sibling record of the reason. Quarantining an absent name is a no-op.
func (s *Store) Quarantine(name, reason string) error {
	src, err := s.pathFor(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat credential %q: %w", name, err)
	}

	now := s.now()
	stem := fmt.Sprintf("%d_%s%s", now.UnixMilli(), name, ext)
	dst := filepath.Join(s.quarantine, stem)

	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("quarantine credential %q: %w", name, err)
	}

	record := fmt.Sprintf("Timestamp: %s\nReason: %s\nOriginal File: %s%s\n",
		now.UTC().Format(time.RFC3339), reason, name, ext)
	if err := os.WriteFile(dst+".log", []byte(record), fileMode); err != nil {
		return fmt.Errorf("record quarantine reason for %q: %w", name, err)
	}
	return nil
}

// Promote renames a placeholder credential to its post-login identity.
// When the destination already exists the placeholder is quarantined as a
// duplicate: stored credentials are never deleted outright.
func (s *Store) Promote(from, to string) error {
	src, err := s.pathFor(from)
	if err != nil {
		return err
	}
	dst, err := s.pathFor(to)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if _, err := os.Stat(dst); err == nil {
		s.mu.Unlock()
		return s.Quarantine(from, fmt.Sprintf("Duplicate of %s%s", to, ext))
	}
	defer s.mu.Unlock()

	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat credential %q: %w", from, err)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("promote credential %q to %q: %w", from, to, err)
	}
	return nil
}

// Placeholder returns a fresh pre-login identity. Names are monotonic and
// never collide with existing files.
func (s *Store) Placeholder() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	for {
		name := "pending-" + strings.ToLower(ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String())
		if _, err := os.Stat(filepath.Join(s.dir, name+ext)); errors.Is(err, os.ErrNotExist) {
			return name
		}
	}
}

func (s *Store) pathFor(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrInvalidName
	}
	cleaned := filepath.Clean(trimmed)
	if cleaned != trimmed || filepath.IsAbs(cleaned) || strings.ContainsAny(cleaned, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, cleaned+ext), nil
}
