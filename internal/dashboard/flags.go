package dashboard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Flags are the persisted results of the two login steps.
type Flags struct {
	Authenticated   bool `yaml:"authenticated"`
	PasskeyVerified bool `yaml:"passkey_verified"`
}

// FlagStore persists Flags between runs.
type FlagStore interface {
	Load() (Flags, error)
	Save(Flags) error
	Clear() error
}

// MemoryFlagStore keeps flags for the life of the process.
type MemoryFlagStore struct {
	mu    sync.Mutex
	flags Flags
}

func (m *MemoryFlagStore) Load() (Flags, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flags, nil
}

func (m *MemoryFlagStore) Save(f Flags) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags = f
	return nil
}

func (m *MemoryFlagStore) Clear() error {
	return m.Save(Flags{})
}

// sessionFile is the on-disk layout of a FileFlagStore.
type sessionFile struct {
	Flags `yaml:",inline"`
	Token string `yaml:"token,omitempty"`
}

// FileFlagStore keeps the flags, and the session token the CLI client
// replays, in an owner-only YAML file. A missing file reads as zero flags.
type FileFlagStore struct {
	path string
	mu   sync.Mutex
}

func NewFileFlagStore(path string) *FileFlagStore {
	return &FileFlagStore{path: path}
}

// Path returns the backing file.
func (f *FileFlagStore) Path() string {
	return f.path
}

func (f *FileFlagStore) Load() (Flags, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, err := f.read()
	return s.Flags, err
}

// Save replaces the flags and keeps the stored token.
func (f *FileFlagStore) Save(flags Flags) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, err := f.read()
	if err != nil {
		return err
	}
	s.Flags = flags
	return f.write(s)
}

// Clear removes the file, dropping the token along with the flags.
func (f *FileFlagStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", f.path, err)
	}
	return nil
}

// Token returns the stored session token, or "".
func (f *FileFlagStore) Token() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, err := f.read()
	return s.Token, err
}

// SaveToken stores the session token and keeps the flags.
func (f *FileFlagStore) SaveToken(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, err := f.read()
	if err != nil {
		return err
	}
	s.Token = token
	return f.write(s)
}

func (f *FileFlagStore) read() (sessionFile, error) {
	var s sessionFile
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("read %s: %w", f.path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return sessionFile{}, fmt.Errorf("parse %s: %w", f.path, err)
	}
	return s, nil
}

func (f *FileFlagStore) write(s sessionFile) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(f.path), err)
	}
	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	return nil
}
