package ucm

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

type fileState struct {
	Verb      string   `toml:"verb"`
	Modifiers []string `toml:"modifiers"`
}

// FileStore is a Sequencer persisted as a TOML file, so the registry state
// survives daemon restarts the way a system wide registry does.
type FileStore struct {
	mu    sync.Mutex
	path  string
	state fileState
}

// NewFileStore loads path, treating a missing file as an empty registry.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		path = "ucm-state.toml"
	}
	s := &FileStore{path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read ucm state: %w", err)
	}
	if err := toml.Unmarshal(data, &s.state); err != nil {
		return fmt.Errorf("failed to parse ucm state: %w", err)
	}
	return nil
}

func (s *FileStore) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create ucm state directory: %w", err)
	}
	data, err := toml.Marshal(s.state)
	if err != nil {
		return fmt.Errorf("failed to marshal ucm state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write ucm state: %w", err)
	}
	return nil
}

func (s *FileStore) Verb() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Verb, nil
}

func (s *FileStore) SetVerb(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name != s.state.Verb {
		s.state.Modifiers = nil
	}
	s.state.Verb = name
	return s.save()
}

func (s *FileStore) SetModifier(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !VerbActive(s.state.Verb) {
		return fmt.Errorf("modifier %q: no active verb", name)
	}
	if slices.Contains(s.state.Modifiers, name) {
		return nil
	}
	s.state.Modifiers = append(s.state.Modifiers, name)
	return s.save()
}

func (s *FileStore) DisableModifier(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.Index(s.state.Modifiers, name)
	if i < 0 {
		return fmt.Errorf("modifier %q not enabled", name)
	}
	s.state.Modifiers = slices.Delete(s.state.Modifiers, i, i+1)
	return s.save()
}

func (s *FileStore) Modifiers() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.Modifiers), nil
}

// Close resets the registry to Inactive, like closing the manager instance.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fileState{Verb: Inactive.String()}
	return s.save()
}
