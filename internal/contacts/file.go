package contacts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// FileStore persists the whole collection as one JSON array, read and
// rewritten synchronously on every mutation. Writes go through a temp file
// and rename so a crash never leaves a half-written collection. There is no
// cross-process locking; a single owning process is assumed.
type FileStore struct {
	path string
	now  func() time.Time
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

func (s *FileStore) List() ([]Contact, error) {
	return s.load()
}

func (s *FileStore) Save(name, number string) (Contact, error) {
	name = strings.TrimSpace(name)
	number = strings.TrimSpace(number)
	if name == "" {
		return Contact{}, ErrEmptyName
	}
	if number == "" {
		return Contact{}, ErrEmptyNumber
	}

	list, err := s.load()
	if err != nil {
		return Contact{}, err
	}

	c := Contact{ID: s.freshID(list), Name: name, Number: number}
	list = append(list, c)
	if err := s.persist(list); err != nil {
		return Contact{}, err
	}
	return c, nil
}

func (s *FileStore) Delete(id string) error {
	list, err := s.load()
	if err != nil {
		return err
	}

	kept := list[:0]
	found := false
	for _, c := range list {
		if c.ID == id {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return ErrNotFound
	}
	return s.persist(kept)
}

func (s *FileStore) ResolveName(number string) (string, error) {
	list, err := s.load()
	if err != nil {
		return "", err
	}
	for _, c := range list {
		if c.Number == number {
			return c.Name, nil
		}
	}
	return number, nil
}

// freshID derives a millisecond-timestamp id, bumped past any existing id so
// two saves in the same millisecond stay unique.
func (s *FileStore) freshID(list []Contact) string {
	id := s.now().UnixMilli()
	for _, c := range list {
		if n, err := strconv.ParseInt(c.ID, 10, 64); err == nil && n >= id {
			id = n + 1
		}
	}
	return strconv.FormatInt(id, 10)
}

func (s *FileStore) load() ([]Contact, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("contacts: read %s: %w", s.path, err)
	}

	var list []Contact
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("contacts: parse %s: %w", s.path, err)
	}
	return list, nil
}

func (s *FileStore) persist(list []Contact) error {
	if list == nil {
		list = []Contact{}
	}
	raw, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("contacts: encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("contacts: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".contacts-*")
	if err != nil {
		return fmt.Errorf("contacts: temp file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("contacts: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("contacts: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("contacts: replace %s: %w", s.path, err)
	}
	return nil
}
