package contacts

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "contacts.json"))
}

func TestList_MissingFileIsEmpty(t *testing.T) {
	s := newTestStore(t)
	list, err := s.List()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}
}

func TestSaveListDelete(t *testing.T) {
	s := newTestStore(t)

	saved, err := s.Save("Alice", "+15551234567")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID == "" {
		t.Fatalf("expected an id")
	}

	list, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Alice" || list[0].Number != "+15551234567" {
		t.Fatalf("unexpected list %+v", list)
	}

	if err := s.Delete(saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, err = s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list after delete, got %+v", list)
	}
}

func TestSave_ValidatesInput(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Save("", "+15551234567"); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if _, err := s.Save("Alice", "  "); !errors.Is(err, ErrEmptyNumber) {
		t.Fatalf("expected ErrEmptyNumber, got %v", err)
	}
}

func TestSave_KeepsInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	names := []string{"Alice", "Bob", "Carol"}
	for i, n := range names {
		if _, err := s.Save(n, "+1555000000"+string(rune('0'+i))); err != nil {
			t.Fatalf("save %s: %v", n, err)
		}
	}
	list, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i, n := range names {
		if list[i].Name != n {
			t.Fatalf("expected %s at position %d, got %s", n, i, list[i].Name)
		}
	}
}

func TestSave_IDsUniqueWithinSameMillisecond(t *testing.T) {
	s := newTestStore(t)
	frozen := time.UnixMilli(1700000000000)
	s.now = func() time.Time { return frozen }

	a, err := s.Save("Alice", "+15551234567")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	b, err := s.Save("Bob", "+15557654321")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if a.ID == b.ID {
		t.Fatalf("expected distinct ids, both %q", a.ID)
	}
}

func TestDelete_UnknownID(t *testing.T) {
	s := newTestStore(t)
	if err := s.Delete("123"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveName(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Save("Alice", "+15551234567"); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.ResolveName("+15551234567")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "Alice" {
		t.Fatalf("expected Alice, got %q", got)
	}

	// Unsaved numbers come back unchanged; no format normalization happens.
	got, err = s.ResolveName("+19999999999")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "+19999999999" {
		t.Fatalf("expected number unchanged, got %q", got)
	}
}

func TestPersistenceAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.json")

	first := NewFileStore(path)
	if _, err := first.Save("Alice", "+15551234567"); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := NewFileStore(path)
	list, err := second.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Alice" {
		t.Fatalf("expected persisted contact, got %+v", list)
	}
}
