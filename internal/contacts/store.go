package contacts

import "errors"

// Contact is one saved name/number pair.
// Numbers are stored as entered; resolution is exact string match, so a
// contact saved as "+1 555 123 4567" will not resolve "+15551234567".
type Contact struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Number string `json:"number"`
}

// Store abstracts contacts persistence (JSON file today).
type Store interface {
	// List returns contacts in insertion order.
	List() ([]Contact, error)

	// Save appends a new contact with a fresh unique id and persists the
	// collection. Numbers are not deduplicated; names are free text.
	Save(name, number string) (Contact, error)

	// Delete removes the contact with the given id and persists the rest.
	Delete(id string) error

	// ResolveName returns the saved name for an exactly matching number, or
	// the number unchanged when no contact matches.
	ResolveName(number string) (string, error)
}

var (
	ErrEmptyName   = errors.New("contacts: name is required")
	ErrEmptyNumber = errors.New("contacts: number is required")
	ErrNotFound    = errors.New("contacts: no such contact")
)
