package numbers

import "context"

// PhoneNumber is one provisioned caller-ID candidate.
// Sourced read-only from the provider account; never created or mutated here.
type PhoneNumber struct {
	FriendlyName string `json:"friendlyName"`
	PhoneNumber  string `json:"phoneNumber"` // E.164
}

// Lister returns the account's provisioned incoming numbers.
//
// Rules:
// - No provider SDK calls outside this package.
// - An account with zero numbers is a successful empty listing, not an error.
type Lister interface {
	List(ctx context.Context, limit int) ([]PhoneNumber, error)
}

// DefaultLimit bounds how many numbers a single listing fetches.
const DefaultLimit = 20
