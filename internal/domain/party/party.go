package party

import (
	"context"

	"github.com/google/uuid"
)

// Type distinguishes the two sides the back office settles with
type Type string

const (
	TypeSupplier Type = "SUPPLIER" // we owe them (purchase bills)
	TypeCustomer Type = "CUSTOMER" // they owe us (sales bills)
)

// IsValid checks if the type is a valid party type
func (t Type) IsValid() bool {
	return t == TypeSupplier || t == TypeCustomer
}

// String returns the string representation
func (t Type) String() string {
	return string(t)
}

// Party is the ledger's view of a supplier or customer. Party lifecycle
// (creation, contact details, credit terms) is owned elsewhere; the
// payment engine only needs identity and a display name.
type Party struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	Type        Type      `json:"type"`
}

// Repository is the lookup boundary to the master-data store
type Repository interface {
	// FindByID returns the party with the given ID, or shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*Party, error)
}
