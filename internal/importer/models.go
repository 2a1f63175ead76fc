package importer

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// NewRegistrant is the registrant projection of a row, before storage
// assigns it an id.
type NewRegistrant struct {
	Name        string
	Region      string
	NationalID  string
	Affiliation pgtype.Text
}

// Registrant is a deduplicated legislator. ID is assigned by storage and
// never changes.
type Registrant struct {
	ID          int32
	Name        string
	Region      string
	NationalID  string
	Affiliation pgtype.Text
}

// Expense is one reimbursed expense owned by a resolved registrant.
// Period is the first day of the reference month.
type Expense struct {
	RegistrantID int32
	Vendor       string
	Amount       pgtype.Numeric
	Period       pgtype.Date
	IssuedAt     pgtype.Timestamp
	DocumentURL  pgtype.Text
}

// Store is the storage a run writes through. Implementations are expected
// to be bound to a single caller-owned transaction.
type Store interface {
	// FindRegistrantID returns the id of the registrant with the given CPF.
	// found is false when no such registrant exists.
	FindRegistrantID(ctx context.Context, nationalID string) (id int32, found bool, err error)

	// InsertRegistrant creates a registrant. A duplicate CPF is an error.
	InsertRegistrant(ctx context.Context, r NewRegistrant) (Registrant, error)

	// BulkInsertExpenses persists expenses in one operation. Implementations
	// must not retain the slice.
	BulkInsertExpenses(ctx context.Context, expenses []Expense) error
}
