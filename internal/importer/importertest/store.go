package importertest

import (
	"context"
	"errors"
	"sync"

	"github.com/JonMunkholm/ceap/internal/importer"
)

// ErrDuplicate is returned by MemStore.InsertRegistrant for a known CPF.
var ErrDuplicate = errors.New("duplicate key value violates unique constraint")

// MemStore is an in-memory importer.Store that records how it was called.
// Set the *Err fields to make the matching operation fail.
type MemStore struct {
	mu sync.Mutex

	Registrants []importer.Registrant
	Expenses    []importer.Expense
	BatchSizes  []int
	Finds       map[string]int
	Inserts     int

	FindErr   error
	InsertErr error
	BulkErr   error
}

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{Finds: make(map[string]int)}
}

// Seed registers an existing registrant and returns its id.
func (s *MemStore) Seed(r importer.NewRegistrant) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(r).ID
}

func (s *MemStore) add(r importer.NewRegistrant) importer.Registrant {
	saved := importer.Registrant{
		ID:          int32(len(s.Registrants) + 1),
		Name:        r.Name,
		Region:      r.Region,
		NationalID:  r.NationalID,
		Affiliation: r.Affiliation,
	}
	s.Registrants = append(s.Registrants, saved)
	return saved
}

func (s *MemStore) FindRegistrantID(_ context.Context, nationalID string) (int32, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Finds[nationalID]++
	if s.FindErr != nil {
		return 0, false, s.FindErr
	}
	for _, r := range s.Registrants {
		if r.NationalID == nationalID {
			return r.ID, true, nil
		}
	}
	return 0, false, nil
}

func (s *MemStore) InsertRegistrant(_ context.Context, r importer.NewRegistrant) (importer.Registrant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Inserts++
	if s.InsertErr != nil {
		return importer.Registrant{}, s.InsertErr
	}
	for _, existing := range s.Registrants {
		if existing.NationalID == r.NationalID {
			return importer.Registrant{}, ErrDuplicate
		}
	}
	return s.add(r), nil
}

func (s *MemStore) BulkInsertExpenses(_ context.Context, expenses []importer.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.BulkErr != nil {
		return s.BulkErr
	}
	s.BatchSizes = append(s.BatchSizes, len(expenses))
	s.Expenses = append(s.Expenses, expenses...)
	return nil
}

// Clone returns a copy of the stored data, without call history or
// injected failures.
func (s *MemStore) Clone() *MemStore {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := NewMemStore()
	c.Registrants = append([]importer.Registrant(nil), s.Registrants...)
	c.Expenses = append([]importer.Expense(nil), s.Expenses...)
	return c
}

// Counts returns the number of stored registrants and expenses.
func (s *MemStore) Counts() (registrants, expenses int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Registrants), len(s.Expenses)
}
