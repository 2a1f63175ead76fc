package importer

import (
	"context"
	"log/slog"

	"github.com/JonMunkholm/ceap/internal/cpf"
)

// Resolver maps CPFs to registrant ids for the duration of one run.
//
// Lookups go cache, then storage, then a validated insert. A CPF is looked
// up in storage at most once per run: the mapping is immutable while the run
// lasts, so cached entries are never invalidated. Not safe for concurrent use.
type Resolver struct {
	store  Store
	cache  map[string]int32
	logger *slog.Logger
}

// NewResolver returns a Resolver with an empty cache.
func NewResolver(store Store, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		store:  store,
		cache:  make(map[string]int32),
		logger: logger,
	}
}

// Resolve returns the internal id of rec's registrant, creating it when
// neither the cache nor storage knows the CPF. Only new registrants are
// validated; a CPF already accepted by storage is trusted.
func (r *Resolver) Resolve(ctx context.Context, rec *Record) (id int32, created bool, err error) {
	nationalID, ok := rec.NationalID()
	if !ok {
		return 0, false, rec.malformed(ColNationalID, errEmptyField)
	}

	if id, hit := r.cache[nationalID]; hit {
		return id, false, nil
	}

	id, found, err := r.store.FindRegistrantID(ctx, nationalID)
	if err != nil {
		return 0, false, persistenceErr("find registrant", err)
	}
	if found {
		r.cache[nationalID] = id
		r.logger.Debug("registrant already registered", "registrant_id", id, "line", rec.Line)
		return id, false, nil
	}

	reg, err := DecodeRegistrant(rec)
	if err != nil {
		return 0, false, err
	}
	if !cpf.Valid(reg.NationalID) {
		return 0, false, &InvalidIdentifierError{Line: rec.Line, NationalID: reg.NationalID}
	}

	// A unique violation here means another transaction registered the same
	// CPF concurrently. It is fatal for the run.
	saved, err := r.store.InsertRegistrant(ctx, reg)
	if err != nil {
		return 0, false, persistenceErr("insert registrant", err)
	}

	r.cache[nationalID] = saved.ID
	r.logger.Debug("registrant created", "registrant_id", saved.ID, "region", saved.Region, "line", rec.Line)
	return saved.ID, true, nil
}

// Len returns the number of CPFs resolved so far.
func (r *Resolver) Len() int {
	return len(r.cache)
}
