// Package store persists registrants and expenses in PostgreSQL.
//
// Import writes go through a transaction opened by Postgres.InTx; the read
// queries behind the HTTP API run directly on the pool.
package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/ceap/internal/importer"
)

// Schema creates the tables used by the importer. Statements are idempotent.
//
//go:embed schema.sql
var Schema string

// ErrConflict wraps unique constraint violations, typically a CPF that was
// registered by a concurrent import.
var ErrConflict = errors.New("conflict")

const pgUniqueViolation = "23505"

// DefaultPageSize is the number of rows per page when none is configured.
const DefaultPageSize = 100

// Postgres is the pgx-backed storage.
type Postgres struct {
	pool     *pgxpool.Pool
	pageSize int
}

// NewPostgres wraps pool. pageSize bounds paginated queries; non-positive
// values select DefaultPageSize.
func NewPostgres(pool *pgxpool.Pool, pageSize int) *Postgres {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Postgres{pool: pool, pageSize: pageSize}
}

// Migrate applies Schema.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Ping checks that the database is reachable.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// ResetExpenses deletes every expense and restarts its id sequence.
func (p *Postgres) ResetExpenses(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `TRUNCATE expenses RESTART IDENTITY`)
	return err
}

// ResetRegistrants deletes every registrant together with any expenses
// still referencing one.
func (p *Postgres) ResetRegistrants(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `TRUNCATE deputados RESTART IDENTITY CASCADE`)
	return err
}

// InTx runs fn with a Store bound to a new transaction. The transaction is
// committed only when fn returns nil; any error rolls back every write fn
// made.
func (p *Postgres) InTx(ctx context.Context, fn func(importer.Store) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Tx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Tx implements importer.Store on one transaction.
type Tx struct {
	tx pgx.Tx
}

var _ importer.Store = (*Tx)(nil)

func (t *Tx) FindRegistrantID(ctx context.Context, nationalID string) (int32, bool, error) {
	var id int32
	err := t.tx.QueryRow(ctx, `SELECT id FROM deputados WHERE cpf = $1`, nationalID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, mapError(err)
	}
	return id, true, nil
}

func (t *Tx) InsertRegistrant(ctx context.Context, r importer.NewRegistrant) (importer.Registrant, error) {
	var saved importer.Registrant
	err := t.tx.QueryRow(ctx, `
		INSERT INTO deputados (nome, uf, cpf, partido)
		VALUES ($1, $2, $3, $4)
		RETURNING id, nome, uf, cpf, partido`,
		r.Name, r.Region, r.NationalID, r.Affiliation,
	).Scan(&saved.ID, &saved.Name, &saved.Region, &saved.NationalID, &saved.Affiliation)
	if err != nil {
		return importer.Registrant{}, mapError(err)
	}
	return saved, nil
}

var expenseColumns = []string{
	"deputado_id", "fornecedor", "valor_liquido", "data_despesa", "data_emissao", "url_documento",
}

// BulkInsertExpenses writes expenses with the COPY protocol.
func (t *Tx) BulkInsertExpenses(ctx context.Context, expenses []importer.Expense) error {
	n, err := t.tx.CopyFrom(ctx,
		pgx.Identifier{"expenses"},
		expenseColumns,
		pgx.CopyFromSlice(len(expenses), func(i int) ([]any, error) {
			e := expenses[i]
			return []any{e.RegistrantID, e.Vendor, e.Amount, e.Period, e.IssuedAt, e.DocumentURL}, nil
		}),
	)
	if err != nil {
		return mapError(err)
	}
	if int(n) != len(expenses) {
		return fmt.Errorf("copy expenses: wrote %d of %d rows", n, len(expenses))
	}
	return nil
}

func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}
