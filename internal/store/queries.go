package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/ceap/internal/importer"
)

// ExpenseRecord is a stored expense with its row id.
type ExpenseRecord struct {
	ID int64
	importer.Expense
}

// Page is a slice of ordered results.
type Page[T any] struct {
	Number int
	Size   int
	Items  []T
}

// PageSize returns the configured number of rows per page.
func (p *Postgres) PageSize() int { return p.pageSize }

// RegistrantsByRegion lists registrants of one region code, ordered by name.
func (p *Postgres) RegistrantsByRegion(ctx context.Context, region string) ([]importer.Registrant, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, nome, uf, cpf, partido
		FROM deputados
		WHERE uf = $1
		ORDER BY nome, id`, region)
	if err != nil {
		return nil, fmt.Errorf("query registrants: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (importer.Registrant, error) {
		var r importer.Registrant
		err := row.Scan(&r.ID, &r.Name, &r.Region, &r.NationalID, &r.Affiliation)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan registrants: %w", err)
	}
	return out, nil
}

// ExpensesByRegion returns one page of expenses of registrants in region.
func (p *Postgres) ExpensesByRegion(ctx context.Context, region string, page int) (Page[ExpenseRecord], error) {
	return p.expensePage(ctx, `d.uf = $1`, region, page)
}

// ExpensesByNationalID returns one page of expenses of the registrant with
// the given CPF.
func (p *Postgres) ExpensesByNationalID(ctx context.Context, nationalID string, page int) (Page[ExpenseRecord], error) {
	return p.expensePage(ctx, `d.cpf = $1`, nationalID, page)
}

func (p *Postgres) expensePage(ctx context.Context, where string, arg any, page int) (Page[ExpenseRecord], error) {
	if page < 1 {
		page = 1
	}
	result := Page[ExpenseRecord]{Number: page, Size: p.pageSize}

	query := `
		SELECT e.id, e.deputado_id, e.fornecedor, e.valor_liquido, e.data_despesa, e.data_emissao, e.url_documento
		FROM expenses e
		JOIN deputados d ON d.id = e.deputado_id
		WHERE ` + where + `
		ORDER BY e.id
		LIMIT $2 OFFSET $3`

	rows, err := p.pool.Query(ctx, query, arg, p.pageSize, (page-1)*p.pageSize)
	if err != nil {
		return result, fmt.Errorf("query expenses: %w", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ExpenseRecord, error) {
		var e ExpenseRecord
		err := row.Scan(&e.ID, &e.RegistrantID, &e.Vendor, &e.Amount, &e.Period, &e.IssuedAt, &e.DocumentURL)
		return e, err
	})
	if err != nil {
		return result, fmt.Errorf("scan expenses: %w", err)
	}
	result.Items = items
	return result, nil
}

// SumExpenses returns the total net amount of all expenses.
func (p *Postgres) SumExpenses(ctx context.Context) (pgtype.Numeric, error) {
	var total pgtype.Numeric
	err := p.pool.QueryRow(ctx, `SELECT COALESCE(SUM(valor_liquido), 0) FROM expenses`).Scan(&total)
	if err != nil {
		return total, fmt.Errorf("sum expenses: %w", err)
	}
	return total, nil
}

// SumExpensesByNationalID returns the total net amount of one registrant's
// expenses. An unknown CPF sums to zero.
func (p *Postgres) SumExpensesByNationalID(ctx context.Context, nationalID string) (pgtype.Numeric, error) {
	var total pgtype.Numeric
	err := p.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(e.valor_liquido), 0)
		FROM expenses e
		JOIN deputados d ON d.id = e.deputado_id
		WHERE d.cpf = $1`, nationalID).Scan(&total)
	if err != nil {
		return total, fmt.Errorf("sum expenses: %w", err)
	}
	return total, nil
}
