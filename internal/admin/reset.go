// Package admin provides administrative operations for database management.
package admin

import (
	"context"
	"fmt"
	"time"
)

// ResetTimeout is the maximum duration for database reset operations.
const ResetTimeout = 30 * time.Second

// Resetter empties the CEAP tables. *store.Postgres implements it.
type Resetter interface {
	ResetExpenses(ctx context.Context) error
	ResetRegistrants(ctx context.Context) error
}

type resetFn struct {
	name string
	fn   func(ctx context.Context) error
}

// ResetAll deletes every expense and then every registrant.
// This is a destructive operation - use with caution.
func ResetAll(ctx context.Context, r Resetter) error {
	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	return runResets(ctx, []resetFn{
		{name: "expenses", fn: r.ResetExpenses},
		{name: "registrants", fn: r.ResetRegistrants},
	})
}

func runResets(ctx context.Context, resets []resetFn) error {
	for _, reset := range resets {
		if err := reset.fn(ctx); err != nil {
			return fmt.Errorf("reset %s: %w", reset.name, err)
		}
	}
	return nil
}
