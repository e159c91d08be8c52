package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/suratflow/internal/models"
	"golang.org/x/sync/errgroup"
)

// DuplicateChecker answers whether letter or agenda numbers are already
// taken. Every lookup is an independent query, so one failing lookup never
// decides another. It holds no state and is safe for concurrent use.
type DuplicateChecker struct {
	persistence Persistence
}

// NewDuplicateChecker returns a checker querying persistence.
func NewDuplicateChecker(persistence Persistence) *DuplicateChecker {
	return &DuplicateChecker{persistence: persistence}
}

// CheckNumbers looks both numbers up in the kind's own collection. Empty
// numbers are not looked up. Error is set when any lookup failed; the result
// is then unverified even if it reports no duplicate.
func (c *DuplicateChecker) CheckNumbers(ctx context.Context, kind models.Kind, letterNumber, agendaNumber string) models.DuplicateCheckResult {
	collection := kind.Collection()
	var result models.DuplicateCheckResult
	var letterErr, agendaErr error

	var g errgroup.Group
	if letterNumber != "" {
		g.Go(func() error {
			result.LetterNumberDuplicate, letterErr = c.persistence.Exists(ctx, collection, models.FieldLetterNumber, letterNumber)
			return nil
		})
	}
	if agendaNumber != "" {
		g.Go(func() error {
			result.AgendaNumberDuplicate, agendaErr = c.persistence.Exists(ctx, collection, models.FieldAgendaNumber, agendaNumber)
			return nil
		})
	}
	_ = g.Wait()

	if err := errors.Join(letterErr, agendaErr); err != nil {
		slog.Warn("Duplicate lookup failed", "collection", collection, "error", err)
		result.Error = err.Error()
	}
	return result
}

// CheckAgendaAcrossAll reports whether agendaNumber exists in any
// collection. A positive answer from one collection wins even when another
// lookup failed; without one, any failure is returned as a query error.
func (c *DuplicateChecker) CheckAgendaAcrossAll(ctx context.Context, agendaNumber string) (bool, error) {
	kinds := models.Kinds()
	found := make([]bool, len(kinds))
	errs := make([]error, len(kinds))

	var g errgroup.Group
	for i, kind := range kinds {
		g.Go(func() error {
			exists, err := c.persistence.Exists(ctx, kind.Collection(), models.FieldAgendaNumber, agendaNumber)
			if err != nil {
				errs[i] = fmt.Errorf("failed to query %s: %w", kind.Collection(), err)
				return nil
			}
			found[i] = exists
			return nil
		})
	}
	_ = g.Wait()

	for _, f := range found {
		if f {
			return true, nil
		}
	}
	if err := errors.Join(errs...); err != nil {
		slog.Warn("Agenda lookup could not be verified", "nomorAgenda", agendaNumber, "error", err)
		return false, newQueryFailed(err)
	}
	return false, nil
}
