// Package processed flips staging rows to processed once they reached the dimension table.
package processed

import (
	"context"
	"log/slog"
	"slices"

	"ArticlesHarmonizer/internal/domain"
	"ArticlesHarmonizer/internal/ports"
	"ArticlesHarmonizer/internal/registry"
)

// Controller owns the only write path to the staging processed flag.
type Controller struct {
	store  ports.FlagStore
	logger *slog.Logger
}

// NewController wires the flag store.
func NewController(store ports.FlagStore, log *slog.Logger) *Controller {
	return &Controller{store: store, logger: log}
}

// MarkProcessed sets processed = true for exactly ids in one transaction.
// Repeated calls are harmless and the flag is never cleared.
func (c *Controller) MarkProcessed(ctx context.Context, sourceTable, pkField string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	if err := registry.CheckColumn(sourceTable, pkField); err != nil {
		return &domain.FlagUpdateError{Table: sourceTable, IDs: len(ids), Err: err}
	}

	unique := slices.Clone(ids)
	slices.Sort(unique)
	unique = slices.Compact(unique)

	touched, err := c.store.MarkProcessed(ctx, sourceTable, pkField, unique)
	if err != nil {
		return &domain.FlagUpdateError{Table: sourceTable, IDs: len(unique), Err: err}
	}

	c.debug("rows flagged processed", "table", sourceTable, "ids", len(unique), "touched", touched)
	return nil
}

func (c *Controller) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
