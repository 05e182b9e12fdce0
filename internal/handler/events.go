package handler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/bank"
	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/ledgercsv"
	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/models"
)

// Dispatcher forwards bank events to metrics and the configured services.
// Service failures are logged; the banking operation itself stands.
type Dispatcher struct {
	deps *Dependencies
}

// NewDispatcher returns the bank.Events implementation for deps.
func NewDispatcher(deps *Dependencies) *Dispatcher {
	return &Dispatcher{deps: deps}
}

var _ bank.Events = (*Dispatcher)(nil)

// MovementsApplied journals settled movements.
func (e *Dispatcher) MovementsApplied(ctx context.Context, entries []models.LedgerEntry) {
	for _, entry := range entries {
		settledMovements.With("type", entry.Movement.Kind()).Add(1)
	}
	if e.deps.Database == nil {
		return
	}

	saved, err := e.deps.Database.SaveMovements(ctx, entries)
	if err != nil {
		slog.Error("failed to journal movements", "count", len(entries), "error", err)
		return
	}
	journaled.Add(float64(len(saved)))
	slog.Info("journaled movements", "new_count", len(saved), "total", len(entries))
}

// AccountClosed publishes a closure event, or handles it in place when no
// queue is configured.
func (e *Dispatcher) AccountClosed(ctx context.Context, acc models.Account) {
	event := models.NewClosureEvent(acc, e.deps.now())

	if e.deps.Queue != nil {
		err := e.deps.Queue.PublishClosure(ctx, event)
		if err == nil {
			return
		}
		slog.Error("failed to publish closure, handling in place", "username", acc.Username, "error", err)
	}
	if err := e.deps.handleClosure(ctx, event); err != nil {
		slog.Error("failed to handle closure", "username", acc.Username, "error", err)
	}
}

// SessionEnded updates the session metrics.
func (e *Dispatcher) SessionEnded(_ context.Context, username string, reason bank.EndReason) {
	sessionsEnded.With("reason", string(reason)).Add(1)
	e.deps.observeSessions()
	slog.Info("session metrics updated", "username", username, "reason", string(reason))
}

// closedStatementName is the blob holding a closed account's final statement.
func closedStatementName(acc models.ClosedAccount) string {
	return fmt.Sprintf("closed/%s-%d.csv", acc.Username, acc.ClosedAt.UnixMilli())
}

// handleClosure archives the account, stores its final statement and tells
// the operators. Only archive and upload failures are returned.
func (d *Dependencies) handleClosure(ctx context.Context, event models.ClosureEvent) error {
	acc := event.Account

	if d.Database != nil {
		if err := d.Database.ArchiveAccount(ctx, acc); err != nil {
			return fmt.Errorf("failed to archive account: %w", err)
		}
		slog.Info("archived closed account", "username", acc.Username)
	}

	if d.Blob != nil {
		var buf bytes.Buffer
		if err := ledgercsv.WriteStatement(&buf, event.Archived()); err != nil {
			return fmt.Errorf("failed to encode statement: %w", err)
		}
		if err := d.Blob.UploadStatement(ctx, closedStatementName(acc), buf.String()); err != nil {
			return fmt.Errorf("failed to upload statement: %w", err)
		}
	}

	if d.Email != nil {
		if err := d.Email.SendClosureNotice(ctx, event); err != nil {
			slog.Error("failed to send closure notice", "username", acc.Username, "error", err)
		}
	}
	return nil
}
