package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/bank"
	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/models"
)

func TestDispatcher_MovementsApplied(t *testing.T) {
	entries := []models.LedgerEntry{
		{Username: "js", Movement: models.Movement{ID: "a", Amount: decimal.NewFromInt(-5)}},
		{Username: "jd", Movement: models.Movement{ID: "b", Amount: decimal.NewFromInt(5)}},
	}

	// No journal configured.
	NewDispatcher(&Dependencies{}).MovementsApplied(context.Background(), entries)

	var saved []models.LedgerEntry
	deps := &Dependencies{Database: &MockDatabaseClient{
		SaveMovementsFunc: func(ctx context.Context, e []models.LedgerEntry) ([]models.LedgerEntry, error) {
			saved = e
			return e[:1], nil
		},
	}}
	NewDispatcher(deps).MovementsApplied(context.Background(), entries)
	assert.Equal(t, entries, saved)

	deps.Database = &MockDatabaseClient{
		SaveMovementsFunc: func(ctx context.Context, e []models.LedgerEntry) ([]models.LedgerEntry, error) {
			return nil, errors.New("unavailable")
		},
	}
	NewDispatcher(deps).MovementsApplied(context.Background(), entries)
}

func TestDispatcher_AccountClosedFallsBackWhenQueueFails(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var archived models.ClosedAccount
	deps := &Dependencies{
		Now: func() time.Time { return now },
		Queue: &MockQueueClient{
			PublishClosureFunc: func(ctx context.Context, event models.ClosureEvent) error {
				return errors.New("queue down")
			},
		},
		Database: &MockDatabaseClient{
			ArchiveAccountFunc: func(ctx context.Context, acc models.ClosedAccount) error {
				archived = acc
				return nil
			},
		},
	}

	acc := models.Account{Owner: "Jane Roe", Username: "jr"}
	acc.AddMovement(models.Movement{Amount: decimal.NewFromInt(10)})
	NewDispatcher(deps).AccountClosed(context.Background(), acc)

	assert.Equal(t, "jr", archived.Username)
	assert.Equal(t, now, archived.ClosedAt)
	assert.True(t, archived.Balance.Equal(decimal.NewFromInt(10)))
}

func TestDispatcher_AccountClosedPublishes(t *testing.T) {
	published := false
	deps := &Dependencies{
		Queue: &MockQueueClient{
			PublishClosureFunc: func(ctx context.Context, event models.ClosureEvent) error {
				published = true
				return nil
			},
		},
		Database: &MockDatabaseClient{
			ArchiveAccountFunc: func(ctx context.Context, acc models.ClosedAccount) error {
				t.Fatal("archived in place although the event was queued")
				return nil
			},
		},
	}

	NewDispatcher(deps).AccountClosed(context.Background(), models.Account{Username: "jr"})
	assert.True(t, published)
}

func TestDispatcher_SessionEnded(t *testing.T) {
	NewDispatcher(&Dependencies{}).SessionEnded(context.Background(), "js", bank.EndTimeout)
}

func TestWriteDenial_UnexpectedError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteDenial(w, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
