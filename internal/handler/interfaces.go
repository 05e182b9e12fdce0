package handler

import (
	"context"
	"time"

	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/models"
	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/services"
)

// DatabaseClient defines the table operations used by handlers.
type DatabaseClient interface {
	SaveMovements(ctx context.Context, entries []models.LedgerEntry) ([]models.LedgerEntry, error)
	ArchiveAccount(ctx context.Context, acc models.ClosedAccount) error
	GetClosedAccounts(ctx context.Context, since time.Time) ([]models.ClosedAccount, error)
}

// BlobClient defines the blob operations used by handlers.
type BlobClient interface {
	UploadStatement(ctx context.Context, blobName, csv string) error
}

// QueueClient defines the queue operations used by handlers.
type QueueClient interface {
	PublishClosure(ctx context.Context, event models.ClosureEvent) error
}

// EmailClient defines the email operations used by handlers.
type EmailClient interface {
	SendClosureNotice(ctx context.Context, event models.ClosureEvent) error
	SendStatementSummary(ctx context.Context, run services.StatementRun) error
}
