package handler

import (
	"context"
	"time"

	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/models"
	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/services"
)

// MockDatabaseClient is a mock implementation of DatabaseClient
type MockDatabaseClient struct {
	SaveMovementsFunc     func(ctx context.Context, entries []models.LedgerEntry) ([]models.LedgerEntry, error)
	ArchiveAccountFunc    func(ctx context.Context, acc models.ClosedAccount) error
	GetClosedAccountsFunc func(ctx context.Context, since time.Time) ([]models.ClosedAccount, error)
}

func (m *MockDatabaseClient) SaveMovements(ctx context.Context, entries []models.LedgerEntry) ([]models.LedgerEntry, error) {
	if m.SaveMovementsFunc != nil {
		return m.SaveMovementsFunc(ctx, entries)
	}
	return entries, nil
}

func (m *MockDatabaseClient) ArchiveAccount(ctx context.Context, acc models.ClosedAccount) error {
	if m.ArchiveAccountFunc != nil {
		return m.ArchiveAccountFunc(ctx, acc)
	}
	return nil
}

func (m *MockDatabaseClient) GetClosedAccounts(ctx context.Context, since time.Time) ([]models.ClosedAccount, error) {
	if m.GetClosedAccountsFunc != nil {
		return m.GetClosedAccountsFunc(ctx, since)
	}
	return nil, nil
}

// MockBlobClient is a mock implementation of BlobClient
type MockBlobClient struct {
	UploadStatementFunc func(ctx context.Context, blobName, csv string) error
}

func (m *MockBlobClient) UploadStatement(ctx context.Context, blobName, csv string) error {
	if m.UploadStatementFunc != nil {
		return m.UploadStatementFunc(ctx, blobName, csv)
	}
	return nil
}

// MockQueueClient is a mock implementation of QueueClient
type MockQueueClient struct {
	PublishClosureFunc func(ctx context.Context, event models.ClosureEvent) error
}

func (m *MockQueueClient) PublishClosure(ctx context.Context, event models.ClosureEvent) error {
	if m.PublishClosureFunc != nil {
		return m.PublishClosureFunc(ctx, event)
	}
	return nil
}

// MockEmailClient is a mock implementation of EmailClient
type MockEmailClient struct {
	SendClosureNoticeFunc    func(ctx context.Context, event models.ClosureEvent) error
	SendStatementSummaryFunc func(ctx context.Context, run services.StatementRun) error
}

func (m *MockEmailClient) SendClosureNotice(ctx context.Context, event models.ClosureEvent) error {
	if m.SendClosureNoticeFunc != nil {
		return m.SendClosureNoticeFunc(ctx, event)
	}
	return nil
}

func (m *MockEmailClient) SendStatementSummary(ctx context.Context, run services.StatementRun) error {
	if m.SendStatementSummaryFunc != nil {
		return m.SendStatementSummaryFunc(ctx, run)
	}
	return nil
}
