package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/shopspring/decimal"

	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/models"
)

const closedPartition = "CLOSED"

// DatabaseService handles interactions with Azure Table Storage.
type DatabaseService struct {
	serviceClient *aztables.ServiceClient
	journalTable  string
	closedTable   string
}

// NewDatabaseService creates a new DatabaseService instance.
func NewDatabaseService() (*DatabaseService, error) {
	tableURL, err := requireEnv("TABLE_SERVICE_URL")
	if err != nil {
		return nil, err
	}
	journalTable := envOr("JOURNAL_TABLE", "movements")
	closedTable := envOr("CLOSED_ACCOUNTS_TABLE", "closedaccounts")

	auth, err := resolveStorageAuth(tableURL, "table")
	if err != nil {
		return nil, err
	}

	var client *aztables.ServiceClient
	if auth.local {
		cred, err := aztables.NewSharedKeyCredential(auth.account, auth.key)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = aztables.NewServiceClientWithSharedKey(tableURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client with shared key: %w", err)
		}
	} else {
		client, err = aztables.NewServiceClient(tableURL, auth.token, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client: %w", err)
		}
	}

	svc := &DatabaseService{
		serviceClient: client,
		journalTable:  journalTable,
		closedTable:   closedTable,
	}

	if err := svc.CreateTables(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	slog.Info("database service initialized",
		"table_url", tableURL,
		"journal_table", journalTable,
		"closed_accounts_table", closedTable,
	)
	return svc, nil
}

// CreateTables ensures all required tables exist in Azure Table Storage.
func (s *DatabaseService) CreateTables(ctx context.Context) error {
	for _, tableName := range []string{s.journalTable, s.closedTable} {
		_, err := s.serviceClient.CreateTable(ctx, tableName, nil)
		if err != nil {
			var azErr *azcore.ResponseError
			if errors.As(err, &azErr) && azErr.ErrorCode == "TableAlreadyExists" {
				continue
			}
			return fmt.Errorf("failed to create table %s: %w", tableName, err)
		}
	}
	return nil
}

func (s *DatabaseService) getClient(tableName string) *aztables.Client {
	return s.serviceClient.NewClient(tableName)
}

// JournalPartition groups an account's movements by month.
func JournalPartition(e models.LedgerEntry) string {
	return fmt.Sprintf("%s_%s", e.Username, e.Movement.Date.UTC().Format("2006-01"))
}

// SaveMovements journals settled movements using batched upserts. The
// movement id is the row key, so entries already present are skipped.
// Returns the entries that were actually new.
func (s *DatabaseService) SaveMovements(ctx context.Context, entries []models.LedgerEntry) ([]models.LedgerEntry, error) {
	if len(entries) == 0 {
		return []models.LedgerEntry{}, nil
	}

	client := s.getClient(s.journalTable)

	partitions := make(map[string][]models.LedgerEntry)
	var order []string
	for _, e := range entries {
		pk := JournalPartition(e)
		if _, ok := partitions[pk]; !ok {
			order = append(order, pk)
		}
		partitions[pk] = append(partitions[pk], e)
	}

	var saved []models.LedgerEntry
	timestamp := time.Now().UTC().Format(time.RFC3339)

	for _, pk := range order {
		existing, err := s.rowKeys(ctx, client, pk)
		if err != nil {
			return nil, err
		}

		var batch []aztables.TransactionAction
		for _, e := range partitions[pk] {
			if existing[e.Movement.ID] {
				continue
			}
			existing[e.Movement.ID] = true
			saved = append(saved, e)

			entity := map[string]any{
				"PartitionKey": pk,
				"RowKey":       e.Movement.ID,
				"Username":     e.Username,
				"Currency":     e.Currency,
				"Date":         e.Movement.Date.UTC().Format(time.RFC3339Nano),
				"Amount":       e.Movement.Amount.String(),
				"Type":         e.Movement.Kind(),
				"JournaledAt":  timestamp,
			}
			entityJson, _ := json.Marshal(entity)
			batch = append(batch, aztables.TransactionAction{
				ActionType: aztables.TransactionTypeInsertReplace,
				Entity:     entityJson,
			})
		}

		const batchSize = 100
		for i := 0; i < len(batch); i += batchSize {
			end := min(i+batchSize, len(batch))
			if _, err := client.SubmitTransaction(ctx, batch[i:end], nil); err != nil {
				return nil, fmt.Errorf("failed to submit journal batch %d-%d: %w", i, end, err)
			}
		}
	}

	return saved, nil
}

func (s *DatabaseService) rowKeys(ctx context.Context, client *aztables.Client, pk string) (map[string]bool, error) {
	filter := fmt.Sprintf("PartitionKey eq '%s'", pk)
	selectFields := "RowKey"
	pager := client.NewListEntitiesPager(&aztables.ListEntitiesOptions{
		Filter: &filter,
		Select: &selectFields,
	})

	keys := make(map[string]bool)
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list existing movements: %w", err)
		}
		for _, entity := range resp.Entities {
			var parsed map[string]any
			if err := json.Unmarshal(entity, &parsed); err == nil {
				if rk, ok := parsed["RowKey"].(string); ok {
					keys[rk] = true
				}
			}
		}
	}
	return keys, nil
}

// ArchiveAccount records a closed account. Archiving the same closure twice
// overwrites the first record.
func (s *DatabaseService) ArchiveAccount(ctx context.Context, acc models.ClosedAccount) error {
	client := s.getClient(s.closedTable)

	entity := map[string]any{
		"PartitionKey": closedPartition,
		"RowKey":       fmt.Sprintf("%s_%d", acc.Username, acc.ClosedAt.UnixMilli()),
		"Username":     acc.Username,
		"Owner":        acc.Owner,
		"Currency":     acc.Currency,
		"Locale":       acc.Locale,
		"Balance":      acc.Balance.String(),
		"Movements":    acc.Movements,
		"ClosedAt":     acc.ClosedAt.UTC().Format(time.RFC3339Nano),
	}

	entityJson, _ := json.Marshal(entity)
	if _, err := client.UpsertEntity(ctx, entityJson, nil); err != nil {
		return fmt.Errorf("failed to archive account %s: %w", acc.Username, err)
	}
	return nil
}

// GetClosedAccounts lists archived accounts closed at or after since,
// oldest first.
func (s *DatabaseService) GetClosedAccounts(ctx context.Context, since time.Time) ([]models.ClosedAccount, error) {
	client := s.getClient(s.closedTable)

	filter := fmt.Sprintf("PartitionKey eq '%s'", closedPartition)
	pager := client.NewListEntitiesPager(&aztables.ListEntitiesOptions{
		Filter: &filter,
	})

	var closed []models.ClosedAccount
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list closed accounts: %w", err)
		}

		for _, entity := range resp.Entities {
			var parsed map[string]any
			if err := json.Unmarshal(entity, &parsed); err != nil {
				continue
			}

			getString := func(key string) string {
				if v, ok := parsed[key].(string); ok {
					return v
				}
				return ""
			}

			getDecimal := func(key string) decimal.Decimal {
				if v, ok := parsed[key].(string); ok {
					d, _ := decimal.NewFromString(v)
					return d
				}
				if v, ok := parsed[key].(float64); ok {
					return decimal.NewFromFloat(v)
				}
				return decimal.Zero
			}

			closedAt, err := time.Parse(time.RFC3339Nano, getString("ClosedAt"))
			if err != nil || closedAt.Before(since) {
				continue
			}

			movements := 0
			if v, ok := parsed["Movements"].(float64); ok {
				movements = int(v)
			}

			closed = append(closed, models.ClosedAccount{
				Username:  getString("Username"),
				Owner:     getString("Owner"),
				Currency:  getString("Currency"),
				Locale:    getString("Locale"),
				Balance:   getDecimal("Balance"),
				Movements: movements,
				ClosedAt:  closedAt,
			})
		}
	}

	sort.Slice(closed, func(i, j int) bool { return closed[i].ClosedAt.Before(closed[j].ClosedAt) })
	return closed, nil
}
