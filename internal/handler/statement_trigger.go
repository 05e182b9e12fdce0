package handler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/format"
	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/ledgercsv"
	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/services"
)

// HandleStatementTrigger exports a statement per account to blob storage and
// mails the operators a summary, including accounts closed in the last day.
func (d *Dependencies) HandleStatementTrigger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slog.Info("starting statement export")

	if d.Blob == nil {
		slog.Warn("blob storage is not configured; skipping statement export")
		w.WriteHeader(http.StatusOK)
		return
	}

	now := d.now().UTC()
	run := services.StatementRun{Date: now}
	accounts := d.Bank.Store().Accounts()

	for _, acc := range accounts {
		var buf bytes.Buffer
		if err := ledgercsv.WriteStatement(&buf, acc); err != nil {
			run.Errors = append(run.Errors, fmt.Sprintf("%s: %v", acc.Username, err))
			continue
		}

		blobName := fmt.Sprintf("%s/%s.csv", now.Format("2006-01-02"), acc.Username)
		if err := d.Blob.UploadStatement(ctx, blobName, buf.String()); err != nil {
			slog.Error("failed to upload statement", "username", acc.Username, "error", err)
			run.Errors = append(run.Errors, fmt.Sprintf("%s: upload failed", acc.Username))
			continue
		}

		run.Accounts = append(run.Accounts, services.StatementLine{
			Username: acc.Username,
			Owner:    acc.Owner,
			Balance:  format.Currency(acc.Balance(), acc.Locale, acc.Currency),
			Blob:     blobName,
		})
	}

	if d.Database != nil {
		closed, err := d.Database.GetClosedAccounts(ctx, now.AddDate(0, 0, -1))
		if err != nil {
			slog.Error("failed to list closed accounts", "error", err)
		} else {
			run.Closed = closed
		}
	}

	if d.Email != nil {
		if err := d.Email.SendStatementSummary(ctx, run); err != nil {
			slog.Error("failed to send statement summary", "error", err)
		}
	}

	slog.Info("statement export complete", "exported", len(run.Accounts), "failed", len(run.Errors))
	if len(accounts) > 0 && len(run.Accounts) == 0 {
		WriteError(w, http.StatusInternalServerError, "No statements exported")
		return
	}
	w.WriteHeader(http.StatusOK)
}
