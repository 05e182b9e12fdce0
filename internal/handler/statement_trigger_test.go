package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/models"
	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/services"
)

func TestHandleStatementTrigger_Success(t *testing.T) {
	deps := newTestDeps(t)

	uploads := map[string]string{}
	deps.Blob = &MockBlobClient{
		UploadStatementFunc: func(ctx context.Context, blobName, csv string) error {
			uploads[blobName] = csv
			return nil
		},
	}
	deps.Database = &MockDatabaseClient{
		GetClosedAccountsFunc: func(ctx context.Context, since time.Time) ([]models.ClosedAccount, error) {
			assert.Equal(t, fixedNow.AddDate(0, 0, -1), since)
			return []models.ClosedAccount{{Username: "xx", Owner: "Gone Account"}}, nil
		},
	}
	var run services.StatementRun
	deps.Email = &MockEmailClient{
		SendStatementSummaryFunc: func(ctx context.Context, r services.StatementRun) error {
			run = r
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/StatementTrigger", nil)
	w := httptest.NewRecorder()
	deps.HandleStatementTrigger(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	names := make([]string, 0, len(uploads))
	for name := range uploads {
		names = append(names, name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"2025-02-01/jd.csv", "2025-02-01/js.csv", "2025-02-01/mg.csv"}, names)
	assert.Equal(t, 9, strings.Count(uploads["2025-02-01/mg.csv"], "\n"))

	require.Len(t, run.Accounts, 3)
	assert.Equal(t, "$11,720.00", run.Accounts[1].Balance)
	require.Len(t, run.Closed, 1)
	assert.Empty(t, run.Errors)
}

func TestHandleStatementTrigger_PartialFailure(t *testing.T) {
	deps := newTestDeps(t)
	deps.Blob = &MockBlobClient{
		UploadStatementFunc: func(ctx context.Context, blobName, csv string) error {
			if strings.HasSuffix(blobName, "/js.csv") {
				return errors.New("throttled")
			}
			return nil
		},
	}
	var run services.StatementRun
	deps.Email = &MockEmailClient{
		SendStatementSummaryFunc: func(ctx context.Context, r services.StatementRun) error {
			run = r
			return errors.New("mail failed")
		},
	}

	w := httptest.NewRecorder()
	deps.HandleStatementTrigger(w, httptest.NewRequest(http.MethodPost, "/StatementTrigger", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, run.Accounts, 2)
	assert.Equal(t, []string{"js: upload failed"}, run.Errors)
}

func TestHandleStatementTrigger_AllUploadsFail(t *testing.T) {
	deps := newTestDeps(t)
	deps.Blob = &MockBlobClient{
		UploadStatementFunc: func(ctx context.Context, blobName, csv string) error {
			return errors.New("offline")
		},
	}

	w := httptest.NewRecorder()
	deps.HandleStatementTrigger(w, httptest.NewRequest(http.MethodPost, "/StatementTrigger", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleStatementTrigger_NoBlob(t *testing.T) {
	deps := &Dependencies{} // returns before touching the bank

	w := httptest.NewRecorder()
	deps.HandleStatementTrigger(w, httptest.NewRequest(http.MethodPost, "/StatementTrigger", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
