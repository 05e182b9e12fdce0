package ledgercsv

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/bank"
	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/models"
)

// LoadAccounts builds the accounts from the seed file at path, or from the
// built-in seed when path is empty. Invalid rows fail the whole load.
func LoadAccounts(path string) ([]*models.Account, error) {
	if path == "" {
		return bank.BuildAccounts(bank.DefaultSeed())
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	seeds, errs := ParseSeed(string(content))
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid seed file %s: %s", path, strings.Join(errs, "; "))
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("seed file %s has no accounts", path)
	}

	accounts, err := bank.BuildAccounts(seeds)
	if err != nil {
		return nil, err
	}
	slog.Info("loaded seed file", "path", path, "accounts", len(accounts))
	return accounts, nil
}
