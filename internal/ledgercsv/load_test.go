package ledgercsv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAccounts_Default(t *testing.T) {
	accounts, err := LoadAccounts("")

	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, "js", accounts[0].Username)
	assert.Equal(t, "jd", accounts[1].Username)
	assert.Equal(t, "stw", accounts[2].Username)
}

func TestLoadAccounts_File(t *testing.T) {
	path := writeSeed(t, `Owner,PIN,Interest Rate,Currency,Locale,Date,Amount
Ada Lovelace,4444,1,GBP,en-GB,2024-01-02,100
Ada Lovelace,4444,1,GBP,en-GB,2024-01-03,-40`)

	accounts, err := LoadAccounts(path)

	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "al", accounts[0].Username)
	assert.Len(t, accounts[0].Movements, 2)
	assert.NotEqual(t, "4444", string(accounts[0].PINHash))
}

func TestLoadAccounts_Errors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.csv") }},
		{"header only", func(t *testing.T) string {
			return writeSeed(t, "Owner,PIN,Interest Rate,Currency,Locale,Date,Amount\n")
		}},
		{"invalid row", func(t *testing.T) string {
			return writeSeed(t, "Owner,PIN,Interest Rate,Currency,Locale,Date,Amount\nAda Lovelace,abc,1,GBP,en-GB,2024-01-02,100\n")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadAccounts(tt.path(t))
			assert.Error(t, err)
		})
	}
}
