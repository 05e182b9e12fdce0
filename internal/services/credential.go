package services

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// Well-known Azurite development account.
const (
	azuriteAccountName = "devstoreaccount1"
	azuriteAccountKey  = "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw=="
)

// storageAuth is how a storage client authenticates: the Azurite shared
// key for plain-http endpoints, a token credential otherwise.
type storageAuth struct {
	local   bool
	account string
	key     string
	token   azcore.TokenCredential
}

func resolveStorageAuth(serviceURL, service string) (storageAuth, error) {
	if isLocal(serviceURL) {
		slog.Info("using Azurite shared key credentials", "service", service)
		return storageAuth{local: true, account: azuriteAccountName, key: azuriteAccountKey}, nil
	}
	token, err := newDefaultAzureCredential()
	if err != nil {
		return storageAuth{}, fmt.Errorf("failed to create default azure credential: %w", err)
	}
	return storageAuth{token: token}, nil
}

// isLocal reports whether the service URL points at Azurite (plain http).
func isLocal(serviceURL string) bool {
	return strings.HasPrefix(serviceURL, "http://")
}

func newDefaultAzureCredential() (azcore.TokenCredential, error) {
	slog.Info("using default Azure credentials")
	return azidentity.NewDefaultAzureCredential(nil)
}

func requireEnv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("%s environment variable is required", key)
	}
	return v, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
