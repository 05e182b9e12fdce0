package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// BlobService handles interactions with Azure Blob Storage.
type BlobService struct {
	client    *azblob.Client
	container string
}

// NewBlobService creates a new BlobService instance. Statements are written
// to STATEMENTS_CONTAINER, "statements" by default.
func NewBlobService() (*BlobService, error) {
	blobURL, err := requireEnv("BLOB_SERVICE_URL")
	if err != nil {
		return nil, err
	}
	container := envOr("STATEMENTS_CONTAINER", "statements")

	slog.Info("initializing blob service", "blob_url", blobURL)
	auth, err := resolveStorageAuth(blobURL, "blob")
	if err != nil {
		return nil, err
	}

	var client *azblob.Client
	if auth.local {
		cred, err := azblob.NewSharedKeyCredential(auth.account, auth.key)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = azblob.NewClientWithSharedKeyCredential(blobURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create blob client with shared key: %w", err)
		}
	} else {
		client, err = azblob.NewClient(blobURL, auth.token, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create blob client: %w", err)
		}
	}

	slog.Info("blob service initialized", "container", container)
	return &BlobService{client: client, container: container}, nil
}

// UploadStatement stores a CSV statement under blobName.
func (s *BlobService) UploadStatement(ctx context.Context, blobName, csv string) error {
	slog.Info("uploading statement", "container", s.container, "blob_name", blobName, "size_bytes", len(csv))
	_, err := s.client.CreateContainer(ctx, s.container, nil)
	if err != nil && !strings.Contains(err.Error(), "ContainerAlreadyExists") {
		slog.Warn("failed to create container (may already exist)", "container", s.container, "error", err)
	}

	_, err = s.client.UploadBuffer(ctx, s.container, blobName, []byte(csv), nil)
	if err != nil {
		slog.Error("failed to upload statement", "container", s.container, "blob_name", blobName, "error", err)
		return fmt.Errorf("failed to upload blob %s/%s: %w", s.container, blobName, err)
	}
	return nil
}

// DownloadStatement returns a stored statement.
func (s *BlobService) DownloadStatement(ctx context.Context, blobName string) (string, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, blobName, nil)
	if err != nil {
		return "", fmt.Errorf("failed to download blob %s/%s: %w", s.container, blobName, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read blob content: %w", err)
	}
	return string(data), nil
}
