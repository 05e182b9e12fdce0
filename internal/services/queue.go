package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"

	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/models"
)

// QueueService handles interactions with Azure Queue Storage.
type QueueService struct {
	serviceClient *azqueue.ServiceClient
	closureQueue  string
}

// NewQueueService creates a new QueueService instance. Closure events go to
// CLOSURE_QUEUE, "account-closures" by default.
func NewQueueService() (*QueueService, error) {
	queueURL, err := requireEnv("QUEUE_SERVICE_URL")
	if err != nil {
		return nil, err
	}
	closureQueue := envOr("CLOSURE_QUEUE", "account-closures")

	slog.Info("initializing queue service", "queue_url", queueURL)
	auth, err := resolveStorageAuth(queueURL, "queue")
	if err != nil {
		return nil, err
	}

	var client *azqueue.ServiceClient
	if auth.local {
		cred, err := azqueue.NewSharedKeyCredential(auth.account, auth.key)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = azqueue.NewServiceClientWithSharedKeyCredential(queueURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create queue service client with shared key: %w", err)
		}
	} else {
		client, err = azqueue.NewServiceClient(queueURL, auth.token, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create queue service client: %w", err)
		}
	}

	slog.Info("queue service initialized", "closure_queue", closureQueue)
	return &QueueService{serviceClient: client, closureQueue: closureQueue}, nil
}

// PublishClosure enqueues a closure event.
func (s *QueueService) PublishClosure(ctx context.Context, event models.ClosureEvent) error {
	return s.EnqueueMessage(ctx, s.closureQueue, event)
}

// EnqueueMessage adds a JSON message to a queue.
func (s *QueueService) EnqueueMessage(ctx context.Context, queueName string, message any) error {
	queueClient := s.serviceClient.NewQueueClient(queueName)

	_, err := queueClient.Create(ctx, nil)
	if err != nil && !strings.Contains(err.Error(), "QueueAlreadyExists") {
		slog.Warn("failed to create queue (may already exist)", "queue", queueName, "error", err)
	}

	msgBytes, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	// The Functions host expects base64 queue payloads.
	encodedMsg := base64.StdEncoding.EncodeToString(msgBytes)

	if _, err := queueClient.EnqueueMessage(ctx, encodedMsg, nil); err != nil {
		slog.Error("failed to enqueue message", "queue", queueName, "error", err)
		return fmt.Errorf("failed to enqueue message to %s: %w", queueName, err)
	}

	slog.Info("enqueued message", "queue", queueName)
	return nil
}
