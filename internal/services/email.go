package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/models"
)

const (
	acsAPIVersion = "2023-03-31"
	acsScope      = "https://communication.azure.com//.default"
)

// EmailService sends operator notices through the Azure Communication
// Services e-mail REST API.
type EmailService struct {
	endpoint   string
	sender     string
	operators  []string
	cred       azcore.TokenCredential
	httpClient *http.Client
}

// NewEmailService reads COMMUNICATION_SERVICES_ENDPOINT, SENDER_EMAIL and
// the comma separated OPERATOR_EMAIL. A nil cred uses DefaultAzureCredential.
func NewEmailService(cred azcore.TokenCredential) (*EmailService, error) {
	endpoint, err := requireEnv("COMMUNICATION_SERVICES_ENDPOINT")
	if err != nil {
		return nil, err
	}
	sender, err := requireEnv("SENDER_EMAIL")
	if err != nil {
		return nil, err
	}
	operators := splitAddresses(os.Getenv("OPERATOR_EMAIL"))
	if len(operators) == 0 {
		return nil, fmt.Errorf("OPERATOR_EMAIL environment variable is required")
	}

	if cred == nil {
		if cred, err = newDefaultAzureCredential(); err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
	}

	return &EmailService{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		sender:     sender,
		operators:  operators,
		cred:       cred,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func splitAddresses(list string) []string {
	var out []string
	for _, addr := range strings.Split(list, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

type emailAddress struct {
	Address string `json:"address"`
}

type emailRecipients struct {
	To []emailAddress `json:"to"`
}

type emailContent struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type emailRequest struct {
	SenderAddress string          `json:"senderAddress"`
	Content       emailContent    `json:"content"`
	Recipients    emailRecipients `json:"recipients"`
}

func newEmailRequest(sender string, to []string, subject, html string) emailRequest {
	req := emailRequest{
		SenderAddress: sender,
		Content:       emailContent{Subject: subject, HTML: html},
	}
	for _, addr := range to {
		req.Recipients.To = append(req.Recipients.To, emailAddress{Address: addr})
	}
	return req
}

// SendEmail sends an HTML message to the given recipients.
func (s *EmailService) SendEmail(ctx context.Context, to []string, subject, body string) error {
	token, err := s.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{acsScope}})
	if err != nil {
		return fmt.Errorf("failed to get access token: %w", err)
	}

	payload, err := json.Marshal(newEmailRequest(s.sender, to, subject, body))
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	url := s.endpoint + "/emails:send?api-version=" + acsAPIVersion
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token.Token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email request: %w", err)
	}
	defer resp.Body.Close()

	// The send operation is asynchronous; anything but 202 means it was not queued.
	if resp.StatusCode != http.StatusAccepted {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("email request failed with status %d: %s", resp.StatusCode, detail)
	}

	slog.Info("email sent", "subject", subject, "recipients", len(to))
	return nil
}

// Operators returns the notice recipients.
func (s *EmailService) Operators() []string {
	return s.operators
}

// SendClosureNotice tells the operators an account was closed.
func (s *EmailService) SendClosureNotice(ctx context.Context, event models.ClosureEvent) error {
	subject := fmt.Sprintf("Bankist - Account %s closed", event.Account.Username)
	return s.SendEmail(ctx, s.operators, subject, RenderClosureBody(event))
}

// SendStatementSummary reports a statement run to the operators.
func (s *EmailService) SendStatementSummary(ctx context.Context, run StatementRun) error {
	subject := fmt.Sprintf("Bankist - Statements for %s", run.Date.Format("2006-01-02"))
	return s.SendEmail(ctx, s.operators, subject, RenderStatementBody(run))
}
