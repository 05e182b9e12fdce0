package services

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/format"
	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/models"
)

// StatementLine is one exported statement.
type StatementLine struct {
	Username string
	Owner    string
	Balance  string
	Blob     string
}

// StatementRun summarises one scheduled export.
type StatementRun struct {
	Date     time.Time
	Accounts []StatementLine
	Closed   []models.ClosedAccount
	Errors   []string
}

// RenderErrorSection renders the error section HTML.
func RenderErrorSection(errors []string) string {
	if len(errors) == 0 {
		return ""
	}

	var errorItems strings.Builder
	for _, e := range errors {
		fmt.Fprintf(&errorItems, "<li>%s</li>", html.EscapeString(e))
	}

	return fmt.Sprintf(`
		<div style="background-color: #fff4f4; border-left: 5px solid #d13438; padding: 15px; margin-bottom: 20px;">
			<h3 style="color: #d13438; margin-top: 0; font-size: 18px;">⚠️ Warning: Some statements were not exported</h3>
			<ul style="margin-bottom: 0; padding-left: 20px;">
				%s
			</ul>
		</div>
	`, errorItems.String())
}

func renderPage(title, color, content string) string {
	return fmt.Sprintf(`
		<html>
		<body style="font-family: 'Segoe UI', sans-serif; color: #333; line-height: 1.6; background-color: #f4f4f4; margin: 0; padding: 20px;">
			<div style="max-width: 600px; margin: 0 auto; background: white; border-radius: 8px; overflow: hidden; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
				<div style="background-color: %s; padding: 20px; text-align: center; color: white;">
					<h2 style="margin: 0;">%s</h2>
				</div>
				<div style="padding: 20px;">
					%s
				</div>
			</div>
		</body>
		</html>
	`, color, title, content)
}

// RenderClosureBody renders the notice sent when an account is closed.
func RenderClosureBody(event models.ClosureEvent) string {
	acc := event.Account
	content := fmt.Sprintf(`
					<p>The account <strong>%s</strong> owned by %s was closed on %s.</p>
					<p>Final balance: <strong>%s</strong> across %d movements.</p>
	`,
		html.EscapeString(acc.Username),
		html.EscapeString(acc.Owner),
		format.Date(acc.ClosedAt, acc.Locale),
		format.Currency(acc.Balance, acc.Locale, acc.Currency),
		acc.Movements,
	)
	return renderPage("Account Closed", "#e52a5a", content)
}

// RenderStatementBody renders the summary of a statement run.
func RenderStatementBody(run StatementRun) string {
	var rows strings.Builder
	for _, line := range run.Accounts {
		fmt.Fprintf(&rows, `<tr><td>%s</td><td>%s</td><td style="text-align: right;">%s</td><td>%s</td></tr>`,
			html.EscapeString(line.Username), html.EscapeString(line.Owner), line.Balance, html.EscapeString(line.Blob))
	}

	closed := ""
	if len(run.Closed) > 0 {
		var items strings.Builder
		for _, acc := range run.Closed {
			fmt.Fprintf(&items, "<li>%s (%s), %s</li>",
				html.EscapeString(acc.Username),
				html.EscapeString(acc.Owner),
				format.Currency(acc.Balance, acc.Locale, acc.Currency))
		}
		closed = fmt.Sprintf("<p>Closed since the last run:</p><ul>%s</ul>", items.String())
	}

	content := fmt.Sprintf(`
					%s
					<p>%d statements exported.</p>
					<table style="width: 100%%; border-collapse: collapse;">
						<tr><th>User</th><th>Owner</th><th>Balance</th><th>Blob</th></tr>
						%s
					</table>
					%s
	`, RenderErrorSection(run.Errors), len(run.Accounts), rows.String(), closed)
	return renderPage("Statements Exported", "#39b385", content)
}
