// Package tui renders the bank dashboard in a terminal.
package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/bank"
	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/view"
)

// fields in focus order. The first two are the only ones shown while
// logged out.
var fields = []string{
	bank.FieldLoginUsername,
	bank.FieldLoginPIN,
	bank.FieldTransferTo,
	bank.FieldTransferAmount,
	bank.FieldLoanAmount,
	bank.FieldCloseUsername,
	bank.FieldClosePIN,
}

var placeholders = map[string]string{
	bank.FieldLoginUsername:  "user",
	bank.FieldLoginPIN:       "PIN",
	bank.FieldTransferTo:     "transfer to",
	bank.FieldTransferAmount: "amount",
	bank.FieldLoanAmount:     "loan amount",
	bank.FieldCloseUsername:  "confirm user",
	bank.FieldClosePIN:       "confirm PIN",
}

type tickMsg time.Time

// Model is the bubbletea model of the dashboard.
type Model struct {
	Styles Styles

	bank    *bank.Bank
	now     func() time.Time
	session string

	inputs   []textinput.Model
	focus    int
	status   string
	dash     view.Dashboard
	viewport viewport.Model
	width    int
}

// Option configures a Model.
type Option func(*Model)

// WithClock overrides the clock used for the date label.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		m.now = now
	}
}

// New returns a logged-out dashboard over b.
func New(b *bank.Bank, opts ...Option) Model {
	m := Model{
		Styles:   defaultStyles(),
		bank:     b,
		now:      time.Now,
		dash:     view.Hidden(),
		viewport: viewport.New(60, 10),
		width:    80,
	}

	for _, f := range fields {
		ti := textinput.New()
		ti.Placeholder = placeholders[f]
		ti.Prompt = ""
		ti.Width = 14
		if f == bank.FieldLoginPIN || f == bank.FieldClosePIN {
			ti.EchoMode = textinput.EchoPassword
		}
		m.inputs = append(m.inputs, ti)
	}
	m.inputs[0].Focus()

	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = max(msg.Width-4, 20)
		m.viewport.Height = max(msg.Height-16, 4)
		m.renderMovements()
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tick()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			if m.session != "" {
				_ = m.bank.Logout(m.session)
			}
			return m, tea.Quit
		case tea.KeyTab, tea.KeyShiftTab:
			step := 1
			if msg.Type == tea.KeyShiftTab {
				step = -1
			}
			return m, m.moveFocus(step)
		case tea.KeyEnter:
			m.submit()
			return m, nil
		case tea.KeyCtrlS:
			m.toggleSort()
			return m, nil
		case tea.KeyCtrlL:
			m.logout()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// focusable is the number of inputs reachable with Tab.
func (m *Model) focusable() int {
	if m.session == "" {
		return 2
	}
	return len(m.inputs)
}

func (m *Model) moveFocus(step int) tea.Cmd {
	n := m.focusable()
	m.inputs[m.focus].Blur()
	m.focus = ((m.focus+step)%n + n) % n
	return m.inputs[m.focus].Focus()
}

func (m *Model) value(field string) string {
	for i, f := range fields {
		if f == field {
			return m.inputs[i].Value()
		}
	}
	return ""
}

func (m *Model) clear(names ...string) {
	for _, name := range names {
		for i, f := range fields {
			if f == name {
				m.inputs[i].Reset()
			}
		}
	}
}

func (m *Model) deny(err error) {
	m.status = err.Error()
	m.clear(bank.ClearFields(err)...)
}

func (m *Model) submit() {
	m.status = ""
	switch fields[m.focus] {
	case bank.FieldLoginUsername, bank.FieldLoginPIN:
		s, err := m.bank.Login(m.session, m.value(bank.FieldLoginUsername), m.value(bank.FieldLoginPIN))
		if err != nil {
			m.deny(err)
			return
		}
		m.session = s.ID
		m.clear(bank.FieldLoginUsername, bank.FieldLoginPIN, bank.FieldCloseUsername, bank.FieldClosePIN)
		m.inputs[m.focus].Blur()
		m.focus = 0
		m.inputs[0].Focus()

	case bank.FieldTransferTo, bank.FieldTransferAmount:
		if err := m.bank.Transfer(m.session, m.value(bank.FieldTransferTo), m.value(bank.FieldTransferAmount)); err != nil {
			m.deny(err)
			break
		}
		m.clear(bank.FieldTransferTo, bank.FieldTransferAmount)
		m.status = "Transfer scheduled"

	case bank.FieldLoanAmount:
		if err := m.bank.RequestLoan(m.session, m.value(bank.FieldLoanAmount)); err != nil {
			m.deny(err)
			break
		}
		m.clear(bank.FieldLoanAmount)
		m.status = "Loan scheduled"

	case bank.FieldCloseUsername, bank.FieldClosePIN:
		if err := m.bank.Close(m.session, m.value(bank.FieldCloseUsername), m.value(bank.FieldClosePIN)); err != nil {
			m.deny(err)
			break
		}
		m.clear(bank.FieldCloseUsername, bank.FieldClosePIN)
		m.status = "Account closed"
	}
	m.refresh()
}

func (m *Model) toggleSort() {
	if _, err := m.bank.ToggleSort(m.session); err != nil {
		m.deny(err)
	}
	m.refresh()
}

func (m *Model) logout() {
	if m.session == "" {
		return
	}
	if err := m.bank.Logout(m.session); err != nil {
		slog.Warn("logout failed", "error", err)
	}
	m.refresh()
}

// refresh re-reads the session. An ended session falls back to the
// logged-out screen.
func (m *Model) refresh() {
	if m.session == "" {
		m.dash = view.Hidden()
		m.renderMovements()
		return
	}
	v, err := m.bank.View(m.session)
	if err != nil {
		if !errors.Is(err, bank.ErrNotAuthenticated) {
			slog.Error("failed to read session", "error", err)
		}
		m.session = ""
		m.dash = view.Hidden()
		m.inputs[m.focus].Blur()
		m.focus = 0
		m.inputs[0].Focus()
		m.renderMovements()
		return
	}
	m.dash = view.Build(v, m.now())
	m.renderMovements()
}

func (m *Model) renderMovements() {
	var b strings.Builder
	for _, row := range m.dash.Movements {
		kind := m.Styles.Deposit
		if row.Kind == "withdrawal" {
			kind = m.Styles.Withdrawal
		}
		fmt.Fprintf(&b, "%s  %s  %s\n",
			kind.Render(fmt.Sprintf("%2d %-10s", row.Index, strings.ToUpper(row.Kind))),
			m.Styles.Muted.Render(row.Date),
			row.Value,
		)
	}
	m.viewport.SetContent(b.String())
}

func (m Model) form(title string, from, to int) string {
	parts := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		parts = append(parts, m.inputs[i].View())
	}
	return m.Styles.Form.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.Styles.FormTitle.Render(title),
		lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(parts, "  ")),
	))
}

func (m Model) View() string {
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		m.Styles.Welcome.Render(m.dash.Welcome),
		"    ",
		m.form("Login", 0, 2),
	)
	if !m.dash.Visible {
		return lipgloss.JoinVertical(lipgloss.Left, header, m.statusLine())
	}

	order := "↓ newest first"
	if m.dash.Sorted {
		order = "↑ sorted by amount"
	}

	balance := lipgloss.JoinVertical(lipgloss.Left,
		"Current balance",
		m.Styles.Muted.Render("As of "+m.dash.Date),
	)
	summary := fmt.Sprintf("IN %s   OUT %s   INTEREST %s   %s",
		m.Styles.Deposit.Render(m.dash.In),
		m.Styles.Withdrawal.Render(m.dash.Out),
		m.Styles.Deposit.Render(m.dash.Interest),
		m.Styles.Muted.Render(order),
	)
	forms := lipgloss.JoinHorizontal(lipgloss.Top,
		m.form("Transfer money", 2, 4),
		m.form("Request loan", 4, 5),
		m.form("Close account", 5, 7),
	)
	timer := "You will be logged out in " + m.Styles.Timer.Render(m.dash.Timer)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinHorizontal(lipgloss.Center, balance, "    ", m.Styles.Balance.Render(m.dash.Balance)),
		m.Styles.Movements.Render(m.viewport.View()),
		summary,
		forms,
		timer,
		m.statusLine(),
	)
}

func (m Model) statusLine() string {
	help := m.Styles.Muted.Render("tab: next field • enter: submit • ctrl+s: sort • ctrl+l: log out • esc: quit")
	if m.status == "" {
		return help
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.Styles.Status.Render(m.status), help)
}
