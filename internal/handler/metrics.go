package handler

import (
	"errors"

	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"

	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/bank"
)

var (
	logins = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Name: "bankist_logins",
		Help: "Count of login attempts",
	}, []string{"result"})
	actions = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Name: "bankist_actions",
		Help: "Count of transfer, loan, close and sort requests",
	}, []string{"action", "result"})
	settledMovements = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Name: "bankist_settled_movements",
		Help: "Count of movements applied after the settlement delay",
	}, []string{"type"})
	journaled = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Name: "bankist_journaled_movements",
		Help: "Count of movements written to the journal table",
	}, []string{})
	sessionsEnded = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Name: "bankist_sessions_ended",
		Help: "Count of ended sessions",
	}, []string{"reason"})
	activeSessions = prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
		Name: "bankist_active_sessions",
		Help: "How many sessions are logged in",
	}, []string{})
)

var resultLabels = map[error]string{
	bank.ErrAccountNotFound:     "account_not_found",
	bank.ErrIncorrectPIN:        "incorrect_pin",
	bank.ErrNotAuthenticated:    "not_authenticated",
	bank.ErrSelfTransfer:        "self_transfer",
	bank.ErrRecipientNotFound:   "recipient_not_found",
	bank.ErrInsufficientBalance: "insufficient_balance",
	bank.ErrNegativeAmount:      "negative_amount",
	bank.ErrLoanDenied:          "denied",
	bank.ErrWrongCredentials:    "wrong_credentials",
}

func result(err error) string {
	if err == nil {
		return "ok"
	}
	for target, label := range resultLabels {
		if errors.Is(err, target) {
			return label
		}
	}
	return "error"
}

func (d *Dependencies) observeSessions() {
	if d.Bank != nil {
		activeSessions.Set(float64(d.Bank.Sessions()))
	}
}
