package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/bank"
)

// SessionCookie carries the session id between requests.
const SessionCookie = "bankist_session"

// Dependencies holds the bank and the optional cloud services used by the
// handlers. A nil service disables the feature that needs it.
type Dependencies struct {
	Bank     *bank.Bank
	Database DatabaseClient
	Blob     BlobClient
	Queue    QueueClient
	Email    EmailClient
	Now      func() time.Time
}

func (d *Dependencies) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// WriteError writes an error response.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

type denial struct {
	Error string   `json:"error"`
	Clear []string `json:"clear"`
}

var denialStatus = map[error]int{
	bank.ErrAccountNotFound:     http.StatusNotFound,
	bank.ErrIncorrectPIN:        http.StatusUnauthorized,
	bank.ErrNotAuthenticated:    http.StatusUnauthorized,
	bank.ErrSelfTransfer:        http.StatusBadRequest,
	bank.ErrRecipientNotFound:   http.StatusNotFound,
	bank.ErrInsufficientBalance: http.StatusConflict,
	bank.ErrNegativeAmount:      http.StatusBadRequest,
	bank.ErrLoanDenied:          http.StatusUnprocessableEntity,
	bank.ErrWrongCredentials:    http.StatusUnauthorized,
}

// WriteDenial reports a refused action along with the inputs to clear.
// Errors that are not denials become a 500.
func WriteDenial(w http.ResponseWriter, err error) {
	for target, status := range denialStatus {
		if errors.Is(err, target) {
			clear := bank.ClearFields(err)
			if clear == nil {
				clear = []string{}
			}
			WriteJSON(w, status, denial{Error: target.Error(), Clear: clear})
			return
		}
	}
	slog.Error("unexpected action error", "error", err)
	WriteError(w, http.StatusInternalServerError, "Internal error")
}

func sessionID(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

func setSession(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
