package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/bank"
	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/ledgercsv"
	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/view"
)

type credentialsRequest struct {
	Username string `json:"username"`
	PIN      string `json:"pin"`
}

type transferRequest struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type loanRequest struct {
	Amount string `json:"amount"`
}

type dashboardResponse struct {
	view.Dashboard
	Clear []string `json:"clear,omitempty"`
}

type statusResponse struct {
	Status string   `json:"status"`
	Clear  []string `json:"clear,omitempty"`
}

// Register adds the API and trigger routes to mux.
func (d *Dependencies) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/login", d.HandleLogin)
	mux.HandleFunc("GET /api/dashboard", d.HandleDashboard)
	mux.HandleFunc("POST /api/transfer", d.HandleTransfer)
	mux.HandleFunc("POST /api/loan", d.HandleLoan)
	mux.HandleFunc("POST /api/close", d.HandleClose)
	mux.HandleFunc("POST /api/sort", d.HandleSort)
	mux.HandleFunc("POST /api/logout", d.HandleLogout)
	mux.HandleFunc("GET /api/statement", d.HandleStatement)
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("/ProcessClosure", d.ProcessClosure)
	mux.HandleFunc("/StatementTrigger", d.HandleStatementTrigger)
	mux.HandleFunc("/HttpTrigger", d.HandleHTTPTrigger(mux))
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		slog.Warn("invalid request body", "path", r.URL.Path, "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (d *Dependencies) writeDashboard(w http.ResponseWriter, id string, clear []string) {
	v, err := d.Bank.View(id)
	if err != nil {
		WriteDenial(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, dashboardResponse{Dashboard: view.Build(v, d.now()), Clear: clear})
}

// HandleLogin opens a session and returns the dashboard.
func (d *Dependencies) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decode(w, r, &req) {
		return
	}

	s, err := d.Bank.Login(sessionID(r), req.Username, req.PIN)
	logins.With("result", result(err)).Add(1)
	if err != nil {
		slog.Info("login denied", "username", req.Username, "error", err)
		WriteDenial(w, err)
		return
	}
	d.observeSessions()

	setSession(w, s.ID)
	d.writeDashboard(w, s.ID, []string{
		bank.FieldLoginUsername, bank.FieldLoginPIN,
		bank.FieldCloseUsername, bank.FieldClosePIN,
	})
}

// HandleDashboard renders the current session.
func (d *Dependencies) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	d.writeDashboard(w, sessionID(r), nil)
}

// HandleTransfer schedules a transfer.
func (d *Dependencies) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !decode(w, r, &req) {
		return
	}

	err := d.Bank.Transfer(sessionID(r), req.To, req.Amount)
	actions.With("action", "transfer", "result", result(err)).Add(1)
	if err != nil {
		WriteDenial(w, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, statusResponse{
		Status: "scheduled",
		Clear:  []string{bank.FieldTransferTo, bank.FieldTransferAmount},
	})
}

// HandleLoan schedules a loan deposit.
func (d *Dependencies) HandleLoan(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if !decode(w, r, &req) {
		return
	}

	err := d.Bank.RequestLoan(sessionID(r), req.Amount)
	actions.With("action", "loan", "result", result(err)).Add(1)
	if err != nil {
		WriteDenial(w, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, statusResponse{
		Status: "scheduled",
		Clear:  []string{bank.FieldLoanAmount},
	})
}

// HandleClose deletes the session's account and ends the session.
func (d *Dependencies) HandleClose(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decode(w, r, &req) {
		return
	}

	err := d.Bank.Close(sessionID(r), req.Username, req.PIN)
	actions.With("action", "close", "result", result(err)).Add(1)
	if err != nil {
		WriteDenial(w, err)
		return
	}
	clearSession(w)
	WriteJSON(w, http.StatusOK, statusResponse{
		Status: "closed",
		Clear:  []string{bank.FieldCloseUsername, bank.FieldClosePIN},
	})
}

// HandleSort flips the movement order and returns the dashboard.
func (d *Dependencies) HandleSort(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	_, err := d.Bank.ToggleSort(id)
	actions.With("action", "sort", "result", result(err)).Add(1)
	if err != nil {
		WriteDenial(w, err)
		return
	}
	d.writeDashboard(w, id, nil)
}

// HandleLogout ends the session.
func (d *Dependencies) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := d.Bank.Logout(sessionID(r)); err != nil {
		WriteDenial(w, err)
		return
	}
	clearSession(w)
	WriteJSON(w, http.StatusOK, view.Hidden())
}

// HandleStatement downloads the session account's movements as CSV.
func (d *Dependencies) HandleStatement(w http.ResponseWriter, r *http.Request) {
	v, err := d.Bank.View(sessionID(r))
	if err != nil {
		WriteDenial(w, err)
		return
	}

	var buf bytes.Buffer
	if err := ledgercsv.WriteStatement(&buf, v.Account); err != nil {
		slog.Error("failed to encode statement", "username", v.Account.Username, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to encode statement")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", v.Account.Username+".csv"))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
