package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/models"
)

// invokeRequest represents the payload from Azure Functions Custom Handler.
type invokeRequest struct {
	Data     map[string]any `json:"Data"`
	Metadata map[string]any `json:"Metadata"`
}

var errNoQueueItem = errors.New("missing queueItem in Data")

// queueItem returns the raw message of a queue invocation. The host passes
// JSON messages either as a string or already decoded.
func (req invokeRequest) queueItem() ([]byte, error) {
	v, ok := req.Data["queueItem"]
	if !ok {
		if v, ok = req.Data["queueitem"]; !ok {
			return nil, errNoQueueItem
		}
	}
	if s, ok := v.(string); ok {
		return []byte(s), nil
	}
	return json.Marshal(v)
}

// ProcessClosure handles the queue trigger for closed accounts: archive,
// statement, operator notice.
func (d *Dependencies) ProcessClosure(w http.ResponseWriter, r *http.Request) {
	var invokeReq invokeRequest
	if err := json.NewDecoder(r.Body).Decode(&invokeReq); err != nil {
		slog.Error("failed to unmarshal queue request", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to unmarshal request")
		return
	}

	raw, err := invokeReq.queueItem()
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var event models.ClosureEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		slog.Error("failed to unmarshal closure event", "error", err)
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Invalid queueItem JSON: %v", err))
		return
	}
	if event.Account.Username == "" {
		slog.Warn("closure event missing username")
		WriteError(w, http.StatusBadRequest, "Missing account username")
		return
	}

	log := slog.With("username", event.Account.Username)
	log.Info("processing closure", "movements", len(event.Movements))

	if err := d.handleClosure(r.Context(), event); err != nil {
		log.Error("closure processing failed", "error", err)
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Info("closure processing complete")
	w.WriteHeader(http.StatusOK)
}
