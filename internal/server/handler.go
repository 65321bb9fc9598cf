package server

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/homemade/recruitbridge/sync"
)

// maxSubmissionBytes bounds webhook bodies.
const maxSubmissionBytes = 1 << 20

type Handler struct {
	bridge *sync.Bridge
	store  sync.LogStore
}

func NewHandler(bridge *sync.Bridge, store sync.LogStore) *Handler {
	return &Handler{bridge: bridge, store: store}
}

// Submit handles a form submission webhook. The form host always gets a 202
// once the body parses, CRM side failures are only visible in the debug log.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSubmissionBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	trigger, err := sync.ParseWebhookTrigger(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// a submission is not cancelled once started, even if the form host hangs up
	result, err := h.bridge.HandleSubmission(context.WithoutCancel(r.Context()), trigger)
	if err != nil {
		log.Printf("ERROR: submission %s stopped: %v", result.SubmissionID, err)
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"submission_id": result.SubmissionID,
		"admitted":      result.Admitted,
	})
}

func (h *Handler) ReadLog(w http.ResponseWriter, r *http.Request) {
	lines, err := h.store.Read(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if lines == nil {
		lines = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": lines})
}

func (h *Handler) ClearLog(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
