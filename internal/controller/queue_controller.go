package controller

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/leadowl/leadowl-backend/internal/queue"
	"github.com/leadowl/leadowl-backend/internal/service"
)

type QueueController struct {
	Processor *service.QueueProcessor
	Ticks     queue.Queue
}

type processRequest struct {
	WorkspaceID *int64 `json:"workspace_id,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	DryRun      bool   `json:"dry_run,omitempty"`
}

// ProcessQueue runs one processor invocation synchronously and returns the
// per-entry results.
func (c *QueueController) ProcessQueue(w http.ResponseWriter, r *http.Request) {
	var body processRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	result, err := c.Processor.Process(r.Context(), service.ProcessOptions{
		WorkspaceID: body.WorkspaceID,
		Limit:       body.Limit,
		DryRun:      body.DryRun,
	})
	if err != nil {
		log.Println("⚠️ queue processing failed:", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// Tick enqueues an asynchronous processing trigger instead of running the
// loop inline.
func (c *QueueController) Tick(w http.ResponseWriter, r *http.Request) {
	var body processRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	opts := service.ProcessOptions{
		WorkspaceID: body.WorkspaceID,
		Limit:       body.Limit,
		DryRun:      body.DryRun,
	}
	if err := c.Ticks.Publish(queue.TickTopic, opts); err != nil {
		log.Println("⚠️ failed to publish tick:", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "queued"})
}
