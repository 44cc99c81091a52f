package backoffice_integration_models

import (
	"encoding/json"
	"time"
)

// Tahesab is the external accounting system. The outbox is its integration
// retry queue, owned entirely by the backend; these shapes are read-only
// views of it.

type TahesabMapping struct {
	UserID      string     `json:"userId"`
	TahesabCode string     `json:"tahesabCode"`
	Status      string     `json:"status"`
	SyncedAt    *time.Time `json:"syncedAt,omitempty"`
	LastError   string     `json:"lastError,omitempty"`
}

type TahesabOutboxEntry struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	Status      string          `json:"status"`
	Attempts    int             `json:"attempts"`
	LastError   string          `json:"lastError,omitempty"`
	NextRetryAt *time.Time      `json:"nextRetryAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type TahesabRetryResult struct {
	OutboxID string `json:"outboxId"`
	Queued   bool   `json:"queued"`
}

type TahesabResyncResult struct {
	UserID   string `json:"userId"`
	OutboxID string `json:"outboxId,omitempty"`
	Queued   bool   `json:"queued"`
}
