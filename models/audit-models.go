package backoffice_integration_models

import "time"

// APICallLog records one round trip to the back-office API. Bodies are
// gzip-compressed before insert to keep the audit table small.
type APICallLog struct {
	ID           uint      `json:"id"`
	HTTPMethod   string    `json:"http_method" validate:"required"`
	URI          string    `json:"uri" validate:"required"`
	Query        string    `json:"query"`
	TraceID      string    `json:"trace_id"`
	StatusCode   int       `json:"status_code" validate:"required"`
	Latency      float32   `json:"latency"`
	RequestBody  []byte    `json:"request_body"`
	ResponseBody []byte    `json:"response_body"`
	StartAt      time.Time `json:"start_at"`
	EndAt        time.Time `json:"end_at"`
}
