package backoffice_integration_models

import "time"

// AllocationWatch tracks one P2P allocation deadline on the client side.
// When the timer fires the watcher re-fetches the allocation; the backend
// remains the sole authority on the actual state transition.
type AllocationWatch struct {
	AllocationID string
	DeadlineAt   time.Time
	Timer        *time.Timer
	Notify       func(allocation *P2PAllocation)
}
