package watcher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	boInterfaces "github.com/zarbox/backoffice-integration/interfaces"
	boModel "github.com/zarbox/backoffice-integration/models"
)

// AllocationWatcher keeps client-side timers for P2P allocation deadlines.
// When a deadline passes it re-fetches the allocation from the backend and
// notifies the callback with whatever status the backend reports; no state
// transition ever happens locally.
type AllocationWatcher struct {
	P2P          boInterfaces.P2P
	RefetchDelay time.Duration

	mu          sync.Mutex
	WatchedList map[string]*boModel.AllocationWatch
}

func NewAllocationWatcher(p2p boInterfaces.P2P, refetchDelay time.Duration) *AllocationWatcher {
	return &AllocationWatcher{
		P2P:          p2p,
		RefetchDelay: refetchDelay,
		WatchedList:  make(map[string]*boModel.AllocationWatch),
	}
}

// Watch starts a timer for the allocation deadline. Re-watching an already
// watched allocation replaces the previous deadline.
func (s *AllocationWatcher) Watch(watch *boModel.AllocationWatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.WatchedList[watch.AllocationID]; ok && existing.Timer != nil {
		existing.Timer.Stop()
	}

	// AfterFunc holds no goroutine while waiting, so stopped and replaced
	// watches leave nothing behind.
	watch.Timer = time.AfterFunc(time.Until(watch.DeadlineAt), func() {
		if err := s.expireFunc(watch); err != nil {
			slog.Error("failed to resolve expired allocation", "allocation", watch.AllocationID, "reason", err)
		}
	})
	s.WatchedList[watch.AllocationID] = watch
}

func (s *AllocationWatcher) Remove(allocationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if watch, ok := s.WatchedList[allocationID]; ok {
		if watch.Timer != nil {
			watch.Timer.Stop()
		}
		delete(s.WatchedList, allocationID)
	}
}

func (s *AllocationWatcher) Get(allocationID string) *boModel.AllocationWatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.WatchedList[allocationID]
}

func (s *AllocationWatcher) Watched() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.WatchedList))
	for id := range s.WatchedList {
		ids = append(ids, id)
	}
	return ids
}

// resolve removes the watch if it is still the registered one for its
// allocation. A false return means a newer Watch call or a Remove took over
// while the expiry was being handled.
func (s *AllocationWatcher) resolve(watch *boModel.AllocationWatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.WatchedList[watch.AllocationID] != watch {
		return false
	}
	delete(s.WatchedList, watch.AllocationID)
	return true
}

// expireFunc runs once the deadline timer has fired. The backend may lag
// behind its own expiry sweep, so the first fetch after the deadline can
// still report a live status; in that case one delayed re-fetch is done
// before giving up until the next Watch call.
func (s *AllocationWatcher) expireFunc(watch *boModel.AllocationWatch) error {
	if s.Get(watch.AllocationID) != watch {
		// Superseded between the timer firing and the callback running.
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	allocation, err := s.P2P.GetAllocation(ctx, watch.AllocationID)
	if err != nil {
		return err
	}

	if !allocation.Status.Terminal() && s.RefetchDelay > 0 {
		slog.Debug("allocation still open after deadline, re-fetching once", "allocation", watch.AllocationID)
		time.Sleep(s.RefetchDelay)
		allocation, err = s.P2P.GetAllocation(ctx, watch.AllocationID)
		if err != nil {
			return err
		}
	}

	if !s.resolve(watch) {
		return nil
	}

	if watch.Notify != nil {
		watch.Notify(allocation)
	}

	return nil
}
