package watcher

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"testing"
	"time"

	boInterfaces "github.com/zarbox/backoffice-integration/interfaces"
	boModel "github.com/zarbox/backoffice-integration/models"
)

// fakeP2P serves canned allocations for GetAllocation; every other method
// panics through the embedded nil interface if touched.
type fakeP2P struct {
	boInterfaces.P2P

	mu       sync.Mutex
	statuses []boModel.AllocationStatus
	calls    int
}

func (f *fakeP2P) GetAllocation(ctx context.Context, allocationID string) (*boModel.P2PAllocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	status := f.statuses[len(f.statuses)-1]
	if f.calls < len(f.statuses) {
		status = f.statuses[f.calls]
	}
	f.calls++

	return &boModel.P2PAllocation{ID: allocationID, Status: status}, nil
}

func (f *fakeP2P) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestWatchNotifiesOnExpiredAllocation(t *testing.T) {
	backend := &fakeP2P{statuses: []boModel.AllocationStatus{boModel.AllocationExpired}}
	watcher := NewAllocationWatcher(backend, 0)

	notified := make(chan *boModel.P2PAllocation, 1)
	watcher.Watch(&boModel.AllocationWatch{
		AllocationID: "a-1",
		DeadlineAt:   time.Now().Add(10 * time.Millisecond),
		Notify: func(allocation *boModel.P2PAllocation) {
			notified <- allocation
		},
	})

	select {
	case allocation := <-notified:
		if allocation.Status != boModel.AllocationExpired {
			t.Errorf("wrong status %s", allocation.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the deadline callback")
	}

	if watcher.Get("a-1") != nil {
		t.Error("a resolved watch must be removed from the list")
	}
}

func TestWatchRefetchesWhileBackendLags(t *testing.T) {
	// First fetch still reports the allocation open; the watcher must retry
	// once after the configured delay and deliver the terminal status.
	backend := &fakeP2P{statuses: []boModel.AllocationStatus{
		boModel.AllocationProofSubmitted,
		boModel.AllocationExpired,
	}}
	watcher := NewAllocationWatcher(backend, 10*time.Millisecond)

	notified := make(chan *boModel.P2PAllocation, 1)
	watcher.Watch(&boModel.AllocationWatch{
		AllocationID: "a-2",
		DeadlineAt:   time.Now().Add(10 * time.Millisecond),
		Notify: func(allocation *boModel.P2PAllocation) {
			notified <- allocation
		},
	})

	select {
	case allocation := <-notified:
		if allocation.Status != boModel.AllocationExpired {
			t.Errorf("wrong status %s", allocation.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the deadline callback")
	}

	if got := backend.callCount(); got != 2 {
		t.Errorf("expected exactly one re-fetch, got %d calls", got)
	}
}

func TestRewatchReplacesDeadline(t *testing.T) {
	backend := &fakeP2P{statuses: []boModel.AllocationStatus{boModel.AllocationExpired}}
	watcher := NewAllocationWatcher(backend, 0)

	watcher.Watch(&boModel.AllocationWatch{
		AllocationID: "a-3",
		DeadlineAt:   time.Now().Add(time.Hour),
	})

	notified := make(chan struct{}, 1)
	watcher.Watch(&boModel.AllocationWatch{
		AllocationID: "a-3",
		DeadlineAt:   time.Now().Add(10 * time.Millisecond),
		Notify: func(allocation *boModel.P2PAllocation) {
			notified <- struct{}{}
		},
	})

	select {
	case <-notified:
	case <-time.After(2 * time.Second):
		t.Fatal("re-watching must replace the previous deadline")
	}
}

func TestRemoveLeavesNoGoroutinesBehind(t *testing.T) {
	backend := &fakeP2P{statuses: []boModel.AllocationStatus{boModel.AllocationExpired}}
	watcher := NewAllocationWatcher(backend, 0)

	before := runtime.NumGoroutine()

	for i := 0; i < 50; i++ {
		watcher.Watch(&boModel.AllocationWatch{
			AllocationID: fmt.Sprintf("a-%d", i),
			DeadlineAt:   time.Now().Add(time.Hour),
		})
	}
	for i := 0; i < 50; i++ {
		watcher.Remove(fmt.Sprintf("a-%d", i))
	}

	time.Sleep(50 * time.Millisecond)

	if after := runtime.NumGoroutine(); after > before+2 {
		t.Errorf("removed watches must not keep goroutines alive: before=%d after=%d", before, after)
	}
	if len(watcher.Watched()) != 0 {
		t.Errorf("watch list must be empty, got %v", watcher.Watched())
	}
}

func TestRemoveStopsWatch(t *testing.T) {
	backend := &fakeP2P{statuses: []boModel.AllocationStatus{boModel.AllocationExpired}}
	watcher := NewAllocationWatcher(backend, 0)

	watcher.Watch(&boModel.AllocationWatch{
		AllocationID: "a-4",
		DeadlineAt:   time.Now().Add(50 * time.Millisecond),
		Notify: func(allocation *boModel.P2PAllocation) {
			t.Error("a removed watch must not fire")
		},
	})
	watcher.Remove("a-4")

	time.Sleep(150 * time.Millisecond)

	if len(watcher.Watched()) != 0 {
		t.Errorf("watch list must be empty, got %v", watcher.Watched())
	}
}
