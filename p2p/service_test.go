package p2p

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	boCache "github.com/zarbox/backoffice-integration/cache"
	boConfig "github.com/zarbox/backoffice-integration/config"
	boModels "github.com/zarbox/backoffice-integration/models"
	boRest "github.com/zarbox/backoffice-integration/rest"
	boSession "github.com/zarbox/backoffice-integration/session"
)

func newTestService(t *testing.T, handler http.Handler) *P2PService {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := boConfig.NewBackendConfig("")
	cfg.BaseURL = server.URL
	cfg.Realm = "admin"

	store := boSession.NewMemorySessionStore()
	store.Set(context.Background(), &boModels.Session{
		Token:     "tok-test",
		ExpiresAt: time.Now().Add(time.Hour),
	})

	return NewP2PService(boRest.NewRESTRequest(cfg), cfg, store, boCache.NewRequestCache(time.Minute))
}

func TestListAdminWithdrawalsQueryMapping(t *testing.T) {
	service := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("sort") != "remaining_desc" {
			t.Errorf("wrong sort token %q", q.Get("sort"))
		}
		if q.Get("min_amount") != "1000000" {
			t.Errorf("minAmount filter must map to min_amount, got %s", r.URL.RawQuery)
		}

		w.Write([]byte(`{"ok":true,"data":{"items":[{"id":"w-1","userId":"u-1","amount":"5000000","remainingAmount":"2000000","iban":"IR123","status":"OPEN","createdAt":"2026-02-01T08:00:00Z"}],"meta":{"page":1,"limit":20,"total":1}}}`))
	}))

	result, err := service.ListAdminWithdrawals(context.Background(), &boModels.ListParams{
		Page:    1,
		Limit:   20,
		Sort:    &boModels.Sort{Key: "remainingAmount", Dir: boModels.SortDesc},
		Filters: map[string]any{"minAmount": 1000000},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Items) != 1 || result.Items[0].RemainingAmount.String() != "2000000" {
		t.Errorf("wrong items decoded: %+v", result.Items)
	}
}

func TestListAdminWithdrawalsDropsAscOnDescOnlySort(t *testing.T) {
	service := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("sort") {
			t.Errorf("ascending remainingAmount has no wire token and must be omitted, got %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"ok":true,"data":{"items":[],"meta":{"page":1,"limit":20,"total":0}}}`))
	}))

	_, err := service.ListAdminWithdrawals(context.Background(), &boModels.ListParams{
		Page:  1,
		Limit: 20,
		Sort:  &boModels.Sort{Key: "remainingAmount", Dir: boModels.SortAsc},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestAssignToWithdrawal(t *testing.T) {
	service := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/p2p/withdrawals/w-1/assign" {
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
		}

		var payload boModels.AssignPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatal(err)
		}
		if len(payload.DepositIDs) != 2 {
			t.Errorf("wrong deposit ids: %+v", payload.DepositIDs)
		}

		w.Write([]byte(`{"ok":true,"data":[{"id":"a-1","withdrawalId":"w-1","depositId":"d-1","payerUserId":"u-2","receiverUserId":"u-1","amount":"1500000","status":"ASSIGNED","createdAt":"2026-02-01T08:00:00Z","updatedAt":"2026-02-01T08:00:00Z"},{"id":"a-2","withdrawalId":"w-1","depositId":"d-2","payerUserId":"u-3","receiverUserId":"u-1","amount":"500000","status":"ASSIGNED","createdAt":"2026-02-01T08:00:00Z","updatedAt":"2026-02-01T08:00:00Z"}]}`))
	}))

	service.Cache.Set("p2p.allocations?page=1", "stale")

	allocations, err := service.AssignToWithdrawal(context.Background(), "w-1", &boModels.AssignPayload{
		DepositIDs: []string{"d-1", "d-2"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(allocations) != 2 || allocations[0].Status != boModels.AllocationAssigned {
		t.Errorf("wrong allocations decoded: %+v", allocations)
	}

	if _, ok := service.Cache.Get("p2p.allocations?page=1"); ok {
		t.Error("allocation lists must be invalidated after an assignment")
	}
}

func TestAssignToWithdrawalRequiresDeposits(t *testing.T) {
	service := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("an empty assignment must never reach the backend")
	}))

	if _, err := service.AssignToWithdrawal(context.Background(), "w-1", &boModels.AssignPayload{}); err == nil {
		t.Error("expected a validation error")
	}
}

func TestAllocationTransitionFlow(t *testing.T) {
	var paths []string
	service := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)

		status := boModels.AllocationProofSubmitted
		switch {
		case len(paths) == 2:
			status = boModels.AllocationReceiverConfirmed
		case len(paths) == 3:
			status = boModels.AllocationAdminVerified
		}

		raw, _ := json.Marshal(map[string]any{
			"ok": true,
			"data": boModels.P2PAllocation{
				ID:           "a-1",
				WithdrawalID: "w-1",
				Status:       status,
			},
		})
		w.Write(raw)
	}))

	ctx := context.Background()

	allocation, err := service.SubmitAllocationProof(ctx, "a-1", &boModels.SubmitProofPayload{FileID: "f-1", Reference: "ref-1"})
	if err != nil {
		t.Fatal(err)
	}
	if allocation.Status != boModels.AllocationProofSubmitted {
		t.Errorf("wrong status after proof: %s", allocation.Status)
	}

	allocation, err = service.ConfirmAllocationReceipt(ctx, "a-1", &boModels.ConfirmReceiptPayload{})
	if err != nil {
		t.Fatal(err)
	}
	if allocation.Status != boModels.AllocationReceiverConfirmed {
		t.Errorf("wrong status after confirm: %s", allocation.Status)
	}

	allocation, err = service.VerifyAllocation(ctx, "a-1", &boModels.VerifyAllocationPayload{Approve: true})
	if err != nil {
		t.Fatal(err)
	}
	if allocation.Status != boModels.AllocationAdminVerified {
		t.Errorf("wrong status after verify: %s", allocation.Status)
	}

	want := []string{
		"/p2p/allocations/a-1/proof",
		"/p2p/allocations/a-1/confirm",
		"/p2p/allocations/a-1/verify",
	}
	for i, path := range want {
		if i >= len(paths) || paths[i] != path {
			t.Fatalf("wrong transition paths: %v", paths)
		}
	}
}

func TestDisputeAllocationRequiresReason(t *testing.T) {
	service := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("a dispute without a reason must never reach the backend")
	}))

	if _, err := service.DisputeAllocation(context.Background(), "a-1", &boModels.DisputePayload{}); err == nil {
		t.Error("expected a validation error")
	}
}

func TestOpsSummary(t *testing.T) {
	service := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/p2p/ops-summary" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"ok":true,"data":{"pendingWithdrawals":4,"openAllocations":9,"awaitingProof":3,"awaitingConfirm":2,"awaitingVerify":4,"disputedCount":1,"totalPendingAmount":"12500000"}}`))
	}))

	summary, err := service.OpsSummary(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.OpenAllocations != 9 || summary.TotalPendingAmount.String() != "12500000" {
		t.Errorf("wrong summary: %+v", summary)
	}
}

func TestAllocationStatusTerminal(t *testing.T) {
	terminal := []boModels.AllocationStatus{
		boModels.AllocationFinalized,
		boModels.AllocationSettled,
		boModels.AllocationCancelled,
		boModels.AllocationExpired,
	}
	for _, status := range terminal {
		if !status.Terminal() {
			t.Errorf("%s must be terminal", status)
		}
	}

	open := []boModels.AllocationStatus{
		boModels.AllocationAssigned,
		boModels.AllocationProofSubmitted,
		boModels.AllocationReceiverConfirmed,
		boModels.AllocationAdminVerified,
		boModels.AllocationDisputed,
	}
	for _, status := range open {
		if status.Terminal() {
			t.Errorf("%s must not be terminal", status)
		}
	}
}
