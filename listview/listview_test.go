package listview

import (
	"context"
	"sync"
	"testing"
	"time"

	boCache "github.com/zarbox/backoffice-integration/cache"
	boModels "github.com/zarbox/backoffice-integration/models"
	boStorage "github.com/zarbox/backoffice-integration/storage"
)

type row struct {
	ID   string
	Page int
}

func staticQuery(items ...row) QueryFn[row] {
	return func(ctx context.Context, params *boModels.ListParams) (*boModels.ListResult[row], error) {
		return &boModels.ListResult[row]{
			Items: items,
			Meta: boModels.ListMetaExtended{
				ListMeta:   boModels.ListMeta{Page: params.Page, Limit: params.Limit, Total: len(items)},
				TotalPages: 1,
			},
		}, nil
	}
}

func TestListViewLifecycle(t *testing.T) {
	ctx := context.Background()

	lv, err := New(ctx, Config[row]{
		StorageKey: "admin.deposits",
		QueryFn:    staticQuery(row{ID: "a"}, row{ID: "b"}),
	})
	if err != nil {
		t.Fatal(err)
	}

	if lv.State() != StateIdle {
		t.Errorf("expected idle before the first load, got %s", lv.State())
	}

	if err := lv.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if lv.State() != StateSuccess {
		t.Errorf("expected success, got %s", lv.State())
	}
	if len(lv.Items()) != 2 {
		t.Errorf("expected 2 rows, got %d", len(lv.Items()))
	}
}

func TestListViewRestoresPersistedState(t *testing.T) {
	ctx := context.Background()
	store := boStorage.NewMemoryListStateStore()

	saved := boModels.ListParams{Page: 4, Limit: 50, Search: "ahmadi"}
	if err := store.Save(ctx, "admin.users", &saved); err != nil {
		t.Fatal(err)
	}

	lv, err := New(ctx, Config[row]{
		StorageKey: "admin.users",
		Defaults:   boModels.DefaultListParams(),
		Store:      store,
		QueryFn:    staticQuery(),
	})
	if err != nil {
		t.Fatal(err)
	}

	params := lv.Params()
	if params.Page != 4 || params.Limit != 50 || params.Search != "ahmadi" {
		t.Errorf("persisted state not restored: %+v", params)
	}
}

func TestListViewPersistsOnChange(t *testing.T) {
	ctx := context.Background()
	store := boStorage.NewMemoryListStateStore()

	lv, err := New(ctx, Config[row]{
		StorageKey: "admin.users",
		Store:      store,
		QueryFn:    staticQuery(),
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := lv.SetPage(ctx, 7); err != nil {
		t.Fatal(err)
	}

	persisted, err := store.Load(ctx, "admin.users")
	if err != nil {
		t.Fatal(err)
	}
	if persisted == nil || persisted.Page != 7 {
		t.Errorf("params not persisted on change: %+v", persisted)
	}
}

func TestTabSwitchResetsPage(t *testing.T) {
	ctx := context.Background()

	lv, err := New(ctx, Config[row]{
		StorageKey: "admin.p2p.withdrawals",
		Defaults:   boModels.ListParams{Page: 9, Limit: 20},
		Tabs: []Tab{
			{Name: "pending", Patch: boModels.ParamsPatch{Filters: map[string]any{"status": "PENDING"}}},
			{Name: "all", Patch: boModels.ParamsPatch{}},
		},
		QueryFn: staticQuery(),
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := lv.SetTab(ctx, "pending"); err != nil {
		t.Fatal(err)
	}

	params := lv.Params()
	if params.Page != 1 {
		t.Errorf("tab switch must reset page to 1, got %d", params.Page)
	}
	if params.Tab != "pending" {
		t.Errorf("tab not recorded: %q", params.Tab)
	}
	if params.Filters["status"] != "PENDING" {
		t.Errorf("tab patch not merged: %+v", params.Filters)
	}

	if err := lv.SetTab(ctx, "missing"); err == nil {
		t.Error("unknown tab must be rejected")
	}
}

func TestStaleResponseDiscarded(t *testing.T) {
	ctx := context.Background()

	release := make(chan struct{})
	var mu sync.Mutex
	calls := 0

	queryFn := func(ctx context.Context, params *boModels.ListParams) (*boModels.ListResult[row], error) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()

		if first {
			<-release
		}
		return &boModels.ListResult[row]{
			Items: []row{{ID: "page", Page: params.Page}},
			Meta: boModels.ListMetaExtended{
				ListMeta:   boModels.ListMeta{Page: params.Page, Limit: params.Limit, Total: 1},
				TotalPages: 10,
			},
		}, nil
	}

	lv, err := New(ctx, Config[row]{StorageKey: "admin.deposits", QueryFn: queryFn})
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		lv.Load(ctx) // query A, blocked until released
	}()

	// Give the first load time to register its query key.
	time.Sleep(20 * time.Millisecond)

	if err := lv.SetPage(ctx, 2); err != nil { // query B completes immediately
		t.Fatal(err)
	}

	close(release)
	wg.Wait()

	items := lv.Items()
	if len(items) != 1 || items[0].Page != 2 {
		t.Errorf("stale result overwrote the newer one: %+v", items)
	}
	if lv.State() != StateSuccess {
		t.Errorf("expected success, got %s", lv.State())
	}
}

func TestStaleWhileErrorKeepsRows(t *testing.T) {
	ctx := context.Background()

	failing := false
	queryFn := func(ctx context.Context, params *boModels.ListParams) (*boModels.ListResult[row], error) {
		if failing {
			return nil, &boModels.APIError{Status: 500, Message: "boom"}
		}
		return &boModels.ListResult[row]{
			Items: []row{{ID: "kept", Page: params.Page}},
			Meta: boModels.ListMetaExtended{
				ListMeta:   boModels.ListMeta{Page: params.Page, Limit: params.Limit, Total: 1},
				TotalPages: 3,
			},
		}, nil
	}

	lv, err := New(ctx, Config[row]{StorageKey: "admin.withdrawals", QueryFn: queryFn})
	if err != nil {
		t.Fatal(err)
	}

	if err := lv.Load(ctx); err != nil {
		t.Fatal(err)
	}

	failing = true
	if err := lv.SetPage(ctx, 2); err == nil {
		t.Fatal("expected the refetch to fail")
	}

	if lv.State() != StateError {
		t.Errorf("expected error state, got %s", lv.State())
	}
	if len(lv.Items()) != 1 || lv.Items()[0].ID != "kept" {
		t.Error("previously rendered rows must survive a failed refetch")
	}
	if lv.Err() == nil {
		t.Error("expected the last error to be exposed")
	}

	failing = false
	if err := lv.Retry(ctx); err != nil {
		t.Fatal(err)
	}
	if lv.State() != StateSuccess || lv.Items()[0].Page != 2 {
		t.Errorf("retry must re-issue the same query: %+v", lv.Items())
	}
}

func TestListViewCacheHitSkipsFetch(t *testing.T) {
	ctx := context.Background()
	requestCache := boCache.NewRequestCache(time.Minute)

	calls := 0
	queryFn := func(ctx context.Context, params *boModels.ListParams) (*boModels.ListResult[row], error) {
		calls++
		return &boModels.ListResult[row]{
			Items: []row{{ID: "cached"}},
			Meta:  boModels.ListMetaExtended{ListMeta: boModels.ListMeta{Page: 1, Limit: 20, Total: 1}, TotalPages: 1},
		}, nil
	}

	mk := func() *ListView[row] {
		lv, err := New(ctx, Config[row]{
			StorageKey: "admin.groups",
			Cache:      requestCache,
			QueryFn:    queryFn,
		})
		if err != nil {
			t.Fatal(err)
		}
		return lv
	}

	first := mk()
	if err := first.Load(ctx); err != nil {
		t.Fatal(err)
	}
	second := mk()
	if err := second.Load(ctx); err != nil {
		t.Fatal(err)
	}

	if calls != 1 {
		t.Errorf("expected one backend call, got %d", calls)
	}
	if len(second.Items()) != 1 {
		t.Error("cache hit must populate the view")
	}

	// Refresh bypasses the cache.
	if err := second.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("refresh must hit the backend, got %d calls", calls)
	}
}

func TestListViewRequiresQueryFn(t *testing.T) {
	if _, err := New(context.Background(), Config[row]{StorageKey: "x"}); err == nil {
		t.Error("missing query function must be rejected")
	}
	if _, err := New(context.Background(), Config[row]{QueryFn: staticQuery()}); err == nil {
		t.Error("missing storage key must be rejected")
	}
}
