package listview

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rotisserie/eris"
	boCache "github.com/zarbox/backoffice-integration/cache"
	boInterfaces "github.com/zarbox/backoffice-integration/interfaces"
	boModels "github.com/zarbox/backoffice-integration/models"
	boQuery "github.com/zarbox/backoffice-integration/query"
)

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateSuccess State = "success"
	StateError   State = "error"
)

type QueryFn[T any] func(ctx context.Context, params *boModels.ListParams) (*boModels.ListResult[T], error)

// Tab declares a named scope whose patch is shallow-merged into the active
// params on selection. Selecting a tab always resets the page to 1.
type Tab struct {
	Name  string
	Patch boModels.ParamsPatch
}

type Config[T any] struct {
	// StorageKey identifies this table ("admin.deposits") for both state
	// persistence and cache scoping.
	StorageKey string
	Defaults   boModels.ListParams
	Tabs       []Tab

	QueryFn QueryFn[T]

	// Store persists the params across restarts. Optional.
	Store boInterfaces.ListStateStore
	// Cache holds fetched pages under the query key. Optional.
	Cache *boCache.RequestCache
	// QueryKeyFn overrides the default key derivation when an endpoint needs
	// its MapOptions reflected in the key.
	QueryKeyFn func(params *boModels.ListParams) string
}

// ListView owns the full lifecycle of one paginated, filterable, sortable,
// tabbed list bound to a query function: idle → loading → success/error,
// re-entering loading on every parameter change. Completed fetches whose
// query key is no longer the active one are discarded (last key wins), and a
// failed fetch keeps the previously rendered rows until a retry succeeds.
type ListView[T any] struct {
	mu  sync.Mutex
	cfg Config[T]

	params    boModels.ListParams
	state     State
	items     []T
	meta      boModels.ListMetaExtended
	lastErr   error
	activeKey string
}

// New restores persisted params (when a store is wired) over the defaults
// and returns the view in the idle state; no fetch is issued yet.
func New[T any](ctx context.Context, cfg Config[T]) (*ListView[T], error) {
	if cfg.QueryFn == nil {
		return nil, eris.New("listview requires a query function")
	}
	if cfg.StorageKey == "" {
		return nil, eris.New("listview requires a storage key")
	}

	params := cfg.Defaults
	if params.Page < 1 || params.Limit < 1 {
		params = boModels.DefaultListParams()
	}

	if cfg.Store != nil {
		restored, err := cfg.Store.Load(ctx, cfg.StorageKey)
		if err != nil {
			slog.Warn("failed to restore list state, using defaults", "storageKey", cfg.StorageKey, "reason", err)
		} else if restored != nil && restored.Page >= 1 && restored.Limit >= 1 {
			params = restored.Clone()
		}
	}

	return &ListView[T]{
		cfg:    cfg,
		params: params,
		state:  StateIdle,
	}, nil
}

func (lv *ListView[T]) key(params *boModels.ListParams) string {
	if lv.cfg.QueryKeyFn != nil {
		return lv.cfg.QueryKeyFn(params)
	}
	return boQuery.Key(lv.cfg.StorageKey, params, nil)
}

func (lv *ListView[T]) Params() boModels.ListParams {
	lv.mu.Lock()
	defer lv.mu.Unlock()
	return lv.params.Clone()
}

func (lv *ListView[T]) State() State {
	lv.mu.Lock()
	defer lv.mu.Unlock()
	return lv.state
}

// Items returns the currently rendered rows. On a failed refetch these are
// still the rows of the last successful query.
func (lv *ListView[T]) Items() []T {
	lv.mu.Lock()
	defer lv.mu.Unlock()
	return lv.items
}

func (lv *ListView[T]) Meta() boModels.ListMetaExtended {
	lv.mu.Lock()
	defer lv.mu.Unlock()
	return lv.meta
}

func (lv *ListView[T]) Err() error {
	lv.mu.Lock()
	defer lv.mu.Unlock()
	return lv.lastErr
}

// Load fetches the current params. A load whose key was superseded before
// completion neither stores its result nor touches the view state.
func (lv *ListView[T]) Load(ctx context.Context) error {
	lv.mu.Lock()
	params := lv.params.Clone()
	key := lv.key(&params)
	lv.activeKey = key
	lv.state = StateLoading

	if lv.cfg.Cache != nil {
		if cached, ok := lv.cfg.Cache.Get(key); ok {
			if result, ok := cached.(*boModels.ListResult[T]); ok {
				lv.items = result.Items
				lv.meta = result.Meta
				lv.state = StateSuccess
				lv.lastErr = nil
				lv.mu.Unlock()
				return nil
			}
		}
	}

	var ticket uint64
	if lv.cfg.Cache != nil {
		ticket = lv.cfg.Cache.Begin(key)
	}
	lv.mu.Unlock()

	result, err := lv.cfg.QueryFn(ctx, &params)

	lv.mu.Lock()
	defer lv.mu.Unlock()

	if lv.activeKey != key {
		// A newer query took over while this one was in flight.
		slog.Debug("discarding stale list result", "storageKey", lv.cfg.StorageKey, "key", key)
		return nil
	}

	if err != nil {
		// Keep the previously rendered rows until a retry succeeds.
		lv.state = StateError
		lv.lastErr = err
		return err
	}

	if lv.cfg.Cache != nil {
		lv.cfg.Cache.Complete(key, ticket, result)
	}

	lv.items = result.Items
	lv.meta = result.Meta
	lv.state = StateSuccess
	lv.lastErr = nil

	return nil
}

// Retry re-issues the exact same query after a failure.
func (lv *ListView[T]) Retry(ctx context.Context) error {
	return lv.Load(ctx)
}

// Refresh bypasses the cache and refetches the current params.
func (lv *ListView[T]) Refresh(ctx context.Context) error {
	lv.mu.Lock()
	if lv.cfg.Cache != nil {
		params := lv.params.Clone()
		lv.cfg.Cache.Invalidate(lv.key(&params))
	}
	lv.mu.Unlock()
	return lv.Load(ctx)
}

func (lv *ListView[T]) update(ctx context.Context, mutate func(params *boModels.ListParams)) error {
	lv.mu.Lock()
	mutate(&lv.params)
	params := lv.params.Clone()
	lv.mu.Unlock()

	lv.persist(ctx, &params)
	return lv.Load(ctx)
}

func (lv *ListView[T]) persist(ctx context.Context, params *boModels.ListParams) {
	if lv.cfg.Store == nil {
		return
	}
	if err := lv.cfg.Store.Save(ctx, lv.cfg.StorageKey, params); err != nil {
		slog.Warn("failed to persist list state", "storageKey", lv.cfg.StorageKey, "reason", err)
	}
}

func (lv *ListView[T]) SetPage(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	return lv.update(ctx, func(p *boModels.ListParams) {
		p.Page = page
	})
}

func (lv *ListView[T]) SetLimit(ctx context.Context, limit int) error {
	if limit < 1 {
		limit = boModels.DefaultListParams().Limit
	}
	return lv.update(ctx, func(p *boModels.ListParams) {
		p.Limit = limit
		p.Page = 1
	})
}

// SetSort cycles or sets the sort column. Passing an empty key clears the
// sort entirely.
func (lv *ListView[T]) SetSort(ctx context.Context, key string, dir boModels.SortDir) error {
	return lv.update(ctx, func(p *boModels.ListParams) {
		if key == "" {
			p.Sort = nil
			return
		}
		p.Sort = &boModels.Sort{Key: key, Dir: dir}
	})
}

func (lv *ListView[T]) SetSearch(ctx context.Context, search string) error {
	return lv.update(ctx, func(p *boModels.ListParams) {
		p.Search = search
		p.Page = 1
	})
}

func (lv *ListView[T]) SetFilter(ctx context.Context, key string, value any) error {
	return lv.update(ctx, func(p *boModels.ListParams) {
		if p.Filters == nil {
			p.Filters = make(map[string]any)
		}
		p.Filters[key] = value
		p.Page = 1
	})
}

func (lv *ListView[T]) RemoveFilter(ctx context.Context, key string) error {
	return lv.update(ctx, func(p *boModels.ListParams) {
		delete(p.Filters, key)
		p.Page = 1
	})
}

// SetTab applies the named tab's patch: filters are shallow-merged over the
// current ones, sort and search are replaced when the patch sets them, and
// the page always resets to 1.
func (lv *ListView[T]) SetTab(ctx context.Context, name string) error {
	var tab *Tab
	for i := range lv.cfg.Tabs {
		if lv.cfg.Tabs[i].Name == name {
			tab = &lv.cfg.Tabs[i]
			break
		}
	}
	if tab == nil {
		return eris.New("unknown tab: " + name)
	}

	return lv.update(ctx, func(p *boModels.ListParams) {
		p.Tab = tab.Name
		for key, value := range tab.Patch.Filters {
			if p.Filters == nil {
				p.Filters = make(map[string]any)
			}
			p.Filters[key] = value
		}
		if tab.Patch.Sort != nil {
			sort := *tab.Patch.Sort
			p.Sort = &sort
		}
		if tab.Patch.Search != nil {
			p.Search = *tab.Patch.Search
		}
		p.Page = 1
	})
}
