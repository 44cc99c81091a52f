package backoffice_integration_models

type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

type Sort struct {
	Key string  `json:"key" validate:"required"`
	Dir SortDir `json:"dir" validate:"required,oneof=asc desc"`
}

// ListParams is the canonical query state of every paginated screen. It is
// what gets persisted per storage key and serialized before each fetch.
type ListParams struct {
	Page    int            `json:"page" validate:"required,number,min=1"`
	Limit   int            `json:"limit" validate:"required,number,min=1"`
	Sort    *Sort          `json:"sort,omitempty"`
	Filters map[string]any `json:"filters,omitempty"`
	Search  string         `json:"search,omitempty"`
	Tab     string         `json:"tab,omitempty"`
}

func DefaultListParams() ListParams {
	return ListParams{
		Page:  1,
		Limit: 20,
	}
}

// Clone returns a deep copy so that controllers can mutate params without
// aliasing the previously issued query.
func (p ListParams) Clone() ListParams {
	out := p
	if p.Sort != nil {
		sort := *p.Sort
		out.Sort = &sort
	}
	if p.Filters != nil {
		out.Filters = make(map[string]any, len(p.Filters))
		for k, v := range p.Filters {
			out.Filters[k] = v
		}
	}
	return out
}

// ParamsPatch is a partial override applied when a tab is selected.
type ParamsPatch struct {
	Filters map[string]any `json:"filters,omitempty"`
	Sort    *Sort          `json:"sort,omitempty"`
	Search  *string        `json:"search,omitempty"`
}

type ListMeta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// ListMetaExtended always carries TotalPages, HasNext and HasPrev regardless
// of how much the backend reported.
type ListMetaExtended struct {
	ListMeta
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

type ListResult[T any] struct {
	Items []T              `json:"items"`
	Meta  ListMetaExtended `json:"meta"`
}
