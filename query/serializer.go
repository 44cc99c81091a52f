package query

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	boModels "github.com/zarbox/backoffice-integration/models"
)

// SortMapping translates an internal sort key into the token a specific
// endpoint expects. When Literal is set it is used verbatim for both
// directions; otherwise Asc/Desc are picked by the requested direction and
// the sort param is omitted entirely if the chosen direction has no mapping.
type SortMapping struct {
	Literal string
	Asc     string
	Desc    string
}

// MapOptions describe how one endpoint deviates from the canonical wire
// format. The zero value sends page/limit, search under "search" and the
// sort as "{key}_{dir}" under "sort".
type MapOptions struct {
	SearchKey string
	SortParam string
	SortMap   map[string]SortMapping

	// OffsetBased endpoints receive limit+offset instead of page+limit.
	OffsetBased bool

	// AllowOffsetParam lets an "offset" filter key through as a real offset
	// override. Without it the key is an ordinary filter subject to the
	// allow/deny rules.
	AllowOffsetParam bool

	FilterKeyMap    map[string]string
	FilterAllowList []string
	FilterDenyList  []string

	// DropUnknownFilters defaults to true whenever a FilterKeyMap is
	// supplied: filter keys absent from the map are silently dropped.
	DropUnknownFilters *bool

	// SendBooleanFilters mirrors the backend compatibility flag. When false,
	// boolean-typed filter values are suppressed instead of sent verbatim.
	SendBooleanFilters bool
}

func (o *MapOptions) searchKey() string {
	if o != nil && o.SearchKey != "" {
		return o.SearchKey
	}
	return "search"
}

func (o *MapOptions) sortParam() string {
	if o != nil && o.SortParam != "" {
		return o.SortParam
	}
	return "sort"
}

func (o *MapOptions) dropUnknownFilters() bool {
	if o == nil || o.FilterKeyMap == nil {
		return false
	}
	if o.DropUnknownFilters != nil {
		return *o.DropUnknownFilters
	}
	return true
}

// BuildListQuery serializes params into the wire query for one endpoint.
// It is a pure function: identical inputs always yield identical output.
func BuildListQuery(params *boModels.ListParams, opts *MapOptions) url.Values {
	values := url.Values{}
	if params == nil {
		return values
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = boModels.DefaultListParams().Limit
	}

	offsetOverride := -1
	if opts != nil && opts.AllowOffsetParam {
		if raw, ok := params.Filters["offset"]; ok {
			if n, ok := toInt(raw); ok && n >= 0 {
				offsetOverride = n
			}
		}
	}

	if opts != nil && opts.OffsetBased {
		offset := (page - 1) * limit
		if offsetOverride >= 0 {
			offset = offsetOverride
		}
		values.Set("limit", strconv.Itoa(limit))
		values.Set("offset", strconv.Itoa(offset))
	} else {
		values.Set("page", strconv.Itoa(page))
		values.Set("limit", strconv.Itoa(limit))
	}

	if search := strings.TrimSpace(params.Search); search != "" {
		values.Set(opts.searchKey(), search)
	}

	if token := resolveSortToken(params.Sort, opts); token != "" {
		values.Set(opts.sortParam(), token)
	}

	applyFilters(values, params, opts, offsetOverride >= 0)

	return values
}

func resolveSortToken(s *boModels.Sort, opts *MapOptions) string {
	if s == nil || s.Key == "" {
		return ""
	}
	dir := s.Dir
	if dir != boModels.SortAsc && dir != boModels.SortDesc {
		dir = boModels.SortAsc
	}

	if opts != nil {
		if mapping, ok := opts.SortMap[s.Key]; ok {
			if mapping.Literal != "" {
				return mapping.Literal
			}
			if dir == boModels.SortAsc {
				return mapping.Asc
			}
			return mapping.Desc
		}
	}

	return fmt.Sprintf("%s_%s", s.Key, dir)
}

func applyFilters(values url.Values, params *boModels.ListParams, opts *MapOptions, offsetConsumed bool) {
	if len(params.Filters) == 0 {
		return
	}

	// Stable iteration keeps the first-write-wins behavior deterministic
	// when two filter keys map onto the same wire key.
	keys := make([]string, 0, len(params.Filters))
	for k := range params.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if key == "offset" && offsetConsumed {
			continue
		}
		if opts != nil {
			if len(opts.FilterAllowList) > 0 && !contains(opts.FilterAllowList, key) {
				continue
			}
			if contains(opts.FilterDenyList, key) {
				continue
			}
		}

		wireKey := key
		if opts != nil && opts.FilterKeyMap != nil {
			mapped, ok := opts.FilterKeyMap[key]
			if !ok && opts.dropUnknownFilters() {
				continue
			}
			if ok {
				wireKey = mapped
			}
		}

		value, ok := stringifyFilterValue(params.Filters[key], opts)
		if !ok {
			continue
		}
		if values.Get(wireKey) == "" {
			values.Set(wireKey, value)
		}
	}
}

// stringifyFilterValue renders one filter value, reporting false for values
// that must be omitted (nil, empty strings, suppressed booleans).
func stringifyFilterValue(v any, opts *MapOptions) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		if strings.TrimSpace(val) == "" {
			return "", false
		}
		return val, true
	case bool:
		if opts == nil || !opts.SendBooleanFilters {
			return "", false
		}
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case fmt.Stringer:
		s := val.String()
		if s == "" {
			return "", false
		}
		return s, true
	default:
		s := fmt.Sprintf("%v", val)
		if s == "" {
			return "", false
		}
		return s, true
	}
}

func toInt(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		return int(val), true
	case string:
		n, err := strconv.Atoi(val)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func contains(list []string, key string) bool {
	for _, item := range list {
		if item == key {
			return true
		}
	}
	return false
}

// Key derives the cache/identity key for a list query. Two parameter sets
// that serialize identically share the same key.
func Key(scope string, params *boModels.ListParams, opts *MapOptions) string {
	encoded := BuildListQuery(params, opts).Encode()
	tab := ""
	if params != nil && params.Tab != "" {
		tab = "#" + params.Tab
	}
	return scope + "?" + encoded + tab
}
