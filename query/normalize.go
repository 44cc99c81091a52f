package query

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	boModels "github.com/zarbox/backoffice-integration/models"
)

// The backend has shipped several pagination envelopes over time: an outer
// {ok, data, traceId, ts} success wrapper, items under "items" or "data",
// and meta that is either page-based or offset-based with drifting field
// names. Everything is absorbed here so services only ever see ListResult.

type successEnvelope struct {
	Ok      *bool           `json:"ok"`
	Data    json.RawMessage `json:"data"`
	TraceID string          `json:"traceId"`
	Ts      int64           `json:"ts"`
}

type rawListMeta struct {
	Page        *int `json:"page"`
	CurrentPage *int `json:"current_page"`
	Limit       *int `json:"limit"`
	PageSize    *int `json:"page_size"`
	PerPage     *int `json:"perPage"`
	Total       *int `json:"total"`
	TotalItems  *int `json:"totalItems"`
	TotalCount  *int `json:"total_count"`
	TotalPages  *int `json:"totalPages"`
	Offset      *int `json:"offset"`
}

type rawListPayload[T any] struct {
	Items []T          `json:"items"`
	Data  []T          `json:"data"`
	Meta  *rawListMeta `json:"meta"`
}

func firstInt(candidates ...*int) (int, bool) {
	for _, c := range candidates {
		if c != nil {
			return *c, true
		}
	}
	return 0, false
}

// DecodeListResponse unwraps the success envelope, picks the item slice and
// normalizes the meta into the extended shape with guaranteed totalPages,
// hasNext and hasPrev.
func DecodeListResponse[T any](body []byte) (*boModels.ListResult[T], error) {
	payload := body

	var envelope successEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Ok != nil && len(envelope.Data) > 0 {
			payload = envelope.Data
		}
	}

	var raw rawListPayload[T]
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, eris.Wrap(err, "unmarshalling list payload")
	}

	items := raw.Items
	if items == nil {
		items = raw.Data
	}
	if items == nil {
		items = []T{}
	}

	meta := NormalizeListMeta(raw.Meta, len(items))

	return &boModels.ListResult[T]{
		Items: items,
		Meta:  AdaptListMeta(meta, raw.Meta),
	}, nil
}

// NormalizeListMeta fills the canonical meta from whichever fields the
// backend bothered to send. Missing values default to page 1 and the item
// count of the current slice.
func NormalizeListMeta(raw *rawListMeta, itemCount int) boModels.ListMeta {
	meta := boModels.ListMeta{
		Page:  1,
		Limit: itemCount,
		Total: itemCount,
	}
	if raw == nil {
		return meta
	}

	if limit, ok := firstInt(raw.Limit, raw.PageSize, raw.PerPage); ok && limit > 0 {
		meta.Limit = limit
	}
	if total, ok := firstInt(raw.Total, raw.TotalItems, raw.TotalCount); ok && total >= 0 {
		meta.Total = total
	}
	if page, ok := firstInt(raw.Page, raw.CurrentPage); ok && page >= 1 {
		meta.Page = page
	} else if raw.Offset != nil && meta.Limit > 0 {
		// Offset-based backends report no page at all.
		meta.Page = *raw.Offset/meta.Limit + 1
	}

	return meta
}

// AdaptListMeta derives totalPages/hasNext/hasPrev. The invariant is
// totalPages >= 1 and both booleans always set, however sparse the input.
func AdaptListMeta(meta boModels.ListMeta, raw *rawListMeta) boModels.ListMetaExtended {
	totalPages := 0
	if raw != nil && raw.TotalPages != nil {
		totalPages = *raw.TotalPages
	}
	if totalPages < 1 {
		if meta.Limit > 0 {
			totalPages = (meta.Total + meta.Limit - 1) / meta.Limit
		}
		if totalPages < 1 {
			totalPages = 1
		}
	}

	return boModels.ListMetaExtended{
		ListMeta:   meta,
		TotalPages: totalPages,
		HasNext:    meta.Page < totalPages,
		HasPrev:    meta.Page > 1,
	}
}

// DecodeObjectResponse unwraps the success envelope around a single object.
func DecodeObjectResponse[T any](body []byte) (*T, error) {
	payload := body

	var envelope successEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Ok != nil && len(envelope.Data) > 0 {
			payload = envelope.Data
		}
	}

	var obj T
	if err := json.Unmarshal(payload, &obj); err != nil {
		return nil, eris.Wrap(err, "unmarshalling object payload")
	}

	return &obj, nil
}
