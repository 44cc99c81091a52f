package p2p

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"
	boCache "github.com/zarbox/backoffice-integration/cache"
	boConfig "github.com/zarbox/backoffice-integration/config"
	boInterfaces "github.com/zarbox/backoffice-integration/interfaces"
	boModels "github.com/zarbox/backoffice-integration/models"
	boQuery "github.com/zarbox/backoffice-integration/query"
	boSession "github.com/zarbox/backoffice-integration/session"
	boUtil "github.com/zarbox/backoffice-integration/utils"
)

// P2PService wraps the peer-to-peer allocation workflow endpoints. The
// allocation state machine (ASSIGNED → PROOF_SUBMITTED → RECEIVER_CONFIRMED
// → ADMIN_VERIFIED → FINALIZED/SETTLED) is enforced entirely by the backend;
// each method here maps onto exactly one transition endpoint.
type P2PService struct {
	Request boInterfaces.Request
	Config  *boConfig.BackendConfig
	Session boInterfaces.SessionStore
	Cache   *boCache.RequestCache
}

var _ boInterfaces.P2P = &P2PService{}

func NewP2PService(request boInterfaces.Request, cfg *boConfig.BackendConfig, session boInterfaces.SessionStore, cache *boCache.RequestCache) *P2PService {
	return &P2PService{
		Request: request,
		Config:  cfg,
		Session: session,
		Cache:   cache,
	}
}

var (
	withdrawalsQueryOpts = boQuery.MapOptions{
		SortMap: map[string]boQuery.SortMapping{
			"createdAt": {Asc: "createdAt_asc", Desc: "createdAt_desc"},
			"amount":    {Asc: "amount_asc", Desc: "amount_desc"},
			// Remaining amount is only sortable descending on the backend.
			"remainingAmount": {Desc: "remaining_desc"},
		},
		FilterKeyMap: map[string]string{
			"status":    "status",
			"userId":    "user_id",
			"minAmount": "min_amount",
			"maxAmount": "max_amount",
		},
	}

	allocationsQueryOpts = boQuery.MapOptions{
		FilterKeyMap: map[string]string{
			"status":       "status",
			"withdrawalId": "withdrawal_id",
			"payerId":      "payer_id",
			"receiverId":   "receiver_id",
			"overdue":      "overdue",
		},
	}
)

func (s *P2PService) call(ctx context.Context, method, rawURL string, queryValues url.Values, payload any) ([]byte, error) {

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, eris.Wrap(err, "marshalling payload")
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	if len(queryValues) > 0 {
		rawURL = rawURL + "?" + queryValues.Encode()
	}

	request, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, eris.Wrap(err, "creating request")
	}

	token, err := boSession.Token(ctx, s.Session)
	if err != nil {
		return nil, err
	}

	if err = s.Request.RequestHeader(ctx, request, token); err != nil {
		return nil, eris.Wrap(err, "constructing request header")
	}

	return s.Request.RequestHandler(ctx, request)
}

func (s *P2PService) listQuery(ctx context.Context, params *boModels.ListParams, opts boQuery.MapOptions) (url.Values, error) {
	if params == nil {
		defaults := boModels.DefaultListParams()
		params = &defaults
	}
	if err := boUtil.ValidateStruct(ctx, params); err != nil {
		return nil, eris.Wrap(err, "invalid list params")
	}
	opts.SendBooleanFilters = s.Config.SupportsBooleanQuery
	return boQuery.BuildListQuery(params, &opts), nil
}

func (s *P2PService) invalidateAll() {
	if s.Cache == nil {
		return
	}
	// Every transition affects both the withdrawal pool and the allocation
	// lists, so the whole p2p scope is dropped.
	s.Cache.InvalidatePrefix("p2p.")
	s.Cache.InvalidatePrefix("admin.p2p")
}

func (s *P2PService) ListAdminWithdrawals(ctx context.Context, params *boModels.ListParams) (*boModels.ListResult[boModels.P2PWithdrawal], error) {
	values, err := s.listQuery(ctx, params, withdrawalsQueryOpts)
	if err != nil {
		return nil, err
	}

	response, err := s.call(ctx, http.MethodGet, s.Config.BaseURL+s.Config.P2PAdminWithdrawalsURL, values, nil)
	if err != nil {
		return nil, eris.Wrap(err, "listing admin p2p withdrawals")
	}

	return boQuery.DecodeListResponse[boModels.P2PWithdrawal](response)
}

func (s *P2PService) ListAllocations(ctx context.Context, params *boModels.ListParams) (*boModels.ListResult[boModels.P2PAllocation], error) {
	values, err := s.listQuery(ctx, params, allocationsQueryOpts)
	if err != nil {
		return nil, err
	}

	response, err := s.call(ctx, http.MethodGet, s.Config.BaseURL+s.Config.P2PAllocationsURL, values, nil)
	if err != nil {
		return nil, eris.Wrap(err, "listing p2p allocations")
	}

	return boQuery.DecodeListResponse[boModels.P2PAllocation](response)
}

func (s *P2PService) GetAllocation(ctx context.Context, allocationID string) (*boModels.P2PAllocation, error) {
	response, err := s.call(ctx, http.MethodGet, s.Config.BaseURL+s.Config.P2PAllocationsURL+"/"+allocationID, nil, nil)
	if err != nil {
		return nil, eris.Wrap(err, "getting p2p allocation")
	}

	return boQuery.DecodeObjectResponse[boModels.P2PAllocation](response)
}

func (s *P2PService) OpsSummary(ctx context.Context) (*boModels.P2POpsSummary, error) {
	response, err := s.call(ctx, http.MethodGet, s.Config.BaseURL+s.Config.P2POpsSummaryURL, nil, nil)
	if err != nil {
		return nil, eris.Wrap(err, "getting p2p ops summary")
	}

	return boQuery.DecodeObjectResponse[boModels.P2POpsSummary](response)
}

func (s *P2PService) AssignToWithdrawal(ctx context.Context, withdrawalID string, payload *boModels.AssignPayload) ([]*boModels.P2PAllocation, error) {
	if err := boUtil.ValidateStruct(ctx, payload); err != nil {
		return nil, eris.Wrap(err, "invalid assign payload")
	}

	slog.Debug("Assigning deposits to withdrawal", "withdrawal", withdrawalID, "deposits", len(payload.DepositIDs))

	response, err := s.call(ctx, http.MethodPost, s.Config.BaseURL+s.Config.P2PWithdrawalsURL+"/"+withdrawalID+"/assign", nil, payload)
	if err != nil {
		return nil, eris.Wrap(err, "assigning to withdrawal")
	}

	s.invalidateAll()

	allocations, err := boQuery.DecodeObjectResponse[[]*boModels.P2PAllocation](response)
	if err != nil {
		return nil, err
	}
	return *allocations, nil
}

func (s *P2PService) SubmitAllocationProof(ctx context.Context, allocationID string, payload *boModels.SubmitProofPayload) (*boModels.P2PAllocation, error) {
	if err := boUtil.ValidateStruct(ctx, payload); err != nil {
		return nil, eris.Wrap(err, "invalid proof payload")
	}

	response, err := s.call(ctx, http.MethodPost, s.Config.BaseURL+s.Config.P2PAllocationsURL+"/"+allocationID+"/proof", nil, payload)
	if err != nil {
		return nil, eris.Wrap(err, "submitting allocation proof")
	}

	s.invalidateAll()
	return boQuery.DecodeObjectResponse[boModels.P2PAllocation](response)
}

func (s *P2PService) ConfirmAllocationReceipt(ctx context.Context, allocationID string, payload *boModels.ConfirmReceiptPayload) (*boModels.P2PAllocation, error) {
	response, err := s.call(ctx, http.MethodPost, s.Config.BaseURL+s.Config.P2PAllocationsURL+"/"+allocationID+"/confirm", nil, payload)
	if err != nil {
		return nil, eris.Wrap(err, "confirming allocation receipt")
	}

	s.invalidateAll()
	return boQuery.DecodeObjectResponse[boModels.P2PAllocation](response)
}

func (s *P2PService) VerifyAllocation(ctx context.Context, allocationID string, payload *boModels.VerifyAllocationPayload) (*boModels.P2PAllocation, error) {
	response, err := s.call(ctx, http.MethodPost, s.Config.BaseURL+s.Config.P2PAllocationsURL+"/"+allocationID+"/verify", nil, payload)
	if err != nil {
		return nil, eris.Wrap(err, "verifying allocation")
	}

	s.invalidateAll()
	return boQuery.DecodeObjectResponse[boModels.P2PAllocation](response)
}

func (s *P2PService) FinalizeAllocation(ctx context.Context, allocationID string) (*boModels.P2PAllocation, error) {
	response, err := s.call(ctx, http.MethodPost, s.Config.BaseURL+s.Config.P2PAllocationsURL+"/"+allocationID+"/finalize", nil, nil)
	if err != nil {
		return nil, eris.Wrap(err, "finalizing allocation")
	}

	s.invalidateAll()
	return boQuery.DecodeObjectResponse[boModels.P2PAllocation](response)
}

func (s *P2PService) DisputeAllocation(ctx context.Context, allocationID string, payload *boModels.DisputePayload) (*boModels.P2PAllocation, error) {
	if err := boUtil.ValidateStruct(ctx, payload); err != nil {
		return nil, eris.Wrap(err, "invalid dispute payload")
	}

	response, err := s.call(ctx, http.MethodPost, s.Config.BaseURL+s.Config.P2PAllocationsURL+"/"+allocationID+"/dispute", nil, payload)
	if err != nil {
		return nil, eris.Wrap(err, "disputing allocation")
	}

	s.invalidateAll()
	return boQuery.DecodeObjectResponse[boModels.P2PAllocation](response)
}

func (s *P2PService) CancelAllocation(ctx context.Context, allocationID string) (*boModels.P2PAllocation, error) {
	response, err := s.call(ctx, http.MethodPost, s.Config.BaseURL+s.Config.P2PAllocationsURL+"/"+allocationID+"/cancel", nil, nil)
	if err != nil {
		return nil, eris.Wrap(err, "cancelling allocation")
	}

	s.invalidateAll()
	return boQuery.DecodeObjectResponse[boModels.P2PAllocation](response)
}
