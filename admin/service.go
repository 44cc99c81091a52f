package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	boCache "github.com/zarbox/backoffice-integration/cache"
	boConfig "github.com/zarbox/backoffice-integration/config"
	boInterfaces "github.com/zarbox/backoffice-integration/interfaces"
	boModels "github.com/zarbox/backoffice-integration/models"
	boQuery "github.com/zarbox/backoffice-integration/query"
	boSession "github.com/zarbox/backoffice-integration/session"
	boUtil "github.com/zarbox/backoffice-integration/utils"
)

// AdminService wraps every admin-panel endpoint group: users and KYC,
// deposits and withdrawals, customer groups, pricing/risk settings and the
// Tahesab integration screens.
type AdminService struct {
	Request boInterfaces.Request
	Config  *boConfig.BackendConfig
	Session boInterfaces.SessionStore

	// Cache is invalidated per resource prefix after each mutation. May be
	// nil when the caller wires no cache.
	Cache *boCache.RequestCache
}

var _ boInterfaces.Admin = &AdminService{}

func NewAdminService(request boInterfaces.Request, cfg *boConfig.BackendConfig, session boInterfaces.SessionStore, cache *boCache.RequestCache) *AdminService {
	return &AdminService{
		Request: request,
		Config:  cfg,
		Session: session,
		Cache:   cache,
	}
}

// Per-endpoint wire-format deviations. The deposits and withdrawals
// endpoints predate the page-based convention and still take limit+offset.
var (
	usersQueryOpts = boQuery.MapOptions{
		SearchKey: "q",
		FilterKeyMap: map[string]string{
			"status":    "status",
			"kycStatus": "kyc_status",
			"groupId":   "group_id",
			"role":      "role",
		},
	}

	depositsQueryOpts = boQuery.MapOptions{
		OffsetBased: true,
		SortMap: map[string]boQuery.SortMapping{
			"createdAt": {Asc: "createdAt_asc", Desc: "createdAt_desc"},
			"amount":    {Asc: "amount_asc", Desc: "amount_desc"},
		},
		FilterKeyMap: map[string]string{
			"status": "status",
			"method": "method",
			"userId": "user_id",
			"from":   "created_from",
			"to":     "created_to",
		},
	}

	withdrawalsQueryOpts = boQuery.MapOptions{
		OffsetBased: true,
		SortMap: map[string]boQuery.SortMapping{
			"createdAt": {Asc: "createdAt_asc", Desc: "createdAt_desc"},
			"amount":    {Asc: "amount_asc", Desc: "amount_desc"},
		},
		FilterKeyMap: map[string]string{
			"status": "status",
			"userId": "user_id",
			"from":   "created_from",
			"to":     "created_to",
		},
	}

	groupsQueryOpts = boQuery.MapOptions{
		SortMap: map[string]boQuery.SortMapping{
			// The backend only sorts groups by name, whatever the direction.
			"name": {Literal: "name"},
		},
	}

	tahesabMappingsQueryOpts = boQuery.MapOptions{
		FilterKeyMap: map[string]string{
			"status": "status",
			"userId": "user_id",
		},
	}

	tahesabOutboxQueryOpts = boQuery.MapOptions{
		FilterKeyMap: map[string]string{
			"status": "status",
			"kind":   "kind",
		},
	}
)

// call issues one authenticated request and hands back the raw body.
func (s *AdminService) call(ctx context.Context, method, rawURL string, queryValues url.Values, payload any) ([]byte, error) {

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

	response, err := s.Request.RequestHandler(ctx, request)
	if err != nil {
		return nil, err
	}

	return response, nil
}

func (s *AdminService) listQuery(ctx context.Context, params *boModels.ListParams, opts boQuery.MapOptions) (url.Values, error) {
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

// normalizeDateFilters re-parses free-form date inputs (the from/to range
// pickers accept several layouts) and sends them as RFC3339. Operates on a
// clone so the caller's params stay untouched.
func normalizeDateFilters(params *boModels.ListParams, keys ...string) (*boModels.ListParams, error) {
	if params == nil || len(params.Filters) == 0 {
		return params, nil
	}

	clone := params.Clone()
	for _, key := range keys {
		raw, ok := clone.Filters[key].(string)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		parsed, err := boUtil.ParseDateTime(raw)
		if err != nil {
			return nil, eris.Wrap(err, "invalid date filter: "+key)
		}
		clone.Filters[key] = parsed.UTC().Format(time.RFC3339)
	}

	return &clone, nil
}

func (s *AdminService) invalidate(prefix string) {
	if s.Cache != nil {
		s.Cache.InvalidatePrefix(prefix)
	}
}

// Users / KYC

func (s *AdminService) ListUsers(ctx context.Context, params *boModels.ListParams) (*boModels.ListResult[boModels.User], error) {
	values, err := s.listQuery(ctx, params, usersQueryOpts)
	if err != nil {
		return nil, err
	}

	response, err := s.call(ctx, http.MethodGet, s.Config.BaseURL+s.Config.AdminUsersURL, values, nil)
	if err != nil {
		return nil, eris.Wrap(err, "listing users")
	}

	return boQuery.DecodeListResponse[boModels.User](response)
}

func (s *AdminService) GetUser(ctx context.Context, userID string) (*boModels.User, error) {
	response, err := s.call(ctx, http.MethodGet, s.Config.BaseURL+s.Config.AdminUsersURL+"/"+userID, nil, nil)
	if err != nil {
		return nil, eris.Wrap(err, "getting user")
	}

	return boQuery.DecodeObjectResponse[boModels.User](response)
}

func (s *AdminService) GetUserKYC(ctx context.Context, userID string) (*boModels.KYCProfile, error) {
	response, err := s.call(ctx, http.MethodGet, s.Config.BaseURL+s.Config.AdminUsersURL+"/"+userID+"/kyc", nil, nil)
	if err != nil {
		return nil, eris.Wrap(err, "getting user kyc")
	}

	return boQuery.DecodeObjectResponse[boModels.KYCProfile](response)
}

func (s *AdminService) UpdateUserKYC(ctx context.Context, userID string, payload *boModels.UpdateKYCPayload) (*boModels.KYCProfile, error) {
	if err := boUtil.ValidateStruct(ctx, payload); err != nil {
		return nil, eris.Wrap(err, "invalid kyc payload")
	}

	response, err := s.call(ctx, http.MethodPut, s.Config.BaseURL+s.Config.AdminUsersURL+"/"+userID+"/kyc", nil, payload)
	if err != nil {
		return nil, eris.Wrap(err, "updating user kyc")
	}

	s.invalidate("admin.users")
	return boQuery.DecodeObjectResponse[boModels.KYCProfile](response)
}

// Deposits / Withdrawals

func (s *AdminService) ListDeposits(ctx context.Context, params *boModels.ListParams) (*boModels.ListResult[boModels.DepositRequest], error) {
	params, err := normalizeDateFilters(params, "from", "to")
	if err != nil {
		return nil, err
	}

	values, err := s.listQuery(ctx, params, depositsQueryOpts)
	if err != nil {
		return nil, err
	}

	response, err := s.call(ctx, http.MethodGet, s.Config.BaseURL+s.Config.AdminDepositsURL, values, nil)
	if err != nil {
		return nil, eris.Wrap(err, "listing deposits")
	}

	return boQuery.DecodeListResponse[boModels.DepositRequest](response)
}

func (s *AdminService) DecideDeposit(ctx context.Context, depositID string, payload *boModels.DecideRequestPayload) (*boModels.DepositRequest, error) {
	response, err := s.call(ctx, http.MethodPost, s.Config.BaseURL+s.Config.AdminDepositsURL+"/"+depositID+"/decide", nil, payload)
	if err != nil {
		return nil, eris.Wrap(err, "deciding deposit")
	}

	s.invalidate("admin.deposits")
	return boQuery.DecodeObjectResponse[boModels.DepositRequest](response)
}

func (s *AdminService) ListWithdrawals(ctx context.Context, params *boModels.ListParams) (*boModels.ListResult[boModels.WithdrawRequest], error) {
	params, err := normalizeDateFilters(params, "from", "to")
	if err != nil {
		return nil, err
	}

	values, err := s.listQuery(ctx, params, withdrawalsQueryOpts)
	if err != nil {
		return nil, err
	}

	response, err := s.call(ctx, http.MethodGet, s.Config.BaseURL+s.Config.AdminWithdrawalsURL, values, nil)
	if err != nil {
		return nil, eris.Wrap(err, "listing withdrawals")
	}

	return boQuery.DecodeListResponse[boModels.WithdrawRequest](response)
}

func (s *AdminService) DecideWithdrawal(ctx context.Context, withdrawalID string, payload *boModels.DecideRequestPayload) (*boModels.WithdrawRequest, error) {
	response, err := s.call(ctx, http.MethodPost, s.Config.BaseURL+s.Config.AdminWithdrawalsURL+"/"+withdrawalID+"/decide", nil, payload)
	if err != nil {
		return nil, eris.Wrap(err, "deciding withdrawal")
	}

	s.invalidate("admin.withdrawals")
	return boQuery.DecodeObjectResponse[boModels.WithdrawRequest](response)
}

// Customer groups

func (s *AdminService) ListCustomerGroups(ctx context.Context, params *boModels.ListParams) (*boModels.ListResult[boModels.CustomerGroup], error) {
	values, err := s.listQuery(ctx, params, groupsQueryOpts)
	if err != nil {
		return nil, err
	}

	response, err := s.call(ctx, http.MethodGet, s.Config.BaseURL+s.Config.AdminGroupsURL, values, nil)
	if err != nil {
		return nil, eris.Wrap(err, "listing customer groups")
	}

	return boQuery.DecodeListResponse[boModels.CustomerGroup](response)
}

func (s *AdminService) CreateCustomerGroup(ctx context.Context, payload *boModels.CreateGroupPayload) (*boModels.CustomerGroup, error) {
	if err := boUtil.ValidateStruct(ctx, payload); err != nil {
		return nil, eris.Wrap(err, "invalid group payload")
	}

	response, err := s.call(ctx, http.MethodPost, s.Config.BaseURL+s.Config.AdminGroupsURL, nil, payload)
	if err != nil {
		return nil, eris.Wrap(err, "creating customer group")
	}

	s.invalidate("admin.groups")
	return boQuery.DecodeObjectResponse[boModels.CustomerGroup](response)
}

func (s *AdminService) GetGroupSettings(ctx context.Context, groupID string) (*boModels.GroupSettings, error) {
	response, err := s.call(ctx, http.MethodGet, s.Config.BaseURL+s.Config.AdminGroupsURL+"/"+groupID+"/settings", nil, nil)
	if err != nil {
		return nil, eris.Wrap(err, "getting group settings")
	}

	return boQuery.DecodeObjectResponse[boModels.GroupSettings](response)
}

func (s *AdminService) UpdateGroupSettings(ctx context.Context, groupID string, settings *boModels.GroupSettings) (*boModels.GroupSettings, error) {
	response, err := s.call(ctx, http.MethodPut, s.Config.BaseURL+s.Config.AdminGroupsURL+"/"+groupID+"/settings", nil, settings)
	if err != nil {
		return nil, eris.Wrap(err, "updating group settings")
	}

	s.invalidate("admin.groups")
	return boQuery.DecodeObjectResponse[boModels.GroupSettings](response)
}

func (s *AdminService) MoveUsersToGroup(ctx context.Context, groupID string, payload *boModels.MoveUsersPayload) (*boModels.MoveUsersResult, error) {
	if err := boUtil.ValidateStruct(ctx, payload); err != nil {
		return nil, eris.Wrap(err, "invalid move payload")
	}

	response, err := s.call(ctx, http.MethodPost, s.Config.BaseURL+s.Config.AdminGroupsURL+"/"+groupID+"/users:move", nil, payload)
	if err != nil {
		return nil, eris.Wrap(err, "moving users to group")
	}

	s.invalidate("admin.groups")
	s.invalidate("admin.users")
	return boQuery.DecodeObjectResponse[boModels.MoveUsersResult](response)
}

// Pricing / Risk

func (s *AdminService) GetPricingSettings(ctx context.Context) (*boModels.PricingSettings, error) {
	response, err := s.call(ctx, http.MethodGet, s.Config.BaseURL+s.Config.AdminPricingURL, nil, nil)
	if err != nil {
		return nil, eris.Wrap(err, "getting pricing settings")
	}

	return boQuery.DecodeObjectResponse[boModels.PricingSettings](response)
}

func (s *AdminService) UpdatePricingSettings(ctx context.Context, settings *boModels.PricingSettings) (*boModels.PricingSettings, error) {
	response, err := s.call(ctx, http.MethodPut, s.Config.BaseURL+s.Config.AdminPricingURL, nil, settings)
	if err != nil {
		return nil, eris.Wrap(err, "updating pricing settings")
	}

	return boQuery.DecodeObjectResponse[boModels.PricingSettings](response)
}

func (s *AdminService) GetRiskSettings(ctx context.Context) (*boModels.RiskSettings, error) {
	response, err := s.call(ctx, http.MethodGet, s.Config.BaseURL+s.Config.AdminRiskURL, nil, nil)
	if err != nil {
		return nil, eris.Wrap(err, "getting risk settings")
	}

	return boQuery.DecodeObjectResponse[boModels.RiskSettings](response)
}

func (s *AdminService) UpdateRiskSettings(ctx context.Context, settings *boModels.RiskSettings) (*boModels.RiskSettings, error) {
	response, err := s.call(ctx, http.MethodPut, s.Config.BaseURL+s.Config.AdminRiskURL, nil, settings)
	if err != nil {
		return nil, eris.Wrap(err, "updating risk settings")
	}

	return boQuery.DecodeObjectResponse[boModels.RiskSettings](response)
}

// Tahesab integration screens. The outbox and all retry semantics are owned
// by the backend; these calls only observe and poke it.

func (s *AdminService) ListTahesabMappings(ctx context.Context, params *boModels.ListParams) (*boModels.ListResult[boModels.TahesabMapping], error) {
	values, err := s.listQuery(ctx, params, tahesabMappingsQueryOpts)
	if err != nil {
		return nil, err
	}

	response, err := s.call(ctx, http.MethodGet, s.Config.BaseURL+s.Config.AdminTahesabURL+"/mappings", values, nil)
	if err != nil {
		return nil, eris.Wrap(err, "listing tahesab mappings")
	}

	return boQuery.DecodeListResponse[boModels.TahesabMapping](response)
}

func (s *AdminService) ListTahesabOutbox(ctx context.Context, params *boModels.ListParams) (*boModels.ListResult[boModels.TahesabOutboxEntry], error) {
	values, err := s.listQuery(ctx, params, tahesabOutboxQueryOpts)
	if err != nil {
		return nil, err
	}

	response, err := s.call(ctx, http.MethodGet, s.Config.BaseURL+s.Config.AdminTahesabURL+"/outbox", values, nil)
	if err != nil {
		return nil, eris.Wrap(err, "listing tahesab outbox")
	}

	return boQuery.DecodeListResponse[boModels.TahesabOutboxEntry](response)
}

func (s *AdminService) RetryTahesabOutbox(ctx context.Context, outboxID string) (*boModels.TahesabRetryResult, error) {
	slog.Debug("Retrying tahesab outbox entry", "id", outboxID)

	response, err := s.call(ctx, http.MethodPost, s.Config.BaseURL+s.Config.AdminTahesabURL+"/outbox/"+outboxID+"/retry", nil, nil)
	if err != nil {
		return nil, eris.Wrap(err, "retrying tahesab outbox entry")
	}

	s.invalidate("admin.tahesab")
	return boQuery.DecodeObjectResponse[boModels.TahesabRetryResult](response)
}

func (s *AdminService) ResyncTahesabUser(ctx context.Context, userID string) (*boModels.TahesabResyncResult, error) {
	slog.Debug("Resyncing tahesab user", "id", userID)

	response, err := s.call(ctx, http.MethodPost, s.Config.BaseURL+s.Config.AdminTahesabURL+"/users/"+userID+"/resync", nil, nil)
	if err != nil {
		return nil, eris.Wrap(err, "resyncing tahesab user")
	}

	s.invalidate("admin.tahesab")
	return boQuery.DecodeObjectResponse[boModels.TahesabResyncResult](response)
}
