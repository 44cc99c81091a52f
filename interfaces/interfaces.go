package interfaces

import (
	"context"
	"net/http"

	models "github.com/zarbox/backoffice-integration/models"
)

type Request interface {
	// AuthRequestHeader is ONLY used for the login request, which carries no
	// bearer token yet.
	AuthRequestHeader(ctx context.Context, request *http.Request) error

	// RequestHeader is used to set the headers for all other requests.
	RequestHeader(ctx context.Context, request *http.Request, accessToken string) error

	// RequestHandler sends the request and returns the raw body. Every
	// non-2xx response comes back as a models.APIError in the error chain.
	RequestHandler(ctx context.Context, request *http.Request) ([]byte, error)
}

// SessionStore is the explicit session context: no ambient globals, one
// typed value with a load/set/clear lifecycle.
type SessionStore interface {
	Load(ctx context.Context) (*models.Session, error)
	Set(ctx context.Context, session *models.Session) error
	Clear(ctx context.Context) error
}

// ListStateStore persists the last-used ListParams under per-table storage
// keys (e.g. "admin.deposits") so a reload restores the same view.
type ListStateStore interface {
	Load(ctx context.Context, storageKey string) (*models.ListParams, error)
	Save(ctx context.Context, storageKey string, params *models.ListParams) error
	Delete(ctx context.Context, storageKey string) error
}

type Auth interface {
	Login(ctx context.Context, payload *models.LoginPayload) (*models.Session, error)
	Logout(ctx context.Context) error
}

type Admin interface {
	ListUsers(ctx context.Context, params *models.ListParams) (*models.ListResult[models.User], error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserKYC(ctx context.Context, userID string) (*models.KYCProfile, error)
	UpdateUserKYC(ctx context.Context, userID string, payload *models.UpdateKYCPayload) (*models.KYCProfile, error)

	ListDeposits(ctx context.Context, params *models.ListParams) (*models.ListResult[models.DepositRequest], error)
	DecideDeposit(ctx context.Context, depositID string, payload *models.DecideRequestPayload) (*models.DepositRequest, error)
	ListWithdrawals(ctx context.Context, params *models.ListParams) (*models.ListResult[models.WithdrawRequest], error)
	DecideWithdrawal(ctx context.Context, withdrawalID string, payload *models.DecideRequestPayload) (*models.WithdrawRequest, error)

	ListCustomerGroups(ctx context.Context, params *models.ListParams) (*models.ListResult[models.CustomerGroup], error)
	CreateCustomerGroup(ctx context.Context, payload *models.CreateGroupPayload) (*models.CustomerGroup, error)
	GetGroupSettings(ctx context.Context, groupID string) (*models.GroupSettings, error)
	UpdateGroupSettings(ctx context.Context, groupID string, settings *models.GroupSettings) (*models.GroupSettings, error)
	MoveUsersToGroup(ctx context.Context, groupID string, payload *models.MoveUsersPayload) (*models.MoveUsersResult, error)

	GetPricingSettings(ctx context.Context) (*models.PricingSettings, error)
	UpdatePricingSettings(ctx context.Context, settings *models.PricingSettings) (*models.PricingSettings, error)
	GetRiskSettings(ctx context.Context) (*models.RiskSettings, error)
	UpdateRiskSettings(ctx context.Context, settings *models.RiskSettings) (*models.RiskSettings, error)

	ListTahesabMappings(ctx context.Context, params *models.ListParams) (*models.ListResult[models.TahesabMapping], error)
	ListTahesabOutbox(ctx context.Context, params *models.ListParams) (*models.ListResult[models.TahesabOutboxEntry], error)
	RetryTahesabOutbox(ctx context.Context, outboxID string) (*models.TahesabRetryResult, error)
	ResyncTahesabUser(ctx context.Context, userID string) (*models.TahesabResyncResult, error)
}

type P2P interface {
	ListAdminWithdrawals(ctx context.Context, params *models.ListParams) (*models.ListResult[models.P2PWithdrawal], error)
	ListAllocations(ctx context.Context, params *models.ListParams) (*models.ListResult[models.P2PAllocation], error)
	GetAllocation(ctx context.Context, allocationID string) (*models.P2PAllocation, error)
	OpsSummary(ctx context.Context) (*models.P2POpsSummary, error)

	AssignToWithdrawal(ctx context.Context, withdrawalID string, payload *models.AssignPayload) ([]*models.P2PAllocation, error)
	SubmitAllocationProof(ctx context.Context, allocationID string, payload *models.SubmitProofPayload) (*models.P2PAllocation, error)
	ConfirmAllocationReceipt(ctx context.Context, allocationID string, payload *models.ConfirmReceiptPayload) (*models.P2PAllocation, error)
	VerifyAllocation(ctx context.Context, allocationID string, payload *models.VerifyAllocationPayload) (*models.P2PAllocation, error)
	FinalizeAllocation(ctx context.Context, allocationID string) (*models.P2PAllocation, error)
	DisputeAllocation(ctx context.Context, allocationID string, payload *models.DisputePayload) (*models.P2PAllocation, error)
	CancelAllocation(ctx context.Context, allocationID string) (*models.P2PAllocation, error)
}

type Files interface {
	BatchLinks(ctx context.Context, payload *models.BatchLinksPayload) ([]*models.FileLink, error)
}
