package backoffice_integration_models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AllocationStatus values mirror the backend state machine verbatim. The
// client never advances an allocation locally; it only renders the status
// and calls the matching transition endpoint.
type AllocationStatus string

const (
	AllocationAssigned          AllocationStatus = "ASSIGNED"
	AllocationProofSubmitted    AllocationStatus = "PROOF_SUBMITTED"
	AllocationReceiverConfirmed AllocationStatus = "RECEIVER_CONFIRMED"
	AllocationAdminVerified     AllocationStatus = "ADMIN_VERIFIED"
	AllocationFinalized         AllocationStatus = "FINALIZED"
	AllocationSettled           AllocationStatus = "SETTLED"
	AllocationDisputed          AllocationStatus = "DISPUTED"
	AllocationCancelled         AllocationStatus = "CANCELLED"
	AllocationExpired           AllocationStatus = "EXPIRED"
)

// Terminal reports whether the backend can still move the allocation.
func (s AllocationStatus) Terminal() bool {
	switch s {
	case AllocationFinalized, AllocationSettled, AllocationCancelled, AllocationExpired:
		return true
	}
	return false
}

type P2PWithdrawal struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	UserFullName    string          `json:"userFullName,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	IBAN            string          `json:"iban"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	ExpiresAt       *time.Time      `json:"expiresAt,omitempty"`
}

type P2PAllocation struct {
	ID             string           `json:"id"`
	WithdrawalID   string           `json:"withdrawalId"`
	DepositID      string           `json:"depositId"`
	PayerUserID    string           `json:"payerUserId"`
	ReceiverUserID string           `json:"receiverUserId"`
	Amount         decimal.Decimal  `json:"amount"`
	Status         AllocationStatus `json:"status"`
	ProofFileID    string           `json:"proofFileId,omitempty"`
	ProofReference string           `json:"proofReference,omitempty"`
	DeadlineAt     *time.Time       `json:"deadlineAt,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

type P2POpsSummary struct {
	PendingWithdrawals int             `json:"pendingWithdrawals"`
	OpenAllocations    int             `json:"openAllocations"`
	AwaitingProof      int             `json:"awaitingProof"`
	AwaitingConfirm    int             `json:"awaitingConfirm"`
	AwaitingVerify     int             `json:"awaitingVerify"`
	DisputedCount      int             `json:"disputedCount"`
	TotalPendingAmount decimal.Decimal `json:"totalPendingAmount"`
}

type AssignPayload struct {
	DepositIDs []string         `json:"depositIds" validate:"required,min=1,dive,required"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
}

type SubmitProofPayload struct {
	FileID    string     `json:"fileId" validate:"required"`
	Reference string     `json:"reference,omitempty"`
	PaidAt    *time.Time `json:"paidAt,omitempty"`
}

type ConfirmReceiptPayload struct {
	Note string `json:"note,omitempty"`
}

type VerifyAllocationPayload struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note,omitempty"`
}

type DisputePayload struct {
	Reason string `json:"reason" validate:"required"`
}
