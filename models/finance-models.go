package backoffice_integration_models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DepositStatus string

const (
	DepositPending  DepositStatus = "PENDING"
	DepositApproved DepositStatus = "APPROVED"
	DepositRejected DepositStatus = "REJECTED"
	DepositPooled   DepositStatus = "POOLED"
)

type WithdrawStatus string

const (
	WithdrawPending   WithdrawStatus = "PENDING"
	WithdrawApproved  WithdrawStatus = "APPROVED"
	WithdrawRejected  WithdrawStatus = "REJECTED"
	WithdrawPaid      WithdrawStatus = "PAID"
	WithdrawCancelled WithdrawStatus = "CANCELLED"
)

type DepositRequest struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	UserFullName  string          `json:"userFullName,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	Status        DepositStatus   `json:"status"`
	ReceiptFileID string          `json:"receiptFileId,omitempty"`
	TrackingCode  string          `json:"trackingCode,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	DecidedAt     *time.Time      `json:"decidedAt,omitempty"`
	DecidedBy     string          `json:"decidedBy,omitempty"`
}

type WithdrawRequest struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	UserFullName string          `json:"userFullName,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	IBAN         string          `json:"iban"`
	Status       WithdrawStatus  `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
	DecidedAt    *time.Time      `json:"decidedAt,omitempty"`
	DecidedBy    string          `json:"decidedBy,omitempty"`
}

type DecideRequestPayload struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note,omitempty"`
}

type PricingSettings struct {
	BaseSource     string          `json:"baseSource"`
	BuyAdjustment  decimal.Decimal `json:"buyAdjustment"`
	SellAdjustment decimal.Decimal `json:"sellAdjustment"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	UpdatedBy      string          `json:"updatedBy,omitempty"`
}

type RiskSettings struct {
	MaxDailyBuyGrams  decimal.Decimal `json:"maxDailyBuyGrams"`
	MaxDailySellGrams decimal.Decimal `json:"maxDailySellGrams"`
	MaxOpenOrders     int             `json:"maxOpenOrders"`
	TradingHalted     bool            `json:"tradingHalted"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}
