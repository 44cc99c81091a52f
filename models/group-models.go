package backoffice_integration_models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CustomerGroup struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	MemberCount int       `json:"memberCount"`
	IsDefault   bool      `json:"isDefault"`
	CreatedAt   time.Time `json:"createdAt"`
}

// GroupSettings are the per-group trading knobs edited on the group settings
// screen. All enforcement happens server side.
type GroupSettings struct {
	GroupID              string          `json:"groupId"`
	BuySpread            decimal.Decimal `json:"buySpread"`
	SellSpread           decimal.Decimal `json:"sellSpread"`
	MaxOpenPositionGrams decimal.Decimal `json:"maxOpenPositionGrams"`
	DailyWithdrawLimit   decimal.Decimal `json:"dailyWithdrawLimit"`
	TradingEnabled       bool            `json:"tradingEnabled"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

type CreateGroupPayload struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

type MoveUsersPayload struct {
	UserIDs []string `json:"userIds" validate:"required,min=1,dive,required"`
}

type MoveUsersResult struct {
	Moved   int `json:"moved"`
	Skipped int `json:"skipped"`
}
