package backoffice_integration_models

import "time"

type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"
	RoleTrader UserRole = "TRADER"
)

type User struct {
	ID        string    `json:"id"`
	Mobile    string    `json:"mobile"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email,omitempty"`
	Role      UserRole  `json:"role"`
	GroupID   string    `json:"groupId,omitempty"`
	Status    string    `json:"status"`
	KYCStatus string    `json:"kycStatus"`
	CreatedAt time.Time `json:"createdAt"`
}

type KYCProfile struct {
	UserID         string     `json:"userId"`
	NationalID     string     `json:"nationalId"`
	BirthDate      string     `json:"birthDate,omitempty"`
	Status         string     `json:"status"`
	DocumentFileID string     `json:"documentFileId,omitempty"`
	SelfieFileID   string     `json:"selfieFileId,omitempty"`
	ReviewedBy     string     `json:"reviewedBy,omitempty"`
	ReviewedAt     *time.Time `json:"reviewedAt,omitempty"`
	RejectReason   string     `json:"rejectReason,omitempty"`
}

type UpdateKYCPayload struct {
	Status       string `json:"status" validate:"required,oneof=PENDING APPROVED REJECTED"`
	RejectReason string `json:"rejectReason,omitempty" validate:"required_if=Status REJECTED"`
}
