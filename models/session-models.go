package backoffice_integration_models

import "time"

type SessionUser struct {
	ID       string   `json:"id"`
	Mobile   string   `json:"mobile"`
	FullName string   `json:"fullName"`
	Role     UserRole `json:"role"`
}

// Session is the typed session value held by a SessionStore. There is no
// ambient global; whoever composes the services decides where it lives.
type Session struct {
	Token     string      `json:"token" validate:"required"`
	User      SessionUser `json:"user"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

type LoginPayload struct {
	Mobile   string `json:"mobile" validate:"required,iranMobile"`
	Password string `json:"password" validate:"required"`
}
