package backoffice_integration_session

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rotisserie/eris"
	boConfig "github.com/zarbox/backoffice-integration/config"
	boInterfaces "github.com/zarbox/backoffice-integration/interfaces"
	boModels "github.com/zarbox/backoffice-integration/models"
	boQuery "github.com/zarbox/backoffice-integration/query"
	boUtil "github.com/zarbox/backoffice-integration/utils"
)

// AuthService performs the login call and keeps the resulting session in the
// configured store. Token renewal is just another login; the backend issues
// no refresh tokens.
type AuthService struct {
	Request boInterfaces.Request
	Config  *boConfig.BackendConfig
	Store   boInterfaces.SessionStore
}

var _ boInterfaces.Auth = &AuthService{}

func NewAuthService(request boInterfaces.Request, cfg *boConfig.BackendConfig, store boInterfaces.SessionStore) *AuthService {
	return &AuthService{
		Request: request,
		Config:  cfg,
		Store:   store,
	}
}

func (s *AuthService) Login(ctx context.Context, payload *boModels.LoginPayload) (*boModels.Session, error) {

	if err := boUtil.ValidateStruct(ctx, payload); err != nil {
		return nil, eris.Wrap(err, "invalid login payload")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "marshalling login payload")
	}

	url := s.Config.BaseURL + s.Config.AuthURL
	slog.Debug("Logging in to back office", "URL", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, eris.Wrap(err, "creating request")
	}

	if err = s.Request.AuthRequestHeader(ctx, req); err != nil {
		return nil, eris.Wrap(err, "auth request header")
	}

	response, err := s.Request.RequestHandler(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "sending login request")
	}

	session, err := boQuery.DecodeObjectResponse[boModels.Session](response)
	if err != nil {
		return nil, eris.Wrap(err, "unmarshalling session")
	}

	if err := s.Store.Set(ctx, session); err != nil {
		return nil, eris.Wrap(err, "storing session")
	}

	return session, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.Store.Clear(ctx); err != nil {
		return eris.Wrap(err, "clearing session")
	}
	return nil
}

// Token loads the active session and returns its bearer token. A missing or
// expired session surfaces as a 401-shaped APIError so callers go through
// the usual error path.
func Token(ctx context.Context, store boInterfaces.SessionStore) (string, error) {
	session, err := store.Load(ctx)
	if err != nil {
		return "", eris.Wrap(err, "loading session")
	}
	if session == nil {
		return "", &boModels.APIError{
			Status:  http.StatusUnauthorized,
			Code:    "UNAUTHORIZED",
			Message: "no active session",
		}
	}
	return session.Token, nil
}
