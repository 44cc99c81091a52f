package files

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/rotisserie/eris"
	boConfig "github.com/zarbox/backoffice-integration/config"
	boInterfaces "github.com/zarbox/backoffice-integration/interfaces"
	boModels "github.com/zarbox/backoffice-integration/models"
	boQuery "github.com/zarbox/backoffice-integration/query"
	boSession "github.com/zarbox/backoffice-integration/session"
	boUtil "github.com/zarbox/backoffice-integration/utils"
)

// FileService resolves short-lived download links for stored files (KYC
// documents, deposit receipts, allocation proofs) in one batch call.
type FileService struct {
	Request boInterfaces.Request
	Config  *boConfig.BackendConfig
	Session boInterfaces.SessionStore
}

var _ boInterfaces.Files = &FileService{}

func NewFileService(request boInterfaces.Request, cfg *boConfig.BackendConfig, session boInterfaces.SessionStore) *FileService {
	return &FileService{
		Request: request,
		Config:  cfg,
		Session: session,
	}
}

func (s *FileService) BatchLinks(ctx context.Context, payload *boModels.BatchLinksPayload) ([]*boModels.FileLink, error) {
	if err := boUtil.ValidateStruct(ctx, payload); err != nil {
		return nil, eris.Wrap(err, "invalid batch links payload")
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "marshalling payload")
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Config.BaseURL+s.Config.FileLinksBatchURL, bytes.NewBuffer(raw))
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
		return nil, eris.Wrap(err, "resolving file links")
	}

	links, err := boQuery.DecodeObjectResponse[[]*boModels.FileLink](response)
	if err != nil {
		return nil, err
	}
	return *links, nil
}
