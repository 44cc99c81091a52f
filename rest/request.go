package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	boConfig "github.com/zarbox/backoffice-integration/config"
	boInterfaces "github.com/zarbox/backoffice-integration/interfaces"
	boLogger "github.com/zarbox/backoffice-integration/logger"
	boModels "github.com/zarbox/backoffice-integration/models"
	boUtil "github.com/zarbox/backoffice-integration/utils"
)

type RESTRequest struct {
	Config    *boConfig.BackendConfig
	Validator *validator.Validate

	// Client may be replaced in tests; defaults to a plain http.Client.
	Client *http.Client
}

var _ boInterfaces.Request = &RESTRequest{}

func NewRESTRequest(cfg *boConfig.BackendConfig) *RESTRequest {
	return &RESTRequest{
		Config:    cfg,
		Validator: boUtil.GetValidator(),
		Client:    &http.Client{},
	}
}

func (s *RESTRequest) AuthRequestHeader(ctx context.Context, request *http.Request) error {

	// Checks for problematic configurations
	if err := s.Validator.Struct(s.Config.BackendCredential); err != nil {
		return eris.Wrap(err, "invalid backend configuration")
	}

	if request.Header.Get("Content-Type") == "" {
		request.Header.Set("Content-Type", "application/json")
	}

	request.Header.Set("X-TRACE-ID", uuid.New().String())
	if s.Config.Origin != "" {
		request.Header.Set("Origin", s.Config.Origin)
	}
	if s.Config.ClientID != "" {
		request.Header.Set("X-CLIENT-ID", s.Config.ClientID)
	}

	return nil
}

func (s *RESTRequest) RequestHeader(ctx context.Context, request *http.Request, accessToken string) error {

	if request.Header.Get("Content-Type") == "" {
		request.Header.Set("Content-Type", "application/json")
	}

	request.Header.Set("Authorization", "Bearer "+accessToken)
	request.Header.Set("X-TRACE-ID", uuid.New().String())
	if s.Config.Origin != "" {
		request.Header.Set("Origin", s.Config.Origin)
	}

	// Mutating endpoints carry an idempotency key so an operator double
	// click cannot allocate twice.
	if request.Method != http.MethodGet && request.Header.Get("X-IDEMPOTENCY-KEY") == "" {
		request.Header.Set("X-IDEMPOTENCY-KEY", uuid.New().String())
	}

	return nil
}

func (s *RESTRequest) RequestHandler(ctx context.Context, request *http.Request) ([]byte, error) {

	client := s.Client
	if client == nil {
		client = &http.Client{}
	}

	callLog := &boModels.APICallLog{
		HTTPMethod:  request.Method,
		URI:         request.URL.Path,
		Query:       request.URL.RawQuery,
		TraceID:     request.Header.Get("X-TRACE-ID"),
		RequestBody: requestBodyCopy(request),
		StartAt:     time.Now(),
	}

	response, err := client.Do(request)
	if err != nil {
		return nil, eris.Wrap(err, "sending request")
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, eris.Wrap(err, "reading response body")
	}

	callLog.EndAt = time.Now()
	callLog.StatusCode = response.StatusCode
	callLog.Latency = float32(callLog.EndAt.Sub(callLog.StartAt).Seconds())
	callLog.ResponseBody = body
	boLogger.LogCall(callLog)

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return body, ParseAPIError(response.StatusCode, body)
	}

	return body, nil
}

// requestBodyCopy re-reads the outgoing payload for the audit log without
// consuming the body the client is about to send. GetBody is always set
// here because every request is built from a bytes.Buffer.
func requestBodyCopy(request *http.Request) []byte {
	if request.GetBody == nil {
		return nil
	}

	rc, err := request.GetBody()
	if err != nil {
		return nil
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil
	}
	return raw
}

// errorEnvelope covers both error body shapes the backend has shipped: the
// flat {message, code, details} body and the wrapped {ok:false, error:{...}}.
type errorEnvelope struct {
	Ok      *bool            `json:"ok"`
	Error   *json.RawMessage `json:"error"`
	TraceID string           `json:"traceId"`
}

type errorBody struct {
	Message string                `json:"message"`
	Code    string                `json:"code"`
	TraceID string                `json:"traceId"`
	Details []boModels.FieldError `json:"details"`
}

// ParseAPIError converts a non-2xx response into an APIError. Unstructured
// bodies become a synthetic APIError with a generic message so that callers
// can rely on the shape unconditionally.
func ParseAPIError(status int, body []byte) error {
	apiErr := &boModels.APIError{
		Status:  status,
		Message: GenericErrorMessage,
	}

	var envelope errorEnvelope
	payload := body
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Ok != nil && !*envelope.Ok && envelope.Error != nil {
			payload = *envelope.Error
			apiErr.TraceID = envelope.TraceID
		}
	}

	var parsed errorBody
	if err := json.Unmarshal(payload, &parsed); err == nil && parsed.Message != "" {
		apiErr.Message = parsed.Message
		apiErr.Code = parsed.Code
		apiErr.Details = parsed.Details
		if parsed.TraceID != "" {
			apiErr.TraceID = parsed.TraceID
		}
	}

	return apiErr
}
