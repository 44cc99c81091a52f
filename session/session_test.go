package backoffice_integration_session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	boConfig "github.com/zarbox/backoffice-integration/config"
	boModels "github.com/zarbox/backoffice-integration/models"
	boRest "github.com/zarbox/backoffice-integration/rest"
)

func TestMemorySessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	session, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if session != nil {
		t.Error("expected no session before Set")
	}

	if err := store.Set(ctx, &boModels.Session{}); err == nil {
		t.Error("a session without a token must be rejected")
	}

	want := &boModels.Session{
		Token:     "tok-1",
		User:      boModels.SessionUser{ID: "u-1", Mobile: "09121234567", Role: boModels.RoleAdmin},
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := store.Set(ctx, want); err != nil {
		t.Fatal(err)
	}

	session, err = store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if session == nil || session.Token != "tok-1" || session.User.ID != "u-1" {
		t.Errorf("wrong session loaded: %+v", session)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	session, _ = store.Load(ctx)
	if session != nil {
		t.Error("expected no session after Clear")
	}
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	expired := &boModels.Session{Token: "tok-2", ExpiresAt: time.Now().Add(-time.Minute)}
	store.Set(ctx, expired)

	session, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if session != nil {
		t.Error("an expired session must load as absent")
	}
}

func TestTokenWithoutSession(t *testing.T) {
	_, err := Token(context.Background(), NewMemorySessionStore())

	apiErr, ok := boModels.AsAPIError(err)
	if !ok {
		t.Fatalf("expected an APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.Code != "UNAUTHORIZED" {
		t.Errorf("wrong error shape: %+v", apiErr)
	}
}

func TestAuthServiceLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"ok":true,"data":{"token":"tok-9","user":{"id":"u-9","mobile":"09121234567","fullName":"Admin","role":"ADMIN"}}}`))
	}))
	defer server.Close()

	cfg := boConfig.NewBackendConfig("")
	cfg.BaseURL = server.URL
	cfg.Realm = "admin"

	store := NewMemorySessionStore()
	auth := NewAuthService(boRest.NewRESTRequest(cfg), cfg, store)

	session, err := auth.Login(context.Background(), &boModels.LoginPayload{Mobile: "09121234567", Password: "secret"})
	if err != nil {
		t.Fatal(err)
	}
	if session.Token != "tok-9" || session.User.Role != boModels.RoleAdmin {
		t.Errorf("wrong session: %+v", session)
	}

	stored, _ := store.Load(context.Background())
	if stored == nil || stored.Token != "tok-9" {
		t.Error("login must persist the session in the store")
	}

	if err := auth.Logout(context.Background()); err != nil {
		t.Fatal(err)
	}
	stored, _ = store.Load(context.Background())
	if stored != nil {
		t.Error("logout must clear the session")
	}
}

func TestAuthServiceLoginValidation(t *testing.T) {
	cfg := boConfig.NewBackendConfig("")
	cfg.BaseURL = "http://backend.local"

	auth := NewAuthService(boRest.NewRESTRequest(cfg), cfg, NewMemorySessionStore())

	if _, err := auth.Login(context.Background(), &boModels.LoginPayload{Mobile: "12345", Password: "x"}); err == nil {
		t.Error("an invalid mobile must be rejected before any request is sent")
	}
}
