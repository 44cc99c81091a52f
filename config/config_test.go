package backoffice_integration_config

import (
	"testing"
	"time"

	boUtil "github.com/zarbox/backoffice-integration/utils"
)

func TestInternalConfigDefaults(t *testing.T) {
	cfg := New("")

	if cfg.SessionKey != boUtil.SessionRedis {
		t.Errorf("session key must default to the shared redis key, got %q", cfg.SessionKey)
	}
	if cfg.ListCacheTTL != 30*time.Second {
		t.Errorf("wrong default cache ttl: %v", cfg.ListCacheTTL)
	}
	if GetConfig() != cfg {
		t.Error("GetConfig must return the loaded config")
	}
}

func TestBackendConfigDefaults(t *testing.T) {
	cfg := NewBackendConfig("")

	if cfg.AuthURL != "/auth/login" {
		t.Errorf("wrong default auth url: %q", cfg.AuthURL)
	}
	if cfg.Realm != "admin" {
		t.Errorf("wrong default realm: %q", cfg.Realm)
	}
	if cfg.SupportsBooleanQuery {
		t.Error("boolean query support must default off")
	}
}
