package backoffice_integration

import (
	"log/slog"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	boAdmin "github.com/zarbox/backoffice-integration/admin"
	boCache "github.com/zarbox/backoffice-integration/cache"
	boConfig "github.com/zarbox/backoffice-integration/config"
	boFiles "github.com/zarbox/backoffice-integration/files"
	boInterfaces "github.com/zarbox/backoffice-integration/interfaces"
	boLogger "github.com/zarbox/backoffice-integration/logger"
	boP2P "github.com/zarbox/backoffice-integration/p2p"
	boRest "github.com/zarbox/backoffice-integration/rest"
	boSession "github.com/zarbox/backoffice-integration/session"
	boStorage "github.com/zarbox/backoffice-integration/storage"
	boUtil "github.com/zarbox/backoffice-integration/utils"
	boWatcher "github.com/zarbox/backoffice-integration/watcher"
)

// InitBackofficeAPI loads the internal configuration and opens the shared
// connections (redis for session/list state, mariadb for the audit log).
func InitBackofficeAPI(envPath, timezone string) error {
	cfg := boConfig.New(envPath)
	boUtil.InitValidator()

	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return eris.Wrap(err, "loading timezone")
		}
		time.Local = loc
	}

	if strings.Contains(strings.ToLower(cfg.Mode), "debug") {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	} else {
		slog.SetLogLoggerLevel(slog.LevelInfo)
	}

	if _, err := boStorage.InitRedis(&cfg.RedisConfig); err != nil {
		return eris.Wrap(err, "init redis connection")
	}

	if cfg.MariaConfig.DBHost != "" {
		if err := boStorage.InitMariaDB(&cfg.MariaConfig); err != nil {
			return eris.Wrap(err, "init mariadb connection")
		}
		boLogger.InitLogger()
	} else {
		slog.Info("audit log storage not configured, api calls will not be recorded")
	}

	return nil
}

// BackofficeClient bundles every service of one panel instance. All services
// share one transport, one session store and one request cache.
type BackofficeClient struct {
	Auth  boInterfaces.Auth
	Admin boInterfaces.Admin
	P2P   boInterfaces.P2P
	Files boInterfaces.Files

	Watcher    *boWatcher.AllocationWatcher
	Cache      *boCache.RequestCache
	Sessions   boInterfaces.SessionStore
	ListStates boInterfaces.ListStateStore
}

func InitBackofficeClient(backendEnvPath string) (*BackofficeClient, error) {
	bCfg := boConfig.NewBackendConfig(backendEnvPath)

	if err := boUtil.GetValidator().Struct(bCfg.BackendServiceEndpoints); err != nil {
		return nil, eris.Wrap(err, "invalid backend endpoints")
	}

	cfg := boConfig.GetConfig()
	if cfg == nil {
		return nil, eris.New("internal config not loaded, call InitBackofficeAPI first")
	}

	rdb := boStorage.GetRedisInstance()
	sessions := boSession.NewRedisSessionStore(rdb, cfg.SessionKey)
	listStates := boStorage.NewRedisListStateStore(rdb)
	requestCache := boCache.NewRequestCache(cfg.ListCacheTTL)

	transport := boRest.NewRESTRequest(bCfg)
	p2pService := boP2P.NewP2PService(transport, bCfg, sessions, requestCache)

	return &BackofficeClient{
		Auth:       boSession.NewAuthService(transport, bCfg, sessions),
		Admin:      boAdmin.NewAdminService(transport, bCfg, sessions, requestCache),
		P2P:        p2pService,
		Files:      boFiles.NewFileService(transport, bCfg, sessions),
		Watcher:    boWatcher.NewAllocationWatcher(p2pService, cfg.RefetchDelay),
		Cache:      requestCache,
		Sessions:   sessions,
		ListStates: listStates,
	}, nil
}

func CloseBackofficeAPI() error {
	boLogger.CloseLogger()

	if err := boStorage.CloseMariaDB(); err != nil {
		return eris.Wrap(err, "closing mariadb connection")
	}
	if err := boStorage.GetRedisInstance().CloseRedis(); err != nil {
		return eris.Wrap(err, "closing redis connection")
	}

	return nil
}
