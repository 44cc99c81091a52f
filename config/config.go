package backoffice_integration_config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	boUtil "github.com/zarbox/backoffice-integration/utils"
)

type BackendCredential struct {
	ClientID     string `validate:"omitempty"`         // Optional client id issued by the back office
	ServiceToken string `validate:"omitempty"`         // Static token for machine-to-machine calls
	Origin       string `validate:"omitempty"`         // Origin header value expected by the backend
	Realm        string `validate:"oneof=admin trader"` // Which panel this instance serves
}

// BackendServiceEndpoints stores the relative paths of the back-office API
// per operation group. Sub-resources (settings, kyc, retry, ...) are built
// on top of these by the services.
type BackendServiceEndpoints struct {
	BaseURL                string `validate:"required,url"` // Base URL of the back-office REST API
	AuthURL                string `validate:"required,uri"` // Login endpoint
	AdminUsersURL          string `validate:"required,uri"`
	AdminDepositsURL       string `validate:"required,uri"`
	AdminWithdrawalsURL    string `validate:"required,uri"`
	AdminGroupsURL         string `validate:"required,uri"`
	AdminPricingURL        string `validate:"required,uri"`
	AdminRiskURL           string `validate:"required,uri"`
	AdminTahesabURL        string `validate:"required,uri"` // Mappings, outbox and resync live under this prefix
	P2PAdminWithdrawalsURL string `validate:"required,uri"`
	P2POpsSummaryURL       string `validate:"required,uri"`
	P2PWithdrawalsURL      string `validate:"required,uri"`
	P2PAllocationsURL      string `validate:"required,uri"`
	FileLinksBatchURL      string `validate:"required,uri"`
}

type BackendCompat struct {
	// SupportsBooleanQuery controls whether boolean filter values are sent
	// verbatim or suppressed. Older backend versions fail on real booleans.
	SupportsBooleanQuery bool
}

// BackendConfig bundles everything needed to talk to one back-office API.
type BackendConfig struct {
	BackendCredential
	BackendServiceEndpoints
	BackendCompat
}

func NewBackendConfig(envPath string) *BackendConfig {
	if err := godotenv.Load(envPath); err != nil {
		log.Println("Failed to locate .env file, program will proceed with provided env if any is provided")
	}

	return &BackendConfig{
		BackendCredential: BackendCredential{
			ClientID:     getEnv("BACKEND_CLIENT_ID", ""),
			ServiceToken: getEnv("BACKEND_SERVICE_TOKEN", ""),
			Origin:       getEnv("BACKEND_ORIGIN", ""),
			Realm:        getEnv("BACKEND_REALM", "admin"),
		},
		BackendServiceEndpoints: BackendServiceEndpoints{
			BaseURL:                getEnv("BACKEND_BASE_URL", ""),
			AuthURL:                getEnv("AUTH_URL", "/auth/login"),
			AdminUsersURL:          getEnv("ADMIN_USERS_URL", "/admin/users"),
			AdminDepositsURL:       getEnv("ADMIN_DEPOSITS_URL", "/admin/deposits"),
			AdminWithdrawalsURL:    getEnv("ADMIN_WITHDRAWALS_URL", "/admin/withdrawals"),
			AdminGroupsURL:         getEnv("ADMIN_GROUPS_URL", "/admin/customer-groups"),
			AdminPricingURL:        getEnv("ADMIN_PRICING_URL", "/admin/settings/pricing"),
			AdminRiskURL:           getEnv("ADMIN_RISK_URL", "/admin/settings/risk"),
			AdminTahesabURL:        getEnv("ADMIN_TAHESAB_URL", "/admin/tahesab"),
			P2PAdminWithdrawalsURL: getEnv("P2P_ADMIN_WITHDRAWALS_URL", "/admin/p2p/withdrawals"),
			P2POpsSummaryURL:       getEnv("P2P_OPS_SUMMARY_URL", "/admin/p2p/ops-summary"),
			P2PWithdrawalsURL:      getEnv("P2P_WITHDRAWALS_URL", "/p2p/withdrawals"),
			P2PAllocationsURL:      getEnv("P2P_ALLOCATIONS_URL", "/p2p/allocations"),
			FileLinksBatchURL:      getEnv("FILE_LINKS_BATCH_URL", "/files/links/batch"),
		},
		BackendCompat: BackendCompat{
			SupportsBooleanQuery: getEnvAsBool("API_SUPPORTS_BOOLEAN_QUERY", false),
		},
	}
}

// For internal use

type WatcherConfig struct {
	DefaultDeadline time.Duration
	RefetchDelay    time.Duration
}

type MariaConfig struct {
	DBDriver             string
	DBHost               string
	DBPort               string
	DBUser               string
	DBName               string
	DBPassword           string
	TSLConfig            string
	AllowNativePasswords bool
	MultiStatements      bool
	MaxOpenConns         uint
	MaxIdleConns         uint
	ConnMaxLifetime      uint
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDBNum    uint8
}

type CacheConfig struct {
	ListCacheTTL time.Duration
}

type InternalConfig struct {
	WatcherConfig
	MariaConfig
	RedisConfig
	CacheConfig
	SessionKey string // Redis key the session is persisted under
	TZ         string
	Mode       string // Controls whether the application is running in production or development or debug mode
}

var config *InternalConfig

func New(envPath string) *InternalConfig {

	if err := godotenv.Load(envPath); err != nil {
		log.Println("Failed to locate .env file, program will proceed with provided env if any is provided")
	}

	config = &InternalConfig{
		MariaConfig: MariaConfig{
			DBDriver:             getEnv("DB_DRIVER", "mysql"),
			DBHost:               getEnv("DB_HOST", ""),
			DBPort:               getEnv("DB_PORT", "3306"),
			DBUser:               getEnv("DB_USER", ""),
			DBPassword:           getEnv("DB_PASSWORD", ""),
			DBName:               getEnv("DB_NAME", ""),
			TSLConfig:            getEnv("DB_TLS_CONFIG", "true"),
			AllowNativePasswords: getEnvAsBool("DB_ALLOW_NATIVE_PASSWORDS", true),
			MultiStatements:      getEnvAsBool("DB_MULTI_STATEMENTS", false),
			MaxOpenConns:         uint(getEnvAsInt("DB_MAX_OPEN_CONNS", 20)),
			MaxIdleConns:         uint(getEnvAsInt("DB_MAX_IDLE_CONNS", 5)),
			ConnMaxLifetime:      uint(getEnvAsInt("DB_CONN_MAX_LIFETIME", 5)),
		},
		RedisConfig: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", ""),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDBNum:    uint8(getEnvAsInt("REDIS_DB_NUM", 0)),
		},
		CacheConfig: CacheConfig{
			ListCacheTTL: time.Duration(getEnvAsInt("LIST_CACHE_TTL_SECONDS", 30)) * time.Second,
		},
		WatcherConfig: WatcherConfig{
			DefaultDeadline: time.Duration(getEnvAsInt("WATCHER_DEFAULT_DEADLINE", 60)) * time.Minute,
			RefetchDelay:    time.Duration(getEnvAsInt("WATCHER_REFETCH_DELAY", 5)) * time.Second,
		},
		SessionKey: getEnv("SESSION_KEY", boUtil.SessionRedis),
		Mode:       getEnv("MODE", "prod"),
		TZ:         getEnv("TZ", "Asia/Tehran"),
	}

	return config
}

func GetConfig() *InternalConfig {
	return config
}

// Simple helper function to read an environment or return a default value.
func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}

// Simple helper function to read an environment variable into integer or return a default value.
func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}

	return defaultVal
}

// Helper to read an environment variable into a bool or return default value.
func getEnvAsBool(name string, defaultVal bool) bool {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultVal
}
