package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// EnvProduction is the APP_ENV value that disables developer-only paths.
const EnvProduction = "production"

// Config aggregates the backend configuration.
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Store   StoreConfig
	Auth    AuthConfig
	Billing BillingConfig
	Coach   CoachConfig
}

// Load reads the backend configuration from the environment.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	store, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}

	auth, err := loadAuthConfig()
	if err != nil {
		return nil, err
	}

	billing, err := loadBillingConfig()
	if err != nil {
		return nil, err
	}

	enforce, err := parseBoolEnv("COACH_ENFORCE_ENTITLEMENTS", false)
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		AI:      ai,
		Store:   store,
		Auth:    auth,
		Billing: billing,
		Coach:   CoachConfig{EnforceEntitlements: enforce},
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr        string
	Env         string
	LogLevel    string
	CORSOrigins []string
}

// IsProduction reports whether APP_ENV is production.
func (c ServerConfig) IsProduction() bool {
	return c.Env == EnvProduction
}

func loadServerConfig() (ServerConfig, error) {
	addr, err := parseAddr(os.Getenv("PORT"))
	if err != nil {
		return ServerConfig{}, err
	}

	return ServerConfig{
		Addr:        addr,
		Env:         getEnvOrDefault("APP_ENV", "development"),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		CORSOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
	}, nil
}

func parseAddr(raw string) (string, error) {
	port := strings.TrimSpace(raw)
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as given.
		return port, nil
	}

	if strings.Contains(port, " ") {
		return "", fmt.Errorf("invalid PORT value: %q", port)
	}

	return ":" + port, nil
}

// AI providers understood by AIConfig.
const (
	ProviderGemini = "gemini"
	ProviderArk    = "ark"
)

// AIConfig describes the model backend.
type AIConfig struct {
	Provider     string
	Temperature  *float64
	HistoryLimit int

	GeminiAPIKey string
	GeminiModel  string

	APIKey    string
	AccessKey string
	SecretKey string
	Model     string
	BaseURL   string
	Region    string
	TopP      *float64
	MaxTokens *int
}

// Enabled reports whether the selected provider has the credentials it needs.
func (c AIConfig) Enabled() bool {
	switch c.Provider {
	case ProviderArk:
		return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
	default:
		return c.GeminiAPIKey != "" && c.GeminiModel != ""
	}
}

// NewChatModel creates an Ark chat model from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if c.Provider != ProviderArk || !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: set ARK_API_KEY + ARK_MODEL or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("AI_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}
	if temperature == nil {
		def := 0.7
		temperature = &def
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	historyLimit := 0
	if limit, err := parseOptionalIntEnv("AI_HISTORY_LIMIT"); err != nil {
		return AIConfig{}, err
	} else if limit != nil && *limit > 0 {
		historyLimit = *limit
	}

	provider := strings.ToLower(getEnvOrDefault("AI_PROVIDER", ProviderGemini))
	if provider != ProviderGemini && provider != ProviderArk {
		return AIConfig{}, fmt.Errorf("invalid AI_PROVIDER value %q", provider)
	}

	geminiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if geminiKey == "" {
		geminiKey = strings.TrimSpace(os.Getenv("API_KEY"))
	}

	return AIConfig{
		Provider:     provider,
		Temperature:  temperature,
		HistoryLimit: historyLimit,
		GeminiAPIKey: geminiKey,
		GeminiModel:  getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		APIKey:       strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:    strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:    strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:        strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:      getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:       getEnvOrDefault("ARK_REGION", "cn-beijing"),
		TopP:         topP,
		MaxTokens:    maxTokens,
	}, nil
}

// Store drivers understood by StoreConfig.
const (
	StoreMemory    = "memory"
	StoreSQLite    = "sqlite"
	StoreFirestore = "firestore"
)

// StoreConfig selects the server persistence backend.
type StoreConfig struct {
	Driver             string
	SQLitePath         string
	FirestoreProjectID string
}

func loadStoreConfig() (StoreConfig, error) {
	cfg := StoreConfig{
		Driver:             strings.ToLower(getEnvOrDefault("STORE_DRIVER", StoreMemory)),
		SQLitePath:         getEnvOrDefault("STORE_SQLITE_PATH", "./data/guidr.db"),
		FirestoreProjectID: strings.TrimSpace(os.Getenv("FIRESTORE_PROJECT_ID")),
	}

	switch cfg.Driver {
	case StoreMemory, StoreSQLite:
	case StoreFirestore:
		if cfg.FirestoreProjectID == "" {
			return StoreConfig{}, fmt.Errorf("FIRESTORE_PROJECT_ID is required for the firestore store")
		}
	default:
		return StoreConfig{}, fmt.Errorf("invalid STORE_DRIVER value %q", cfg.Driver)
	}
	return cfg, nil
}

// AuthConfig maps bearer tokens to user ids.
type AuthConfig struct {
	Tokens map[string]string
}

func loadAuthConfig() (AuthConfig, error) {
	tokens, err := parsePairs("AUTH_TOKENS")
	if err != nil {
		return AuthConfig{}, err
	}
	return AuthConfig{Tokens: tokens}, nil
}

// Billing providers understood by BillingConfig.
const (
	BillingNone       = "none"
	BillingStatic     = "static"
	BillingRevenueCat = "revenuecat"
)

// BillingConfig selects the subscription-status provider.
type BillingConfig struct {
	Provider           string
	RevenueCatAPIKey   string
	RevenueCatBaseURL  string
	StaticPremiumUsers []string
	RequestTimeout     time.Duration
}

func loadBillingConfig() (BillingConfig, error) {
	timeout, err := parseOptionalIntEnv("BILLING_TIMEOUT_SECONDS")
	if err != nil {
		return BillingConfig{}, err
	}
	requestTimeout := 10 * time.Second
	if timeout != nil && *timeout > 0 {
		requestTimeout = time.Duration(*timeout) * time.Second
	}

	cfg := BillingConfig{
		Provider:           strings.ToLower(getEnvOrDefault("BILLING_PROVIDER", BillingNone)),
		RevenueCatAPIKey:   strings.TrimSpace(os.Getenv("REVENUECAT_API_KEY")),
		RevenueCatBaseURL:  getEnvOrDefault("REVENUECAT_BASE_URL", "https://api.revenuecat.com"),
		StaticPremiumUsers: splitList(os.Getenv("BILLING_STATIC_PREMIUM_USERS")),
		RequestTimeout:     requestTimeout,
	}

	switch cfg.Provider {
	case BillingNone, BillingStatic:
	case BillingRevenueCat:
		if cfg.RevenueCatAPIKey == "" {
			return BillingConfig{}, fmt.Errorf("REVENUECAT_API_KEY is required for the revenuecat billing provider")
		}
	default:
		return BillingConfig{}, fmt.Errorf("invalid BILLING_PROVIDER value %q", cfg.Provider)
	}
	return cfg, nil
}

// CoachConfig toggles optional server-side coach behaviour.
type CoachConfig struct {
	EnforceEntitlements bool
}

// ClientConfig configures the client core driven by cmd/guidr.
type ClientConfig struct {
	Env           string
	LogLevel      string
	RemoteURL     string
	IDToken       string
	UserID        string
	RemoteTimeout time.Duration
	StatePath     string
	LocalFallback bool
	AI            AIConfig
	Billing       BillingConfig
}

// RemoteEnabled reports whether a remote callable backend is configured.
func (c ClientConfig) RemoteEnabled() bool {
	return c.RemoteURL != ""
}

// LocalFallbackAllowed reports whether the direct model tier may run. It is
// never allowed in production because it needs a client-held API key.
func (c ClientConfig) LocalFallbackAllowed() bool {
	return c.LocalFallback && c.Env != EnvProduction
}

// LoadClient reads the client configuration from the environment.
func LoadClient() (*ClientConfig, error) {
	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	billing, err := loadBillingConfig()
	if err != nil {
		return nil, err
	}

	fallback, err := parseBoolEnv("GUIDR_LOCAL_FALLBACK", false)
	if err != nil {
		return nil, err
	}

	timeout, err := parseOptionalIntEnv("GUIDR_REMOTE_TIMEOUT")
	if err != nil {
		return nil, err
	}
	remoteTimeout := 60 * time.Second
	if timeout != nil && *timeout > 0 {
		remoteTimeout = time.Duration(*timeout) * time.Second
	}

	return &ClientConfig{
		Env:           getEnvOrDefault("APP_ENV", "development"),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "warn"),
		RemoteURL:     strings.TrimRight(strings.TrimSpace(os.Getenv("GUIDR_REMOTE_URL")), "/"),
		IDToken:       strings.TrimSpace(os.Getenv("GUIDR_ID_TOKEN")),
		UserID:        getEnvOrDefault("GUIDR_USER_ID", "local-user"),
		RemoteTimeout: remoteTimeout,
		StatePath:     getEnvOrDefault("GUIDR_STATE_PATH", "./data/guidr-client.db"),
		LocalFallback: fallback,
		AI:            ai,
		Billing:       billing,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parsePairs reads "k1=v1,k2=v2".
func parsePairs(key string) (map[string]string, error) {
	pairs := make(map[string]string)
	for _, item := range splitList(os.Getenv(key)) {
		k, v, ok := strings.Cut(item, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if !ok || k == "" || v == "" {
			return nil, fmt.Errorf("invalid %s entry %q: want key=value", key, item)
		}
		pairs[k] = v
	}
	return pairs, nil
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
