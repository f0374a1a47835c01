// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"

	"github.com/fd1az/liquidity-vector/internal/apperror"
	"github.com/fd1az/liquidity-vector/internal/chain"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig                `mapstructure:"app"`
	Telemetry TelemetryConfig          `mapstructure:"telemetry"`
	Health    HealthConfig             `mapstructure:"health"`
	RPC       RPCConfig                `mapstructure:"rpc"`
	Endpoints EndpointsConfig          `mapstructure:"endpoints"`
	Explorer  ExplorerConfig           `mapstructure:"explorer"`
	Breakers  map[string]BreakerConfig `mapstructure:"breakers"`
	Caches    map[string]CacheConfig   `mapstructure:"caches"`
	Retry     RetryConfig              `mapstructure:"retry"`
	RateLimit RateLimitConfig          `mapstructure:"ratelimit"`
	Redis     RedisConfig              `mapstructure:"redis"`
	Analysis  AnalysisConfig           `mapstructure:"analysis"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceProvider  string `mapstructure:"trace_provider"` // zipkin, otlp-grpc, otlp-http, console, none
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// HealthConfig holds the health server settings.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// RPCConfig holds one JSON-RPC endpoint per chain, keyed by chain slug.
type RPCConfig struct {
	URLs            map[string]string `mapstructure:"urls"`
	Timeout         time.Duration     `mapstructure:"timeout"`
	EstimateTimeout time.Duration     `mapstructure:"estimate_timeout"`
}

// URL returns the endpoint for c, falling back to the public default.
func (r RPCConfig) URL(c chain.Chain) string {
	if u := r.URLs[c.Slug()]; u != "" {
		return u
	}
	return c.Info().DefaultRPC
}

// EndpointsConfig holds the base URLs of the HTTP upstreams.
type EndpointsConfig struct {
	BridgeQuote  string        `mapstructure:"bridge_quote"`
	PriceOracle  string        `mapstructure:"price_oracle"`
	YieldPools   string        `mapstructure:"yield_pools"`
	BridgesTVL   string        `mapstructure:"bridges_tvl"`
	QuoteTimeout time.Duration `mapstructure:"quote_timeout"`
	PriceTimeout time.Duration `mapstructure:"price_timeout"`
	PoolsTimeout time.Duration `mapstructure:"pools_timeout"`
	TVLTimeout   time.Duration `mapstructure:"tvl_timeout"`
}

// ExplorerConfig holds block explorer API keys keyed by chain slug.
type ExplorerConfig struct {
	APIKeys map[string]string `mapstructure:"api_keys"`
	Timeout time.Duration     `mapstructure:"timeout"`
}

// BreakerConfig configures one circuit breaker.
type BreakerConfig struct {
	FailMax      uint32        `mapstructure:"fail_max"`
	ResetTimeout time.Duration `mapstructure:"reset_timeout"`
	Excluded     []string      `mapstructure:"excluded"`
}

// ExcludedCodes returns Excluded as error codes.
func (b BreakerConfig) ExcludedCodes() []apperror.Code {
	out := make([]apperror.Code, 0, len(b.Excluded))
	for _, e := range b.Excluded {
		out = append(out, apperror.Code(strings.ToUpper(strings.TrimSpace(e))))
	}
	return out
}

// CacheConfig sizes one cache kind.
type CacheConfig struct {
	Capacity int           `mapstructure:"capacity"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RetryConfig configures the upstream retry policy.
type RetryConfig struct {
	MaxAttempts uint          `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
	Multiplier  float64       `mapstructure:"multiplier"`
	Jitter      float64       `mapstructure:"jitter"`
}

// RateLimitConfig bounds outbound request rates.
type RateLimitConfig struct {
	PriceRequestsPerMinute    int `mapstructure:"price_requests_per_minute"`
	ExplorerRequestsPerMinute int `mapstructure:"explorer_requests_per_minute"`
}

// RedisConfig configures the optional shared cache tier.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	PoolSize int    `mapstructure:"pool_size"`
}

// AnalysisConfig holds analysis defaults.
type AnalysisConfig struct {
	DefaultWallet string  `mapstructure:"default_wallet"`
	QuoteSlippage float64 `mapstructure:"quote_slippage"`
	Capital       float64 `mapstructure:"capital"`
	PoolAPY       float64 `mapstructure:"pool_apy"`
}

// Breaker returns the named breaker settings.
func (c *Config) Breaker(name string) BreakerConfig {
	return c.Breakers[name]
}

// Cache returns the named cache settings.
func (c *Config) Cache(name string) CacheConfig {
	return c.Caches[name]
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("LV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithCause(err),
			apperror.WithContext(err.Error()))
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("app.name", "LV_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "LV_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "LV_LOG_LEVEL", "LOG_LEVEL")

	for _, c := range chain.All() {
		envName := strings.ToUpper(strings.ReplaceAll(c.Slug(), "-", "_"))
		v.BindEnv("rpc.urls."+c.Slug(), "LV_RPC_"+envName, envName+"_RPC_URL")
		v.BindEnv("explorer.api_keys."+c.Slug(), "LV_EXPLORER_KEY_"+envName, envName+"_EXPLORER_API_KEY")
	}

	v.BindEnv("redis.enabled", "LV_REDIS_ENABLED", "REDIS_ENABLED")
	v.BindEnv("redis.url", "LV_REDIS_URL", "REDIS_URL")

	v.BindEnv("telemetry.enabled", "LV_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "LV_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "LV_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("telemetry.otlp_headers", "LV_OTEL_HEADERS", "OTEL_EXPORTER_OTLP_HEADERS")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "liquidity-vector")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "liquidity-vector")
	v.SetDefault("telemetry.trace_provider", "zipkin")
	v.SetDefault("telemetry.prometheus_port", 9090)

	v.SetDefault("health.enabled", true)
	v.SetDefault("health.port", 8081)

	for _, c := range chain.All() {
		v.SetDefault("rpc.urls."+c.Slug(), c.Info().DefaultRPC)
		v.SetDefault("explorer.api_keys."+c.Slug(), "")
	}
	v.SetDefault("rpc.timeout", "3s")
	v.SetDefault("rpc.estimate_timeout", "2s")

	v.SetDefault("endpoints.bridge_quote", "https://li.quest/v1")
	v.SetDefault("endpoints.price_oracle", "https://api.coingecko.com/api/v3")
	v.SetDefault("endpoints.yield_pools", "https://yields.llama.fi")
	v.SetDefault("endpoints.bridges_tvl", "https://bridges.llama.fi")
	v.SetDefault("endpoints.quote_timeout", "10s")
	v.SetDefault("endpoints.price_timeout", "5s")
	v.SetDefault("endpoints.pools_timeout", "5s")
	v.SetDefault("endpoints.tvl_timeout", "10s")

	v.SetDefault("explorer.timeout", "10s")

	breakers := map[string]BreakerConfig{
		"lifi": {FailMax: 5, ResetTimeout: 45 * time.Second, Excluded: []string{
			string(apperror.CodeRateLimitExceeded), string(apperror.CodeValidationError),
			string(apperror.CodeRouteUnavailable), string(apperror.CodeInsufficientLiquidity),
		}},
		"rpc": {FailMax: 10, ResetTimeout: 30 * time.Second},
		"coingecko": {FailMax: 3, ResetTimeout: 60 * time.Second, Excluded: []string{
			string(apperror.CodeRateLimitExceeded), string(apperror.CodeValidationError),
		}},
		"defillama": {FailMax: 5, ResetTimeout: 60 * time.Second, Excluded: []string{
			string(apperror.CodeValidationError),
		}},
		"explorer": {FailMax: 5, ResetTimeout: 60 * time.Second, Excluded: []string{
			string(apperror.CodeRateLimitExceeded),
		}},
	}
	for name, b := range breakers {
		v.SetDefault("breakers."+name+".fail_max", b.FailMax)
		v.SetDefault("breakers."+name+".reset_timeout", b.ResetTimeout.String())
		v.SetDefault("breakers."+name+".excluded", b.Excluded)
	}

	caches := map[string]CacheConfig{
		"gas_price":    {Capacity: 20, TTL: 30 * time.Second},
		"fee_history":  {Capacity: 20, TTL: 15 * time.Second},
		"native_price": {Capacity: 10, TTL: 60 * time.Second},
		"bridge_quote": {Capacity: 50, TTL: 10 * time.Second},
		"pools":        {Capacity: 4, TTL: 5 * time.Minute},
		"bridge_tvl":   {Capacity: 64, TTL: 5 * time.Minute},
		"contract":     {Capacity: 128, TTL: time.Hour},
	}
	for name, c := range caches {
		v.SetDefault("caches."+name+".capacity", c.Capacity)
		v.SetDefault("caches."+name+".ttl", c.TTL.String())
	}

	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.base_delay", "1s")
	v.SetDefault("retry.max_delay", "8s")
	v.SetDefault("retry.multiplier", 2.0)
	v.SetDefault("retry.jitter", 0.5)

	v.SetDefault("ratelimit.price_requests_per_minute", 30)
	v.SetDefault("ratelimit.explorer_requests_per_minute", 300)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "redis://redis:6379/0")
	v.SetDefault("redis.pool_size", 50)

	v.SetDefault("analysis.default_wallet", "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045")
	v.SetDefault("analysis.quote_slippage", 0.005)
	v.SetDefault("analysis.capital", 10000.0)
	v.SetDefault("analysis.pool_apy", 5.0)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for slug, raw := range c.RPC.URLs {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "ws" && u.Scheme != "wss") {
			return fmt.Errorf("rpc.urls.%s: invalid url %q", slug, raw)
		}
	}
	for name, b := range c.Breakers {
		if b.FailMax == 0 {
			return fmt.Errorf("breakers.%s.fail_max must be positive", name)
		}
		if b.ResetTimeout <= 0 {
			return fmt.Errorf("breakers.%s.reset_timeout must be positive", name)
		}
	}
	for name, cc := range c.Caches {
		if cc.Capacity <= 0 || cc.TTL <= 0 {
			return fmt.Errorf("caches.%s: capacity and ttl must be positive", name)
		}
	}
	for _, ep := range []struct{ key, val string }{
		{"endpoints.bridge_quote", c.Endpoints.BridgeQuote},
		{"endpoints.price_oracle", c.Endpoints.PriceOracle},
		{"endpoints.yield_pools", c.Endpoints.YieldPools},
		{"endpoints.bridges_tvl", c.Endpoints.BridgesTVL},
	} {
		if ep.val == "" {
			return fmt.Errorf("%s is required", ep.key)
		}
	}
	if c.Redis.Enabled && c.Redis.URL == "" {
		return fmt.Errorf("redis.url is required when redis is enabled")
	}
	if !common.IsHexAddress(c.Analysis.DefaultWallet) {
		return fmt.Errorf("invalid analysis.default_wallet: %s", c.Analysis.DefaultWallet)
	}
	if c.Retry.MaxAttempts == 0 {
		return fmt.Errorf("retry.max_attempts must be at least 1")
	}
	return nil
}
