package config

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// WAD scale unit, the fixed-point denominator for the smoothing factor.
var wad = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Asset source
	SourceMode    string // "memory" or "evm"
	ChainRPCURL   string
	ChainID       int64
	VaultContract string
	VaultCustody  string // memory mode: custody account address

	// Pair (the daemon deploys one pair from env)
	PairTokenIn         string
	PairTokenOut        string
	PairTargetAddress   string
	PairTargetPeriod    time.Duration
	PairInitialPrice    string // base-10 integer
	PairSmoothingFactor string // base-10 integer, WAD scale

	// Router
	RouterAddress string

	// Quote cache
	QuoteCacheTTL time.Duration

	// Event feed
	FeedPingInterval time.Duration
	FeedWriteTimeout time.Duration
	FeedSendBuffer   int

	// Storage
	StorageMode  string // "postgres" or "console"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		// Asset source defaults
		SourceMode:    getEnvOrDefault("SOURCE_MODE", "memory"),
		ChainRPCURL:   getEnvOrDefault("CHAIN_RPC_URL", "https://polygon-rpc.com"),
		ChainID:       int64(getIntOrDefault("CHAIN_ID", 137)),
		VaultContract: os.Getenv("VAULT_CONTRACT"),
		VaultCustody:  getEnvOrDefault("VAULT_CUSTODY", "0x0000000000000000000000000000000000000C01"),

		// Pair defaults
		PairTokenIn:         getEnvOrDefault("PAIR_TOKEN_IN", "0x0000000000000000000000000000000000000A01"),
		PairTokenOut:        getEnvOrDefault("PAIR_TOKEN_OUT", "0x0000000000000000000000000000000000000A02"),
		PairTargetAddress:   getEnvOrDefault("PAIR_TARGET_ADDRESS", "0x0000000000000000000000000000000000000C02"),
		PairTargetPeriod:    getDurationOrDefault("PAIR_TARGET_PERIOD", time.Hour),
		PairInitialPrice:    getEnvOrDefault("PAIR_INITIAL_PRICE", "10000000000000000"), // 1e16
		PairSmoothingFactor: getEnvOrDefault("PAIR_SMOOTHING_FACTOR", "0"),

		// Router defaults
		RouterAddress: getEnvOrDefault("ROUTER_ADDRESS", "0x0000000000000000000000000000000000000D01"),

		// Quote cache defaults
		QuoteCacheTTL: getDurationOrDefault("QUOTE_CACHE_TTL", 500*time.Millisecond),

		// Event feed defaults
		FeedPingInterval: getDurationOrDefault("FEED_PING_INTERVAL", 10*time.Second),
		FeedWriteTimeout: getDurationOrDefault("FEED_WRITE_TIMEOUT", 5*time.Second),
		FeedSendBuffer:   getIntOrDefault("FEED_SEND_BUFFER", 64),

		// Storage defaults
		StorageMode:  getEnvOrDefault("STORAGE_MODE", "console"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "auctionflow"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "auctionflow123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "auctionflow"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.SourceMode != "memory" && c.SourceMode != "evm" {
		return fmt.Errorf("SOURCE_MODE must be 'memory' or 'evm', got %q", c.SourceMode)
	}

	if c.SourceMode == "evm" && !common.IsHexAddress(c.VaultContract) {
		return fmt.Errorf("VAULT_CONTRACT must be a hex address in evm mode, got %q", c.VaultContract)
	}

	if c.PairTargetPeriod < time.Second {
		return fmt.Errorf("PAIR_TARGET_PERIOD must be at least 1s, got %s", c.PairTargetPeriod)
	}

	for name, addr := range map[string]string{
		"PAIR_TOKEN_IN":       c.PairTokenIn,
		"PAIR_TOKEN_OUT":      c.PairTokenOut,
		"PAIR_TARGET_ADDRESS": c.PairTargetAddress,
		"ROUTER_ADDRESS":      c.RouterAddress,
		"VAULT_CUSTODY":       c.VaultCustody,
	} {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("%s must be a hex address, got %q", name, addr)
		}
	}

	price, ok := new(big.Int).SetString(c.PairInitialPrice, 10)
	if !ok || price.Sign() <= 0 {
		return fmt.Errorf("PAIR_INITIAL_PRICE must be a positive integer, got %q", c.PairInitialPrice)
	}

	smoothing, ok := new(big.Int).SetString(c.PairSmoothingFactor, 10)
	if !ok || smoothing.Sign() < 0 || smoothing.Cmp(wad) >= 0 {
		return fmt.Errorf("PAIR_SMOOTHING_FACTOR must be an integer in [0, 1e18), got %q", c.PairSmoothingFactor)
	}

	if c.StorageMode != "postgres" && c.StorageMode != "console" {
		return fmt.Errorf("STORAGE_MODE must be 'postgres' or 'console', got %q", c.StorageMode)
	}

	return nil
}

// InitialPrice returns the parsed initial pair price. Validate must have
// passed.
func (c *Config) InitialPrice() *big.Int {
	price, _ := new(big.Int).SetString(c.PairInitialPrice, 10)
	return price
}

// SmoothingFactor returns the parsed WAD-scale smoothing factor. Validate
// must have passed.
func (c *Config) SmoothingFactor() *big.Int {
	smoothing, _ := new(big.Int).SetString(c.PairSmoothingFactor, 10)
	return smoothing
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
