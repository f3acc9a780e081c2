package configloader

import (
	"fmt"
	"os"

	"token_trader/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// IndexerConfig holds the optional token-indexing service configuration.
// An empty APIKey disables tier-1 scanning entirely; that is a normal state.
type IndexerConfig struct {
	BaseURL              string `yaml:"baseURL"`
	APIKey               string `yaml:"apiKey"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// ScannerConfig holds knobs for the balance/token scanner.
type ScannerConfig struct {
	MaxConcurrentProbes     int    `yaml:"maxConcurrentProbes"`
	MinTier2Results         int    `yaml:"minTier2Results"`
	DefaultLogScanBlocks    uint64 `yaml:"defaultLogScanBlocks"`
	MetadataCacheTTLMinutes int    `yaml:"metadataCacheTTLMinutes"`
	ProbeRatePerSecond      int    `yaml:"probeRatePerSecond"`
}

// SwapConfig holds executor-wide swap parameters.
type SwapConfig struct {
	DeadlineMinutes        int `yaml:"deadlineMinutes"`
	GasMarginPercent       int `yaml:"gasMarginPercent"`
	ConfirmTimeoutSeconds  int `yaml:"confirmTimeoutSeconds"`
	ImpactWarnThresholdPct int `yaml:"impactWarnThresholdPct"`
}

// WalletStoreConfig holds wallet custody configuration. SecretEnv names the
// environment variable carrying the encryption passphrase; the passphrase
// itself never lives in the YAML file.
type WalletStoreConfig struct {
	FilePath  string `yaml:"filePath"`
	SecretEnv string `yaml:"secretEnv"`
}

// PerformanceConfig holds performance-related configurations.
type PerformanceConfig struct {
	RPCCallTimeoutSeconds int `yaml:"rpc_call_timeout_seconds"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server      ServerConfig               `yaml:"server"`
	Logging     LoggingConfig              `yaml:"logging"`
	Indexer     IndexerConfig              `yaml:"indexer"`
	Scanner     ScannerConfig              `yaml:"scanner"`
	Swap        SwapConfig                 `yaml:"swap"`
	WalletStore WalletStoreConfig          `yaml:"walletStore"`
	Performance PerformanceConfig          `yaml:"performance"`
	Networks    []entity.NetworkDefinition `yaml:"networks"`
}

// Load reads the YAML configuration file from the given path and unmarshals it.
// Missing optional values are defaulted with a log line; malformed addresses
// in any network definition refuse startup.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := validateNetworks(cfg.Networks); err != nil {
		return nil, err
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Performance.RPCCallTimeoutSeconds <= 0 {
		cfg.Performance.RPCCallTimeoutSeconds = 10
		logrus.Infof("rpc_call_timeout_seconds not set, defaulting to %d", cfg.Performance.RPCCallTimeoutSeconds)
	}
	if cfg.Scanner.MaxConcurrentProbes <= 0 {
		cfg.Scanner.MaxConcurrentProbes = 10
	}
	if cfg.Scanner.MinTier2Results <= 0 {
		cfg.Scanner.MinTier2Results = 5
	}
	if cfg.Scanner.DefaultLogScanBlocks == 0 {
		cfg.Scanner.DefaultLogScanBlocks = 10000
		logrus.Infof("scanner.defaultLogScanBlocks not set, defaulting to %d", cfg.Scanner.DefaultLogScanBlocks)
	}
	if cfg.Scanner.MetadataCacheTTLMinutes <= 0 {
		cfg.Scanner.MetadataCacheTTLMinutes = 60
	}
	if cfg.Scanner.ProbeRatePerSecond <= 0 {
		cfg.Scanner.ProbeRatePerSecond = 20
	}
	if cfg.Swap.DeadlineMinutes <= 0 {
		cfg.Swap.DeadlineMinutes = 20
		logrus.Infof("swap.deadlineMinutes not set, defaulting to %d", cfg.Swap.DeadlineMinutes)
	}
	if cfg.Swap.GasMarginPercent <= 0 {
		cfg.Swap.GasMarginPercent = 20
	}
	if cfg.Swap.ConfirmTimeoutSeconds <= 0 {
		cfg.Swap.ConfirmTimeoutSeconds = 90
	}
	if cfg.Swap.ImpactWarnThresholdPct <= 0 {
		cfg.Swap.ImpactWarnThresholdPct = 5
	}
	if cfg.Indexer.RequestTimeoutMillis <= 0 {
		cfg.Indexer.RequestTimeoutMillis = 10000
	}
	if cfg.WalletStore.SecretEnv == "" {
		cfg.WalletStore.SecretEnv = "WALLET_STORE_SECRET"
	}
	if cfg.WalletStore.FilePath == "" {
		cfg.WalletStore.FilePath = "data/wallets.json"
	}
	// Expand ${VAR} style references so API keys can live in the environment.
	cfg.Indexer.APIKey = os.ExpandEnv(cfg.Indexer.APIKey)
}

func validateNetworks(networks []entity.NetworkDefinition) error {
	for i := range networks {
		n := &networks[i]
		if n.Identifier == "" {
			return fmt.Errorf("network at index %d is missing an identifier", i)
		}
		for field, addr := range map[string]string{
			"routerAddress":        n.RouterAddress,
			"factoryAddress":       n.FactoryAddress,
			"wrappedNativeAddress": n.WrappedNativeAddress,
		} {
			if addr == "" {
				return fmt.Errorf("network %s is missing %s", n.Identifier, field)
			}
			if !common.IsHexAddress(addr) {
				return fmt.Errorf("network %s has malformed %s: %s", n.Identifier, field, addr)
			}
		}
		if n.NativeDecimals == 0 {
			n.NativeDecimals = 18
		}
		if n.LogScanBlocks == 0 {
			logrus.Debugf("network %s has no logScanBlocks override, scanner default applies", n.Identifier)
		}
		for sym, tok := range n.Tokens {
			if !common.IsHexAddress(tok.Address) {
				return fmt.Errorf("network %s token %s has malformed address: %s", n.Identifier, sym, tok.Address)
			}
		}
		for _, tok := range n.PopularTokens {
			if !common.IsHexAddress(tok.Address) {
				return fmt.Errorf("network %s popular token %s has malformed address: %s", n.Identifier, tok.Symbol, tok.Address)
			}
		}
	}
	return nil
}
