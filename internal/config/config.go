package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/veridlabs/id-node/internal/log"
)

// Ledger backend modes
const (
	LedgerModeEmbedded = "embedded" // single node ledger backed by this service
	LedgerModeEthereum = "ethereum" // external ledger reached over JSON-RPC
)

// Configuration holds the project configuration
type Configuration struct {
	ServerURL     string        `mapstructure:"ServerUrl"`
	ServerPort    int           `mapstructure:"ServerPort"`
	Database      Database      `mapstructure:"Database"`
	Cache         Cache         `mapstructure:"Cache"`
	Ledger        Ledger        `mapstructure:"Ledger"`
	Ethereum      Ethereum      `mapstructure:"Ethereum"`
	IPFS          IPFS          `mapstructure:"IPFS"`
	Log           Log           `mapstructure:"Log"`
	HTTPBasicAuth HTTPBasicAuth `mapstructure:"HTTPBasicAuth"`
}

// Database has the database configuration
// URL: The database connection string
type Database struct {
	URL string `mapstructure:"Url" tip:"The Datasource name locator"`
}

// Cache configurations
type Cache struct {
	RedisURL string        `mapstructure:"RedisUrl" tip:"The redis url to use as a cache"`
	QuickTTL time.Duration `mapstructure:"QuickTTL" tip:"TTL for cached quick verification verdicts"`
	DIDTTL   time.Duration `mapstructure:"DIDTTL" tip:"TTL for cached DID documents"`
}

// Ledger selects the registry backend
type Ledger struct {
	Mode string `mapstructure:"Mode" tip:"Registry backend: embedded or ethereum"`
}

// Ethereum struct
type Ethereum struct {
	URL                       string        `tip:"Ethereum url"`
	DIDRegistryAddress        string        `tip:"DID registry contract address"`
	CredentialRegistryAddress string        `tip:"Credential registry contract address"`
	CredentialVerifierAddress string        `tip:"Credential verifier contract address"`
	RelayerKeyPath            string        `tip:"Path to the relayer private key used to submit transactions"`
	DefaultGasLimit           int           `tip:"Default Gas Limit"`
	ConfirmationTimeout       time.Duration `tip:"Confirmation timeout"`
	ConfirmationBlockCount    int64         `tip:"Confirmation block count"`
	ReceiptTimeout            time.Duration `tip:"Receipt timeout"`
	MinGasPrice               int           `tip:"Minimum Gas Price"`
	MaxGasPrice               int           `tip:"Maximum Gas Price"`
	RPCResponseTimeout        time.Duration `tip:"RPC Response timeout"`
	WaitReceiptCycleTime      time.Duration `tip:"Wait Receipt Cycle Time"`
	WaitBlockCycleTime        time.Duration `tip:"Wait Block Cycle Time"`
}

// IPFS holds the content store configuration.
// APIAddress points to an IPFS node API (e.g. localhost:5001). When empty,
// GatewayURL is used for read only access through a public gateway.
type IPFS struct {
	APIAddress      string        `mapstructure:"APIAddress" tip:"IPFS node API multiaddress or host:port"`
	GatewayURL      string        `mapstructure:"GatewayUrl" tip:"IPFS http gateway for read only access"`
	ResponseTimeout time.Duration `mapstructure:"ResponseTimeout" tip:"Per call timeout for content store operations"`
}

// Log holds runtime configurations
//
// Level: The minimum log level to show on logs. Values can be
//
//	 -4: Debug
//		0: Info
//		4: Warning
//		8: Error
//	 The default log level is debug
//
// Mode: Log mode is the format of the log. It can be text or json
// 1: JSON
// 2: Text
// The default log formal is JSON
type Log struct {
	Level int `mapstructure:"Level" tip:"Minimum level to log: (-4:Debug, 0:Info, 4:Warning, 8:Error)"`
	Mode  int `mapstructure:"Mode" tip:"Log format (1: JSON, 2:Structured text)"`
}

// HTTPBasicAuth configuration. Mutating endpoints are protected with basic http auth.
// Here you can set the user and password to use.
type HTTPBasicAuth struct {
	User     string `mapstructure:"User" tip:"Basic auth username"`
	Password string `mapstructure:"Password" tip:"Basic auth password"`
}

// Sanitize perform some basic checks and sanitizations in the configuration.
// Returns true if config is acceptable, error otherwise.
func (c *Configuration) Sanitize() error {
	sURL, err := c.validateServerURL()
	if err != nil {
		return fmt.Errorf("serverUrl is not a valid URL <%s>: %w", c.ServerURL, err)
	}
	c.ServerURL = sURL

	if c.Ledger.Mode != LedgerModeEmbedded && c.Ledger.Mode != LedgerModeEthereum {
		return fmt.Errorf("unknown ledger mode <%s>", c.Ledger.Mode)
	}
	if c.Ledger.Mode == LedgerModeEthereum && c.Ethereum.URL == "" {
		return fmt.Errorf("an ethereum url must be provided when the ledger mode is %s", LedgerModeEthereum)
	}

	return nil
}

func (c *Configuration) validateServerURL() (string, error) {
	sURL, err := url.ParseRequestURI(c.ServerURL)
	if err != nil {
		return c.ServerURL, err
	}
	if sURL.Scheme == "" {
		return c.ServerURL, fmt.Errorf("server URL must be an absolute URL")
	}
	sURL.RawQuery = ""
	return strings.Trim(strings.Trim(sURL.String(), "/"), "?"), nil
}

// Load loads the configuration from a file
func Load(fileName string) (*Configuration, error) {
	// a missing .env file is fine, env vars may come from the environment
	_ = godotenv.Load()
	bindEnv()
	pathFlag := viper.GetString("config")
	if _, err := os.Stat(pathFlag); err == nil {
		ext := filepath.Ext(pathFlag)
		if len(ext) > 1 {
			ext = ext[1:]
		}
		name := strings.Split(filepath.Base(pathFlag), ".")[0]
		viper.AddConfigPath(".")
		viper.SetConfigName(name)
		viper.SetConfigType(ext)
	} else {
		viper.AddConfigPath(getWorkingDirectory())
		viper.SetConfigType("toml")
		if fileName == "" {
			viper.SetConfigName("config")
		} else {
			viper.SetConfigName(fileName)
		}
	}

	const (
		defQuickTTL        = 30 * time.Second
		defDIDTTL          = 5 * time.Minute
		defIPFSCallTimeout = 10 * time.Second
	)
	config := &Configuration{
		Ledger: Ledger{Mode: LedgerModeEmbedded},
		Cache: Cache{
			QuickTTL: defQuickTTL,
			DIDTTL:   defDIDTTL,
		},
		IPFS: IPFS{
			GatewayURL:      "https://ipfs.io",
			ResponseTimeout: defIPFSCallTimeout,
		},
		Log: Log{
			Level: log.LevelDebug,
			Mode:  log.OutputText,
		},
	}
	ctx := context.Background()
	if err := viper.ReadInConfig(); err != nil {
		log.Info(ctx, "config file not loaded, relying on env vars", "err", err)
	}
	if err := viper.Unmarshal(config); err != nil {
		log.Error(ctx, "error unmarshalling config file", "err", err)
	}
	checkEnvVars(ctx, config)
	return config, nil
}

func bindEnv() {
	viper.SetEnvPrefix("IDNODE")
	_ = viper.BindEnv("ServerUrl", "IDNODE_SERVER_URL")
	_ = viper.BindEnv("ServerPort", "IDNODE_SERVER_PORT")

	_ = viper.BindEnv("Database.Url", "IDNODE_DATABASE_URL")

	_ = viper.BindEnv("Cache.RedisUrl", "IDNODE_REDIS_URL")
	_ = viper.BindEnv("Cache.QuickTTL", "IDNODE_CACHE_QUICK_TTL")
	_ = viper.BindEnv("Cache.DIDTTL", "IDNODE_CACHE_DID_TTL")

	_ = viper.BindEnv("Ledger.Mode", "IDNODE_LEDGER_MODE")

	_ = viper.BindEnv("Ethereum.URL", "IDNODE_ETHEREUM_URL")
	_ = viper.BindEnv("Ethereum.DIDRegistryAddress", "IDNODE_ETHEREUM_DID_REGISTRY_ADDRESS")
	_ = viper.BindEnv("Ethereum.CredentialRegistryAddress", "IDNODE_ETHEREUM_CREDENTIAL_REGISTRY_ADDRESS")
	_ = viper.BindEnv("Ethereum.CredentialVerifierAddress", "IDNODE_ETHEREUM_CREDENTIAL_VERIFIER_ADDRESS")
	_ = viper.BindEnv("Ethereum.RelayerKeyPath", "IDNODE_ETHEREUM_RELAYER_KEY_PATH")
	_ = viper.BindEnv("Ethereum.DefaultGasLimit", "IDNODE_ETHEREUM_DEFAULT_GAS_LIMIT")
	_ = viper.BindEnv("Ethereum.ConfirmationTimeout", "IDNODE_ETHEREUM_CONFIRMATION_TIME_OUT")
	_ = viper.BindEnv("Ethereum.ConfirmationBlockCount", "IDNODE_ETHEREUM_CONFIRMATION_BLOCK_COUNT")
	_ = viper.BindEnv("Ethereum.ReceiptTimeout", "IDNODE_ETHEREUM_RECEIPT_TIMEOUT")
	_ = viper.BindEnv("Ethereum.MinGasPrice", "IDNODE_ETHEREUM_MIN_GAS_PRICE")
	_ = viper.BindEnv("Ethereum.MaxGasPrice", "IDNODE_ETHEREUM_MAX_GAS_PRICE")
	_ = viper.BindEnv("Ethereum.RPCResponseTimeout", "IDNODE_ETHEREUM_RPC_RESPONSE_TIMEOUT")
	_ = viper.BindEnv("Ethereum.WaitReceiptCycleTime", "IDNODE_ETHEREUM_WAIT_RECEIPT_CYCLE_TIME")
	_ = viper.BindEnv("Ethereum.WaitBlockCycleTime", "IDNODE_ETHEREUM_WAIT_BLOCK_CYCLE_TIME")

	_ = viper.BindEnv("IPFS.APIAddress", "IDNODE_IPFS_API_ADDRESS")
	_ = viper.BindEnv("IPFS.GatewayUrl", "IDNODE_IPFS_GATEWAY_URL")
	_ = viper.BindEnv("IPFS.ResponseTimeout", "IDNODE_IPFS_RESPONSE_TIMEOUT")

	_ = viper.BindEnv("Log.Level", "IDNODE_LOG_LEVEL")
	_ = viper.BindEnv("Log.Mode", "IDNODE_LOG_MODE")

	_ = viper.BindEnv("HTTPBasicAuth.User", "IDNODE_API_AUTH_USER")
	_ = viper.BindEnv("HTTPBasicAuth.Password", "IDNODE_API_AUTH_PASSWORD")

	viper.AutomaticEnv()
}

func checkEnvVars(ctx context.Context, cfg *Configuration) {
	if cfg.ServerURL == "" {
		log.Info(ctx, "IDNODE_SERVER_URL value is missing")
	}

	if cfg.ServerPort == 0 {
		log.Info(ctx, "IDNODE_SERVER_PORT value is missing")
	}

	if cfg.Ledger.Mode == LedgerModeEmbedded && cfg.Database.URL == "" {
		log.Info(ctx, "IDNODE_DATABASE_URL value is missing, embedded ledger will not survive restarts")
	}

	if cfg.Cache.RedisURL == "" {
		log.Info(ctx, "IDNODE_REDIS_URL value is missing, using in memory cache")
	}
}

func getWorkingDirectory() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
