package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "PIVERSE"

const (
	TransportSocket = "socket"
	TransportGRPC   = "grpc"

	BackendGoLevelDB = "goleveldb"
	BackendMemDB     = "memdb"

	LogFormatJSON  = "json"
	LogFormatPlain = "plain"
)

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
	MaxMB  int    `mapstructure:"max_mb"`
}

type IndexerConfig struct {
	DSN       string `mapstructure:"dsn"`
	QueueSize int    `mapstructure:"queue_size"`
}

// NodeConfig is everything piversed needs to start.
type NodeConfig struct {
	Home         string        `mapstructure:"home"`
	ABCIAddr     string        `mapstructure:"abci_addr"`
	Transport    string        `mapstructure:"transport"`
	DBBackend    string        `mapstructure:"db_backend"`
	HTTPAddr     string        `mapstructure:"http_addr"`
	EnableFaucet bool          `mapstructure:"enable_faucet"`
	Indexer      IndexerConfig `mapstructure:"indexer"`
	Log          LogConfig     `mapstructure:"log"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("home", ".piverse")
	v.SetDefault("abci_addr", "tcp://127.0.0.1:26658")
	v.SetDefault("transport", TransportSocket)
	v.SetDefault("db_backend", BackendGoLevelDB)
	v.SetDefault("http_addr", "")
	v.SetDefault("enable_faucet", false)
	v.SetDefault("indexer.dsn", "")
	v.SetDefault("indexer.queue_size", 256)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", LogFormatJSON)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_mb", 10)
}

// Load resolves defaults, the optional config file, PIVERSE_* environment
// variables and any flags already bound to v, in increasing precedence.
func Load(v *viper.Viper) (NodeConfig, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return NodeConfig{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg NodeConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return NodeConfig{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	if err := cfg.Validate(); err != nil {
		return NodeConfig{}, err
	}
	return cfg, nil
}

func (c NodeConfig) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Home) == "" && c.DBBackend != BackendMemDB {
		errs = append(errs, errors.New("home is required for a persistent db backend"))
	}
	if strings.TrimSpace(c.ABCIAddr) == "" {
		errs = append(errs, errors.New("abci_addr is required"))
	}
	switch c.Transport {
	case TransportSocket, TransportGRPC:
	default:
		errs = append(errs, fmt.Errorf("unknown transport %q (want %s|%s)", c.Transport, TransportSocket, TransportGRPC))
	}
	switch c.DBBackend {
	case BackendGoLevelDB, BackendMemDB:
	default:
		errs = append(errs, fmt.Errorf("unknown db_backend %q (want %s|%s)", c.DBBackend, BackendGoLevelDB, BackendMemDB))
	}
	switch c.Log.Format {
	case LogFormatJSON, LogFormatPlain:
	default:
		errs = append(errs, fmt.Errorf("unknown log.format %q (want %s|%s)", c.Log.Format, LogFormatJSON, LogFormatPlain))
	}
	if c.Indexer.QueueSize <= 0 {
		errs = append(errs, fmt.Errorf("indexer.queue_size must be positive, got %d", c.Indexer.QueueSize))
	}
	return errors.Join(errs...)
}

// DataDir is where the persistent state db lives.
func (c NodeConfig) DataDir() string {
	return filepath.Join(c.Home, "data")
}
