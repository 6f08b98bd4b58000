// Package config defines the exchange's runtime settings, loaded from a
// YAML file with environment-variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"matching-core/domain"
)

// SymbolConfig is one tradeable instrument's static definition.
type SymbolConfig struct {
	Kind  string `mapstructure:"kind"`
	Base  uint32 `mapstructure:"base"`
	Quote uint32 `mapstructure:"quote"`
}

// Settings is the top-level exchange configuration.
type Settings struct {
	Symbols         []SymbolConfig `mapstructure:"symbols"`
	RiskEngineShards int           `mapstructure:"risk_engine_shards"`
	QueueCapacity   int            `mapstructure:"queue_capacity"`

	// Technical parameters.
	DBSyncSpeed      time.Duration `mapstructure:"db_sync_speed"`
	DBMinRecvTimeout time.Duration `mapstructure:"db_min_recv_timeout"`

	Logging LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads settings from a YAML file, with EXCHANGE_* environment
// variables overriding any key (dots replaced by underscores).
func Load(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("EXCHANGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("risk_engine_shards", 4)
	v.SetDefault("queue_capacity", 4096)
	v.SetDefault("db_sync_speed", "1s")
	v.SetDefault("db_min_recv_timeout", "10ms")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &s, nil
}

// Validate checks the settings a pipeline.Assembly cannot safely run
// without.
func (s *Settings) Validate() error {
	if s.RiskEngineShards <= 0 {
		return fmt.Errorf("config: risk_engine_shards must be > 0")
	}
	if s.QueueCapacity <= 0 {
		return fmt.Errorf("config: queue_capacity must be > 0")
	}
	if len(s.Symbols) == 0 {
		return fmt.Errorf("config: at least one symbol is required")
	}
	for i, sym := range s.Symbols {
		if _, err := symbolKind(sym.Kind); err != nil {
			return fmt.Errorf("config: symbols[%d]: %w", i, err)
		}
	}
	return nil
}

// ToDomain resolves the configured symbol table into domain.Symbol
// values, indexed by domain.SymbolID (slice index == symbol id).
func (s *Settings) ToDomain() ([]domain.Symbol, error) {
	out := make([]domain.Symbol, len(s.Symbols))
	for i, sym := range s.Symbols {
		kind, err := symbolKind(sym.Kind)
		if err != nil {
			return nil, err
		}
		out[i] = domain.Symbol{Kind: kind, Base: domain.AssetID(sym.Base), Quote: domain.AssetID(sym.Quote)}
	}
	return out, nil
}

func symbolKind(s string) (domain.SymbolKind, error) {
	switch s {
	case "exchange_pair":
		return domain.ExchangePair, nil
	case "futures_contract":
		return domain.FuturesContract, nil
	case "option":
		return domain.Option, nil
	default:
		return 0, fmt.Errorf("unrecognized symbol kind %q", s)
	}
}
