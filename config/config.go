package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/gridflex/flexcore/core/factory"
	"github.com/gridflex/flexcore/infra/mqtt"
)

// Config is the top-level configuration for a clearing simulation run: the
// market it clears, the traders participating in it, and where its
// metrics and settlement records go.
type Config struct {
	MQTT       mqtt.Config            `json:"mqtt"`
	Market     MarketConfig           `json:"market"`
	Traders    []TraderConfig         `json:"traders"`
	Sinks      []factory.ModuleConfig `json:"sinks"`
	Settlement SettlementConfig       `json:"settlement"`
}

// Load reads a YAML or JSON configuration file at path, applying "K_"
// prefixed environment overrides (double underscore as the nesting
// separator) on top of it before defaulting and validating the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Market.SetDefaults()
	cfg.Settlement.SetDefaults()
	if err := cfg.Settlement.Validate(); err != nil {
		return nil, err
	}
	for _, trader := range cfg.Traders {
		if err := trader.Validate(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}
