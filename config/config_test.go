package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `mqtt:
  broker: "tcp://localhost:1883"
  client_id: "cli"
  username: "user"
  password: "pass"
  use_tls: false
market:
  scarcity_price_eur_per_mwh: 3000
  minimal_price_eur_per_mwh: -500
  distribution_method: "same_shares"
traders:
  - id: "storage-1"
    dispatch_tolerance_mwh: 0.5
    device:
      energy_to_power_ratio: 4
      installed_power_mw: 10
    strategist:
      type: "max_profit_price_taker"
      conf:
        number_of_energy_states: 10
        number_of_transition_states: 5
sinks:
  - type: "nop"
settlement:
  backend: "sqlite"
  path: "clearings.db"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"client_id", cfg.MQTT.ClientID, "cli"},
		{"username", cfg.MQTT.Username, "user"},
		{"password", cfg.MQTT.Password, "pass"},
		{"use_tls", cfg.MQTT.UseTLS, false},
		{"market.scarcity_price", cfg.Market.ScarcityPrice, 3000.0},
		{"market.distribution_method", cfg.Market.DistributionMethod, "same_shares"},
		{"trader_count", len(cfg.Traders), 1},
		{"trader.id", cfg.Traders[0].ID, "storage-1"},
		{"trader.strategist.type", cfg.Traders[0].Strategist.Type, "max_profit_price_taker"},
		{"sink_count", len(cfg.Sinks) == 1 && cfg.Sinks[0].Type == "nop", true},
		{"settlement.backend", cfg.Settlement.Backend, "sqlite"},
		{"settlement.path", cfg.Settlement.Path, "clearings.db"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: got %v want %v", c.name, c.got, c.want)
		}
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("x = 1"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestTraderConfigValidate(t *testing.T) {
	if err := (TraderConfig{}).Validate(); err == nil {
		t.Fatal("expected error for missing id")
	}
	if err := (TraderConfig{ID: "t1"}).Validate(); err == nil {
		t.Fatal("expected error for missing strategist type")
	}
}
