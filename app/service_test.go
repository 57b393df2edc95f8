package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gridflex/flexcore/config"
	"github.com/gridflex/flexcore/core/factory"
	"github.com/gridflex/flexcore/core/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Traders: []config.TraderConfig{
			{
				ID: "storage-1",
				Device: storage.Specification{
					EnergyToPowerRatio: 4,
					InstalledPowerInMW: 10,
					ChargingEfficiency: 0.95,
				},
				Strategist: factory.ModuleConfig{
					Type: "max_profit_price_taker",
					Conf: map[string]any{
						"number_of_energy_states":     5,
						"number_of_transition_states": 3,
						"schedule_duration_periods":   4,
					},
				},
				DispatchToleranceInMWH: 0.1,
			},
		},
		Sinks: []factory.ModuleConfig{{Type: "nop"}},
		Settlement: config.SettlementConfig{
			Backend: "jsonl",
			Path:    filepath.Join(t.TempDir(), "clearings.jsonl"),
		},
	}
	cfg.Market.SetDefaults()
	return cfg
}

func TestSimulationRun(t *testing.T) {
	cfg := testConfig(t)
	sim, err := New(cfg)
	if err != nil {
		t.Fatalf("new simulation: %v", err)
	}
	defer func() { _ = sim.Close() }()

	if err := sim.Run(context.Background(), 0, 3600, 3); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestSimulationRun_UnknownStrategist(t *testing.T) {
	cfg := testConfig(t)
	cfg.Traders[0].Strategist.Type = "does_not_exist"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for unknown strategist type")
	}
}
