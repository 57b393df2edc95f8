package strategist

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gridflex/flexcore/core/factory"
	"github.com/gridflex/flexcore/core/storage"
	"github.com/gridflex/flexcore/core/timeseries"
)

// BuildParams carries everything a factory.Factory[Strategist] needs beyond
// its raw plugin conf: the device it dispatches and the shared logger, both
// wired by the caller rather than decoded from configuration.
type BuildParams struct {
	Device                 *storage.Device
	DispatchToleranceInMWH float64
	Log                    zerolog.Logger
}

// registry holds the process-wide Strategist factories, keyed by plugin
// type name as used in a factory.ModuleConfig.
var registry = factory.NewRegistry[func(BuildParams) (Strategist, error)]()

func init() {
	_ = registry.Register("max_profit_price_taker", func(conf map[string]any) (func(BuildParams) (Strategist, error), error) {
		var raw struct {
			Config
			NumberOfEnergyStates     int `json:"number_of_energy_states"`
			NumberOfTransitionStates int `json:"number_of_transition_states"`
		}
		if err := factory.Decode(conf, &raw); err != nil {
			return nil, err
		}
		return func(p BuildParams) (Strategist, error) {
			return NewMaxProfitPriceTaker(raw.Config, p.Device, raw.NumberOfEnergyStates, raw.NumberOfTransitionStates), nil
		}, nil
	})

	_ = registry.Register("max_profit_price_impact", func(conf map[string]any) (func(BuildParams) (Strategist, error), error) {
		var raw struct {
			Config
			NumberOfEnergyStates     int `json:"number_of_energy_states"`
			NumberOfTransitionStates int `json:"number_of_transition_states"`
		}
		if err := factory.Decode(conf, &raw); err != nil {
			return nil, err
		}
		return func(p BuildParams) (Strategist, error) {
			return NewMaxProfitPriceImpact(raw.Config, p.Device, raw.NumberOfEnergyStates, raw.NumberOfTransitionStates), nil
		}, nil
	})

	_ = registry.Register("min_system_cost", func(conf map[string]any) (func(BuildParams) (Strategist, error), error) {
		var raw struct {
			Config
			NumberOfEnergyStates     int `json:"number_of_energy_states"`
			NumberOfTransitionStates int `json:"number_of_transition_states"`
		}
		if err := factory.Decode(conf, &raw); err != nil {
			return nil, err
		}
		return func(p BuildParams) (Strategist, error) {
			return NewMinSystemCost(raw.Config, p.Device, raw.NumberOfEnergyStates, raw.NumberOfTransitionStates), nil
		}, nil
	})

	_ = registry.Register("file_dispatcher", func(conf map[string]any) (func(BuildParams) (Strategist, error), error) {
		var raw struct {
			Config
			SchedulePath string `json:"schedule_path"`
		}
		if err := factory.Decode(conf, &raw); err != nil {
			return nil, err
		}
		if raw.SchedulePath == "" {
			return nil, fmt.Errorf("strategist: file_dispatcher requires schedule_path")
		}
		return func(p BuildParams) (Strategist, error) {
			series, err := timeseries.LoadFile(raw.SchedulePath)
			if err != nil {
				return nil, fmt.Errorf("strategist: loading schedule file: %w", err)
			}
			return NewFileDispatcher(raw.Config, p.Device, series, p.DispatchToleranceInMWH, p.Log), nil
		}, nil
	})
}

// Build instantiates the Strategist described by cfg, using params to
// supply the runtime dependencies that a plugin's raw configuration cannot
// carry itself.
func Build(cfg factory.ModuleConfig, params BuildParams) (Strategist, error) {
	build, err := registry.Create(cfg)
	if err != nil {
		return nil, err
	}
	return build(params)
}
