// Package factory provides a small generic registry used to instantiate
// pluggable market and strategist components from configuration. Modules
// are defined by a type string and a map of raw settings. Factories decode
// the settings into typed structs and return the concrete implementation.
//
// Example usage:
//
//	reg := factory.NewRegistry[strategist.Strategist]()
//	reg.Register("max_profit_price_taker", func(conf map[string]any) (strategist.Strategist, error) {
//	    var c dpConfig
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return newMaxProfitPriceTaker(c), nil
//	})
//	s, err := reg.Create(factory.ModuleConfig{Type: "max_profit_price_taker", Conf: map[string]any{"number_of_energy_states": 11}})
package factory
