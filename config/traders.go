package config

import (
	"fmt"

	"github.com/gridflex/flexcore/core/factory"
	"github.com/gridflex/flexcore/core/storage"
)

// TraderConfig describes one storage-backed trader: the physical device it
// dispatches and the strategist plugin deciding how to dispatch it.
type TraderConfig struct {
	ID                     string                `json:"id"`
	Device                 storage.Specification `json:"device"`
	Strategist             factory.ModuleConfig  `json:"strategist"`
	DispatchToleranceInMWH float64               `json:"dispatch_tolerance_mwh"`
}

// Validate checks the fields Load cannot recover from at construction
// time: an empty trader ID can't be told apart from any other, and a
// strategist plugin without a type name can never be built.
func (c TraderConfig) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("trader: id is required")
	}
	if c.Strategist.Type == "" {
		return fmt.Errorf("trader %s: strategist.type is required", c.ID)
	}
	return nil
}
