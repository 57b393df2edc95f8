package config

import (
	"fmt"

	"github.com/gridflex/flexcore/core/settlement"
)

// SettlementConfig selects and configures the clearing-record store that
// settlement.Record entries are appended to after every clearing.
type SettlementConfig struct {
	// Backend selects the record store: "jsonl", "jsonl_rotating" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the record store.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes. jsonl_rotating only.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep. jsonl_rotating only.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days. jsonl_rotating only.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *SettlementConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		c.Path = "clearings.jsonl"
	}
}

// Validate checks mandatory fields.
func (c SettlementConfig) Validate() error {
	switch c.Backend {
	case "jsonl", "jsonl_rotating", "sqlite":
	default:
		return fmt.Errorf("unknown settlement backend %s", c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("settlement path is required")
	}
	return nil
}

// Build opens the settlement.Store this configuration describes.
func (c SettlementConfig) Build() (settlement.Store, error) {
	switch c.Backend {
	case "jsonl":
		return settlement.NewJSONLStore(c.Path)
	case "jsonl_rotating":
		return settlement.NewRotatingJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
	case "sqlite":
		return settlement.NewSQLiteStore(c.Path)
	default:
		return nil, fmt.Errorf("unknown settlement backend %s", c.Backend)
	}
}
