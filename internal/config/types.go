package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/vendorperf/pkg/adapter"
	"github.com/leapstack-labs/vendorperf/pkg/core"
)

// ValidateTarget checks if the target configuration is valid.
// It uses the adapter registry to determine which adapter types are available.
func ValidateTarget(t *core.TargetConfig) error {
	if t == nil {
		return fmt.Errorf("target is required")
	}
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}

	if !adapter.IsRegistered(strings.ToLower(t.Type)) {
		return &adapter.UnknownAdapterError{
			Type:      t.Type,
			Available: adapter.ListAdapters(),
		}
	}

	if t.Database == "" {
		return fmt.Errorf("target database is required for type %s", t.Type)
	}

	return nil
}
