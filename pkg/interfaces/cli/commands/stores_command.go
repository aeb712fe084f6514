package commands

import (
	"context"
	"fmt"

	"github.com/vsinha/kitinv/pkg/config"
)

// StoresCommand lists the registered stores and whether their credentials are set
type StoresCommand struct {
	runtime *Runtime
}

// NewStoresCommand creates a new stores command
func NewStoresCommand(runtime *Runtime) *StoresCommand {
	return &StoresCommand{runtime: runtime}
}

// Execute runs the stores command
func (c *StoresCommand) Execute(ctx context.Context) error {
	out := c.runtime.Out
	available := c.runtime.Registry.Available()

	fmt.Fprintf(out, "%-10s %-12s %-10s %-12s %s\n", "Store", "Name", "API", "Configured", "Location")
	fmt.Fprintf(out, "%-10s %-12s %-10s %-12s %s\n", "----------", "------------", "----------", "------------", "--------")
	for _, id := range c.runtime.Registry.IDs() {
		def := c.runtime.Registry[id]
		configured := "no"
		if _, ok := available[id]; ok {
			configured = "yes"
		}
		name := def.DisplayName
		if id == config.DefaultStore {
			name += " *"
		}
		fmt.Fprintf(out, "%-10s %-12s %-10s %-12s %s\n", id, name, def.APIVersion, configured, def.LocationName)
	}
	return nil
}
