// Package cmd implements the CLI application to run the rebalance engine.
package cmd

import (
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&ingestCmd{}, "data")
	c.Register(&rebalanceCmd{}, "data")
	c.Register(&scheduleCmd{}, "data")

	c.Register(&AssistCmd{}, "assist")
	c.Register(&narrateCmd{}, "assist")
}
