// Package main is the entry point for the kinocast application.
package main

import (
	"github.com/kinocast-cli/kinocast/cmd"
	"github.com/kinocast-cli/kinocast/config"
	"github.com/kinocast-cli/kinocast/internal/cache"
	"github.com/kinocast-cli/kinocast/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	// Prune expired search listings in the background.
	go cache.CollectGarbage()

	cmd.Execute()
}
