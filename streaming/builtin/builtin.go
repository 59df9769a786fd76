// Package builtin wires the compiled-in providers and resolvers into a ready
// registry, honoring the configured provider priority.
package builtin

import (
	"sort"

	"github.com/kinocast-cli/kinocast/key"
	"github.com/kinocast-cli/kinocast/streaming"
	"github.com/kinocast-cli/kinocast/streaming/filmpalast"
	"github.com/kinocast-cli/kinocast/streaming/voe"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

var providerConstructors = map[string]func() streaming.Provider{
	"filmpalast": func() streaming.Provider { return filmpalast.New() },
}

// ProviderNames lists every compiled-in provider, sorted.
func ProviderNames() []string {
	names := lo.Keys(providerConstructors)
	sort.Strings(names)
	return names
}

// Registry builds a registry of the configured providers in priority order
// plus every compiled-in resolver. Unknown configured names are skipped so a
// stale config entry never breaks resolution.
func Registry() *streaming.Registry {
	registry := streaming.NewRegistry()

	names := viper.GetStringSlice(key.ProvidersDefault)
	if len(names) == 0 {
		names = ProviderNames()
	}

	for _, name := range names {
		if construct, ok := providerConstructors[name]; ok {
			registry.AddProvider(construct())
		}
	}

	registry.AddResolver(voe.New())

	return registry
}

// Service returns a resolution coordinator over the builtin registry.
func Service() *streaming.Service {
	return streaming.NewService(Registry())
}
