// Package cmd implements the command-line interface for kinocast.
package cmd

import (
	"os"

	"github.com/kinocast-cli/kinocast/color"
	"github.com/kinocast-cli/kinocast/streaming/builtin"
	"github.com/kinocast-cli/kinocast/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

// sourcesCmd provides a parent command for inspecting the compiled-in sources.
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Inspect the compiled-in catalog providers and hoster resolvers",
}

func init() {
	sourcesCmd.AddCommand(sourcesListCmd)

	sourcesListCmd.Flags().BoolP("raw", "r", false, "Suppress header and metadata descriptions in the output")
	sourcesListCmd.Flags().BoolP("providers", "p", false, "Display only catalog providers")
	sourcesListCmd.Flags().BoolP("resolvers", "R", false, "Display only hoster resolvers")

	sourcesListCmd.MarkFlagsMutuallyExclusive("providers", "resolvers")
	sourcesListCmd.SetOut(os.Stdout)
}

// sourcesListCmd displays the registered providers and resolvers in their priority order.
var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Display all registered providers and resolvers in priority order",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader := !lo.Must(cmd.Flags().GetBool("raw"))
		headerStyle := style.New().Foreground(color.HiBlue).Bold(true).Render
		h := func(s string) {
			if printHeader {
				cmd.Println(headerStyle(s))
			}
		}

		registry := builtin.Registry()

		printProviders := func() {
			h("Providers:")
			for _, name := range registry.ProviderNames() {
				cmd.Println(name)
			}
		}

		printResolvers := func() {
			h("Resolvers:")
			for _, name := range registry.ResolverNames() {
				cmd.Println(name)
			}
		}

		switch {
		case lo.Must(cmd.Flags().GetBool("providers")):
			printProviders()
		case lo.Must(cmd.Flags().GetBool("resolvers")):
			printResolvers()
		default:
			printProviders()
			if printHeader {
				cmd.Println()
			}
			printResolvers()
		}
	},
}
