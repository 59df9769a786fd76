// Package cmd implements the command-line interface for kinocast.
package cmd

import (
	"context"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/kinocast-cli/kinocast/color"
	"github.com/kinocast-cli/kinocast/icon"
	"github.com/kinocast-cli/kinocast/key"
	"github.com/kinocast-cli/kinocast/query"
	"github.com/kinocast-cli/kinocast/streaming"
	"github.com/kinocast-cli/kinocast/streaming/builtin"
	"github.com/kinocast-cli/kinocast/style"
	"github.com/kinocast-cli/kinocast/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().IntP("year", "y", 0, "Release year used to disambiguate same-titled movies")
	resolveCmd.Flags().StringP("url", "u", "", "Resolve a hoster stream page URL directly, skipping the catalog search")
	resolveCmd.Flags().BoolP("choose", "c", false, "Interactively choose the catalog provider before resolving")
}

// resolveCmd turns a movie title (or a hoster page URL) into a playable stream URL.
var resolveCmd = &cobra.Command{
	Use:   "resolve [title]",
	Short: "Resolve a movie title into a playable stream URL",
	Long: `Search the configured catalog providers for a title, extract the hoster
stream page and run the deobfuscation pipeline to obtain a playable URL.`,
	Args:    cobra.MaximumNArgs(1),
	Example: "  kinocast resolve \"Dune\" --year 2021\n  kinocast resolve --url https://voe.sx/e/abc123",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			year    = lo.Must(cmd.Flags().GetInt("year"))
			pageURL = lo.Must(cmd.Flags().GetString("url"))
			choose  = lo.Must(cmd.Flags().GetBool("choose"))
		)

		if choose {
			var picked string
			handleErr(survey.AskOne(&survey.Select{
				Message: "Provider:",
				Options: builtin.ProviderNames(),
			}, &picked))
			viper.Set(key.ProvidersDefault, []string{picked})
		}

		service := builtin.Service()
		ctx := context.Background()

		if pageURL != "" {
			streamURL, err := service.ResolveURL(ctx, pageURL)
			handleErr(err)
			printStreamURL(streamURL)
			return
		}

		var title string
		if len(args) > 0 {
			title = args[0]
		} else {
			handleErr(survey.AskOne(&survey.Input{
				Message: "Title:",
				Suggest: query.SuggestMany,
			}, &title, survey.WithValidator(survey.Required)))
		}

		erase := util.PrintErasable(fmt.Sprintf("%s Resolving %s...", icon.Get(icon.Progress), title))
		streamURL, err := service.Resolve(ctx, streaming.TitleQuery{Title: title, Year: year})
		erase()
		handleErr(err)
		printStreamURL(streamURL)
	},
}

func printStreamURL(streamURL string) {
	fmt.Printf("%s %s\n", icon.Get(icon.Link), style.Fg(color.Green)(streamURL))
}
