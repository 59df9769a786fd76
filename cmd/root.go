// Package cmd implements the command-line interface for kinocast.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/kinocast-cli/kinocast/color"
	"github.com/kinocast-cli/kinocast/constant"
	"github.com/kinocast-cli/kinocast/filesystem"
	"github.com/kinocast-cli/kinocast/icon"
	"github.com/kinocast-cli/kinocast/key"
	"github.com/kinocast-cli/kinocast/log"
	"github.com/kinocast-cli/kinocast/streaming/builtin"
	"github.com/kinocast-cli/kinocast/style"
	"github.com/kinocast-cli/kinocast/version"
	"github.com/kinocast-cli/kinocast/where"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, plain)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().StringSliceP("provider", "S", []string{}, "Specify the catalog providers to prioritize")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("provider", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return builtin.ProviderNames(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.ProvidersDefault, rootCmd.PersistentFlags().Lookup("provider")))

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})

	// Initialize cleanup of localized temporary files on application startup.
	go func() {
		_ = filesystem.API().RemoveAll(where.Temp())
	}()
}

// rootCmd defines the entry point for the kinocast application.
var rootCmd = &cobra.Command{
	Use:   constant.Kinocast,
	Short: "A command-line resolver turning movie titles into playable stream URLs",
	Long: constant.Kinocast + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - A command-line resolver turning movie titles into playable stream URLs"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		handleErr(cmd.Help())
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
