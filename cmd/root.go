package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	botcmd "github.com/Alijeyrad/formsbot/cmd/bot"
	systemcmd "github.com/Alijeyrad/formsbot/cmd/system"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "formsbot",
	Short: "Discord bot for multi-page application forms.",
	Long: `formsbot lets server administrators build forms out of Discord modals,
publish buttons that open them, and collects the submitted responses in a
channel of their choice.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(botcmd.NewBotCommand())
}
