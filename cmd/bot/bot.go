package bot

import "github.com/spf13/cobra"

func NewBotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Discord bot commands",
	}

	cmd.AddCommand(NewStartCommand())

	return cmd
}
