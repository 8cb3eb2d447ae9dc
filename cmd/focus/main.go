package main

import (
	"fmt"
	"os"

	"github.com/fentz26/focus/internal/api"
	"github.com/fentz26/focus/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "focus",
	Short: "focus - perspective-driven task manager",
	Long:  `focus keeps your tasks in a local daemon and shows them through saved perspectives: filters, sort orders and groupings over the same task list.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadFromHome()
		if err != nil {
			return err
		}
		cfg = loaded
		if !cmd.Flags().Changed("api") {
			apiAddr = cfg.APIAddr()
		}
		return nil
	},
	SilenceUsage: true,
	// No RunE - defaults to showing help when no subcommand is provided
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of focus",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("focus %s\n", api.Version)
	},
}

var (
	apiAddr string
	cfg     = config.Default()
)

func init() {
	rootCmd.PersistentFlags().StringVar(&apiAddr, "api", "http://"+config.DefaultListen, "API server address")

	// Add subcommands
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(perspectiveCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(badgesCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
