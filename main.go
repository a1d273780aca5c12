package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "0.3.1"

func main() {

	rootCmd := &cobra.Command{
		Use:   "missioncontrol",
		Short: "Launch reconciliation and notification engine",
		Long: "Mission Control polls the content store and the external launch API, reconciles " +
			"divergences between the two, and emits deduplicated operator alerts and push notifications " +
			"as launches approach or change.",
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the engine: scheduler plus admin server",
		Run: func(cmd *cobra.Command, args []string) {
			configPath, _ := cmd.Flags().GetString("config")
			app := NewApp(configPath)

			ctx, cancel := context.WithCancel(context.Background())
			go func() {
				sig := make(chan os.Signal, 1)
				signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
				<-sig
				fmt.Println("shutting down")
				cancel()
			}()

			if err := app.Run(ctx); err != nil {
				log.Fatal(err)
			}
		},
	}
	serveCmd.Flags().StringP("config", "c", "", "path to a yaml config file; environment variables are used if not provided")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Run one reconciliation and archival pass, then exit",
		Run: func(cmd *cobra.Command, args []string) {
			configPath, _ := cmd.Flags().GetString("config")
			app := NewApp(configPath)

			ctx := context.Background()
			if err := app.engine.ReconcileAll(ctx); err != nil {
				log.Fatal(err)
			}
			if err := app.engine.ArchiveStale(ctx); err != nil {
				log.Fatal(err)
			}
			fmt.Println("reconciliation and archival pass complete")
		},
	}
	checkCmd.Flags().StringP("config", "c", "", "path to a yaml config file; environment variables are used if not provided")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("missioncontrol " + version)
		},
	}

	rootCmd.AddCommand(serveCmd, checkCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
