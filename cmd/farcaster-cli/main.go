// Command farcaster-cli is the operator-facing client for farcasterd: each
// subcommand except progress sends one request over the daemon's Rpc lane
// and prints its reply; progress reads the REST gateway's websocket
// instead. The root command is built in main with subcommand groups as
// functions returning *cobra.Command.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"farcasterd/internal/config"
)

var rpcSocket string

func main() {
	rootCmd := &cobra.Command{Use: "farcaster-cli", SilenceUsage: true, SilenceErrors: true}
	rootCmd.PersistentFlags().StringVar(&rpcSocket, "rpc-socket", "", "path to farcasterd's Rpc lane socket (default: resolved from --data-dir)")
	rootCmd.PersistentFlags().String("data-dir", "", "farcasterd data directory")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if rpcSocket != "" {
			return nil
		}
		dataDir, _ := cmd.Flags().GetString("data-dir")
		if dataDir == "" {
			dataDir = os.Getenv("DATA_DIR")
		}
		cfg, err := config.Load(dataDir)
		if err != nil {
			return fatalf("load config: %v", err)
		}
		rpcSocket = filepath.Join(cfg.Network.DataDir, cfg.Network.RpcSocket)
		return nil
	}

	rootCmd.AddCommand(infoCmd())
	rootCmd.AddCommand(peersCmd())
	rootCmd.AddCommand(offersCmd())
	rootCmd.AddCommand(listensCmd())
	rootCmd.AddCommand(checkpointsCmd())
	rootCmd.AddCommand(restoreCmd())
	rootCmd.AddCommand(makeCmd())
	rootCmd.AddCommand(takeCmd())
	rootCmd.AddCommand(revokeCmd())
	rootCmd.AddCommand(abortCmd())
	rootCmd.AddCommand(progressCmd())
	rootCmd.AddCommand(needsFundingCmd())
	rootCmd.AddCommand(sweepCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}
