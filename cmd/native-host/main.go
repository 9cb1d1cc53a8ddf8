// The native-host binary is launched by the browser for native
// messaging. It bridges the browser's stdio protocol to the launcher's
// pipe protocol and exits when the browser closes the channel.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/takeru911/my-launcher/internal/config"
	"github.com/takeru911/my-launcher/internal/ipc"
	"github.com/takeru911/my-launcher/internal/nativemsg"
)

var rootCmd = &cobra.Command{
	Use:   "native-host",
	Short: "Native-messaging bridge between the browser and the launcher",
	// The browser invokes the binary with no subcommand, so the bridge
	// loop is the root command.
	RunE: runHost,

	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().String("pipe", "", "Pipe endpoint override")
}

func runHost(cmd *cobra.Command, args []string) error {
	// stdout belongs to the framing protocol; logs go to stderr only.
	log.SetOutput(os.Stderr)

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("pipe"); v != "" {
		cfg.Pipe.Endpoint = v
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := ipc.NewClient(cfg.ClientConfig())
	host := nativemsg.NewHost(os.Stdin, os.Stdout, client)

	log.Printf("[NativeHost] started (pipe %s)", cfg.Pipe.Endpoint)
	if err := host.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("[NativeHost] fatal: %v", err)
		os.Exit(1)
	}
}
