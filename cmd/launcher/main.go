package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	appName    = "launcher"
	appVersion = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Desktop launcher with browser tab switching",
	Long: `Launcher coordinates browser-tab state across processes:
  - Pipe (IPC) server for the native-messaging bridge
  - WebSocket server for the browser extension
  - Shared tab snapshot and tab-switch command queue`,
	Version: appVersion,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file")

	rootCmd.AddCommand(serveCmd)

	rootCmd.SetVersionTemplate(fmt.Sprintf("%s v%s\n", appName, appVersion))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
