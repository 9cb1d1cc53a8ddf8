package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/takeru911/my-launcher/internal/config"
	"github.com/takeru911/my-launcher/internal/ipc"
	"github.com/takeru911/my-launcher/internal/tabs"
	"github.com/takeru911/my-launcher/internal/wsserver"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the launcher's transport servers",
	Long: `Run the pipe server and the WebSocket server over one shared
tab store and command queue. A switch command queued on either
transport is delivered to whichever consumer polls it first.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("pipe", "", "Pipe endpoint override")
	serveCmd.Flags().String("ws-addr", "", "WebSocket listen address override")
	serveCmd.Flags().Int("queue-max", 0, "Max pending switch commands (0 = unbounded)")
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if v, _ := cmd.Flags().GetString("pipe"); v != "" {
		cfg.Pipe.Endpoint = v
	}
	if v, _ := cmd.Flags().GetString("ws-addr"); v != "" {
		cfg.WebSocket.Addr = v
	}
	if v, _ := cmd.Flags().GetInt("queue-max"); v > 0 {
		cfg.Queue.MaxPending = v
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// One store and one queue, shared by every transport. There is no
	// persistence: a restarted launcher has cold state until the
	// extension's next push.
	store := tabs.NewStore()
	queue := tabs.NewCommandQueue(cfg.Queue.MaxPending)

	wsServer := wsserver.New(cfg.WebSocketServerConfig(), store, queue)
	if err := wsServer.Start(ctx); err != nil {
		return fmt.Errorf("start websocket server: %w", err)
	}

	pipeServer := ipc.NewServer(cfg.ServerConfig(), store, queue)
	pipeErr := make(chan error, 1)
	go func() {
		pipeErr <- pipeServer.Run(ctx)
	}()

	log.Printf("[Launcher] running (pipe %s, ws %s)", cfg.Pipe.Endpoint, wsServer.Addr())

	select {
	case <-ctx.Done():
	case err := <-pipeErr:
		if err != nil && ctx.Err() == nil {
			log.Printf("[Launcher] pipe server exited: %v", err)
		}
	}

	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Launcher] websocket shutdown: %v", err)
	}

	log.Printf("[Launcher] stopped")
	return nil
}
