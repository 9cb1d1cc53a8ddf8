// Package config loads launcher configuration: transport endpoints,
// retry cadences, and the optional command-queue capacity. Values come
// from built-in defaults, optionally overridden by a YAML file.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/takeru911/my-launcher/internal/ipc"
	"github.com/takeru911/my-launcher/internal/wsserver"
)

// Config is the full process configuration.
type Config struct {
	Pipe      PipeConfig      `mapstructure:"pipe"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Queue     QueueConfig     `mapstructure:"queue"`
}

// PipeConfig configures the pipe transport on both sides.
type PipeConfig struct {
	// Endpoint is the named-pipe name on Windows, a socket path
	// elsewhere. Empty selects the platform default.
	Endpoint string `mapstructure:"endpoint"`

	// CreateRetryInterval is the launcher's wait between endpoint
	// creation attempts.
	CreateRetryInterval time.Duration `mapstructure:"create_retry_interval"`

	// DialAttempts and DialRetryInterval bound the bridge's connect
	// retries.
	DialAttempts      int           `mapstructure:"dial_attempts"`
	DialRetryInterval time.Duration `mapstructure:"dial_retry_interval"`
}

// WebSocketConfig configures the extension-facing server.
type WebSocketConfig struct {
	Addr         string        `mapstructure:"addr"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// QueueConfig configures the shared command queue.
type QueueConfig struct {
	// MaxPending caps pending commands; oldest are dropped beyond it.
	// Zero keeps the queue unbounded, the behavior the browser
	// counterpart was built against.
	MaxPending int `mapstructure:"max_pending"`
}

// Default returns the configuration the binaries ship with. The retry
// constants match the values the extension and bridge expect.
func Default() Config {
	return Config{
		Pipe: PipeConfig{
			Endpoint:            ipc.DefaultEndpoint,
			CreateRetryInterval: 5 * time.Second,
			DialAttempts:        10,
			DialRetryInterval:   100 * time.Millisecond,
		},
		WebSocket: WebSocketConfig{
			Addr:         "127.0.0.1:8765",
			PollInterval: 50 * time.Millisecond,
		},
		Queue: QueueConfig{MaxPending: 0},
	}
}

// Load reads configuration from path. An empty path yields Default
// unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("pipe.endpoint", cfg.Pipe.Endpoint)
	v.SetDefault("pipe.create_retry_interval", cfg.Pipe.CreateRetryInterval)
	v.SetDefault("pipe.dial_attempts", cfg.Pipe.DialAttempts)
	v.SetDefault("pipe.dial_retry_interval", cfg.Pipe.DialRetryInterval)
	v.SetDefault("websocket.addr", cfg.WebSocket.Addr)
	v.SetDefault("websocket.poll_interval", cfg.WebSocket.PollInterval)
	v.SetDefault("queue.max_pending", cfg.Queue.MaxPending)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.Pipe.DialAttempts <= 0 {
		return Config{}, fmt.Errorf("pipe.dial_attempts must be positive")
	}
	if cfg.WebSocket.PollInterval <= 0 {
		return Config{}, fmt.Errorf("websocket.poll_interval must be positive")
	}
	return cfg, nil
}

// ServerConfig builds the pipe server configuration.
func (c Config) ServerConfig() ipc.ServerConfig {
	return ipc.ServerConfig{
		Endpoint:            c.Pipe.Endpoint,
		CreateRetryInterval: c.Pipe.CreateRetryInterval,
	}
}

// ClientConfig builds the pipe client configuration.
func (c Config) ClientConfig() ipc.ClientConfig {
	return ipc.ClientConfig{
		Endpoint:          c.Pipe.Endpoint,
		DialAttempts:      c.Pipe.DialAttempts,
		DialRetryInterval: c.Pipe.DialRetryInterval,
	}
}

// WebSocketServerConfig builds the WebSocket server configuration.
func (c Config) WebSocketServerConfig() wsserver.Config {
	return wsserver.Config{
		Addr:         c.WebSocket.Addr,
		PollInterval: c.WebSocket.PollInterval,
	}
}
