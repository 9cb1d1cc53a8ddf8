package ipc

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/takeru911/my-launcher/internal/framing"
)

// ErrConnectionRefused is returned when every dial attempt to the
// launcher endpoint fails. The caller decides whether to retry at a
// higher level.
var ErrConnectionRefused = errors.New("ipc: failed to connect to launcher after retries")

// ClientConfig holds configuration for the pipe client.
type ClientConfig struct {
	// Endpoint is the pipe name (Windows) or socket path (elsewhere).
	Endpoint string

	// DialAttempts is how many times to try connecting before giving
	// up with ErrConnectionRefused.
	DialAttempts int

	// DialRetryInterval is the wait between dial attempts.
	DialRetryInterval time.Duration
}

// DefaultClientConfig returns the retry schedule the bridge ships
// with: ten attempts, 100 ms apart.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Endpoint:          DefaultEndpoint,
		DialAttempts:      10,
		DialRetryInterval: 100 * time.Millisecond,
	}
}

// Client is the bridge side of the pipe transport. Each Call opens a
// fresh connection, performs one request/response round trip, and
// closes it; the launcher serves one exchange at a time.
type Client struct {
	config ClientConfig
}

// NewClient creates a pipe client.
func NewClient(config ClientConfig) *Client {
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}
	if config.DialAttempts <= 0 {
		config.DialAttempts = 10
	}
	if config.DialRetryInterval <= 0 {
		config.DialRetryInterval = 100 * time.Millisecond
	}
	return &Client{config: config}
}

// Call sends one request to the launcher and returns its response.
func (c *Client) Call(ctx context.Context, req Message) (Message, error) {
	conn, err := c.connect(ctx)
	if err != nil {
		return Message{}, err
	}
	defer conn.Close()

	if err := framing.WriteJSON(conn, req); err != nil {
		return Message{}, fmt.Errorf("send request: %w", err)
	}

	var resp Message
	if err := framing.ReadJSON(conn, &resp); err != nil {
		return Message{}, fmt.Errorf("read response: %w", err)
	}
	return resp, nil
}

// connect dials the endpoint with the configured retry schedule.
func (c *Client) connect(ctx context.Context) (net.Conn, error) {
	var err error
	for attempt := 0; attempt < c.config.DialAttempts; attempt++ {
		nc, dialErr := dial(ctx, c.config.Endpoint)
		if dialErr == nil {
			return nc, nil
		}
		err = dialErr

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.config.DialRetryInterval):
		}
	}

	log.Printf("[PipeClient] giving up on %s after %d attempts: %v",
		c.config.Endpoint, c.config.DialAttempts, err)
	return nil, fmt.Errorf("%w: %v", ErrConnectionRefused, err)
}
