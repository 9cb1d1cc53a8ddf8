//go:build !windows

package ipc

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
)

// DefaultEndpoint is the Unix domain socket path standing in for the
// Windows named pipe on other platforms.
var DefaultEndpoint = filepath.Join(os.TempDir(), "my_launcher_ipc.sock")

// listen binds the server side of the socket endpoint. A stale socket
// file from a previous run is removed first when nothing is listening
// on it.
func listen(endpoint string) (net.Listener, error) {
	ln, err := net.Listen("unix", endpoint)
	if err == nil {
		return ln, nil
	}

	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return nil, err
	}

	// Address in use: probe for a live listener before reclaiming.
	probe, probeErr := net.Dial("unix", endpoint)
	if probeErr == nil {
		probe.Close()
		return nil, err
	}
	if removeErr := os.Remove(endpoint); removeErr != nil {
		return nil, err
	}
	return net.Listen("unix", endpoint)
}

// dial opens one client connection to the socket endpoint.
func dial(ctx context.Context, endpoint string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "unix", endpoint)
}
