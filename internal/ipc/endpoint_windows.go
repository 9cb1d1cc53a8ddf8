//go:build windows

package ipc

import (
	"context"
	"net"
	"time"

	"github.com/Microsoft/go-winio"
)

// DefaultEndpoint is the named pipe the launcher listens on. The bridge
// process connects to the same name.
const DefaultEndpoint = `\\.\pipe\my_launcher_ipc`

// listen binds the server side of the pipe endpoint.
func listen(endpoint string) (net.Listener, error) {
	return winio.ListenPipe(endpoint, nil)
}

// dial opens one client connection to the pipe endpoint.
func dial(ctx context.Context, endpoint string) (net.Conn, error) {
	timeout := 2 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	return winio.DialPipe(endpoint, &timeout)
}
