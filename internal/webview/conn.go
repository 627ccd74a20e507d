package webview

import (
	"fmt"
	"sync"

	"github.com/snauth/authbridge/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/net/websocket"
)

const outboundBuffer = 64

// hostConn adapts one WebSocket connection into a bridge.HostSurface. All
// writes funnel through a single writer goroutine, the connection's
// "main thread": callback invocations for one call reach the page in the
// order they were enqueued.
type hostConn struct {
	ws       *websocket.Conn
	outbound chan callbackFrame
	logger   *logging.SafeLogger

	closeOnce sync.Once
	closed    chan struct{}
}

func newHostConn(ws *websocket.Conn, logger *logging.SafeLogger) *hostConn {
	c := &hostConn{
		ws:       ws,
		outbound: make(chan callbackFrame, outboundBuffer),
		logger:   logger,
		closed:   make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

// InvokeCallback implements bridge.HostSurface. It never blocks: when the
// page cannot keep up and the outbound buffer fills, the frame is dropped
// and counted against the connection.
func (c *hostConn) InvokeCallback(name, payload string) error {
	select {
	case <-c.closed:
		return fmt.Errorf("hosting surface is gone")
	default:
	}

	select {
	case c.outbound <- callbackFrame{Callback: name, Payload: payload}:
		return nil
	default:
		c.logger.Warn("dropping callback frame: outbound buffer full",
			zap.String("callback", name))
		return fmt.Errorf("outbound buffer full")
	}
}

func (c *hostConn) writeLoop() {
	for {
		select {
		case frame := <-c.outbound:
			if err := websocket.JSON.Send(c.ws, frame); err != nil {
				c.logger.Debug("callback write failed, closing connection", zap.Error(err))
				c.shutdown()
				return
			}
		case <-c.closed:
			return
		}
	}
}

// shutdown stops the writer and marks the host as gone. Idempotent.
func (c *hostConn) shutdown() {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
}
