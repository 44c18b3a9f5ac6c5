// Package wsrelay is a minimal demonstration transport: it frames encoded
// header blocks, one per websocket message, between a client and a server
// goroutine. It exists to prove pkg/hdraft's []byte in/out contract
// composes with a real transport; it does not interpret the blocks it
// carries, and none of the excluded concerns (HTTP semantics, stream
// multiplexing, flow control, TLS) live here.
//
// Grounded on shockwave/benchmarks/competitors/websocket_test.go's
// upgrader/dialer usage of gorilla/websocket.
package wsrelay

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// BlockHandler processes one decoded-or-to-be-decoded header block and
// returns the block to send back, or nil to send nothing.
type BlockHandler func(block []byte) []byte

// Server starts an httptest server that upgrades every connection to a
// websocket and, for each binary message received, passes the payload to
// handle and writes back whatever it returns.
type Server struct {
	httpServer *httptest.Server
}

// NewServer starts listening immediately, mirroring httptest.NewServer's
// start-on-construction convention used throughout the websocket benchmark.
func NewServer(handle BlockHandler) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/blocks", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			messageType, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if messageType != websocket.BinaryMessage {
				continue
			}
			reply := handle(payload)
			if reply == nil {
				continue
			}
			if err := conn.WriteMessage(websocket.BinaryMessage, reply); err != nil {
				return
			}
		}
	})
	return &Server{httpServer: httptest.NewServer(mux)}
}

// URL returns the server's ws:// endpoint for the block relay.
func (s *Server) URL() string {
	return "ws" + s.httpServer.URL[len("http"):] + "/blocks"
}

// Close shuts down the underlying HTTP server.
func (s *Server) Close() { s.httpServer.Close() }

// Client dials a Server and exchanges header blocks as binary websocket
// messages.
type Client struct {
	conn *websocket.Conn
}

// Dial connects to a relay Server's URL.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("wsrelay: dial: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Send writes one opaque header block.
func (c *Client) Send(block []byte) error {
	if err := c.conn.WriteMessage(websocket.BinaryMessage, block); err != nil {
		return fmt.Errorf("wsrelay: send: %w", err)
	}
	return nil
}

// Recv reads the next opaque header block sent by the server.
func (c *Client) Recv() ([]byte, error) {
	messageType, payload, err := c.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("wsrelay: recv: %w", err)
	}
	if messageType != websocket.BinaryMessage {
		return nil, fmt.Errorf("wsrelay: recv: unexpected message type %d", messageType)
	}
	return payload, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }
