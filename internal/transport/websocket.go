// SPDX-License-Identifier: MIT
package transport

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	applog "binaural/internal/log"

	"github.com/gorilla/websocket"
)

// MaxRequestBytes bounds a single request message (about a minute of 48 kHz
// mono encoded as JSON).
const MaxRequestBytes = 32 << 20

// Server renders audio for WebSocket clients. Each text message carries a
// RenderRequest; the reply is a binary message of little-endian int16
// interleaved stereo, or an ErrorReply text message on failure.
type Server struct {
	addr      string
	upgrader  websocket.Upgrader
	renderer  Renderer
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex // Guards clients, server and closed
	server    *http.Server
	closed    bool
	wg        sync.WaitGroup
}

// ErrServerClosed is returned by ListenAndServe after Close.
var ErrServerClosed = errors.New("transport: server closed")

// NewServer creates a render server listening on addr once started.
func NewServer(addr string, r Renderer) *Server {
	return &Server{
		addr:     addr,
		renderer: r,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Local tool, any origin may connect
			},
		},
		clients: make(map[*websocket.Conn]bool),
	}
}

// Handler returns the HTTP handler serving the /ws endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// ListenAndServe serves until ctx is done, then closes every client.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.clientsMu.Lock()
	if s.closed {
		s.clientsMu.Unlock()
		ln.Close()
		return ErrServerClosed
	}
	s.server = &http.Server{Handler: s.Handler()}
	srv := s.server
	s.clientsMu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		applog.Infof("Server: Listening for render requests on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		return s.Close()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}

// handleWebSocket upgrades HTTP connections to WebSocket
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Warnf("Server: Upgrade error: %v", err)
		return
	}
	conn.SetReadLimit(MaxRequestBytes)

	s.clientsMu.Lock()
	if s.closed {
		s.clientsMu.Unlock()
		conn.Close()
		applog.Debugf("Server: Rejected client after close")
		return
	}
	s.clients[conn] = true
	total := len(s.clients)
	s.wg.Add(1)
	s.clientsMu.Unlock()
	applog.Infof("Server: Client connected (Total: %d)", total)

	go s.serveClient(conn)
}

// serveClient answers requests in order until the client goes away.
func (s *Server) serveClient(conn *websocket.Conn) {
	defer s.wg.Done()
	defer s.drop(conn)

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				applog.Debugf("Server: Read error: %v", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			if err := conn.WriteJSON(ErrorReply{Error: "expected a JSON text message"}); err != nil {
				return
			}
			continue
		}

		pcm, err := s.render(data)
		if err != nil {
			applog.Warnf("Server: Render failed: %v", err)
			if err := conn.WriteJSON(ErrorReply{Error: err.Error()}); err != nil {
				return
			}
			continue
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, encodePCM(pcm)); err != nil {
			applog.Warnf("Server: Error sending to client: %v", err)
			return
		}
	}
}

func (s *Server) render(data []byte) ([]int16, error) {
	var req RenderRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	if sc := req.Screen; sc != nil {
		return s.renderer.RenderAt(req.Samples, sc.CX, sc.CY, sc.Width, sc.Height)
	}
	return s.renderer.Render(req.Samples, req.X, req.Y)
}

func (s *Server) drop(conn *websocket.Conn) {
	s.clientsMu.Lock()
	delete(s.clients, conn)
	total := len(s.clients)
	s.clientsMu.Unlock()
	conn.Close()
	applog.Infof("Server: Client disconnected (Total: %d)", total)
}

// Close shuts down the server and all client connections. Clients whose
// upgrade completes afterwards are turned away.
func (s *Server) Close() error {
	applog.Infof("Server: Closing server")

	s.clientsMu.Lock()
	s.closed = true
	for client := range s.clients {
		client.Close()
	}
	srv := s.server
	s.server = nil
	s.clientsMu.Unlock()

	var err error
	if srv != nil {
		err = srv.Close()
	}
	s.wg.Wait()
	return err
}

// encodePCM serializes samples as little-endian int16.
func encodePCM(samples []int16) []byte {
	out := make([]byte, 2*len(samples))
	for i, v := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(v))
	}
	return out
}

// DecodePCM parses a binary reply into samples.
func DecodePCM(data []byte) ([]int16, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("odd PCM payload length %d", len(data))
	}
	out := make([]int16, len(data)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(data[2*i:]))
	}
	return out, nil
}
