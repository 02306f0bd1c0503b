// Package diag serves a small HTTP+WebSocket dashboard over a running
// legitfs mount: liveness, a rendered help page, and a live feed of
// repository-discovery and resource-usage events. It is purely
// observational — nothing here is consulted by the FUSE dispatch path.
package diag

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yuin/goldmark"

	"github.com/rybkr/legitfs/internal/discovery"
	"github.com/rybkr/legitfs/internal/vfs"
)

//go:embed help.md
var helpMarkdown []byte

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 512
	usageInterval  = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(_ *http.Request) bool { return true },
	EnableCompression: true,
}

// Event is one message pushed to a connected WebSocket client.
type Event struct {
	Type  string          `json:"type"`
	Repos []discovery.Repo `json:"repos,omitempty"`
	Usage *Usage          `json:"usage,omitempty"`
}

// Usage is a point-in-time snapshot of core resource counters.
type Usage struct {
	BlobDescriptors        int `json:"blob_descriptors"`
	PassthroughDescriptors int `json:"passthrough_descriptors"`
	CachedBlobs            int `json:"cached_blobs"`
}

// Server is the diagnostics HTTP+WS endpoint.
type Server struct {
	addr     string
	logger   *slog.Logger
	registry *discovery.Registry
	vctx     *vfs.Context

	httpServer *http.Server

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]*sync.Mutex

	stop chan struct{}
	wg   sync.WaitGroup
}

// New constructs a diagnostics server that will listen on addr. registry
// may be nil (no repository discovery feed); vctx may be nil (no usage
// feed).
func New(addr string, registry *discovery.Registry, vctx *vfs.Context, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:     addr,
		logger:   logger.With("component", "diag"),
		registry: registry,
		vctx:     vctx,
		clients:  make(map[*websocket.Conn]*sync.Mutex),
		stop:     make(chan struct{}),
	}
}

// Start launches the HTTP server in the background and returns once it is
// listening, or immediately with an error if the listen fails.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/help", s.handleHelp)
	mux.HandleFunc("/ws", s.handleWebSocket)

	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("diagnostics server: %w", err)
	case <-time.After(50 * time.Millisecond):
	}

	if s.registry != nil {
		s.wg.Add(1)
		go s.forwardDiscoveryEvents()
	}

	s.wg.Add(1)
	go s.usageLoop()

	s.logger.Info("diagnostics server listening", "addr", s.addr)
	return nil
}

// Shutdown stops accepting connections and waits for background loops to
// exit.
func (s *Server) Shutdown() {
	close(s.stop)
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}

	s.clientsMu.Lock()
	for conn := range s.clients {
		_ = conn.Close()
	}
	s.clients = make(map[*websocket.Conn]*sync.Mutex)
	s.clientsMu.Unlock()

	s.wg.Wait()
}

type healthResponse struct {
	Status string `json:"status"`
	Repos  int    `json:"repos"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok"}
	if s.registry != nil {
		resp.Repos = len(s.registry.List())
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleHelp(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := goldmark.Convert(helpMarkdown, &buf); err != nil {
		http.Error(w, "failed to render help", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "err", err)
		return
	}
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	writeMu := s.registerClient(conn)
	s.sendInitialState(conn, writeMu)

	done := make(chan struct{})
	go s.clientReadPump(conn, done)
	go s.clientWritePump(conn, done, writeMu)
}

func (s *Server) registerClient(conn *websocket.Conn) *sync.Mutex {
	writeMu := &sync.Mutex{}
	s.clientsMu.Lock()
	s.clients[conn] = writeMu
	s.clientsMu.Unlock()
	return writeMu
}

func (s *Server) removeClient(conn *websocket.Conn) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if _, ok := s.clients[conn]; ok {
		delete(s.clients, conn)
		_ = conn.Close()
	}
}

func (s *Server) sendInitialState(conn *websocket.Conn, writeMu *sync.Mutex) {
	if s.registry != nil {
		s.writeEvent(conn, writeMu, Event{Type: "repos", Repos: s.registry.List()})
	}
	s.writeEvent(conn, writeMu, Event{Type: "usage", Usage: s.snapshotUsage()})
}

func (s *Server) writeEvent(conn *websocket.Conn, writeMu *sync.Mutex, ev Event) {
	writeMu.Lock()
	defer writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(ev); err != nil {
		s.logger.Debug("websocket write failed", "err", err)
	}
}

func (s *Server) broadcast(ev Event) {
	s.clientsMu.RLock()
	snapshot := make(map[*websocket.Conn]*sync.Mutex, len(s.clients))
	for conn, mu := range s.clients {
		snapshot[conn] = mu
	}
	s.clientsMu.RUnlock()

	for conn, mu := range snapshot {
		s.writeEvent(conn, mu, ev)
	}
}

func (s *Server) clientReadPump(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) clientWritePump(conn *websocket.Conn, done chan struct{}, writeMu *sync.Mutex) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer s.removeClient(conn)

	for {
		select {
		case <-done:
			return
		case <-s.stop:
			return
		case <-ticker.C:
			writeMu.Lock()
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (s *Server) forwardDiscoveryEvents() {
	defer s.wg.Done()
	ch, unsubscribe := s.registry.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-s.stop:
			return
		case repos := <-ch:
			s.broadcast(Event{Type: "repos", Repos: repos})
		}
	}
}

func (s *Server) usageLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(usageInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.broadcast(Event{Type: "usage", Usage: s.snapshotUsage()})
		}
	}
}

func (s *Server) snapshotUsage() *Usage {
	if s.vctx == nil {
		return nil
	}
	return &Usage{
		BlobDescriptors:        s.vctx.BlobDescriptors.Count(),
		PassthroughDescriptors: s.vctx.PassthroughDescriptors.Count(),
		CachedBlobs:            s.vctx.BlobCache.Len(),
	}
}
