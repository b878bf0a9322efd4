package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/JordanK1ng/TelescopeVisualization/internal/logging"
	"github.com/JordanK1ng/TelescopeVisualization/model"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// StatusSource yields the latest telescope snapshot for request handlers.
type StatusSource interface {
	Snapshot() model.TelescopeStatus
}

// Server serves the simulator's HTTP surface.
type Server struct {
	addr        string
	source      StatusSource
	broadcaster *Broadcaster
	metrics     http.Handler
	log         logging.Logger

	upgrader websocket.Upgrader
	srv      *http.Server
}

// NewServer wires the telemetry endpoints. metrics may be nil, in which case
// /metrics is not served.
func NewServer(addr string, source StatusSource, b *Broadcaster, metrics http.Handler, log logging.Logger) *Server {
	if log == nil {
		log = logging.Noop()
	}
	return &Server{
		addr:        addr,
		source:      source,
		broadcaster: b,
		metrics:     metrics,
		log:         log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The visualization frontend is served from anywhere during
			// development; the stream carries no privileged data.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Mux returns the route table.
func (s *Server) Mux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	return mux
}

// Start begins serving in a background goroutine and returns immediately.
// Serve errors other than graceful shutdown are reported on the returned
// channel.
func (s *Server) Start() <-chan error {
	s.srv = &http.Server{Addr: s.addr, Handler: s.Mux()}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info(context.Background(), "telemetry server listening", logging.String("addr", s.addr))
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

// Shutdown stops the server, waiting up to the context deadline for in-flight
// requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.source.Snapshot()); err != nil {
		s.log.Warn(r.Context(), "encode status failed", logging.String("error", err.Error()))
	}
}

// handleWebSocket upgrades the connection and streams one JSON frame per
// simulation tick until the client goes away.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn(r.Context(), "websocket upgrade failed", logging.String("error", err.Error()))
		return
	}

	frames, unsub := s.broadcaster.Subscribe()
	s.log.Debug(r.Context(), "websocket client connected",
		logging.String("remote", conn.RemoteAddr().String()),
		logging.Int("subscribers", s.broadcaster.Subscribers()),
	)

	// Reader goroutine: the stream is one-way, but reads must be drained to
	// notice the client closing.
	go func() {
		defer unsub()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	defer conn.Close()

	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
