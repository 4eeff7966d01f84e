package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	contractx "github.com/jewelryops/agent/agent/contract"
	orchestratorx "github.com/jewelryops/agent/agent/orchestrator"
)

// Config holds the HTTP listener settings. CORSOrigin restricts which
// browser origins may open the chat socket; "*" allows any.
type Config struct {
	Host            string        `default:"0.0.0.0"`
	Port            int           `default:"8000"`
	CORSOrigin      string        `split_words:"true" default:"*"`
	ShutdownTimeout time.Duration `split_words:"true" default:"10s"`
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// TurnRunner is the agent surface the server needs: one user turn in,
// streamed text fragments out.
type TurnRunner interface {
	Run(ctx context.Context, sessionID, userMessage string, emit func(string) error) (orchestratorx.Result, error)
}

// Server bridges WebSocket chat connections to the agent. Each connection
// carries exactly one request and is closed once the done or error frame
// has been written.
type Server struct {
	cfg      Config
	runner   TurnRunner
	upgrader websocket.Upgrader
}

func New(cfg Config, runner TurnRunner) (*Server, error) {
	if runner == nil {
		return nil, errors.New("turn runner is required")
	}
	return &Server{
		cfg:    cfg,
		runner: runner,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if cfg.CORSOrigin == "" || cfg.CORSOrigin == "*" {
					return true
				}
				return r.Header.Get("Origin") == cfg.CORSOrigin
			},
		},
	}, nil
}

// Handler returns the route table. Exposed separately from Run so tests
// can mount it on httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws/chat", s.handleChat)
	return mux
}

// Run serves until ctx is canceled, then drains with the configured
// shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Addr(),
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	_, raw, err := conn.ReadMessage()
	if err != nil {
		log.Debug().Err(err).Msg("connection closed before request")
		return
	}

	req, err := parseRequest(raw)
	if err != nil {
		// Invalid requests never touch session state.
		_ = conn.WriteJSON(contractx.ErrorFrame(err.Error()))
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The client sends nothing after the request; the next read returning
	// is the connection going away, which aborts the in-flight turn.
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	log.Info().Str("session_id", req.SessionID).Msg("chat request accepted")

	result, err := s.runner.Run(ctx, req.SessionID, req.Message, func(token string) error {
		return conn.WriteJSON(contractx.TokenFrame(token))
	})
	if err != nil {
		log.Error().Err(err).Str("session_id", req.SessionID).Msg("agent turn failed")
		_ = conn.WriteJSON(contractx.ErrorFrame(err.Error()))
		return
	}

	_ = conn.WriteJSON(contractx.DoneFrame(req.SessionID, result.ToolCallsCount))
}

func parseRequest(raw []byte) (contractx.ChatRequest, error) {
	var req contractx.ChatRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, fmt.Errorf("%w: %v", contractx.ErrInvalidPayload, err)
	}
	if req.SessionID == "" {
		// Clients that omit the session id share one anonymous session.
		req.SessionID = "default"
	}
	if strings.TrimSpace(req.Message) == "" {
		return req, contractx.ErrEmptyMessage
	}
	return req, nil
}
