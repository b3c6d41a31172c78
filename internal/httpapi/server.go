package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chronoplan/go-jetlag"
)

// Server exposes the calculation contract over plain HTTP and a
// websocket endpoint for long-lived frontend collaborators.
type Server struct {
	cfg      Config
	upgrader websocket.Upgrader
}

func NewServer(cfg Config) *Server {
	return &Server{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// Handler returns the route tree: POST /v1/timetable and GET /v1/ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/timetable", s.handleTimetable)
	mux.HandleFunc("GET /v1/ws", s.handleWebsocket)
	return mux
}

// ListenAndServe runs the server on the configured address.
func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:        s.cfg.Addr,
		Handler:     s.Handler(),
		ReadTimeout: time.Duration(s.cfg.ReadTimeoutSeconds) * time.Second,
	}
	slog.Info("listening", "addr", s.cfg.Addr)
	return srv.ListenAndServe()
}

func (s *Server) handleTimetable(w http.ResponseWriter, r *http.Request) {
	var req CalcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}

	resp, err := s.cfg.Compute(req)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
	slog.Info("timetable computed", "events", len(resp.Events), "remote", r.RemoteAddr)
}

// handleWebsocket serves one JSON request per message, one response per
// message, until the peer goes away.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}
	defer conn.Close()
	slog.Info("websocket client connected", "remote", r.RemoteAddr)

	for {
		var req CalcRequest
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("websocket read failed", "error", err, "remote", r.RemoteAddr)
			}
			return
		}

		var payload any
		if resp, err := s.cfg.Compute(req); err != nil {
			payload = s.errorPayload(err)
		} else {
			payload = resp
		}
		if err := conn.WriteJSON(payload); err != nil {
			slog.Warn("websocket write failed", "error", err, "remote", r.RemoteAddr)
			return
		}
	}
}

func (s *Server) errorPayload(err error) ErrorResponse {
	payload := ErrorResponse{Error: err.Error()}
	if s.cfg.DebugEnabled() {
		payload.Traceback = fmt.Sprintf("%+v", err)
	}
	return payload
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	slog.Warn("request failed", "error", err, "status", status)
	writeJSON(w, status, s.errorPayload(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, jetlag.ErrInvalidArgument), errors.Is(err, jetlag.ErrInvalidInterval):
		return http.StatusBadRequest
	case errors.Is(err, jetlag.ErrNonConvergence):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("encoding response failed", "error", err)
	}
}
