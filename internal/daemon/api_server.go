package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"phrasesync/internal/api"
	"phrasesync/internal/config"
	"phrasesync/internal/logging"
	"phrasesync/internal/services"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}
	srv.server = &http.Server{
		Handler:           requestIDMiddleware(authMiddleware(strings.TrimSpace(cfg.Paths.APIToken), srv.routes().ServeHTTP)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/scripts", s.handleScripts)
	mux.HandleFunc("GET /api/session", s.handleSession)
	mux.HandleFunc("POST /api/session", s.handleStartSession)
	mux.HandleFunc("DELETE /api/session", s.handleEndSession)
	mux.HandleFunc("GET /api/session/timeline", s.handleTimeline)
	mux.HandleFunc("POST /api/session/seek/{index}", s.handleSeek)
	mux.HandleFunc("POST /api/session/repeat/{index}", s.handleRepeat)
	mux.HandleFunc("POST /api/session/{action}", s.handleAction)
	return mux
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) address() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.daemon.Status(r.Context())
	payload := api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		LibraryPath:  status.LibraryPath,
		LockFilePath: status.LockFilePath,
		ScriptDir:    status.ScriptDir,
	}
	if status.Session != nil {
		session := sessionPayload(status.Session)
		payload.Session = &session
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handleScripts(w http.ResponseWriter, r *http.Request) {
	entries, err := s.daemon.Scripts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.ScriptListResponse{Scripts: api.FromEntries(entries)})
}

func (s *apiServer) handleSession(w http.ResponseWriter, r *http.Request) {
	// Poll so the reply reflects the clock even between pushed samples.
	s.withSession(w, r, func(ctx context.Context, session *Session) error {
		return session.Coordinator.Poll(ctx)
	})
}

func (s *apiServer) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req api.SessionRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, r, services.Wrap(services.ErrValidation, "api", "start session", "invalid request body", err))
		return
	}
	session, err := s.daemon.ActivateScript(r.Context(), req.Script)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, sessionPayload(session))
}

func (s *apiServer) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := s.daemon.EndSession(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *apiServer) handleTimeline(w http.ResponseWriter, r *http.Request) {
	session, err := s.daemon.CurrentSession()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromTimeline(session.Script.Name, session.Timeline))
}

func (s *apiServer) handleAction(w http.ResponseWriter, r *http.Request) {
	action := r.PathValue("action")
	s.withSession(w, r, func(ctx context.Context, session *Session) error {
		coord := session.Coordinator
		switch action {
		case api.ActionToggle:
			return coord.TogglePlayPause(ctx)
		case api.ActionPlay:
			return coord.Play(ctx)
		case api.ActionPause:
			return coord.Pause(ctx)
		case api.ActionStop:
			return coord.Stop(ctx)
		case api.ActionRestart:
			return coord.Restart(ctx)
		case api.ActionNext:
			return coord.Next(ctx)
		case api.ActionPrevious:
			return coord.Previous(ctx)
		case api.ActionRepeatLast:
			return coord.RepeatLastPhrase(ctx)
		default:
			return services.Wrap(services.ErrNotFound, "api", "action", fmt.Sprintf("unknown action %q", action), nil)
		}
	})
}

func (s *apiServer) handleSeek(w http.ResponseWriter, r *http.Request) {
	index, ok := s.phraseIndex(w, r)
	if !ok {
		return
	}
	s.withSession(w, r, func(ctx context.Context, session *Session) error {
		return session.Coordinator.SeekToPhrase(ctx, index)
	})
}

func (s *apiServer) handleRepeat(w http.ResponseWriter, r *http.Request) {
	index, ok := s.phraseIndex(w, r)
	if !ok {
		return
	}
	s.withSession(w, r, func(ctx context.Context, session *Session) error {
		return session.Coordinator.RepeatPhrase(ctx, index)
	})
}

// withSession runs fn against the active session and replies with the
// resulting session state.
func (s *apiServer) withSession(w http.ResponseWriter, r *http.Request, fn func(context.Context, *Session) error) {
	session, err := s.daemon.CurrentSession()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := fn(r.Context(), session); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sessionPayload(session))
}

func (s *apiServer) phraseIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		s.writeError(w, r, services.Wrap(services.ErrValidation, "api", "phrase index", "invalid phrase index", err))
		return 0, false
	}
	return index, true
}

func sessionPayload(s *Session) api.Session {
	return api.Session{
		ID:        s.ID,
		Script:    s.Script.Name,
		Source:    string(s.Script.Source),
		Path:      s.Script.Path,
		Fallback:  s.Script.Fallback,
		StartedAt: api.FormatTimestamp(s.StartedAt),
		Playback:  api.FromSnapshot(s.Coordinator.Snapshot()),
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrDetached):
		return http.StatusConflict
	case errors.Is(err, services.ErrDevice):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logger := logging.WithContext(r.Context(), s.log())
	if status >= http.StatusInternalServerError {
		logger.Error("api request failed", logging.Error(err), logging.Int("status", status))
	} else {
		logger.Debug("api request rejected", logging.Error(err), logging.Int("status", status))
	}
	s.writeJSON(w, status, api.ErrorResponse{Error: err.Error(), Kind: services.Kind(err)})
}

func (s *apiServer) log() *slog.Logger {
	return logging.NewComponentLogger(s.logger, "api-server")
}
