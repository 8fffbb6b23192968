// Package web serves the browser chat widget and its JSON API.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"interview-chatter/internal/chat"
	"interview-chatter/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// Server exposes one conversation over HTTP. Turns started by requests run
// under the server's context, not the request's.
type Server struct {
	ctx  context.Context
	ctrl *chat.Controller
	log  *zerolog.Logger
}

func NewServer(ctx context.Context, ctrl *chat.Controller, logger *zerolog.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Server{ctx: ctx, ctrl: ctrl, log: logger}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(Recover(s.log), RequestLog(s.log))

	r.Get("/", s.handleIndex)
	r.Post("/messages", s.handleForm)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/messages", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleSend)
		r.Get("/{id}/interview", s.handleCopy)
		r.Get("/{id}/download", s.handleDownload)
	})
	return r
}

// Run listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("web chat listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("web server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("web server shutdown: %w", err)
		}
		s.log.Info().Msg("web chat stopped")
		return nil
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{Busy: s.ctrl.Busy(), Messages: s.ctrl.Transcript().Messages()}
	if err := renderPage(w, data); err != nil {
		s.log.Error().Err(err).Msg("failed to render chat page")
	}
}

// handleForm is the no-script send path. Rejected input is dropped
// silently, the same as a disabled send button.
func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	if _, err := s.ctrl.Start(s.ctx, r.FormValue("text")); err != nil {
		s.log.Debug().Err(err).Msg("form input ignored")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type listResponse struct {
	Messages []chat.Message `json:"messages"`
	Total    int            `json:"total"`
	Busy     bool           `json:"busy"`
}

// handleList returns the transcript; ?since=n skips the first n entries.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	since := 0
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "since must be a non-negative integer")
			return
		}
		since = n
	}
	busy := s.ctrl.Busy()
	log := s.ctrl.Transcript()
	msgs := log.Since(since)
	if msgs == nil {
		msgs = []chat.Message{}
	}
	writeJSON(w, http.StatusOK, listResponse{Messages: msgs, Total: log.Len(), Busy: busy})
}

type sendRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	_, err := s.ctrl.Start(s.ctx, req.Text)
	switch {
	case errors.Is(err, chat.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, chat.ErrBusy):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusAccepted, map[string]any{"accepted": true, "total": s.ctrl.Transcript().Len()})
	}
}

func (s *Server) findInterview(w http.ResponseWriter, r *http.Request) (chat.Message, bool) {
	m, ok := s.ctrl.Transcript().Find(chi.URLParam(r, "id"))
	if !ok || m.Interview == nil {
		writeError(w, http.StatusNotFound, "interview not found")
		return chat.Message{}, false
	}
	return m, true
}

func (s *Server) handleCopy(w http.ResponseWriter, r *http.Request) {
	m, ok := s.findInterview(w, r)
	if !ok {
		return
	}
	data, err := m.Interview.FormatJSON()
	if err != nil {
		s.log.Error().Err(err).Str("message_id", m.ID).Msg("failed to format interview")
		writeError(w, http.StatusInternalServerError, "failed to format interview")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	m, ok := s.findInterview(w, r)
	if !ok {
		return
	}
	name, data, err := m.Interview.Export()
	if err != nil {
		s.log.Error().Err(err).Str("message_id", m.ID).Msg("failed to export interview")
		writeError(w, http.StatusInternalServerError, "failed to export interview")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
