// Package web exposes the read-only status export over HTTP.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Growfam/fc26-sniping/internal/sniper"
)

const statusPollInterval = 2 * time.Second

type statusProvider interface {
	Status() sniper.Status
}

// Server serves a JSON status snapshot and an SSE stream of it.
type Server struct {
	Addr     string
	Provider statusProvider
	Logger   *zap.Logger
}

// NewServer creates a status server around the given provider.
func NewServer(addr string, provider statusProvider, logger *zap.Logger) *Server {
	return &Server{Addr: addr, Provider: provider, Logger: logger}
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/status/stream", s.handleStatusStream)

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Provider.Status()); err != nil {
		s.Logger.Warn("failed to encode status", zap.Error(err))
	}
}

func (s *Server) handleStatusStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// comment heartbeat keeps proxies from dropping the connection
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	pollTicker := time.NewTicker(statusPollInterval)
	defer pollTicker.Stop()

	sendStatus := func() error {
		payload, err := json.Marshal(s.Provider.Status())
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "event: status\n")
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
		return nil
	}

	if err := sendStatus(); err != nil {
		http.Error(w, "failed to send status", http.StatusInternalServerError)
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-pollTicker.C:
			if err := sendStatus(); err != nil {
				s.Logger.Warn("status stream poll failed", zap.Error(err))
			}
		}
	}
}
