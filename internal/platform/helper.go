package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/mmcdole/marquee/internal/domain"
)

// Helper is the privileged side of the desktop capability provider. It
// serves a Direct provider to unprivileged clients over a unix socket.
type Helper struct {
	direct  *Direct
	version string
	logger  *slog.Logger
}

// NewHelper creates a helper backed by direct
func NewHelper(direct *Direct, version string, logger *slog.Logger) *Helper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Helper{direct: direct, version: version, logger: logger}
}

// Router returns the helper's HTTP routes
func (h *Helper) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.requestLogger)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	v1.HandleFunc("/stream", h.handleStream).Methods(http.MethodPost)
	v1.HandleFunc("/fetch", h.handleFetch).Methods(http.MethodPost)
	v1.HandleFunc("/cloud/library", h.handleLibrary).Methods(http.MethodGet)
	v1.HandleFunc("/cloud/series", h.handleSeries).Methods(http.MethodGet)
	v1.HandleFunc("/cloud/series/{seriesID}/issues", h.handleIssues).Methods(http.MethodGet)

	return r
}

// Serve listens on socket until ctx is done. A stale socket file left by
// a previous run is removed first.
func (h *Helper) Serve(ctx context.Context, socket string) error {
	if err := os.Remove(socket); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}

	l, err := net.Listen("unix", socket)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", socket, err)
	}
	if err := os.Chmod(socket, 0600); err != nil {
		l.Close()
		return fmt.Errorf("failed to restrict socket permissions: %w", err)
	}

	srv := &http.Server{
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	h.logger.Info("helper listening", "socket", socket, "cloud", h.direct.CloudAPI() != nil)

	if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *Helper) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		h.logger.Debug("helper request",
			"method", r.Method, "path", r.URL.Path, "requestID", requestID,
			"status", rec.status, "duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (h *Helper) writeError(w http.ResponseWriter, err error) {
	code, status := encodeError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Error: err.Error(), Code: code})
}

func (h *Helper) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, healthResponse{Version: h.version, Cloud: h.direct.CloudAPI() != nil})
}

func (h *Helper) handleStream(w http.ResponseWriter, r *http.Request) {
	var q domain.StreamQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil || q.Title == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errorBody{Error: "invalid stream query", Code: "bad_request"})
		return
	}

	res, err := h.direct.GetStream(r.Context(), q)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, res)
}

func (h *Helper) handleFetch(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errorBody{Error: "invalid fetch request", Code: "bad_request"})
		return
	}

	body, err := h.direct.Fetcher().Fetch(r.Context(), req.URL, req.Header)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(body)
}

func (h *Helper) cloud(w http.ResponseWriter) (domain.CloudLibraryRepository, bool) {
	cloud := h.direct.CloudAPI()
	if cloud == nil {
		h.writeError(w, domain.ErrNotConfigured)
		return nil, false
	}
	return cloud, true
}

func (h *Helper) handleLibrary(w http.ResponseWriter, r *http.Request) {
	cloud, ok := h.cloud(w)
	if !ok {
		return
	}
	rows, err := cloud.Library(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, rows)
}

func (h *Helper) handleSeries(w http.ResponseWriter, r *http.Request) {
	cloud, ok := h.cloud(w)
	if !ok {
		return
	}
	rows, err := cloud.Series(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, rows)
}

func (h *Helper) handleIssues(w http.ResponseWriter, r *http.Request) {
	cloud, ok := h.cloud(w)
	if !ok {
		return
	}
	rows, err := cloud.Issues(r.Context(), mux.Vars(r)["seriesID"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, rows)
}
