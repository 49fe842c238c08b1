package display

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// SetupMux handles all data serving:
// - Prometheus metric endpoint
// - Websocket with live playback snapshots
// - Version for programmatic use
// - Playback status as JSON
func (v *View) SetupMux() *mux.Router {
	r := mux.NewRouter()

	r.Handle("/metrics", v.StatsMiddleware(v.Stats.Handler()))
	r.HandleFunc("/ws", v.WebsocketHandler)

	// RespWriter cannot hijack, so /ws stays outside the middleware
	api := r.PathPrefix("/api").Subrouter()
	api.Use(v.StatsMiddleware)
	api.HandleFunc("/version", v.VersionHandler).Methods(http.MethodGet)
	api.HandleFunc("/status", v.StatusHandler).Methods(http.MethodGet)

	return r
}

var Version = "dev"

func (v *View) VersionHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"version": Version})
}

func (v *View) StatusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v.GetLiveData()); err != nil {
		slog.Error("Could not encode status", slog.Any("error", err))
	}
}

// Serve blocks on the HTTP endpoints until Shutdown.
func (v *View) Serve(addr string) error {
	return v.ListenAndServe(v.NewServer(addr))
}

// NewServer builds the server that Shutdown will stop.
// Handlers are traced through otelhttp.
func (v *View) NewServer(addr string) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(v.SetupMux(), "compose"),
		ReadHeaderTimeout: 5 * time.Second,
	}
	v.MU.Lock()
	v.server = srv
	v.MU.Unlock()
	return srv
}

func (v *View) ListenAndServe(srv *http.Server) error {
	slog.Info("Starting simple-compose web server", slog.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Could not start web server", slog.Any("error", err))
		return err
	}
	return nil
}

// Shutdown stops a running Serve. Without one it does nothing.
func (v *View) Shutdown(ctx context.Context) error {
	v.MU.Lock()
	srv := v.server
	v.MU.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
