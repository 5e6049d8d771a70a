// Package web serves a small read-only status API for the clock appliance.
// The panel is the real UI; this exists for remote verification.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

func Handler(status *Status) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		snap := status.Snapshot(time.Now().UTC())
		b, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			http.Error(w, "marshal failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(b)
		_, _ = w.Write([]byte("\n"))
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		snap := status.Snapshot(time.Now().UTC())
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprintf(w, "<!doctype html><html><head><meta charset=\"utf-8\"><title>GPS Clock</title></head><body>")
		_, _ = fmt.Fprintf(w, "<h1>GPS Clock</h1>")
		_, _ = fmt.Fprintf(w, "<p>See <a href=\"/api/status\">/api/status</a> for the full snapshot.</p>")
		_, _ = fmt.Fprintf(w, "<pre>trust=%s\nutc=%s\nscreen=%s\nsatellites=%d\nupdates_total=%d</pre>",
			snap.Clock.Trust, snap.Clock.UTC, snap.Clock.Screen, snap.GPS.Satellites, snap.UpdatesTotal,
		)
		_, _ = fmt.Fprintf(w, "</body></html>")
	})

	return mux
}

func Serve(ctx context.Context, listenAddr string, status *Status) error {
	if status == nil {
		status = NewStatus()
	}

	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           Handler(status),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       30 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MiB
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
