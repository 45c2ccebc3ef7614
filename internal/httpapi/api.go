// Package httpapi is the thin control plane over the bot manager: manual
// login, logout, stats and recent logs.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/Abudabih/FbAutomationv1/internal/bot"
	"github.com/Abudabih/FbAutomationv1/internal/obs"
)

const maxBodyBytes = 1 << 20

// API is the HTTP layer.
type API struct {
	mux     *http.ServeMux
	mgr     *bot.Manager
	version string
	secret  []byte
}

// New builds the route table. secret, when non-empty, enables bearer-token
// authentication on the mutating endpoints.
func New(mgr *bot.Manager, version, secret string) *API {
	a := &API{
		mux:     http.NewServeMux(),
		mgr:     mgr,
		version: version,
	}
	if secret != "" {
		a.secret = []byte(secret)
	}

	a.mux.HandleFunc("POST /login", a.Login)
	a.mux.HandleFunc("POST /logout", a.Logout)
	a.mux.HandleFunc("GET /stats", a.Stats)
	a.mux.HandleFunc("GET /logs", a.Logs)
	a.mux.HandleFunc("GET /healthz", a.Healthz)
	a.mux.Handle("GET /metrics", obs.Handler())
	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped handler for the server.
func (a *API) Handler() http.Handler {
	h := a.withAuth(a.mux)
	h = RateLimit(h, 10, 5)
	h = MaxBodyBytes(h, maxBodyBytes)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{
		"success": false,
		"message": msg,
	})
}
