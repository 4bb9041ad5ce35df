// internal/httpserver/server.go
//
// HTTP server wiring for the character guessing game.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "/attributes".
//   - Player endpoints (player cookie): /session, /round/*, /stats.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled so the player cookie works
//     from the browser client.
//   - The server is a presentation adapter only: every rule of the game lives
//     in the session/game packages and reaches the client as plain JSON.

package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/RedCodeSnoo/Lotm-dle/internal/roster"
	"github.com/RedCodeSnoo/Lotm-dle/internal/session"
	"github.com/RedCodeSnoo/Lotm-dle/internal/stats"
	"github.com/RedCodeSnoo/Lotm-dle/internal/store"
)

// Options bundles the server's collaborators and cookie settings.
type Options struct {
	Roster     *roster.Roster
	KV         stats.KV
	Sessions   store.Store
	Clock      session.Clock // nil means the system clock
	MaxGuesses int

	JWTSecret    string
	CookieName   string
	ClientOrigin string
	Secure       bool // Secure + SameSite=None cookies
}

// Server bundles router, session registry and game dependencies.
type Server struct {
	r    *chi.Mux
	opts Options
	deps session.Deps
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	if opts.Sessions == nil {
		opts.Sessions = store.NewMemoryStore()
	}
	if opts.CookieName == "" {
		opts.CookieName = "lotmdle_player"
	}
	s := &Server{
		r:    chi.NewRouter(),
		opts: opts,
		deps: session.Deps{
			Roster:     opts.Roster,
			KV:         opts.KV,
			Clock:      opts.Clock,
			MaxGuesses: opts.MaxGuesses,
		},
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog)                       // one zerolog line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(cors(opts.ClientOrigin))         // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "lotmdle-go",
			"endpoints": []string{"/health", "/attributes", "POST /session", "/round", "POST /round/new", "POST /round/guess", "/round/suggest", "/stats"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "sessions": s.opts.Sessions.Len()})
	})
	s.r.Get("/attributes", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, roster.Attributes)
	})

	// Player routes: every request carries (or is issued) a player cookie.
	s.r.Group(func(r chi.Router) {
		r.Use(s.withPlayer)
		r.Post("/session", s.handleSession)
		r.Get("/stats", s.handleStats)
		s.mountRound(r)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", r.URL.Path)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// accessLog writes one structured line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("reqId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}

// ------------------------------- helpers -----------------------------------

type errorRes struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorRes{Error: code, Message: msg})
}
