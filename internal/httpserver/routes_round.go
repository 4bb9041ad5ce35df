// internal/httpserver/routes_round.go
//
// HTTP routes for the player's session and live round.
//   - POST /session        → page load: fresh session, visit counted, daily round
//   - GET  /round          → current view
//   - POST /round/new      → start a new round ({"mode":"daily"|"random"})
//   - POST /round/guess    → submit a guess ({"guess":"Klein"})
//   - GET  /round/suggest  → up to five names for ?q=
//   - GET  /stats          → statistics snapshot
//
// Sessions live in memory (store.Store); statistics persist through stats.KV.

package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/RedCodeSnoo/Lotm-dle/internal/game"
	"github.com/RedCodeSnoo/Lotm-dle/internal/session"
)

// User-facing messages for advisory errors.
const (
	msgNotFound  = "Character not found!"
	msgDuplicate = "You already tried this character!"
)

// mountRound registers all /round routes.
func (s *Server) mountRound(r chi.Router) {
	r.Route("/round", func(r chi.Router) {
		r.Get("/", s.handleRound)
		r.Post("/new", s.handleNewRound)
		r.Post("/guess", s.handleGuess)
		r.Get("/suggest", s.handleSuggest)
	})
}

// currentSession returns the player's live session, starting one (as a page
// load would) when none exists yet.
// Concurrent first requests from one player share a single session.
func (s *Server) currentSession(r *http.Request) (*session.Session, error) {
	pid := playerFrom(r.Context())
	return s.opts.Sessions.GetOrCreate(r.Context(), pid, func() (*session.Session, error) {
		return session.New(r.Context(), pid, s.deps)
	})
}

func (s *Server) startSession(r *http.Request) (*session.Session, error) {
	sess, err := session.New(r.Context(), playerFrom(r.Context()), s.deps)
	if err != nil {
		return nil, err
	}
	if err := s.opts.Sessions.Save(r.Context(), sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// -----------------------------------------------------------------------------
// /session, /stats

// handleSession models a page load: the previous round and the in-memory
// session tally are discarded.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.startSession(r)
	if err != nil {
		log.Error().Err(err).Msg("start session")
		writeError(w, http.StatusInternalServerError, "session_failed", "")
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionOr500(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.View().Stats)
}

// -----------------------------------------------------------------------------
// /round

func (s *Server) handleRound(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionOr500(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

// newRoundReq is the request payload for /round/new.
type newRoundReq struct {
	Mode string `json:"mode"`
}

func (s *Server) handleNewRound(w http.ResponseWriter, r *http.Request) {
	var req newRoundReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "")
		return
	}
	mode, err := game.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_mode", err.Error())
		return
	}
	sess, ok := s.sessionOr500(w, r)
	if !ok {
		return
	}
	if err := sess.StartRound(mode); err != nil {
		log.Error().Err(err).Msg("start round")
		writeError(w, http.StatusInternalServerError, "round_failed", "")
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

// guessReq/Res payloads for POST /round/guess.
type guessReq struct {
	Guess string `json:"guess"`
}
type guessRes struct {
	Row     *game.Row    `json:"row,omitempty"`
	State   game.State   `json:"state"`
	Ignored bool         `json:"ignored,omitempty"` // input after the round ended
	View    session.View `json:"view"`
}

// handleGuess applies a guess to the player's round.
// Advisory errors (404/409) leave the round unchanged; input after the round
// has ended is acknowledged and ignored.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "")
		return
	}
	sess, ok := s.sessionOr500(w, r)
	if !ok {
		return
	}

	res, err := sess.Guess(r.Context(), req.Guess)
	switch {
	case errors.Is(err, game.ErrRoundOver):
		v := sess.View()
		writeJSON(w, http.StatusOK, guessRes{State: v.State, Ignored: true, View: v})
		return
	case errors.Is(err, game.ErrCharacterNotFound):
		writeError(w, http.StatusNotFound, "character_not_found", msgNotFound)
		return
	case errors.Is(err, game.ErrDuplicateGuess):
		writeError(w, http.StatusConflict, "duplicate_guess", msgDuplicate)
		return
	case err != nil:
		log.Error().Err(err).Msg("guess")
		writeError(w, http.StatusInternalServerError, "guess_failed", "")
		return
	}
	writeJSON(w, http.StatusOK, guessRes{Row: &res.Row, State: res.State, View: sess.View()})
}

type suggestRes struct {
	Suggestions []string `json:"suggestions"`
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionOr500(w, r)
	if !ok {
		return
	}
	names := sess.Suggest(r.URL.Query().Get("q"))
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, suggestRes{Suggestions: names})
}

func (s *Server) sessionOr500(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.currentSession(r)
	if err != nil {
		log.Error().Err(err).Msg("load session")
		writeError(w, http.StatusInternalServerError, "session_failed", "")
		return nil, false
	}
	return sess, true
}
