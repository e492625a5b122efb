package web

import (
	"net/http"
	"time"

	"scrim/internal/util"

	"github.com/go-chi/chi/v5"
)

func isPublic(err error) bool {
	return util.IsPublic(err)
}

// lookupErrorCode tells a missing resource apart from a failure.
func lookupErrorCode(err error) int {
	if isPublic(err) {
		return http.StatusNotFound
	}

	return http.StatusInternalServerError
}

func (s *Server) getModes(w http.ResponseWriter, r *http.Request) {
	modes, err := s.back.GetModesWithQueueSize(r.Context())
	if err != nil {
		s.error(w, err, http.StatusInternalServerError)
		return
	}

	s.cache(w, "public", 1*time.Minute)
	s.response(w, http.StatusOK, modes)
}

func (s *Server) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	leaderboard, err := s.back.GetLeaderboardForShortcode(r.Context(), chi.URLParam(r, "shortcode"))
	if err != nil {
		s.error(w, err, lookupErrorCode(err))
		return
	}

	s.cache(w, "public", 5*time.Minute)
	s.response(w, http.StatusOK, leaderboard)
}

type queueResponse struct {
	Mode    string   `json:"mode"`
	Needed  int      `json:"needed"`
	Players []string `json:"players"`
}

func (s *Server) getQueue(w http.ResponseWriter, r *http.Request) {
	queue, err := s.back.GetQueue(r.Context(), chi.URLParam(r, "shortcode"))
	if err != nil {
		s.error(w, err, lookupErrorCode(err))
		return
	}

	ret := queueResponse{
		Mode:    queue.Mode.ShortCode,
		Needed:  queue.Mode.PlayersPerMatch(),
		Players: make([]string, 0, len(queue.Players)),
	}
	for _, v := range queue.Players {
		ret.Players = append(ret.Players, v.Name)
	}

	s.cache(w, "public", 10*time.Second)
	s.response(w, http.StatusOK, ret)
}

func (s *Server) getRatingsGraph(w http.ResponseWriter, r *http.Request) {
	svg, err := s.back.GetRatingsDistributionGraph(r.Context(), chi.URLParam(r, "shortcode"))
	if err != nil {
		s.error(w, err, lookupErrorCode(err))
		return
	}

	s.cache(w, "public", 1*time.Hour)
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(svg); err != nil {
		s.error(w, err, http.StatusInternalServerError)
	}
}
