package web

import (
	"context"
	"net/http"
	"time"

	"scrim/internal/back"
	"scrim/internal/config"
	"scrim/internal/util"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func (s *Server) getMatch(w http.ResponseWriter, r *http.Request) {
	details, err := s.back.GetMatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.error(w, err, lookupErrorCode(err))
		return
	}

	if details.Match.Status.IsActive() {
		s.cache(w, "public", 10*time.Second)
	} else {
		s.cache(w, "public", 1*time.Hour)
	}

	s.response(w, http.StatusOK, details)
}

// requireSignedURL only lets through requests whose URL was signed with
// config.SignURL and has not expired.
func (s *Server) requireSignedURL(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := s.config.CheckURL("https://" + r.Host + r.URL.RequestURI())
		if err == nil {
			h.ServeHTTP(w, r)
			return
		}

		if errors.Is(err, config.ErrTokenExpired) {
			s.error(w, util.ErrPublic("this link has expired"), http.StatusForbidden)
			return
		}

		log.Warnf("rejected admin request from %s: %s", r.RemoteAddr, err)
		s.error(w, err, http.StatusForbidden)
	})
}

func (s *Server) approveMatch(w http.ResponseWriter, r *http.Request) {
	s.decideMatch(w, r, s.back.ApproveMatch)
}

func (s *Server) rejectMatch(w http.ResponseWriter, r *http.Request) {
	s.decideMatch(w, r, s.back.RejectMatch)
}

type decideFunc func(ctx context.Context, id string) (back.Match, error)

func (s *Server) decideMatch(w http.ResponseWriter, r *http.Request, decide decideFunc) {
	match, err := decide(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		// Public errors here are state conflicts or unknown IDs.
		code := http.StatusInternalServerError
		if isPublic(err) {
			code = http.StatusConflict
		}
		s.error(w, err, code)
		return
	}

	s.response(w, http.StatusOK, match)
}
