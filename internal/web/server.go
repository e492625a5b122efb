package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"scrim/internal/back"
	"scrim/internal/config"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/", noContent)

	// No pagination, the ladder is expected to stay small.
	r.Get("/v1/modes", s.getModes)
	r.Route("/v1/mode/{shortcode}", func(r chi.Router) {
		r.Get("/leaderboard", s.getLeaderboard)
		r.Get("/queue", s.getQueue)
		r.Get("/ratings.svg", s.getRatingsGraph)
	})
	r.Get("/v1/match/{id}", s.getMatch)

	r.Route("/v1/admin", func(r chi.Router) {
		r.Use(s.requireSignedURL)
		r.Post("/match/{id}/approve", s.approveMatch)
		r.Post("/match/{id}/reject", s.rejectMatch)
	})

	return r
}

type Server struct {
	http   *http.Server
	back   *back.Back
	config *config.Config
}

func NewServer(back *back.Back, conf *config.Config) *Server {
	s := &Server{
		back:   back,
		config: conf,
	}

	s.http = &http.Server{
		Addr:         conf.HTTPAddr,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  10 * time.Second,
		Handler:      s.setupRouter(),
	}

	return s
}

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) Serve(wg *sync.WaitGroup, done <-chan struct{}) {
	log.Infof("starting HTTP server on %s", s.http.Addr)
	wg.Add(1)
	defer wg.Done()

	go func() {
		err := s.http.ListenAndServe()
		if err == http.ErrServerClosed {
			log.Info("HTTP server closed")
			return
		}

		log.Fatalf("webserver crashed: %s", err)
	}()

	<-done
	if err := s.http.Close(); err != nil {
		log.Warnf("unable to close webserver: %s", err)
	}
}

func (s *Server) response(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	response, err := json.Marshal(data)
	if err != nil {
		log.Errorf("unable to marshal response: %s", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(code)

	if _, err := w.Write(response); err != nil {
		log.Errorf("unable to send response: %s", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// error logs err and replies with code. Only public errors have their
// message sent to the client.
func (s *Server) error(w http.ResponseWriter, err error, code int) {
	log.Errorf("HTTP %d: %s", code, err)

	msg := http.StatusText(code)
	if isPublic(err) {
		msg = err.Error()
	}

	s.response(w, code, errorResponse{Error: msg})
}

func (s *Server) cache(w http.ResponseWriter, scope string, d time.Duration) {
	w.Header().Set("Cache-Control", fmt.Sprintf("%s,max-age=%d", scope, d/time.Second))
}
