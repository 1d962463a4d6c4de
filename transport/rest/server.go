package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	readTimeout  = 10 * time.Second
	writeTimeout = 10 * time.Second
	idleTimeout  = 30 * time.Second
)

// NewRouter mounts the match API, /ping and, when given, the metrics handler.
func NewRouter(logger *slog.Logger, matches matchService, metrics http.Handler) http.Handler {
	handler := NewHandlers(logger, matches)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)

	router.Get("/ping", pingHandler)

	if metrics != nil {
		router.Method(http.MethodGet, "/metrics", metrics)
	}

	router.Get("/leaderboard", handler.Leaderboard)

	router.Route("/matches", func(r chi.Router) {
		r.Post("/", handler.CreateMatch)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handler.GetMatch)
			r.Delete("/", handler.DeleteMatch)
			r.Post("/moves", handler.Play)
			r.Post("/jump", handler.JumpTo)
			r.Post("/rounds", handler.NewRound)
			r.Delete("/scores", handler.ResetScores)
			r.Post("/coinflip", handler.CoinFlip)
			r.Post("/swap", handler.SwapRoles)
			r.Put("/players", handler.RenamePlayers)
		})
	})

	return router
}

func NewServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()

			next.ServeHTTP(ww, r)

			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(started),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
