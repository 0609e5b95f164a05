package routes

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"game_catalog/internal/controllers"
	mw "game_catalog/internal/middleware"
	"game_catalog/internal/storage/static"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

func SetupRouter(
	log *slog.Logger,
	db Pinger,
	gameService controllers.GameServicer,
	importer controllers.Populator,
	assets *static.Assets,
	corsOrigins []string,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Import-Count"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	gameController := controllers.NewGameController(gameService, importer, log)

	r.Get("/healthz", health(log, db))

	r.Route("/api/games", func(r chi.Router) {
		r.Get("/", gameController.GetAll)
		r.Post("/", gameController.Create)
		r.Post("/search", gameController.Search)
		r.Post("/populate", gameController.Populate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", gameController.GetByID)
			r.Put("/", gameController.Update)
			r.Delete("/", gameController.Delete)
		})
	})

	if assets != nil {
		r.Handle("/*", assets.Handler())
	}

	return r
}

func health(log *slog.Logger, db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			log.Error("health check failed", slog.String("error", err.Error()))
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
