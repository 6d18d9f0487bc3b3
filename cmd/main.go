package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator/v10"

	"ucp_service/internal/auth"
	"ucp_service/internal/config"
	"ucp_service/internal/gameserver"
	"ucp_service/internal/http_server/handlers/application"
	"ucp_service/internal/http_server/handlers/bans"
	"ucp_service/internal/http_server/handlers/changeemail"
	"ucp_service/internal/http_server/handlers/changepassword"
	"ucp_service/internal/http_server/handlers/characters"
	"ucp_service/internal/http_server/handlers/login"
	"ucp_service/internal/http_server/handlers/me"
	"ucp_service/internal/http_server/handlers/news"
	"ucp_service/internal/http_server/handlers/quiz"
	"ucp_service/internal/http_server/handlers/register"
	"ucp_service/internal/http_server/handlers/reset"
	"ucp_service/internal/http_server/handlers/serverstatus"
	"ucp_service/internal/http_server/handlers/stats"
	"ucp_service/internal/http_server/handlers/verifyemail"
	"ucp_service/internal/http_server/middleware/authn"
	"ucp_service/internal/lib/api/validation"
	rateLimit "ucp_service/internal/middleware/ratelimit"
	"ucp_service/internal/rabbitmq"
	"ucp_service/internal/storage/postgres"
	"ucp_service/internal/storage/redis"
	"ucp_service/internal/users"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad("./config/config.yaml")

	log := setupLogger(cfg.Env)

	log.Info("starting ucp service", slog.String("env", cfg.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("Shutdown signal received")
		cancel()
	}()

	storage, err := postgres.New(ctx, cfg)
	if err != nil {
		log.Error("failed to connect postgres", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer storage.Close()

	cache, err := redis.New(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Error("failed to connect redis", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer cache.Close()

	msgBroker, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
	if err != nil {
		log.Error("failed to connect rabbitmq", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer msgBroker.Close()

	authService := auth.New(
		log, storage, storage, storage,
		cfg.Tokens.SessionTokenSecret, cfg.Tokens.SessionTokenTTL, cfg.Tokens.CodeTTL,
	)
	usersService := users.New(log, storage, storage, storage, storage, cfg.Tokens.CodeTTL)
	gameServer := gameserver.New(log, cache, cfg.GameServer.StatusURL, cfg.GameServer.StatusCacheTTL)

	router := setupRouter(log, cfg, validation.New(), authService, usersService, gameServer, storage, msgBroker)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server is running", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", slog.String("err", err.Error()))
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down HTTP server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", slog.String("err", err.Error()))
	} else {
		log.Info("Server stopped gracefully")
	}

	log.Info("Main service stopped")
}

func setupRouter(
	log *slog.Logger,
	cfg *config.Config,
	validate *validator.Validate,
	authService *auth.Auth,
	usersService *users.Users,
	gameServer *gameserver.Client,
	storage *postgres.PostgresRepo,
	msgBroker *rabbitmq.RabbitMQClient,
) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	baseURL := cfg.UCP.BaseURL

	r.Route("/api/v1", func(r chi.Router) {
		// Public.
		r.Group(func(r chi.Router) {
			r.Use(rateLimit.Login())
			r.Post("/auth", login.New(log, validate, authService))
			r.Post("/auth/admin", login.NewAdmin(log, validate, authService))
		})
		r.With(rateLimit.Register()).
			Post("/auth/new", register.New(log, validate, authService))
		r.With(rateLimit.PasswordReset()).
			Post("/auth/reset", reset.New(log, validate, authService, msgBroker, baseURL))
		r.Get("/auth/reset/{code}", reset.NewCheck(log, authService))
		r.Put("/auth/reset/{code}", reset.NewConfirm(log, validate, authService))
		r.Get("/server", serverstatus.New(log, gameServer))
		r.Get("/news", news.NewList(log, storage))
		r.Get("/news/headline", news.NewHeadline(log, storage))
		r.Get("/news/{slug}", news.NewDetail(log, storage))

		// Behind the session token.
		r.Group(func(r chi.Router) {
			r.Use(authn.New(log, cfg.Tokens.SessionTokenSecret))

			r.Get("/auth", me.New(log, storage))
			r.With(rateLimit.EmailVerification()).
				Post("/users/email/verification", verifyemail.New(log, usersService, msgBroker, baseURL))
			r.Put("/users/email/verification/{code}", verifyemail.NewConfirm(log, usersService))
			r.Put("/users/change/password", changepassword.New(log, validate, usersService, msgBroker))
			r.Put("/users/change/email", changeemail.New(log, validate, usersService, msgBroker))
			r.Post("/users/application", application.New(log, validate, usersService))

			r.Route("/characters", func(r chi.Router) {
				r.Get("/", characters.NewList(log, storage))
				r.Post("/new", characters.NewCreate(log, validate, storage))
				r.Get("/faction/{id}", characters.NewFaction(log, storage))
				r.Get("/{id}", characters.NewDetail(log, storage))
				r.Delete("/{id}", characters.NewDelete(log, storage))
				r.Get("/{id}/admin_warns", characters.NewAdminWarns(log, storage))
				r.Get("/{id}/inventory", characters.NewInventory(log, storage))
				r.Get("/{id}/vehicles", characters.NewVehicles(log, storage))
				r.Get("/{id}/properties", characters.NewProperties(log, storage))
			})

			r.Get("/server/stats/users", stats.NewUsers(log, storage))
			r.Get("/server/stats/player_vehicles", stats.NewVehicles(log, storage))
			r.Get("/server/stats/player_properties", stats.NewProperties(log, storage))

			// Admin panel.
			r.Group(func(r chi.Router) {
				r.Use(authn.RequireAdmin)

				r.Post("/news", news.NewCreate(log, validate, storage))
				r.Put("/news/{id}", news.NewUpdate(log, validate, storage))
				r.Delete("/news/{id}", news.NewDelete(log, storage))

				r.Get("/bans", bans.NewList(log, storage))
				r.Delete("/bans/{id}", bans.NewDelete(log, storage))

				r.Post("/quiz", quiz.NewCreate(log, validate, storage))
				r.Get("/quiz/type", quiz.NewTypes(log, storage))
				r.Post("/quiz/type", quiz.NewCreateType(log, validate, storage))
				r.Put("/quiz/type/{id}", quiz.NewUpdateType(log, validate, storage))
				r.Delete("/quiz/type/{id}", quiz.NewDeleteType(log, storage))
				r.Post("/quiz/answer", quiz.NewSaveAnswers(log, validate, storage))
				r.Delete("/quiz/answer/{id}", quiz.NewDeleteAnswer(log, storage))

				r.Get("/users/application", application.NewList(log, storage))
				r.Put("/users/application/{id}", application.NewReview(log, validate, usersService, msgBroker))
			})
		})
	})

	return r
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
