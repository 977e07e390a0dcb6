package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/watchnext/backend/internal/config"
	"github.com/watchnext/backend/internal/handlers"
	"github.com/watchnext/backend/internal/logging"
	"github.com/watchnext/backend/internal/metrics"
	appMiddleware "github.com/watchnext/backend/internal/middleware"
	"github.com/watchnext/backend/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.close()

	authenticate, err := authMiddleware(ctx, cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           newRouter(cfg, b, authenticate),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", cfg.Server.Address).Str("backend", cfg.Backend.Kind).Str("auth", cfg.Auth.Provider).Msg("WatchNext API server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type backend struct {
	movies   services.MovieService
	profiles services.ProfileService
	close    func()
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	bc := cfg.Backend
	switch bc.Kind {
	case config.BackendMongo:
		client, db, err := services.ConnectMongo(ctx, bc.MongoURI, bc.MongoDB)
		if err != nil {
			return nil, err
		}
		return &backend{
			movies:   services.NewMongoMovieService(ctx, db),
			profiles: services.NewMongoProfileService(ctx, db),
			close:    func() { disconnectMongo(client) },
		}, nil

	case config.BackendSupabase:
		client, err := services.NewSupabaseClient(services.SupabaseConfig{
			URL:             bc.SupabaseURL,
			ServiceKey:      bc.SupabaseServiceKey,
			RetryMax:        bc.RetryMax,
			BreakerFailures: bc.BreakerFailures,
			BreakerTimeout:  bc.BreakerTimeout,
		})
		if err != nil {
			return nil, err
		}
		return &backend{
			movies:   services.NewSupabaseMovieService(client),
			profiles: services.NewSupabaseProfileService(client),
			close:    func() {},
		}, nil

	default:
		movies, err := services.NewMemoryMovieService(bc.DataDir)
		if err != nil {
			return nil, err
		}
		profiles, err := services.NewMemoryProfileService(bc.DataDir)
		if err != nil {
			return nil, err
		}
		for _, uid := range bc.AdminUserIDs {
			if _, err := profiles.GetOrCreate(ctx, uid, ""); err != nil {
				return nil, err
			}
			if err := profiles.SetAdmin(ctx, uid, true); err != nil {
				return nil, err
			}
			logging.Info().Str("user", uid).Msg("granted admin")
		}
		return &backend{movies: movies, profiles: profiles, close: func() {}}, nil
	}
}

func disconnectMongo(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		logging.Warn().Err(err).Msg("mongo disconnect")
	}
}

func authMiddleware(ctx context.Context, cfg *config.Config) (func(http.Handler) http.Handler, error) {
	if cfg.Auth.Provider == config.AuthFirebase {
		authClient, err := appMiddleware.NewFirebaseAuthClient(ctx, appMiddleware.FirebaseAuthConfig{
			ProjectID:       cfg.Auth.FirebaseProjectID,
			CredentialsJSON: cfg.Auth.FirebaseCredentialsJSON,
		})
		if err != nil {
			return nil, err
		}
		return appMiddleware.FirebaseAuth(authClient), nil
	}
	return appMiddleware.JWTAuth(cfg.Auth.JWTSecret), nil
}

func newRouter(cfg *config.Config, b *backend, authenticate func(http.Handler) http.Handler) http.Handler {
	timeout := cfg.Server.RequestTimeout

	profileHandler := handlers.NewProfileHandler(b.profiles, timeout)
	browseHandler := handlers.NewBrowseHandler(b.movies, timeout)
	adminHandler := handlers.NewAdminHandler(b.movies, services.NewToggleGate(), timeout)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog/options", handlers.CatalogOptions)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(appMiddleware.LoadProfile(b.profiles, timeout))

			r.Get("/profile", profileHandler.GetProfile)
			r.Post("/onboarding", profileHandler.CompleteOnboarding)

			r.Group(func(r chi.Router) {
				r.Use(appMiddleware.RequireOnboarding)
				r.Get("/home", browseHandler.Home)
				r.Get("/movies/{movieId}", browseHandler.GetMovie)
			})

			r.Route("/admin/staff-picks", func(r chi.Router) {
				r.Use(appMiddleware.RequireAdmin)
				r.Get("/", adminHandler.ListStaffPicks)

				r.Group(func(r chi.Router) {
					r.Use(appMiddleware.RateLimitByUser(cfg.Server.RateLimitRequests, cfg.Server.RateLimitWindow))
					r.Post("/{movieId}/toggle", adminHandler.ToggleStaffPick)
					r.Put("/{movieId}", adminHandler.SetStaffPick)
				})
			})
		})
	})

	return r
}
