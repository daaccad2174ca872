// Package api exposes the recommendation flow and the catalogue over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spigell/outfit-advisor/internal/logger"
	"github.com/spigell/outfit-advisor/internal/outfit"
	"github.com/spigell/outfit-advisor/internal/recommend"
	"github.com/spigell/outfit-advisor/internal/supabase"
)

const (
	defaultRateLimit    = 20
	defaultMaxBodyBytes = 10 << 20
)

// Store is the data layer used by the handlers.
type Store interface {
	StoreImage(ctx context.Context, dataURL string) (string, error)
	InsertUpload(ctx context.Context, imageURL, userID string) (int64, error)
	GetUploadByID(ctx context.Context, id int64) (*outfit.Upload, error)
	GetPreviewsByUserID(ctx context.Context, userID string) ([]outfit.RecommendationPreview, error)
	GetRecommendationByID(ctx context.Context, id int64) (*outfit.Recommendation, error)
	GetParamByID(ctx context.Context, id int64) (*outfit.Param, error)
	GetSuggestions(ctx context.Context, recommendationID int64) ([]outfit.Suggestion, error)
	GetSuggestionByID(ctx context.Context, id int64) (*outfit.Suggestion, error)
	GetResults(ctx context.Context, suggestionID int64) ([]outfit.Result, error)
	GetItemByID(ctx context.Context, id string) (*outfit.Item, error)
	GetItemsByIDs(ctx context.Context, ids []string) ([]outfit.Item, error)
	GetSeriesIDsByItemIDs(ctx context.Context, itemIDs []string) ([]string, error)
	GetSeriesByID(ctx context.Context, seriesID string) (*outfit.Series, error)
	GetItemIDsBySeriesID(ctx context.Context, seriesID string) ([]string, error)
	CreateProfile(ctx context.Context, userID string) (bool, error)
	GetProfileByUserID(ctx context.Context, userID string) (*outfit.Profile, error)
	UpdateProfile(ctx context.Context, username, avatarURL string) (bool, error)
	SignOut(ctx context.Context) error
}

type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Recommendation, error)
	DescribeImage(ctx context.Context, req recommend.SearchRequest) ([]outfit.Draft, error)
	DescribeText(ctx context.Context, req recommend.SearchRequest) ([]outfit.Draft, error)
	AttachResults(ctx context.Context, suggestionID int64, matches []recommend.ItemMatch) ([]int64, error)
	Models() []string
}

type ImageChecker interface {
	IsImageURLValid(ctx context.Context, url string) bool
}

// Authenticator resolves the user owning the access token carried by ctx.
type Authenticator interface {
	GetUser(ctx context.Context) (*supabase.User, error)
}

type Deps struct {
	Store       Store
	Recommender Recommender
	Images      ImageChecker
	Auth        Authenticator
}

type Config struct {
	CORSOrigins []string
	// RateLimit is the number of model backed requests allowed per IP and minute.
	RateLimit    int
	MaxBodyBytes int64
}

type Server struct {
	store       Store
	recommender Recommender
	images      ImageChecker
	auth        Authenticator
	cfg         Config
	validator   *Validator
	router      *chi.Mux
	logger      *zap.Logger
}

func NewServer(deps Deps, cfg Config, log *zap.Logger) *Server {
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	s := &Server{
		store:       deps.Store,
		recommender: deps.Recommender,
		images:      deps.Images,
		auth:        deps.Auth,
		cfg:         cfg,
		validator:   NewValidator(),
		router:      chi.NewRouter(),
		logger:      logger.Component(log, "api"),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.accessLog)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)
	s.router.Handle("/metrics", promhttp.Handler())

	limited := httprate.Limit(s.cfg.RateLimit, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusTooManyRequests, "too many requests, try again later", s.logger)
		}),
	)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/models", s.handleListModels)

		r.Route("/items", func(r chi.Router) {
			r.Get("/", s.handleGetItems)
			r.Get("/{id}", s.handleGetItem)
		})

		r.Route("/series", func(r chi.Router) {
			r.Post("/lookup", s.handleLookupSeries)
			r.Get("/{id}", s.handleGetSeries)
			r.Get("/{id}/items", s.handleGetSeriesItems)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Post("/uploads", s.handleCreateUpload)
			r.Post("/images/validate", s.handleValidateImage)

			r.Route("/recommendations", func(r chi.Router) {
				r.With(limited).Post("/", s.handleCreateRecommendation)
				r.Get("/", s.handleListRecommendations)
				r.Get("/{id}", s.handleGetRecommendation)
				r.Get("/{id}/suggestions", s.handleGetSuggestions)
			})

			r.Route("/suggestions/{id}/results", func(r chi.Router) {
				r.Get("/", s.handleGetResults)
				r.Post("/", s.handleAttachResults)
			})

			r.Route("/search", func(r chi.Router) {
				r.Use(limited)
				r.Post("/image", s.handleSearchImage)
				r.Post("/text", s.handleSearchText)
			})

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", s.handleGetProfile)
				r.Post("/", s.handleCreateProfile)
				r.Patch("/", s.handleUpdateProfile)
			})

			r.Post("/auth/signout", s.handleSignOut)
		})
	})
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"}, s.logger)
}

func (s *Server) handleListModels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"models": s.recommender.Models()}, s.logger)
}
