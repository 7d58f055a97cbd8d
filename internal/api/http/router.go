package http

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/vadimbarashkov/short-links/internal/metrics"
	"github.com/vadimbarashkov/short-links/internal/models"
	"github.com/vadimbarashkov/short-links/internal/shortcode"
	"github.com/vadimbarashkov/short-links/pkg/middleware/recoverer"
)

const defaultRequestTimeout = 30 * time.Second

type URLService interface {
	CreateShortURL(ctx context.Context, req models.NewURL) (*models.URL, error)
	RedirectToURL(ctx context.Context, shortCode string) (string, error)
	GetURLStats(ctx context.Context, shortCode string) (*models.URL, error)
	GetTopURLs(ctx context.Context, limit int) ([]*models.URL, error)
	GetUserURLs(ctx context.Context, ownerID string, f models.URLFilter) (*models.URLPage, error)
	UpdateURL(ctx context.Context, id uuid.UUID, ownerID string, upd models.URLUpdate) (*models.URL, error)
	DeleteURL(ctx context.Context, id uuid.UUID, ownerID string) (bool, error)
	BulkDeleteURLs(ctx context.Context, ownerID string, ids []uuid.UUID) (int64, error)
}

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type options struct {
	baseURL        string
	limiter        Limiter
	metrics        *metrics.Metrics
	requestTimeout time.Duration
}

type Option func(*options)

// WithBaseURL sets the prefix used to build the short_url field of responses.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLimiter enables rate limiting of public creation and redirects.
func WithLimiter(l Limiter) Option {
	return func(o *options) {
		o.limiter = l
	}
}

// WithMetrics records request latency and exposes /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.requestTimeout = d
		}
	}
}

func getValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("shortcode", func(fl validator.FieldLevel) bool {
		return shortcode.ValidCustom(fl.Field().String())
	})

	return validate
}

func NewRouter(logger *httplog.Logger, urlSvc URLService, opts ...Option) http.Handler {
	o := &options{requestTimeout: defaultRequestTimeout}
	for _, opt := range opts {
		opt(o)
	}

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"POST", "GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept", userIDHeader},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(recoverer.New(logger.Logger))
	r.Use(middleware.Timeout(o.requestTimeout))

	if o.metrics != nil {
		r.Use(o.metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", o.metrics.Handler())
	}

	validate := getValidate()
	limit := rateLimit(logger.Logger, o.limiter)

	r.Get("/ping", handlePing)
	r.With(limit("redirect")).Get("/{shortCode}", handleRedirect(urlSvc))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))

		r.Route("/urls", func(r chi.Router) {
			r.With(limit("redirect")).Get("/resolve/{shortCode}", handleResolveShortCode(urlSvc))
			r.Get("/stats/{shortCode}", handleGetURLStats(urlSvc, o.baseURL))
			r.Get("/top", handleGetTopURLs(urlSvc, o.baseURL))
			r.With(limit("create")).Post("/public", handleCreatePublicURL(urlSvc, validate, o.baseURL))

			r.Group(func(r chi.Router) {
				r.Use(requireOwner)

				r.Post("/", handleCreateURL(urlSvc, validate, o.baseURL))
				r.Get("/", handleGetUserURLs(urlSvc, o.baseURL))
				r.Post("/bulk-delete", handleBulkDeleteURLs(urlSvc, validate))
				r.Put("/{id}", handleUpdateURL(urlSvc, validate, o.baseURL))
				r.Delete("/{id}", handleDeleteURL(urlSvc))
			})
		})
	})

	return r
}
