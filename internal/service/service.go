// Package service implements short URL creation, redirection and owner-scoped management.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/vadimbarashkov/short-links/internal/database"
	"github.com/vadimbarashkov/short-links/internal/models"
	"github.com/vadimbarashkov/short-links/internal/shortcode"
)

const (
	DefaultMaxRetries = 5

	DefaultPageLimit = 10
	MaxPageLimit     = 100
	MaxBulkDelete    = 100
	MaxQueryLength   = 100
)

// URLRepository defines the storage contract of the service.
type URLRepository interface {
	// Create inserts a new record. It fails with database.ErrShortCodeExists
	// if the short code is already stored.
	Create(ctx context.Context, url *models.URL) (*models.URL, error)

	// GetByShortCode returns database.ErrURLNotFound if no record has the code.
	GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error)

	// GetByID returns database.ErrURLNotFound if no record has the id.
	GetByID(ctx context.Context, id uuid.UUID) (*models.URL, error)

	// ExistsByShortCode is a best-effort check. Create remains authoritative.
	ExistsByShortCode(ctx context.Context, shortCode string) (bool, error)

	// IncrementClicks atomically adds one click. A missing code is not an error.
	IncrementClicks(ctx context.Context, shortCode string) error

	// Update applies the non-nil fields and refreshes UpdatedAt.
	Update(ctx context.Context, id uuid.UUID, upd models.URLUpdate) (*models.URL, error)

	// Delete reports whether a record was removed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// DeleteByOwner removes the listed records owned by ownerID and returns how many were removed.
	DeleteByOwner(ctx context.Context, ownerID string, ids []uuid.UUID) (int64, error)

	// ListByOwner returns one page of the owner's records and the total number of matches.
	ListByOwner(ctx context.Context, ownerID string, f models.URLFilter) ([]*models.URL, int64, error)

	// ListTop returns active, unexpired records ordered by clicks.
	ListTop(ctx context.Context, limit int) ([]*models.URL, error)
}

// Generator produces candidate short codes.
type Generator interface {
	Generate() (string, error)
}

// Redirect outcomes reported to Recorder.ObserveRedirect.
const (
	RedirectOK       = "ok"
	RedirectNotFound = "not_found"
	RedirectInactive = "inactive"
	RedirectExpired  = "expired"
)

// Recorder receives service events for monitoring.
type Recorder interface {
	URLCreated()
	ShortCodeCollision()
	ObserveRedirect(result string)
}

type nopRecorder struct{}

func (nopRecorder) URLCreated()            {}
func (nopRecorder) ShortCodeCollision()    {}
func (nopRecorder) ObserveRedirect(string) {}

type Option func(*URLService)

func WithGenerator(g Generator) Option {
	return func(s *URLService) {
		s.gen = g
	}
}

// WithMaxRetries sets how many generated codes are tried before giving up.
func WithMaxRetries(n int) Option {
	return func(s *URLService) {
		if n > 0 {
			s.maxRetries = n
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *URLService) {
		if r != nil {
			s.rec = r
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *URLService) {
		s.now = now
	}
}

// URLService provides methods to manage URL shortening operations.
// All state lives in the repository.
type URLService struct {
	repo       URLRepository
	logger     *slog.Logger
	gen        Generator
	rec        Recorder
	now        func() time.Time
	maxRetries int
}

// NewURLService creates a new instance of URLService with the provided repository and logger.
func NewURLService(repo URLRepository, logger *slog.Logger, opts ...Option) *URLService {
	s := &URLService{
		repo:       repo,
		logger:     logger,
		gen:        shortcode.New(),
		rec:        nopRecorder{},
		now:        time.Now,
		maxRetries: DefaultMaxRetries,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func internalErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
}

func validateURL(raw string) error {
	if raw == "" {
		return errors.New("url is empty")
	}

	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return err
	}

	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("url %q is not absolute", raw)
	}

	return nil
}

// CreateShortURL validates the request and stores a new record under either the
// requested custom code or a freshly generated one.
func (s *URLService) CreateShortURL(ctx context.Context, req models.NewURL) (*models.URL, error) {
	const op = "service.URLService.CreateShortURL"

	if err := validateURL(req.OriginalURL); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrInvalidInput, err)
	}

	rec := &models.URL{
		OriginalURL: req.OriginalURL,
		OwnerID:     req.OwnerID,
		Title:       req.Title,
		Description: req.Description,
		ExpiresAt:   req.ExpiresAt,
		IsActive:    true,
	}

	var (
		created *models.URL
		err     error
	)

	if req.CustomShortCode != "" {
		created, err = s.createWithCustomCode(ctx, rec, req.CustomShortCode)
	} else {
		created, err = s.createWithGeneratedCode(ctx, rec)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.rec.URLCreated()
	s.logger.InfoContext(ctx, "short url created",
		slog.String("short_code", created.ShortCode),
		slog.String("owner_id", created.OwnerID),
	)

	return created, nil
}

func (s *URLService) createWithCustomCode(ctx context.Context, rec *models.URL, code string) (*models.URL, error) {
	const op = "createWithCustomCode"

	if shortcode.Reserved(code) {
		return nil, fmt.Errorf("%s: %w: short code %q is reserved", op, ErrInvalidInput, code)
	}

	if !shortcode.ValidCustom(code) {
		return nil, fmt.Errorf("%s: %w: short code must be %d-%d letters, digits, hyphens or underscores",
			op, ErrInvalidInput, shortcode.MinCustomLength, shortcode.MaxCustomLength)
	}

	exists, err := s.repo.ExistsByShortCode(ctx, code)
	if err != nil {
		return nil, internalErr(op, err)
	}
	if exists {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrConflict, code)
	}

	rec.ShortCode = code

	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		if errors.Is(err, database.ErrShortCodeExists) {
			return nil, fmt.Errorf("%s: %w: %q", op, ErrConflict, code)
		}
		return nil, internalErr(op, err)
	}

	return created, nil
}

// createWithGeneratedCode tries up to maxRetries codes. Both a pre-check hit and a
// uniqueness violation reported by the store consume an attempt.
func (s *URLService) createWithGeneratedCode(ctx context.Context, rec *models.URL) (*models.URL, error) {
	const op = "createWithGeneratedCode"

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		code, err := s.gen.Generate()
		if err != nil {
			return nil, internalErr(op, err)
		}

		exists, err := s.repo.ExistsByShortCode(ctx, code)
		if err != nil {
			return nil, internalErr(op, err)
		}
		if exists {
			s.collision(ctx, code, attempt)
			continue
		}

		rec.ShortCode = code

		created, err := s.repo.Create(ctx, rec)
		if err != nil {
			if errors.Is(err, database.ErrShortCodeExists) {
				s.collision(ctx, code, attempt)
				continue
			}
			return nil, internalErr(op, err)
		}

		return created, nil
	}

	return nil, fmt.Errorf("%s: %w after %d attempts", op, ErrExhausted, s.maxRetries)
}

func (s *URLService) collision(ctx context.Context, code string, attempt int) {
	s.rec.ShortCodeCollision()
	s.logger.WarnContext(ctx, "generated short code already taken",
		slog.String("short_code", code),
		slog.Int("attempt", attempt),
	)
}

// RedirectToURL resolves a short code to the URL visitors should be sent to and counts the click.
// Missing, inactive and expired codes are indistinguishable to the caller.
func (s *URLService) RedirectToURL(ctx context.Context, shortCode string) (string, error) {
	const op = "service.URLService.RedirectToURL"

	url, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, database.ErrURLNotFound) {
			s.rec.ObserveRedirect(RedirectNotFound)
			return "", fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return "", internalErr(op, err)
	}

	if !url.IsActive {
		s.rec.ObserveRedirect(RedirectInactive)
		s.logger.DebugContext(ctx, "redirect refused, url inactive", slog.String("short_code", shortCode))
		return "", fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	if url.Expired(s.now()) {
		s.rec.ObserveRedirect(RedirectExpired)
		s.logger.DebugContext(ctx, "redirect refused, url expired", slog.String("short_code", shortCode))
		return "", fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	// A lost click must not cost the visitor the redirect.
	if err := s.repo.IncrementClicks(ctx, shortCode); err != nil {
		s.logger.ErrorContext(ctx, "failed to increment clicks",
			slog.String("short_code", shortCode),
			slog.Any("err", err),
		)
	}

	s.rec.ObserveRedirect(RedirectOK)

	return url.OriginalURL, nil
}

// GetURLStats returns the stored record of a short code whatever its state.
func (s *URLService) GetURLStats(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "service.URLService.GetURLStats"

	url, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, database.ErrURLNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, internalErr(op, err)
	}

	return url, nil
}

// GetTopURLs returns the most visited links that still redirect.
// A zero limit selects DefaultPageLimit.
func (s *URLService) GetTopURLs(ctx context.Context, limit int) ([]*models.URL, error) {
	const op = "service.URLService.GetTopURLs"

	if limit == 0 {
		limit = DefaultPageLimit
	}
	if limit < 1 || limit > MaxPageLimit {
		return nil, fmt.Errorf("%s: %w: limit must be between 1 and %d", op, ErrInvalidInput, MaxPageLimit)
	}

	urls, err := s.repo.ListTop(ctx, limit)
	if err != nil {
		return nil, internalErr(op, err)
	}

	return urls, nil
}

func normalizeFilter(f models.URLFilter) (models.URLFilter, error) {
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Page < 1 {
		return f, errors.New("page must be at least 1")
	}

	if f.Limit == 0 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit < 1 || f.Limit > MaxPageLimit {
		return f, fmt.Errorf("limit must be between 1 and %d", MaxPageLimit)
	}

	if utf8.RuneCountInString(f.Query) > MaxQueryLength {
		return f, fmt.Errorf("query must be at most %d characters", MaxQueryLength)
	}

	switch f.SortBy {
	case "":
		f.SortBy = models.SortByCreatedAt
	case models.SortByCreatedAt, models.SortByClicks, models.SortByURL, models.SortByShortCode:
	default:
		return f, fmt.Errorf("cannot sort by %q", f.SortBy)
	}

	switch f.SortOrder {
	case "":
		f.SortOrder = models.SortDesc
	case models.SortAsc, models.SortDesc:
	default:
		return f, fmt.Errorf("unknown sort order %q", f.SortOrder)
	}

	return f, nil
}

// GetUserURLs returns one page of the owner's URLs.
func (s *URLService) GetUserURLs(ctx context.Context, ownerID string, f models.URLFilter) (*models.URLPage, error) {
	const op = "service.URLService.GetUserURLs"

	f, err := normalizeFilter(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrInvalidInput, err)
	}

	urls, total, err := s.repo.ListByOwner(ctx, ownerID, f)
	if err != nil {
		return nil, internalErr(op, err)
	}

	return &models.URLPage{
		Data: urls,
		Pagination: models.Pagination{
			Page:  f.Page,
			Total: total,
			Pages: int(math.Ceil(float64(total) / float64(f.Limit))),
			Limit: f.Limit,
		},
	}, nil
}

// getOwned loads a record and checks that ownerID created it.
func (s *URLService) getOwned(ctx context.Context, id uuid.UUID, ownerID string) (*models.URL, error) {
	url, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrURLNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	if url.OwnerID != ownerID {
		s.logger.WarnContext(ctx, "url access denied",
			slog.String("url_id", id.String()),
			slog.String("owner_id", ownerID),
		)
		return nil, ErrForbidden
	}

	return url, nil
}

// UpdateURL changes the mutable fields of a URL owned by ownerID.
func (s *URLService) UpdateURL(ctx context.Context, id uuid.UUID, ownerID string, upd models.URLUpdate) (*models.URL, error) {
	const op = "service.URLService.UpdateURL"

	current, err := s.getOwned(ctx, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if upd.Empty() {
		return current, nil
	}

	url, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		if errors.Is(err, database.ErrURLNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, internalErr(op, err)
	}

	return url, nil
}

// DeleteURL removes a URL owned by ownerID.
func (s *URLService) DeleteURL(ctx context.Context, id uuid.UUID, ownerID string) (bool, error) {
	const op = "service.URLService.DeleteURL"

	if _, err := s.getOwned(ctx, id, ownerID); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, internalErr(op, err)
	}

	s.logger.InfoContext(ctx, "short url deleted",
		slog.String("url_id", id.String()),
		slog.Bool("deleted", deleted),
	)

	return deleted, nil
}

// BulkDeleteURLs removes every listed URL owned by ownerID; ids owned by others are skipped.
func (s *URLService) BulkDeleteURLs(ctx context.Context, ownerID string, ids []uuid.UUID) (int64, error) {
	const op = "service.URLService.BulkDeleteURLs"

	if len(ids) == 0 || len(ids) > MaxBulkDelete {
		return 0, fmt.Errorf("%s: %w: between 1 and %d ids required", op, ErrInvalidInput, MaxBulkDelete)
	}

	n, err := s.repo.DeleteByOwner(ctx, ownerID, ids)
	if err != nil {
		return 0, internalErr(op, err)
	}

	return n, nil
}
