package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vadimbarashkov/short-links/internal/database"
	"github.com/vadimbarashkov/short-links/internal/models"
	"github.com/vadimbarashkov/short-links/internal/shortcode"
)

type MockURLRepository struct {
	mock.Mock
}

func (r *MockURLRepository) Create(ctx context.Context, url *models.URL) (*models.URL, error) {
	args := r.Called(ctx, url)
	res, _ := args.Get(0).(*models.URL)
	return res, args.Error(1)
}

func (r *MockURLRepository) GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error) {
	args := r.Called(ctx, shortCode)
	url, _ := args.Get(0).(*models.URL)
	return url, args.Error(1)
}

func (r *MockURLRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.URL, error) {
	args := r.Called(ctx, id)
	url, _ := args.Get(0).(*models.URL)
	return url, args.Error(1)
}

func (r *MockURLRepository) ExistsByShortCode(ctx context.Context, shortCode string) (bool, error) {
	args := r.Called(ctx, shortCode)
	return args.Bool(0), args.Error(1)
}

func (r *MockURLRepository) IncrementClicks(ctx context.Context, shortCode string) error {
	args := r.Called(ctx, shortCode)
	return args.Error(0)
}

func (r *MockURLRepository) Update(ctx context.Context, id uuid.UUID, upd models.URLUpdate) (*models.URL, error) {
	args := r.Called(ctx, id, upd)
	url, _ := args.Get(0).(*models.URL)
	return url, args.Error(1)
}

func (r *MockURLRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := r.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (r *MockURLRepository) DeleteByOwner(ctx context.Context, ownerID string, ids []uuid.UUID) (int64, error) {
	args := r.Called(ctx, ownerID, ids)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

func (r *MockURLRepository) ListByOwner(ctx context.Context, ownerID string, f models.URLFilter) ([]*models.URL, int64, error) {
	args := r.Called(ctx, ownerID, f)
	urls, _ := args.Get(0).([]*models.URL)
	total, _ := args.Get(1).(int64)
	return urls, total, args.Error(2)
}

func (r *MockURLRepository) ListTop(ctx context.Context, limit int) ([]*models.URL, error) {
	args := r.Called(ctx, limit)
	urls, _ := args.Get(0).([]*models.URL)
	return urls, args.Error(1)
}

// sequenceGenerator hands out the given codes in order.
type sequenceGenerator struct {
	codes []string
	err   error
}

func (g *sequenceGenerator) Generate() (string, error) {
	if g.err != nil {
		return "", g.err
	}
	code := g.codes[0]
	g.codes = g.codes[1:]
	return code, nil
}

type countingRecorder struct {
	created    int
	collisions int
	redirects  map[string]int
}

func (r *countingRecorder) URLCreated()         { r.created++ }
func (r *countingRecorder) ShortCodeCollision() { r.collisions++ }
func (r *countingRecorder) ObserveRedirect(result string) {
	if r.redirects == nil {
		r.redirects = make(map[string]int)
	}
	r.redirects[result]++
}

var (
	errUnknown = errors.New("unknown error")
	testNow    = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	testID     = uuid.MustParse("c1a5e1b0-7c39-4f7e-9e43-0d0c1a7f2e10")
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupURLService(t testing.TB, opts ...Option) (*URLService, *MockURLRepository) {
	t.Helper()

	repo := new(MockURLRepository)
	t.Cleanup(func() {
		repo.AssertExpectations(t)
	})

	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)

	return NewURLService(repo, discardLogger(), opts...), repo
}

func withCode(code string) any {
	return mock.MatchedBy(func(u *models.URL) bool {
		return u.ShortCode == code
	})
}

func TestURLService_CreateShortURL(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid url", func(t *testing.T) {
		for _, raw := range []string{"", "not-a-url", "/relative/path", "example.com", "https://"} {
			svc, _ := setupURLService(t)

			url, err := svc.CreateShortURL(ctx, models.NewURL{OriginalURL: raw, OwnerID: "user-1"})

			assert.ErrorIs(t, err, ErrInvalidInput, raw)
			assert.Nil(t, url)
		}
	})

	t.Run("invalid custom code", func(t *testing.T) {
		svc, _ := setupURLService(t)

		url, err := svc.CreateShortURL(ctx, models.NewURL{
			OriginalURL:     "https://example.com",
			OwnerID:         "user-1",
			CustomShortCode: "ab",
		})

		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Nil(t, url)
	})

	t.Run("reserved custom code", func(t *testing.T) {
		for _, code := range []string{"ping", "metrics", "api", "Ping"} {
			svc, repo := setupURLService(t)

			url, err := svc.CreateShortURL(ctx, models.NewURL{
				OriginalURL:     "https://example.com",
				OwnerID:         "user-1",
				CustomShortCode: code,
			})

			assert.ErrorIs(t, err, ErrInvalidInput, code)
			assert.Nil(t, url)
			repo.AssertNotCalled(t, "ExistsByShortCode", mock.Anything, mock.Anything)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		}
	})

	t.Run("custom code taken", func(t *testing.T) {
		svc, repo := setupURLService(t)

		repo.On("ExistsByShortCode", ctx, "valid-code_1").Return(true, nil).Once()

		url, err := svc.CreateShortURL(ctx, models.NewURL{
			OriginalURL:     "https://example.com",
			OwnerID:         "user-1",
			CustomShortCode: "valid-code_1",
		})

		assert.ErrorIs(t, err, ErrConflict)
		assert.Nil(t, url)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("custom code lost race", func(t *testing.T) {
		svc, repo := setupURLService(t)

		repo.On("ExistsByShortCode", ctx, "valid-code_1").Return(false, nil).Once()
		repo.On("Create", ctx, withCode("valid-code_1")).Return(nil, database.ErrShortCodeExists).Once()

		_, err := svc.CreateShortURL(ctx, models.NewURL{
			OriginalURL:     "https://example.com",
			OwnerID:         "user-1",
			CustomShortCode: "valid-code_1",
		})

		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("custom code success", func(t *testing.T) {
		svc, repo := setupURLService(t)

		title := "Example"
		stored := &models.URL{ID: testID, ShortCode: "valid-code_1", OriginalURL: "https://example.com", OwnerID: "user-1", IsActive: true, Title: &title}

		repo.On("ExistsByShortCode", ctx, "valid-code_1").Return(false, nil).Once()
		repo.On("Create", ctx, mock.MatchedBy(func(u *models.URL) bool {
			return u.ShortCode == "valid-code_1" &&
				u.OriginalURL == "https://example.com" &&
				u.OwnerID == "user-1" &&
				u.IsActive &&
				u.Title != nil && *u.Title == "Example"
		})).Return(stored, nil).Once()

		url, err := svc.CreateShortURL(ctx, models.NewURL{
			OriginalURL:     "https://example.com",
			OwnerID:         "user-1",
			CustomShortCode: "valid-code_1",
			Title:           &title,
		})

		require.NoError(t, err)
		assert.Equal(t, stored, url)
	})

	t.Run("generated code retries after pre-check collision", func(t *testing.T) {
		rec := &countingRecorder{}
		svc, repo := setupURLService(t,
			WithGenerator(&sequenceGenerator{codes: []string{"aaaaaa", "bbbbbb"}}),
			WithRecorder(rec),
		)

		stored := &models.URL{ID: testID, ShortCode: "bbbbbb", OriginalURL: "https://a.com", IsActive: true}

		repo.On("ExistsByShortCode", ctx, "aaaaaa").Return(true, nil).Once()
		repo.On("ExistsByShortCode", ctx, "bbbbbb").Return(false, nil).Once()
		repo.On("Create", ctx, withCode("bbbbbb")).Return(stored, nil).Once()

		url, err := svc.CreateShortURL(ctx, models.NewURL{OriginalURL: "https://a.com", OwnerID: "user-1"})

		require.NoError(t, err)
		assert.Equal(t, "bbbbbb", url.ShortCode)
		assert.Equal(t, 1, rec.collisions)
		assert.Equal(t, 1, rec.created)
	})

	t.Run("generated code retries after store conflict", func(t *testing.T) {
		svc, repo := setupURLService(t, WithGenerator(&sequenceGenerator{codes: []string{"aaaaaa", "bbbbbb"}}))

		stored := &models.URL{ID: testID, ShortCode: "bbbbbb", OriginalURL: "https://a.com", IsActive: true}

		repo.On("ExistsByShortCode", ctx, "aaaaaa").Return(false, nil).Once()
		repo.On("Create", ctx, withCode("aaaaaa")).Return(nil, database.ErrShortCodeExists).Once()
		repo.On("ExistsByShortCode", ctx, "bbbbbb").Return(false, nil).Once()
		repo.On("Create", ctx, withCode("bbbbbb")).Return(stored, nil).Once()

		url, err := svc.CreateShortURL(ctx, models.NewURL{OriginalURL: "https://a.com", OwnerID: "user-1"})

		require.NoError(t, err)
		assert.Equal(t, stored, url)
	})

	t.Run("retries exhausted", func(t *testing.T) {
		svc, repo := setupURLService(t,
			WithGenerator(&sequenceGenerator{codes: []string{"aaaaaa", "bbbbbb", "cccccc"}}),
			WithMaxRetries(3),
		)

		repo.On("ExistsByShortCode", ctx, mock.Anything).Return(true, nil).Times(3)

		url, err := svc.CreateShortURL(ctx, models.NewURL{OriginalURL: "https://a.com", OwnerID: "user-1"})

		assert.ErrorIs(t, err, ErrExhausted)
		assert.Nil(t, url)
		repo.AssertNumberOfCalls(t, "ExistsByShortCode", 3)
	})

	t.Run("generator error", func(t *testing.T) {
		svc, _ := setupURLService(t, WithGenerator(&sequenceGenerator{err: errUnknown}))

		_, err := svc.CreateShortURL(ctx, models.NewURL{OriginalURL: "https://a.com", OwnerID: "user-1"})

		assert.ErrorIs(t, err, ErrInternal)
		assert.ErrorIs(t, err, errUnknown)
	})

	t.Run("storage error", func(t *testing.T) {
		svc, repo := setupURLService(t, WithGenerator(&sequenceGenerator{codes: []string{"aaaaaa"}}))

		repo.On("ExistsByShortCode", ctx, "aaaaaa").Return(false, nil).Once()
		repo.On("Create", ctx, withCode("aaaaaa")).Return(nil, errUnknown).Once()

		_, err := svc.CreateShortURL(ctx, models.NewURL{OriginalURL: "https://a.com", OwnerID: "user-1"})

		assert.ErrorIs(t, err, ErrInternal)
		assert.ErrorIs(t, err, errUnknown)
	})

	t.Run("pre-check error", func(t *testing.T) {
		svc, repo := setupURLService(t, WithGenerator(&sequenceGenerator{codes: []string{"aaaaaa"}}))

		repo.On("ExistsByShortCode", ctx, "aaaaaa").Return(false, errUnknown).Once()

		_, err := svc.CreateShortURL(ctx, models.NewURL{OriginalURL: "https://a.com", OwnerID: "user-1"})

		assert.ErrorIs(t, err, ErrInternal)
	})

	t.Run("default generator produces valid codes", func(t *testing.T) {
		svc, repo := setupURLService(t)

		repo.On("ExistsByShortCode", ctx, mock.Anything).Return(false, nil).Once()
		repo.On("Create", ctx, mock.MatchedBy(func(u *models.URL) bool {
			return shortcode.IsGenerated(u.ShortCode)
		})).Return(&models.URL{ShortCode: "xY12ab"}, nil).Once()

		_, err := svc.CreateShortURL(ctx, models.NewURL{OriginalURL: "https://a.com", OwnerID: "user-1"})

		assert.NoError(t, err)
	})
}

func TestURLService_RedirectToURL(t *testing.T) {
	ctx := context.Background()
	past := testNow.Add(-time.Minute)
	future := testNow.Add(time.Minute)

	t.Run("not found", func(t *testing.T) {
		rec := &countingRecorder{}
		svc, repo := setupURLService(t, WithRecorder(rec))

		repo.On("GetByShortCode", ctx, "abc123").Return(nil, database.ErrURLNotFound).Once()

		url, err := svc.RedirectToURL(ctx, "abc123")

		assert.ErrorIs(t, err, ErrNotFound)
		assert.Empty(t, url)
		assert.Equal(t, 1, rec.redirects[RedirectNotFound])
	})

	t.Run("storage error", func(t *testing.T) {
		svc, repo := setupURLService(t)

		repo.On("GetByShortCode", ctx, "abc123").Return(nil, errUnknown).Once()

		_, err := svc.RedirectToURL(ctx, "abc123")

		assert.ErrorIs(t, err, ErrInternal)
		assert.NotErrorIs(t, err, ErrNotFound)
	})

	t.Run("inactive", func(t *testing.T) {
		svc, repo := setupURLService(t)

		repo.On("GetByShortCode", ctx, "abc123").
			Return(&models.URL{ShortCode: "abc123", OriginalURL: "https://a.com", Clicks: 40}, nil).Once()

		_, err := svc.RedirectToURL(ctx, "abc123")

		assert.ErrorIs(t, err, ErrNotFound)
		repo.AssertNotCalled(t, "IncrementClicks", mock.Anything, mock.Anything)
	})

	t.Run("expired", func(t *testing.T) {
		svc, repo := setupURLService(t)

		repo.On("GetByShortCode", ctx, "abc123").
			Return(&models.URL{ShortCode: "abc123", OriginalURL: "https://a.com", IsActive: true, ExpiresAt: &past}, nil).Once()

		_, err := svc.RedirectToURL(ctx, "abc123")

		assert.ErrorIs(t, err, ErrNotFound)
		repo.AssertNotCalled(t, "IncrementClicks", mock.Anything, mock.Anything)
	})

	t.Run("expires exactly now", func(t *testing.T) {
		svc, repo := setupURLService(t)

		now := testNow
		repo.On("GetByShortCode", ctx, "abc123").
			Return(&models.URL{ShortCode: "abc123", OriginalURL: "https://a.com", IsActive: true, ExpiresAt: &now}, nil).Once()

		_, err := svc.RedirectToURL(ctx, "abc123")

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("increment failure does not fail the redirect", func(t *testing.T) {
		svc, repo := setupURLService(t)

		repo.On("GetByShortCode", ctx, "abc123").
			Return(&models.URL{ShortCode: "abc123", OriginalURL: "https://a.com", IsActive: true}, nil).Once()
		repo.On("IncrementClicks", ctx, "abc123").Return(errUnknown).Once()

		url, err := svc.RedirectToURL(ctx, "abc123")

		assert.NoError(t, err)
		assert.Equal(t, "https://a.com", url)
	})

	t.Run("success", func(t *testing.T) {
		rec := &countingRecorder{}
		svc, repo := setupURLService(t, WithRecorder(rec))

		repo.On("GetByShortCode", ctx, "abc123").
			Return(&models.URL{ShortCode: "abc123", OriginalURL: "https://a.com", IsActive: true, ExpiresAt: &future}, nil).Once()
		repo.On("IncrementClicks", ctx, "abc123").Return(nil).Once()

		url, err := svc.RedirectToURL(ctx, "abc123")

		assert.NoError(t, err)
		assert.Equal(t, "https://a.com", url)
		assert.Equal(t, 1, rec.redirects[RedirectOK])
	})
}

func TestURLService_GetURLStats(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		svc, repo := setupURLService(t)

		repo.On("GetByShortCode", ctx, "abc123").Return(nil, database.ErrURLNotFound).Once()

		_, err := svc.GetURLStats(ctx, "abc123")

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("inactive urls still have stats", func(t *testing.T) {
		svc, repo := setupURLService(t)

		stored := &models.URL{ShortCode: "abc123", Clicks: 12}
		repo.On("GetByShortCode", ctx, "abc123").Return(stored, nil).Once()

		url, err := svc.GetURLStats(ctx, "abc123")

		assert.NoError(t, err)
		assert.Equal(t, int64(12), url.Clicks)
	})
}

func TestURLService_GetTopURLs(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid limit", func(t *testing.T) {
		svc, _ := setupURLService(t)

		_, err := svc.GetTopURLs(ctx, 101)
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = svc.GetTopURLs(ctx, -1)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("default limit", func(t *testing.T) {
		svc, repo := setupURLService(t)

		repo.On("ListTop", ctx, DefaultPageLimit).Return([]*models.URL{{ShortCode: "abc123"}}, nil).Once()

		urls, err := svc.GetTopURLs(ctx, 0)

		assert.NoError(t, err)
		assert.Len(t, urls, 1)
	})

	t.Run("storage error", func(t *testing.T) {
		svc, repo := setupURLService(t)

		repo.On("ListTop", ctx, 5).Return(nil, errUnknown).Once()

		_, err := svc.GetTopURLs(ctx, 5)

		assert.ErrorIs(t, err, ErrInternal)
	})
}

func TestURLService_GetUserURLs(t *testing.T) {
	ctx := context.Background()

	invalid := []models.URLFilter{
		{Page: -1},
		{Limit: -5},
		{Limit: 101},
		{SortBy: "owner"},
		{SortOrder: "up"},
		{Query: strings.Repeat("a", MaxQueryLength+1)},
	}

	for _, f := range invalid {
		svc, _ := setupURLService(t)

		_, err := svc.GetUserURLs(ctx, "user-1", f)

		assert.ErrorIs(t, err, ErrInvalidInput, "%+v", f)
	}

	t.Run("query at the length limit", func(t *testing.T) {
		svc, repo := setupURLService(t)

		q := strings.Repeat("ü", MaxQueryLength)
		repo.On("ListByOwner", ctx, "user-1", mock.MatchedBy(func(f models.URLFilter) bool {
			return f.Query == q
		})).Return([]*models.URL{}, int64(0), nil).Once()

		_, err := svc.GetUserURLs(ctx, "user-1", models.URLFilter{Query: q})

		assert.NoError(t, err)
	})

	t.Run("defaults", func(t *testing.T) {
		svc, repo := setupURLService(t)

		want := models.URLFilter{Page: 1, Limit: 10, SortBy: models.SortByCreatedAt, SortOrder: models.SortDesc}
		repo.On("ListByOwner", ctx, "user-1", want).Return([]*models.URL{}, int64(0), nil).Once()

		page, err := svc.GetUserURLs(ctx, "user-1", models.URLFilter{})

		require.NoError(t, err)
		assert.Equal(t, models.Pagination{Page: 1, Total: 0, Pages: 0, Limit: 10}, page.Pagination)
	})

	t.Run("pages are rounded up", func(t *testing.T) {
		svc, repo := setupURLService(t)

		f := models.URLFilter{Page: 2, Limit: 10, Query: "docs", SortBy: models.SortByClicks, SortOrder: models.SortAsc}
		repo.On("ListByOwner", ctx, "user-1", f).Return(make([]*models.URL, 5), int64(15), nil).Once()

		page, err := svc.GetUserURLs(ctx, "user-1", f)

		require.NoError(t, err)
		assert.Len(t, page.Data, 5)
		assert.Equal(t, models.Pagination{Page: 2, Total: 15, Pages: 2, Limit: 10}, page.Pagination)
	})

	t.Run("storage error", func(t *testing.T) {
		svc, repo := setupURLService(t)

		repo.On("ListByOwner", ctx, "user-1", mock.Anything).Return(nil, int64(0), errUnknown).Once()

		_, err := svc.GetUserURLs(ctx, "user-1", models.URLFilter{})

		assert.ErrorIs(t, err, ErrInternal)
	})
}

func TestURLService_UpdateURL(t *testing.T) {
	ctx := context.Background()
	title := "New title"
	upd := models.URLUpdate{Title: &title}

	t.Run("not found", func(t *testing.T) {
		svc, repo := setupURLService(t)

		repo.On("GetByID", ctx, testID).Return(nil, database.ErrURLNotFound).Once()

		_, err := svc.UpdateURL(ctx, testID, "user-1", upd)

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("forbidden", func(t *testing.T) {
		svc, repo := setupURLService(t)

		repo.On("GetByID", ctx, testID).Return(&models.URL{ID: testID, OwnerID: "user-2"}, nil).Once()

		_, err := svc.UpdateURL(ctx, testID, "user-1", upd)

		assert.ErrorIs(t, err, ErrForbidden)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty update", func(t *testing.T) {
		svc, repo := setupURLService(t)

		stored := &models.URL{ID: testID, OwnerID: "user-1"}
		repo.On("GetByID", ctx, testID).Return(stored, nil).Once()

		url, err := svc.UpdateURL(ctx, testID, "user-1", models.URLUpdate{})

		assert.NoError(t, err)
		assert.Equal(t, stored, url)
	})

	t.Run("storage error", func(t *testing.T) {
		svc, repo := setupURLService(t)

		repo.On("GetByID", ctx, testID).Return(&models.URL{ID: testID, OwnerID: "user-1"}, nil).Once()
		repo.On("Update", ctx, testID, upd).Return(nil, errUnknown).Once()

		_, err := svc.UpdateURL(ctx, testID, "user-1", upd)

		assert.ErrorIs(t, err, ErrInternal)
	})

	t.Run("success", func(t *testing.T) {
		svc, repo := setupURLService(t)

		updated := &models.URL{ID: testID, OwnerID: "user-1", Title: &title}
		repo.On("GetByID", ctx, testID).Return(&models.URL{ID: testID, OwnerID: "user-1"}, nil).Once()
		repo.On("Update", ctx, testID, upd).Return(updated, nil).Once()

		url, err := svc.UpdateURL(ctx, testID, "user-1", upd)

		assert.NoError(t, err)
		assert.Equal(t, updated, url)
	})
}

func TestURLService_DeleteURL(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		svc, repo := setupURLService(t)

		repo.On("GetByID", ctx, testID).Return(nil, database.ErrURLNotFound).Once()

		deleted, err := svc.DeleteURL(ctx, testID, "user-1")

		assert.ErrorIs(t, err, ErrNotFound)
		assert.False(t, deleted)
	})

	t.Run("lookup error", func(t *testing.T) {
		svc, repo := setupURLService(t)

		repo.On("GetByID", ctx, testID).Return(nil, errUnknown).Once()

		_, err := svc.DeleteURL(ctx, testID, "user-1")

		assert.ErrorIs(t, err, ErrInternal)
	})

	t.Run("forbidden", func(t *testing.T) {
		svc, repo := setupURLService(t)

		repo.On("GetByID", ctx, testID).Return(&models.URL{ID: testID, OwnerID: "user-2"}, nil).Once()

		deleted, err := svc.DeleteURL(ctx, testID, "user-1")

		assert.ErrorIs(t, err, ErrForbidden)
		assert.False(t, deleted)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("success", func(t *testing.T) {
		svc, repo := setupURLService(t)

		repo.On("GetByID", ctx, testID).Return(&models.URL{ID: testID, OwnerID: "user-1"}, nil).Once()
		repo.On("Delete", ctx, testID).Return(true, nil).Once()

		deleted, err := svc.DeleteURL(ctx, testID, "user-1")

		assert.NoError(t, err)
		assert.True(t, deleted)
	})
}

func TestURLService_BulkDeleteURLs(t *testing.T) {
	ctx := context.Background()

	t.Run("no ids", func(t *testing.T) {
		svc, _ := setupURLService(t)

		_, err := svc.BulkDeleteURLs(ctx, "user-1", nil)

		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("too many ids", func(t *testing.T) {
		svc, _ := setupURLService(t)

		_, err := svc.BulkDeleteURLs(ctx, "user-1", make([]uuid.UUID, MaxBulkDelete+1))

		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("success", func(t *testing.T) {
		svc, repo := setupURLService(t)

		ids := []uuid.UUID{testID}
		repo.On("DeleteByOwner", ctx, "user-1", ids).Return(int64(1), nil).Once()

		n, err := svc.BulkDeleteURLs(ctx, "user-1", ids)

		assert.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}
