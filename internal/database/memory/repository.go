// Package memory implements URL storage in process memory. It is meant for
// development and tests; data does not survive a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vadimbarashkov/short-links/internal/database"
	"github.com/vadimbarashkov/short-links/internal/models"
)

type URLRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*models.URL
	byCode map[string]uuid.UUID
	now    func() time.Time
}

func NewURLRepository() *URLRepository {
	return &URLRepository{
		byID:   make(map[uuid.UUID]*models.URL),
		byCode: make(map[string]uuid.UUID),
		now:    time.Now,
	}
}

// clone copies u so that callers never share memory with the store.
func clone(u *models.URL) *models.URL {
	c := *u
	if u.Title != nil {
		t := *u.Title
		c.Title = &t
	}
	if u.Description != nil {
		d := *u.Description
		c.Description = &d
	}
	if u.ExpiresAt != nil {
		e := *u.ExpiresAt
		c.ExpiresAt = &e
	}
	return &c
}

func (r *URLRepository) Create(ctx context.Context, url *models.URL) (*models.URL, error) {
	const op = "database.memory.URLRepository.Create"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byCode[url.ShortCode]; ok {
		return nil, fmt.Errorf("%s: %w", op, database.ErrShortCodeExists)
	}

	rec := clone(url)
	rec.ID = uuid.New()
	rec.Clicks = 0
	rec.CreatedAt = r.now()
	rec.UpdatedAt = rec.CreatedAt

	r.byID[rec.ID] = rec
	r.byCode[rec.ShortCode] = rec.ID

	return clone(rec), nil
}

func (r *URLRepository) GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "database.memory.URLRepository.GetByShortCode"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byCode[shortCode]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
	}

	return clone(r.byID[id]), nil
}

func (r *URLRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.URL, error) {
	const op = "database.memory.URLRepository.GetByID"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
	}

	return clone(rec), nil
}

func (r *URLRepository) ExistsByShortCode(ctx context.Context, shortCode string) (bool, error) {
	const op = "database.memory.URLRepository.ExistsByShortCode"

	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byCode[shortCode]
	return ok, nil
}

func (r *URLRepository) IncrementClicks(ctx context.Context, shortCode string) error {
	const op = "database.memory.URLRepository.IncrementClicks"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byCode[shortCode]; ok {
		rec := r.byID[id]
		rec.Clicks++
		rec.UpdatedAt = r.now()
	}

	return nil
}

func (r *URLRepository) Update(ctx context.Context, id uuid.UUID, upd models.URLUpdate) (*models.URL, error) {
	const op = "database.memory.URLRepository.Update"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
	}

	if upd.Title != nil {
		t := *upd.Title
		rec.Title = &t
	}
	if upd.Description != nil {
		d := *upd.Description
		rec.Description = &d
	}
	if upd.IsActive != nil {
		rec.IsActive = *upd.IsActive
	}
	if upd.ExpiresAt != nil {
		e := *upd.ExpiresAt
		rec.ExpiresAt = &e
	}
	rec.UpdatedAt = r.now()

	return clone(rec), nil
}

func (r *URLRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	const op = "database.memory.URLRepository.Delete"

	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.deleteLocked(id), nil
}

func (r *URLRepository) deleteLocked(id uuid.UUID) bool {
	rec, ok := r.byID[id]
	if !ok {
		return false
	}

	delete(r.byCode, rec.ShortCode)
	delete(r.byID, id)

	return true
}

func (r *URLRepository) DeleteByOwner(ctx context.Context, ownerID string, ids []uuid.UUID) (int64, error) {
	const op = "database.memory.URLRepository.DeleteByOwner"

	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, id := range ids {
		if rec, ok := r.byID[id]; ok && rec.OwnerID == ownerID && r.deleteLocked(id) {
			n++
		}
	}

	return n, nil
}

func (r *URLRepository) ListByOwner(ctx context.Context, ownerID string, f models.URLFilter) ([]*models.URL, int64, error) {
	const op = "database.memory.URLRepository.ListByOwner"

	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(f.Query)

	var matched []*models.URL
	for _, rec := range r.byID {
		if rec.OwnerID != ownerID {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(rec.OriginalURL), q) &&
			!strings.Contains(strings.ToLower(rec.ShortCode), q) {
			continue
		}
		matched = append(matched, rec)
	}

	sort.Slice(matched, less(matched, f))

	total := int64(len(matched))

	start := f.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + f.Limit
	if f.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}

	page := make([]*models.URL, 0, end-start)
	for _, rec := range matched[start:end] {
		page = append(page, clone(rec))
	}

	return page, total, nil
}

func less(urls []*models.URL, f models.URLFilter) func(i, j int) bool {
	desc := f.SortOrder != models.SortAsc

	return func(i, j int) bool {
		a, b := urls[i], urls[j]

		var c int
		switch f.SortBy {
		case models.SortByClicks:
			c = compare(a.Clicks, b.Clicks)
		case models.SortByURL:
			c = strings.Compare(a.OriginalURL, b.OriginalURL)
		case models.SortByShortCode:
			c = strings.Compare(a.ShortCode, b.ShortCode)
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if c == 0 {
			c = strings.Compare(a.ID.String(), b.ID.String())
		}

		if desc {
			return c > 0
		}
		return c < 0
	}
}

func compare(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (r *URLRepository) ListTop(ctx context.Context, limit int) ([]*models.URL, error) {
	const op = "database.memory.URLRepository.ListTop"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.now()

	var live []*models.URL
	for _, rec := range r.byID {
		if rec.Redirectable(now) {
			live = append(live, rec)
		}
	}

	// Same order as the SQL store: clicks, then newest first.
	sort.Slice(live, func(i, j int) bool {
		a, b := live[i], live[j]
		if a.Clicks != b.Clicks {
			return a.Clicks > b.Clicks
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() > b.ID.String()
	})

	if limit > 0 && len(live) > limit {
		live = live[:limit]
	}

	top := make([]*models.URL, 0, len(live))
	for _, rec := range live {
		top = append(top, clone(rec))
	}

	return top, nil
}
