package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/short-links/internal/database"
	"github.com/vadimbarashkov/short-links/internal/models"
)

const urlColumns = `id, short_code, original_url, owner_id, clicks, title, description, is_active, expires_at, created_at, updated_at`

type urlRecord struct {
	ID          uuid.UUID  `db:"id"`
	ShortCode   string     `db:"short_code"`
	OriginalURL string     `db:"original_url"`
	OwnerID     string     `db:"owner_id"`
	Clicks      int64      `db:"clicks"`
	Title       *string    `db:"title"`
	Description *string    `db:"description"`
	IsActive    bool       `db:"is_active"`
	ExpiresAt   *time.Time `db:"expires_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func (r *urlRecord) ToURL() *models.URL {
	return &models.URL{
		ID:          r.ID,
		ShortCode:   r.ShortCode,
		OriginalURL: r.OriginalURL,
		OwnerID:     r.OwnerID,
		Clicks:      r.Clicks,
		Title:       r.Title,
		Description: r.Description,
		IsActive:    r.IsActive,
		ExpiresAt:   r.ExpiresAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toURLs(recs []urlRecord) []*models.URL {
	urls := make([]*models.URL, 0, len(recs))
	for i := range recs {
		urls = append(urls, recs[i].ToURL())
	}
	return urls
}

var sortColumns = map[string]string{
	models.SortByCreatedAt: "created_at",
	models.SortByClicks:    "clicks",
	models.SortByURL:       "original_url",
	models.SortByShortCode: "short_code",
}

func orderBy(f models.URLFilter) string {
	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = "created_at"
	}

	dir := "DESC"
	if f.SortOrder == models.SortAsc {
		dir = "ASC"
	}

	// id breaks ties so that pages never overlap.
	return fmt.Sprintf("%s %s, id %s", col, dir, dir)
}

type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{
		db: db,
	}
}

func (r *URLRepository) Create(ctx context.Context, url *models.URL) (*models.URL, error) {
	const op = "database.postgres.URLRepository.Create"

	rec := new(urlRecord)
	query := `INSERT INTO urls(short_code, original_url, owner_id, title, description, is_active, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + urlColumns

	err := r.db.GetContext(ctx, rec, query,
		url.ShortCode,
		url.OriginalURL,
		url.OwnerID,
		url.Title,
		url.Description,
		url.IsActive,
		url.ExpiresAt,
	)
	if err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrShortCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to create url record: %w", op, err)
	}

	return rec.ToURL(), nil
}

func (r *URLRepository) GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "database.postgres.URLRepository.GetByShortCode"

	rec := new(urlRecord)
	query := `SELECT ` + urlColumns + ` FROM urls WHERE short_code = $1`

	err := r.db.GetContext(ctx, rec, query, shortCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get url record: %w", op, err)
	}

	return rec.ToURL(), nil
}

func (r *URLRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.URL, error) {
	const op = "database.postgres.URLRepository.GetByID"

	rec := new(urlRecord)
	query := `SELECT ` + urlColumns + ` FROM urls WHERE id = $1`

	err := r.db.GetContext(ctx, rec, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get url record: %w", op, err)
	}

	return rec.ToURL(), nil
}

func (r *URLRepository) ExistsByShortCode(ctx context.Context, shortCode string) (bool, error) {
	const op = "database.postgres.URLRepository.ExistsByShortCode"

	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM urls WHERE short_code = $1)`

	if err := r.db.GetContext(ctx, &exists, query, shortCode); err != nil {
		return false, fmt.Errorf("%s: failed to check short code: %w", op, err)
	}

	return exists, nil
}

// IncrementClicks adds one click in a single statement. A missing short code is not an error.
func (r *URLRepository) IncrementClicks(ctx context.Context, shortCode string) error {
	const op = "database.postgres.URLRepository.IncrementClicks"

	query := `UPDATE urls
		SET clicks = clicks + 1, updated_at = NOW()
		WHERE short_code = $1`

	if _, err := r.db.ExecContext(ctx, query, shortCode); err != nil {
		return fmt.Errorf("%s: failed to increment clicks: %w", op, err)
	}

	return nil
}

func (r *URLRepository) Update(ctx context.Context, id uuid.UUID, upd models.URLUpdate) (*models.URL, error) {
	const op = "database.postgres.URLRepository.Update"

	rec := new(urlRecord)
	query := `UPDATE urls
		SET title = COALESCE($2, title),
			description = COALESCE($3, description),
			is_active = COALESCE($4, is_active),
			expires_at = COALESCE($5, expires_at),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + urlColumns

	err := r.db.GetContext(ctx, rec, query, id, upd.Title, upd.Description, upd.IsActive, upd.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to update url record: %w", op, err)
	}

	return rec.ToURL(), nil
}

func (r *URLRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	const op = "database.postgres.URLRepository.Delete"

	query := `DELETE FROM urls WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("%s: failed to delete url record: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}

	return n > 0, nil
}

func (r *URLRepository) DeleteByOwner(ctx context.Context, ownerID string, ids []uuid.UUID) (int64, error) {
	const op = "database.postgres.URLRepository.DeleteByOwner"

	if len(ids) == 0 {
		return 0, nil
	}

	strIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		strIDs = append(strIDs, id.String())
	}

	query, args, err := sqlx.In(`DELETE FROM urls WHERE owner_id = ? AND id IN (?)`, ownerID, strIDs)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to delete url records: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}

	return n, nil
}

func (r *URLRepository) ListByOwner(ctx context.Context, ownerID string, f models.URLFilter) ([]*models.URL, int64, error) {
	const op = "database.postgres.URLRepository.ListByOwner"

	where := `WHERE owner_id = $1`
	args := []any{ownerID}

	if f.Query != "" {
		where += ` AND (original_url ILIKE $2 OR short_code ILIKE $2)`
		args = append(args, containsPattern(f.Query))
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM urls `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("%s: failed to count url records: %w", op, err)
	}

	if total == 0 {
		return []*models.URL{}, 0, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM urls %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		urlColumns, where, orderBy(f), len(args)+1, len(args)+2)

	var recs []urlRecord
	if err := r.db.SelectContext(ctx, &recs, query, append(args, f.Limit, f.Offset())...); err != nil {
		return nil, 0, fmt.Errorf("%s: failed to list url records: %w", op, err)
	}

	return toURLs(recs), total, nil
}

// ListTop returns the most clicked links that can still be visited.
func (r *URLRepository) ListTop(ctx context.Context, limit int) ([]*models.URL, error) {
	const op = "database.postgres.URLRepository.ListTop"

	query := `SELECT ` + urlColumns + ` FROM urls
		WHERE is_active AND (expires_at IS NULL OR expires_at > NOW())
		ORDER BY clicks DESC, created_at DESC
		LIMIT $1`

	var recs []urlRecord
	if err := r.db.SelectContext(ctx, &recs, query, limit); err != nil {
		return nil, fmt.Errorf("%s: failed to list url records: %w", op, err)
	}

	return toURLs(recs), nil
}
