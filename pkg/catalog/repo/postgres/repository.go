package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/media-catalog/pkg/catalog"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements catalog.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("duplicate entry in %s: %s", operation, pgErr.ConstraintName)
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "23514": // check_violation
			return fmt.Errorf("check constraint %s violated in %s", pgErr.ConstraintName, operation)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

const contentColumns = `id, title, category, description, thumbnail_url, video_url,
	status, visibility, tags, publish_date, release_year, duration, views,
	created_at, updated_at`

func scanContent(row pgx.Row) (*catalog.Content, error) {
	var (
		content            catalog.Content
		status, visibility string
	)
	err := row.Scan(
		&content.ID, &content.Title, &content.Category, &content.Description,
		&content.ThumbnailURL, &content.VideoURL, &status, &visibility,
		&content.Tags, &content.PublishDate, &content.ReleaseYear, &content.Duration,
		&content.Views, &content.CreatedAt, &content.UpdatedAt)
	if err != nil {
		return nil, err
	}
	content.Status = catalog.ContentStatus(status)
	content.Visibility = catalog.Visibility(visibility)
	if content.Tags == nil {
		content.Tags = []string{}
	}
	return &content, nil
}

// Content operations

func (r *Repository) ListContent(ctx context.Context) ([]*catalog.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM content ORDER BY publish_date DESC, created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, r.handlePostgresError("list content", err)
	}
	defer rows.Close()

	contents := []*catalog.Content{}
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			return nil, r.handlePostgresError("list content", err)
		}
		contents = append(contents, content)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list content", err)
	}

	return contents, nil
}

func (r *Repository) GetContent(ctx context.Context, id uuid.UUID) (*catalog.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM content WHERE id = $1`

	content, err := scanContent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrContentNotFound
		}
		return nil, r.handlePostgresError("get content", err)
	}
	return content, nil
}

// SaveContent upserts by id. views is written on insert only.
func (r *Repository) SaveContent(ctx context.Context, content *catalog.Content) error {
	query := `
		INSERT INTO content (
			id, title, category, description, thumbnail_url, video_url,
			status, visibility, tags, publish_date, release_year, duration,
			views, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			category = EXCLUDED.category,
			description = EXCLUDED.description,
			thumbnail_url = EXCLUDED.thumbnail_url,
			video_url = EXCLUDED.video_url,
			status = EXCLUDED.status,
			visibility = EXCLUDED.visibility,
			tags = EXCLUDED.tags,
			publish_date = EXCLUDED.publish_date,
			release_year = EXCLUDED.release_year,
			duration = EXCLUDED.duration,
			updated_at = EXCLUDED.updated_at`

	tags := content.Tags
	if tags == nil {
		tags = []string{}
	}

	_, err := r.db.Exec(ctx, query,
		content.ID, content.Title, content.Category, content.Description,
		content.ThumbnailURL, content.VideoURL, string(content.Status), string(content.Visibility),
		tags, content.PublishDate, content.ReleaseYear, content.Duration,
		content.Views, content.CreatedAt, content.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("save content", err)
	}
	return nil
}

func (r *Repository) DeleteContent(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM content WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete content", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrContentNotFound
	}
	return nil
}

func (r *Repository) IncrementViews(ctx context.Context, id uuid.UUID) (*catalog.Content, error) {
	query := `UPDATE content SET views = views + 1 WHERE id = $1 RETURNING ` + contentColumns

	content, err := scanContent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrContentNotFound
		}
		return nil, r.handlePostgresError("increment views", err)
	}
	return content, nil
}

// User operations

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*catalog.User, error) {
	query := `SELECT id, name, email, role, watchlist, created_at, updated_at FROM users WHERE id = $1`

	var (
		user      catalog.User
		role      string
		watchlist []byte
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Email, &role, &watchlist, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrUserNotFound
		}
		return nil, r.handlePostgresError("get user", err)
	}

	user.Role = catalog.UserRole(role)
	if user.Watchlist, err = decodeWatchlist(id, watchlist); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) CreateUser(ctx context.Context, user *catalog.User) error {
	watchlist, err := encodeWatchlist(user.Watchlist)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO users (id, name, email, role, watchlist, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.db.Exec(ctx, query,
		user.ID, user.Name, user.Email, string(user.Role), watchlist, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return catalog.ErrUserExists
		}
		return r.handlePostgresError("create user", err)
	}
	return nil
}

// AddWatchlistEntry appends in a single UPDATE. Row locking makes a
// concurrent add of the same content re-check the containment filter
// against the committed watchlist.
func (r *Repository) AddWatchlistEntry(ctx context.Context, userID uuid.UUID, entry catalog.WatchlistEntry) ([]catalog.WatchlistEntry, error) {
	appended, err := encodeWatchlist([]catalog.WatchlistEntry{entry})
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE users SET
			watchlist = COALESCE(watchlist, '[]'::jsonb) || $2::jsonb,
			updated_at = $3
		WHERE id = $1 AND NOT COALESCE(watchlist, '[]'::jsonb) @> $4::jsonb
		RETURNING watchlist`

	var watchlist []byte
	err = r.db.QueryRow(ctx, query, userID, appended, entry.AddedAt, containsContent(entry.ContentID)).Scan(&watchlist)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, r.handlePostgresError("add watchlist entry", err)
		}
		exists, err := r.userExists(ctx, userID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, catalog.ErrAlreadyInWatchlist
		}
		return nil, catalog.ErrUserNotFound
	}
	return decodeWatchlist(userID, watchlist)
}

func (r *Repository) RemoveWatchlistEntry(ctx context.Context, userID, contentID uuid.UUID, updatedAt time.Time) ([]catalog.WatchlistEntry, bool, error) {
	query := `
		UPDATE users SET
			watchlist = COALESCE((
				SELECT jsonb_agg(e.value ORDER BY e.ordinality)
				FROM jsonb_array_elements(users.watchlist) WITH ORDINALITY AS e(value, ordinality)
				WHERE e.value->>'contentId' <> $2
			), '[]'::jsonb),
			updated_at = $3
		WHERE id = $1 AND watchlist @> $4::jsonb
		RETURNING watchlist`

	var watchlist []byte
	err := r.db.QueryRow(ctx, query, userID, contentID.String(), updatedAt, containsContent(contentID)).Scan(&watchlist)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, false, r.handlePostgresError("remove watchlist entry", err)
		}
		// Nothing matched: either an unknown user or an absent content
		user, err := r.GetUser(ctx, userID)
		if err != nil {
			return nil, false, err
		}
		return user.Watchlist, false, nil
	}

	entries, err := decodeWatchlist(userID, watchlist)
	if err != nil {
		return nil, false, err
	}
	return entries, true, nil
}

func (r *Repository) userExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, r.handlePostgresError("check user", err)
	}
	return exists, nil
}

// containsContent is the jsonb containment operand matching any entry for id
func containsContent(id uuid.UUID) string {
	return fmt.Sprintf(`[{"contentId": %q}]`, id.String())
}

func decodeWatchlist(userID uuid.UUID, data []byte) ([]catalog.WatchlistEntry, error) {
	entries := []catalog.WatchlistEntry{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to decode watchlist of user %s: %w", userID, err)
		}
	}
	return entries, nil
}

func encodeWatchlist(entries []catalog.WatchlistEntry) ([]byte, error) {
	if entries == nil {
		entries = []catalog.WatchlistEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to encode watchlist: %w", err)
	}
	return data, nil
}
