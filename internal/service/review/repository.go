package review

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/park285/Cheese-GameReview/internal/domain"
)

var ErrDuplicateReview = errors.New("review already exists")

// Repository stores finished reviews. Get returns nil, nil for an unknown id.
type Repository interface {
	Insert(ctx context.Context, r *domain.Review) error
	Get(ctx context.Context, id string) (*domain.Review, error)
	List(ctx context.Context, limit int) ([]domain.ReviewListItem, error)
}

const defaultListLimit = 10

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS chess_reviews (
		id             TEXT PRIMARY KEY,
		created_at     TIMESTAMPTZ NOT NULL,
		white          TEXT NOT NULL DEFAULT '',
		black          TEXT NOT NULL DEFAULT '',
		result         TEXT NOT NULL DEFAULT '',
		opening_code   TEXT NOT NULL DEFAULT '',
		plies          INTEGER NOT NULL,
		white_accuracy DOUBLE PRECISION NOT NULL,
		black_accuracy DOUBLE PRECISION NOT NULL,
		payload        JSONB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS chess_reviews_created_at_idx ON chess_reviews (created_at DESC);`

type PostgresRepository struct {
	db *sql.DB
}

// NewRepository returns the postgres repository. Migrate creates the table.
func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create chess_reviews: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Insert(ctx context.Context, rev *domain.Review) error {
	if rev == nil {
		return fmt.Errorf("nil review payload")
	}
	payload, err := json.Marshal(rev)
	if err != nil {
		return fmt.Errorf("marshal review: %w", err)
	}

	const query = `
		INSERT INTO chess_reviews (
			id,
			created_at,
			white,
			black,
			result,
			opening_code,
			plies,
			white_accuracy,
			black_accuracy,
			payload
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb)
		ON CONFLICT (id) DO NOTHING
		RETURNING id`

	var id sql.NullString
	err = r.db.QueryRowContext(
		ctx,
		query,
		rev.ID,
		rev.CreatedAt,
		rev.White,
		rev.Black,
		rev.Result,
		rev.OpeningCode,
		len(rev.Moves),
		rev.WhiteSummary.Accuracy,
		rev.BlackSummary.Accuracy,
		payload,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !id.Valid) {
		return ErrDuplicateReview
	}
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*domain.Review, error) {
	const query = `SELECT payload FROM chess_reviews WHERE id = $1`
	return scanPayload(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) List(ctx context.Context, limit int) ([]domain.ReviewListItem, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	const query = `
		SELECT
			id,
			created_at,
			white,
			black,
			result,
			opening_code,
			plies,
			white_accuracy,
			black_accuracy
		FROM chess_reviews
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("select reviews: %w", err)
	}
	return scanListItems(rows, limit)
}

func scanPayload(row *sql.Row) (*domain.Review, error) {
	var payload []byte
	err := row.Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select review: %w", err)
	}
	var rev domain.Review
	if err := json.Unmarshal(payload, &rev); err != nil {
		return nil, fmt.Errorf("unmarshal review: %w", err)
	}
	return &rev, nil
}

func scanListItems(rows *sql.Rows, limit int) ([]domain.ReviewListItem, error) {
	defer rows.Close()
	items := make([]domain.ReviewListItem, 0, limit)
	for rows.Next() {
		var it domain.ReviewListItem
		if err := rows.Scan(
			&it.ID,
			&it.CreatedAt,
			&it.White,
			&it.Black,
			&it.Result,
			&it.OpeningCode,
			&it.Plies,
			&it.WhiteAccuracy,
			&it.BlackAccuracy,
		); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return items, nil
}
