package review

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/park285/Cheese-GameReview/internal/domain"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS chess_reviews (
		id             TEXT PRIMARY KEY,
		created_at     TIMESTAMP NOT NULL,
		white          TEXT NOT NULL DEFAULT '',
		black          TEXT NOT NULL DEFAULT '',
		result         TEXT NOT NULL DEFAULT '',
		opening_code   TEXT NOT NULL DEFAULT '',
		plies          INTEGER NOT NULL,
		white_accuracy REAL NOT NULL,
		black_accuracy REAL NOT NULL,
		payload        TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS chess_reviews_created_at_idx ON chess_reviews (created_at DESC);`

type sqliteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository switches the database to WAL and creates the schema.
// db must come from the go-sqlite3 driver.
func NewSQLiteRepository(ctx context.Context, db *sql.DB) (Repository, error) {
	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("enable wal: %w", err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout=5000`); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("create chess_reviews: %w", err)
	}
	return &sqliteRepository{db: db}, nil
}

func (r *sqliteRepository) Insert(ctx context.Context, rev *domain.Review) error {
	if rev == nil {
		return fmt.Errorf("nil review payload")
	}
	payload, err := json.Marshal(rev)
	if err != nil {
		return fmt.Errorf("marshal review: %w", err)
	}

	const query = `
		INSERT INTO chess_reviews (
			id, created_at, white, black, result, opening_code,
			plies, white_accuracy, black_accuracy, payload
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query,
		rev.ID,
		rev.CreatedAt.UTC(),
		rev.White,
		rev.Black,
		rev.Result,
		rev.OpeningCode,
		len(rev.Moves),
		rev.WhiteSummary.Accuracy,
		rev.BlackSummary.Accuracy,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	if n == 0 {
		return ErrDuplicateReview
	}
	return nil
}

func (r *sqliteRepository) Get(ctx context.Context, id string) (*domain.Review, error) {
	return scanPayload(r.db.QueryRowContext(ctx, `SELECT payload FROM chess_reviews WHERE id = ?`, id))
}

func (r *sqliteRepository) List(ctx context.Context, limit int) ([]domain.ReviewListItem, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	const query = `
		SELECT id, created_at, white, black, result, opening_code,
			plies, white_accuracy, black_accuracy
		FROM chess_reviews
		ORDER BY created_at DESC, id DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("select reviews: %w", err)
	}
	return scanListItems(rows, limit)
}
