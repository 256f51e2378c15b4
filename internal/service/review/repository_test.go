package review

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/park285/Cheese-GameReview/internal/domain"
)

func sampleReview(id string, at time.Time, white string) *domain.Review {
	return &domain.Review{
		ID:        id,
		CreatedAt: at,
		White:     white,
		Black:     "Bob",
		Result:    "1-0",
		Tags:      map[string]string{"White": white},
		Moves: []domain.ReviewedMove{
			{Ply: 1, Color: "white", UCI: "e2e4", SAN: "e4", Classification: "book", Text: "This is a book move."},
		},
		WhiteSummary: domain.SideSummary{Accuracy: 91.5, Rating: 2100},
		BlackSummary: domain.SideSummary{Accuracy: 70},
	}
}

func exerciseRepository(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := repo.Insert(ctx, sampleReview("a", base, "Alice")); err != nil {
		t.Fatalf("Insert a: %v", err)
	}
	if err := repo.Insert(ctx, sampleReview("b", base.Add(time.Minute), "Carol")); err != nil {
		t.Fatalf("Insert b: %v", err)
	}
	if err := repo.Insert(ctx, sampleReview("a", base, "Mallory")); !errors.Is(err, ErrDuplicateReview) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	got, err := repo.Get(ctx, "a")
	if err != nil || got == nil {
		t.Fatalf("Get a: %v %v", got, err)
	}
	if got.White != "Alice" || len(got.Moves) != 1 || got.Moves[0].SAN != "e4" {
		t.Fatalf("unexpected review: %+v", got)
	}
	if got.Tags["White"] != "Alice" {
		t.Fatalf("tags not kept: %v", got.Tags)
	}

	missing, err := repo.Get(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("expected nil, nil for unknown id, got %v %v", missing, err)
	}

	items, err := repo.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 || items[0].ID != "b" || items[1].ID != "a" {
		t.Fatalf("expected newest first, got %+v", items)
	}
	if items[1].Plies != 1 || items[1].WhiteAccuracy != 91.5 {
		t.Fatalf("list item columns wrong: %+v", items[1])
	}

	items, err = repo.List(ctx, 1)
	if err != nil || len(items) != 1 {
		t.Fatalf("List(1): %v %v", items, err)
	}
}

func TestMemoryRepository(t *testing.T) {
	exerciseRepository(t, NewMemoryRepository())
}

func TestMemoryRepositoryReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	rev := sampleReview("x", time.Now(), "Alice")
	if err := repo.Insert(ctx, rev); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	rev.Moves[0].SAN = "changed"
	got, _ := repo.Get(ctx, "x")
	if got.Moves[0].SAN != "e4" {
		t.Fatalf("stored review aliased the caller's slice")
	}
	got.Tags["White"] = "changed"
	again, _ := repo.Get(ctx, "x")
	if again.Tags["White"] != "Alice" {
		t.Fatalf("stored review aliased the returned map")
	}
}

func TestSQLiteRepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reviews.db")
	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	repo, err := NewSQLiteRepository(context.Background(), db)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	exerciseRepository(t, repo)

	var mode string
	if err := db.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("expected wal journal, got %q", mode)
	}

	// Opening again over an existing schema is fine.
	if _, err := NewSQLiteRepository(context.Background(), db); err != nil {
		t.Fatalf("reopen: %v", err)
	}
}

func TestPostgresRepository(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_URL not set")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	repo := NewRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if _, err := db.ExecContext(ctx, `TRUNCATE chess_reviews`); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	exerciseRepository(t, repo)
}
