package review

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/park285/Cheese-GameReview/internal/domain"
)

// memrepo keeps reviews in process memory. It is used when no database is
// configured and by tests.
type memrepo struct {
	mu      sync.RWMutex
	reviews map[string]*domain.Review
}

func NewMemoryRepository() Repository {
	return &memrepo{reviews: make(map[string]*domain.Review)}
}

func (m *memrepo) Insert(_ context.Context, rev *domain.Review) error {
	if rev == nil {
		return ErrDuplicateReview
	}
	key := strings.TrimSpace(rev.ID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.reviews[key]; exists {
		return ErrDuplicateReview
	}
	m.reviews[key] = cloneReview(rev)
	return nil
}

func (m *memrepo) Get(_ context.Context, id string) (*domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rev, ok := m.reviews[strings.TrimSpace(id)]
	if !ok {
		return nil, nil
	}
	return cloneReview(rev), nil
}

func (m *memrepo) List(_ context.Context, limit int) ([]domain.ReviewListItem, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	m.mu.RLock()
	items := make([]domain.ReviewListItem, 0, len(m.reviews))
	for _, rev := range m.reviews {
		items = append(items, rev.ListItem())
	}
	m.mu.RUnlock()

	// CreatedAt desc, then id desc, matching the SQL stores.
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func cloneReview(r *domain.Review) *domain.Review {
	c := *r
	c.Moves = append([]domain.ReviewedMove(nil), r.Moves...)
	if r.Tags != nil {
		c.Tags = make(map[string]string, len(r.Tags))
		for k, v := range r.Tags {
			c.Tags[k] = v
		}
	}
	return &c
}
