package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/park285/Cheese-GameReview/internal/domain"
)

func sampleReview() *domain.Review {
	return &domain.Review{
		ID:           "3f1c2b7e-0000-4000-8000-000000000001",
		White:        "Alice",
		Black:        "Bob",
		OpeningCode:  "C50",
		OpeningTitle: "Italian Game",
		Moves:        make([]domain.ReviewedMove, 7),
		WhiteSummary: domain.SideSummary{Accuracy: 97.5, Rating: 2400, Counts: map[string]int{"blunder": 1}},
		BlackSummary: domain.SideSummary{Accuracy: 41, Rating: 600, Counts: map[string]int{"blunder": 2}},
		Summary:      "summary text",
	}
}

func TestReviewCompletedRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	var got ReviewCompleted
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "secret", r.Header.Get("X-Webhook-Token"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL,
		WithRetry(3),
		withBackoffBase(time.Millisecond),
		WithHeaderProvider(func() map[string]string { return map[string]string{"X-Webhook-Token": "secret", "": "skipped"} }),
	)
	require.NoError(t, c.ReviewCompleted(context.Background(), sampleReview()))
	assert.EqualValues(t, 3, calls.Load())

	assert.Equal(t, "review.completed", got.Event)
	assert.Equal(t, "C50 Italian Game", got.Opening)
	assert.Equal(t, 7, got.Plies)
	assert.Equal(t, 97.5, got.WhiteAccuracy)
	assert.Equal(t, 3, got.Blunders)
}

func TestReviewCompletedDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, withBackoffBase(time.Millisecond)).ReviewCompleted(context.Background(), sampleReview())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=400")
	assert.EqualValues(t, 1, calls.Load())
}

func TestReviewCompletedGivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, WithRetry(2), withBackoffBase(time.Millisecond)).ReviewCompleted(context.Background(), sampleReview())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=502")
	assert.EqualValues(t, 2, calls.Load())

	assert.Error(t, NewClient(srv.URL).ReviewCompleted(context.Background(), nil))
}

func TestBackoffDuration(t *testing.T) {
	c := NewClient("http://example.invalid")
	assert.Equal(t, 100*time.Millisecond, c.backoffDuration(0))
	assert.Equal(t, 400*time.Millisecond, c.backoffDuration(3))
	assert.Equal(t, 3200*time.Millisecond, c.backoffDuration(12))
}
