package reviewclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/Cheese-GameReview/pkg/reviewdto"
)

func streamServer(t *testing.T, frames func(req reviewdto.SubmitRequest) []reviewdto.Frame) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, streamPath, r.URL.Path)
		assert.Equal(t, "Bearer t0ken", r.Header.Get("Authorization"))
		conn, err := websocket.Accept(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		defer conn.CloseNow()
		var req reviewdto.SubmitRequest
		if !assert.NoError(t, wsjson.Read(r.Context(), conn, &req)) {
			return
		}
		for _, f := range frames(req) {
			if err := wsjson.Write(r.Context(), conn, f); err != nil {
				return
			}
		}
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, base string) *Client {
	t.Helper()
	c, err := New(base, WithHeaderProvider(func() map[string]string {
		return map[string]string{"Authorization": "Bearer t0ken", "X-Empty": ""}
	}))
	require.NoError(t, err)
	return c
}

func TestReviewStreamsProgress(t *testing.T) {
	srv := streamServer(t, func(req reviewdto.SubmitRequest) []reviewdto.Frame {
		return []reviewdto.Frame{
			{Type: reviewdto.FrameProgress, Ply: 1, Total: 2},
			{Type: reviewdto.FrameProgress, Ply: 2, Total: 2},
			{Type: reviewdto.FrameResult, Review: &reviewdto.Review{ID: "r1", Tone: req.Tone}},
		}
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var seen []int
	rev, err := newClient(t, srv.URL).Review(ctx, reviewdto.SubmitRequest{PGN: "1. e4 e5", Tone: "roast"}, func(ply, total int) {
		seen = append(seen, ply)
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", rev.ID)
	assert.Equal(t, "roast", rev.Tone)
	assert.Equal(t, []int{1, 2}, seen)
}

func TestReviewReturnsServerError(t *testing.T) {
	srv := streamServer(t, func(reviewdto.SubmitRequest) []reviewdto.Frame {
		return []reviewdto.Frame{{Type: reviewdto.FrameError, Error: &reviewdto.DomainError{
			Code: reviewdto.CodeEvaluatorTimeout, Message: "evaluator timed out", Retryable: true,
		}}}
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := newClient(t, srv.URL).Review(ctx, reviewdto.SubmitRequest{PGN: "1. e4"}, nil)
	var derr reviewdto.DomainError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, reviewdto.CodeEvaluatorTimeout, derr.Code)
	assert.True(t, derr.Retryable)
}

func TestNewNormalizesURL(t *testing.T) {
	c, err := New("https://review.example.com/api/")
	require.NoError(t, err)
	assert.Equal(t, "wss://review.example.com/api/v1/reviews/stream", c.wsURL)

	c, err = New("ws://localhost:8080")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/v1/reviews/stream", c.wsURL)

	_, err = New("ftp://localhost")
	assert.Error(t, err)
}
