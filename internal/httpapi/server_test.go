package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/Cheese-GameReview/internal/chess/eval"
	"github.com/park285/Cheese-GameReview/internal/chess/eval/evaltest"
	"github.com/park285/Cheese-GameReview/internal/msgcat"
	"github.com/park285/Cheese-GameReview/internal/service/review"
	"github.com/park285/Cheese-GameReview/pkg/reviewdto"
)

const italian = `[White "Alice"]
[Black "Bob"]
[Result "*"]

1. e4 e5 2. Nf3 Nc6 3. Bc4 Bc5 *
`

type testEnv struct {
	srv    *httptest.Server
	ev     *evaltest.Fake
	limits []eval.Limit
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cat, err := msgcat.New("")
	require.NoError(t, err)
	env := &testEnv{ev: evaltest.New()}
	factory := func(l eval.Limit) (eval.Evaluator, error) {
		env.limits = append(env.limits, l)
		return env.ev, nil
	}
	svc, err := review.NewService(factory, nil, cat, review.NewMemoryRepository(), review.NewSVGBoardRenderer(), nil,
		review.Config{DefaultLimit: eval.DepthLimit(10)}, nil)
	require.NoError(t, err)
	env.srv = httptest.NewServer(NewServer(svc, nil).Handler())
	t.Cleanup(env.srv.Close)
	return env
}

func (e *testEnv) post(t *testing.T, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(e.srv.URL+"/v1/reviews", "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestSubmitGetList(t *testing.T) {
	env := newTestEnv(t)

	resp := env.post(t, reviewdto.SubmitRequest{PGN: italian, LimitType: "depth", DepthLimit: 8})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[reviewdto.Review](t, resp)
	assert.Equal(t, "Alice", created.White)
	require.Len(t, created.Moves, 6)
	assert.Equal(t, fmt.Sprintf("/v1/reviews/%s/positions/1.png", created.ID), created.Moves[0].ImageURL)
	assert.Equal(t, []eval.Limit{eval.DepthLimit(8)}, env.limits)

	got, err := http.Get(env.srv.URL + "/v1/reviews/" + created.ID)
	require.NoError(t, err)
	defer got.Body.Close()
	require.Equal(t, http.StatusOK, got.StatusCode)
	fetched := decode[reviewdto.Review](t, got)
	assert.Equal(t, created.Moves, fetched.Moves)

	list, err := http.Get(env.srv.URL + "/v1/reviews?limit=5")
	require.NoError(t, err)
	defer list.Body.Close()
	items := decode[reviewdto.ListResponse](t, list)
	require.Len(t, items.Reviews, 1)
	assert.Equal(t, created.ID, items.Reviews[0].ID)

	img, err := http.Get(env.srv.URL + created.Moves[2].ImageURL)
	require.NoError(t, err)
	defer img.Body.Close()
	assert.Equal(t, http.StatusOK, img.StatusCode)
	assert.Equal(t, "image/png", img.Header.Get("Content-Type"))
}

func TestSubmitValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name string
		body reviewdto.SubmitRequest
		want string
	}{
		{"missing pgn", reviewdto.SubmitRequest{}, "PGN is required"},
		{"bad tone", reviewdto.SubmitRequest{PGN: italian, Tone: "sarcastic"}, "Tone must be one of [standard roast]"},
		{"bad depth", reviewdto.SubmitRequest{PGN: italian, LimitType: "depth", DepthLimit: 99}, "DepthLimit must be at most 40"},
		{"depth missing", reviewdto.SubmitRequest{PGN: italian, LimitType: "depth"}, "invalid search limit"},
		{"illegal move", reviewdto.SubmitRequest{PGN: "1. e4 e5 2. Ke3 Ke6 3. Kxe6"}, "invalid review request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := env.post(t, tc.body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			body := decode[reviewdto.DomainError](t, resp)
			assert.Equal(t, reviewdto.CodeInvalidRequest, body.Code)
			assert.Contains(t, body.Message, tc.want)
		})
	}

	resp, err := http.Post(env.srv.URL+"/v1/reviews", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEvaluatorErrorsMapToGatewayStatus(t *testing.T) {
	env := newTestEnv(t)
	env.ev.Fail(eval.ErrEvaluatorTimeout)

	resp := env.post(t, reviewdto.SubmitRequest{PGN: italian})
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	body := decode[reviewdto.DomainError](t, resp)
	assert.Equal(t, reviewdto.CodeEvaluatorTimeout, body.Code)
	assert.True(t, body.Retryable)
}

func TestClassifyError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: x", review.ErrInvalidRequest), http.StatusBadRequest, reviewdto.CodeInvalidRequest},
		{review.ErrNotFound, http.StatusNotFound, reviewdto.CodeNotFound},
		{fmt.Errorf("ply 3: %w", eval.ErrMalformedResponse), http.StatusBadGateway, reviewdto.CodeEvaluatorMalformed},
		{eval.ErrEvaluatorFailure, http.StatusBadGateway, reviewdto.CodeEvaluatorFailure},
		{errors.New("disk full"), http.StatusInternalServerError, reviewdto.CodeInternal},
	}
	for _, tc := range cases {
		status, body := classifyError(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, body.Code, tc.err.Error())
	}
}

func TestNotFoundAndBadPly(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.srv.URL + "/v1/reviews/00000000-0000-4000-8000-000000000000")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp2, err := http.Get(env.srv.URL + "/v1/reviews/abc/positions/x.png")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)

	resp3, err := http.Get(env.srv.URL + "/v1/reviews?limit=-1")
	require.NoError(t, err)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp3.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/healthz", "/metrics"} {
		resp, err := http.Get(env.srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestStream(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(env.srv.URL, "http")+"/v1/reviews/stream", nil)
	require.NoError(t, err)
	defer conn.CloseNow()
	conn.SetReadLimit(4 << 20)

	require.NoError(t, wsjson.Write(ctx, conn, reviewdto.SubmitRequest{PGN: italian, Tone: "roast"}))

	var progress int
	for {
		var f reviewdto.Frame
		require.NoError(t, wsjson.Read(ctx, conn, &f))
		if f.Type == reviewdto.FrameProgress {
			assert.Equal(t, 6, f.Total)
			progress++
			continue
		}
		require.Equal(t, reviewdto.FrameResult, f.Type, "unexpected frame %+v", f)
		require.NotNil(t, f.Review)
		assert.Equal(t, "roast", f.Review.Tone)
		assert.Len(t, f.Review.Moves, 6)
		break
	}
	assert.Positive(t, progress)
}

func TestStreamRejectsInvalidRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(env.srv.URL, "http")+"/v1/reviews/stream", nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	require.NoError(t, wsjson.Write(ctx, conn, reviewdto.SubmitRequest{PGN: italian, LimitType: "hours"}))
	var f reviewdto.Frame
	require.NoError(t, wsjson.Read(ctx, conn, &f))
	assert.Equal(t, reviewdto.FrameError, f.Type)
	require.NotNil(t, f.Error)
	assert.Equal(t, reviewdto.CodeInvalidRequest, f.Error.Code)
}
