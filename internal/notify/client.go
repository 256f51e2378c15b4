// Package notify posts a short summary of every finished review to a webhook.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/Cheese-GameReview/internal/domain"
)

// HeaderProvider allows injecting per-request headers, e.g. an auth token.
type HeaderProvider func() map[string]string

// ReviewCompleted is the webhook body.
type ReviewCompleted struct {
	Event         string    `json:"event"`
	ReviewID      string    `json:"review_id"`
	CreatedAt     time.Time `json:"created_at"`
	White         string    `json:"white,omitempty"`
	Black         string    `json:"black,omitempty"`
	Result        string    `json:"result,omitempty"`
	Opening       string    `json:"opening,omitempty"`
	Plies         int       `json:"plies"`
	WhiteAccuracy float64   `json:"white_accuracy"`
	BlackAccuracy float64   `json:"black_accuracy"`
	WhiteRating   int       `json:"white_rating"`
	BlackRating   int       `json:"black_rating"`
	Blunders      int       `json:"blunders"`
	Summary       string    `json:"summary"`
}

const eventReviewCompleted = "review.completed"

type Client struct {
	url     string
	http    *fasthttp.Client
	headers HeaderProvider
	logger  *zap.Logger

	defaultTimeout time.Duration
	retryMax       int
	backoffBase    time.Duration
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.defaultTimeout = d
		}
	}
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(c *Client) { c.headers = h }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func withBackoffBase(d time.Duration) Option {
	return func(c *Client) { c.backoffBase = d }
}

func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url:            strings.TrimSpace(url),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		logger:         zap.NewNop(),
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
		backoffBase:    100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ReviewCompleted posts the summary of rev. Server errors are retried with
// backoff; client errors are not.
func (c *Client) ReviewCompleted(ctx context.Context, rev *domain.Review) error {
	if rev == nil {
		return errors.New("nil review")
	}
	body := ReviewCompleted{
		Event:         eventReviewCompleted,
		ReviewID:      rev.ID,
		CreatedAt:     rev.CreatedAt,
		White:         rev.White,
		Black:         rev.Black,
		Result:        rev.Result,
		Opening:       strings.TrimSpace(rev.OpeningCode + " " + rev.OpeningTitle),
		Plies:         len(rev.Moves),
		WhiteAccuracy: rev.WhiteSummary.Accuracy,
		BlackAccuracy: rev.BlackSummary.Accuracy,
		WhiteRating:   rev.WhiteSummary.Rating,
		BlackRating:   rev.BlackSummary.Rating,
		Blunders:      rev.WhiteSummary.Counts["blunder"] + rev.BlackSummary.Counts["blunder"],
		Summary:       rev.Summary,
	}
	if err := c.postJSON(ctx, body); err != nil {
		return err
	}
	c.logger.Debug("webhook_delivered", zap.String("review_id", rev.ID))
	return nil
}

func (c *Client) postJSON(ctx context.Context, in any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetRequestURI(c.url)
	req.Header.SetContentType("application/json")
	if c.headers != nil {
		for k, v := range c.headers() {
			if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
				req.Header.Set(k, v)
			}
		}
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req.SetBody(payload)

	attempts := max(c.retryMax, 1)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
		} else {
			status := resp.StatusCode()
			if status >= 200 && status < 300 {
				return nil
			}
			lastErr = fmt.Errorf("webhook error: status=%d body=%s", status, truncate(string(resp.Body()), 512))
			if !shouldRetryStatus(status) {
				return lastErr
			}
		}
		if attempt == attempts {
			break
		}
		c.logger.Debug("webhook_retry", zap.Int("attempt", attempt), zap.Error(lastErr))
		if sleepErr := sleepWithContext(ctx, c.backoffDuration(attempt)); sleepErr != nil {
			return lastErr
		}
	}
	return lastErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// backoffDuration doubles from the base: 100ms, 200ms, 400ms, capped at the
// sixth attempt.
func (c *Client) backoffDuration(attempt int) time.Duration {
	attempt = min(max(attempt, 1), 6)
	return time.Duration(1<<uint(attempt-1)) * c.backoffBase
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
