// Package reviewclient submits games to a remote review server over its
// websocket stream.
package reviewclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/Cheese-GameReview/pkg/reviewdto"
)

const (
	streamPath     = "/v1/reviews/stream"
	defaultDialTTL = 10 * time.Second
	// A finished review carries every FEN and prose line.
	readLimit = 8 << 20
)

// HeaderProvider injects handshake headers, e.g. an auth token.
type HeaderProvider func() map[string]string

type Client struct {
	wsURL          string
	dialTimeout    time.Duration
	headerProvider HeaderProvider
}

type Option func(*Client)

func WithDialTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.dialTimeout = d
		}
	}
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(c *Client) { c.headerProvider = h }
}

// New accepts an http(s) or ws(s) base URL of the review server.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported server url scheme: %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + streamPath
	c := &Client{wsURL: u.String(), dialTimeout: defaultDialTTL}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Review sends req and blocks until the server's result or error frame.
// progress, when set, sees every progress frame.
func (c *Client) Review(ctx context.Context, req reviewdto.SubmitRequest, progress func(ply, total int)) (*reviewdto.Review, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.dialTimeout)
	conn, _, err := websocket.Dial(dialCtx, c.wsURL, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
		HTTPHeader:      c.buildHeaders(),
	})
	cancel()
	if err != nil {
		return nil, fmt.Errorf("dial review server: %w", err)
	}
	defer conn.CloseNow()
	conn.SetReadLimit(readLimit)

	if err := wsjson.Write(ctx, conn, req); err != nil {
		return nil, fmt.Errorf("send review request: %w", err)
	}
	for {
		var f reviewdto.Frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			return nil, fmt.Errorf("read review frame: %w", err)
		}
		switch f.Type {
		case reviewdto.FrameProgress:
			if progress != nil {
				progress(f.Ply, f.Total)
			}
		case reviewdto.FrameResult:
			if f.Review == nil {
				return nil, errors.New("result frame without review")
			}
			_ = conn.Close(websocket.StatusNormalClosure, "")
			return f.Review, nil
		case reviewdto.FrameError:
			if f.Error == nil {
				return nil, errors.New("error frame without details")
			}
			return nil, *f.Error
		default:
			return nil, fmt.Errorf("unexpected frame type %q", f.Type)
		}
	}
}

func (c *Client) buildHeaders() http.Header {
	if c.headerProvider == nil {
		return nil
	}
	h := http.Header{}
	for k, v := range c.headerProvider() {
		if k == "" || v == "" {
			continue
		}
		h.Set(k, v)
	}
	return h
}
