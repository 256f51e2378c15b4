package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/Cheese-GameReview/pkg/reviewdto"
)

const (
	streamReadTimeout  = 30 * time.Second
	streamWriteTimeout = 10 * time.Second
	streamFrameBuffer  = 16
)

// stream reads one SubmitRequest from the socket, then sends a progress frame
// per reviewed ply followed by a single result or error frame.
func (s *Server) stream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		s.logger.Warn("review_stream_accept_failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(maxBodyBytes)

	readCtx, cancel := context.WithTimeout(r.Context(), streamReadTimeout)
	var body reviewdto.SubmitRequest
	err = wsjson.Read(readCtx, conn, &body)
	cancel()
	if err != nil {
		s.writeFrame(r.Context(), conn, reviewdto.Frame{Type: reviewdto.FrameError, Error: &reviewdto.DomainError{
			Code: reviewdto.CodeInvalidRequest, Message: "read request: " + err.Error(),
		}})
		_ = conn.Close(websocket.StatusPolicyViolation, "bad request")
		return
	}

	req, derr := s.submitRequest(body)
	if derr != nil {
		s.writeFrame(r.Context(), conn, reviewdto.Frame{Type: reviewdto.FrameError, Error: derr})
		_ = conn.Close(websocket.StatusNormalClosure, "")
		return
	}

	// The client sends nothing after the request; CloseRead cancels ctx when
	// the peer goes away.
	ctx, stop := context.WithCancel(conn.CloseRead(r.Context()))
	defer stop()

	frames := make(chan reviewdto.Frame, streamFrameBuffer)
	req.Progress = func(done, total int) {
		select {
		case frames <- reviewdto.Frame{Type: reviewdto.FrameProgress, Ply: done, Total: total}:
		default:
			// a slow reader skips progress frames, never the result
		}
	}

	done := make(chan reviewdto.Frame, 1)
	go func() {
		rev, err := s.svc.Submit(ctx, req)
		if err != nil {
			_, body := classifyError(err)
			done <- reviewdto.Frame{Type: reviewdto.FrameError, Error: &body}
			return
		}
		done <- reviewdto.Frame{Type: reviewdto.FrameResult, Review: ToReview(rev)}
	}()

	for {
		select {
		case f := <-frames:
			if !s.writeFrame(ctx, conn, f) {
				stop()
				<-done
				return
			}
		case result := <-done:
			for drained := false; !drained; {
				select {
				case f := <-frames:
					s.writeFrame(ctx, conn, f)
				default:
					drained = true
				}
			}
			if s.writeFrame(ctx, conn, result) {
				_ = conn.Close(websocket.StatusNormalClosure, "")
			}
			return
		}
	}
}

func (s *Server) writeFrame(ctx context.Context, conn *websocket.Conn, f reviewdto.Frame) bool {
	wctx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()
	if err := wsjson.Write(wctx, conn, f); err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Warn("review_stream_write_failed", zap.String("frame", f.Type), zap.Error(err))
		}
		return false
	}
	return true
}
