package uci

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/park285/Cheese-GameReview/internal/obslog"
)

var ErrPoolClosed = errors.New("engine pool closed")

type PoolConfig struct {
	BinaryPath string
	Options    Options
	// Size caps the live engine processes. Zero derives it from the CPU count.
	Size int
}

// Pool runs up to Size engine processes that share one option set. A
// session belongs to one caller between Acquire and Release.
type Pool struct {
	binaryPath string
	opt        Options

	// slots holds one token per live process.
	slots chan struct{}
	idle  chan *Session

	mu     sync.Mutex
	closed bool
}

func NewPool(cfg PoolConfig) (*Pool, error) {
	if cfg.BinaryPath == "" {
		return nil, fmt.Errorf("binary path required")
	}
	if _, err := os.Stat(cfg.BinaryPath); err != nil {
		return nil, fmt.Errorf("stockfish binary check: %w", err)
	}
	if err := validateOptions(cfg.Options); err != nil {
		return nil, err
	}
	size := cfg.Size
	if size <= 0 {
		size = DefaultSize()
	}
	return &Pool{
		binaryPath: cfg.BinaryPath,
		opt:        cfg.Options,
		slots:      make(chan struct{}, size),
		idle:       make(chan *Session, size),
	}, nil
}

// Acquire returns an idle session, starts a new process when the pool has
// room, or waits for a release.
func (p *Pool) Acquire(ctx context.Context) (*Session, error) {
	for {
		if p.isClosed() {
			return nil, ErrPoolClosed
		}
		select {
		case s := <-p.idle:
			if p.ready(ctx, s) {
				return s, nil
			}
			continue
		default:
		}

		select {
		case s := <-p.idle:
			if p.ready(ctx, s) {
				return s, nil
			}
		case p.slots <- struct{}{}:
			s, err := NewSession(ctx, p.binaryPath, p.opt)
			if err != nil {
				<-p.slots
				return nil, err
			}
			obslog.L().Debug("uci_session_started",
				zap.Int("threads", p.opt.Threads), zap.Int("hash_mb", p.opt.HashMB))
			return s, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Release hands s back. A non-nil err means the session is in an unknown
// state and its process is stopped.
func (p *Pool) Release(s *Session, err error) {
	if s == nil {
		return
	}
	if err == nil {
		p.mu.Lock()
		if !p.closed {
			select {
			case p.idle <- s:
				p.mu.Unlock()
				return
			default:
			}
		}
		p.mu.Unlock()
	}
	p.drop(s, err)
}

// Close stops the idle processes. Sessions still out are stopped when they
// are released.
func (p *Pool) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	var errs []error
	for {
		select {
		case s := <-p.idle:
			if err := s.Close(); err != nil {
				errs = append(errs, err)
			}
			<-p.slots
		default:
			return errors.Join(errs...)
		}
	}
}

func (p *Pool) ready(ctx context.Context, s *Session) bool {
	if err := s.EnsureReady(ctx); err != nil {
		p.drop(s, err)
		return false
	}
	return true
}

func (p *Pool) drop(s *Session, err error) {
	if err != nil {
		obslog.L().Warn("uci_session_discarded", zap.Error(err))
	}
	_ = s.Close()
	<-p.slots
}

func (p *Pool) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// DefaultSize is the process cap used when none is configured: the CPU
// count clamped to [2, 4].
func DefaultSize() int {
	cpu := runtime.NumCPU()
	if cpu < 2 {
		return 2
	}
	if cpu > 4 {
		return 4
	}
	return cpu
}
