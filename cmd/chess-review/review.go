package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/park285/Cheese-GameReview/internal/chess/eval"
	"github.com/park285/Cheese-GameReview/internal/config"
	"github.com/park285/Cheese-GameReview/internal/httpapi"
	"github.com/park285/Cheese-GameReview/internal/obslog"
	"github.com/park285/Cheese-GameReview/internal/reviewbuilder"
	"github.com/park285/Cheese-GameReview/internal/reviewclient"
	"github.com/park285/Cheese-GameReview/internal/service/review"
	"github.com/park285/Cheese-GameReview/pkg/reviewdto"
)

type reviewOptions struct {
	tone        string
	limitType   string
	seconds     float64
	depth       int
	jsonOut     bool
	concurrency int
	server      string
}

// reviewFunc reviews one game, locally or against a server.
type reviewFunc func(ctx context.Context, req reviewdto.SubmitRequest) (*reviewdto.Review, error)

type input struct {
	name string
	pgn  string
}

type outcome struct {
	Name   string            `json:"name"`
	Review *reviewdto.Review `json:"review,omitempty"`
	Error  string            `json:"error,omitempty"`
}

func newReviewCmd() *cobra.Command {
	opts := &reviewOptions{}
	cmd := &cobra.Command{
		Use:   "review [pgn files...]",
		Short: "Review one or more PGN games (stdin when no file is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReview(cmd, args, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.tone, "tone", "", "prose tone: standard or roast (default from config)")
	f.StringVar(&opts.limitType, "limit-type", "", "search limit: time or depth (default from config)")
	f.Float64Var(&opts.seconds, "time", 0.25, "seconds per position with --limit-type=time")
	f.IntVar(&opts.depth, "depth", 15, "plies per position with --limit-type=depth")
	f.BoolVar(&opts.jsonOut, "json", false, "print the reviews as JSON")
	f.IntVar(&opts.concurrency, "concurrency", 2, "games reviewed at once")
	f.StringVar(&opts.server, "server", "", "review on a remote server (http or ws URL) instead of a local engine")
	return cmd
}

func runReview(cmd *cobra.Command, args []string, opts *reviewOptions) error {
	inputs, err := readInputs(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	req := reviewdto.SubmitRequest{Tone: opts.tone}
	if opts.limitType != "" {
		if _, err := eval.ParseLimit(opts.limitType, opts.seconds, opts.depth); err != nil {
			return err
		}
		req.LimitType = opts.limitType
		req.TimeLimit = opts.seconds
		req.DepthLimit = opts.depth
	}

	run, closeFn, err := newReviewFunc(opts.server)
	if err != nil {
		return err
	}
	defer closeFn()

	results := reviewAll(cmd.Context(), inputs, req, opts.concurrency, run)

	out := cmd.OutOrStdout()
	if opts.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		for _, res := range results {
			if res.Review != nil {
				fmt.Fprintln(out, renderReview(res.Name, res.Review))
			}
		}
	}

	var failed []string
	for _, res := range results {
		if res.Error != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render(res.Name+": "+res.Error))
			failed = append(failed, res.Name)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d games failed: %s", len(failed), len(results), strings.Join(failed, ", "))
	}
	return nil
}

// reviewAll runs at most concurrency reviews at once and keeps input order.
func reviewAll(ctx context.Context, inputs []input, base reviewdto.SubmitRequest, concurrency int, run reviewFunc) []outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	results := make([]outcome, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, in := range inputs {
		g.Go(func() error {
			req := base
			req.PGN = in.pgn
			results[i].Name = in.name
			rev, err := run(gctx, req)
			if err != nil {
				results[i].Error = err.Error()
				// one bad game does not stop the others
				return nil
			}
			results[i].Review = rev
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func newReviewFunc(server string) (reviewFunc, func(), error) {
	if server != "" {
		client, err := reviewclient.New(server)
		if err != nil {
			return nil, nil, err
		}
		return func(ctx context.Context, req reviewdto.SubmitRequest) (*reviewdto.Review, error) {
			return client.Review(ctx, req, nil)
		}, func() {}, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config error: %w", err)
	}
	deps, err := reviewbuilder.New(cfg, obslog.L())
	if err != nil {
		return nil, nil, err
	}
	return localReview(deps.Service), func() { _ = deps.Close() }, nil
}

func localReview(svc *review.Service) reviewFunc {
	return func(ctx context.Context, req reviewdto.SubmitRequest) (*reviewdto.Review, error) {
		sreq := review.SubmitRequest{PGN: req.PGN, Tone: req.Tone}
		if req.LimitType != "" {
			limit, err := eval.ParseLimit(req.LimitType, req.TimeLimit, req.DepthLimit)
			if err != nil {
				return nil, err
			}
			sreq.Limit = &limit
		}
		rev, err := svc.Submit(ctx, sreq)
		if err != nil {
			return nil, err
		}
		return httpapi.ToReview(rev), nil
	}
}

func readInputs(args []string, stdin io.Reader) ([]input, error) {
	if len(args) == 0 {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		if strings.TrimSpace(string(b)) == "" {
			return nil, errors.New("no PGN on stdin")
		}
		return []input{{name: "stdin", pgn: string(b)}}, nil
	}
	inputs := make([]input, 0, len(args))
	for _, path := range args {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		inputs = append(inputs, input{name: filepath.Base(path), pgn: string(b)})
	}
	return inputs, nil
}
