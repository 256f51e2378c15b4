package chess

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/park285/Cheese-GameReview/internal/chess/board"
	"github.com/park285/Cheese-GameReview/internal/chess/eval"
	"github.com/park285/Cheese-GameReview/internal/chess/uci"
)

const scriptedEngine = `#!/bin/sh
while read -r line; do
  case "$line" in
    uci) echo "uciok" ;;
    isready) echo "readyok" ;;
    go*)
      echo "info depth 9 score cp -41 pv e7e5 g1f3"
      echo "bestmove e7e5" ;;
  esac
done
`

func TestEngineAnalyseScripted(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("scripted engine needs /bin/sh")
	}
	bin := filepath.Join(t.TempDir(), "engine")
	require.NoError(t, os.WriteFile(bin, []byte(scriptedEngine), 0o755))

	eng, err := NewEngine(EngineConfig{BinaryPath: bin, PoolSize: 1, Limit: eval.TimeLimit(20 * time.Millisecond)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	pos := board.Start().MustApply(board.Move{From: board.E2, To: board.NewSquare(4, 3)})
	a, err := eng.Analyse(context.Background(), pos)
	require.NoError(t, err)
	assert.Equal(t, -41, a.CP)
	assert.Equal(t, "e7e5", a.BestMove.UCI())
	require.Len(t, a.PV, 2)
	assert.Equal(t, eval.Score(41), a.Score(pos.Turn()))

	// The scripted reply is illegal for White.
	_, err = eng.Analyse(context.Background(), board.Start())
	assert.ErrorIs(t, err, eval.ErrMalformedResponse)
}

func TestNewEngineValidatesLimit(t *testing.T) {
	_, err := NewEngine(EngineConfig{BinaryPath: "/bin/sh", Limit: eval.Limit{Kind: eval.LimitDepth}})
	assert.ErrorIs(t, err, eval.ErrInvalidLimit)
}

func TestToAnalysisWithoutLegalMoves(t *testing.T) {
	mated, err := board.FromFEN("rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	require.NoError(t, err)
	a, err := toAnalysis(mated, uci.SearchResponse{Score: uci.Score{IsMate: true}})
	require.NoError(t, err)
	assert.True(t, a.IsMate)
	assert.Equal(t, eval.Score(-eval.MateScore), a.Score(mated.Turn()))

	_, err = toAnalysis(board.Start(), uci.SearchResponse{})
	assert.ErrorIs(t, err, eval.ErrMalformedResponse)
}

func TestSearchLimits(t *testing.T) {
	assert.Equal(t, uci.Limits{MoveTimeMillis: 250}, searchLimits(eval.TimeLimit(250*time.Millisecond)))
	assert.Equal(t, uci.Limits{Depth: 12}, searchLimits(eval.DepthLimit(12)))
}
