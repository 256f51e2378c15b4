// Package openingbook names opening lines. Named lines come from an embedded
// JSON catalog matched exactly; ECO codes come from the corentings ECO table;
// an optional polyglot book recognises book moves the catalog does not name.
package openingbook

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	chesslib "github.com/corentings/chess/v2"
	"github.com/corentings/chess/v2/opening"
	"go.uber.org/zap"

	"github.com/park285/Cheese-GameReview/internal/obslog"
)

//go:embed data/catalog.json data/styles.json
var dataFiles embed.FS

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// BookLine is the name reported for a polyglot book hit without an ECO title.
const BookLine = "Book line"

// Entry is one named line, written as PGN movetext ("1. e4 e5 2. Nf3").
type Entry struct {
	ECO         string `json:"eco"`
	Name        string `json:"name"`
	PGN         string `json:"pgn"`
	Description string `json:"description,omitempty"`
}

type catalogFile struct {
	Entries []Entry `json:"entries"`
}

// Catalog matches complete SAN lines against named entries.
type Catalog struct {
	entries []Entry
	byLine  map[string]*Entry
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	defaultOnce.Do(func() {
		f, err := dataFiles.Open("data/catalog.json")
		if err != nil {
			defaultErr = fmt.Errorf("open embedded catalog: %w", err)
			return
		}
		defer f.Close()
		defaultCatalog, defaultErr = LoadCatalog(f)
	})
	return defaultCatalog, defaultErr
}

// LoadCatalogFile reads a catalog in the embedded format from path.
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open opening catalog %q: %w", path, err)
	}
	defer f.Close()
	c, err := LoadCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("opening catalog %q: %w", path, err)
	}
	return c, nil
}

func LoadCatalog(r io.Reader) (*Catalog, error) {
	var payload catalogFile
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode opening catalog: %w", err)
	}
	c := &Catalog{
		entries: append([]Entry(nil), payload.Entries...),
		byLine:  make(map[string]*Entry, len(payload.Entries)),
	}
	for i := range c.entries {
		e := &c.entries[i]
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("catalog entry %d has no name", i)
		}
		line := SplitLine(e.PGN)
		if len(line) == 0 {
			return nil, fmt.Errorf("catalog entry %q has no moves", e.Name)
		}
		key := strings.Join(line, " ")
		if prev, dup := c.byLine[key]; dup {
			return nil, fmt.Errorf("catalog line %q named twice: %q and %q", e.PGN, prev.Name, e.Name)
		}
		c.byLine[key] = e
	}
	return c, nil
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Find matches san exactly. A prefix of a named line is not a match.
func (c *Catalog) Find(san []string) (Entry, bool) {
	if c == nil || len(san) == 0 {
		return Entry{}, false
	}
	e, ok := c.byLine[strings.Join(san, " ")]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Entries returns the catalog sorted by ECO code, then line.
func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}
	out := append([]Entry(nil), c.entries...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ECO == out[j].ECO {
			return out[i].PGN < out[j].PGN
		}
		return out[i].ECO < out[j].ECO
	})
	return out
}

// SplitLine turns PGN movetext into SAN tokens, dropping move numbers,
// annotations and a trailing result.
func SplitLine(pgn string) []string {
	var out []string
	for _, tok := range strings.Fields(pgn) {
		if i := strings.LastIndex(tok, "."); i >= 0 {
			tok = tok[i+1:]
		}
		tok = strings.TrimRight(tok, "!?")
		switch tok {
		case "", "1-0", "0-1", "1/2-1/2", "*":
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Options configure a Book. Empty paths select the embedded catalog and no
// polyglot book.
type Options struct {
	CatalogPath  string
	PolyglotPath string
}

// Book is the opening lookup used by reviews.
type Book struct {
	catalog  *Catalog
	styles   *StyleCatalog
	eco      *opening.BookECO
	polyglot *chesslib.PolyglotBook
}

func New(opts Options) (*Book, error) {
	b := &Book{eco: opening.NewBookECO()}
	var err error
	if path := strings.TrimSpace(opts.CatalogPath); path != "" {
		b.catalog, err = LoadCatalogFile(path)
	} else {
		b.catalog, err = DefaultCatalog()
	}
	if err != nil {
		return nil, err
	}
	if b.styles, err = DefaultStyles(); err != nil {
		return nil, err
	}
	if path := strings.TrimSpace(opts.PolyglotPath); path != "" {
		if b.polyglot, err = LoadPolyglot(path); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// NewWithCatalog wraps c without a polyglot book.
func NewWithCatalog(c *Catalog) *Book {
	styles, _ := DefaultStyles()
	return &Book{catalog: c, styles: styles, eco: opening.NewBookECO()}
}

func (b *Book) Catalog() *Catalog { return b.catalog }

// Lookup names the line san. The catalog is consulted first; a polyglot book
// hit is named after the ECO opening reached, or BookLine.
func (b *Book) Lookup(san []string) (string, bool) {
	if e, ok := b.catalog.Find(san); ok {
		return e.Name, true
	}
	if b.polyglot == nil || len(san) == 0 {
		return "", false
	}
	game, err := replay(san)
	if err != nil {
		obslog.L().Warn("opening_lookup_failed", zap.Strings("san", san), zap.Error(err))
		return "", false
	}
	hit, err := b.inPolyglot(game)
	if err != nil {
		obslog.L().Warn("opening_lookup_failed", zap.Strings("san", san), zap.Error(err))
		return "", false
	}
	if !hit {
		return "", false
	}
	if eco := b.eco.Find(game.Moves()); eco != nil && eco.Title() != "" {
		return eco.Title(), true
	}
	return BookLine, true
}

// Describe returns the full catalog entry for san.
func (b *Book) Describe(san []string) (Entry, bool) {
	return b.catalog.Find(san)
}

// Label returns the ECO code and title of the deepest ECO opening san passes
// through.
func (b *Book) Label(san []string) (code, title string, ok bool) {
	if len(san) == 0 {
		return "", "", false
	}
	game, err := replay(san)
	if err != nil {
		obslog.L().Warn("opening_label_failed", zap.Error(err))
		return "", "", false
	}
	eco := b.eco.Find(game.Moves())
	if eco == nil {
		return "", "", false
	}
	return eco.Code(), eco.Title(), true
}

// Style names the family an ECO code belongs to, if any.
func (b *Book) Style(eco string) (StyleGroup, bool) {
	groups := b.styles.FindByECO(eco)
	if len(groups) == 0 {
		return StyleGroup{}, false
	}
	return groups[0], true
}

// inPolyglot reports whether the last move of game is a book move from the
// position before it.
func (b *Book) inPolyglot(game *chesslib.Game) (bool, error) {
	moves := game.Moves()
	if len(moves) == 0 {
		return false, nil
	}
	prev := chesslib.NewGame()
	for _, mv := range moves[:len(moves)-1] {
		if err := prev.PushNotationMove(mv.String(), chesslib.UCINotation{}, nil); err != nil {
			return false, fmt.Errorf("apply move %q: %w", mv.String(), err)
		}
	}
	entries, err := b.bookMoves(prev)
	if err != nil {
		return false, err
	}
	want := game.FEN()
	for _, entry := range entries {
		move := chesslib.DecodeMove(entry.Move).ToMove()
		child := prev.Clone()
		if err := child.PushNotationMove(move.String(), chesslib.UCINotation{}, nil); err != nil {
			continue
		}
		if child.FEN() == want {
			return true, nil
		}
	}
	return false, nil
}

// Result is one polyglot suggestion.
type Result struct {
	Move   string
	SAN    string
	Weight uint16
}

// Suggest lists the polyglot book moves after san, heaviest first.
func (b *Book) Suggest(san []string) ([]Result, error) {
	if b.polyglot == nil {
		return nil, nil
	}
	game, err := replay(san)
	if err != nil {
		return nil, err
	}
	entries, err := b.bookMoves(game)
	if err != nil {
		return nil, err
	}
	algebraic := chesslib.AlgebraicNotation{}
	out := make([]Result, 0, len(entries))
	for _, entry := range entries {
		move := chesslib.DecodeMove(entry.Move).ToMove()
		child := game.Clone()
		if err := child.PushNotationMove(move.String(), chesslib.UCINotation{}, nil); err != nil {
			// Polyglot castling and corrupted entries land here.
			continue
		}
		out = append(out, Result{
			Move:   move.String(),
			SAN:    algebraic.Encode(game.Position(), &move),
			Weight: entry.Weight,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	return out, nil
}

func (b *Book) bookMoves(game *chesslib.Game) ([]chesslib.PolyglotEntry, error) {
	hashStr, err := chesslib.NewZobristHasher().HashPosition(game.FEN())
	if err != nil {
		return nil, fmt.Errorf("compute polyglot hash: %w", err)
	}
	return b.polyglot.FindMoves(chesslib.ZobristHashToUint64(hashStr)), nil
}

func LoadPolyglot(path string) (*chesslib.PolyglotBook, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open polyglot book %q: %w", path, err)
	}
	defer file.Close()

	book, err := chesslib.LoadFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("load polyglot book %q: %w", path, err)
	}
	return book, nil
}

func replay(san []string) (*chesslib.Game, error) {
	game := chesslib.NewGame()
	for _, mv := range san {
		if err := game.PushNotationMove(mv, chesslib.AlgebraicNotation{}, nil); err != nil {
			return nil, fmt.Errorf("apply move %q: %w", mv, err)
		}
	}
	return game, nil
}
