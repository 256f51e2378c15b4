package domain

import "time"

// Review is one finished game review as stored and served.
type Review struct {
	ID           string            `json:"id"`
	CreatedAt    time.Time         `json:"created_at"`
	PGN          string            `json:"pgn"`
	Tags         map[string]string `json:"tags,omitempty"`
	White        string            `json:"white"`
	Black        string            `json:"black"`
	Result       string            `json:"result"`
	Tone         string            `json:"tone"`
	Limit        string            `json:"limit"`
	OpeningCode  string            `json:"opening_code,omitempty"`
	OpeningTitle string            `json:"opening_title,omitempty"`
	StartFEN     string            `json:"start_fen"`
	Moves        []ReviewedMove    `json:"moves"`
	WhiteSummary SideSummary       `json:"white_summary"`
	BlackSummary SideSummary       `json:"black_summary"`
	Summary      string            `json:"summary"`
	Series       Series            `json:"series"`
	Duration     time.Duration     `json:"duration"`
}

type ReviewedMove struct {
	Ply            int      `json:"ply"`
	Color          string   `json:"color"`
	UCI            string   `json:"uci"`
	SAN            string   `json:"san"`
	Classification string   `json:"classification"`
	Grade          string   `json:"grade,omitempty"`
	MateIn         int      `json:"mate_in,omitempty"`
	Opening        string   `json:"opening,omitempty"`
	BestUCI        string   `json:"best_uci,omitempty"`
	BestSAN        string   `json:"best_san,omitempty"`
	ReplySAN       string   `json:"reply_san,omitempty"`
	Motifs         []string `json:"motifs,omitempty"`
	Text           string   `json:"text"`
	BestText       string   `json:"best_text,omitempty"`
	// Score is White-normalized centipawns after the ply.
	Score int    `json:"score"`
	FEN   string `json:"fen"`
}

type SideSummary struct {
	ACPL     float64        `json:"acpl"`
	Accuracy float64        `json:"accuracy"`
	Rating   int            `json:"rating"`
	Counts   map[string]int `json:"counts,omitempty"`
	Lost     []string       `json:"lost,omitempty"`
}

// Sample is one (White, Black) metric value.
type Sample struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// Series holds the board metrics sampled after every ply.
type Series struct {
	Development []Sample `json:"development"`
	Tension     []Sample `json:"tension"`
	Mobility    []Sample `json:"mobility"`
	Control     []Sample `json:"control"`
}

// ReviewListItem is the short form used by listings.
type ReviewListItem struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	White         string    `json:"white"`
	Black         string    `json:"black"`
	Result        string    `json:"result"`
	OpeningCode   string    `json:"opening_code,omitempty"`
	Plies         int       `json:"plies"`
	WhiteAccuracy float64   `json:"white_accuracy"`
	BlackAccuracy float64   `json:"black_accuracy"`
}

func (r *Review) ListItem() ReviewListItem {
	return ReviewListItem{
		ID:            r.ID,
		CreatedAt:     r.CreatedAt,
		White:         r.White,
		Black:         r.Black,
		Result:        r.Result,
		OpeningCode:   r.OpeningCode,
		Plies:         len(r.Moves),
		WhiteAccuracy: r.WhiteSummary.Accuracy,
		BlackAccuracy: r.BlackSummary.Accuracy,
	}
}
