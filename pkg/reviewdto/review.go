package reviewdto

import "time"

type Review struct {
	ID           string            `json:"id"`
	CreatedAt    time.Time         `json:"created_at"`
	Tags         map[string]string `json:"tags,omitempty"`
	White        string            `json:"white"`
	Black        string            `json:"black"`
	Result       string            `json:"result"`
	Tone         string            `json:"tone"`
	Limit        string            `json:"limit"`
	OpeningCode  string            `json:"opening_code,omitempty"`
	OpeningTitle string            `json:"opening_title,omitempty"`
	StartFEN     string            `json:"start_fen"`
	Moves        []Move            `json:"moves"`
	WhiteSummary Side              `json:"white_summary"`
	BlackSummary Side              `json:"black_summary"`
	Summary      string            `json:"summary"`
	Series       Series            `json:"series"`
	DurationMS   int64             `json:"duration_ms"`
}

type Move struct {
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
	Score          int      `json:"score"`
	FEN            string   `json:"fen"`
	ImageURL       string   `json:"image_url,omitempty"`
}

type Side struct {
	ACPL     float64        `json:"acpl"`
	Accuracy float64        `json:"accuracy"`
	Rating   int            `json:"rating"`
	Counts   map[string]int `json:"counts,omitempty"`
	Lost     []string       `json:"lost,omitempty"`
}

type Sample struct {
	White int `json:"white"`
	Black int `json:"black"`
}

type Series struct {
	Development []Sample `json:"development"`
	Tension     []Sample `json:"tension"`
	Mobility    []Sample `json:"mobility"`
	Control     []Sample `json:"control"`
}

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
