// Package reviewdto holds the JSON shapes of the review HTTP API.
package reviewdto

// SubmitRequest starts a review. The limit fields override the server's
// configured search limit only when LimitType is set.
type SubmitRequest struct {
	PGN        string  `json:"pgn" validate:"required,max=262144"`
	Tone       string  `json:"tone,omitempty" validate:"omitempty,oneof=standard roast"`
	LimitType  string  `json:"limit_type,omitempty" validate:"omitempty,oneof=time depth"`
	TimeLimit  float64 `json:"time_limit,omitempty" validate:"omitempty,gt=0,lte=60"`
	DepthLimit int     `json:"depth_limit,omitempty" validate:"omitempty,min=1,max=40"`
}

type ListResponse struct {
	Reviews []ReviewListItem `json:"reviews"`
}

// Frame is one websocket message of the review stream.
type Frame struct {
	Type   string       `json:"type"`
	Ply    int          `json:"ply,omitempty"`
	Total  int          `json:"total,omitempty"`
	Review *Review      `json:"review,omitempty"`
	Error  *DomainError `json:"error,omitempty"`
}

const (
	FrameProgress = "progress"
	FrameResult   = "result"
	FrameError    = "error"
)
