package reviewdto

// DomainError is the JSON error body of every failed API call.
type DomainError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "review service error"
}

const (
	CodeInvalidRequest     = "invalid_request"
	CodeNotFound           = "not_found"
	CodeEvaluatorTimeout   = "evaluator_timeout"
	CodeEvaluatorFailure   = "evaluator_failure"
	CodeEvaluatorMalformed = "evaluator_malformed_response"
	CodeInternal           = "internal"
)
