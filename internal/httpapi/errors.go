package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/park285/Cheese-GameReview/internal/chess/eval"
	"github.com/park285/Cheese-GameReview/internal/service/review"
	"github.com/park285/Cheese-GameReview/pkg/reviewdto"
)

// classifyError maps service errors to a status and an API error body.
func classifyError(err error) (int, reviewdto.DomainError) {
	switch {
	case errors.Is(err, review.ErrInvalidRequest):
		return http.StatusBadRequest, reviewdto.DomainError{Code: reviewdto.CodeInvalidRequest, Message: err.Error()}
	case errors.Is(err, review.ErrNotFound):
		return http.StatusNotFound, reviewdto.DomainError{Code: reviewdto.CodeNotFound, Message: err.Error()}
	case errors.Is(err, eval.ErrEvaluatorTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, reviewdto.DomainError{Code: reviewdto.CodeEvaluatorTimeout, Message: "evaluator timed out", Retryable: true}
	case errors.Is(err, eval.ErrMalformedResponse):
		return http.StatusBadGateway, reviewdto.DomainError{Code: reviewdto.CodeEvaluatorMalformed, Message: "evaluator returned a malformed response"}
	case errors.Is(err, eval.ErrEvaluatorFailure):
		return http.StatusBadGateway, reviewdto.DomainError{Code: reviewdto.CodeEvaluatorFailure, Message: "evaluator unavailable", Retryable: true}
	default:
		return http.StatusInternalServerError, reviewdto.DomainError{Code: reviewdto.CodeInternal, Message: "internal error"}
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classifyError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("http_request_failed", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, body)
}

// validationMessage renders validator errors as one readable line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	var details strings.Builder
	for _, fe := range verrs {
		if details.Len() > 0 {
			details.WriteString("; ")
		}
		switch fe.Tag() {
		case "required":
			fmt.Fprintf(&details, "%s is required", fe.Field())
		case "oneof":
			fmt.Fprintf(&details, "%s must be one of [%s]", fe.Field(), fe.Param())
		case "min", "gt":
			fmt.Fprintf(&details, "%s must be at least %s", fe.Field(), fe.Param())
		case "max", "lte":
			if fe.Kind() == reflect.String {
				fmt.Fprintf(&details, "%s must be at most %s bytes", fe.Field(), fe.Param())
			} else {
				fmt.Fprintf(&details, "%s must be at most %s", fe.Field(), fe.Param())
			}
		default:
			fmt.Fprintf(&details, "%s failed %s validation", fe.Field(), fe.Tag())
		}
	}
	return details.String()
}
