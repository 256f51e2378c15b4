package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersMove(t *testing.T) {
	okBefore := testutil.ToFloat64(reviewsTotal.WithLabelValues(StatusOK))
	failedBefore := testutil.ToFloat64(reviewsTotal.WithLabelValues(StatusFailed))
	ReviewFinished(nil)
	ReviewFinished(errors.New("boom"))
	assert.Equal(t, okBefore+1, testutil.ToFloat64(reviewsTotal.WithLabelValues(StatusOK)))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(reviewsTotal.WithLabelValues(StatusFailed)))

	engineBefore := testutil.ToFloat64(evaluatorRequests.WithLabelValues(SourceEngine))
	ObserveSearch(30 * time.Millisecond)
	EvaluatorHit(SourceCache)
	assert.Equal(t, engineBefore+1, testutil.ToFloat64(evaluatorRequests.WithLabelValues(SourceEngine)))

	Classified("blunder")
	assert.GreaterOrEqual(t, testutil.ToFloat64(classifications.WithLabelValues("blunder")), 1.0)
}

func TestHandlerExposesCollectors(t *testing.T) {
	Classified("best")
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "chess_review_classifications_total"))
}
