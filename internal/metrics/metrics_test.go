package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/recipes", "200"))
	RecordHTTPRequest("GET", "/api/recipes", 200, 15*time.Millisecond)
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/recipes", "200"))
	assert.Equal(t, before+1, after)
}

func TestRecordHTTPRequestUnmatchedRoute(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404"))
	RecordHTTPRequest("GET", "", 404, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}

func TestRecordShortLinkResolution(t *testing.T) {
	hits := testutil.ToFloat64(ShortLinkResolutions.WithLabelValues("hit"))
	misses := testutil.ToFloat64(ShortLinkResolutions.WithLabelValues("miss"))

	RecordShortLinkResolution(true)
	RecordShortLinkResolution(false)
	RecordShortLinkResolution(false)

	assert.Equal(t, hits+1, testutil.ToFloat64(ShortLinkResolutions.WithLabelValues("hit")))
	assert.Equal(t, misses+2, testutil.ToFloat64(ShortLinkResolutions.WithLabelValues("miss")))
}
