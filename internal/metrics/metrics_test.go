package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(CompletionsTotal.WithLabelValues("ok"))
	CompletionsTotal.WithLabelValues("ok").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(CompletionsTotal.WithLabelValues("ok")))

	before = testutil.ToFloat64(RateLimitedTotal.WithLabelValues("login"))
	RateLimitedTotal.WithLabelValues("login").Add(2)
	assert.Equal(t, before+2, testutil.ToFloat64(RateLimitedTotal.WithLabelValues("login")))
}

func TestHistogramRegistered(t *testing.T) {
	CompletionDuration.Observe(0.3)
	assert.Equal(t, 1, testutil.CollectAndCount(CompletionDuration, "coach_completion_duration_seconds"))
}
