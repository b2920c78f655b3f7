package sources

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservability_PrometheusSample(t *testing.T) {
	a := NewObservability()
	raw := `http_requests_total{service="api-gateway",target_service="user-service"} 1500`

	require.True(t, a.CanProcess(raw))
	claims, err := a.Process(raw, time.Now())
	require.NoError(t, err)
	require.Len(t, claims, 1)

	c := claims[0]
	assert.Equal(t, "api-gateway", c.FromService)
	assert.Equal(t, "user-service", c.ToService)
	assert.Equal(t, 0.95, c.Confidence)
	assert.Equal(t, ObservabilityName, c.Source)
}

func TestObservability_JaegerSpan(t *testing.T) {
	a := NewObservability()
	raw := `1720089045 abc123def "checkout-service" -> "payment-service" 42ms`

	claims, err := a.Process(raw, time.Now())
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, "checkout-service", claims[0].FromService)
	assert.Equal(t, "payment-service", claims[0].ToService)
	assert.Equal(t, 0.95, claims[0].Confidence)
}

func TestObservability_OtelSpanStatusDowngrades(t *testing.T) {
	a := NewObservability()
	ok := `span_id:9f2c service:orders downstream:inventory duration:50ms status:OK`
	errored := `span_id:9f2d service:orders downstream:inventory duration:50ms status:ERROR`

	claims, err := a.Process(ok+"\n"+errored, time.Now())
	require.NoError(t, err)
	require.Len(t, claims, 2)
	assert.Equal(t, 0.99, claims[0].Confidence)
	assert.Equal(t, 0.7, claims[1].Confidence)
}

func TestObservability_ConfidenceHeuristics(t *testing.T) {
	assert.Equal(t, 0.95, promConfidence(100))
	assert.Equal(t, 0.85, promConfidence(10))
	assert.Equal(t, 0.7, promConfidence(1))

	assert.Equal(t, 0.95, jaegerConfidence(10))
	assert.Equal(t, 0.85, jaegerConfidence(100))
	assert.Equal(t, 0.7, jaegerConfidence(1000))

	assert.Equal(t, 0.99, otelConfidence(50, "OK"))
	assert.Equal(t, 0.85, otelConfidence(500, "OK"))
	assert.Equal(t, 0.7, otelConfidence(50, "ERROR"))
}

func TestObservability_SelfLoopDropped(t *testing.T) {
	a := NewObservability()
	raw := `http_requests_total{service="api",target_service="api"} 10`
	claims, err := a.Process(raw, time.Now())
	require.NoError(t, err)
	assert.Empty(t, claims)
}
