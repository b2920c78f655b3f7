package sources

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterLog_SingleLine(t *testing.T) {
	a := NewRouterLog()
	raw := "2024-07-04 10:30:45 [INFO] 192.168.1.100 -> 192.168.1.200:8080 GET /api/users 200 125ms"

	require.True(t, a.CanProcess(raw))
	claims, err := a.Process(raw, time.Now())
	require.NoError(t, err)
	require.Len(t, claims, 1)

	c := claims[0]
	assert.Equal(t, "web-portal", c.FromService)
	assert.Equal(t, "user-management-service", c.ToService)
	assert.Equal(t, "router-log", c.Source)
	assert.Equal(t, "8080", c.Metadata.GetOr("target_port", ""))
	assert.Equal(t, "200", c.Metadata.GetOr("http_status", ""))
	assert.Equal(t, "125", c.Metadata.GetOr("response_time_ms", ""))
}

func TestRouterLog_CompactForm(t *testing.T) {
	a := NewRouterLog()
	raw := "checkout-service->payment-service"
	claims, err := a.Process(raw, time.Now())
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, "checkout-service", claims[0].FromService)
	assert.Equal(t, "payment-service", claims[0].ToService)
}

func TestRouterLog_SelfLoopDropped(t *testing.T) {
	a := NewRouterLog()
	raw := "2024-07-04 10:30:45 [INFO] 192.168.1.100 -> 192.168.1.100:8080 GET / 200 10ms"
	a.IPToService = map[string]string{"192.168.1.100": "web-portal"}
	claims, err := a.Process(raw, time.Now())
	require.NoError(t, err)
	assert.Empty(t, claims)
}

func TestRouterLog_ConfidenceBanding(t *testing.T) {
	assert.Equal(t, 0.95, routerLogConfidence(200, 125))
	assert.Equal(t, 0.85, routerLogConfidence(200, 2000))
	assert.Equal(t, 0.6, routerLogConfidence(404, 10))
	assert.Equal(t, 0.4, routerLogConfidence(500, 10))
}

func TestRouterLog_UnknownIPFallback(t *testing.T) {
	a := NewRouterLog()
	a.IPToService = map[string]string{}
	raw := "2024-07-04 10:30:45 [INFO] 10.0.0.5 -> 10.0.0.6:443 GET / 200 5ms"
	claims, err := a.Process(raw, time.Now())
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, "service-10-0-0-5", claims[0].FromService)
	assert.Equal(t, "service-10-0-0-6", claims[0].ToService)
}
