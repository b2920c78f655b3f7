package sources

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIGateway_GenericRoute(t *testing.T) {
	a := NewAPIGateway()
	raw := "route: frontend -> backend-service weight:100"
	require.True(t, a.CanProcess(raw))
	claims, err := a.Process(raw, time.Now())
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, "frontend", claims[0].FromService)
	assert.Equal(t, "backend-service", claims[0].ToService)
	assert.Equal(t, 0.95, claims[0].Confidence)
}

func TestAPIGateway_NginxUpstream(t *testing.T) {
	a := NewAPIGateway()
	raw := "upstream payments-backend {\n  server 10.0.0.1:8080;\n}\nproxy_pass http://payments-backend;\nproxy_pass http://ledger-service;"
	claims, err := a.Process(raw, time.Now())
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, "payments-backend", claims[0].FromService)
	assert.Equal(t, "ledger-service", claims[0].ToService)
}

func TestAPIGateway_AWSIntegration(t *testing.T) {
	a := NewAPIGateway()
	raw := "integration: lambda/checkout-handler -> inventory-service"
	claims, err := a.Process(raw, time.Now())
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, "checkout-handler", claims[0].FromService)
	assert.Equal(t, "inventory-service", claims[0].ToService)
}
