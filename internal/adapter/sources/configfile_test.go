package sources

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/depgraph/internal/claim"
	"github.com/moolen/depgraph/internal/normalize"
)

func TestConfigFile_KafkaAndJDBC(t *testing.T) {
	a := NewConfigFile()
	raw := "kafka.brokers=kafka-service:9092\nspring.datasource.url=jdbc:postgresql://billing:5432/invoices"

	require.True(t, a.CanProcess(raw))
	claims, err := a.Process(raw, time.Now())
	require.NoError(t, err)
	require.Len(t, claims, 2)

	targets := map[string]bool{}
	for _, c := range claims {
		targets[c.ToService] = true
		assert.Equal(t, 0.95, c.Confidence)
	}
	assert.True(t, targets["kafka-service"])
	assert.True(t, targets["billing-database"])
}

// The adapter suffixes the bare JDBC host, so the alias to the canonical
// database name only lands once the normalizer has run; assert the full
// adapter -> normalizer pipeline here, not the intermediate.
func TestConfigFile_NormalizedKafkaAndAliasedJDBC(t *testing.T) {
	a := NewConfigFile()
	now := time.Now()
	raw := "kafka.brokers=kafka-service:9092\nspring.datasource.url=jdbc:mysql://mysql-primary:3306/portal"

	claims, err := a.Process(raw, now)
	require.NoError(t, err)
	require.Len(t, claims, 2)

	out := normalize.New().Normalize(claims, now)
	require.Len(t, out, 2)

	targets := map[string]claim.ConfidenceBand{}
	for _, nc := range out {
		targets[nc.Claim.ToService] = nc.Claim.Band()
	}
	require.Contains(t, targets, "kafka-service")
	require.Contains(t, targets, "mysql-database")
	assert.Equal(t, claim.VeryHigh, targets["kafka-service"])
	assert.Equal(t, claim.VeryHigh, targets["mysql-database"])
}

func TestConfigFile_SkipsLocalhostAndIP(t *testing.T) {
	a := NewConfigFile()
	raw := "service.host=localhost\nservice.host=10.0.0.1"
	claims, err := a.Process(raw, time.Now())
	require.NoError(t, err)
	assert.Empty(t, claims)
}

func TestConfigFile_IgnoresComments(t *testing.T) {
	a := NewConfigFile()
	raw := "# comment\n// another\n/* block\nstill in block\n*/\n* stray star\nservice.host=billing-service"
	claims, err := a.Process(raw, time.Now())
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, "billing-service", claims[0].ToService)
}
