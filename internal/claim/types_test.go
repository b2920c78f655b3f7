package claim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBand_Boundaries(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		want       ConfidenceBand
	}{
		{"exact 0.3 boundary is LOW's floor", 0.3, VeryLow},
		{"exact 0.5 boundary", 0.5, Low},
		{"exact 0.7 boundary", 0.7, Medium},
		{"exact 0.9 boundary", 0.9, High},
		{"above 0.9", 0.95, VeryHigh},
		{"zero", 0.0, VeryLow},
		{"one", 1.0, VeryHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Band(tt.confidence))
		})
	}
}

func TestBand_Monotone(t *testing.T) {
	rank := map[ConfidenceBand]int{VeryLow: 0, Low: 1, Medium: 2, High: 3, VeryHigh: 4}
	prev := Band(0)
	for c := 0.01; c <= 1.0; c += 0.01 {
		cur := Band(c)
		assert.GreaterOrEqual(t, rank[cur], rank[prev], "band must never decrease as confidence increases")
		prev = cur
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-1))
	assert.Equal(t, 1.0, Clamp(2))
	assert.Equal(t, 0.5, Clamp(0.5))
}

func TestDependencyType_DefaultConfidence(t *testing.T) {
	assert.Equal(t, 1.0, BuildTime.DefaultConfidence())
	assert.Equal(t, 0.60, HealthCheck.DefaultConfidence())
	assert.True(t, BuildTime.DefaultConfidence() > HealthCheck.DefaultConfidence())
	assert.True(t, Runtime.Valid())
	assert.False(t, DependencyType("BOGUS").Valid())
}

func TestClaim_SelfLoop(t *testing.T) {
	c := New("svc-a", "svc-a", Runtime, 0.9, "router-log", "raw", NewMetadata(), time.Now())
	assert.True(t, c.SelfLoop())

	c2 := New("svc-a", "svc-b", Runtime, 0.9, "router-log", "raw", NewMetadata(), time.Now())
	assert.False(t, c2.SelfLoop())
}

func TestClaim_New_DefaultsTimestamp(t *testing.T) {
	c := New("a", "b", Runtime, 0.5, "src", "raw", NewMetadata(), time.Time{})
	assert.False(t, c.Timestamp.IsZero())
}

func TestClaim_New_ClampsConfidence(t *testing.T) {
	c := New("a", "b", Runtime, 1.5, "src", "raw", NewMetadata(), time.Now())
	assert.Equal(t, 1.0, c.Confidence)
}

func TestMetadata_InsertionOrderPreserved(t *testing.T) {
	m := NewMetadata()
	m.Set("target_port", "8080")
	m.Set("http_status", "200")
	m.Set("target_port", "9090") // overwrite, should not move position

	assert.Equal(t, []string{"target_port", "http_status"}, m.Keys())
	v, _ := m.Get("target_port")
	assert.Equal(t, "9090", v)
}

func TestMetadata_Merge_UnknownYieldsToOther(t *testing.T) {
	a := NewMetadata()
	a.Set("k1", "unknown")
	b := NewMetadata()
	b.Set("k1", "real-value")

	merged := a.Merge(b)
	v, _ := merged.Get("k1")
	assert.Equal(t, "real-value", v)
}

func TestMetadata_Merge_FirstWriteWins(t *testing.T) {
	a := NewMetadata()
	a.Set("k1", "original")
	b := NewMetadata()
	b.Set("k1", "ignored")

	merged := a.Merge(b)
	v, _ := merged.Get("k1")
	assert.Equal(t, "original", v)
}
