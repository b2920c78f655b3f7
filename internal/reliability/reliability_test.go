package reliability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultReliability(t *testing.T) {
	tr := New()
	assert.Equal(t, 0.8, tr.Reliability("router-log"))
}

func TestRecordFeedbackUpdatesRatio(t *testing.T) {
	tr := New()
	tr.RecordFeedback("router-log", true)
	tr.RecordFeedback("router-log", true)
	tr.RecordFeedback("router-log", false)

	assert.InDelta(t, 2.0/3.0, tr.Reliability("router-log"), 1e-9)
	count, correct := tr.Counts("router-log")
	assert.Equal(t, 3, count)
	assert.Equal(t, 2, correct)
}

func TestSourcesAreIndependent(t *testing.T) {
	tr := New()
	tr.RecordFeedback("router-log", false)
	assert.Equal(t, 0.8, tr.Reliability("network-discovery"))
}
