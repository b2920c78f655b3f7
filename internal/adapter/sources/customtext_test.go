package sources

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomText_MinimalLine(t *testing.T) {
	a := NewCustomText()
	raw := "frontend -> backend"

	require.True(t, a.CanProcess(raw))
	claims, err := a.Process(raw, time.Now())
	require.NoError(t, err)
	require.Len(t, claims, 1)

	c := claims[0]
	assert.Equal(t, "frontend", c.FromService)
	assert.Equal(t, "backend", c.ToService)
	assert.Equal(t, 0.8, c.Confidence)
	assert.Equal(t, CustomTextName, c.Source)
}

func TestCustomText_OptionalFields(t *testing.T) {
	a := NewCustomText()
	raw := "frontend -> backend 0.95 manual-audit 2024-07-04"
	claims, err := a.Process(raw, time.Now())
	require.NoError(t, err)
	require.Len(t, claims, 1)

	c := claims[0]
	assert.Equal(t, 0.95, c.Confidence)
	assert.Equal(t, "manual-audit", c.Source)
	assert.Equal(t, 2024, c.Timestamp.Year())
	assert.Equal(t, time.July, c.Timestamp.Month())
}

func TestCustomText_CommentsAndBlanksSkipped(t *testing.T) {
	a := NewCustomText()
	raw := "# upstream map\n\nfrontend -> backend\n# trailing comment\n"
	claims, err := a.Process(raw, time.Now())
	require.NoError(t, err)
	assert.Len(t, claims, 1)
}

func TestCustomText_SelfLoopDropped(t *testing.T) {
	a := NewCustomText()
	claims, err := a.Process("backend -> backend", time.Now())
	require.NoError(t, err)
	assert.Empty(t, claims)
}

func TestCustomText_MalformedLineSkipped(t *testing.T) {
	a := NewCustomText()
	raw := "this is not an assertion\nfrontend -> backend\n"
	claims, err := a.Process(raw, time.Now())
	require.NoError(t, err)
	assert.Len(t, claims, 1)
}
