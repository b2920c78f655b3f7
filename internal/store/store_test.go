package store

import (
	"testing"
	"time"

	"github.com/moolen/depgraph/internal/claim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndFindByEdge(t *testing.T) {
	s := New()
	c := claim.New("a", "b", claim.Runtime, 0.8, "router-log", "raw", claim.NewMetadata(), time.Now())
	require.NoError(t, s.Save(c))

	found := s.FindByEdge("a", "b")
	require.Len(t, found, 1)
	assert.Equal(t, c.ID, found[0].ID)

	assert.Empty(t, s.FindByEdge("b", "a"))
}

func TestSaveRejectsSelfLoop(t *testing.T) {
	s := New()
	c := claim.New("a", "a", claim.Runtime, 0.8, "router-log", "raw", claim.NewMetadata(), time.Now())
	err := s.Save(c)
	assert.Error(t, err)
	assert.Zero(t, s.Len())
}

func TestEdgesCountsDistinctEdges(t *testing.T) {
	s := New()
	now := time.Now()
	require.NoError(t, s.Save(claim.New("a", "b", claim.Runtime, 0.8, "router-log", "raw1", claim.NewMetadata(), now)))
	require.NoError(t, s.Save(claim.New("a", "b", claim.Runtime, 0.5, "network-discovery", "raw2", claim.NewMetadata(), now)))
	require.NoError(t, s.Save(claim.New("b", "c", claim.Runtime, 0.8, "router-log", "raw3", claim.NewMetadata(), now)))

	assert.Len(t, s.Edges(), 2)
	assert.Equal(t, 3, s.Len())
	assert.Len(t, s.FindByEdge("a", "b"), 2)
}

func TestFindAllIsSnapshot(t *testing.T) {
	s := New()
	require.NoError(t, s.Save(claim.New("a", "b", claim.Runtime, 0.8, "router-log", "raw", claim.NewMetadata(), time.Now())))
	snapshot := s.FindAll()
	require.NoError(t, s.Save(claim.New("c", "d", claim.Runtime, 0.8, "router-log", "raw2", claim.NewMetadata(), time.Now())))
	assert.Len(t, snapshot, 1, "snapshot taken before the second save must not observe it")
	assert.Len(t, s.FindAll(), 2)
}
