// Package store implements the append-only evidence store: every
// Claim ever ingested, indexed by directed edge and by source.
package store

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/moolen/depgraph/internal/claim"
	"github.com/moolen/depgraph/internal/logging"
)

// serviceCacheSize bounds the in-process service-name → record cache so a
// long-running process ingesting many distinct (often synthetic,
// "service-<ip>") names doesn't grow it without limit.
const serviceCacheSize = 4096

// serviceRecord is the small record cached per distinct service name seen
// by the store, used to avoid duplicate bookkeeping within a batch.
type serviceRecord struct {
	Name      string
	FirstSeen int
}

// Store is the append-only evidence store. Appends are serialized at the
// store boundary (a single mutex); reads take a snapshot copy so concurrent
// readers never observe a partially-written state.
type Store struct {
	mu          sync.Mutex
	byEdge      map[claim.EdgeKey][]claim.Claim
	bySource    map[string][]claim.Claim
	all         []claim.Claim
	serviceSeen *lru.Cache[string, serviceRecord]
	seq         int

	logger *logging.Logger
}

// New constructs an empty Store.
func New() *Store {
	cache, err := lru.New[string, serviceRecord](serviceCacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which
		// serviceCacheSize never is.
		panic(err)
	}
	return &Store{
		byEdge:      make(map[claim.EdgeKey][]claim.Claim),
		bySource:    make(map[string][]claim.Claim),
		serviceSeen: cache,
		logger:      logging.GetLogger("store"),
	}
}

// Save appends c to the store. Returns an error only if c violates the
// self-loop invariant. Callers (the ingestion orchestrator) log and
// skip such failures and continue the batch.
func (s *Store) Save(c claim.Claim) error {
	if c.SelfLoop() {
		return &SelfLoopError{FromService: c.FromService, ToService: c.ToService}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := c.EdgeKey()
	s.byEdge[key] = append(s.byEdge[key], c)
	s.bySource[c.Source] = append(s.bySource[c.Source], c)
	s.all = append(s.all, c)
	s.seq++

	s.rememberService(c.FromService)
	s.rememberService(c.ToService)

	return nil
}

func (s *Store) rememberService(name string) {
	if _, ok := s.serviceSeen.Get(name); !ok {
		s.serviceSeen.Add(name, serviceRecord{Name: name, FirstSeen: s.seq})
	}
}

// FindAll returns a snapshot copy of every claim ever saved, in insertion
// order.
func (s *Store) FindAll() []claim.Claim {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]claim.Claim, len(s.all))
	copy(out, s.all)
	return out
}

// FindByEdge returns a snapshot copy of every claim saved for the directed
// edge (from, to), in insertion order. Returns an empty, non-nil slice if
// the edge has no claims.
func (s *Store) FindByEdge(from, to string) []claim.Claim {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.byEdge[claim.EdgeKey{From: from, To: to}]
	out := make([]claim.Claim, len(existing))
	copy(out, existing)
	return out
}

// FindBySource returns a snapshot copy of every claim saved under source.
func (s *Store) FindBySource(source string) []claim.Claim {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.bySource[source]
	out := make([]claim.Claim, len(existing))
	copy(out, existing)
	return out
}

// Edges returns every distinct edge key that has at least one claim, in
// first-seen order.
func (s *Store) Edges() []claim.EdgeKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[claim.EdgeKey]bool, len(s.byEdge))
	out := make([]claim.EdgeKey, 0, len(s.byEdge))
	for _, c := range s.all {
		key := c.EdgeKey()
		if !seen[key] {
			seen[key] = true
			out = append(out, key)
		}
	}
	return out
}

// Len returns the total number of claims persisted.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.all)
}

// SelfLoopError reports an attempt to persist a claim whose fromService
// equals its toService, which the store's invariant forbids.
type SelfLoopError struct {
	FromService string
	ToService   string
}

func (e *SelfLoopError) Error() string {
	return "store: refusing to persist self-loop claim for " + e.FromService
}
