package claim

// Metadata is an ordered key→value string map. Insertion order is
// preserved across Set calls so that synthesized keys added during
// normalization (e.g. "all_sources") land in a deterministic position for
// snapshot export and tests, which a plain Go map cannot guarantee.
type Metadata struct {
	keys   []string
	values map[string]string
}

// NewMetadata returns an empty, ready-to-use Metadata.
func NewMetadata() Metadata {
	return Metadata{values: make(map[string]string)}
}

// MetadataFrom builds a Metadata from a plain map, in an arbitrary but
// stable (sorted) key order. Use Set afterwards to control order precisely.
func MetadataFrom(m map[string]string) Metadata {
	md := NewMetadata()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortStrings(keys)
	for _, k := range keys {
		md.Set(k, m[k])
	}
	return md
}

// Set assigns key=value, appending key to the insertion order the first
// time it's seen and overwriting the value on subsequent calls without
// moving its position.
func (m *Metadata) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether it was present.
func (m Metadata) Get(key string) (string, bool) {
	if m.values == nil {
		return "", false
	}
	v, ok := m.values[key]
	return v, ok
}

// GetOr returns the value for key, or fallback if absent.
func (m Metadata) GetOr(key, fallback string) string {
	if v, ok := m.Get(key); ok {
		return v
	}
	return fallback
}

// Keys returns the keys in insertion order.
func (m Metadata) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries.
func (m Metadata) Len() int {
	return len(m.keys)
}

// Clone returns an independent copy preserving order.
func (m Metadata) Clone() Metadata {
	out := NewMetadata()
	for _, k := range m.keys {
		out.Set(k, m.values[k])
	}
	return out
}

// Merge returns a new Metadata containing m's entries followed by any key
// from other not already present in m ("first-write wins"), except where
// m's existing value is the sentinel "unknown", in which case other's value
// takes precedence, matching the normalizer's merge-duplicate rule.
func (m Metadata) Merge(other Metadata) Metadata {
	out := m.Clone()
	for _, k := range other.Keys() {
		v, _ := other.Get(k)
		existing, present := out.Get(k)
		if !present || existing == "unknown" {
			out.Set(k, v)
		}
	}
	return out
}

// sortStrings is a tiny insertion sort to avoid pulling in "sort" for a
// handful of keys in the common case; falls back correctly for any size.
func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
