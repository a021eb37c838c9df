// Package index provides the exact-path hash index used for static rules.
package index

const (
	initialCapacity = 16

	// maxLoadPercent is the load factor above which the table doubles.
	maxLoadPercent = 70
)

// FNV-1a 64-bit constants, hashed inline to avoid the hash.Hash64
// interface and a []byte conversion per lookup.
const (
	fnvOffsetBasis = 14695981039346656037
	fnvPrime       = 1099511628211
)

type entry struct {
	key      string
	ref      int
	occupied bool
}

// Static is an open-addressing hash table with linear probing mapping an
// exact path to a reference (the position of a rule in its owner's list).
//
// Entries are never removed, so no tombstones are needed. The first
// reference inserted for a key wins.
//
// WARNING: Insert is not concurrency-safe. Lookup is safe for concurrent use
// once inserts have stopped.
type Static struct {
	entries []entry
	count   int
}

// New returns an empty index.
func New() *Static {
	return &Static{
		entries: make([]entry, initialCapacity),
	}
}

func hash(key string) uint64 {
	h := uint64(fnvOffsetBasis)
	for i := 0; i < len(key); i++ {
		h ^= uint64(key[i])
		h *= fnvPrime
	}

	return h
}

// findSlot returns the slot holding key or the first empty slot of its scan
// sequence, plus the number of slots inspected.
func findSlot(entries []entry, key string) (int, int) {
	capacity := uint64(len(entries))
	i := hash(key) % capacity
	steps := 1

	for {
		e := &entries[i]
		if !e.occupied || e.key == key {
			return int(i), steps
		}

		i = (i + 1) % capacity
		steps++
	}
}

func (s *Static) grow() {
	entries := make([]entry, len(s.entries)*2)

	for _, e := range s.entries {
		if !e.occupied {
			continue
		}

		i, _ := findSlot(entries, e.key)
		entries[i] = e
	}

	s.entries = entries
}

// Insert stores ref under key. It reports false, leaving the index
// unchanged, when key is already present.
func (s *Static) Insert(key string, ref int) bool {
	if (s.count+1)*100 > len(s.entries)*maxLoadPercent {
		s.grow()
	}

	i, _ := findSlot(s.entries, key)
	if s.entries[i].occupied {
		return false
	}

	s.entries[i] = entry{
		key:      key,
		ref:      ref,
		occupied: true,
	}
	s.count++

	return true
}

// Lookup returns the reference stored under key.
func (s *Static) Lookup(key string) (int, bool) {
	ref, ok, _ := s.lookup(key)
	return ref, ok
}

func (s *Static) lookup(key string) (int, bool, int) {
	if s.count == 0 {
		return 0, false, 0
	}

	i, steps := findSlot(s.entries, key)
	if e := s.entries[i]; e.occupied {
		return e.ref, true, steps
	}

	return 0, false, steps
}

// Len returns the number of stored keys.
func (s *Static) Len() int {
	return s.count
}

// Cap returns the number of slots.
func (s *Static) Cap() int {
	return len(s.entries)
}
