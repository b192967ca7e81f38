// Package intern provides an append-only string interner: repeated symbol
// and call-edge names collapse to a small integer handle instead of each
// occurrence carrying its own string header, the same sync.RWMutex-guarded
// map-plus-slice shape the store package already uses for its own
// multi-maps.
package intern

import "sync"

// Key is an opaque handle for an interned string. The zero Key is the
// first string ever interned by a given Interner — callers that need a
// "no value" sentinel should track presence separately, not rely on Key 0.
type Key uint32

// Interner deduplicates strings into Keys. Safe for concurrent use; never
// shrinks, so a Key handed out once stays valid for the Interner's
// lifetime.
type Interner struct {
	mu    sync.RWMutex
	toKey map[string]Key
	strs  []string
}

// New creates an empty interner.
func New() *Interner {
	return &Interner{toKey: make(map[string]Key)}
}

// Intern returns s's Key, assigning a new one the first time s is seen.
func (n *Interner) Intern(s string) Key {
	n.mu.RLock()
	if k, ok := n.toKey[s]; ok {
		n.mu.RUnlock()
		return k
	}
	n.mu.RUnlock()

	n.mu.Lock()
	defer n.mu.Unlock()
	if k, ok := n.toKey[s]; ok {
		return k
	}
	k := Key(len(n.strs))
	n.strs = append(n.strs, s)
	n.toKey[s] = k
	return k
}

// String resolves k back to its original string, or "" if k was never
// issued by this Interner.
func (n *Interner) String(k Key) string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if int(k) >= len(n.strs) {
		return ""
	}
	return n.strs[k]
}

// Len reports how many distinct strings have been interned.
func (n *Interner) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.strs)
}
