package jsdom

// listenerTable records the node each callback is attached to, so replacing
// a subtree can detach and release the callbacks below it.
type listenerTable[N any] struct {
	entries []listenerEntry[N]
}

type listenerEntry[N any] struct {
	node    N
	release func()
}

func (t *listenerTable[N]) add(node N, release func()) {
	t.entries = append(t.entries, listenerEntry[N]{node: node, release: release})
}

// forget releases every entry whose node satisfies below and returns how
// many were released.
func (t *listenerTable[N]) forget(below func(N) bool) int {
	kept := t.entries[:0]
	released := 0
	for _, e := range t.entries {
		if below(e.node) {
			e.release()
			released++
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(t.entries); i++ {
		t.entries[i] = listenerEntry[N]{}
	}
	t.entries = kept
	return released
}

func (t *listenerTable[N]) len() int { return len(t.entries) }
