package router

import "sync"

// defaultDedupeSize covers well beyond the provider's webhook retry window
// for a single process.
const defaultDedupeSize = 512

// dedupe is a bounded FIFO set of recently seen message ids. Per-process
// only: replicas behind a load balancer each keep their own window, which is
// acceptable because provider retries hit the same callback URL.
type dedupe struct {
	mu    sync.Mutex
	cap   int
	ids   map[string]struct{}
	order []string
}

func newDedupe(capacity int) *dedupe {
	if capacity <= 0 {
		capacity = defaultDedupeSize
	}
	return &dedupe{
		cap: capacity,
		ids: make(map[string]struct{}, capacity),
	}
}

// seen records the id and reports whether it was already present.
func (d *dedupe) seen(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.ids[id]; ok {
		return true
	}
	d.ids[id] = struct{}{}
	d.order = append(d.order, id)
	if len(d.order) > d.cap {
		oldest := d.order[0]
		d.order = d.order[1:]
		delete(d.ids, oldest)
	}
	return false
}
