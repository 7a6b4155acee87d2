package navigation

import "sync"

// History is an in-process stack of visited paths with change notification.
// Subscribers are called synchronously, outside the lock, whenever the current
// path changes. Setting the path it already holds notifies nobody.
type History struct {
	mu      sync.Mutex
	entries []string
	index   int
	subs    map[int]func(path string)
	nextID  int
}

// NewHistory starts a history at initial.
func NewHistory(initial string) *History {
	return &History{
		entries: []string{initial},
		subs:    make(map[int]func(string)),
	}
}

// Path returns the current entry.
func (h *History) Path() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Entries returns a copy of the stack up to and including the current entry.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.entries[:h.index+1]...)
}

// Push adds path as a new entry after the current one, dropping forward entries.
func (h *History) Push(path string) {
	h.mu.Lock()
	if h.entries[h.index] == path {
		h.mu.Unlock()
		return
	}
	h.entries = append(h.entries[:h.index+1], path)
	h.index++
	subs := h.snapshot()
	h.mu.Unlock()
	notify(subs, path)
}

// Replace swaps the current entry for path and notifies subscribers.
func (h *History) Replace(path string) {
	if h.replace(path) {
		h.mu.Lock()
		subs := h.snapshot()
		h.mu.Unlock()
		notify(subs, path)
	}
}

// replace swaps the current entry without notifying.
// POST: Returns whether the current path changed
func (h *History) replace(path string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.entries[h.index] == path {
		return false
	}
	h.entries[h.index] = path
	return true
}

// Back moves to the previous entry. It returns false at the first entry.
func (h *History) Back() bool {
	h.mu.Lock()
	if h.index == 0 {
		h.mu.Unlock()
		return false
	}
	prev := h.entries[h.index]
	h.index--
	path := h.entries[h.index]
	subs := h.snapshot()
	h.mu.Unlock()
	if path != prev {
		notify(subs, path)
	}
	return true
}

// Subscribe registers fn for path changes and returns a function that removes it.
func (h *History) Subscribe(fn func(path string)) (cancel func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

// snapshot copies subscribers. Caller holds mu.
func (h *History) snapshot() []func(string) {
	out := make([]func(string), 0, len(h.subs))
	for id := 0; id < h.nextID; id++ {
		if fn, ok := h.subs[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func notify(subs []func(string), path string) {
	for _, fn := range subs {
		fn(path)
	}
}
